package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Base angular frequencies of the 2D Fourier series.
const (
	// FrequencySeasonal is the annual frequency in radians per year fraction.
	FrequencySeasonal = 2 * math.Pi
	// FrequencyDiurnal is the daily frequency in radians per hour of magnetic universal time.
	FrequencyDiurnal = 2 * math.Pi / 24.0
)

// HarmonicOrderExtent holds the inclusive ranges of the diurnal order p and the
// seasonal order s of a 2D Fourier series.
type HarmonicOrderExtent struct {
	PMin int
	PMax int
	SMin int
	SMax int
}

// Validate checks that both order ranges are non-empty.
func (e HarmonicOrderExtent) Validate() error {
	if e.PMin > e.PMax || e.SMin > e.SMax {
		return fmt.Errorf("%w: invalid ps_extent %s", ErrInvalidConfiguration, e)
	}
	return nil
}

// Rows returns the number of seasonal orders.
func (e HarmonicOrderExtent) Rows() int { return e.SMax - e.SMin + 1 }

// Cols returns the number of diurnal orders.
func (e HarmonicOrderExtent) Cols() int { return e.PMax - e.PMin + 1 }

// String formats the extent as a (pmin, pmax, smin, smax) tuple.
func (e HarmonicOrderExtent) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", e.PMin, e.PMax, e.SMin, e.SMax)
}

// PhaseMatrix builds the (rows x cols) matrix of combined phases
//
//	phase[r, c] = s_r * 2π * yearFraction + p_c * 2π/24 * mut
//
// where s_r = smin + r and p_c = pmin + c. The extent must be valid.
func PhaseMatrix(e HarmonicOrderExtent, yearFraction, mut float64) *mat.Dense {
	rows, cols := e.Rows(), e.Cols()

	diurnal := orders(e.PMin, cols)
	floats.Scale(FrequencyDiurnal*mut, diurnal)

	seasonal := orders(e.SMin, rows)
	floats.Scale(FrequencySeasonal*yearFraction, seasonal)

	phase := mat.NewDense(rows, cols, nil)
	phase.Apply(func(r, c int, _ float64) float64 {
		return diurnal[c] + seasonal[r]
	}, phase)

	return phase
}

// SinCos evaluates the sine and cosine of a phase matrix once and returns them
// flattened in row-major order, ready to be reused for every stored entry.
func SinCos(phase *mat.Dense) (sinF, cosF *mat.VecDense) {
	rows, cols := phase.Dims()
	sinData := make([]float64, 0, rows*cols)
	cosData := make([]float64, 0, rows*cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s, co := math.Sincos(phase.At(r, c))
			sinData = append(sinData, s)
			cosData = append(cosData, co)
		}
	}

	return mat.NewVecDense(len(sinData), sinData), mat.NewVecDense(len(cosData), cosData)
}

func orders(start, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(start + i)
	}
	return out
}
