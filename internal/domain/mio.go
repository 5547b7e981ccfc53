package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/UndeadFairy/MagneticModel/internal/magtime"
)

// Tensor holds the 2D Fourier amplitudes of a MIO coefficient set, indexed as
// [entry][seasonal order][diurnal order][cos, sin].
type Tensor [][][][2]float64

// GeomagneticPole is the location of the North Geomagnetic Pole in degrees.
type GeomagneticPole struct {
	Lat float64
	Lon float64
}

// MIOParams holds everything needed to build a MIO coefficient set.
type MIOParams struct {
	Indices      []Index
	Coefficients Tensor
	Extent       HarmonicOrderExtent
	Pole         GeomagneticPole
	MIORadius    float64 // Radius of the external source shell (a + h), km.
	WolfRatio    float64
	IsInternal   bool
	Time         TimeConverter // Defaults to AstronomicalTimeConverter.
}

// EvalParams holds optional evaluation parameters. The zero value evaluates
// all stored entries with the astronomical sub-solar point.
type EvalParams struct {
	MinDegree *int
	MaxDegree *int
	SubSolar  *magtime.LatLon
}

// Result is a dense set of Gauss coefficients at one instant.
type Result struct {
	Values     *mat.Dense // CoeffSize(Degree) x 2, columns are (g, h) or (q, s).
	Degree     int
	IsInternal bool
}

// Rows returns the coefficient pairs as a slice.
func (r *Result) Rows() [][2]float64 {
	n, _ := r.Values.Dims()
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{r.Values.At(i, 0), r.Values.At(i, 1)}
	}
	return out
}

// MIOCoefficients evaluates time dependent Swarm MIO coefficients expressed as a
// 2D Fourier series in the seasonal (annual) and diurnal (magnetic universal time)
// frequencies. It is immutable after construction and safe for concurrent use.
type MIOCoefficients struct {
	*SparseCoefficients

	extent    HarmonicOrderExtent
	pole      GeomagneticPole
	mioRadius float64
	wolfRatio float64
	time      TimeConverter

	// Amplitudes flattened to entries x (rows*cols), row-major in (s, p).
	cosAmp   *mat.Dense
	sinAmp   *mat.Dense
	shapeErr error
}

// NewMIOCoefficients creates a MIO coefficient set. Only the harmonic order extent
// is validated here; a tensor inconsistent with the indices or the extent is
// reported by Evaluate.
func NewMIOCoefficients(params MIOParams) (*MIOCoefficients, error) {
	if err := params.Extent.Validate(); err != nil {
		return nil, err
	}

	tc := params.Time
	if tc == nil {
		tc = AstronomicalTimeConverter{}
	}

	c := &MIOCoefficients{
		SparseCoefficients: NewSparseCoefficients(params.Indices, params.IsInternal),
		extent:             params.Extent,
		pole:               params.Pole,
		mioRadius:          params.MIORadius,
		wolfRatio:          params.WolfRatio,
		time:               tc,
	}
	c.cosAmp, c.sinAmp, c.shapeErr = flattenTensor(params.Coefficients, c.Len(), params.Extent)

	return c, nil
}

// Extent returns the harmonic order extent.
func (c *MIOCoefficients) Extent() HarmonicOrderExtent { return c.extent }

// Pole returns the North Geomagnetic Pole used for magnetic universal time.
func (c *MIOCoefficients) Pole() GeomagneticPole { return c.pole }

// MIORadius returns the radius of the external source shell.
func (c *MIOCoefficients) MIORadius() float64 { return c.mioRadius }

// WolfRatio returns the Wolf ratio.
func (c *MIOCoefficients) WolfRatio() float64 { return c.wolfRatio }

// Evaluate reconstructs the dense coefficients at the given MJD2000 time.
// Non-finite times are not rejected; the result then contains NaN.
func (c *MIOCoefficients) Evaluate(mjd2000 float64, params EvalParams) (*Result, error) {
	tc := c.time
	if params.SubSolar != nil {
		tc = subSolarTimeConverter{base: c.time, subSolar: *params.SubSolar}
	}

	values, err := c.evalFourier(mjd2000, tc)
	if err != nil {
		return nil, err
	}

	selected := make([]int, 0, len(values))
	degree := 0
	for k, idx := range c.indices {
		if params.MinDegree != nil && idx.N < *params.MinDegree {
			continue
		}
		if params.MaxDegree != nil && idx.N > *params.MaxDegree {
			continue
		}
		selected = append(selected, k)
		if idx.N > degree {
			degree = idx.N
		}
	}

	full := mat.NewDense(CoeffSize(degree), 2, nil)
	for _, k := range selected {
		row, col := c.Position(k)
		full.Set(row, col, values[k])
	}

	return &Result{
		Values:     full,
		Degree:     degree,
		IsInternal: c.isInternal,
	}, nil
}

// EvaluateFourier returns one reconstructed value per stored entry, in storage order.
func (c *MIOCoefficients) EvaluateFourier(mjd2000 float64) ([]float64, error) {
	return c.evalFourier(mjd2000, c.time)
}

func (c *MIOCoefficients) evalFourier(mjd2000 float64, tc TimeConverter) ([]float64, error) {
	if c.shapeErr != nil {
		return nil, c.shapeErr
	}

	yearFraction := tc.YearFraction(mjd2000)
	mut := tc.MagneticUniversalTime(mjd2000, c.pole.Lat, c.pole.Lon)

	sinF, cosF := SinCos(PhaseMatrix(c.extent, yearFraction, mut))

	if c.cosAmp == nil {
		return []float64{}, nil
	}

	var sum, sinTerm mat.VecDense
	sum.MulVec(c.cosAmp, cosF)
	sinTerm.MulVec(c.sinAmp, sinF)
	sum.AddVec(&sum, &sinTerm)

	return sum.RawVector().Data, nil
}

// flattenTensor splits the tensor into cosine and sine amplitude matrices of shape
// entries x (rows*cols). Empty entry sets yield nil matrices.
func flattenTensor(t Tensor, entries int, e HarmonicOrderExtent) (cosAmp, sinAmp *mat.Dense, err error) {
	rows, cols := e.Rows(), e.Cols()

	if len(t) != entries {
		return nil, nil, fmt.Errorf("%w: %d coefficient rows for %d indices", ErrShapeMismatch, len(t), entries)
	}
	if entries == 0 {
		return nil, nil, nil
	}

	cosData := make([]float64, 0, entries*rows*cols)
	sinData := make([]float64, 0, entries*rows*cols)
	for k, entry := range t {
		if len(entry) != rows {
			return nil, nil, fmt.Errorf("%w: entry %d has %d seasonal orders, expected %d", ErrShapeMismatch, k, len(entry), rows)
		}
		for r, row := range entry {
			if len(row) != cols {
				return nil, nil, fmt.Errorf("%w: entry %d, seasonal row %d has %d diurnal orders, expected %d", ErrShapeMismatch, k, r, len(row), cols)
			}
			for _, pair := range row {
				cosData = append(cosData, pair[0])
				sinData = append(sinData, pair[1])
			}
		}
	}

	return mat.NewDense(entries, rows*cols, cosData), mat.NewDense(entries, rows*cols, sinData), nil
}
