package domain

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/UndeadFairy/MagneticModel/internal/magtime"
)

// fixedTime returns constant time arguments regardless of the instant.
type fixedTime struct {
	yearFraction float64
	mut          float64
}

func (f fixedTime) YearFraction(_ float64) float64 { return f.yearFraction }

func (f fixedTime) MagneticUniversalTime(_, _, _ float64) float64 { return f.mut }

// clockTime maps day numbers to arguments with exact daily and yearly periods.
type clockTime struct{}

func (clockTime) YearFraction(mjd2000 float64) float64 {
	f := math.Mod(mjd2000/365.0, 1.0)
	if f < 0 {
		f++
	}
	return f
}

func (clockTime) MagneticUniversalTime(mjd2000, _, _ float64) float64 {
	h := math.Mod(mjd2000*24.0, 24.0)
	if h < 0 {
		h += 24
	}
	return h
}

// uniformTensor builds a tensor of the given shape where every cosine amplitude is
// cosAmp and every sine amplitude is sinAmp.
func uniformTensor(entries int, e HarmonicOrderExtent, cosAmp, sinAmp float64) Tensor {
	t := make(Tensor, entries)
	for k := range t {
		t[k] = make([][][2]float64, e.Rows())
		for r := range t[k] {
			t[k][r] = make([][2]float64, e.Cols())
			for c := range t[k][r] {
				t[k][r][c] = [2]float64{cosAmp, sinAmp}
			}
		}
	}
	return t
}

func mustMIO(t *testing.T, params MIOParams) *MIOCoefficients {
	t.Helper()
	c, err := NewMIOCoefficients(params)
	if err != nil {
		t.Fatalf("NewMIOCoefficients: %v", err)
	}
	return c
}

func intPtr(v int) *int { return &v }

// TestNewMIOCoefficients_InvalidExtent tests that empty order ranges are rejected.
func TestNewMIOCoefficients_InvalidExtent(t *testing.T) {
	tests := []struct {
		extent HarmonicOrderExtent
		tuple  string
	}{
		{HarmonicOrderExtent{PMin: 1, PMax: 0, SMin: 0, SMax: 0}, "(1, 0, 0, 0)"},
		{HarmonicOrderExtent{PMin: 0, PMax: 0, SMin: 2, SMax: 1}, "(0, 0, 2, 1)"},
		{HarmonicOrderExtent{PMin: 3, PMax: -3, SMin: 4, SMax: -4}, "(3, -3, 4, -4)"},
	}

	for _, tt := range tests {
		_, err := NewMIOCoefficients(MIOParams{Extent: tt.extent})
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("extent %s: expected ErrInvalidConfiguration, got %v", tt.extent, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.tuple) {
			t.Errorf("extent %s: error %q does not mention the tuple", tt.extent, err)
		}
	}
}

// TestNewMIOCoefficients_ValidExtent tests that any non-empty ranges are accepted.
func TestNewMIOCoefficients_ValidExtent(t *testing.T) {
	extents := []HarmonicOrderExtent{
		{PMin: 0, PMax: 0, SMin: 0, SMax: 0},
		{PMin: -4, PMax: 4, SMin: -2, SMax: 2},
		{PMin: 1, PMax: 5, SMin: 3, SMax: 3},
	}

	for _, e := range extents {
		if _, err := NewMIOCoefficients(MIOParams{Extent: e}); err != nil {
			t.Errorf("extent %s: unexpected error %v", e, err)
		}
	}
}

// TestEvaluate_SingleConstantEntry covers a single (1, 0) entry with only the
// p = s = 0 term, which must come out unchanged at any time.
func TestEvaluate_SingleConstantEntry(t *testing.T) {
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 1, M: 0}},
		Coefficients: Tensor{{{{5.0, 0.0}}}},
		Pole:         GeomagneticPole{Lat: 90, Lon: 0},
		IsInternal:   true,
	})

	for _, mjd := range []float64{-7300.25, 0, 6756.5, 12345.678} {
		res, err := c.Evaluate(mjd, EvalParams{})
		if err != nil {
			t.Fatalf("Evaluate(%.3f): %v", mjd, err)
		}

		rows, cols := res.Values.Dims()
		if rows != 3 || cols != 2 {
			t.Fatalf("shape: expected (3, 2), got (%d, %d)", rows, cols)
		}
		if res.Degree != 1 {
			t.Errorf("degree: expected 1, got %d", res.Degree)
		}
		if !res.IsInternal {
			t.Errorf("expected internal coefficients")
		}

		expected := mat.NewDense(3, 2, []float64{0, 0, 5, 0, 0, 0})
		if !mat.Equal(res.Values, expected) {
			t.Errorf("Evaluate(%.3f): expected %v, got %v", mjd, mat.Formatted(expected), mat.Formatted(res.Values))
		}
	}
}

// TestEvaluate_MatchesDirectSum compares the matrix evaluation with an explicit double sum.
func TestEvaluate_MatchesDirectSum(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: -2, PMax: 3, SMin: -1, SMax: 2}
	indices := []Index{{N: 1, M: 0}, {N: 1, M: 1}, {N: 1, M: -1}, {N: 2, M: 2}}

	tensor := make(Tensor, len(indices))
	for k := range tensor {
		tensor[k] = make([][][2]float64, extent.Rows())
		for r := range tensor[k] {
			tensor[k][r] = make([][2]float64, extent.Cols())
			for col := range tensor[k][r] {
				x := float64(k*31 + r*7 + col)
				tensor[k][r][col] = [2]float64{math.Sin(x), math.Cos(1.3 * x)}
			}
		}
	}

	tc := fixedTime{yearFraction: 0.37, mut: 17.25}
	c := mustMIO(t, MIOParams{
		Indices:      indices,
		Coefficients: tensor,
		Extent:       extent,
		Time:         tc,
	})

	got, err := c.EvaluateFourier(0)
	if err != nil {
		t.Fatalf("EvaluateFourier: %v", err)
	}

	for k := range indices {
		expected := 0.0
		for r := 0; r < extent.Rows(); r++ {
			for col := 0; col < extent.Cols(); col++ {
				s := float64(extent.SMin + r)
				p := float64(extent.PMin + col)
				phase := 2*math.Pi*tc.yearFraction*s + 2*math.Pi/24*tc.mut*p
				expected += tensor[k][r][col][0]*math.Cos(phase) + tensor[k][r][col][1]*math.Sin(phase)
			}
		}
		if math.Abs(got[k]-expected) > 1e-12 {
			t.Errorf("entry %d: expected %.15f, got %.15f", k, expected, got[k])
		}
	}

	res, err := c.Evaluate(0, EvalParams{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for k, idx := range indices {
		row, col := SlotPosition(idx.N, idx.M)
		if v := res.Values.At(row, col); v != got[k] {
			t.Errorf("entry %d (%d, %d): dense value %.15f differs from %.15f", k, idx.N, idx.M, v, got[k])
		}
	}
}

// TestEvaluate_Deterministic tests that repeated evaluation is bit-identical.
func TestEvaluate_Deterministic(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: 0, PMax: 4, SMin: -2, SMax: 2}
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 1, M: 0}, {N: 2, M: -1}},
		Coefficients: uniformTensor(2, extent, 0.3, -0.7),
		Extent:       extent,
		Pole:         GeomagneticPole{Lat: 80.65, Lon: -72.68},
	})

	first, err := c.Evaluate(6756.5, EvalParams{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := c.Evaluate(6756.5, EvalParams{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !mat.Equal(first.Values, second.Values) {
		t.Errorf("repeated evaluation differs: %v vs %v", mat.Formatted(first.Values), mat.Formatted(second.Values))
	}
}

// TestEvaluate_Linearity tests that scaling the tensor scales the output.
func TestEvaluate_Linearity(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: -1, PMax: 2, SMin: 0, SMax: 1}
	indices := []Index{{N: 1, M: 0}, {N: 1, M: -1}}
	const alpha = -2.5

	base := uniformTensor(len(indices), extent, 0.4, 1.1)
	scaled := uniformTensor(len(indices), extent, 0.4*alpha, 1.1*alpha)

	c1 := mustMIO(t, MIOParams{Indices: indices, Coefficients: base, Extent: extent, Pole: GeomagneticPole{Lat: 80, Lon: -72}})
	c2 := mustMIO(t, MIOParams{Indices: indices, Coefficients: scaled, Extent: extent, Pole: GeomagneticPole{Lat: 80, Lon: -72}})

	for _, mjd := range []float64{100.125, 3000.75, 9000.0} {
		r1, err := c1.Evaluate(mjd, EvalParams{})
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		r2, err := c2.Evaluate(mjd, EvalParams{})
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}

		var expected mat.Dense
		expected.Scale(alpha, r1.Values)
		if !mat.EqualApprox(&expected, r2.Values, 1e-12) {
			t.Errorf("mjd %.3f: expected %v, got %v", mjd, mat.Formatted(&expected), mat.Formatted(r2.Values))
		}
	}
}

// TestEvaluate_SeasonalPeriodicity tests that seasonal-only series repeat every year.
func TestEvaluate_SeasonalPeriodicity(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: 0, PMax: 0, SMin: -2, SMax: 2}
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 1, M: 0}},
		Coefficients: uniformTensor(1, extent, 0.8, -0.3),
		Extent:       extent,
		Pole:         GeomagneticPole{Lat: 80.65, Lon: -72.68},
	})

	// 2001-06-01 and 2005-06-01 are 4*365.25 days apart and share the same year fraction.
	start := 517.0
	a, err := c.EvaluateFourier(start)
	if err != nil {
		t.Fatalf("EvaluateFourier: %v", err)
	}
	b, err := c.EvaluateFourier(start + 4*365.25)
	if err != nil {
		t.Fatalf("EvaluateFourier: %v", err)
	}

	if math.Abs(a[0]-b[0]) > 1e-9 {
		t.Errorf("seasonal series not periodic: %.12f vs %.12f", a[0], b[0])
	}
}

// TestEvaluate_DiurnalPeriodicity tests that diurnal-only series repeat every day.
func TestEvaluate_DiurnalPeriodicity(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: -3, PMax: 3, SMin: 0, SMax: 0}
	params := MIOParams{
		Indices:      []Index{{N: 2, M: 1}},
		Coefficients: uniformTensor(1, extent, 0.5, 0.25),
		Extent:       extent,
		Pole:         GeomagneticPole{Lat: 90, Lon: 0},
		Time:         clockTime{},
	}
	exact := mustMIO(t, params)

	params.Time = nil
	astronomical := mustMIO(t, params)

	for _, mjd := range []float64{1000.1, 4321.9, 7000.55} {
		a, _ := exact.EvaluateFourier(mjd)
		b, _ := exact.EvaluateFourier(mjd + 1)
		if math.Abs(a[0]-b[0]) > 1e-9 {
			t.Errorf("mjd %.2f: exact clock not periodic: %.12f vs %.12f", mjd, a[0], b[0])
		}

		// The sub-solar longitude drifts by well under a minute of time per day.
		a, _ = astronomical.EvaluateFourier(mjd)
		b, _ = astronomical.EvaluateFourier(mjd + 1)
		if math.Abs(a[0]-b[0]) > 0.05 {
			t.Errorf("mjd %.2f: astronomical clock drifted: %.6f vs %.6f", mjd, a[0], b[0])
		}
	}
}

// TestEvaluate_SparseShape tests that the dense output covers the full degree.
func TestEvaluate_SparseShape(t *testing.T) {
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 3, M: -2}},
		Coefficients: Tensor{{{{1.5, 0}}}},
	})

	res, err := c.Evaluate(0, EvalParams{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	rows, cols := res.Values.Dims()
	if rows != CoeffSize(3) || cols != 2 {
		t.Fatalf("shape: expected (%d, 2), got (%d, %d)", CoeffSize(3), rows, cols)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			want := 0.0
			if i == 8 && j == 1 {
				want = 1.5
			}
			if got := res.Values.At(i, j); got != want {
				t.Errorf("slot (%d, %d): expected %.3f, got %.3f", i, j, want, got)
			}
		}
	}
}

// TestEvaluate_ShapeMismatch tests that inconsistent tensors fail at evaluation time.
func TestEvaluate_ShapeMismatch(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: 0, PMax: 1, SMin: 0, SMax: 1}

	tests := []struct {
		name   string
		tensor Tensor
	}{
		{"too few entries", uniformTensor(1, extent, 1, 0)},
		{"too many entries", uniformTensor(3, extent, 1, 0)},
		{"missing seasonal row", Tensor{
			{{{1, 0}, {1, 0}}, {{1, 0}, {1, 0}}},
			{{{1, 0}, {1, 0}}},
		}},
		{"missing diurnal column", Tensor{
			{{{1, 0}, {1, 0}}, {{1, 0}, {1, 0}}},
			{{{1, 0}, {1, 0}}, {{1, 0}}},
		}},
	}

	for _, tt := range tests {
		c, err := NewMIOCoefficients(MIOParams{
			Indices:      []Index{{N: 1, M: 0}, {N: 1, M: 1}},
			Coefficients: tt.tensor,
			Extent:       extent,
		})
		if err != nil {
			t.Fatalf("%s: construction must not validate the tensor, got %v", tt.name, err)
		}

		if _, err := c.Evaluate(0, EvalParams{}); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("%s: expected ErrShapeMismatch, got %v", tt.name, err)
		}
	}
}

// TestEvaluate_DegreeTruncation tests the optional min/max degree selection.
func TestEvaluate_DegreeTruncation(t *testing.T) {
	indices := []Index{{N: 1, M: 0}, {N: 1, M: 1}, {N: 1, M: -1}, {N: 2, M: 0}, {N: 2, M: -2}}
	tensor := Tensor{{{{1, 0}}}, {{{2, 0}}}, {{{3, 0}}}, {{{4, 0}}}, {{{5, 0}}}}
	c := mustMIO(t, MIOParams{Indices: indices, Coefficients: tensor})

	tests := []struct {
		name     string
		params   EvalParams
		degree   int
		expected []float64
	}{
		{"all", EvalParams{}, 2, []float64{0, 0, 1, 0, 2, 3, 4, 0, 0, 0, 0, 5}},
		{"max degree 1", EvalParams{MaxDegree: intPtr(1)}, 1, []float64{0, 0, 1, 0, 2, 3}},
		{"min degree 2", EvalParams{MinDegree: intPtr(2)}, 2, []float64{0, 0, 0, 0, 0, 0, 4, 0, 0, 0, 0, 5}},
		{"min max 1", EvalParams{MinDegree: intPtr(1), MaxDegree: intPtr(1)}, 1, []float64{0, 0, 1, 0, 2, 3}},
		{"nothing left", EvalParams{MinDegree: intPtr(3)}, 0, []float64{0, 0}},
	}

	for _, tt := range tests {
		res, err := c.Evaluate(100, tt.params)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if res.Degree != tt.degree {
			t.Errorf("%s: degree expected %d, got %d", tt.name, tt.degree, res.Degree)
		}
		expected := mat.NewDense(len(tt.expected)/2, 2, tt.expected)
		if !mat.Equal(res.Values, expected) {
			t.Errorf("%s: expected %v, got %v", tt.name, mat.Formatted(expected), mat.Formatted(res.Values))
		}
	}
}

// TestEvaluate_SubSolarOverride tests that an explicit sub-solar point drives the diurnal phase.
func TestEvaluate_SubSolarOverride(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: 1, PMax: 1, SMin: 0, SMax: 0}
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 1, M: 0}},
		Coefficients: Tensor{{{{1, 0}}}},
		Extent:       extent,
		Pole:         GeomagneticPole{Lat: 90, Lon: 0},
	})

	tests := []struct {
		subSolar magtime.LatLon
		expected float64
	}{
		{magtime.LatLon{Lat: 0, Lon: 0}, -1},    // MUT 12h.
		{magtime.LatLon{Lat: 10, Lon: 90}, 0},   // MUT 6h.
		{magtime.LatLon{Lat: -20, Lon: 180}, 1}, // MUT 0h.
	}

	for _, tt := range tests {
		sol := tt.subSolar
		res, err := c.Evaluate(1234.5, EvalParams{SubSolar: &sol})
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if got := res.Values.At(1, 0); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("sub-solar %+v: expected %.6f, got %.6f", tt.subSolar, tt.expected, got)
		}
	}
}

// TestEvaluate_NonFiniteTime tests that NaN time propagates instead of failing.
func TestEvaluate_NonFiniteTime(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: 0, PMax: 1, SMin: 0, SMax: 1}
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 1, M: 0}},
		Coefficients: uniformTensor(1, extent, 1, 1),
		Extent:       extent,
	})

	res, err := c.Evaluate(math.NaN(), EvalParams{})
	if err != nil {
		t.Fatalf("Evaluate(NaN): unexpected error %v", err)
	}
	if v := res.Values.At(1, 0); !math.IsNaN(v) {
		t.Errorf("expected NaN, got %v", v)
	}
	if c.IsValid(math.NaN()) {
		t.Errorf("NaN must not be a valid time")
	}
}

// TestEvaluate_Concurrent tests that concurrent evaluation matches sequential evaluation.
func TestEvaluate_Concurrent(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: -2, PMax: 2, SMin: -1, SMax: 1}
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 1, M: 0}, {N: 1, M: 1}, {N: 1, M: -1}},
		Coefficients: uniformTensor(3, extent, 0.2, 0.9),
		Extent:       extent,
		Pole:         GeomagneticPole{Lat: 80.65, Lon: -72.68},
	})

	times := make([]float64, 32)
	want := make([]*Result, len(times))
	for i := range times {
		times[i] = 6000 + float64(i)*0.37
		res, err := c.Evaluate(times[i], EvalParams{})
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		want[i] = res
	}

	got := make([]*Result, len(times))
	var wg sync.WaitGroup
	for i := range times {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = c.Evaluate(times[i], EvalParams{})
		}(i)
	}
	wg.Wait()

	for i := range times {
		if got[i] == nil || !mat.Equal(got[i].Values, want[i].Values) {
			t.Errorf("time %.2f: concurrent result differs", times[i])
		}
	}
}

// TestMIOCoefficients_Metadata tests that the shell parameters are carried through.
func TestMIOCoefficients_Metadata(t *testing.T) {
	extent := HarmonicOrderExtent{PMin: 0, PMax: 2, SMin: -1, SMax: 1}
	c := mustMIO(t, MIOParams{
		Indices:      []Index{{N: 2, M: 1}, {N: 1, M: 0}},
		Coefficients: uniformTensor(2, extent, 0, 0),
		Extent:       extent,
		Pole:         GeomagneticPole{Lat: 80.65, Lon: -72.68},
		MIORadius:    6481.2,
		WolfRatio:    0.01485,
	})

	if c.Extent() != extent {
		t.Errorf("extent: expected %s, got %s", extent, c.Extent())
	}
	if c.Pole() != (GeomagneticPole{Lat: 80.65, Lon: -72.68}) {
		t.Errorf("pole: got %+v", c.Pole())
	}
	if c.MIORadius() != 6481.2 {
		t.Errorf("mio radius: got %.3f", c.MIORadius())
	}
	if c.WolfRatio() != 0.01485 {
		t.Errorf("wolf ratio: got %.5f", c.WolfRatio())
	}
	if c.Degree() != 2 || c.MinDegree() != 1 {
		t.Errorf("degrees: expected (1, 2), got (%d, %d)", c.MinDegree(), c.Degree())
	}
	if c.IsInternal() {
		t.Errorf("expected external coefficients")
	}
}
