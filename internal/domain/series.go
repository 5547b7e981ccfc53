package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/UndeadFairy/MagneticModel/internal/magtime"
)

// Sample is a coefficient set evaluated at a single instant.
type Sample struct {
	Time    time.Time
	MJD2000 float64
	Result  *Result
}

// SlotValue is the value of one dense coefficient slot at a specific time.
type SlotValue struct {
	Time  time.Time
	Value float64
}

// Extrema holds the local maxima and minima of a slot time series.
type Extrema struct {
	Highs []SlotValue
	Lows  []SlotValue
}

// GenerateSeries evaluates the coefficients from start to end (inclusive) at the given interval.
func GenerateSeries(c *MIOCoefficients, start, end time.Time, interval time.Duration, params EvalParams) ([]Sample, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: non-positive series interval %v", ErrInvalidConfiguration, interval)
	}

	samples := make([]Sample, 0)
	for t := start; !t.After(end); t = t.Add(interval) {
		mjd := magtime.MJD2000(t)
		res, err := c.Evaluate(mjd, params)
		if err != nil {
			return nil, fmt.Errorf("evaluate at %s: %w", t.Format(time.RFC3339), err)
		}
		samples = append(samples, Sample{
			Time:    t,
			MJD2000: mjd,
			Result:  res,
		})
	}

	return samples, nil
}

// SlotSeries extracts the time series of the (n, m) coefficient. Samples whose
// degree does not reach n contribute zero.
func SlotSeries(samples []Sample, n, m int) []SlotValue {
	row, col := SlotPosition(n, m)
	out := make([]SlotValue, len(samples))
	for i, s := range samples {
		v := 0.0
		if rows, _ := s.Result.Values.Dims(); row < rows {
			v = s.Result.Values.At(row, col)
		}
		out[i] = SlotValue{Time: s.Time, Value: v}
	}
	return out
}

// FindExtrema returns the sampled local maxima and minima of a slot series.
// Plateaus are not turning points.
func FindExtrema(series []SlotValue) Extrema {
	highs, lows := turningPoints(series)
	pick := func(idx []int) []SlotValue {
		out := make([]SlotValue, len(idx))
		for j, i := range idx {
			out[j] = series[i]
		}
		return out
	}
	return Extrema{Highs: pick(highs), Lows: pick(lows)}
}

// SlotExtrema returns the local maxima and minima of a slot series, each moved
// to the vertex of the parabola through it and its two neighbours.
func SlotExtrema(series []SlotValue) Extrema {
	highs, lows := turningPoints(series)
	refine := func(idx []int) []SlotValue {
		out := make([]SlotValue, len(idx))
		for j, i := range idx {
			t, v := RefineExtremum(series[i-1], series[i], series[i+1])
			out[j] = SlotValue{Time: t, Value: v}
		}
		return out
	}
	return Extrema{Highs: refine(highs), Lows: refine(lows)}
}

// turningPoints returns the indices of strict local maxima and minima. The
// first and last samples are never turning points.
func turningPoints(series []SlotValue) (highs, lows []int) {
	highs, lows = []int{}, []int{}
	for i := 1; i+1 < len(series); i++ {
		prev, curr, next := series[i-1].Value, series[i].Value, series[i+1].Value
		switch {
		case curr > prev && curr > next:
			highs = append(highs, i)
		case curr < prev && curr < next:
			lows = append(lows, i)
		}
	}
	return highs, lows
}

// RefineExtremum returns the vertex of the parabola through a turning point and
// its neighbours. The sampled point is kept when the neighbours are not equally
// spaced, the three values are collinear or the vertex lies outside the bracket.
func RefineExtremum(before, peak, after SlotValue) (time.Time, float64) {
	step := peak.Time.Sub(before.Time)
	if step <= 0 || after.Time.Sub(peak.Time) != step {
		return peak.Time, peak.Value
	}

	curvature := before.Value - 2*peak.Value + after.Value
	if math.Abs(curvature) < 1e-12 {
		return peak.Time, peak.Value
	}

	// Vertex offset from the peak, in steps.
	u := (before.Value - after.Value) / (2 * curvature)
	if math.Abs(u) > 1 {
		return peak.Time, peak.Value
	}

	return peak.Time.Add(time.Duration(u * float64(step))), peak.Value - (before.Value-after.Value)*u/4
}
