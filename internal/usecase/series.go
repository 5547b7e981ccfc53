package usecase

import (
	"fmt"
	"time"

	"github.com/UndeadFairy/MagneticModel/internal/domain"
	"github.com/UndeadFairy/MagneticModel/internal/magtime"
)

// SlotRef selects one dense coefficient slot by degree and order.
type SlotRef struct {
	N int `json:"n"`
	M int `json:"m"`
}

// SeriesRequest encapsulates a coefficient time series request
type SeriesRequest struct {
	ModelRef
	DegreeRange

	// Time range (inclusive)
	Start time.Time
	End   time.Time

	// Interval between samples (e.g., 1 hour)
	Interval time.Duration

	// Optional slot whose extrema are reported
	Slot *SlotRef
}

// SeriesResponse contains the coefficient time series
type SeriesResponse struct {
	Model      string            `json:"model,omitempty"`
	IsInternal bool              `json:"is_internal"`
	MIORadius  float64           `json:"mio_radius"`
	WolfRatio  float64           `json:"wolf_ratio"`
	Points     []SeriesPoint     `json:"points"`
	Extrema    *ExtremaResponse  `json:"extrema,omitempty"`
	Meta       map[string]string `json:"meta"`
}

// SeriesPoint holds the coefficients evaluated at one instant
type SeriesPoint struct {
	Time         string           `json:"time"`
	MJD2000      float64          `json:"mjd2000"`
	Degree       int              `json:"degree"`
	Coefficients []CoefficientRow `json:"coefficients"`
}

// SlotPoint is a single value of the selected slot
type SlotPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// ExtremaResponse contains the maxima and minima of the selected slot
type ExtremaResponse struct {
	N     int         `json:"n"`
	M     int         `json:"m"`
	Highs []SlotPoint `json:"highs"`
	Lows  []SlotPoint `json:"lows"`
}

// Validate checks if the request is valid against the point limit.
func (r *SeriesRequest) Validate(maxPoints int) error {
	if err := r.ModelRef.Validate(); err != nil {
		return err
	}
	if err := r.DegreeRange.Validate(); err != nil {
		return err
	}

	// Validate time range
	if !r.Start.Before(r.End) {
		return fmt.Errorf("start time must be before end time")
	}

	// Validate interval
	if r.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1 minute")
	}

	// Check that number of points is reasonable
	numPoints := int(r.End.Sub(r.Start)/r.Interval) + 1
	if numPoints > maxPoints {
		return fmt.Errorf("too many series points (%d > %d) - reduce time range or increase interval", numPoints, maxPoints)
	}

	if r.Slot != nil {
		if r.Slot.N < 0 || abs(r.Slot.M) > r.Slot.N {
			return fmt.Errorf("invalid slot (%d, %d)", r.Slot.N, r.Slot.M)
		}
	}

	return nil
}

// Samples evaluates the model over the requested range and returns the raw samples
// together with the model document they were computed from.
func (uc *CoefficientsUseCase) Samples(req SeriesRequest) (*domain.ModelDocument, []domain.Sample, error) {
	if err := req.Validate(uc.maxPoints); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	doc, coeffs, err := uc.build(req.ModelRef)
	if err != nil {
		return nil, nil, err
	}

	params := domain.EvalParams{
		MinDegree: req.MinDegree,
		MaxDegree: req.MaxDegree,
	}

	samples, err := domain.GenerateSeries(coeffs, req.Start.UTC(), req.End.UTC(), req.Interval, params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate series: %w", err)
	}

	return doc, samples, nil
}

// Series performs the time series evaluation
func (uc *CoefficientsUseCase) Series(req SeriesRequest) (*SeriesResponse, error) {
	doc, samples, err := uc.Samples(req)
	if err != nil {
		return nil, err
	}

	points := make([]SeriesPoint, len(samples))
	for i, s := range samples {
		points[i] = SeriesPoint{
			Time:         s.Time.UTC().Format(time.RFC3339),
			MJD2000:      s.MJD2000,
			Degree:       s.Result.Degree,
			Coefficients: coefficientRows(s.Result),
		}
	}

	response := &SeriesResponse{
		Model:      doc.Name,
		IsInternal: doc.IsInternal,
		MIORadius:  doc.MIORadius,
		WolfRatio:  doc.WolfRatio,
		Points:     points,
		Meta: map[string]string{
			"epoch":      magtime.Epoch.Format(time.RFC3339),
			"time_scale": "UTC",
		},
	}

	if req.Slot != nil {
		series := domain.SlotSeries(samples, req.Slot.N, req.Slot.M)

		extrema := domain.SlotExtrema(series)

		response.Extrema = &ExtremaResponse{
			N:     req.Slot.N,
			M:     req.Slot.M,
			Highs: slotPoints(extrema.Highs),
			Lows:  slotPoints(extrema.Lows),
		}
	}

	return response, nil
}

func slotPoints(values []domain.SlotValue) []SlotPoint {
	out := make([]SlotPoint, len(values))
	for i, v := range values {
		out[i] = SlotPoint{
			Time:  v.Time.UTC().Format(time.RFC3339),
			Value: v.Value,
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
