package usecase

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
	"github.com/UndeadFairy/MagneticModel/internal/magtime"
)

// ErrInvalidRequest is returned when a request fails validation.
var ErrInvalidRequest = errors.New("invalid request")

// ModelRef selects the model of a request: either an inline document or the
// name of a stored model.
type ModelRef struct {
	Model     *domain.ModelDocument
	ModelName string
}

// Validate checks that exactly one model source is given.
func (r *ModelRef) Validate() error {
	hasInline := r.Model != nil
	hasName := r.ModelName != ""

	if !hasInline && !hasName {
		return fmt.Errorf("either model or model_name must be provided")
	}
	if hasInline && hasName {
		return fmt.Errorf("model and model_name are mutually exclusive")
	}
	return nil
}

// DegreeRange holds the optional degree truncation of a request.
type DegreeRange struct {
	MinDegree *int
	MaxDegree *int
}

// Validate checks the degree bounds.
func (r *DegreeRange) Validate() error {
	if r.MinDegree != nil && *r.MinDegree < 0 {
		return fmt.Errorf("min_degree must be non-negative")
	}
	if r.MaxDegree != nil && *r.MaxDegree < 0 {
		return fmt.Errorf("max_degree must be non-negative")
	}
	return nil
}

// EvaluateRequest encapsulates a single-instant coefficient evaluation
type EvaluateRequest struct {
	ModelRef
	DegreeRange

	// Instant (mutually exclusive)
	Time    *time.Time
	MJD2000 *float64

	// Optional sub-solar point override
	SubSolar *magtime.LatLon
}

// EvaluateResponse contains the evaluated coefficients
type EvaluateResponse struct {
	Model                 string           `json:"model,omitempty"`
	Time                  string           `json:"time"`
	MJD2000               float64          `json:"mjd2000"`
	YearFraction          float64          `json:"year_fraction"`
	MagneticUniversalTime float64          `json:"magnetic_universal_time"`
	Degree                int              `json:"degree"`
	IsInternal            bool             `json:"is_internal"`
	MIORadius             float64          `json:"mio_radius"`
	WolfRatio             float64          `json:"wolf_ratio"`
	Coefficients          []CoefficientRow `json:"coefficients"`
}

// CoefficientRow is one row of the dense coefficient array, labelled with its degree
// and order. Values holds the (g, h) or (q, s) pair of order M.
type CoefficientRow struct {
	N      int        `json:"n"`
	M      int        `json:"m"`
	Values [2]float64 `json:"values"`
}

// Validate checks if the request is valid
func (r *EvaluateRequest) Validate() error {
	if err := r.ModelRef.Validate(); err != nil {
		return err
	}
	if err := r.DegreeRange.Validate(); err != nil {
		return err
	}

	if r.Time == nil && r.MJD2000 == nil {
		return fmt.Errorf("either time or mjd2000 must be provided")
	}
	if r.Time != nil && r.MJD2000 != nil {
		return fmt.Errorf("time and mjd2000 are mutually exclusive")
	}
	if r.MJD2000 != nil && (math.IsNaN(*r.MJD2000) || math.IsInf(*r.MJD2000, 0)) {
		return fmt.Errorf("mjd2000 must be finite")
	}

	return validateSubSolar(r.SubSolar)
}

func validateSubSolar(p *magtime.LatLon) error {
	if p == nil {
		return nil
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("sub-solar latitude must be between -90 and 90")
	}
	if p.Lon < -180 || p.Lon > 360 {
		return fmt.Errorf("sub-solar longitude must be between -180 and 360")
	}
	return nil
}

// CoefficientsUseCase orchestrates MIO coefficient evaluation
type CoefficientsUseCase struct {
	models    store.ModelLoader
	maxPoints int
}

// DefaultMaxPoints is the series point limit used when none is configured.
const DefaultMaxPoints = 10000

// NewCoefficientsUseCase creates a new coefficients use case. models may be nil,
// in which case only inline models are accepted.
func NewCoefficientsUseCase(models store.ModelLoader, maxPoints int) *CoefficientsUseCase {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &CoefficientsUseCase{
		models:    models,
		maxPoints: maxPoints,
	}
}

// Evaluate performs a single-instant evaluation
func (uc *CoefficientsUseCase) Evaluate(req EvaluateRequest) (*EvaluateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	doc, coeffs, err := uc.build(req.ModelRef)
	if err != nil {
		return nil, err
	}

	var mjd float64
	if req.MJD2000 != nil {
		mjd = *req.MJD2000
	} else {
		mjd = magtime.MJD2000(*req.Time)
	}

	params := domain.EvalParams{
		MinDegree: req.MinDegree,
		MaxDegree: req.MaxDegree,
		SubSolar:  req.SubSolar,
	}

	res, err := coeffs.Evaluate(mjd, params)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}

	pole := coeffs.Pole()
	mut := magtime.MagneticUniversalTime(mjd, pole.Lat, pole.Lon)
	if req.SubSolar != nil {
		mut = magtime.MagneticUniversalTimeAt(pole.Lat, pole.Lon, req.SubSolar.Lat, req.SubSolar.Lon)
	}

	return &EvaluateResponse{
		Model:                 doc.Name,
		Time:                  magtime.Time(mjd).Format(time.RFC3339Nano),
		MJD2000:               mjd,
		YearFraction:          magtime.YearFraction(mjd),
		MagneticUniversalTime: mut,
		Degree:                res.Degree,
		IsInternal:            res.IsInternal,
		MIORadius:             coeffs.MIORadius(),
		WolfRatio:             coeffs.WolfRatio(),
		Coefficients:          coefficientRows(res),
	}, nil
}

// ListModels returns the names of the stored models.
func (uc *CoefficientsUseCase) ListModels() ([]string, error) {
	if uc.models == nil {
		return []string{}, nil
	}
	return uc.models.ListModels()
}

// build resolves the model reference and constructs the evaluator.
func (uc *CoefficientsUseCase) build(ref ModelRef) (*domain.ModelDocument, *domain.MIOCoefficients, error) {
	doc := ref.Model
	if doc == nil {
		if uc.models == nil {
			return nil, nil, fmt.Errorf("%w: %s", store.ErrModelNotFound, ref.ModelName)
		}
		var err error
		doc, err = uc.models.LoadModel(ref.ModelName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load model %s: %w", ref.ModelName, err)
		}
	}

	coeffs, err := doc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build model: %w", err)
	}

	return doc, coeffs, nil
}

// coefficientRows labels each dense row with its (n, m).
func coefficientRows(res *domain.Result) []CoefficientRow {
	rows := make([]CoefficientRow, 0, domain.CoeffSize(res.Degree))
	for n := 0; n <= res.Degree; n++ {
		for m := 0; m <= n; m++ {
			row, _ := domain.SlotPosition(n, m)
			rows = append(rows, CoefficientRow{
				N:      n,
				M:      m,
				Values: [2]float64{res.Values.At(row, 0), res.Values.At(row, 1)},
			})
		}
	}
	return rows
}
