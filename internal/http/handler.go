package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UndeadFairy/MagneticModel/internal/adapter/store"
	"github.com/UndeadFairy/MagneticModel/internal/domain"
	"github.com/UndeadFairy/MagneticModel/internal/magtime"
	"github.com/UndeadFairy/MagneticModel/internal/usecase"
)

// Handler handles HTTP requests for MIO coefficient evaluation.
type Handler struct {
	coefficientsUC *usecase.CoefficientsUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(coefficientsUC *usecase.CoefficientsUseCase) *Handler {
	return &Handler{
		coefficientsUC: coefficientsUC,
	}
}

// evaluateBody is the JSON body of POST /v1/mio/coefficients.
type evaluateBody struct {
	Model     *domain.ModelDocument `json:"model"`
	ModelName string                `json:"model_name"`
	Time      *time.Time            `json:"time"`
	MJD2000   *float64              `json:"mjd2000"`
	MinDegree *int                  `json:"min_degree"`
	MaxDegree *int                  `json:"max_degree"`
	SubSolar  *magtime.LatLon       `json:"sub_solar"`
}

// seriesBody is the JSON body of POST /v1/mio/series.
type seriesBody struct {
	Model     *domain.ModelDocument `json:"model"`
	ModelName string                `json:"model_name"`
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
	Interval  string                `json:"interval"`
	MinDegree *int                  `json:"min_degree"`
	MaxDegree *int                  `json:"max_degree"`
	Slot      *usecase.SlotRef      `json:"slot"`
}

// PostCoefficients handles POST /v1/mio/coefficients.
func (h *Handler) PostCoefficients(c *gin.Context) {
	var body evaluateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(bindStatus(err), gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	req := usecase.EvaluateRequest{
		ModelRef:    usecase.ModelRef{Model: body.Model, ModelName: body.ModelName},
		DegreeRange: usecase.DegreeRange{MinDegree: body.MinDegree, MaxDegree: body.MaxDegree},
		Time:        body.Time,
		MJD2000:     body.MJD2000,
		SubSolar:    body.SubSolar,
	}

	h.evaluate(c, req)
}

// GetCoefficients handles GET /v1/mio/coefficients for stored models.
func (h *Handler) GetCoefficients(c *gin.Context) {
	req := usecase.EvaluateRequest{
		ModelRef: usecase.ModelRef{ModelName: c.Query("model")},
	}

	// Parse time (RFC3339) or mjd2000.
	if timeStr := c.Query("time"); timeStr != "" {
		t, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid time (expected RFC3339): %v", err)})
			return
		}
		t = t.UTC()
		req.Time = &t
	}
	mjd, ok := queryFloat(c, "mjd2000")
	if !ok {
		return
	}
	req.MJD2000 = mjd

	if req.MinDegree, ok = queryInt(c, "min_degree"); !ok {
		return
	}
	if req.MaxDegree, ok = queryInt(c, "max_degree"); !ok {
		return
	}

	// Parse optional sub-solar point.
	lat, ok := queryFloat(c, "sub_solar_lat")
	if !ok {
		return
	}
	lon, ok := queryFloat(c, "sub_solar_lon")
	if !ok {
		return
	}
	if (lat == nil) != (lon == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sub_solar_lat and sub_solar_lon must be given together"})
		return
	}
	if lat != nil {
		req.SubSolar = &magtime.LatLon{Lat: *lat, Lon: *lon}
	}

	h.evaluate(c, req)
}

func (h *Handler) evaluate(c *gin.Context, req usecase.EvaluateRequest) {
	response, err := h.coefficientsUC.Evaluate(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// PostSeries handles POST /v1/mio/series.
func (h *Handler) PostSeries(c *gin.Context) {
	var body seriesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(bindStatus(err), gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	interval, err := parseInterval(body.Interval)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := usecase.SeriesRequest{
		ModelRef:    usecase.ModelRef{Model: body.Model, ModelName: body.ModelName},
		DegreeRange: usecase.DegreeRange{MinDegree: body.MinDegree, MaxDegree: body.MaxDegree},
		Start:       body.Start.UTC(),
		End:         body.End.UTC(),
		Interval:    interval,
		Slot:        body.Slot,
	}

	h.series(c, req)
}

// GetSeries handles GET /v1/mio/series for stored models.
func (h *Handler) GetSeries(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")

	// Parse time range.
	if startStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start parameter is required"})
		return
	}
	if endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end parameter is required"})
		return
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid start time (expected RFC3339): %v", err)})
		return
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid end time (expected RFC3339): %v", err)})
		return
	}

	interval, err := parseInterval(c.Query("interval"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := usecase.SeriesRequest{
		ModelRef: usecase.ModelRef{ModelName: c.Query("model")},
		Start:    start.UTC(),
		End:      end.UTC(),
		Interval: interval,
	}

	var ok bool
	if req.MinDegree, ok = queryInt(c, "min_degree"); !ok {
		return
	}
	if req.MaxDegree, ok = queryInt(c, "max_degree"); !ok {
		return
	}

	// Parse optional slot for extrema.
	n, ok := queryInt(c, "n")
	if !ok {
		return
	}
	m, ok := queryInt(c, "m")
	if !ok {
		return
	}
	if n != nil {
		slot := usecase.SlotRef{N: *n}
		if m != nil {
			slot.M = *m
		}
		req.Slot = &slot
	}

	h.series(c, req)
}

func (h *Handler) series(c *gin.Context, req usecase.SeriesRequest) {
	response, err := h.coefficientsUC.Series(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMagneticTime handles GET /v1/time/magnetic.
func (h *Handler) GetMagneticTime(c *gin.Context) {
	req := usecase.MagneticTimeRequest{Time: time.Now().UTC()}

	if timeStr := c.Query("time"); timeStr != "" {
		t, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid time (expected RFC3339): %v", err)})
			return
		}
		req.Time = t.UTC()
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"lat_ngp", &req.LatNGP},
		{"lon_ngp", &req.LonNGP},
	} {
		v, ok := queryFloat(c, p.name)
		if !ok {
			return
		}
		if v == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s parameter is required", p.name)})
			return
		}
		*p.dst = *v
	}

	response, err := h.coefficientsUC.MagneticTime(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(c *gin.Context) {
	models, err := h.coefficientsUC.ListModels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest), errors.Is(err, store.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidConfiguration), errors.Is(err, domain.ErrShapeMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// bindStatus maps body decoding errors; malformed model tensors are reported
// like the other model errors.
func bindStatus(err error) int {
	if errors.Is(err, domain.ErrShapeMismatch) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// parseInterval parses a duration, defaulting to one hour.
func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval: %w", err)
	}
	return d, nil
}

// queryFloat parses an optional float query parameter. On failure it writes a
// 400 response and returns false.
func queryFloat(c *gin.Context, name string) (*float64, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", name, err)})
		return nil, false
	}
	return &v, true
}

// queryInt parses an optional integer query parameter. On failure it writes a
// 400 response and returns false.
func queryInt(c *gin.Context, name string) (*int, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", name, err)})
		return nil, false
	}
	return &v, true
}
