package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/UndeadFairy/MagneticModel/internal/domain"
)

// WriteChart renders the time series of one coefficient slot as a PNG line chart,
// marking the given extrema.
func WriteChart(w io.Writer, title string, series []domain.SlotValue, extrema domain.Extrema) error {
	if len(series) < 2 {
		return errors.New("chart needs at least two points")
	}

	xValues := make([]time.Time, len(series))
	yValues := make([]float64, len(series))
	for i, v := range series {
		xValues[i] = v.Time
		yValues[i] = v.Value
	}

	mainSeries := chart.TimeSeries{
		Name: title,
		Style: chart.Style{
			StrokeColor: drawing.Color{R: 51, G: 102, B: 204, A: 255}, // Blue
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   70,
				Right:  20,
				Bottom: 60,
			},
		},
		Height: 350,
		Width:  800,
		XAxis: chart.XAxis{
			Name: "Time (UTC)",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 9,
			},
			ValueFormatter: timeFormatter(xValues[len(xValues)-1].Sub(xValues[0])),
		},
		YAxis: chart.YAxis{
			Name: "Coefficient",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
			Range: valueRange(yValues),
		},
		Series: []chart.Series{mainSeries},
	}

	if marks := extremaSeries("Maxima", extrema.Highs, drawing.Color{R: 255, G: 0, B: 0, A: 255}); marks != nil {
		graph.Series = append(graph.Series, marks)
	}
	if marks := extremaSeries("Minima", extrema.Lows, drawing.Color{R: 0, G: 153, B: 0, A: 255}); marks != nil {
		graph.Series = append(graph.Series, marks)
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// extremaSeries draws extrema as dots without a connecting line.
func extremaSeries(name string, points []domain.SlotValue, color drawing.Color) chart.Series {
	if len(points) == 0 {
		return nil
	}
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Time
		ys[i] = p.Value
	}
	return chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotColor:    color,
			DotWidth:    4,
		},
		XValues: xs,
		YValues: ys,
	}
}

// valueRange pads the data range so that flat series still render.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = -1, 1
	}
	pad := 0.05 * (hi - lo)
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func timeFormatter(span time.Duration) chart.ValueFormatter {
	if span > 14*24*time.Hour {
		return chart.TimeValueFormatterWithFormat("2006-01-02")
	}
	return chart.TimeValueFormatterWithFormat("01-02 15:04")
}
