// Package chart renders the nutrition bar chart attached to each recommendation.
package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Renderer turns nutrition facts into an encoded image.
type Renderer interface {
	Render(n models.Nutrition) ([]byte, error)
}

// Default chart text.
const (
	DefaultTitle = "Nutritional Breakdown"
	XAxisLabel   = "Nutrient"
	YAxisLabel   = "Amount (g)"
)

// barColors cycle across the bars in nutrient order.
var barColors = []drawing.Color{
	drawing.ColorFromHex("FF9999"),
	drawing.ColorFromHex("66B3FF"),
	drawing.ColorFromHex("99FF99"),
}

// BarRenderer draws a PNG bar chart with one bar per nutrient. It holds no mutable
// state, so one value is safe for concurrent use, and the same input always yields
// the same bytes.
type BarRenderer struct {
	width  int
	height int
	title  string
}

// Option configures a BarRenderer.
type Option func(*BarRenderer)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(r *BarRenderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(r *BarRenderer) {
		if title != "" {
			r.title = title
		}
	}
}

// NewBarRenderer returns a 512x512 renderer titled DefaultTitle unless overridden.
func NewBarRenderer(opts ...Option) *BarRenderer {
	r := &BarRenderer{width: 512, height: 512, title: DefaultTitle}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the chart for n and returns PNG bytes. Failures wrap models.ErrRender.
func (r *BarRenderer) Render(n models.Nutrition) ([]byte, error) {
	values := n.Values()
	bars := make([]chart.Value, len(values))
	lo, hi := 0.0, 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s is not finite", models.ErrRender, models.NutritionLabels[i])
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		color := barColors[i%len(barColors)]
		bars[i] = chart.Value{
			Label: models.NutritionLabels[i],
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
		}
	}

	graph := chart.BarChart{
		Title:      r.title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   r.width / (2 * len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 24, Right: 24, Bottom: 48}},
		XAxis:      chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
		YAxis: chart.YAxis{
			Name: YAxisLabel,
			// All-zero input would otherwise collapse the range to nothing.
			Range: &chart.ContinuousRange{Min: lo * 1.1, Max: math.Max(hi, 1) * 1.1},
		},
		Bars:     bars,
		Elements: []chart.Renderable{xAxisCaption(XAxisLabel)},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRender, err)
	}
	return buf.Bytes(), nil
}

// xAxisCaption writes the x axis name, which BarChart does not draw itself.
func xAxisCaption(text string) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		style := chart.Style{
			Font:      defaults.Font,
			FontSize:  10,
			FontColor: drawing.ColorBlack,
		}
		width := chart.Draw.MeasureText(r, text, style).Width()
		chart.Draw.Text(r, text, canvas.Left+(canvas.Width()-width)/2, canvas.Bottom+36, style)
	}
}
