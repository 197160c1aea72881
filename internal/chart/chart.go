// Package chart renders progress bar charts as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Renderer turns a (labels, goals, actuals, title) tuple into a PNG artifact.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with the default canvas size.
func NewRenderer() *Renderer {
	return &Renderer{width: 640, height: 420}
}

var (
	goalColor   = drawing.Color{R: 120, G: 160, B: 220, A: 255}
	actualColor = drawing.Color{R: 70, G: 200, B: 120, A: 255}
)

// Render draws paired goal/actual bars per category and returns PNG bytes.
// Labels, goals, and actuals must have equal length.
func (r *Renderer) Render(labels []string, goals, actuals []float64, title string) ([]byte, error) {
	if len(labels) == 0 || len(labels) != len(goals) || len(labels) != len(actuals) {
		return nil, fmt.Errorf("mismatched chart series lengths: %d labels, %d goals, %d actuals",
			len(labels), len(goals), len(actuals))
	}

	bars := make([]chart.Value, 0, len(labels)*2)
	for i, label := range labels {
		bars = append(bars,
			chart.Value{
				Label: label + " goal",
				Value: goals[i],
				Style: chart.Style{FillColor: goalColor, StrokeColor: goalColor},
			},
			chart.Value{
				Label: label,
				Value: actuals[i],
				Style: chart.Style{FillColor: actualColor, StrokeColor: actualColor},
			},
		)
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 60,
		Bars:     bars,
		XAxis:    chart.Style{TextRotationDegrees: 0},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		slog.Error("Chart render failed", "error", err, "title", title)
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	slog.Debug("Chart rendered", "title", title, "bytes", buf.Len())
	return buf.Bytes(), nil
}
