package chart

import (
	"bytes"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRender(t *testing.T) {
	r := NewRenderer()
	labels := []string{"Water (ml)", "Calories in", "Calories burned"}
	goals := []float64{1900, 2301.41, 500}
	actuals := []float64{750, 78, 200}

	png, err := r.Render(labels, goals, actuals, "Progress for 2025-02-05")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("Render output does not start with PNG magic bytes")
	}
}

func TestRenderMismatchedLengths(t *testing.T) {
	r := NewRenderer()
	tests := []struct {
		name    string
		labels  []string
		goals   []float64
		actuals []float64
	}{
		{name: "empty", labels: nil, goals: nil, actuals: nil},
		{name: "short goals", labels: []string{"a", "b"}, goals: []float64{1}, actuals: []float64{1, 2}},
		{name: "short actuals", labels: []string{"a", "b"}, goals: []float64{1, 2}, actuals: []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Render(tt.labels, tt.goals, tt.actuals, "t"); err == nil {
				t.Error("Render succeeded, want length-mismatch error")
			}
		})
	}
}
