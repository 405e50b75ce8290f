package report

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/wrcfit/retention"
)

// Grid sizes and the fixed export range.
const (
	PlotPoints   = 200
	ExportPoints = 1000
	ExportMin    = 1e-2
	ExportMax    = 1e6
)

// PlotGrid returns PlotPoints log-spaced suctions spanning the positive
// suctions of s, merged with those suctions and sorted. When s contains a
// zero suction the grid starts one decade below the smallest positive one.
// It returns nil when s has no positive suction.
func PlotGrid(s retention.Sample) []float64 {
	var positive []float64
	hasZero := false
	for _, v := range s.Psi() {
		if v > 0 {
			positive = append(positive, v)
		} else {
			hasZero = true
		}
	}
	if len(positive) == 0 {
		return nil
	}

	lo, hi := floats.Min(positive), floats.Max(positive)
	if hasZero {
		lo /= 10
	}
	grid := make([]float64, PlotPoints, PlotPoints+len(positive))
	floats.LogSpan(grid, lo, hi)
	grid = append(grid, positive...)
	sort.Float64s(grid)
	return grid
}

// ExportGrid returns ExportPoints log-spaced suctions from ExportMin to
// ExportMax.
func ExportGrid() []float64 {
	grid := make([]float64, ExportPoints)
	floats.LogSpan(grid, ExportMin, ExportMax)
	return grid
}
