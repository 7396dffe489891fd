package goes

import (
	"fmt"
	"math"
)

// Grid is a dense 2D raster of float64 samples backed by a flat slice.
// NaN is the invalid-value marker for missing, saturated, or otherwise
// unusable samples.
type Grid struct {
	data   []float64
	height int
	width  int
}

// NewGrid allocates a Grid of the given shape with every sample set to NaN.
func NewGrid(height, width int) Grid {
	data := make([]float64, height*width)
	for i := range data {
		data[i] = math.NaN()
	}
	return Grid{data: data, height: height, width: width}
}

// NewGridFrom wraps a flat row-major slice as a Grid.
func NewGridFrom(data []float64, height, width int) (Grid, error) {
	if len(data) != height*width {
		return Grid{}, fmt.Errorf("grid size mismatch: %d samples for %dx%d", len(data), height, width)
	}
	return Grid{data: data, height: height, width: width}, nil
}

// Height returns the number of rows.
func (g Grid) Height() int { return g.height }

// Width returns the number of columns.
func (g Grid) Width() int { return g.width }

// At returns the sample at (row, col).
func (g Grid) At(row, col int) float64 {
	return g.data[row*g.width+col]
}

// Set writes the sample at (row, col).
func (g Grid) Set(row, col int, v float64) {
	g.data[row*g.width+col] = v
}

// SameShape reports whether two grids have identical dimensions.
func (g Grid) SameShape(other Grid) bool {
	return g.height == other.height && g.width == other.width
}

// Map returns a new Grid with fn applied to every sample.
func (g Grid) Map(fn func(float64) float64) Grid {
	out := make([]float64, len(g.data))
	for i, v := range g.data {
		out[i] = fn(v)
	}
	return Grid{data: out, height: g.height, width: g.width}
}
