package firemodel

// Mask is a dense 2D boolean grid with the same shape as the rescaled
// scan it was computed from.
type Mask struct {
	data   []bool
	height int
	width  int
}

// NewMask allocates an all-false mask.
func NewMask(height, width int) Mask {
	return Mask{data: make([]bool, height*width), height: height, width: width}
}

// Height returns the number of rows.
func (m Mask) Height() int { return m.height }

// Width returns the number of columns.
func (m Mask) Width() int { return m.width }

// At returns the value at (row, col).
func (m Mask) At(row, col int) bool {
	return m.data[row*m.width+col]
}

// Set writes the value at (row, col).
func (m Mask) Set(row, col int, v bool) {
	m.data[row*m.width+col] = v
}

// Count returns the number of true pixels.
func (m Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Mean returns the fraction of true pixels. A scan is labeled positive
// when the mean of its prediction mask is strictly greater than zero.
func (m Mask) Mean() float64 {
	if len(m.data) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.data))
}

// Any reports whether at least one pixel is true.
func (m Mask) Any() bool {
	for _, v := range m.data {
		if v {
			return true
		}
	}
	return false
}
