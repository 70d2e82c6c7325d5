package imageio

import "slices"

// Frame is one image array: FITS axis lengths plus row-major float32 pixels.
type Frame struct {
	Axes   []int
	Pixels []float32
}

// NewFrame allocates a zero-filled frame with the given axis lengths.
func NewFrame(axes ...int) *Frame {
	n := 1
	for _, axis := range axes {
		n *= axis
	}
	return &Frame{Axes: slices.Clone(axes), Pixels: make([]float32, n)}
}

// Len returns the pixel count.
func (f *Frame) Len() int {
	return len(f.Pixels)
}

// SameShape reports whether two frames share identical axis lengths.
func (f *Frame) SameShape(other *Frame) bool {
	if f == nil || other == nil {
		return false
	}
	return slices.Equal(f.Axes, other.Axes)
}
