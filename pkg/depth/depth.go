// Package depth holds the registered depth frame used for target ranging.
// Depth frames arrive as raw float32 meters and are sanitized on ingest:
// NaN and infinite samples become 0 (no reading).
package depth

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Matrix is an immutable depth frame in float32 meters, row-major.
// Build one with FromFloats or FromMat; never mutate it after that.
// Readers always see a whole frame because the holder swaps pointers.
type Matrix struct {
	width  int
	height int
	data   []float32
}

// FromFloats builds a Matrix from a row-major float32 buffer.
// The buffer is copied; NaN and ±Inf samples are zeroed.
func FromFloats(data []float32, width, height int) (*Matrix, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid depth dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("depth buffer has %d samples, want %d", len(data), width*height)
	}

	m := &Matrix{
		width:  width,
		height: height,
		data:   make([]float32, len(data)),
	}
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue // leave as 0
		}
		m.data[i] = v
	}
	return m, nil
}

// FromMat builds a Matrix from a single-channel 32-bit float Mat,
// as produced by stereo depth cameras.
func FromMat(mat gocv.Mat) (*Matrix, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty depth mat")
	}
	if mat.Type() != gocv.MatTypeCV32F {
		return nil, fmt.Errorf("depth mat type %v, want CV32F", mat.Type())
	}
	data, err := mat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read depth mat data: %w", err)
	}
	return FromFloats(data, mat.Cols(), mat.Rows())
}

// Width returns the matrix width in pixels.
func (m *Matrix) Width() int { return m.width }

// Height returns the matrix height in pixels.
func (m *Matrix) Height() int { return m.height }

// Matches reports whether the matrix covers a frame of the given dimensions.
func (m *Matrix) Matches(width, height int) bool {
	return m.width == width && m.height == height
}

// At returns the depth at pixel (x, y) in meters.
func (m *Matrix) At(x, y int) float32 {
	return m.data[y*m.width+x]
}

// Region returns a flattened copy of the samples inside r.
// The rectangle is clipped to the matrix bounds; an empty or fully
// out-of-bounds rectangle yields an empty slice.
func (m *Matrix) Region(r image.Rectangle) []float32 {
	bounds := image.Rect(0, 0, m.width, m.height)
	r = r.Intersect(bounds)
	if r.Empty() {
		return nil
	}

	out := make([]float32, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.data[y*m.width+r.Min.X : y*m.width+r.Max.X]
		out = append(out, row...)
	}
	return out
}
