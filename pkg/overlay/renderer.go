// Package overlay draws targeting annotations onto color frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Annotation is everything the renderer needs for one detected object.
type Annotation struct {
	Label string

	// Shrunk is the reduced box actually sampled for depth; the
	// rectangle is drawn there so the operator sees what was measured.
	Shrunk image.Rectangle

	// CenterX/CenterY anchor the text at the unreduced box center.
	CenterX float64
	CenterY float64

	RangeM       float64
	RangeValid   bool
	AzimuthDeg   float64
	ElevationDeg float64
}

// Renderer composites annotations onto a copy of each frame.
// Boxes are drawn in set order; later boxes paint over earlier ones.
type Renderer struct {
	BoxColor     color.RGBA
	TextColor    color.RGBA
	BoxThickness int
	FontScale    float64
}

// NewRenderer returns a renderer with the standard palette:
// blue measurement boxes, green text.
func NewRenderer() *Renderer {
	return &Renderer{
		BoxColor:     color.RGBA{B: 255},
		TextColor:    color.RGBA{G: 255},
		BoxThickness: 2,
		FontScale:    0.5,
	}
}

// Render returns a copy of src with all annotations drawn.
// The caller owns the returned Mat and must Close it.
func (r *Renderer) Render(src gocv.Mat, anns []Annotation) gocv.Mat {
	out := src.Clone()
	for _, a := range anns {
		r.draw(&out, a)
	}
	return out
}

func (r *Renderer) draw(img *gocv.Mat, a Annotation) {
	gocv.Rectangle(img, a.Shrunk, r.BoxColor, r.BoxThickness)

	anchor := image.Pt(int(a.CenterX), int(a.CenterY))
	gocv.PutText(img, a.Label, anchor, gocv.FontHersheySimplex, r.FontScale, r.TextColor, 1)

	// Second line sits directly below the label
	dataAnchor := image.Pt(anchor.X, anchor.Y+15)
	gocv.PutText(img, formatData(a), dataAnchor, gocv.FontHersheySimplex, r.FontScale, r.TextColor, 1)
}

// formatData builds the range/bearing line, e.g. "2.0m,10d,-5d".
// An invalid range renders as the literal "nan".
func formatData(a Annotation) string {
	rangeText := "nan"
	if a.RangeValid {
		rangeText = fmt.Sprintf("%.1f", a.RangeM)
	}
	return fmt.Sprintf("%sm,%.0fd,%.0fd", rangeText, a.AzimuthDeg, a.ElevationDeg)
}
