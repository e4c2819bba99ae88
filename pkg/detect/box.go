// Package detect defines detection boxes and the shared detection-set
// state that the targeting engine reads on every color frame.
package detect

import "image"

// Box is one object-detection bounding box in pixel coordinates.
// XMin < XMax and YMin < YMax for a well-formed box.
type Box struct {
	Label string `json:"label"`
	XMin  int    `json:"xmin"`
	YMin  int    `json:"ymin"`
	XMax  int    `json:"xmax"`
	YMax  int    `json:"ymax"`
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

// Center returns the unreduced box center in pixel coordinates.
func (b Box) Center() (cx, cy float64) {
	cx = float64(b.XMin) + float64(b.XMax-b.XMin)/2
	cy = float64(b.YMin) + float64(b.YMax-b.YMin)/2
	return cx, cy
}

// Shrink reduces the box symmetrically toward its center by
// reductionPct percent of each axis extent (half removed per side).
// The per-side reduction truncates to an integer pixel count.
// A large enough reduction can produce an empty rectangle.
func (b Box) Shrink(reductionPct float64) image.Rectangle {
	dx := int(float64(b.XMax-b.XMin) * reductionPct / 100 / 2)
	dy := int(float64(b.YMax-b.YMin) * reductionPct / 100 / 2)
	return image.Rect(b.XMin+dx, b.YMin+dy, b.XMax-dx, b.YMax-dy)
}

// Valid reports whether the box has positive extent on both axes.
func (b Box) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}
