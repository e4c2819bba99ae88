package targeting

import (
	"github.com/avosky/go-targeting/pkg/depth"
	"github.com/avosky/go-targeting/pkg/detect"
)

// Localization is one range/bearing estimate for one detected object.
// A fresh set is derived on every driving frame; records are never
// deduplicated or persisted.
type Localization struct {
	Label        string
	Range        Range
	AzimuthDeg   float64
	ElevationDeg float64
}

// Localize produces the estimate for one detection box.
// m may be nil when no usable depth frame is held; bearing is still
// computed in that case.
func Localize(m *depth.Matrix, box detect.Box, width, height int, g Geometry) Localization {
	cx, cy := box.Center()
	bearing := EstimateBearing(width, height, cx, cy, g)
	return Localization{
		Label:        box.Label,
		Range:        EstimateRange(m, box, g),
		AzimuthDeg:   bearing.AzimuthDeg,
		ElevationDeg: bearing.ElevationDeg,
	}
}
