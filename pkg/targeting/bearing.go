package targeting

// Bearing is the angular offset of a target from the camera boresight,
// in degrees. Azimuth is positive to the right of image center,
// elevation is positive above it.
type Bearing struct {
	AzimuthDeg   float64
	ElevationDeg float64
}

// EstimateBearing converts a pixel position to a bearing using the
// camera field of view. The mapping is linear in pixel offset from
// image center: a target at the frame edge sits at ±FOV/2.
//
// The vertical term is negated because pixel rows grow downward while
// elevation grows upward.
func EstimateBearing(width, height int, cx, cy float64, g Geometry) Bearing {
	halfW := float64(width) / 2
	halfH := float64(height) / 2

	xRatio := (cx - halfW) / halfW
	yRatio := (cy - halfH) / halfH

	return Bearing{
		AzimuthDeg:   xRatio * (g.FOVHorizDeg / 2),
		ElevationDeg: -(yRatio * (g.FOVVertDeg / 2)),
	}
}
