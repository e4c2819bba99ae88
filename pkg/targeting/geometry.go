// Package targeting computes range and bearing for detected objects by
// fusing detection boxes with a registered depth frame. One estimation
// cycle runs per color frame using whatever depth and detection state is
// currently held; nothing waits for fresh input.
package targeting

import (
	"fmt"

	"github.com/avosky/go-targeting/internal/config"
)

// Geometry holds the fixed camera and estimator parameters.
// These are set at startup and never change at runtime.
type Geometry struct {
	// Camera field of view in degrees
	FOVHorizDeg float64 `json:"fov_horz_deg"`
	FOVVertDeg  float64 `json:"fov_vert_deg"`

	// BoxReductionPct shrinks each detection box toward its center
	// before depth sampling, to avoid edge/background contamination.
	// Percent of each axis extent, in [0, 100).
	BoxReductionPct float64 `json:"box_reduction_pct"`

	// DepthWindowM is the tolerance band around the region's mean
	// depth used to reject outlier samples, in meters.
	DepthWindowM float64 `json:"depth_window_m"`

	// MinValidSamples is the in-band sample count a region must
	// exceed for its range to be considered valid.
	MinValidSamples int `json:"min_valid_samples"`
}

// DefaultGeometry returns the parameters for the ZED 2 left camera rig.
func DefaultGeometry() Geometry {
	return Geometry{
		FOVHorizDeg:     110,
		FOVVertDeg:      70,
		BoxReductionPct: 50,
		DepthWindowM:    0.3,
		MinValidSamples: 10,
	}
}

// GeometryFromEnv returns DefaultGeometry with any TARGETING_FOV_HORZ_DEG,
// TARGETING_FOV_VERT_DEG, TARGETING_BOX_REDUCTION_PCT, TARGETING_DEPTH_WINDOW_M
// and TARGETING_MIN_VALID_SAMPLES overrides applied.
func GeometryFromEnv() Geometry {
	g := DefaultGeometry()
	g.FOVHorizDeg = config.Float("TARGETING_FOV_HORZ_DEG", g.FOVHorizDeg)
	g.FOVVertDeg = config.Float("TARGETING_FOV_VERT_DEG", g.FOVVertDeg)
	g.BoxReductionPct = config.Float("TARGETING_BOX_REDUCTION_PCT", g.BoxReductionPct)
	g.DepthWindowM = config.Float("TARGETING_DEPTH_WINDOW_M", g.DepthWindowM)
	g.MinValidSamples = config.Int("TARGETING_MIN_VALID_SAMPLES", g.MinValidSamples)
	return g
}

// Validate checks the geometry is usable.
func (g Geometry) Validate() error {
	if g.FOVHorizDeg <= 0 || g.FOVVertDeg <= 0 {
		return fmt.Errorf("field of view must be positive, got %.1fx%.1f", g.FOVHorizDeg, g.FOVVertDeg)
	}
	if g.BoxReductionPct < 0 || g.BoxReductionPct >= 100 {
		return fmt.Errorf("box reduction %.1f%% outside [0, 100)", g.BoxReductionPct)
	}
	if g.DepthWindowM <= 0 {
		return fmt.Errorf("depth window must be positive, got %.2fm", g.DepthWindowM)
	}
	if g.MinValidSamples < 1 {
		return fmt.Errorf("min valid samples must be at least 1, got %d", g.MinValidSamples)
	}
	return nil
}
