package targeting

import (
	"gonum.org/v1/gonum/stat"

	"github.com/avosky/go-targeting/pkg/depth"
	"github.com/avosky/go-targeting/pkg/detect"
)

// SentinelRange is the wire value reported when no valid range exists.
// Kept for output compatibility; internal code uses Range.Valid instead.
const SentinelRange = -999.0

// Range is a range measurement that may be invalid.
type Range struct {
	Meters float64
	Valid  bool
}

// Sentinel returns the range in meters, or SentinelRange when invalid.
// Only the output boundary (protocol encoding, overlay text) should
// need this.
func (r Range) Sentinel() float64 {
	if !r.Valid {
		return SentinelRange
	}
	return r.Meters
}

// EstimateRange computes the range to one detection box from the held
// depth matrix. A nil matrix means no depth has arrived (or it did not
// match the driving frame) and yields an invalid range.
//
// The depth-window filter gates validity only: when enough samples fall
// inside the band around the region mean, the reported range is the
// mean of the whole unfiltered region, not of the surviving samples.
// Downstream consumers are calibrated against that behavior, so keep it.
func EstimateRange(m *depth.Matrix, box detect.Box, g Geometry) Range {
	if m == nil {
		return Range{}
	}

	shrunk := box.Shrink(g.BoxReductionPct)
	samples := m.Region(shrunk)
	if len(samples) == 0 {
		// Degenerate box: reduction consumed an axis entirely
		return Range{}
	}

	region := make([]float64, len(samples))
	for i, v := range samples {
		region[i] = float64(v)
	}
	mean := stat.Mean(region, nil)

	lo := mean - g.DepthWindowM/2
	hi := mean + g.DepthWindowM/2
	inBand := 0
	for _, v := range region {
		if v > lo && v < hi {
			inBand++
		}
	}
	if inBand <= g.MinValidSamples {
		return Range{}
	}

	return Range{Meters: mean, Valid: true}
}
