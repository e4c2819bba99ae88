// Package enhance provides automatic contrast/brightness correction for
// color frames. The gain and offset are derived per frame from the
// grayscale histogram: the darkest and brightest half-percent of pixels
// are clipped and the remaining band is stretched across the full range.
package enhance

import (
	"gocv.io/x/gocv"
)

// DefaultSensitivity matches the field-tuned enhancement strength.
// Higher values stretch harder; 0 disables most of the effect.
const DefaultSensitivity = 0.5

// Limits on the derived linear transform, to keep a pathological
// histogram from blowing out the frame.
const (
	maxAlpha = 2.0
	minBeta  = -50.0
)

// Enhancer applies the auto contrast/brightness stage.
type Enhancer struct {
	Sensitivity float64
}

// New returns an enhancer with the default sensitivity.
func New() *Enhancer {
	return &Enhancer{Sensitivity: DefaultSensitivity}
}

// Apply returns an enhanced copy of src. The caller owns the returned
// Mat and must Close it. src is not modified.
func (e *Enhancer) Apply(src gocv.Mat) gocv.Mat {
	alpha, beta := e.transformFor(src)

	out := gocv.NewMat()
	src.ConvertToWithParams(&out, gocv.MatTypeCV8UC3, float32(alpha), float32(beta))
	return out
}

// transformFor derives the per-frame linear transform out = alpha*in + beta.
func (e *Enhancer) transformFor(src gocv.Mat) (alpha, beta float64) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.CalcHist([]gocv.Mat{gray}, []int{0}, mask, &hist, []int{256}, []float64{0, 256}, false)

	// Cumulative distribution
	acc := make([]float64, 256)
	acc[0] = float64(hist.GetFloatAt(0, 0))
	for i := 1; i < 256; i++ {
		acc[i] = acc[i-1] + float64(hist.GetFloatAt(i, 0))
	}

	total := acc[255]
	if total == 0 {
		return 1, 0
	}
	clip := total / 100.0 / 2.0

	// Cut the histogram tails
	minGray := 0
	for minGray < 250 && acc[minGray] < clip {
		minGray += 5
	}
	maxGray := 255
	for maxGray > minGray && acc[maxGray] >= total-clip {
		maxGray--
	}
	if maxGray <= minGray {
		return 1, 0
	}

	strength := 0.5 + e.Sensitivity
	alpha = 255 / float64(maxGray-minGray) * strength
	if alpha > maxAlpha {
		alpha = maxAlpha
	}
	beta = (-float64(minGray)*alpha + 10) * strength
	if beta < minBeta {
		beta = minBeta
	}
	return alpha, beta
}
