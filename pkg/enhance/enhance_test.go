package enhance

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func flatFrame(value float64, w, h int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), h, w, gocv.MatTypeCV8UC3)
}

func TestTransformFlatFrameIsIdentity(t *testing.T) {
	// A single-value histogram has no band to stretch
	src := flatFrame(100, 64, 48)
	defer src.Close()

	alpha, beta := New().transformFor(src)
	if alpha != 1 || beta != 0 {
		t.Errorf("transform = (%v, %v), want identity (1, 0)", alpha, beta)
	}
}

func TestTransformTwoToneFrame(t *testing.T) {
	// Half black, half white: the band already spans the full range,
	// so the derived gain stays near 1.
	src := flatFrame(0, 64, 48)
	defer src.Close()
	gocv.Rectangle(&src, image.Rect(0, 0, 32, 48), color.RGBA{R: 255, G: 255, B: 255}, -1)

	alpha, beta := New().transformFor(src)
	if alpha < 1 || alpha > 1.1 {
		t.Errorf("alpha = %v, want near 1 for a full-range frame", alpha)
	}
	if math.Abs(beta-10) > 1e-6 {
		t.Errorf("beta = %v, want 10", beta)
	}
}

func TestTransformRespectsLimits(t *testing.T) {
	// A narrow-band frame wants a huge stretch; the caps hold it at
	// maxAlpha / minBeta.
	src := flatFrame(100, 64, 48)
	defer src.Close()
	gocv.Rectangle(&src, image.Rect(0, 0, 32, 48), color.RGBA{R: 118, G: 118, B: 118}, -1)

	alpha, beta := New().transformFor(src)
	if alpha != maxAlpha {
		t.Errorf("alpha = %v, want capped at %v", alpha, maxAlpha)
	}
	if beta != minBeta {
		t.Errorf("beta = %v, want floored at %v", beta, minBeta)
	}
}

func TestApplyDoesNotModifySource(t *testing.T) {
	src := flatFrame(100, 64, 48)
	defer src.Close()

	out := New().Apply(src)
	defer out.Close()

	if out.Rows() != 48 || out.Cols() != 64 {
		t.Fatalf("output %dx%d, want 64x48", out.Cols(), out.Rows())
	}
	if v := src.GetVecbAt(10, 10); v[0] != 100 {
		t.Errorf("source pixel = %d, source frame was modified", v[0])
	}
	// Identity transform for a flat frame
	if v := out.GetVecbAt(10, 10); v[0] != 100 {
		t.Errorf("output pixel = %d, want 100", v[0])
	}
}

func TestZeroSensitivityWeakensStretch(t *testing.T) {
	src := flatFrame(0, 64, 48)
	defer src.Close()
	gocv.Rectangle(&src, image.Rect(0, 0, 32, 48), color.RGBA{R: 255, G: 255, B: 255}, -1)

	strong := New()
	weak := &Enhancer{Sensitivity: 0}

	alphaStrong, _ := strong.transformFor(src)
	alphaWeak, _ := weak.transformFor(src)
	if alphaWeak >= alphaStrong {
		t.Errorf("alpha at sensitivity 0 (%v) should be below default (%v)", alphaWeak, alphaStrong)
	}
}
