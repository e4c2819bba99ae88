package overlay

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func TestFormatData(t *testing.T) {
	tests := []struct {
		name string
		ann  Annotation
		want string
	}{
		{
			name: "valid range",
			ann:  Annotation{RangeM: 2.04, RangeValid: true, AzimuthDeg: 10.4, ElevationDeg: -5.2},
			want: "2.0m,10d,-5d",
		},
		{
			name: "invalid range renders nan",
			ann:  Annotation{RangeM: -999, RangeValid: false, AzimuthDeg: 0, ElevationDeg: 0},
			want: "nanm,0d,0d",
		},
		{
			name: "bearings round to whole degrees",
			ann:  Annotation{RangeM: 10.56, RangeValid: true, AzimuthDeg: 27.4, ElevationDeg: 8.75},
			want: "10.6m,27d,9d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatData(tt.ann); got != tt.want {
				t.Errorf("formatData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderLeavesSourceUntouched(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer src.Close()

	r := NewRenderer()
	anns := []Annotation{{
		Label:      "person",
		Shrunk:     image.Rect(20, 15, 44, 33),
		CenterX:    32,
		CenterY:    24,
		RangeM:     2.0,
		RangeValid: true,
	}}

	out := r.Render(src, anns)
	defer out.Close()

	if out.Rows() != src.Rows() || out.Cols() != src.Cols() {
		t.Fatalf("output %dx%d, want %dx%d", out.Cols(), out.Rows(), src.Cols(), src.Rows())
	}

	// The box edge lands on the copy, not the source
	if v := src.GetVecbAt(15, 20); v[0] != 0 || v[1] != 0 || v[2] != 0 {
		t.Error("source frame was modified")
	}
	if v := out.GetVecbAt(15, 20); v[0] == 0 && v[1] == 0 && v[2] == 0 {
		t.Error("annotation was not drawn on the output")
	}
}

func TestRenderNoAnnotations(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 30, 30, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer src.Close()

	out := NewRenderer().Render(src, nil)
	defer out.Close()

	if out.Empty() {
		t.Fatal("render of zero annotations should still return a frame copy")
	}
}
