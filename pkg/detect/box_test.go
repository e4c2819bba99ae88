package detect

import (
	"image"
	"testing"
)

func TestShrink(t *testing.T) {
	tests := []struct {
		name      string
		box       Box
		reduction float64
		want      image.Rectangle
	}{
		{
			name:      "half reduction on 100x100 box",
			box:       Box{XMin: 270, YMin: 190, XMax: 370, YMax: 290},
			reduction: 50,
			want:      image.Rect(295, 215, 345, 265),
		},
		{
			name:      "no reduction",
			box:       Box{XMin: 10, YMin: 20, XMax: 110, YMax: 220},
			reduction: 0,
			want:      image.Rect(10, 20, 110, 220),
		},
		{
			name:      "per-side pixel count truncates",
			box:       Box{XMin: 0, YMin: 0, XMax: 7, YMax: 7},
			reduction: 50, // 7*0.5/2 = 1.75 -> 1 per side
			want:      image.Rect(1, 1, 6, 6),
		},
		{
			name:      "near-total reduction collapses the box",
			box:       Box{XMin: 0, YMin: 0, XMax: 10, YMax: 10},
			reduction: 99, // 4 per side, 2px left
			want:      image.Rect(4, 4, 6, 6),
		},
		{
			name:      "asymmetric extents shrink independently",
			box:       Box{XMin: 100, YMin: 100, XMax: 300, YMax: 140},
			reduction: 50,
			want:      image.Rect(150, 110, 250, 130),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Shrink(tt.reduction); got != tt.want {
				t.Errorf("Shrink(%.0f) = %v, want %v", tt.reduction, got, tt.want)
			}
		})
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name   string
		box    Box
		wantCX float64
		wantCY float64
	}{
		{"frame center", Box{XMin: 270, YMin: 190, XMax: 370, YMax: 290}, 320, 240},
		{"odd extent keeps half pixel", Box{XMin: 0, YMin: 0, XMax: 5, YMax: 3}, 2.5, 1.5},
		{"offset box", Box{XMin: 10, YMin: 40, XMax: 30, YMax: 80}, 20, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy := tt.box.Center()
			if cx != tt.wantCX || cy != tt.wantCY {
				t.Errorf("Center() = (%v, %v), want (%v, %v)", cx, cy, tt.wantCX, tt.wantCY)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !(Box{XMin: 0, YMin: 0, XMax: 1, YMax: 1}).Valid() {
		t.Error("1x1 box should be valid")
	}
	if (Box{XMin: 5, YMin: 0, XMax: 5, YMax: 10}).Valid() {
		t.Error("zero-width box should be invalid")
	}
	if (Box{XMin: 0, YMin: 10, XMax: 10, YMax: 5}).Valid() {
		t.Error("inverted box should be invalid")
	}
}
