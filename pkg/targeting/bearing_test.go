package targeting

import (
	"math"
	"testing"
)

func TestEstimateBearing(t *testing.T) {
	g := DefaultGeometry() // 110x70 degrees

	tests := []struct {
		name   string
		cx, cy float64
		wantAz float64
		wantEl float64
	}{
		{"image center", 320, 240, 0, 0},
		{"right edge", 640, 240, 55, 0},
		{"left edge", 0, 240, -55, 0},
		{"top edge", 320, 0, 0, 35},
		{"bottom edge", 320, 480, 0, -35},
		{"halfway right", 480, 240, 27.5, 0},
		{"quarter up", 320, 180, 0, 8.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := EstimateBearing(640, 480, tt.cx, tt.cy, g)
			if math.Abs(b.AzimuthDeg-tt.wantAz) > 1e-9 {
				t.Errorf("azimuth = %v, want %v", b.AzimuthDeg, tt.wantAz)
			}
			if math.Abs(b.ElevationDeg-tt.wantEl) > 1e-9 {
				t.Errorf("elevation = %v, want %v", b.ElevationDeg, tt.wantEl)
			}
		})
	}
}

func TestEstimateBearingScalesWithFOV(t *testing.T) {
	narrow := Geometry{FOVHorizDeg: 60, FOVVertDeg: 40, BoxReductionPct: 50, DepthWindowM: 0.3, MinValidSamples: 10}

	b := EstimateBearing(640, 480, 640, 0, narrow)
	if math.Abs(b.AzimuthDeg-30) > 1e-9 {
		t.Errorf("azimuth = %v, want 30", b.AzimuthDeg)
	}
	if math.Abs(b.ElevationDeg-20) > 1e-9 {
		t.Errorf("elevation = %v, want 20", b.ElevationDeg)
	}
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Geometry)
		wantErr bool
	}{
		{"defaults", func(g *Geometry) {}, false},
		{"zero fov", func(g *Geometry) { g.FOVHorizDeg = 0 }, true},
		{"negative window", func(g *Geometry) { g.DepthWindowM = -1 }, true},
		{"reduction at 100", func(g *Geometry) { g.BoxReductionPct = 100 }, true},
		{"zero min samples", func(g *Geometry) { g.MinValidSamples = 0 }, true},
		{"reduction zero ok", func(g *Geometry) { g.BoxReductionPct = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGeometry()
			tt.mutate(&g)
			err := g.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
