package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/light"
	"github.com/gogpu/fx/render"
)

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSceneDefault(t *testing.T) {
	s, err := loadScene("")
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}
	if err := s.validate(); err != nil {
		t.Errorf("default scene validate() = %v, want nil", err)
	}
}

func TestLoadScene(t *testing.T) {
	path := writeScene(t, `
width: 64
height: 32
frames: 3
particles:
  count: 9
  pattern: grid
  format: half_float
lights:
  - kind: point
    position: [10, 20]
    color: [1, 0.5, 0.25]
    radius: 30
    falloff: [1, 0, 0]
  - kind: Directional
    target: [5, 5]
`)
	s, err := loadScene(path)
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}
	if s.Width != 64 || s.Height != 32 || s.Frames != 3 {
		t.Errorf("size = %dx%d frames = %d, want 64x32 and 3", s.Width, s.Height, s.Frames)
	}
	if s.Particles.Count != 9 || s.Particles.Pattern != "grid" {
		t.Errorf("particles = %+v, want 9 on a grid", s.Particles)
	}
	if got := render.Format(s.Particles.Format); got != render.FormatHalfFloat {
		t.Errorf("format = %v, want HALF_FLOAT", got)
	}
	// Unset fields keep their defaults.
	if s.Particles.Size != defaultScene().Particles.Size {
		t.Errorf("size = %v, want default %v", s.Particles.Size, defaultScene().Particles.Size)
	}
	if len(s.Lights) != 2 {
		t.Fatalf("len(Lights) = %d, want 2", len(s.Lights))
	}

	p := s.Lights[0].build()
	if p.Kind != light.KindPoint || p.Radius != 30 || p.Falloff != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("point light = %+v", p)
	}
	if p.Position != (mgl32.Vec3{10, 20, light.DefaultHeight}) {
		t.Errorf("Position = %v, want [10 20 %v]", p.Position, light.DefaultHeight)
	}
	d := s.Lights[1].build()
	if d.Kind != light.KindDirectional || d.Target != (mgl32.Vec2{5, 5}) {
		t.Errorf("directional light = %+v", d)
	}
}

func TestLoadSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad format", "particles: {format: rgb565}"},
		{"bad kind", "lights: [{kind: spot}]"},
		{"bad size", "width: 0"},
		{"bad pattern", "particles: {pattern: spiral}"},
		{"no lights", "lights: []"},
		{"bad sheet", "particles: {sheet: {frames: 0}}"},
		{"bad vector", "background: [1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadScene(writeScene(t, tt.body)); err == nil {
				t.Errorf("loadScene(%q) error = nil, want an error", tt.body)
			}
		})
	}
	if _, err := loadScene(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loadScene() of a missing file error = nil, want an error")
	}
}

func TestSeedRing(t *testing.T) {
	s := defaultScene()
	s.Particles.Count = 8
	cfg := seed(s)
	center := mgl32.Vec2{128, 128}
	for i, p := range cfg.Positions {
		if d := p.Sub(center).Len(); !mgl32.FloatEqualThreshold(d, 32, 1e-3) {
			t.Errorf("particle %d distance = %v, want 32", i, d)
		}
		if v := cfg.Velocities[i].Len(); !mgl32.FloatEqualThreshold(v, s.Particles.Speed, 1e-3) {
			t.Errorf("particle %d speed = %v, want %v", i, v, s.Particles.Speed)
		}
	}
	if len(cfg.Colors) != 8 {
		t.Errorf("len(Colors) = %d, want 8", len(cfg.Colors))
	}
}

func TestSeedRandomDeterministic(t *testing.T) {
	s := defaultScene()
	s.Particles.Pattern = "random"
	s.Particles.Count = 4
	a, b := seed(s), seed(s)
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Errorf("particle %d position %v != %v for the same seed", i, a.Positions[i], b.Positions[i])
		}
	}
}

func TestRun(t *testing.T) {
	s := defaultScene()
	s.Width, s.Height = 32, 32
	s.Background = mgl32.Vec4{0.5, 0.5, 0.5, 1}
	s.Frames = 3
	s.Particles.Count = 16
	s.Particles.Speed = 0
	s.Particles.Gravity = mgl32.Vec2{}
	s.Particles.Size = 2
	s.Lights = []Light{{Kind: kindName(light.KindAmbient), Color: mgl32.Vec3{1, 1, 1}, Brightness: 1}}

	img, err := run(s)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("image size = %v, want 32x32", b)
	}
	if got := img.RGBAAt(0, 0); got.R < 127 || got.R > 129 || got.A != 255 {
		t.Errorf("RGBAAt(0, 0) = %v, want the lit background", got)
	}
}

func TestSheetImage(t *testing.T) {
	img := sheetImage(4, 8)
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 8 {
		t.Fatalf("bounds = %v, want 32x8", b)
	}
	// The last cell's disc is the largest.
	if img.RGBAAt(3*8+1, 4).A == 0 {
		t.Error("last cell edge is empty, want the full disc")
	}
	if img.RGBAAt(1, 4).A != 0 {
		t.Error("first cell edge is filled, want a small disc")
	}
}
