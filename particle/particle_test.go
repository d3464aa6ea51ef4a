// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/backend/software"
	"github.com/gogpu/fx/render"
)

var driftPositions = []mgl32.Vec2{{4, 4}, {12, 4}, {4, 12}, {12, 12}}

func newDrift(t *testing.T, opts ...Option) *Particle {
	t.Helper()
	p, err := NewDrift(len(driftPositions), DriftConfig{
		Positions:  driftPositions,
		Velocities: []mgl32.Vec2{{2, 0}, {2, 0}, {0, 2}, {0, 2}},
	}, append([]Option{WithSize(2)}, opts...)...)
	if err != nil {
		t.Fatalf("NewDrift() error = %v", err)
	}
	return p
}

func newScreen(t *testing.T, dev render.Device) *software.Texture {
	t.Helper()
	tgt, err := dev.CreateTarget(&render.TargetDescriptor{Label: "screen", Width: 32, Height: 32, Format: render.FormatRGBA})
	if err != nil {
		t.Fatalf("CreateTarget() error = %v", err)
	}
	return tgt.(*software.Texture)
}

func positions(t *testing.T, p *Particle) []mgl32.Vec2 {
	t.Helper()
	s := state(t, p.Pipeline().Stages()[1].Output())
	out := make([]mgl32.Vec2, p.Count())
	for i := range out {
		out[i] = mgl32.Vec2{s[4*i], s[4*i+1]}
	}
	return out
}

func TestNewErrors(t *testing.T) {
	if _, err := New(1, nil, nil); err == nil {
		t.Error("New(nil display) error = nil, want error")
	}
	if _, err := New(5, SpriteDisplay("d"), nil, WithFboSize(2, 2)); !errors.Is(err, ErrCount) {
		t.Errorf("New(5, 2x2) error = %v, want ErrCount", err)
	}
	if _, err := NewDrift(2, DriftConfig{Colors: []mgl32.Vec4{{1, 1, 1, 1}}}); !errors.Is(err, ErrAttributeData) {
		t.Errorf("NewDrift(2 particles, 1 color) error = %v, want ErrAttributeData", err)
	}
}

func TestParticleNotInitialized(t *testing.T) {
	p := newDrift(t)
	if err := p.Update(1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Update() error = %v, want ErrNotInitialized", err)
	}
	if err := p.Render(nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render() error = %v, want ErrNotInitialized", err)
	}
	if p.Format() != render.FormatAuto {
		t.Errorf("Format() before Init = %v, want AUTO", p.Format())
	}
}

func TestDriftSimulation(t *testing.T) {
	dev := software.New()
	p := newDrift(t)
	if err := p.Init(dev); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer p.Destroy()

	if p.Format() != render.FormatFloat {
		t.Errorf("Format() = %v, want FLOAT", p.Format())
	}
	if p.Grid() != (Grid{2, 2}) {
		t.Errorf("Grid() = %v, want 2x2", p.Grid())
	}
	for range 2 {
		if err := p.Update(0.5); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	want := []mgl32.Vec2{{6, 4}, {14, 4}, {4, 14}, {12, 14}}
	for i, got := range positions(t, p) {
		if !got.ApproxEqual(want[i]) {
			t.Errorf("position[%d] = %v, want %v", i, got, want[i])
		}
	}
	if p.Ticks() != 2 {
		t.Errorf("Ticks() = %d, want 2", p.Ticks())
	}

	p.Reset()
	if p.Ticks() != 0 {
		t.Errorf("Ticks() after Reset = %d, want 0", p.Ticks())
	}
	for i, got := range positions(t, p) {
		if !got.ApproxEqual(driftPositions[i]) {
			t.Errorf("position[%d] after Reset = %v, want %v", i, got, driftPositions[i])
		}
	}
}

func TestDriftGravity(t *testing.T) {
	dev := software.New()
	p, err := NewDrift(1, DriftConfig{
		Positions: []mgl32.Vec2{{0, 0}},
		Gravity:   mgl32.Vec2{0, 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := p.Update(1); err != nil {
			t.Fatal(err)
		}
	}
	// Velocity updates first, so position integrates 10 + 20 + 30.
	if got := positions(t, p)[0]; !got.ApproxEqual(mgl32.Vec2{0, 60}) {
		t.Errorf("position = %v, want [0 60]", got)
	}
}

func TestDriftByteState(t *testing.T) {
	dev := software.New(software.WithCapabilities(render.Capabilities{Instancing: true}))
	p := newDrift(t, WithScale(64))
	if err := p.Init(dev); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p.Format() != render.FormatRGBA {
		t.Fatalf("Format() = %v, want RGBA", p.Format())
	}
	for range 4 {
		if err := p.Update(0.5); err != nil {
			t.Fatal(err)
		}
	}
	want := []mgl32.Vec2{{8, 4}, {16, 4}, {4, 16}, {12, 16}}
	tol := 8 * render.PairStep(64)
	for i, got := range positions(t, p) {
		if d := got.Sub(want[i]); d.Len() > tol {
			t.Errorf("position[%d] = %v, want %v (tolerance %v)", i, got, want[i], tol)
		}
	}
}

func TestDisplayRender(t *testing.T) {
	dev := software.New()
	p := newDrift(t)
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	screen := newScreen(t, dev)
	if err := p.Render(screen); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Particle 0 sits at (4, 4) with size 2: pixels 3..4 in both axes.
	tests := []struct {
		x, y int
		want mgl32.Vec4
	}{
		{3, 3, mgl32.Vec4{1, 1, 1, 1}},
		{4, 4, mgl32.Vec4{1, 1, 1, 1}},
		{11, 11, mgl32.Vec4{1, 1, 1, 1}},
		{5, 5, mgl32.Vec4{}},
		{20, 20, mgl32.Vec4{}},
	}
	for _, tt := range tests {
		if got := screen.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDisplayColors(t *testing.T) {
	dev := software.New()
	p, err := NewDrift(2, DriftConfig{
		Positions: []mgl32.Vec2{{4, 4}, {12, 4}},
		Colors:    []mgl32.Vec4{{1, 0, 0, 1}, {0, 0, 1, 1}},
	}, WithSize(2), WithAlpha(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	screen := newScreen(t, dev)
	if err := p.Render(screen); err != nil {
		t.Fatal(err)
	}
	tol := float32(1) / 255
	for _, tt := range []struct {
		x, y int
		want mgl32.Vec4
	}{
		{4, 4, mgl32.Vec4{0.5, 0, 0, 0.5}},
		{12, 4, mgl32.Vec4{0, 0, 0.5, 0.5}},
	} {
		got := screen.At(tt.x, tt.y)
		if !got.ApproxEqualThreshold(tt.want, tol) {
			t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDisplayInstancing(t *testing.T) {
	tests := []struct {
		name      string
		instanced bool
		wantDraws int
	}{
		{"instanced", true, 1},
		{"per instance", false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := software.New(software.WithCapabilities(render.Capabilities{
				Instancing:   tt.instanced,
				FloatTexture: true,
			}))
			p := newDrift(t)
			if err := p.Init(dev); err != nil {
				t.Fatal(err)
			}
			if got := p.Display().Mesh().Instanced; got != tt.instanced {
				t.Errorf("Mesh().Instanced = %v, want %v", got, tt.instanced)
			}
			screen := newScreen(t, dev)
			dev.Prerender()
			if err := p.Render(screen); err != nil {
				t.Fatal(err)
			}
			stats := dev.Stats()
			if stats.Draws != tt.wantDraws {
				t.Errorf("Draws = %d, want %d", stats.Draws, tt.wantDraws)
			}
			if stats.Instances != 4 {
				t.Errorf("Instances = %d, want 4", stats.Instances)
			}
			if got := screen.At(12, 12); got != (mgl32.Vec4{1, 1, 1, 1}) {
				t.Errorf("At(12, 12) = %v, want white", got)
			}
		})
	}
}

func TestDisplayUniformsHook(t *testing.T) {
	dev := software.New()
	p := newDrift(t)
	rect := mgl32.Vec4{0.5, 0, 0.5, 1}
	p.Display().Uniforms = func(*Particle) render.Uniforms {
		return render.Uniforms{UniformFrame: render.Vec4(rect)}
	}
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	if err := p.Render(newScreen(t, dev)); err != nil {
		t.Fatal(err)
	}
	got, ok := p.Display().Program().Uniform(UniformFrame)
	if !ok || got.Vec4() != rect {
		t.Errorf("uFrame = %v (set %v), want %v", got.Vec4(), ok, rect)
	}
}

func TestSetCount(t *testing.T) {
	dev := software.New()
	p := newDrift(t)
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	initial := p.Pipeline().Stages()[0].Initial()

	if err := p.SetCount(3); err != nil {
		t.Fatalf("SetCount(3) error = %v", err)
	}
	if p.Count() != 3 || p.Display().Mesh().InstanceCount != 3 {
		t.Errorf("after SetCount(3): Count() = %d, InstanceCount = %d, want 3", p.Count(), p.Display().Mesh().InstanceCount)
	}
	if p.Pipeline().Stages()[0].Initial() != initial {
		t.Error("SetCount within the same grid recreated the stages")
	}

	for _, s := range p.Pipeline().Stages() {
		s.Seed = nil
	}
	if err := p.SetCount(9); err != nil {
		t.Fatalf("SetCount(9) error = %v", err)
	}
	if p.Grid() != (Grid{3, 3}) {
		t.Errorf("Grid() = %v, want 3x3", p.Grid())
	}
	if w := p.Pipeline().Stages()[1].Initial().Width(); w != 3 {
		t.Errorf("stage target width = %d, want 3", w)
	}
	if err := p.Update(1); err != nil {
		t.Errorf("Update() after SetCount error = %v", err)
	}
}

func TestSetCountSeedMismatchKeepsState(t *testing.T) {
	dev := software.New()
	p := newDrift(t)
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	if err := p.SetCount(5); !errors.Is(err, render.ErrSeedSize) {
		t.Fatalf("SetCount(5) error = %v, want ErrSeedSize", err)
	}
	if !p.Initialized() || p.Count() != 4 || p.Grid() != (Grid{2, 2}) {
		t.Errorf("after failed SetCount: Initialized() = %v, Count() = %d, Grid() = %v, want true, 4, 2x2",
			p.Initialized(), p.Count(), p.Grid())
	}
	for _, s := range p.Pipeline().Stages() {
		if !s.Initialized() {
			t.Errorf("stage %q released by failed SetCount", s.Name)
		}
	}
	if err := p.Update(0.5); err != nil {
		t.Errorf("Update() error = %v", err)
	}
	screen := newScreen(t, dev)
	if err := p.Render(screen); err != nil {
		t.Errorf("Render() error = %v", err)
	}
}

func TestSetCountFailureUninitializes(t *testing.T) {
	dev := software.New(software.WithCapabilities(render.Capabilities{
		Instancing:       true,
		FloatTexture:     true,
		HalfFloatTexture: true,
		MaxTextureSize:   2,
	}))
	p := newDrift(t)
	if err := p.Init(dev); err != nil {
		t.Fatal(err)
	}
	for _, s := range p.Pipeline().Stages() {
		s.Seed = nil
	}

	if err := p.SetCount(9); !errors.Is(err, render.ErrInvalidSize) {
		t.Fatalf("SetCount(9) error = %v, want ErrInvalidSize", err)
	}
	if p.Initialized() {
		t.Error("Initialized() = true after failed SetCount, want false")
	}
	screen := newScreen(t, dev)
	if err := p.Render(screen); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render() error = %v, want ErrNotInitialized", err)
	}
	if err := p.Update(1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Update() error = %v, want ErrNotInitialized", err)
	}
}

func TestRendererPlugin(t *testing.T) {
	if !fx.HasPlugin(PluginName) {
		t.Fatalf("plugin %q not registered", PluginName)
	}
	dev := software.New()
	d := fx.NewDispatcher(dev)
	p := newDrift(t)
	screen := newScreen(t, dev)

	if err := d.Render(p, screen); err != nil {
		t.Fatalf("Dispatcher.Render() error = %v", err)
	}
	if !p.Initialized() {
		t.Error("dispatch did not initialize the particle group")
	}
	r, ok := d.Renderer(PluginName).(*Renderer)
	if !ok {
		t.Fatalf("Renderer(%q) = %T, want *Renderer", PluginName, d.Renderer(PluginName))
	}
	if r.Rendered() != 1 {
		t.Errorf("Rendered() = %d, want 1", r.Rendered())
	}
	d.Prerender()
	if r.Rendered() != 0 {
		t.Errorf("Rendered() after Prerender = %d, want 0", r.Rendered())
	}
	d.Destroy()
	if p.Initialized() {
		t.Error("Dispatcher.Destroy() left the particle group initialized")
	}
}
