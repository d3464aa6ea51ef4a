// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/backend/software"
	"github.com/gogpu/fx/render"
)

func initPipeline(t *testing.T, dev render.Device, p *Pipeline, grid Grid) *Cache {
	t.Helper()
	cache := NewCache(dev)
	if err := p.Init(render.NewPool(dev), cache, grid, render.FormatFloat); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return cache
}

func TestPipelineDeclarationOrder(t *testing.T) {
	grid := Grid{1, 1}
	tests := []struct {
		name   string
		stages func() ([]*Stage, *Stage)
		want   []float32 // copy stage value after each tick
	}{
		{
			name: "reader after writer sees current frame",
			stages: func() ([]*Stage, *Stage) {
				c := copyStage("copy", 0)
				return []*Stage{counterStage("counter", nil), c}, c
			},
			want: []float32{1, 2, 3},
		},
		{
			name: "reader before writer sees previous frame",
			stages: func() ([]*Stage, *Stage) {
				c := copyStage("copy", 1)
				return []*Stage{c, counterStage("counter", nil)}, c
			},
			want: []float32{0, 1, 2},
		},
		{
			name: "three stages, last reads first",
			stages: func() ([]*Stage, *Stage) {
				c := copyStage("copy", 0)
				return []*Stage{counterStage("counter", nil), counterStage("other", nil), c}, c
			},
			want: []float32{1, 2, 3},
		},
		{
			name: "three stages, reader declared first",
			stages: func() ([]*Stage, *Stage) {
				c := copyStage("copy", 2)
				return []*Stage{c, counterStage("other", nil), counterStage("counter", nil)}, c
			},
			want: []float32{0, 1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := software.New()
			stages, reader := tt.stages()
			p := NewPipeline(stages...)
			initPipeline(t, dev, p, grid)
			for i, want := range tt.want {
				if err := p.Tick(dev, Frame{Index: uint64(i), Grid: grid, Step: 1}); err != nil {
					t.Fatalf("Tick() error = %v", err)
				}
				if got := state(t, reader.Output())[0]; got != want {
					t.Errorf("tick %d: copy = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestPipelineSwapsAfterAllUpdates(t *testing.T) {
	dev := software.New()
	grid := Grid{1, 1}
	a := counterStage("a", nil)
	b := copyStage("b", 0)
	p := NewPipeline(a, b)
	initPipeline(t, dev, p, grid)

	if err := p.Tick(dev, Frame{Grid: grid}); err != nil {
		t.Fatal(err)
	}
	for _, s := range p.Stages() {
		if s.In() == s.Initial() {
			t.Errorf("stage %s did not swap", s.Name)
		}
		if s.Output() != s.In() {
			t.Errorf("stage %s: Output() after Tick is not In()", s.Name)
		}
	}
}

func TestPipelineActive(t *testing.T) {
	a, b, c := counterStage("a", nil), counterStage("b", nil), counterStage("c", nil)
	p := NewPipeline(a, b, c)
	if got := p.Active(); len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("Active() = %v, want [0 1 2]", got)
	}
	if err := p.SetActive(2, 0); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	got := p.ActiveStages()
	if len(got) != 2 || got[0] != c || got[1] != a {
		t.Errorf("ActiveStages() = %v, want [c a]", got)
	}
	for _, idx := range []int{-1, 3} {
		if err := p.SetActive(idx); !errors.Is(err, ErrStageIndex) {
			t.Errorf("SetActive(%d) error = %v, want ErrStageIndex", idx, err)
		}
	}
	if got := p.Active(); len(got) != 2 {
		t.Errorf("failed SetActive changed Active() to %v", got)
	}
}

func TestPipelineReset(t *testing.T) {
	dev := software.New()
	grid := Grid{1, 1}
	a := counterStage("a", []float32{2, 0, 0, 0})
	p := NewPipeline(a)
	initPipeline(t, dev, p, grid)
	for range 4 {
		if err := p.Tick(dev, Frame{Grid: grid}); err != nil {
			t.Fatal(err)
		}
	}
	p.Reset()
	if got := state(t, a.Output())[0]; got != 2 {
		t.Errorf("state after Reset = %v, want 2", got)
	}
}

func TestCacheSharesPrograms(t *testing.T) {
	dev := software.New()
	grid := Grid{1, 1}
	a, b := counterStage("same", nil), counterStage("same", nil)
	c := counterStage("other", nil)
	p := NewPipeline(a, b, c)
	cache := initPipeline(t, dev, p, grid)

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
	if cache.Hits() != 1 {
		t.Errorf("Hits() = %d, want 1", cache.Hits())
	}
	if a.Program() != b.Program() {
		t.Error("stages with equal label and source got different programs")
	}
	cache.Destroy()
	if cache.Len() != 0 {
		t.Errorf("Len() after Destroy = %d, want 0", cache.Len())
	}
}

func TestPipelineAutoFormatShared(t *testing.T) {
	tests := []struct {
		name string
		caps render.Capabilities
		want render.Format
	}{
		{"float only", render.Capabilities{FloatTexture: true}, render.FormatFloat},
		{"float and half", render.Capabilities{FloatTexture: true, HalfFloatTexture: true}, render.FormatFloat},
		{"no float targets", render.Capabilities{}, render.FormatRGBA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := software.New(software.WithCapabilities(tt.caps))
			grid := Grid{1, 1}
			velocity := VelocityStage(mgl32.Vec2{1, 0})
			position := PositionStage()
			position.Seed = SeedVec2(grid, []mgl32.Vec2{{10, 20}})
			p := NewPipeline(velocity, position)

			pool := render.NewPool(dev)
			pool.SetScale(32)
			if err := p.Init(pool, NewCache(dev), grid, render.FormatAuto); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if p.Format() != tt.want {
				t.Errorf("Format() = %v, want %v", p.Format(), tt.want)
			}
			for _, s := range p.Stages() {
				if s.Format() != tt.want {
					t.Errorf("stage %q Format() = %v, want %v", s.Name, s.Format(), tt.want)
				}
			}

			for range 2 {
				if err := p.Tick(dev, Frame{Grid: grid, Step: 1}); err != nil {
					t.Fatalf("Tick() error = %v", err)
				}
			}
			got := state(t, position.Output())
			tol := 4 * render.PairStep(32)
			for i, w := range []float32{13, 20} {
				if d := got[i] - w; d > tol || d < -tol {
					t.Errorf("position[%d] = %v, want %v", i, got[i], w)
				}
			}
		})
	}
}

func TestPipelineSeedSize(t *testing.T) {
	dev := software.New()
	p := NewPipeline(counterStage("counter", make([]float32, 3)))
	err := p.Init(render.NewPool(dev), NewCache(dev), Grid{2, 1}, render.FormatFloat)
	if !errors.Is(err, render.ErrSeedSize) {
		t.Errorf("Init() error = %v, want ErrSeedSize", err)
	}
}

func TestPipelineInitRollsBack(t *testing.T) {
	dev := software.New()
	grid := Grid{2, 1}
	first := counterStage("first", nil)
	second := &Stage{Name: "second", Source: "not a shader"}
	p := NewPipeline(first, second)
	pool := render.NewPool(dev)
	if err := p.Init(pool, NewCache(dev), grid, render.FormatFloat); err == nil {
		t.Fatal("Init() error = nil, want compile error")
	}
	if pool.Len() != 0 {
		t.Errorf("pool Len() = %d after failed Init, want 0", pool.Len())
	}
	if first.Initialized() || second.Initialized() {
		t.Errorf("Initialized() = %v, %v after failed Init, want false, false", first.Initialized(), second.Initialized())
	}
}
