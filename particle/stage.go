// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// Frame is the per-tick input shared by every stage of a pipeline.
type Frame struct {
	// Index counts ticks since Init or the last Reset, starting at 0.
	Index uint64

	// Count is the number of live particles.
	Count int

	// Grid is the state texture grid.
	Grid Grid

	// ViewWidth and ViewHeight are the host view size in pixels.
	ViewWidth, ViewHeight int

	// Time is the elapsed simulation time, including this tick's Step.
	Time float32

	// Step is the time step of this tick.
	Step float32
}

// Stage is one simulation step. Its program reads the stage's current state
// through uSampler and writes the next state into the output target with a
// full-screen draw.
//
// A stage owns three targets. The initial target holds the seed and is only
// ever read, so Reset can rewind to it. After the first swap the stage
// alternates between the primary and alternate outputs.
type Stage struct {
	// Name labels the stage in logs and GPU resources.
	Name string

	// Source is the WGSL module; CPU is its software kernel.
	Source string
	CPU    *render.CPUProgram

	// Seed is the initial state, 4 values per grid texel, row-major.
	// Nil starts from zero.
	Seed []float32

	// Once limits the stage to a single update over its lifetime.
	Once bool

	// Disabled stages never update and never swap.
	Disabled bool

	// Uniforms returns stage-specific uniforms for a frame.
	Uniforms func(f Frame) render.Uniforms

	prog      render.Program
	pool      *render.Pool
	format    render.Format
	scale     float32
	initial   render.Target
	primary   render.Target
	alternate render.Target
	in        render.Target
	out       render.Target
	fresh     bool
	runs      int
}

// Init allocates the stage targets in pool and compiles the program through
// cache. format may be FormatAuto.
func (s *Stage) Init(pool *render.Pool, cache *Cache, grid Grid, format render.Format) error {
	if s.initial != nil {
		return nil
	}
	prog, err := cache.Program(&render.ProgramDescriptor{
		Label:  "stage_" + s.Name,
		Source: s.Source,
		CPU:    s.CPU,
	})
	if err != nil {
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}

	initial, err := pool.Create(s.Name+"_initial", grid.Width, grid.Height, format, s.Seed)
	if err != nil {
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}
	// Outputs must share the resolved format of the seed target.
	primary, err := pool.Create(s.Name+"_out", grid.Width, grid.Height, initial.Format(), nil)
	if err != nil {
		pool.Release(initial)
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}
	alternate, err := pool.Create(s.Name+"_alt", grid.Width, grid.Height, initial.Format(), nil)
	if err != nil {
		pool.Release(initial)
		pool.Release(primary)
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}

	s.prog = prog
	s.pool = pool
	s.format = initial.Format()
	s.scale = pool.Scale()
	s.initial, s.primary, s.alternate = initial, primary, alternate
	s.in, s.out = initial, primary
	logger.Get().Debug("particle: stage ready", "stage", s.Name, "format", s.format, "grid", grid)
	return nil
}

// Initialized reports whether Init has run.
func (s *Stage) Initialized() bool { return s.initial != nil }

// Program returns the compiled program.
func (s *Stage) Program() render.Program { return s.prog }

// Format returns the resolved state format.
func (s *Stage) Format() render.Format { return s.format }

// In returns the target read by the next update.
func (s *Stage) In() render.Target { return s.in }

// Out returns the target written by the next update.
func (s *Stage) Out() render.Target { return s.out }

// Initial returns the seed target.
func (s *Stage) Initial() render.Target { return s.initial }

// Alternate returns the output used after the first swap from the seed.
func (s *Stage) Alternate() render.Target { return s.alternate }

// Output returns the most recently written state: Out between Update and
// Swap, In otherwise.
func (s *Stage) Output() render.Target {
	if s.fresh {
		return s.out
	}
	return s.in
}

// Runs returns the number of updates executed since Init or Reset.
func (s *Stage) Runs() int { return s.runs }

// active reports whether the stage updates this frame.
func (s *Stage) active() bool {
	return !s.Disabled && !(s.Once && s.runs > 0)
}

// Update draws the next state into Out. peers is the declaration-ordered
// stage list; a peer's output is visible to programs as statusOut<j>.
// Disabled and spent once-only stages return without drawing.
func (s *Stage) Update(dev render.Device, f Frame, peers []*Stage) error {
	if s.initial == nil {
		return fmt.Errorf("particle: stage %q: %w", s.Name, ErrNotInitialized)
	}
	if !s.active() {
		return nil
	}

	if err := applyUniforms(s.prog, frameUniforms(f, s.format, s.scale)); err != nil {
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}
	if s.Uniforms != nil {
		if err := s.prog.SetUniforms(s.Uniforms(f)); err != nil {
			return fmt.Errorf("particle: stage %q: %w", s.Name, err)
		}
	}

	textures := []render.Texture{s.in}
	if err := setIfDeclared(s.prog, UniformSampler, render.Sampler(0)); err != nil {
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}
	for j, peer := range peers {
		name := StageOutput(j)
		if !s.prog.Has(name) {
			continue
		}
		if !peer.Initialized() {
			return fmt.Errorf("particle: stage %q reads %s: %w", s.Name, name, ErrNotInitialized)
		}
		if err := s.prog.SetUniform(name, render.Sampler(len(textures))); err != nil {
			return fmt.Errorf("particle: stage %q: %w", s.Name, err)
		}
		textures = append(textures, peer.Output())
	}

	err := dev.Draw(&render.DrawCommand{
		Label:    "stage_" + s.Name,
		Program:  s.prog,
		Target:   s.out,
		Textures: textures,
		Blend:    render.BlendNone,
	})
	if err != nil {
		return fmt.Errorf("particle: stage %q: %w", s.Name, err)
	}
	s.fresh = true
	s.runs++
	return nil
}

// Swap makes the freshly written output the next input. The seed target is
// never handed out as an output: leaving it selects the alternate target.
// Stages that did not update this frame keep their targets.
func (s *Stage) Swap() {
	if !s.fresh {
		return
	}
	s.fresh = false
	prevIn := s.in
	s.in = s.out
	if prevIn == s.initial {
		s.out = s.alternate
	} else {
		s.out = prevIn
	}
}

// Reset rewinds the stage to its seed and re-arms once-only updates.
func (s *Stage) Reset() {
	if s.initial == nil {
		return
	}
	s.in, s.out = s.initial, s.primary
	s.fresh = false
	s.runs = 0
}

// Destroy releases the stage targets. The program belongs to the cache.
func (s *Stage) Destroy() {
	if s.initial == nil {
		return
	}
	for _, t := range []render.Target{s.initial, s.primary, s.alternate} {
		s.pool.Release(t)
	}
	s.initial, s.primary, s.alternate = nil, nil, nil
	s.in, s.out = nil, nil
	s.prog = nil
	s.fresh = false
	s.runs = 0
}
