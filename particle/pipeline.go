// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"

	"github.com/gogpu/fx/render"
)

// Pipeline runs an ordered list of stages once per tick.
//
// Declaration order is execution order: stage k sees the current-frame
// output of every stage j < k and the previous-frame output of every
// stage j >= k. All stages swap only after every stage has updated.
type Pipeline struct {
	stages []*Stage
	active []int
	format render.Format
}

// NewPipeline returns a pipeline running stages in the given order.
func NewPipeline(stages ...*Stage) *Pipeline {
	p := &Pipeline{}
	p.SetStages(stages)
	return p
}

// SetStages replaces the stage list and resets the active subset to every
// stage in declaration order.
func (p *Pipeline) SetStages(stages []*Stage) {
	p.stages = append([]*Stage(nil), stages...)
	p.active = make([]int, len(stages))
	for i := range p.active {
		p.active[i] = i
	}
}

// SetActive selects which stage outputs the display samples, and in which
// order. Execution is unaffected: every stage still runs each tick.
func (p *Pipeline) SetActive(indices ...int) error {
	for _, i := range indices {
		if i < 0 || i >= len(p.stages) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrStageIndex, i, len(p.stages))
		}
	}
	p.active = append([]int(nil), indices...)
	return nil
}

// Stages returns the stages in declaration order.
func (p *Pipeline) Stages() []*Stage { return p.stages }

// Active returns the active subset indices.
func (p *Pipeline) Active() []int { return p.active }

// ActiveStages returns the stages of the active subset.
func (p *Pipeline) ActiveStages() []*Stage {
	out := make([]*Stage, len(p.active))
	for i, idx := range p.active {
		out[i] = p.stages[idx]
	}
	return out
}

// Format returns the state format resolved by the last Init.
func (p *Pipeline) Format() render.Format { return p.format }

// Init initializes every stage on the same grid and format. FormatAuto is
// resolved once for the whole pipeline, counting seed data from any stage,
// since stages decode each other's outputs with a single encoding. On
// error the stages initialized by this call are destroyed again.
func (p *Pipeline) Init(pool *render.Pool, cache *Cache, grid Grid, format render.Format) error {
	if err := p.CheckSeeds(grid); err != nil {
		return err
	}
	seeded := false
	for _, s := range p.stages {
		if s.Seed != nil {
			seeded = true
			break
		}
	}
	resolved, err := render.SelectFormat(pool.Device().Capabilities(), format, seeded)
	if err != nil {
		return fmt.Errorf("particle: %w", err)
	}
	for i, s := range p.stages {
		if err := s.Init(pool, cache, grid, resolved); err != nil {
			for _, done := range p.stages[:i] {
				done.Destroy()
			}
			return err
		}
	}
	p.format = resolved
	return nil
}

// CheckSeeds reports whether every stage seed fits grid.
func (p *Pipeline) CheckSeeds(grid Grid) error {
	want := grid.Cap() * 4
	for _, s := range p.stages {
		if s.Seed != nil && len(s.Seed) != want {
			return fmt.Errorf("particle: stage %q: %w: got %d values, want %d",
				s.Name, render.ErrSeedSize, len(s.Seed), want)
		}
	}
	return nil
}

// Tick updates every stage in declaration order, then swaps every stage.
func (p *Pipeline) Tick(dev render.Device, f Frame) error {
	for _, s := range p.stages {
		if err := s.Update(dev, f, p.stages); err != nil {
			return err
		}
	}
	for _, s := range p.stages {
		s.Swap()
	}
	return nil
}

// Reset rewinds every stage to its seed.
func (p *Pipeline) Reset() {
	for _, s := range p.stages {
		s.Reset()
	}
}

// Destroy releases every stage's targets.
func (p *Pipeline) Destroy() {
	for _, s := range p.stages {
		s.Destroy()
	}
}
