// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package light

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// PluginName is the dispatch key of lit layers.
const PluginName = "lighting"

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// AlwaysIntermediate routes a single light through the intermediate buffer
// as well. The output is the same as the direct path.
func AlwaysIntermediate() CompositorOption {
	return func(c *Compositor) {
		c.alwaysIntermediate = true
	}
}

// Compositor lights a diffuse texture with a normal map and an ordered list
// of lights.
//
// One light draws straight into the destination. More lights accumulate
// into an intermediate target, cleared to transparent black first, which is
// then composited onto the destination in one draw.
type Compositor struct {
	// Diffuse and Normal are sampled at the destination pixel, so both must
	// match the destination size.
	Diffuse render.Texture
	Normal  render.Texture

	// Lights are drawn in order.
	Lights []*Light

	id                 uuid.UUID
	alwaysIntermediate bool

	dev          render.Device
	pool         *render.Pool
	progs        map[string]render.Program
	composite    render.Program
	intermediate render.Target
}

// NewCompositor returns a compositor for a diffuse and normal texture pair.
func NewCompositor(diffuse, normal render.Texture, lights []*Light, opts ...CompositorOption) *Compositor {
	c := &Compositor{
		Diffuse: diffuse,
		Normal:  normal,
		Lights:  lights,
		id:      uuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PluginName returns the dispatch key.
func (c *Compositor) PluginName() string { return PluginName }

// ID returns the compositor identifier.
func (c *Compositor) ID() uuid.UUID { return c.id }

// Initialized reports whether Init has run.
func (c *Compositor) Initialized() bool { return c.dev != nil }

// Intermediate returns the accumulation target, or nil if none was needed.
func (c *Compositor) Intermediate() render.Target { return c.intermediate }

// Init binds the compositor to dev. Programs compile lazily on first draw.
// Calling Init again is a no-op.
func (c *Compositor) Init(dev render.Device) error {
	if c.dev != nil {
		return nil
	}
	c.dev = dev
	c.pool = render.NewPool(dev)
	c.progs = make(map[string]render.Program)
	logger.Get().Info("light: compositor initialized", "id", c.id, "lights", len(c.Lights))
	return nil
}

// Reload drops every compiled program so the next Render recompiles them.
func (c *Compositor) Reload() {
	for key, p := range c.progs {
		p.Destroy()
		delete(c.progs, key)
	}
	if c.composite != nil {
		c.composite.Destroy()
		c.composite = nil
	}
}

// program returns the compiled program of l. Lights with the same source
// share one program.
func (c *Compositor) program(l *Light) (render.Program, error) {
	desc := program(l.Kind)
	if l.Source != "" {
		desc = &render.ProgramDescriptor{Label: "light_custom", Source: l.Source, CPU: l.CPU}
	}
	if p, ok := c.progs[desc.Source]; ok {
		return p, nil
	}
	p, err := c.dev.CompileProgram(desc)
	if err != nil {
		return nil, fmt.Errorf("light: %s: %w", l.Kind, err)
	}
	c.progs[desc.Source] = p
	return p, nil
}

// Render draws the lit layer into dst.
func (c *Compositor) Render(dst render.Target) error {
	if c.dev == nil {
		return ErrNotInitialized
	}
	if len(c.Lights) == 0 {
		return ErrNoLights
	}
	if len(c.Lights) == 1 && !c.alwaysIntermediate {
		return c.drawLight(c.Lights[0], dst)
	}

	inter, err := c.ensureIntermediate(dst.Width(), dst.Height())
	if err != nil {
		return err
	}
	if err := c.dev.Clear(inter, gputypes.Color{}); err != nil {
		return fmt.Errorf("light: clear intermediate: %w", err)
	}
	for _, l := range c.Lights {
		if err := c.drawLight(l, inter); err != nil {
			return err
		}
	}
	return c.drawComposite(inter, dst)
}

// ensureIntermediate returns an RGBA target of the given size, recreating
// it when the size changes.
func (c *Compositor) ensureIntermediate(w, h int) (render.Target, error) {
	var err error
	switch {
	case c.intermediate == nil:
		c.intermediate, err = c.pool.Create("light_intermediate", w, h, render.FormatRGBA, nil)
	case c.intermediate.Width() != w || c.intermediate.Height() != h:
		c.intermediate, err = c.pool.Resize(c.intermediate, w, h)
	}
	if err != nil {
		c.intermediate = nil
		return nil, fmt.Errorf("light: intermediate: %w", err)
	}
	return c.intermediate, nil
}

func (c *Compositor) drawLight(l *Light, target render.Target) error {
	prog, err := c.program(l)
	if err != nil {
		return err
	}
	if err := l.SyncShader(prog, target.Width(), target.Height()); err != nil {
		return err
	}
	for i, name := range []string{UniformSampler, UniformNormalSampler} {
		if !prog.Has(name) {
			return fmt.Errorf("%w: %s light program lacks %s", ErrMissingUniform, l.Kind, name)
		}
		if err := prog.SetUniform(name, render.Sampler(i)); err != nil {
			return err
		}
	}
	err = c.dev.Draw(&render.DrawCommand{
		Label:    "light_" + l.Kind.String(),
		Program:  prog,
		Target:   target,
		Textures: []render.Texture{c.Diffuse, c.Normal},
		Blend:    l.Blend(),
	})
	if err != nil {
		return fmt.Errorf("light: %s: %w", l.Kind, err)
	}
	return nil
}

func (c *Compositor) drawComposite(src, dst render.Target) error {
	if c.composite == nil {
		p, err := c.dev.CompileProgram(compositeProgram())
		if err != nil {
			return fmt.Errorf("light: composite: %w", err)
		}
		c.composite = p
	}
	if err := c.composite.SetUniform(UniformSampler, render.Sampler(0)); err != nil {
		return err
	}
	err := c.dev.Draw(&render.DrawCommand{
		Label:    "light_composite",
		Program:  c.composite,
		Target:   dst,
		Textures: []render.Texture{src},
		Blend:    render.BlendNormal,
	})
	if err != nil {
		return fmt.Errorf("light: composite: %w", err)
	}
	return nil
}

// Destroy releases the programs and the intermediate target. The diffuse
// and normal textures belong to the caller.
func (c *Compositor) Destroy() {
	if c.dev == nil {
		return
	}
	c.Reload()
	c.pool.Destroy()
	c.intermediate = nil
	c.pool = nil
	c.dev = nil
}
