// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/render"
)

func init() {
	fx.RegisterPlugin(PluginName, func(dev render.Device) fx.ObjectRenderer {
		return NewRenderer(dev)
	})
}

// Renderer draws particle groups for a dispatcher. Groups are initialized
// on the renderer's device the first time they are drawn.
type Renderer struct {
	dev      render.Device
	rendered int
	groups   map[*Particle]struct{}
}

var _ fx.ObjectRenderer = (*Renderer)(nil)

// NewRenderer returns a renderer drawing on dev.
func NewRenderer(dev render.Device) *Renderer {
	return &Renderer{dev: dev, groups: make(map[*Particle]struct{})}
}

// Render initializes obj if needed and draws it into target.
func (r *Renderer) Render(obj fx.Object, target render.Target) error {
	p, ok := obj.(*Particle)
	if !ok {
		return fmt.Errorf("particle: renderer given %T", obj)
	}
	if !p.Initialized() {
		if err := p.Init(r.dev); err != nil {
			return err
		}
		r.groups[p] = struct{}{}
	}
	if err := p.Render(target); err != nil {
		return err
	}
	r.rendered++
	return nil
}

// Rendered returns the number of groups drawn since the last Prerender.
func (r *Renderer) Rendered() int { return r.rendered }

// Prerender resets the per-frame counter.
func (r *Renderer) Prerender() { r.rendered = 0 }

// Destroy releases every group the renderer initialized.
func (r *Renderer) Destroy() {
	for p := range r.groups {
		p.Destroy()
	}
	clear(r.groups)
}
