// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package light

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

// Renderer draws compositors for a dispatcher, initializing each on first
// use.
type Renderer struct {
	dev         render.Device
	rendered    int
	compositors map[*Compositor]struct{}
}

var _ fx.ObjectRenderer = (*Renderer)(nil)

// NewRenderer returns a renderer drawing on dev.
func NewRenderer(dev render.Device) *Renderer {
	return &Renderer{dev: dev, compositors: make(map[*Compositor]struct{})}
}

// Render draws obj, which must be a *Compositor, into target.
func (r *Renderer) Render(obj fx.Object, target render.Target) error {
	c, ok := obj.(*Compositor)
	if !ok {
		return fmt.Errorf("light: renderer given %T", obj)
	}
	if !c.Initialized() {
		if err := c.Init(r.dev); err != nil {
			return err
		}
		r.compositors[c] = struct{}{}
	}
	if err := c.Render(target); err != nil {
		return err
	}
	r.rendered++
	return nil
}

// Rendered returns the number of compositors drawn since the last Prerender.
func (r *Renderer) Rendered() int { return r.rendered }

// Prerender resets the per-frame counter.
func (r *Renderer) Prerender() { r.rendered = 0 }

// Destroy releases every compositor the renderer initialized.
func (r *Renderer) Destroy() {
	for c := range r.compositors {
		c.Destroy()
	}
	clear(r.compositors)
}
