// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/render"
)

// Program is a reflected WGSL program paired with its CPU kernel.
type Program struct {
	*render.UniformBlock

	label     string
	cpu       *render.CPUProgram
	destroyed bool
}

// Label returns the debug label.
func (p *Program) Label() string { return p.label }

// Destroy releases the program.
func (p *Program) Destroy() { p.destroyed = true }

// bindings resolves uniforms and textures of one draw for a kernel.
type bindings struct {
	cmd  *render.DrawCommand
	prog *Program
}

func (b *bindings) Uniform(name string) render.Value {
	v, _ := b.prog.Uniform(name)
	return v
}

func (b *bindings) texture(name string) *Texture {
	tex, _ := b.cmd.TextureFor(name).(*Texture)
	return tex
}

func (b *bindings) Texel(name string, x, y int) mgl32.Vec4 {
	if tex := b.texture(name); tex != nil {
		return tex.At(x, y)
	}
	return mgl32.Vec4{}
}

func (b *bindings) Sample(name string, u, v float32) mgl32.Vec4 {
	if tex := b.texture(name); tex != nil {
		return tex.Sample(u, v)
	}
	return mgl32.Vec4{}
}

func (b *bindings) TextureSize(name string) (int, int) {
	if tex := b.texture(name); tex != nil {
		return tex.width, tex.height
	}
	return 0, 0
}
