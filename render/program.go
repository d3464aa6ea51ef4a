// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Default WGSL entry point names.
const (
	DefaultVertexEntry   = "vs_main"
	DefaultFragmentEntry = "fs_main"
)

// ProgramDescriptor describes a program for Device.CompileProgram.
type ProgramDescriptor struct {
	// Label names the program in logs and GPU debug labels.
	Label string

	// Source is the WGSL module holding both entry points.
	Source string

	// VertexEntry and FragmentEntry name the entry points.
	// Empty values default to vs_main and fs_main.
	VertexEntry   string
	FragmentEntry string

	// CPU is the equivalent kernel executed by CPU devices. GPU devices
	// ignore it.
	CPU *CPUProgram
}

// Entries returns the entry point names with defaults applied.
func (d *ProgramDescriptor) Entries() (vertex, fragment string) {
	vertex, fragment = d.VertexEntry, d.FragmentEntry
	if vertex == "" {
		vertex = DefaultVertexEntry
	}
	if fragment == "" {
		fragment = DefaultFragmentEntry
	}
	return vertex, fragment
}

// Program is a compiled shader program with a typed uniform table.
type Program interface {
	// Label returns the debug label.
	Label() string

	// Layout returns the reflected attribute, uniform and texture tables.
	Layout() *Layout

	// Has reports whether the program declares a uniform or texture name.
	Has(name string) bool

	// SetUniform sets a uniform or binds a texture variable to a unit.
	SetUniform(name string, v Value) error

	// SetUniforms sets every entry of u, stopping at the first error.
	SetUniforms(u Uniforms) error

	// Uniform returns the last value set for name.
	Uniform(name string) (Value, bool)

	// Destroy releases the program. Safe to call more than once.
	Destroy()
}

// CPUProgram is the CPU form of a program, run by the software device.
//
// Full-screen draws call Shade once per target pixel. Mesh draws call Emit
// once per instance and rasterize the returned Sprite.
type CPUProgram struct {
	Shade func(f *Fragment) mgl32.Vec4
	Emit  func(in *Instance) (Sprite, bool)
}

// Bindings exposes a draw's uniforms and textures to CPU kernels.
// Texture lookups address texture variables by name; the unit is resolved
// through the program's sampler uniforms.
type Bindings interface {
	// Uniform returns the value set for name, or the zero Value.
	Uniform(name string) Value

	// Texel returns the texel at integer coordinates, clamped to the edge.
	Texel(texture string, x, y int) mgl32.Vec4

	// Sample returns the nearest texel at normalized coordinates.
	Sample(texture string, u, v float32) mgl32.Vec4

	// TextureSize returns the size of the texture bound to name.
	TextureSize(texture string) (width, height int)
}

// Fragment is the input of CPUProgram.Shade for one target pixel.
type Fragment struct {
	Bindings

	// X and Y are the pixel coordinates in the target.
	X, Y int

	// U and V are the normalized pixel-center coordinates.
	U, V float32

	// Width and Height are the target size.
	Width, Height int
}

// AttributeReader decodes packed vertex data for CPU kernels.
type AttributeReader interface {
	// InstanceAttr returns attribute name of instance i.
	InstanceAttr(i int, name string) ([]float32, bool)

	// VertexAttr returns attribute name of shared vertex v.
	VertexAttr(v int, name string) ([]float32, bool)

	// VertexCount returns the number of shared vertices.
	VertexCount() int
}

// Instance is the input of CPUProgram.Emit for one instance.
type Instance struct {
	Bindings

	// Index is the instance index, which is also the draw order.
	Index int

	attrs AttributeReader
}

// NewInstance binds an instance index to its uniforms and attribute data.
func NewInstance(b Bindings, attrs AttributeReader, index int) *Instance {
	return &Instance{Bindings: b, Index: index, attrs: attrs}
}

// Attr returns the per-instance attribute name, falling back to the value of
// shared vertex 0. Missing attributes return nil.
func (in *Instance) Attr(name string) []float32 {
	if in.attrs == nil {
		return nil
	}
	if v, ok := in.attrs.InstanceAttr(in.Index, name); ok {
		return v
	}
	v, _ := in.attrs.VertexAttr(0, name)
	return v
}

// Vertex returns attribute name of shared vertex v, falling back to the
// per-instance value.
func (in *Instance) Vertex(v int, name string) []float32 {
	if in.attrs == nil {
		return nil
	}
	if a, ok := in.attrs.VertexAttr(v, name); ok {
		return a
	}
	a, _ := in.attrs.InstanceAttr(in.Index, name)
	return a
}

// VertexCount returns the number of shared vertices of the mesh.
func (in *Instance) VertexCount() int {
	if in.attrs == nil {
		return 0
	}
	return in.attrs.VertexCount()
}

// Sprite is an axis-aligned textured quad produced by CPUProgram.Emit.
type Sprite struct {
	// Min and Max are the corners in target pixels.
	Min, Max mgl32.Vec2

	// UVMin and UVMax are the texture coordinates at Min and Max.
	UVMin, UVMax mgl32.Vec2

	// Texture names the texture variable to sample. Empty draws solid Color.
	Texture string

	// Color multiplies the sampled texel. Premultiplied alpha.
	Color mgl32.Vec4

	// Offset is added after the multiply, scaled by the result alpha.
	Offset mgl32.Vec4
}
