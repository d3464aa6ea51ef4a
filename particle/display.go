// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// Display uniforms.
const (
	UniformAlpha           = "uAlpha"
	UniformColorMultiplier = "uColorMultiplier"
	UniformColorOffset     = "uColorOffset"
	UniformOffset          = "uOffset"
	UniformSize            = "uSize"
	UniformFrame           = "uFrame"
)

// Display draws one textured quad per particle. The quad of particle i
// reads its simulated state from the active stages at texel Grid.Cell(i).
//
// Particles are drawn in index order; there is no depth sorting.
type Display struct {
	// Name labels the program and buffers.
	Name string

	// Source is the WGSL module; CPU is its software kernel.
	Source string
	CPU    *render.CPUProgram

	// Attributes are the custom per-instance or shared attributes.
	Attributes []Attribute

	// Quad is the sprite geometry. The zero value selects UnitQuad.
	Quad Quad

	// Blend is the blend mode of the display draw.
	Blend render.BlendMode

	// Uniforms returns shader-specific uniforms set after the shared ones,
	// such as a sprite-sheet frame rectangle.
	Uniforms func(p *Particle) render.Uniforms

	prog     render.Program
	packed   *Packed
	shared   render.Buffer
	instance render.Buffer
	index    render.Buffer
	mesh     *render.Mesh
	textures []render.Texture
}

// Init compiles the program through cache and packs the vertex buffers.
func (d *Display) Init(dev render.Device, cache *Cache, grid Grid, count int) error {
	if d.prog == nil {
		prog, err := cache.Program(&render.ProgramDescriptor{
			Label:  "display_" + d.Name,
			Source: d.Source,
			CPU:    d.CPU,
		})
		if err != nil {
			return fmt.Errorf("particle: display %q: %w", d.Name, err)
		}
		d.prog = prog
	}
	return d.Rebuild(dev, grid, count)
}

// Program returns the compiled program.
func (d *Display) Program() render.Program { return d.prog }

// Packed returns the packed vertex data of the last build.
func (d *Display) Packed() *Packed { return d.packed }

// Mesh returns the mesh drawn by Render.
func (d *Display) Mesh() *render.Mesh { return d.mesh }

// Rebuild repacks and re-uploads the vertex buffers. Buffers are replaced,
// never edited in place.
func (d *Display) Rebuild(dev render.Device, grid Grid, count int) error {
	if d.prog == nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, ErrNotInitialized)
	}
	quad := d.Quad
	if quad == (Quad{}) {
		quad = UnitQuad()
	}
	packer := &Packer{Layout: d.prog.Layout(), Grid: grid, Quad: quad}
	packed, err := packer.Pack(d.Attributes, QuadVertices, count)
	if err != nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, err)
	}

	d.destroyBuffers()
	create := func(label string, usage render.BufferUsage, data []byte) (render.Buffer, error) {
		return dev.CreateBuffer(&render.BufferDescriptor{Label: d.Name + "_" + label, Usage: usage, Data: data})
	}
	if d.shared, err = create("shared", render.BufferVertex, packed.Shared); err != nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, err)
	}
	if d.instance, err = create("instance", render.BufferVertex, packed.Instance); err != nil {
		d.destroyBuffers()
		return fmt.Errorf("particle: display %q: %w", d.Name, err)
	}
	if d.index, err = create("index", render.BufferIndex, packed.Indices()); err != nil {
		d.destroyBuffers()
		return fmt.Errorf("particle: display %q: %w", d.Name, err)
	}

	instanced := dev.Capabilities().Instancing
	if !instanced {
		logger.Get().Debug("particle: instancing unavailable, drawing per instance", "display", d.Name)
	}
	d.packed = packed
	d.mesh = &render.Mesh{
		Layouts: []render.VertexLayout{
			{Buffer: d.shared, Stride: packed.SharedStride, Attributes: packed.SharedAttrs},
			{Buffer: d.instance, Stride: packed.InstanceStride, Instance: true, Attributes: packed.InstanceAttrs},
		},
		Index:         d.index,
		IndexCount:    len(quadIndices),
		VertexCount:   QuadVertices,
		InstanceCount: count,
		Instanced:     instanced,
	}
	return nil
}

// Update binds the base texture, the active stage outputs and the shared
// compositing uniforms of p, then runs the Uniforms hook.
func (d *Display) Update(p *Particle) error {
	if d.prog == nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, ErrNotInitialized)
	}
	textures := []render.Texture{p.texture}
	for _, name := range []string{UniformSampler, UniformTexture} {
		if err := setIfDeclared(d.prog, name, render.Sampler(0)); err != nil {
			return fmt.Errorf("particle: display %q: %w", d.Name, err)
		}
	}
	for i, s := range p.pipeline.ActiveStages() {
		name := StateTexture(i)
		if !d.prog.Has(name) {
			continue
		}
		if err := d.prog.SetUniform(name, render.Sampler(len(textures))); err != nil {
			return fmt.Errorf("particle: display %q: %w", d.Name, err)
		}
		textures = append(textures, s.Output())
	}

	u := frameUniforms(p.frame(0), p.Format(), p.scale)
	u[UniformAlpha] = render.Float(p.Alpha)
	u[UniformColorMultiplier] = render.Vec4(p.ColorMultiplier)
	u[UniformColorOffset] = render.Vec4(p.ColorOffset)
	u[UniformOffset] = render.Vec2(p.Position)
	u[UniformSize] = render.Float(p.Size)
	u[UniformFrame] = render.Vec4(mgl32.Vec4{0, 0, 1, 1})
	if err := applyUniforms(d.prog, u); err != nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, err)
	}
	if d.Uniforms != nil {
		if err := d.prog.SetUniforms(d.Uniforms(p)); err != nil {
			return fmt.Errorf("particle: display %q: %w", d.Name, err)
		}
	}
	d.textures = textures
	return nil
}

// Render issues the display draw into target: one instanced draw, or one
// draw per particle when the device lacks instancing.
func (d *Display) Render(dev render.Device, target render.Target) error {
	if d.mesh == nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, ErrNotInitialized)
	}
	if d.mesh.InstanceCount == 0 {
		return nil
	}
	err := dev.Draw(&render.DrawCommand{
		Label:    "display_" + d.Name,
		Program:  d.prog,
		Target:   target,
		Textures: d.textures,
		Blend:    d.Blend,
		Mesh:     d.mesh,
	})
	if err != nil {
		return fmt.Errorf("particle: display %q: %w", d.Name, err)
	}
	return nil
}

func (d *Display) destroyBuffers() {
	for _, b := range []render.Buffer{d.shared, d.instance, d.index} {
		if b != nil {
			b.Destroy()
		}
	}
	d.shared, d.instance, d.index = nil, nil, nil
	d.mesh = nil
}

// Destroy releases the vertex buffers. The program belongs to the cache.
func (d *Display) Destroy() {
	d.destroyBuffers()
	d.prog = nil
	d.packed = nil
	d.textures = nil
}
