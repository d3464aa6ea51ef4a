// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/render"
)

// pipelineKey identifies a cached render pipeline.
type pipelineKey struct {
	prog   *Program
	blend  render.BlendMode
	format render.Format
	mesh   string
}

// meshSignature encodes the vertex layout of a mesh for pipeline caching.
// Full-screen passes have an empty signature.
func meshSignature(mesh *render.Mesh) string {
	if mesh == nil {
		return ""
	}
	var sb strings.Builder
	for _, l := range mesh.Layouts {
		fmt.Fprintf(&sb, "%d/%t[", l.Stride, l.Instance)
		for _, a := range l.Attributes {
			fmt.Fprintf(&sb, "%d:%d:%d:%d,", a.Location, a.Offset, a.Components, a.Format)
		}
		sb.WriteString("]")
	}
	return sb.String()
}

// vertexBufferLayouts converts mesh layouts to WebGPU vertex buffer layouts.
func vertexBufferLayouts(mesh *render.Mesh) []gputypes.VertexBufferLayout {
	if mesh == nil {
		return nil
	}
	out := make([]gputypes.VertexBufferLayout, 0, len(mesh.Layouts))
	for _, l := range mesh.Layouts {
		step := gputypes.VertexStepModeVertex
		if l.Instance {
			step = gputypes.VertexStepModeInstance
		}
		attrs := make([]gputypes.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attrs = append(attrs, gputypes.VertexAttribute{
				Format:         a.Format.GPUFormat(a.Components),
				Offset:         uint64(a.Offset),
				ShaderLocation: a.Location,
			})
		}
		out = append(out, gputypes.VertexBufferLayout{
			ArrayStride: uint64(l.Stride),
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out
}

// bindGroupLayoutEntries describes group 0 of a reflected program: the
// uniform buffer, every texture_2d and every sampler.
//
// State targets may be 32-bit float, which is not filterable, so textures
// bind as unfilterable float and samplers as non-filtering.
func bindGroupLayoutEntries(l *render.Layout) []gputypes.BindGroupLayoutEntry {
	stages := gputypes.ShaderStagesVertexFragment
	var entries []gputypes.BindGroupLayoutEntry
	if l.HasUniformBuffer {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    l.UniformBinding,
			Visibility: stages,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: uint64(uniformBufferSize(l)),
			},
		})
	}
	for _, name := range l.TextureNames() {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    l.Textures[name],
			Visibility: stages,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	for _, binding := range l.Samplers {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: stages,
			Sampler: &gputypes.SamplerBindingLayout{
				Type: gputypes.SamplerBindingTypeNonFiltering,
			},
		})
	}
	return entries
}

// uniformBufferSize rounds the uniform struct size up to 16 bytes.
func uniformBufferSize(l *render.Layout) uint32 {
	return max((l.UniformSize+15)&^15, 16)
}

// pipeline returns the cached pipeline for key, creating it on first use.
func (d *Device) pipeline(key pipelineKey, mesh *render.Mesh) (hal.RenderPipeline, error) {
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	p, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  key.prog.label,
		Layout: key.prog.layout,
		Vertex: hal.VertexState{
			Module:     key.prog.module,
			EntryPoint: key.prog.vertex,
			Buffers:    vertexBufferLayouts(mesh),
		},
		Fragment: &hal.FragmentState{
			Module:     key.prog.module,
			EntryPoint: key.prog.fragment,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.format.TextureFormat(),
					Blend:     key.blend.BlendState(),
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pipeline %q: %w", key.prog.label, err)
	}
	d.pipelines[key] = p
	return p, nil
}

// dropPipelines destroys every cached pipeline built from prog.
func (d *Device) dropPipelines(prog *Program) {
	for key, p := range d.pipelines {
		if key.prog == prog {
			d.device.DestroyRenderPipeline(p)
			delete(d.pipelines, key)
		}
	}
}
