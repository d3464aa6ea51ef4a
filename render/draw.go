// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BlendMode selects how a draw combines with the target contents.
type BlendMode uint8

const (
	// BlendNone overwrites the target. Status stages draw with it so state
	// values replace rather than blend.
	BlendNone BlendMode = iota

	// BlendNormal is premultiplied source-over.
	BlendNormal

	// BlendAdd accumulates source into the target.
	BlendAdd
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendNone:
		return "NONE"
	case BlendNormal:
		return "NORMAL"
	case BlendAdd:
		return "ADD"
	default:
		return fmt.Sprintf("BlendMode(%d)", m)
	}
}

// BlendState maps the mode to a WebGPU blend state. BlendNone returns nil,
// which disables blending.
func (m BlendMode) BlendState() *gputypes.BlendState {
	switch m {
	case BlendNormal:
		s := gputypes.BlendStatePremultiplied()
		return &s
	case BlendAdd:
		return &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}

// VertexFormat is the numeric encoding of one vertex attribute.
type VertexFormat uint8

const (
	// VertexFloat32 stores Components float32 values.
	VertexFloat32 VertexFormat = iota

	// VertexUnorm8 stores Components normalized unsigned bytes.
	VertexUnorm8
)

// Size returns the byte size of components values in this encoding.
// Unorm8 attributes occupy a 4-byte aligned slot.
func (f VertexFormat) Size(components int) int {
	if f == VertexUnorm8 {
		return (components + 3) &^ 3
	}
	return components * 4
}

// GPUFormat maps the encoding and component count to a WebGPU vertex format.
func (f VertexFormat) GPUFormat(components int) gputypes.VertexFormat {
	if f == VertexUnorm8 {
		if components <= 2 {
			return gputypes.VertexFormatUnorm8x2
		}
		return gputypes.VertexFormatUnorm8x4
	}
	switch components {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// VertexAttribute places one shader input inside an interleaved record.
type VertexAttribute struct {
	Name       string
	Location   uint32
	Offset     int
	Components int
	Format     VertexFormat
}

// VertexLayout describes one interleaved vertex buffer.
type VertexLayout struct {
	Buffer     Buffer
	Stride     int
	Instance   bool
	Attributes []VertexAttribute
}

// Mesh is an indexed quad mesh drawn once per instance.
type Mesh struct {
	// Layouts lists the shared (per-vertex) and per-instance buffers.
	Layouts []VertexLayout

	// Index is a uint16 index buffer with IndexCount indices.
	Index      Buffer
	IndexCount int

	// VertexCount is the number of shared vertices (4 for a quad).
	VertexCount int

	// InstanceCount is the number of instances to draw.
	InstanceCount int

	// Instanced selects one hardware instanced draw. When false the device
	// issues one draw per instance.
	Instanced bool
}

// DrawCommand is one draw into a target.
type DrawCommand struct {
	// Label names the draw in logs and GPU debug labels.
	Label string

	Program Program
	Target  Target

	// Textures is indexed by texture unit. Sampler uniforms on Program map
	// texture variables to these units.
	Textures []Texture

	Blend BlendMode

	// Mesh is nil for a full-screen pass. GPU devices then draw three
	// vertices without vertex buffers; the vertex entry derives the
	// covering triangle from @builtin(vertex_index).
	Mesh *Mesh
}

// Validate checks that the command is complete and that the target is not
// also sampled by the same draw.
func (c *DrawCommand) Validate() error {
	if c.Program == nil {
		return fmt.Errorf("render: draw %q: nil program", c.Label)
	}
	if c.Target == nil {
		return fmt.Errorf("render: draw %q: nil target", c.Label)
	}
	for unit, tex := range c.Textures {
		if tex == nil {
			continue
		}
		if Texture(c.Target) == tex {
			return fmt.Errorf("%w: draw %q unit %d (%s)", ErrFeedbackLoop, c.Label, unit, tex.Label())
		}
	}
	if c.Mesh != nil && c.Mesh.Index != nil && c.Mesh.IndexCount <= 0 {
		return fmt.Errorf("render: draw %q: index buffer without index count", c.Label)
	}
	return nil
}

// TextureFor returns the texture bound to the texture variable name via its
// sampler uniform, or nil.
func (c *DrawCommand) TextureFor(name string) Texture {
	v, ok := c.Program.Uniform(name)
	if !ok || v.Kind() != KindSampler {
		return nil
	}
	unit := v.Unit()
	if unit < 0 || unit >= len(c.Textures) {
		return nil
	}
	return c.Textures[unit]
}
