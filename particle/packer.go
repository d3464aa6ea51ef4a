// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// Reserved attribute names.
const (
	AttrVertexPosition = "aVertexPosition"
	AttrTextureCoord   = "aTextureCoord"
	AttrParticleIndex  = "aParticleIndex"
)

// QuadVertices is the number of shared vertices of the particle quad.
const QuadVertices = 4

// quadIndices draws the quad as two triangles.
var quadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

// Attribute declares one custom vertex attribute.
//
// Per-instance attributes carry Components values per particle. Shared
// attributes go to the per-vertex buffer and hold either Components values
// reused by every vertex or Components values per quad vertex.
type Attribute struct {
	Name       string
	Components int
	Format     render.VertexFormat
	Shared     bool
	Data       []float32
}

// Quad is the geometry of one particle sprite.
type Quad struct {
	// Min and Max are the corners relative to the particle position, in
	// units of the display size.
	Min, Max mgl32.Vec2

	// UVMin and UVMax is the texture rectangle.
	UVMin, UVMax mgl32.Vec2
}

// UnitQuad is a quad centered on the particle covering the full texture.
func UnitQuad() Quad {
	return Quad{
		Min:   mgl32.Vec2{-0.5, -0.5},
		Max:   mgl32.Vec2{0.5, 0.5},
		UVMin: mgl32.Vec2{0, 0},
		UVMax: mgl32.Vec2{1, 1},
	}
}

// corner returns quad vertex v in the winding used by quadIndices.
func (q Quad) corner(v int) (pos, uv mgl32.Vec2) {
	switch v % QuadVertices {
	case 0:
		return q.Min, q.UVMin
	case 1:
		return mgl32.Vec2{q.Max[0], q.Min[1]}, mgl32.Vec2{q.UVMax[0], q.UVMin[1]}
	case 2:
		return q.Max, q.UVMax
	default:
		return mgl32.Vec2{q.Min[0], q.Max[1]}, mgl32.Vec2{q.UVMin[0], q.UVMax[1]}
	}
}

// Packed holds interleaved vertex data ready for upload.
type Packed struct {
	Shared         []byte
	SharedStride   int
	SharedAttrs    []render.VertexAttribute
	Instance       []byte
	InstanceStride int
	InstanceAttrs  []render.VertexAttribute
	VertexCount    int
	InstanceCount  int
}

// Indices returns the uint16 quad index data.
func (p *Packed) Indices() []byte {
	out := make([]byte, 2*len(quadIndices))
	for i, idx := range quadIndices {
		binary.LittleEndian.PutUint16(out[2*i:], idx)
	}
	return out
}

// Packer builds the per-vertex and per-instance buffers of a display pass.
type Packer struct {
	// Layout filters attributes to those the program declares and supplies
	// their shader locations. A nil Layout keeps every attribute without
	// location information.
	Layout *render.Layout

	// Grid addresses the state textures.
	Grid Grid

	// Quad supplies the default aVertexPosition and aTextureCoord.
	Quad Quad
}

// field is one attribute scheduled for packing.
type field struct {
	attr   Attribute
	offset int
	size   int
}

// Pack interleaves attrs into a shared buffer of vertexCount records and an
// instance buffer of instanceCount records.
//
// aParticleIndex is always the first instance field. aVertexPosition and
// aTextureCoord are synthesized from Quad unless attrs declares them.
// Attributes the program does not declare are dropped.
func (p *Packer) Pack(attrs []Attribute, vertexCount, instanceCount int) (*Packed, error) {
	if instanceCount < 0 || vertexCount < 0 {
		return nil, fmt.Errorf("%w: %d instances, %d vertices", ErrCount, instanceCount, vertexCount)
	}
	if err := p.Grid.Validate(instanceCount); err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		declared[a.Name] = true
	}

	var shared, inst []field
	sharedStride, instStride := 0, 0
	add := func(a Attribute) {
		size := a.Format.Size(a.Components)
		if a.Shared {
			shared = append(shared, field{attr: a, offset: sharedStride, size: size})
			sharedStride += size
			return
		}
		inst = append(inst, field{attr: a, offset: instStride, size: size})
		instStride += size
	}

	// The grid index occupies its slot even when the program ignores it so
	// the record layout does not depend on the shader variant.
	add(Attribute{Name: AttrParticleIndex, Components: 2})

	if !declared[AttrVertexPosition] {
		add(p.defaultAttr(AttrVertexPosition, vertexCount))
	}
	if !declared[AttrTextureCoord] {
		add(p.defaultAttr(AttrTextureCoord, vertexCount))
	}
	for _, a := range attrs {
		if a.Name == AttrParticleIndex {
			logger.Get().Warn("particle: ignoring custom aParticleIndex")
			continue
		}
		if p.Layout != nil && !p.Layout.HasAttribute(a.Name) {
			logger.Get().Debug("particle: dropping attribute absent from program", "name", a.Name)
			continue
		}
		if a.Components < 1 || a.Components > 4 {
			return nil, fmt.Errorf("%w: %s has %d components", ErrAttributeData, a.Name, a.Components)
		}
		if err := checkData(a, vertexCount, instanceCount); err != nil {
			return nil, err
		}
		add(a)
	}

	out := &Packed{
		Shared:         make([]byte, sharedStride*vertexCount),
		SharedStride:   sharedStride,
		Instance:       make([]byte, instStride*instanceCount),
		InstanceStride: instStride,
		VertexCount:    vertexCount,
		InstanceCount:  instanceCount,
	}
	for _, f := range shared {
		for v := range vertexCount {
			writeField(out.Shared[v*sharedStride+f.offset:], f.attr, p.value(f.attr, v, vertexCount))
		}
		out.SharedAttrs = p.appendAttr(out.SharedAttrs, f)
	}
	for _, f := range inst {
		for i := range instanceCount {
			writeField(out.Instance[i*instStride+f.offset:], f.attr, p.value(f.attr, i, instanceCount))
		}
		out.InstanceAttrs = p.appendAttr(out.InstanceAttrs, f)
	}
	return out, nil
}

// defaultAttr synthesizes a per-vertex quad attribute.
func (p *Packer) defaultAttr(name string, vertexCount int) Attribute {
	data := make([]float32, 0, 2*vertexCount)
	for v := range vertexCount {
		pos, uv := p.Quad.corner(v)
		if name == AttrVertexPosition {
			data = append(data, pos[0], pos[1])
		} else {
			data = append(data, uv[0], uv[1])
		}
	}
	return Attribute{Name: name, Components: 2, Shared: true, Data: data}
}

// value returns the components of record r.
func (p *Packer) value(a Attribute, r, records int) []float32 {
	if a.Name == AttrParticleIndex && a.Data == nil {
		col, row := p.Grid.Cell(r)
		return []float32{float32(col), float32(row)}
	}
	n := a.Components
	if len(a.Data) == n {
		return a.Data
	}
	return a.Data[r*n : r*n+n]
}

func (p *Packer) appendAttr(list []render.VertexAttribute, f field) []render.VertexAttribute {
	var loc uint32
	if p.Layout != nil {
		a, ok := p.Layout.Attributes[f.attr.Name]
		if !ok {
			return list
		}
		loc = a.Location
	}
	return append(list, render.VertexAttribute{
		Name:       f.attr.Name,
		Location:   loc,
		Offset:     f.offset,
		Components: f.attr.Components,
		Format:     f.attr.Format,
	})
}

func checkData(a Attribute, vertexCount, instanceCount int) error {
	records := instanceCount
	if a.Shared {
		records = vertexCount
	}
	switch len(a.Data) {
	case a.Components, a.Components * records:
		return nil
	}
	return fmt.Errorf("%w: %s has %d values, want %d or %d",
		ErrAttributeData, a.Name, len(a.Data), a.Components, a.Components*records)
}

// writeField encodes values at the start of dst.
func writeField(dst []byte, a Attribute, values []float32) {
	if a.Format == render.VertexUnorm8 {
		for c, v := range values {
			dst[c] = uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
		}
		return
	}
	for c, v := range values {
		binary.LittleEndian.PutUint32(dst[4*c:], math.Float32bits(v))
	}
}
