// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/fx/render"
)

// Buffer is a CPU-resident vertex or index buffer.
type Buffer struct {
	label     string
	usage     render.BufferUsage
	data      []byte
	destroyed bool
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Write copies data into the buffer at offset.
func (b *Buffer) Write(offset int, data []byte) error {
	if b.destroyed {
		return fmt.Errorf("buffer %q: %w", b.label, render.ErrDestroyed)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("buffer %q: write [%d, %d) out of range %d", b.label, offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

// Destroy releases the buffer.
func (b *Buffer) Destroy() {
	b.destroyed = true
	b.data = nil
}

// attrRef locates one attribute inside a mesh layout.
type attrRef struct {
	layout *render.VertexLayout
	attr   render.VertexAttribute
}

// meshReader decodes interleaved mesh buffers for CPU kernels.
type meshReader struct {
	mesh     *render.Mesh
	vertex   map[string]attrRef
	instance map[string]attrRef
}

func newMeshReader(mesh *render.Mesh) *meshReader {
	r := &meshReader{
		mesh:     mesh,
		vertex:   make(map[string]attrRef),
		instance: make(map[string]attrRef),
	}
	for i := range mesh.Layouts {
		l := &mesh.Layouts[i]
		for _, a := range l.Attributes {
			if l.Instance {
				r.instance[a.Name] = attrRef{layout: l, attr: a}
			} else {
				r.vertex[a.Name] = attrRef{layout: l, attr: a}
			}
		}
	}
	return r
}

func (r *meshReader) InstanceAttr(i int, name string) ([]float32, bool) {
	ref, ok := r.instance[name]
	if !ok {
		return nil, false
	}
	return decodeAttr(ref, i)
}

func (r *meshReader) VertexAttr(v int, name string) ([]float32, bool) {
	ref, ok := r.vertex[name]
	if !ok {
		return nil, false
	}
	return decodeAttr(ref, v)
}

func (r *meshReader) VertexCount() int {
	return r.mesh.VertexCount
}

func decodeAttr(ref attrRef, record int) ([]float32, bool) {
	if ref.layout.Buffer == nil {
		return nil, false
	}
	data := ref.layout.Buffer.Bytes()
	base := record*ref.layout.Stride + ref.attr.Offset
	size := ref.attr.Format.Size(ref.attr.Components)
	if base < 0 || base+size > len(data) {
		return nil, false
	}
	out := make([]float32, ref.attr.Components)
	for c := range out {
		if ref.attr.Format == render.VertexUnorm8 {
			out[c] = float32(data[base+c]) / 255
		} else {
			out[c] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+c*4:]))
		}
	}
	return out, true
}
