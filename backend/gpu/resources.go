// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/render"
)

// Texture is a hal texture with its default view.
type Texture struct {
	label  string
	width  int
	height int
	format render.Format

	dev       *Device
	tex       hal.Texture
	view      hal.TextureView
	destroyed bool
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel encoding.
func (t *Texture) Format() render.Format { return t.format }

// Destroy releases the view and texture.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.view != nil {
		t.dev.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.dev.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// Buffer is a hal buffer with a CPU shadow of its contents.
type Buffer struct {
	label     string
	dev       *Device
	buf       hal.Buffer
	data      []byte
	destroyed bool
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Bytes returns the last contents written from the CPU.
func (b *Buffer) Bytes() []byte { return b.data }

// Write uploads data at offset through the queue.
func (b *Buffer) Write(offset int, data []byte) error {
	if b.destroyed {
		return fmt.Errorf("gpu: buffer %q: %w", b.label, render.ErrDestroyed)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("gpu: buffer %q: write [%d, %d) out of range %d", b.label, offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	if err := b.dev.queue.WriteBuffer(b.buf, uint64(offset), padTo4(data)); err != nil {
		return fmt.Errorf("gpu: buffer %q: %w", b.label, err)
	}
	return nil
}

// Destroy releases the hal buffer.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.dev.device.DestroyBuffer(b.buf)
	b.buf = nil
	b.data = nil
}

// Program is a compiled WGSL module with its bind group and pipeline
// layouts and a uniform buffer.
type Program struct {
	*render.UniformBlock

	label    string
	vertex   string
	fragment string

	dev       *Device
	module    hal.ShaderModule
	bgl       hal.BindGroupLayout
	layout    hal.PipelineLayout
	uniforms  hal.Buffer
	destroyed bool
}

// Label returns the debug label.
func (p *Program) Label() string { return p.label }

// Destroy releases the shader module, layouts, uniform buffer and cached
// pipelines built from the program.
func (p *Program) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.dropPipelines(p)
	if p.uniforms != nil {
		p.dev.device.DestroyBuffer(p.uniforms)
	}
	p.dev.device.DestroyPipelineLayout(p.layout)
	p.dev.device.DestroyBindGroupLayout(p.bgl)
	p.dev.device.DestroyShaderModule(p.module)
}

// upload writes dirty uniform values to the uniform buffer.
func (p *Program) upload() error {
	if p.uniforms == nil || !p.Dirty() {
		return nil
	}
	if err := p.dev.queue.WriteBuffer(p.uniforms, 0, p.Bytes()); err != nil {
		return fmt.Errorf("gpu: program %q: upload uniforms: %w", p.label, err)
	}
	p.MarkClean()
	return nil
}

// padTo4 pads data to a multiple of 4 bytes as queue writes require.
func padTo4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, (len(data)+3)&^3)
	copy(out, data)
	return out
}
