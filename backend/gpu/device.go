// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/backend"
	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// ErrNoHalDevice is returned when the host handle does not expose hal types.
var ErrNoHalDevice = errors.New("gpu: device handle does not expose hal.Device and hal.Queue")

// Option configures a Device.
type Option func(*Device)

// WithCapabilities overrides the capabilities probed from the adapter.
func WithCapabilities(caps render.Capabilities) Option {
	return func(d *Device) {
		d.caps = caps
	}
}

// WithViewSize sets the size reported by ViewSize.
func WithViewSize(width, height int) Option {
	return func(d *Device) {
		if width > 0 && height > 0 {
			d.viewW, d.viewH = width, height
		}
	}
}

// transient holds per-draw objects until the GPU has finished with them.
type transient struct {
	submission uint64
	cmd        hal.CommandBuffer
	encoder    hal.CommandEncoder
	groups     []hal.BindGroup
}

// Device executes fx draws on a host-owned hal device.
// Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue

	caps  render.Capabilities
	viewW int
	viewH int

	sampler   hal.Sampler
	pipelines map[pipelineKey]hal.RenderPipeline
	pending   []transient

	submissions int
	destroyed   bool
}

var _ render.Device = (*Device)(nil)

// New wraps the hal device and queue exposed by handle.
func New(handle render.DeviceHandle, opts ...Option) (*Device, error) {
	if handle == nil {
		return nil, fmt.Errorf("gpu: %w", backend.ErrNoHandle)
	}
	device, queue, err := halDeviceQueue(handle)
	if err != nil {
		return nil, err
	}

	d := &Device{
		device:    device,
		queue:     queue,
		caps:      probeCapabilities(handle.Adapter()),
		viewW:     800,
		viewH:     600,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "fx_nearest_clamp",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create sampler: %w", err)
	}

	logger.Get().Info("gpu: device ready",
		"float", d.caps.FloatTexture,
		"half_float", d.caps.HalfFloatTexture,
		"instancing", d.caps.Instancing)
	return d, nil
}

// halDeviceQueue extracts hal objects from the host handle, preferring the
// HalDevice/HalQueue accessors.
func halDeviceQueue(handle render.DeviceHandle) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	var dev, q any
	if hp, ok := handle.(halProvider); ok {
		dev, q = hp.HalDevice(), hp.HalQueue()
	} else {
		dev, q = handle.Device(), handle.Queue()
	}
	device, ok := dev.(hal.Device)
	if !ok || device == nil {
		return nil, nil, ErrNoHalDevice
	}
	queue, ok := q.(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, ErrNoHalDevice
	}
	return device, queue, nil
}

// probeCapabilities asks the adapter which float formats are renderable.
// Without a hal adapter the conservative defaults apply.
func probeCapabilities(adapter any) render.Capabilities {
	caps := render.DefaultCapabilities()
	a, ok := adapter.(hal.Adapter)
	if !ok || a == nil {
		return caps
	}
	renderable := func(f gputypes.TextureFormat) bool {
		return a.TextureFormatCapabilities(f).Flags&hal.TextureFormatCapabilityRenderAttachment != 0
	}
	caps.FloatTexture = renderable(gputypes.TextureFormatRGBA32Float)
	caps.HalfFloatTexture = renderable(gputypes.TextureFormatRGBA16Float)
	return caps
}

// Capabilities returns the device feature set.
func (d *Device) Capabilities() render.Capabilities { return d.caps }

// ViewSize returns the configured view size.
func (d *Device) ViewSize() (int, int) { return d.viewW, d.viewH }

// Submissions returns the number of command buffers submitted since the
// last Prerender.
func (d *Device) Submissions() int { return d.submissions }

func (d *Device) alive() error {
	if d.destroyed {
		return fmt.Errorf("gpu: %w", render.ErrDestroyed)
	}
	return nil
}

// CreateTarget allocates a renderable, sampleable texture and uploads the
// seed if present.
func (d *Device) CreateTarget(desc *render.TargetDescriptor) (render.Target, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	switch {
	case desc.Format == render.FormatFloat && !d.caps.FloatTexture,
		desc.Format == render.FormatHalfFloat && !d.caps.HalfFloatTexture:
		return nil, fmt.Errorf("%w: %s", render.ErrFormatUnsupported, desc.Format)
	}

	t, err := d.newTexture(desc.Label, desc.Width, desc.Height, desc.Format)
	if err != nil {
		return nil, err
	}
	if desc.Seed != nil {
		data, err := render.EncodeTexels(desc.Format, desc.Seed, desc.EffectiveScale())
		if err != nil {
			t.Destroy()
			return nil, err
		}
		if err := d.writeTexture(t, data); err != nil {
			t.Destroy()
			return nil, err
		}
	}
	return t, nil
}

// CreateTexture uploads img as an RGBA8 sampled texture.
func (d *Device) CreateTexture(label string, img *image.RGBA) (render.Texture, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("gpu: texture %q: nil image", label)
	}
	img = render.ImageToRGBA(img, 0, 0)
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", render.ErrInvalidSize, b.Dx(), b.Dy())
	}
	t, err := d.newTexture(label, b.Dx(), b.Dy(), render.FormatRGBA)
	if err != nil {
		return nil, err
	}
	if err := d.writeTexture(t, img.Pix); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

func (d *Device) newTexture(label string, width, height int, format render.Format) (*Texture, error) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format.TextureFormat(),
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label,
		Format:        format.TextureFormat(),
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create view %q: %w", label, err)
	}
	return &Texture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		dev:    d,
		tex:    tex,
		view:   view,
	}, nil
}

func (d *Device) writeTexture(t *Texture, data []byte) error {
	bpr := uint32(t.width * t.format.BytesPerTexel())
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: bpr, RowsPerImage: uint32(t.height)},
		&hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("gpu: upload %q: %w", t.label, err)
	}
	return nil
}

// CreateBuffer allocates a vertex or index buffer initialized with desc.Data.
func (d *Device) CreateBuffer(desc *render.BufferDescriptor) (render.Buffer, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if desc.Usage == render.BufferIndex {
		usage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	size := max((len(desc.Data)+3)&^3, 4)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", desc.Label, err)
	}
	b := &Buffer{
		label: desc.Label,
		dev:   d,
		buf:   buf,
		data:  make([]byte, len(desc.Data)),
	}
	if len(desc.Data) > 0 {
		if err := b.Write(0, desc.Data); err != nil {
			b.Destroy()
			return nil, err
		}
	}
	return b, nil
}

// CompileProgram compiles WGSL and builds the group 0 bind group layout
// from the reflected bindings.
func (d *Device) CompileProgram(desc *render.ProgramDescriptor) (render.Program, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	vertex, fragment := desc.Entries()
	layout, err := render.Reflect(desc.Source, vertex)
	if err != nil {
		return nil, fmt.Errorf("gpu: program %q: %w", desc.Label, err)
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: program %q: create shader: %w", desc.Label, err)
	}
	bgl, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: bindGroupLayoutEntries(layout),
	})
	if err != nil {
		d.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: program %q: bind group layout: %w", desc.Label, err)
	}
	pl, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: []hal.BindGroupLayout{bgl},
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(bgl)
		d.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: program %q: pipeline layout: %w", desc.Label, err)
	}

	p := &Program{
		UniformBlock: render.NewUniformBlock(layout),
		label:        desc.Label,
		vertex:       vertex,
		fragment:     fragment,
		dev:          d,
		module:       module,
		bgl:          bgl,
		layout:       pl,
	}
	if layout.HasUniformBuffer {
		p.uniforms, err = d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: desc.Label + "_uniforms",
			Size:  uint64(uniformBufferSize(layout)),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			p.Destroy()
			return nil, fmt.Errorf("gpu: program %q: uniform buffer: %w", desc.Label, err)
		}
	}
	logger.Get().Debug("gpu: program compiled",
		"label", desc.Label,
		"attributes", len(layout.Attributes),
		"uniforms", len(layout.Uniforms),
		"textures", len(layout.Textures))
	return p, nil
}

// Clear fills target with color in its own render pass.
func (d *Device) Clear(target render.Target, color gputypes.Color) error {
	if err := d.alive(); err != nil {
		return err
	}
	t, err := d.target(target)
	if err != nil {
		return err
	}
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fx_clear"})
	if err != nil {
		return fmt.Errorf("gpu: clear %q: %w", t.label, err)
	}
	if err := enc.BeginEncoding("fx_clear"); err != nil {
		enc.Destroy()
		return fmt.Errorf("gpu: clear %q: %w", t.label, err)
	}
	pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fx_clear",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: color,
		}},
	})
	pass.End()
	return d.submit(enc, nil)
}

// Draw records one render pass for cmd and submits it.
func (d *Device) Draw(cmd *render.DrawCommand) error {
	if err := d.alive(); err != nil {
		return err
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	prog, ok := cmd.Program.(*Program)
	if !ok {
		return fmt.Errorf("gpu: draw %q: program not created by this device", cmd.Label)
	}
	if prog.destroyed {
		return fmt.Errorf("gpu: draw %q: program: %w", cmd.Label, render.ErrDestroyed)
	}
	t, err := d.target(cmd.Target)
	if err != nil {
		return err
	}
	if err := prog.upload(); err != nil {
		return err
	}

	pipeline, err := d.pipeline(pipelineKey{
		prog:   prog,
		blend:  cmd.Blend,
		format: t.format,
		mesh:   meshSignature(cmd.Mesh),
	}, cmd.Mesh)
	if err != nil {
		return err
	}
	group, err := d.bindGroup(cmd, prog)
	if err != nil {
		return err
	}

	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: cmd.Label})
	if err != nil {
		d.device.DestroyBindGroup(group)
		return fmt.Errorf("gpu: draw %q: %w", cmd.Label, err)
	}
	if err := enc.BeginEncoding(cmd.Label); err != nil {
		enc.Destroy()
		d.device.DestroyBindGroup(group)
		return fmt.Errorf("gpu: draw %q: %w", cmd.Label, err)
	}
	pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: cmd.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    t.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, group, nil)
	if err := recordMesh(pass, cmd.Mesh); err != nil {
		pass.End()
		enc.DiscardEncoding()
		enc.Destroy()
		d.device.DestroyBindGroup(group)
		return fmt.Errorf("gpu: draw %q: %w", cmd.Label, err)
	}
	pass.End()
	return d.submit(enc, []hal.BindGroup{group})
}

// recordMesh binds vertex buffers and issues the draw calls. A nil mesh is
// a full-screen triangle.
func recordMesh(pass hal.RenderPassEncoder, mesh *render.Mesh) error {
	if mesh == nil {
		pass.Draw(3, 1, 0, 0)
		return nil
	}
	for slot, l := range mesh.Layouts {
		b, ok := l.Buffer.(*Buffer)
		if !ok || b.destroyed {
			return fmt.Errorf("vertex buffer %d unusable", slot)
		}
		pass.SetVertexBuffer(uint32(slot), b.buf, 0)
	}
	if mesh.InstanceCount <= 0 {
		return nil
	}

	draw := func(instances, first uint32) {
		pass.Draw(uint32(mesh.VertexCount), instances, 0, first)
	}
	if mesh.Index != nil {
		ib, ok := mesh.Index.(*Buffer)
		if !ok || ib.destroyed {
			return errors.New("index buffer unusable")
		}
		pass.SetIndexBuffer(ib.buf, gputypes.IndexFormatUint16, 0)
		draw = func(instances, first uint32) {
			pass.DrawIndexed(uint32(mesh.IndexCount), instances, 0, 0, first)
		}
	}

	if mesh.Instanced {
		draw(uint32(mesh.InstanceCount), 0)
		return nil
	}
	for i := range mesh.InstanceCount {
		draw(1, uint32(i))
	}
	return nil
}

// bindGroup creates the per-draw bind group for cmd.
func (d *Device) bindGroup(cmd *render.DrawCommand, prog *Program) (hal.BindGroup, error) {
	layout := prog.Layout()
	var entries []gputypes.BindGroupEntry
	if layout.HasUniformBuffer {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: layout.UniformBinding,
			Resource: gputypes.BufferBinding{
				Buffer: prog.uniforms.NativeHandle(),
				Size:   uint64(uniformBufferSize(layout)),
			},
		})
	}
	for _, name := range layout.TextureNames() {
		tex, ok := cmd.TextureFor(name).(*Texture)
		if !ok || tex == nil {
			return nil, fmt.Errorf("gpu: draw %q: no texture bound to %s", cmd.Label, name)
		}
		if tex.destroyed {
			return nil, fmt.Errorf("gpu: draw %q: texture %q: %w", cmd.Label, tex.label, render.ErrDestroyed)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  layout.Textures[name],
			Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()},
		})
	}
	for _, binding := range layout.Samplers {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  binding,
			Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()},
		})
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   cmd.Label,
		Layout:  prog.bgl,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: draw %q: bind group: %w", cmd.Label, err)
	}
	return group, nil
}

func (d *Device) target(target render.Target) (*Texture, error) {
	t, ok := target.(*Texture)
	if !ok {
		return nil, fmt.Errorf("gpu: target %q not created by this device", target.Label())
	}
	if t.destroyed {
		return nil, fmt.Errorf("gpu: target %q: %w", t.label, render.ErrDestroyed)
	}
	return t, nil
}

// submit ends encoding and queues the command buffer without waiting. The
// buffer, encoder and groups are released once the GPU reports completion.
func (d *Device) submit(enc hal.CommandEncoder, groups []hal.BindGroup) error {
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		for _, g := range groups {
			d.device.DestroyBindGroup(g)
		}
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	idx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		d.device.FreeCommandBuffer(cmdBuf)
		enc.Destroy()
		for _, g := range groups {
			d.device.DestroyBindGroup(g)
		}
		return fmt.Errorf("gpu: submit: %w", err)
	}
	d.pending = append(d.pending, transient{
		submission: idx,
		cmd:        cmdBuf,
		encoder:    enc,
		groups:     groups,
	})
	d.submissions++
	return nil
}

// Prerender releases transient objects of completed submissions and resets
// the per-frame counters.
func (d *Device) Prerender() {
	d.submissions = 0
	d.release(d.queue.PollCompleted())
}

func (d *Device) release(completed uint64) {
	kept := d.pending[:0]
	for _, tr := range d.pending {
		if tr.submission > completed {
			kept = append(kept, tr)
			continue
		}
		for _, g := range tr.groups {
			d.device.DestroyBindGroup(g)
		}
		d.device.FreeCommandBuffer(tr.cmd)
		tr.encoder.Destroy()
	}
	clear(d.pending[len(kept):])
	d.pending = kept
}

// Pending returns the number of submissions whose transient objects are
// still held.
func (d *Device) Pending() int { return len(d.pending) }

// Destroy waits for the GPU, then releases pipelines, the sampler and all
// transient objects. The shared hal device itself stays with the host.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if err := d.device.WaitIdle(); err != nil {
		logger.Get().Warn("gpu: wait idle failed", "err", err)
	}
	d.release(^uint64(0))
	for key, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.pipelines, key)
	}
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
}
