// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/render"
)

// Stats counts device work since the last Prerender.
type Stats struct {
	// Draws is the number of draw calls. Non-instanced mesh draws count one
	// call per instance.
	Draws int

	// Clears is the number of Clear calls.
	Clears int

	// Instances is the number of instances emitted by mesh draws.
	Instances int
}

// Option configures a Device.
type Option func(*Device)

// WithCapabilities overrides the reported capabilities. Tests use it to
// mock missing float or instancing support.
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

// WithWorkers shades full-screen draws in row bands on n goroutines. Zero
// or negative n uses GOMAXPROCS. The default shades serially.
func WithWorkers(n int) Option {
	return func(d *Device) {
		d.workers = parallel.NewWorkerPool(n)
	}
}

// Device executes fx draws on the CPU.
//
// Full-screen draws run the program's Shade kernel per pixel and mesh draws
// run its Emit kernel per instance. Device is not safe for concurrent use.
type Device struct {
	caps      render.Capabilities
	viewW     int
	viewH     int
	stats     Stats
	workers   *parallel.WorkerPool
	destroyed bool
}

var _ render.Device = (*Device)(nil)

// New creates a software device. By default it supports instancing and
// both float formats, with an 800x600 view.
func New(opts ...Option) *Device {
	d := &Device{
		caps: render.Capabilities{
			Instancing:       true,
			FloatTexture:     true,
			HalfFloatTexture: true,
			MaxTextureSize:   4096,
		},
		viewW: 800,
		viewH: 600,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Capabilities returns the device feature set.
func (d *Device) Capabilities() render.Capabilities { return d.caps }

// ViewSize returns the configured view size.
func (d *Device) ViewSize() (int, int) { return d.viewW, d.viewH }

// Stats returns the counters accumulated since the last Prerender.
func (d *Device) Stats() Stats { return d.stats }

// Prerender resets the per-frame counters.
func (d *Device) Prerender() { d.stats = Stats{} }

// Destroy marks the device unusable.
func (d *Device) Destroy() {
	if d.workers != nil {
		d.workers.Close()
	}
	d.destroyed = true
}

func (d *Device) alive() error {
	if d.destroyed {
		return fmt.Errorf("software: %w", render.ErrDestroyed)
	}
	return nil
}

// CreateTarget allocates a target, uploading the seed if present.
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

	t := newTexture(desc.Label, desc.Width, desc.Height, desc.Format, desc.EffectiveScale())
	if desc.Seed != nil {
		if err := t.upload(desc.Seed); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CreateTexture copies img into a sampled texture.
func (d *Device) CreateTexture(label string, img *image.RGBA) (render.Texture, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("software: texture %q: nil image", label)
	}
	img = render.ImageToRGBA(img, 0, 0)
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", render.ErrInvalidSize, b.Dx(), b.Dy())
	}
	t := newTexture(label, b.Dx(), b.Dy(), render.FormatRGBA, 1)
	t.uploadImage(img)
	return t, nil
}

// CreateBuffer allocates a buffer holding a copy of desc.Data.
func (d *Device) CreateBuffer(desc *render.BufferDescriptor) (render.Buffer, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	data := make([]byte, len(desc.Data))
	copy(data, desc.Data)
	return &Buffer{label: desc.Label, usage: desc.Usage, data: data}, nil
}

// CompileProgram reflects the WGSL source and attaches the CPU kernel.
func (d *Device) CompileProgram(desc *render.ProgramDescriptor) (render.Program, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	vertex, _ := desc.Entries()
	layout, err := render.Reflect(desc.Source, vertex)
	if err != nil {
		return nil, fmt.Errorf("software: program %q: %w", desc.Label, err)
	}
	logger.Get().Debug("software: program compiled",
		"label", desc.Label,
		"attributes", len(layout.Attributes),
		"uniforms", len(layout.Uniforms),
		"textures", len(layout.Textures))
	return &Program{
		UniformBlock: render.NewUniformBlock(layout),
		label:        desc.Label,
		cpu:          desc.CPU,
	}, nil
}

// Clear fills target with color.
func (d *Device) Clear(target render.Target, color gputypes.Color) error {
	if err := d.alive(); err != nil {
		return err
	}
	t, err := d.target(target)
	if err != nil {
		return err
	}
	t.fill(mgl32.Vec4{float32(color.R), float32(color.G), float32(color.B), float32(color.A)})
	d.stats.Clears++
	return nil
}

// Draw executes cmd on the CPU.
func (d *Device) Draw(cmd *render.DrawCommand) error {
	if err := d.alive(); err != nil {
		return err
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	prog, ok := cmd.Program.(*Program)
	if !ok {
		return fmt.Errorf("software: draw %q: program %q was not compiled by this device", cmd.Label, cmd.Program.Label())
	}
	if prog.destroyed {
		return fmt.Errorf("software: draw %q: program %q: %w", cmd.Label, prog.label, render.ErrDestroyed)
	}
	dst, err := d.target(cmd.Target)
	if err != nil {
		return err
	}
	for _, tex := range cmd.Textures {
		if st, ok := tex.(*Texture); ok && st.destroyed {
			return fmt.Errorf("software: draw %q: texture %q: %w", cmd.Label, st.label, render.ErrDestroyed)
		}
	}
	b := &bindings{cmd: cmd, prog: prog}

	if cmd.Mesh == nil {
		if prog.cpu == nil || prog.cpu.Shade == nil {
			return fmt.Errorf("software: draw %q: %w", cmd.Label, render.ErrNoKernel)
		}
		d.shadeQuad(dst, b, prog.cpu.Shade, cmd.Blend)
		d.stats.Draws++
		return nil
	}

	if prog.cpu == nil || prog.cpu.Emit == nil {
		return fmt.Errorf("software: draw %q: %w", cmd.Label, render.ErrNoKernel)
	}
	reader := newMeshReader(cmd.Mesh)
	for i := 0; i < cmd.Mesh.InstanceCount; i++ {
		if s, ok := prog.cpu.Emit(render.NewInstance(b, reader, i)); ok {
			d.rasterize(dst, b, s, cmd.Blend)
		}
		if !cmd.Mesh.Instanced {
			d.stats.Draws++
		}
	}
	if cmd.Mesh.Instanced {
		d.stats.Draws++
	}
	d.stats.Instances += cmd.Mesh.InstanceCount
	return nil
}

func (d *Device) target(t render.Target) (*Texture, error) {
	st, ok := t.(*Texture)
	if !ok {
		return nil, fmt.Errorf("software: target %q was not created by this device", t.Label())
	}
	if st.destroyed {
		return nil, fmt.Errorf("software: target %q: %w", st.label, render.ErrDestroyed)
	}
	return st, nil
}

// shadeQuad runs a full-screen kernel over every pixel of dst. Kernels
// only write their own pixel, so row bands can run concurrently.
func (d *Device) shadeQuad(dst *Texture, b *bindings, shade func(*render.Fragment) mgl32.Vec4, mode render.BlendMode) {
	rows := func(y0, y1 int) {
		f := render.Fragment{Bindings: b, Width: dst.width, Height: dst.height}
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.width; x++ {
				f.X, f.Y = x, y
				f.U = (float32(x) + 0.5) / float32(dst.width)
				f.V = (float32(y) + 0.5) / float32(dst.height)
				dst.blend(x, y, shade(&f), mode)
			}
		}
	}
	if d.workers == nil {
		rows(0, dst.height)
		return
	}
	d.workers.Rows(dst.height, rows)
}

// rasterize fills the pixels whose centers fall inside the sprite.
func (d *Device) rasterize(dst *Texture, b *bindings, s render.Sprite, mode render.BlendMode) {
	if s.Max[0] < s.Min[0] {
		s.Min[0], s.Max[0] = s.Max[0], s.Min[0]
		s.UVMin[0], s.UVMax[0] = s.UVMax[0], s.UVMin[0]
	}
	if s.Max[1] < s.Min[1] {
		s.Min[1], s.Max[1] = s.Max[1], s.Min[1]
		s.UVMin[1], s.UVMax[1] = s.UVMax[1], s.UVMin[1]
	}
	w, h := s.Max[0]-s.Min[0], s.Max[1]-s.Min[1]
	if w <= 0 || h <= 0 {
		return
	}

	x0 := max(int(math.Ceil(float64(s.Min[0]-0.5))), 0)
	y0 := max(int(math.Ceil(float64(s.Min[1]-0.5))), 0)
	x1 := min(int(math.Ceil(float64(s.Max[0]-0.5))), dst.width)
	y1 := min(int(math.Ceil(float64(s.Max[1]-0.5))), dst.height)

	for y := y0; y < y1; y++ {
		ty := (float32(y) + 0.5 - s.Min[1]) / h
		v := s.UVMin[1] + ty*(s.UVMax[1]-s.UVMin[1])
		for x := x0; x < x1; x++ {
			tx := (float32(x) + 0.5 - s.Min[0]) / w
			u := s.UVMin[0] + tx*(s.UVMax[0]-s.UVMin[0])

			texel := mgl32.Vec4{1, 1, 1, 1}
			if s.Texture != "" {
				texel = b.Sample(s.Texture, u, v)
			}
			c := mgl32.Vec4{
				texel[0] * s.Color[0],
				texel[1] * s.Color[1],
				texel[2] * s.Color[2],
				texel[3] * s.Color[3],
			}
			c = c.Add(s.Offset.Mul(c[3]))
			dst.blend(x, y, c, mode)
		}
	}
}
