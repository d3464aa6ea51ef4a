// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// PluginName is the dispatch key of particle entities.
const PluginName = "particle"

// Option configures a Particle.
type Option func(*Particle)

// WithFboSize fixes the state grid instead of deriving it from the count.
func WithFboSize(width, height int) Option {
	return func(p *Particle) {
		p.grid = Grid{Width: width, Height: height}
		p.fixedGrid = true
	}
}

// WithFormat requests a state format. The default is FormatAuto.
func WithFormat(f render.Format) Option {
	return func(p *Particle) {
		p.requested = f
	}
}

// WithScale sets the value range [-scale, scale] of byte-packed state.
func WithScale(scale float32) Option {
	return func(p *Particle) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// WithTexture sets the base texture image. The default is a white texel.
func WithTexture(img image.Image) Option {
	return func(p *Particle) {
		p.image = img
	}
}

// WithPosition sets the world offset added to every particle.
func WithPosition(x, y float32) Option {
	return func(p *Particle) {
		p.Position = mgl32.Vec2{x, y}
	}
}

// WithAlpha sets the group alpha.
func WithAlpha(alpha float32) Option {
	return func(p *Particle) {
		p.Alpha = alpha
	}
}

// WithColor sets the color multiplier and offset.
func WithColor(multiplier, offset mgl32.Vec4) Option {
	return func(p *Particle) {
		p.ColorMultiplier = multiplier
		p.ColorOffset = offset
	}
}

// WithSize sets the sprite size in pixels.
func WithSize(size float32) Option {
	return func(p *Particle) {
		p.Size = size
	}
}

// Particle is a group of GPU-simulated particles: a status pipeline that
// evolves per-particle state textures and a display pass that draws them.
//
// Typical frame:
//
//	p.Update(step)      // run every stage, then swap
//	p.Render(target)    // draw the particles
type Particle struct {
	// Position is added to every particle position.
	Position mgl32.Vec2

	// Alpha scales the group opacity.
	Alpha float32

	// ColorMultiplier and ColorOffset tint the sampled texture.
	ColorMultiplier mgl32.Vec4
	ColorOffset     mgl32.Vec4

	// Size is the sprite size in pixels.
	Size float32

	id        uuid.UUID
	count     int
	grid      Grid
	fixedGrid bool
	requested render.Format
	scale     float32
	image     image.Image

	display  *Display
	pipeline *Pipeline

	dev     render.Device
	pool    *render.Pool
	cache   *Cache
	texture render.Texture

	ticks   uint64
	elapsed float32
}

// New creates a particle group of count particles. GPU resources are
// allocated by Init.
func New(count int, display *Display, stages []*Stage, opts ...Option) (*Particle, error) {
	if display == nil {
		return nil, fmt.Errorf("particle: nil display")
	}
	p := &Particle{
		Alpha:           1,
		ColorMultiplier: mgl32.Vec4{1, 1, 1, 1},
		Size:            1,
		id:              uuid.New(),
		count:           count,
		requested:       render.FormatAuto,
		scale:           1,
		display:         display,
		pipeline:        NewPipeline(stages...),
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.fixedGrid {
		p.grid = GridFor(count)
	}
	if err := p.grid.Validate(count); err != nil {
		return nil, err
	}
	return p, nil
}

// PluginName returns the dispatch key.
func (p *Particle) PluginName() string { return PluginName }

// ID returns the entity identifier.
func (p *Particle) ID() uuid.UUID { return p.id }

// Count returns the number of particles.
func (p *Particle) Count() int { return p.count }

// Grid returns the state texture grid.
func (p *Particle) Grid() Grid { return p.grid }

// Pipeline returns the status pipeline.
func (p *Particle) Pipeline() *Pipeline { return p.pipeline }

// Display returns the display pass.
func (p *Particle) Display() *Display { return p.display }

// Cache returns the program cache, or nil before Init.
func (p *Particle) Cache() *Cache { return p.cache }

// Texture returns the base texture, or nil before Init.
func (p *Particle) Texture() render.Texture { return p.texture }

// Ticks returns the number of Update calls since Init or Reset.
func (p *Particle) Ticks() uint64 { return p.ticks }

// Initialized reports whether Init has run.
func (p *Particle) Initialized() bool { return p.dev != nil }

// Format returns the resolved state format, or the requested format before
// Init.
func (p *Particle) Format() render.Format {
	if p.dev == nil {
		return p.requested
	}
	return p.pipeline.Format()
}

// Init allocates the state targets, compiles programs and packs buffers.
// Calling Init again is a no-op.
func (p *Particle) Init(dev render.Device) error {
	if p.dev != nil {
		return nil
	}
	p.pool = render.NewPool(dev)
	p.pool.SetScale(p.scale)
	p.cache = NewCache(dev)

	img := p.image
	if img == nil {
		img = render.SolidImage(1, 1, color.White)
	}
	tex, err := dev.CreateTexture(p.label("texture"), render.ImageToRGBA(img, 0, 0))
	if err != nil {
		p.release()
		return fmt.Errorf("particle: base texture: %w", err)
	}
	p.texture = tex

	if err := p.pipeline.Init(p.pool, p.cache, p.grid, p.requested); err != nil {
		p.release()
		return err
	}
	if err := p.display.Init(dev, p.cache, p.grid, p.count); err != nil {
		p.release()
		return err
	}
	p.dev = dev
	logger.Get().Info("particle: initialized",
		"id", p.id, "count", p.count, "grid", p.grid,
		"stages", len(p.pipeline.Stages()), "format", p.Format())
	return nil
}

func (p *Particle) label(s string) string {
	return fmt.Sprintf("particle_%s_%s", p.id.String()[:8], s)
}

// frame returns the frame input for a tick of length step.
func (p *Particle) frame(step float32) Frame {
	w, h := 0, 0
	if p.dev != nil {
		w, h = p.dev.ViewSize()
	}
	return Frame{
		Index:      p.ticks,
		Count:      p.count,
		Grid:       p.grid,
		ViewWidth:  w,
		ViewHeight: h,
		Time:       p.elapsed + step,
		Step:       step,
	}
}

// Update advances the simulation by step: every stage updates in
// declaration order, then every stage swaps.
func (p *Particle) Update(step float32) error {
	if p.dev == nil {
		return ErrNotInitialized
	}
	if err := p.pipeline.Tick(p.dev, p.frame(step)); err != nil {
		return err
	}
	p.elapsed += step
	p.ticks++
	return nil
}

// Render draws the particles into target using the current stage outputs.
func (p *Particle) Render(target render.Target) error {
	if p.dev == nil {
		return ErrNotInitialized
	}
	if err := p.display.Update(p); err != nil {
		return err
	}
	return p.display.Render(p.dev, target)
}

// SetActive selects the stage outputs bound as stateTex0, stateTex1, ...
func (p *Particle) SetActive(indices ...int) error {
	return p.pipeline.SetActive(indices...)
}

// Reset rewinds every stage to its seed and the clock to zero.
func (p *Particle) Reset() {
	p.pipeline.Reset()
	p.ticks = 0
	p.elapsed = 0
}

// SetCount changes the number of particles. The instance buffer is always
// rebuilt. When the grid changes the stages are recreated, so stage seeds
// must already match the new grid; a mismatch is rejected before anything
// is released. If recreating resources fails anyway, the particle is left
// uninitialized and must be Init again.
func (p *Particle) SetCount(count int) error {
	grid := p.grid
	if !p.fixedGrid {
		grid = GridFor(count)
	}
	if err := grid.Validate(count); err != nil {
		return err
	}
	if p.dev == nil {
		p.count, p.grid = count, grid
		return nil
	}
	if grid != p.grid {
		if err := p.pipeline.CheckSeeds(grid); err != nil {
			return err
		}
		p.pipeline.Destroy()
		if err := p.pipeline.Init(p.pool, p.cache, grid, p.requested); err != nil {
			p.Destroy()
			return err
		}
		p.ticks, p.elapsed = 0, 0
	}
	if err := p.display.Rebuild(p.dev, grid, count); err != nil {
		p.Destroy()
		return err
	}
	p.count, p.grid = count, grid
	return nil
}

// Destroy releases every target, buffer, texture and program.
func (p *Particle) Destroy() {
	p.release()
	p.dev = nil
}

func (p *Particle) release() {
	p.pipeline.Destroy()
	p.display.Destroy()
	if p.texture != nil {
		p.texture.Destroy()
		p.texture = nil
	}
	if p.cache != nil {
		p.cache.Destroy()
		p.cache = nil
	}
	if p.pool != nil {
		p.pool.Destroy()
		p.pool = nil
	}
}
