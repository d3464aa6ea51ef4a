// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/fx/internal/logger"
)

// SelectFormat resolves a requested format against device capabilities.
//
// Explicit requests are honored or rejected with ErrFormatUnsupported.
// FormatAuto picks float when the device supports it and seed data is
// present, otherwise half-float when supported, otherwise byte-packed RGBA.
func SelectFormat(caps Capabilities, requested Format, hasSeed bool) (Format, error) {
	switch requested {
	case FormatRGBA:
		return FormatRGBA, nil
	case FormatFloat:
		if !caps.FloatTexture {
			return 0, fmt.Errorf("%w: %s", ErrFormatUnsupported, requested)
		}
		return FormatFloat, nil
	case FormatHalfFloat:
		if !caps.HalfFloatTexture {
			return 0, fmt.Errorf("%w: %s", ErrFormatUnsupported, requested)
		}
		return FormatHalfFloat, nil
	case FormatAuto:
	default:
		return 0, fmt.Errorf("%w: %s", ErrFormatUnsupported, requested)
	}

	switch {
	case caps.FloatTexture && hasSeed:
		return FormatFloat, nil
	case caps.HalfFloatTexture:
		return FormatHalfFloat, nil
	}
	logger.Get().Warn("render: no usable float target format, using byte-packed RGBA")
	return FormatRGBA, nil
}

// Pool allocates and owns render targets on one device.
//
// Targets created by a Pool are destroyed by Release, Resize or Destroy.
// Pool is not safe for concurrent use.
type Pool struct {
	dev     Device
	scale   float32
	targets map[Target]*TargetDescriptor
}

// NewPool creates an empty pool on dev.
func NewPool(dev Device) *Pool {
	return &Pool{
		dev:     dev,
		scale:   1,
		targets: make(map[Target]*TargetDescriptor),
	}
}

// SetScale sets the logical value range used by byte-packed targets created
// afterwards. Values <= 0 reset it to 1.
func (p *Pool) SetScale(scale float32) {
	if scale <= 0 {
		scale = 1
	}
	p.scale = scale
}

// Scale returns the pool's byte-packing scale.
func (p *Pool) Scale() float32 {
	return p.scale
}

// Device returns the device the pool allocates on.
func (p *Pool) Device() Device {
	return p.dev
}

// Create allocates a width x height target.
//
// format may be FormatAuto. seed, if non-nil, must hold width*height*4
// values and is uploaded as the target's initial contents; otherwise the
// target starts at logical zero. Byte-packed targets encode zero as the
// midpoint of each pair, so they are uploaded an explicit zero seed.
func (p *Pool) Create(label string, width, height int, format Format, seed []float32) (Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	caps := p.dev.Capabilities()
	if caps.MaxTextureSize > 0 && (width > caps.MaxTextureSize || height > caps.MaxTextureSize) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidSize, width, height, caps.MaxTextureSize)
	}

	resolved, err := SelectFormat(caps, format, seed != nil)
	if err != nil {
		return nil, fmt.Errorf("render: target %q: %w", label, err)
	}
	if resolved == FormatRGBA && seed == nil {
		seed = make([]float32, width*height*4)
	}

	desc := &TargetDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: resolved,
		Seed:   seed,
		Scale:  p.scale,
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	t, err := p.dev.CreateTarget(desc)
	if err != nil {
		return nil, fmt.Errorf("render: create target %q: %w", label, err)
	}
	p.targets[t] = desc

	logger.Get().Debug("render: target created",
		"label", label, "width", width, "height", height,
		"requested", format.String(), "format", resolved.String())
	return t, nil
}

// Resize destroys t and allocates a replacement of the new size with the
// same format. Seed data is not carried over; the new target starts at logical zero.
func (p *Pool) Resize(t Target, width, height int) (Target, error) {
	desc, ok := p.targets[t]
	if !ok {
		return nil, fmt.Errorf("render: resize %q: %w", t.Label(), ErrDestroyed)
	}
	p.Release(t)
	return p.Create(desc.Label, width, height, desc.Format, nil)
}

// Release destroys a target owned by the pool. Unknown targets are ignored.
func (p *Pool) Release(t Target) {
	if t == nil {
		return
	}
	if _, ok := p.targets[t]; !ok {
		return
	}
	delete(p.targets, t)
	t.Destroy()
}

// Len returns the number of live targets.
func (p *Pool) Len() int {
	return len(p.targets)
}

// Owns reports whether t was created by the pool and is still alive.
func (p *Pool) Owns(t Target) bool {
	_, ok := p.targets[t]
	return ok
}

// Destroy releases every live target.
func (p *Pool) Destroy() {
	for t := range p.targets {
		t.Destroy()
	}
	clear(p.targets)
}
