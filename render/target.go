// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Format selects the pixel encoding of a render target.
//
// A target's format is fixed for its lifetime. Changing precision means
// destroying the target and creating a new one.
type Format uint8

const (
	// FormatAuto lets the Pool pick the best encoding the device supports.
	// It is a request value only; created targets never report FormatAuto.
	FormatAuto Format = iota

	// FormatRGBA is the universal byte-packed fallback. Each texel stores two
	// logical channels as 16-bit fixed-point (hi, lo) byte pairs.
	FormatRGBA

	// FormatHalfFloat stores four IEEE-754 half-precision channels.
	FormatHalfFloat

	// FormatFloat stores four IEEE-754 single-precision channels.
	FormatFloat
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "AUTO"
	case FormatRGBA:
		return "RGBA"
	case FormatHalfFloat:
		return "HALF_FLOAT"
	case FormatFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// TextureFormat maps the format to its WebGPU texture format.
// FormatAuto maps to TextureFormatUndefined.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatRGBA:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatHalfFloat:
		return gputypes.TextureFormatRGBA16Float
	case FormatFloat:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatUndefined
	}
}

// BytesPerTexel returns the storage size of one texel.
func (f Format) BytesPerTexel() int {
	switch f {
	case FormatHalfFloat:
		return 8
	case FormatFloat:
		return 16
	default:
		return 4
	}
}

// Texture is a GPU-addressable 2D image that can be bound to a texture unit.
type Texture interface {
	// Label returns the debug label given at creation.
	Label() string

	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Destroy releases the backing storage. Safe to call more than once.
	Destroy()
}

// Target is an off-screen color buffer that draws can write into and
// later draws can sample.
type Target interface {
	Texture

	// Format returns the resolved pixel encoding (never FormatAuto).
	Format() Format
}

// TargetDescriptor describes a render target for Device.CreateTarget.
type TargetDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the target dimensions in pixels.
	Width  int
	Height int

	// Format is the resolved encoding. FormatAuto is rejected; resolve it
	// with SelectFormat first (the Pool does this).
	Format Format

	// Seed holds optional initial data: Width*Height*4 logical channel
	// values, row-major, matching the particle-index grid.
	Seed []float32

	// Scale is the logical value range [-Scale, Scale] that byte-packed
	// targets can represent. Values <= 0 mean 1.
	Scale float32
}

// Validate checks dimensions, format and seed length.
func (d *TargetDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, d.Width, d.Height)
	}
	if d.Format == FormatAuto || d.Format > FormatFloat {
		return fmt.Errorf("render: target %q: unresolved format %s", d.Label, d.Format)
	}
	if d.Seed != nil && len(d.Seed) != d.Width*d.Height*4 {
		return fmt.Errorf("%w: got %d values, want %d", ErrSeedSize, len(d.Seed), d.Width*d.Height*4)
	}
	return nil
}

// EffectiveScale returns Scale, defaulting to 1.
func (d *TargetDescriptor) EffectiveScale() float32 {
	if d.Scale <= 0 {
		return 1
	}
	return d.Scale
}
