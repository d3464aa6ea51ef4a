// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// It is an alias for gpucontext.DeviceProvider. GPU backends (backend/hal)
// are constructed from a DeviceHandle; they never create a device of their own.
type DeviceHandle = gpucontext.DeviceProvider

// Capabilities reports the optional device features fx adapts to.
type Capabilities struct {
	// Instancing reports hardware instanced drawing. Without it the display
	// pass falls back to one draw per instance.
	Instancing bool

	// FloatTexture reports renderable 32-bit float color targets.
	FloatTexture bool

	// HalfFloatTexture reports renderable 16-bit float color targets.
	HalfFloatTexture bool

	// MaxTextureSize is the largest supported texture dimension.
	// Zero means unlimited.
	MaxTextureSize int
}

// DefaultCapabilities returns the feature set guaranteed by WebGPU.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Instancing:       true,
		FloatTexture:     false,
		HalfFloatTexture: true,
		MaxTextureSize:   8192,
	}
}

// Device is the host GPU contract consumed by fx.
//
// All methods are synchronous from the caller's point of view and are called
// from a single goroutine (the host render loop). Draws are submitted without
// waiting for completion.
type Device interface {
	// Capabilities returns the device feature set.
	Capabilities() Capabilities

	// ViewSize returns the size of the host's visible surface in pixels.
	ViewSize() (width, height int)

	// CreateTarget allocates an off-screen color target.
	CreateTarget(desc *TargetDescriptor) (Target, error)

	// CreateTexture uploads a sampled texture from an RGBA image.
	CreateTexture(label string, img *image.RGBA) (Texture, error)

	// CreateBuffer allocates a vertex or index buffer initialized with Data.
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)

	// CompileProgram compiles a shader program and reflects its tables.
	CompileProgram(desc *ProgramDescriptor) (Program, error)

	// Clear fills a target with a color.
	Clear(target Target, color gputypes.Color) error

	// Draw records and submits one draw.
	Draw(cmd *DrawCommand) error

	// Prerender is the host's per-frame hook. Devices reset per-frame
	// counters here.
	Prerender()

	// Destroy releases device-level resources (pipelines, samplers).
	// Resources created by the caller must be destroyed by the caller.
	Destroy()
}

// BufferUsage identifies how a buffer is bound.
type BufferUsage uint8

const (
	// BufferVertex is a vertex or instance attribute buffer.
	BufferVertex BufferUsage = iota

	// BufferIndex is a uint16 index buffer.
	BufferIndex
)

// BufferDescriptor describes a buffer for Device.CreateBuffer.
type BufferDescriptor struct {
	Label string
	Usage BufferUsage
	Data  []byte
}

// Buffer is a GPU vertex or index buffer.
type Buffer interface {
	// Label returns the debug label.
	Label() string

	// Size returns the buffer size in bytes.
	Size() int

	// Bytes returns the current contents. GPU backends return the last
	// data written from the CPU side.
	Bytes() []byte

	// Write replaces the buffer contents starting at offset.
	Write(offset int, data []byte) error

	// Destroy releases the buffer. Safe to call more than once.
	Destroy()
}
