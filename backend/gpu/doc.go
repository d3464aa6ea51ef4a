// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements render.Device on gogpu/wgpu/hal.
//
// The device is shared with the host: New receives a render.DeviceHandle
// and extracts the hal.Device and hal.Queue from it, either through the
// HalDevice()/HalQueue() accessors gogpu exposes or directly from
// Device()/Queue(). fx never creates a GPU device of its own.
//
// Every Draw and Clear records one command encoder with one render pass and
// submits it without waiting. Transient bind groups and command buffers are
// released at the next Prerender. Render pipelines are cached per program,
// blend mode, target format and vertex layout.
package gpu
