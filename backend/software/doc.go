// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides a CPU implementation of render.Device.
//
// Programs are reflected from their WGSL source exactly as on the GPU, so
// uniform and attribute names are checked the same way, but execution uses
// the render.CPUProgram kernels attached to each ProgramDescriptor. Targets
// quantize every write to their format (float32, IEEE half, or 8-bit), which
// makes the device suitable for precision and fallback tests.
//
// The device counts draws and clears between Prerender calls (see Stats).
package software
