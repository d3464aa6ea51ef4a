// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the contract between fx effects and the host GPU.
//
// fx RECEIVES a device from the host application, it does NOT create one.
// Everything an effect needs from the GPU is expressed through the Device
// interface: render targets, textures, vertex buffers, compiled programs,
// clears and draws.
//
// # Core Types
//
//   - Device: host-provided GPU access (backend/gpu, backend/software)
//   - Target: off-screen color buffer with a fixed Format
//   - Pool: allocates targets, choosing the best Format the device supports
//   - Program: compiled WGSL with a typed uniform table (SetUniform)
//   - DrawCommand: one full-screen or instanced-quad draw
//
// # Format Selection
//
// Under FormatAuto the Pool prefers FormatFloat when the device supports
// float targets and seed data is supplied, then FormatHalfFloat, and finally
// the byte-packed FormatRGBA. Requesting FormatFloat or FormatHalfFloat
// explicitly on a device that lacks it fails with ErrFormatUnsupported;
// only FormatAuto downgrades, with a warning.
//
// # Shader Contract
//
// Programs are written in WGSL. Reflect extracts the vertex attribute table
// (by @location), the uniform table (members of the single var<uniform>
// struct) and the texture table (texture_2d globals) so callers can address
// everything by the reserved names: aVertexPosition, aTextureCoord,
// aParticleIndex, uSampler, uNormalSampler, uViewSize and so on.
//
// # Usage
//
//	dev := software.New(software.WithViewSize(800, 600))
//	pool := render.NewPool(dev)
//	state, err := pool.Create("positions", 32, 32, render.FormatAuto, seed)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(state)
package render
