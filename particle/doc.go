// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package particle simulates particles on the GPU.
//
// Per-particle state lives in textures laid out on a Grid: particle i owns
// texel (i mod Width, i / Width). A Pipeline of Stages advances the state
// once per tick, each stage drawing a full-screen pass from its current
// state texture into an output texture. A Display then draws one quad per
// particle, reading state from the active stages at the particle's texel.
//
// # Stages
//
// Stages run in declaration order and swap together after the last one has
// drawn, so stage k reads the current-frame output of every earlier stage
// (statusOut0, statusOut1, ...) and the previous-frame output of later ones.
// Each stage keeps its seed in a target that is never written, which makes
// Reset a pointer swap.
//
// # State formats
//
// State is stored as FLOAT, HALF_FLOAT or byte-packed RGBA, chosen by
// render.SelectFormat. Byte-packed state holds two channels as 16-bit pairs
// scaled to [-scale, scale]; shaders decode it with the helpers appended by
// StageSource and DisplaySource, and CPU kernels with ReadState and
// WriteState.
//
// # Display
//
// The Packer interleaves quad corners into a shared vertex buffer and
// per-particle data, led by aParticleIndex, into an instance buffer.
// Devices without instancing draw each particle separately.
package particle
