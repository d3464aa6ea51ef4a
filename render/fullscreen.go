// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
)

// FullscreenWGSL is a vs_main entry point that covers the target with one
// triangle derived from @builtin(vertex_index). Full-screen programs append
// it to their fragment source and draw with a nil Mesh.
//
//go:embed shaders/fullscreen.wgsl
var FullscreenWGSL string
