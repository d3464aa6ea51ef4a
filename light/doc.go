// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package light composes normal-mapped 2D lighting.
//
// A Compositor samples a diffuse texture and a normal map at each
// destination pixel and draws one full-screen pass per Light. Ambient,
// point and directional lights each compile their own program; lights of
// the same kind share it. Lights without an ambient term blend additively,
// lights that bake one in blend NORMAL.
//
// Light positions are in destination pixels. Heights and the distance D fed
// to the falloff curve 1/(c0 + c1*D + c2*D^2) are in units of the view
// height.
package light
