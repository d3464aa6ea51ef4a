// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Grid maps particle indices to texels of the state textures. Particle i
// lives at column i%Width, row i/Width.
type Grid struct {
	Width  int
	Height int
}

// GridFor returns the smallest near-square grid holding count particles.
func GridFor(count int) Grid {
	if count <= 0 {
		return Grid{Width: 1, Height: 1}
	}
	w := int(math32.Ceil(math32.Sqrt(float32(count))))
	for w*w < count {
		w++
	}
	h := (count + w - 1) / w
	return Grid{Width: w, Height: h}
}

// Cap returns the number of texels in the grid.
func (g Grid) Cap() int { return g.Width * g.Height }

// Cell returns the texel holding particle i.
func (g Grid) Cell(i int) (col, row int) {
	return i % g.Width, i / g.Width
}

// Index returns the particle stored at texel (col, row).
func (g Grid) Index(col, row int) int {
	return col + row*g.Width
}

// Validate checks that count particles fit.
func (g Grid) Validate(count int) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrCount, g.Width, g.Height)
	}
	if count < 0 || count > g.Cap() {
		return fmt.Errorf("%w: %d particles in %dx%d grid", ErrCount, count, g.Width, g.Height)
	}
	return nil
}

// String returns "WxH".
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
