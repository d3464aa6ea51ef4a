// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import "errors"

var (
	// ErrNoFrames is returned when a timeline is given an empty frame list.
	ErrNoFrames = errors.New("anim: no frames")

	// ErrFrameDuration is returned when a frame lasts zero or negative time.
	ErrFrameDuration = errors.New("anim: frame duration must be positive")

	// ErrSheetGrid is returned when a sprite sheet cannot be cut into the
	// requested grid.
	ErrSheetGrid = errors.New("anim: invalid sheet grid")
)
