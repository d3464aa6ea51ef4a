// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import "errors"

var (
	// ErrNotInitialized is returned by operations that need GPU resources
	// before Init has run.
	ErrNotInitialized = errors.New("particle: not initialized")

	// ErrStageIndex is returned when an active-subset index is out of range.
	ErrStageIndex = errors.New("particle: stage index out of range")

	// ErrAttributeData is returned when attribute data does not match the
	// declared component and instance counts.
	ErrAttributeData = errors.New("particle: attribute data size mismatch")

	// ErrCount is returned for a negative particle count or one that does
	// not fit the grid.
	ErrCount = errors.New("particle: invalid particle count")
)
