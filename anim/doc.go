// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package anim schedules frame-based texture animation.
//
// A Timeline holds an ordered list of frames, each shown for its own
// duration, and maps a play time to the current frame:
//
//	frames, err := anim.SliceSheet(sheet, 4, 1, 100)
//	...
//	tl, err := anim.New(frames, anim.WithLoop(true))
//	tl.OnLoop(func(cycle int) { ... })
//	idx := tl.UpdateByTime(250) // 2
//
// Times are unitless; use the unit the frame durations are given in.
//
// # Frame Skipping
//
// With frame skipping (the default) a large time step jumps straight to the
// frame containing the new time, wrapping loops as needed. Without it the
// timeline advances at most one frame per update, so every frame is shown
// at least once. In that mode the play time is not snapped to the frame
// boundary after an advance.
package anim
