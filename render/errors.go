// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrFormatUnsupported is returned when FormatFloat or FormatHalfFloat is
	// requested explicitly on a device without the matching capability.
	ErrFormatUnsupported = errors.New("render: target format not supported by device")

	// ErrInvalidSize is returned for non-positive or oversized dimensions.
	ErrInvalidSize = errors.New("render: invalid size")

	// ErrSeedSize is returned when seed data does not hold width*height*4 values.
	ErrSeedSize = errors.New("render: seed data length mismatch")

	// ErrDestroyed is returned when a destroyed resource is used.
	ErrDestroyed = errors.New("render: resource destroyed")

	// ErrFeedbackLoop is returned when a draw samples the target it writes.
	ErrFeedbackLoop = errors.New("render: draw target is also bound as input texture")

	// ErrUnknownUniform is returned by SetUniform for names the program lacks.
	ErrUnknownUniform = errors.New("render: unknown uniform")

	// ErrUniformKind is returned by SetUniform when the value kind does not
	// match the declared uniform type.
	ErrUniformKind = errors.New("render: uniform kind mismatch")

	// ErrNoKernel is returned by CPU devices for programs without a CPUProgram.
	ErrNoKernel = errors.New("render: program has no CPU kernel")

	// ErrReflect is returned when WGSL source cannot be parsed or lowered.
	ErrReflect = errors.New("render: shader reflection failed")
)
