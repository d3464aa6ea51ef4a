// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package light

import (
	"errors"
	"fmt"

	"github.com/gogpu/fx/render"
)

var (
	// ErrMissingUniform is returned when a light's program does not declare a
	// uniform the light is synced against. It wraps render.ErrUnknownUniform.
	ErrMissingUniform = fmt.Errorf("light: missing uniform: %w", render.ErrUnknownUniform)

	// ErrNoLights is returned when a compositor renders without lights.
	ErrNoLights = errors.New("light: no lights")

	// ErrNotInitialized is returned by Render before Init.
	ErrNotInitialized = errors.New("light: compositor not initialized")
)
