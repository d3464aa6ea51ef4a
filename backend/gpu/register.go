// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/fx/backend"
	"github.com/gogpu/fx/render"
)

// init registers the GPU backend on package import.
func init() {
	backend.Register(backend.BackendGPU, func(handle render.DeviceHandle) (render.Device, error) {
		w, h := 0, 0
		if sized, ok := handle.(interface{ Size() (int, int) }); ok {
			w, h = sized.Size()
		}
		return New(handle, WithViewSize(w, h))
	})
}
