// Package backend provides a pluggable device backend registry.
//
// Backends register a Factory from an init function and are opened by name
// or by priority. Importing a backend package is enough to register it:
//
//	import (
//		_ "github.com/gogpu/fx/backend/gpu"
//		_ "github.com/gogpu/fx/backend/software"
//	)
//
// # Backend Selection
//
// Use Open to request a specific backend, or OpenDefault to get the best
// backend that can be created for the given host handle:
//
//	dev, err := backend.OpenDefault(handle)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Destroy()
//
// The GPU backend needs a non-nil render.DeviceHandle. With a nil handle
// OpenDefault falls through to the software backend.
//
// # Available Backends
//
// - "gpu": GPU device over gogpu/wgpu/hal, shared with the host
// - "software": CPU reference device (always available, headless)
package backend
