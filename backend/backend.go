package backend

import (
	"errors"

	"github.com/gogpu/fx/render"
)

// Backend name constants.
const (
	// BackendGPU is the name of the GPU backend over gogpu/wgpu/hal.
	BackendGPU = "gpu"
	// BackendSoftware is the name of the CPU reference backend.
	BackendSoftware = "software"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot be created for the given handle.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoHandle is returned by GPU factories given a nil device handle.
	ErrNoHandle = errors.New("backend: nil device handle")
)

// Factory creates a device. GPU factories use handle to reach the host's
// device; CPU factories ignore it.
type Factory func(handle render.DeviceHandle) (render.Device, error)
