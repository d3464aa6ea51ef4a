package backend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// Priority order for backend selection (first available wins).
// GPU > Software (software is the fallback).
var (
	backendPriority = []string{BackendGPU, BackendSoftware}
	backends        = gpucontext.NewRegistry[Factory](gpucontext.WithPriority(backendPriority...))
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	backends.Register(name, func() Factory { return factory })
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the registered backend names in priority order.
// Backends without a priority follow in name order.
func Available() []string {
	names := backends.Available()
	rank := func(name string) int {
		if i := slices.Index(backendPriority, name); i >= 0 {
			return i
		}
		return len(backendPriority)
	}
	slices.SortFunc(names, func(a, b string) int {
		if d := rank(a) - rank(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return names
}

// Best returns the name of the highest-priority registered backend.
func Best() string {
	return backends.BestName()
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return backends.Has(name)
}

// Open creates a device from the named backend.
func Open(name string, handle render.DeviceHandle) (render.Device, error) {
	factory := backends.Get(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	dev, err := factory(handle)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", name, err)
	}
	logger.Get().Info("backend: device opened", "backend", name)
	return dev, nil
}

// OpenDefault opens the first backend in priority order that can be created
// for handle.
func OpenDefault(handle render.DeviceHandle) (render.Device, error) {
	for _, name := range Available() {
		dev, err := Open(name, handle)
		if err == nil {
			return dev, nil
		}
		logger.Get().Debug("backend: skipping", "backend", name, "err", err)
	}
	return nil, ErrBackendNotAvailable
}
