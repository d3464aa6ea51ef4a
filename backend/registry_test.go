package backend_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/fx/backend"
	_ "github.com/gogpu/fx/backend/gpu"
	"github.com/gogpu/fx/backend/software"
	"github.com/gogpu/fx/render"
)

func TestAvailablePriority(t *testing.T) {
	got := backend.Available()
	want := []string{backend.BackendGPU, backend.BackendSoftware}
	if !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
	if got := backend.Best(); got != backend.BackendGPU {
		t.Errorf("Best() = %q, want %q", got, backend.BackendGPU)
	}
}

func TestOpen(t *testing.T) {
	dev, err := backend.Open(backend.BackendSoftware, nil)
	if err != nil {
		t.Fatalf("Open(software) error = %v", err)
	}
	if _, ok := dev.(*software.Device); !ok {
		t.Errorf("Open(software) = %T, want *software.Device", dev)
	}

	if _, err := backend.Open("vulkan-direct", nil); !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("Open(unknown) error = %v, want ErrBackendNotAvailable", err)
	}
	if _, err := backend.Open(backend.BackendGPU, nil); !errors.Is(err, backend.ErrNoHandle) {
		t.Errorf("Open(gpu, nil) error = %v, want ErrNoHandle", err)
	}
}

func TestOpenDefaultFallsBack(t *testing.T) {
	dev, err := backend.OpenDefault(nil)
	if err != nil {
		t.Fatalf("OpenDefault(nil) error = %v", err)
	}
	if _, ok := dev.(*software.Device); !ok {
		t.Errorf("OpenDefault(nil) = %T, want the software fallback", dev)
	}
}

func TestRegisterUnregister(t *testing.T) {
	const name = "test-backend"
	backend.Register(name, func(render.DeviceHandle) (render.Device, error) {
		return software.New(software.WithViewSize(4, 4)), nil
	})
	if !backend.IsRegistered(name) {
		t.Fatalf("IsRegistered(%q) = false after Register", name)
	}
	// Backends without a priority sort after the prioritized ones.
	if got := backend.Available(); got[len(got)-1] != name {
		t.Errorf("Available() = %v, want %q last", got, name)
	}
	dev, err := backend.Open(name, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := dev.ViewSize(); w != 4 || h != 4 {
		t.Errorf("ViewSize() = %dx%d, want 4x4", w, h)
	}
	backend.Unregister(name)
	if backend.IsRegistered(name) {
		t.Errorf("IsRegistered(%q) = true after Unregister", name)
	}
}
