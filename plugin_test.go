package fx

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fx/backend/software"
	"github.com/gogpu/fx/render"
)

type testObject struct{ plugin string }

func (o testObject) PluginName() string { return o.plugin }

type testRenderer struct {
	dev        render.Device
	rendered   []Object
	prerenders int
	destroyed  bool
}

func (r *testRenderer) Render(obj Object, _ render.Target) error {
	r.rendered = append(r.rendered, obj)
	return nil
}

func (r *testRenderer) Prerender() { r.prerenders++ }
func (r *testRenderer) Destroy()   { r.destroyed = true }

func registerTestPlugin(t *testing.T, name string) *int {
	t.Helper()
	created := new(int)
	RegisterPlugin(name, func(dev render.Device) ObjectRenderer {
		*created++
		return &testRenderer{dev: dev}
	})
	t.Cleanup(func() { UnregisterPlugin(name) })
	return created
}

func TestRegisterPlugin(t *testing.T) {
	registerTestPlugin(t, "test-b")
	registerTestPlugin(t, "test-a")

	if !HasPlugin("test-a") {
		t.Error("HasPlugin(test-a) = false, want true")
	}
	names := Plugins()
	ia, ib := slices.Index(names, "test-a"), slices.Index(names, "test-b")
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("Plugins() = %v, want sorted with test-a and test-b", names)
	}

	UnregisterPlugin("test-a")
	if HasPlugin("test-a") {
		t.Error("HasPlugin(test-a) after UnregisterPlugin = true, want false")
	}
}

func TestDispatcherRender(t *testing.T) {
	created := registerTestPlugin(t, "test")
	dev := software.New()
	d := NewDispatcher(dev)

	for range 3 {
		if err := d.Render(testObject{"test"}, nil); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
	}
	if *created != 1 {
		t.Errorf("factory called %d times, want 1", *created)
	}
	r, ok := d.Renderer("test").(*testRenderer)
	if !ok {
		t.Fatalf("Renderer(test) = %T, want *testRenderer", d.Renderer("test"))
	}
	if len(r.rendered) != 3 {
		t.Errorf("rendered %d objects, want 3", len(r.rendered))
	}
	if r.dev != dev {
		t.Error("renderer was not created for the dispatcher's device")
	}

	d.Prerender()
	if r.prerenders != 1 {
		t.Errorf("Prerender() reached renderer %d times, want 1", r.prerenders)
	}

	d.Destroy()
	if !r.destroyed {
		t.Error("Destroy() did not destroy the renderer")
	}
	if d.Renderer("test") != nil {
		t.Error("Renderer(test) after Destroy is not nil")
	}
}

func TestDispatcherErrors(t *testing.T) {
	d := NewDispatcher(software.New())
	if err := d.Render(nil, nil); !errors.Is(err, ErrNilObject) {
		t.Errorf("Render(nil) error = %v, want ErrNilObject", err)
	}
	if err := d.Render(testObject{"missing"}, nil); !errors.Is(err, ErrUnknownPlugin) {
		t.Errorf("Render(missing) error = %v, want ErrUnknownPlugin", err)
	}
}

func TestDispatcherPrerenderResetsDevice(t *testing.T) {
	dev := software.New()
	d := NewDispatcher(dev)
	tgt, err := dev.CreateTarget(&render.TargetDescriptor{Label: "t", Width: 1, Height: 1, Format: render.FormatRGBA})
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Clear(tgt, gputypes.Color{}); err != nil {
		t.Fatal(err)
	}
	d.Prerender()
	if got := dev.Stats().Clears; got != 0 {
		t.Errorf("Stats().Clears after Prerender = %d, want 0", got)
	}
}
