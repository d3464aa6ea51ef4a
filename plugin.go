package fx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fx/internal/logger"
	"github.com/gogpu/fx/render"
)

// Plugin errors.
var (
	// ErrUnknownPlugin is returned when no renderer is registered for an
	// object's plugin name.
	ErrUnknownPlugin = errors.New("fx: unknown plugin")

	// ErrNilObject is returned when Render is given a nil object.
	ErrNilObject = errors.New("fx: nil object")
)

// Object is a renderable entity. The plugin name selects the renderer.
type Object interface {
	PluginName() string
}

// ObjectRenderer draws every object of one plugin on one device.
type ObjectRenderer interface {
	// Render draws obj into target. obj always carries the renderer's
	// plugin name.
	Render(obj Object, target render.Target) error

	// Prerender is called once per host frame before any Render.
	Prerender()

	// Destroy releases renderer-owned resources.
	Destroy()
}

// PluginFactory creates the renderer of a plugin for a device.
type PluginFactory func(dev render.Device) ObjectRenderer

var plugins = gpucontext.NewRegistry[PluginFactory]()

// RegisterPlugin registers the renderer factory for a plugin name.
// This is typically called from init() functions in effect packages.
// A factory registered under an existing name replaces it.
func RegisterPlugin(name string, factory PluginFactory) {
	plugins.Register(name, func() PluginFactory { return factory })
}

// UnregisterPlugin removes a plugin. This is useful for testing.
func UnregisterPlugin(name string) {
	plugins.Unregister(name)
}

// HasPlugin reports whether a plugin is registered under name.
func HasPlugin(name string) bool {
	return plugins.Has(name)
}

// Plugins returns the registered plugin names, sorted.
func Plugins() []string {
	names := plugins.Available()
	slices.Sort(names)
	return names
}

// Dispatcher routes objects to plugin renderers on one device. Renderers
// are created on first use and live until Destroy.
//
// Dispatcher is not safe for concurrent use.
type Dispatcher struct {
	dev       render.Device
	renderers map[string]ObjectRenderer
}

// NewDispatcher returns a dispatcher drawing on dev.
func NewDispatcher(dev render.Device) *Dispatcher {
	return &Dispatcher{dev: dev, renderers: make(map[string]ObjectRenderer)}
}

// Device returns the device objects are drawn on.
func (d *Dispatcher) Device() render.Device { return d.dev }

// Render draws obj into target with the renderer of its plugin.
func (d *Dispatcher) Render(obj Object, target render.Target) error {
	if obj == nil {
		return ErrNilObject
	}
	r, err := d.renderer(obj.PluginName())
	if err != nil {
		return err
	}
	return r.Render(obj, target)
}

// renderer returns the renderer for name, creating it on first use.
func (d *Dispatcher) renderer(name string) (ObjectRenderer, error) {
	if r, ok := d.renderers[name]; ok {
		return r, nil
	}
	factory := plugins.Get(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	r := factory(d.dev)
	d.renderers[name] = r
	logger.Get().Debug("fx: plugin renderer created", "plugin", name)
	return r, nil
}

// Renderer returns the renderer created for name, or nil.
func (d *Dispatcher) Renderer(name string) ObjectRenderer {
	return d.renderers[name]
}

// Prerender starts a host frame: the device resets its per-frame state and
// every created renderer runs its Prerender hook.
func (d *Dispatcher) Prerender() {
	d.dev.Prerender()
	for _, r := range d.renderers {
		r.Prerender()
	}
}

// Destroy releases every renderer. The device is left to its owner.
func (d *Dispatcher) Destroy() {
	for name, r := range d.renderers {
		r.Destroy()
		delete(d.renderers, name)
	}
}
