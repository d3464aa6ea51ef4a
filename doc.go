// Package fx provides GPU particle simulation and 2D lighting for Go.
//
// # Overview
//
// fx keeps per-particle state in float textures and advances it with
// full-screen shader passes, so the simulation never leaves the GPU. A
// display pass then draws one textured quad per particle, reading each
// particle's state from the simulation textures. A lighting pass composes
// ambient, point and directional lights over a normal map.
//
// # Quick Start
//
//	import (
//	    "github.com/go-gl/mathgl/mgl32"
//	    "github.com/gogpu/fx"
//	    "github.com/gogpu/fx/backend"
//	    _ "github.com/gogpu/fx/backend/software"
//	    "github.com/gogpu/fx/particle"
//	)
//
//	dev, _ := backend.Open(backend.BackendSoftware, nil)
//	p, _ := particle.NewDrift(1024, particle.DriftConfig{Gravity: mgl32.Vec2{0, 98}})
//	d := fx.NewDispatcher(dev)
//
//	for each frame {
//	    d.Prerender()
//	    p.Update(1.0 / 60)
//	    d.Render(p, screen)
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: plugin registry and Dispatcher, logging
//   - render: host contract (Device, Target, Program), target pool, uniforms
//   - backend: software (CPU reference) and gpu (gogpu/wgpu hal) devices
//   - particle, light, anim: the effects
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// State textures are addressed by texel: particle i lives at
// (i mod width, i / width) of the state grid.
package fx

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
