// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package light

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gogpu/fx/render"
)

// Uniforms synced by SyncShader.
const (
	UniformSampler       = "uSampler"
	UniformNormalSampler = "uNormalSampler"
	UniformViewSize      = "uViewSize"
	UniformLightColor    = "uLightColor"
	UniformLightFalloff  = "uLightFalloff"
	UniformAmbientColor  = "uAmbientColor"
	UniformLightPosition = "uLightPosition"
	UniformLightRadius   = "uLightRadius"
	UniformDirection     = "uLightDirection"
)

// Defaults.
const (
	DefaultHeight     = 0.075
	DefaultBrightness = 1
)

// DefaultFalloff is the attenuation curve of new lights.
var DefaultFalloff = mgl32.Vec3{0.75, 3, 20}

// Kind selects the light model.
type Kind uint8

const (
	// KindAmbient lights every pixel evenly.
	KindAmbient Kind = iota

	// KindPoint radiates from Position with distance falloff.
	KindPoint

	// KindDirectional shines from Position toward Target with no falloff.
	KindDirectional
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAmbient:
		return "ambient"
	case KindPoint:
		return "point"
	case KindDirectional:
		return "directional"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Ambient is an ambient term baked into a light's own draw.
type Ambient struct {
	Color      mgl32.Vec3
	Brightness float32
}

// Light is one contribution to a lit layer.
type Light struct {
	Kind Kind

	// Position is x, y in target pixels and the height above the surface,
	// in units of the view height.
	Position mgl32.Vec3

	// Color and Brightness give the light intensity.
	Color      mgl32.Vec3
	Brightness float32

	// Falloff holds the coefficients c0, c1, c2 of 1/(c0 + c1*D + c2*D^2).
	Falloff mgl32.Vec3

	// Radius limits a point light, in pixels. Zero is unbounded.
	Radius float32

	// Target is the point a directional light shines toward.
	Target mgl32.Vec2

	// Ambient is the baked-in ambient term. Nil draws additively.
	Ambient *Ambient

	// Source and CPU replace the built-in program of Kind. Source must
	// declare every uniform SyncShader pushes.
	Source string
	CPU    *render.CPUProgram

	id uuid.UUID
}

// Option configures a Light.
type Option func(*Light)

// WithFalloff sets the attenuation coefficients.
func WithFalloff(c0, c1, c2 float32) Option {
	return func(l *Light) {
		l.Falloff = mgl32.Vec3{c0, c1, c2}
	}
}

// WithRadius limits a point light to radius pixels.
func WithRadius(radius float32) Option {
	return func(l *Light) {
		l.Radius = radius
	}
}

// WithAmbient bakes an ambient term into the light, which switches its
// blend mode to NORMAL.
func WithAmbient(color mgl32.Vec3, brightness float32) Option {
	return func(l *Light) {
		l.Ambient = &Ambient{Color: color, Brightness: brightness}
	}
}

// WithHeight sets the light height.
func WithHeight(height float32) Option {
	return func(l *Light) {
		l.Position[2] = height
	}
}

// WithBrightness sets the brightness.
func WithBrightness(brightness float32) Option {
	return func(l *Light) {
		l.Brightness = brightness
	}
}

func newLight(kind Kind, pos mgl32.Vec2, color mgl32.Vec3, opts []Option) *Light {
	l := &Light{
		Kind:       kind,
		Position:   mgl32.Vec3{pos[0], pos[1], DefaultHeight},
		Color:      color,
		Brightness: DefaultBrightness,
		Falloff:    DefaultFalloff,
		id:         uuid.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewAmbient returns an ambient light.
func NewAmbient(color mgl32.Vec3, opts ...Option) *Light {
	return newLight(KindAmbient, mgl32.Vec2{}, color, opts)
}

// NewPoint returns a point light at (x, y).
func NewPoint(x, y float32, color mgl32.Vec3, opts ...Option) *Light {
	return newLight(KindPoint, mgl32.Vec2{x, y}, color, opts)
}

// NewDirectional returns a directional light at (x, y) shining toward target.
func NewDirectional(x, y float32, target mgl32.Vec2, color mgl32.Vec3, opts ...Option) *Light {
	l := newLight(KindDirectional, mgl32.Vec2{x, y}, color, opts)
	l.Target = target
	return l
}

// ID returns the light identifier.
func (l *Light) ID() uuid.UUID { return l.id }

// Blend returns ADD for lights without an ambient term and NORMAL for
// lights that bake one in, so ambient is not accumulated once per light.
func (l *Light) Blend() render.BlendMode {
	if l.Ambient == nil {
		return render.BlendAdd
	}
	return render.BlendNormal
}

// Attenuation returns 1/(c0 + c1*d + c2*d^2), or 0 when the denominator is
// not positive.
func (l *Light) Attenuation(d float32) float32 {
	return attenuation(l.Falloff, d)
}

func attenuation(falloff mgl32.Vec3, d float32) float32 {
	den := falloff[0] + falloff[1]*d + falloff[2]*d*d
	if den <= 0 {
		return 0
	}
	return 1 / den
}

// Direction returns the unit vector from Target toward the light for a view
// of height viewHeight.
func (l *Light) Direction(viewHeight int) mgl32.Vec3 {
	h := float32(max(viewHeight, 1))
	d := mgl32.Vec3{(l.Position[0] - l.Target[0]) / h, (l.Position[1] - l.Target[1]) / h, l.Position[2]}
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return d.Normalize()
}

// premultiplied returns the light color scaled by brightness, with the
// brightness in alpha.
func (l *Light) premultiplied() mgl32.Vec4 {
	return l.Color.Mul(l.Brightness).Vec4(l.Brightness)
}

// Uniforms returns every uniform the light pushes for a view of width by
// height pixels.
func (l *Light) Uniforms(width, height int) render.Uniforms {
	u := render.Uniforms{
		UniformViewSize:     render.Vec2(mgl32.Vec2{float32(width), float32(height)}),
		UniformLightColor:   render.Vec4(l.premultiplied()),
		UniformLightFalloff: render.Vec3(l.Falloff),
	}
	switch l.Kind {
	case KindPoint:
		u[UniformLightPosition] = render.Vec3(l.Position)
		u[UniformLightRadius] = render.Float(l.Radius)
	case KindDirectional:
		u[UniformDirection] = render.Vec3(l.Direction(height))
	}
	if l.Ambient != nil {
		u[UniformAmbientColor] = render.Vec4(l.Ambient.Color.Vec4(l.Ambient.Brightness))
	}
	return u
}

// SyncShader pushes the light's uniforms to prog. A uniform prog does not
// declare is a configuration error.
func (l *Light) SyncShader(prog render.Program, width, height int) error {
	u := l.Uniforms(width, height)
	for name := range u {
		if !prog.Has(name) {
			return fmt.Errorf("%w: %s light program %q lacks %s", ErrMissingUniform, l.Kind, prog.Label(), name)
		}
	}
	if l.Ambient == nil && prog.Has(UniformAmbientColor) {
		// Programs are shared per kind; clear a previous light's ambient term.
		u[UniformAmbientColor] = render.Vec4(mgl32.Vec4{})
	}
	return prog.SetUniforms(u)
}
