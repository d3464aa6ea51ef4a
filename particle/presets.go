// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/render"
)

// Shader sources.
//
//go:embed shaders/state.wgsl
var stateWGSL string

//go:embed shaders/velocity.wgsl
var velocityWGSL string

//go:embed shaders/position.wgsl
var positionWGSL string

//go:embed shaders/sprite.wgsl
var spriteWGSL string

// AttrColor is the per-particle tint of the sprite display.
const AttrColor = "aColor"

// UniformGravity is the acceleration applied by the velocity stage.
const UniformGravity = "uGravity"

// StageSource returns a complete stage module: body plus the full-screen
// vertex entry and the state encoding helpers. body declares the uniform
// struct `u` with uStateScale and uStatePacked and the fs_main entry.
func StageSource(body string) string {
	return body + "\n" + render.FullscreenWGSL + "\n" + stateWGSL
}

// DisplaySource returns a display module with the state encoding helpers
// appended.
func DisplaySource(body string) string {
	return body + "\n" + stateWGSL
}

// SeedVec2 lays out one vec2 per particle as stage seed data for grid.
// Values beyond the grid capacity are ignored.
func SeedVec2(grid Grid, values []mgl32.Vec2) []float32 {
	out := make([]float32, grid.Cap()*4)
	for i, v := range values {
		if i >= grid.Cap() {
			break
		}
		out[4*i] = v[0]
		out[4*i+1] = v[1]
	}
	return out
}

// VelocityStage integrates a constant acceleration: v += gravity * step.
func VelocityStage(gravity mgl32.Vec2) *Stage {
	return &Stage{
		Name:   "velocity",
		Source: StageSource(velocityWGSL),
		CPU: &render.CPUProgram{
			Shade: func(f *render.Fragment) mgl32.Vec4 {
				v := ReadState(f, UniformSampler, f.X, f.Y)
				g := f.Uniform(UniformGravity).Vec2()
				step := f.Uniform(UniformStep).Float()
				return WriteState(f, mgl32.Vec4{v[0] + g[0]*step, v[1] + g[1]*step, 0, 0})
			},
		},
		Uniforms: func(Frame) render.Uniforms {
			return render.Uniforms{UniformGravity: render.Vec2(gravity)}
		},
	}
}

// PositionStage integrates velocity: p += v * step, where v is the
// same-frame output of stage 0.
func PositionStage() *Stage {
	return &Stage{
		Name:   "position",
		Source: StageSource(positionWGSL),
		CPU: &render.CPUProgram{
			Shade: func(f *render.Fragment) mgl32.Vec4 {
				p := ReadState(f, UniformSampler, f.X, f.Y)
				v := ReadState(f, StageOutput(0), f.X, f.Y)
				step := f.Uniform(UniformStep).Float()
				return WriteState(f, mgl32.Vec4{p[0] + v[0]*step, p[1] + v[1]*step, 0, 0})
			},
		},
	}
}

// SpriteDisplay draws a textured quad centred on the position held by
// active stage 0. Every sprite carries an aColor tint, white by default.
func SpriteDisplay(name string) *Display {
	return &Display{
		Name:   name,
		Source: DisplaySource(spriteWGSL),
		CPU:    &render.CPUProgram{Emit: emitSprite},
		Attributes: []Attribute{
			{Name: AttrColor, Components: 4, Format: render.VertexUnorm8, Shared: true, Data: []float32{1, 1, 1, 1}},
		},
		Blend: render.BlendNormal,
	}
}

func emitSprite(in *render.Instance) (render.Sprite, bool) {
	idx := in.Attr(AttrParticleIndex)
	if len(idx) < 2 {
		return render.Sprite{}, false
	}
	state := ReadState(in, StateTexture(0), int(idx[0]), int(idx[1]))
	size := in.Uniform(UniformSize).Float()
	center := state.Vec2().Add(in.Uniform(UniformOffset).Vec2())

	lo, hi := in.Vertex(0, AttrVertexPosition), in.Vertex(2, AttrVertexPosition)
	uvLo, uvHi := in.Vertex(0, AttrTextureCoord), in.Vertex(2, AttrTextureCoord)
	if len(lo) < 2 || len(hi) < 2 || len(uvLo) < 2 || len(uvHi) < 2 {
		return render.Sprite{}, false
	}
	frame := in.Uniform(UniformFrame).Vec4()
	tint := mgl32.Vec4{1, 1, 1, 1}
	if c := in.Attr(AttrColor); len(c) == 4 {
		tint = mgl32.Vec4{c[0], c[1], c[2], c[3]}
	}
	mul := in.Uniform(UniformColorMultiplier).Vec4()
	alpha := in.Uniform(UniformAlpha).Float()

	return render.Sprite{
		Min:     mgl32.Vec2{center[0] + lo[0]*size, center[1] + lo[1]*size},
		Max:     mgl32.Vec2{center[0] + hi[0]*size, center[1] + hi[1]*size},
		UVMin:   mgl32.Vec2{frame[0] + uvLo[0]*frame[2], frame[1] + uvLo[1]*frame[3]},
		UVMax:   mgl32.Vec2{frame[0] + uvHi[0]*frame[2], frame[1] + uvHi[1]*frame[3]},
		Texture: UniformSampler,
		Color: mgl32.Vec4{
			tint[0] * mul[0] * alpha,
			tint[1] * mul[1] * alpha,
			tint[2] * mul[2] * alpha,
			tint[3] * mul[3] * alpha,
		},
		Offset: in.Uniform(UniformColorOffset).Vec4(),
	}, true
}

// DriftConfig seeds a ballistic particle group.
type DriftConfig struct {
	// Positions and Velocities hold one entry per particle, in pixels and
	// pixels per second. Missing entries start at zero.
	Positions  []mgl32.Vec2
	Velocities []mgl32.Vec2

	// Gravity is the constant acceleration in pixels per second squared.
	Gravity mgl32.Vec2

	// Colors optionally tints each particle.
	Colors []mgl32.Vec4
}

// NewDrift returns a particle group whose stage 0 integrates velocity and
// stage 1 integrates position. The display samples stage 1.
func NewDrift(count int, cfg DriftConfig, opts ...Option) (*Particle, error) {
	velocity := VelocityStage(cfg.Gravity)
	position := PositionStage()
	display := SpriteDisplay("drift")
	if len(cfg.Colors) > 0 {
		if len(cfg.Colors) != count {
			return nil, fmt.Errorf("%w: %d colors for %d particles", ErrAttributeData, len(cfg.Colors), count)
		}
		data := make([]float32, 0, 4*count)
		for _, c := range cfg.Colors {
			data = append(data, c[0], c[1], c[2], c[3])
		}
		display.Attributes = []Attribute{{Name: AttrColor, Components: 4, Format: render.VertexUnorm8, Data: data}}
	}

	p, err := New(count, display, []*Stage{velocity, position}, opts...)
	if err != nil {
		return nil, err
	}
	velocity.Seed = SeedVec2(p.Grid(), cfg.Velocities)
	position.Seed = SeedVec2(p.Grid(), cfg.Positions)
	if err := p.SetActive(1); err != nil {
		return nil, err
	}
	return p, nil
}
