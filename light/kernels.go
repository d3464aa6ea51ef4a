// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package light

import (
	_ "embed"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/render"
)

var (
	//go:embed shaders/common.wgsl
	commonWGSL string

	//go:embed shaders/ambient.wgsl
	ambientWGSL string

	//go:embed shaders/point.wgsl
	pointWGSL string

	//go:embed shaders/directional.wgsl
	directionalWGSL string

	//go:embed shaders/composite.wgsl
	compositeWGSL string
)

// Source returns a light module: body plus the shared uniform block, the
// diffuse and normal textures, the lighting helpers and the full-screen
// vertex entry.
func Source(body string) string {
	return commonWGSL + "\n" + body + "\n" + render.FullscreenWGSL
}

// program returns the descriptor of the built-in program of kind.
func program(kind Kind) *render.ProgramDescriptor {
	desc := &render.ProgramDescriptor{Label: "light_" + kind.String()}
	switch kind {
	case KindPoint:
		desc.Source = Source(pointWGSL)
		desc.CPU = &render.CPUProgram{Shade: shadePoint}
	case KindDirectional:
		desc.Source = Source(directionalWGSL)
		desc.CPU = &render.CPUProgram{Shade: shadeDirectional}
	default:
		desc.Source = Source(ambientWGSL)
		desc.CPU = &render.CPUProgram{Shade: shadeAmbient}
	}
	return desc
}

func compositeProgram() *render.ProgramDescriptor {
	return &render.ProgramDescriptor{
		Label:  "light_composite",
		Source: compositeWGSL + "\n" + render.FullscreenWGSL,
		CPU: &render.CPUProgram{
			Shade: func(f *render.Fragment) mgl32.Vec4 {
				return f.Texel(UniformSampler, f.X, f.Y)
			},
		},
	}
}

func surfaceNormal(f *render.Fragment) mgl32.Vec3 {
	n := f.Texel(UniformNormalSampler, f.X, f.Y).Vec3().Mul(2).Sub(mgl32.Vec3{1, 1, 1})
	if n.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

func shade(f *render.Fragment, intensity mgl32.Vec3) mgl32.Vec4 {
	diffuse := f.Texel(UniformSampler, f.X, f.Y)
	amb := f.Uniform(UniformAmbientColor).Vec4()
	k := intensity.Add(amb.Vec3().Mul(amb[3]))
	return mgl32.Vec4{diffuse[0] * k[0], diffuse[1] * k[1], diffuse[2] * k[2], diffuse[3]}
}

func shadeAmbient(f *render.Fragment) mgl32.Vec4 {
	return shade(f, f.Uniform(UniformLightColor).Vec4().Vec3())
}

func shadePoint(f *render.Fragment) mgl32.Vec4 {
	pos := f.Uniform(UniformLightPosition).Vec3()
	radius := f.Uniform(UniformLightRadius).Float()
	delta := pos.Vec2().Sub(mgl32.Vec2{float32(f.X) + 0.5, float32(f.Y) + 0.5})
	if radius > 0 && delta.Len() > radius {
		return shade(f, mgl32.Vec3{})
	}
	h := f.Uniform(UniformViewSize).Vec2()[1]
	l := mgl32.Vec3{delta[0] / h, delta[1] / h, pos[2]}
	d := l.Len()
	if d == 0 {
		return shade(f, mgl32.Vec3{})
	}
	ndotl := math32.Max(surfaceNormal(f).Dot(l.Mul(1/d)), 0)
	att := attenuation(f.Uniform(UniformLightFalloff).Vec3(), d)
	return shade(f, f.Uniform(UniformLightColor).Vec4().Vec3().Mul(ndotl*att))
}

func shadeDirectional(f *render.Fragment) mgl32.Vec4 {
	dir := f.Uniform(UniformDirection).Vec3()
	if dir.Len() == 0 {
		return shade(f, mgl32.Vec3{})
	}
	ndotl := math32.Max(surfaceNormal(f).Dot(dir.Normalize()), 0)
	return shade(f, f.Uniform(UniformLightColor).Vec4().Vec3().Mul(ndotl))
}
