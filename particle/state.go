// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/render"
)

// Uniforms pushed to stage and display programs that declare them.
const (
	UniformCount       = "uCount"
	UniformFboSize     = "uFboSize"
	UniformViewSize    = "uViewSize"
	UniformTime        = "uTime"
	UniformStep        = "uStep"
	UniformStateScale  = "uStateScale"
	UniformStatePacked = "uStatePacked"
	UniformSampler     = "uSampler"
	UniformTexture     = "uTexture"
)

// StateTexture returns the display texture name of active stage i.
func StateTexture(i int) string { return fmt.Sprintf("stateTex%d", i) }

// StageOutput returns the texture name under which stage programs read the
// output of declared stage j.
func StageOutput(j int) string { return fmt.Sprintf("statusOut%d", j) }

// ReadState returns the decoded state stored at texel (x, y) of the named
// texture. Byte-packed targets are decoded with the uStateScale uniform.
func ReadState(b render.Bindings, texture string, x, y int) mgl32.Vec4 {
	c := b.Texel(texture, x, y)
	if b.Uniform(UniformStatePacked).Float() < 0.5 {
		return c
	}
	return render.DecodeState(c, render.FormatRGBA, b.Uniform(UniformStateScale).Float())
}

// WriteState encodes v for the target format announced by uStatePacked.
func WriteState(b render.Bindings, v mgl32.Vec4) mgl32.Vec4 {
	if b.Uniform(UniformStatePacked).Float() < 0.5 {
		return v
	}
	return render.EncodeState(v, render.FormatRGBA, b.Uniform(UniformStateScale).Float())
}

// setIfDeclared sets name when the program declares it.
func setIfDeclared(p render.Program, name string, v render.Value) error {
	if !p.Has(name) {
		return nil
	}
	return p.SetUniform(name, v)
}

// frameUniforms returns the pipeline-wide uniforms of f.
func frameUniforms(f Frame, format render.Format, scale float32) render.Uniforms {
	packed := float32(0)
	if format == render.FormatRGBA {
		packed = 1
	}
	return render.Uniforms{
		UniformCount:       render.Float(float32(f.Count)),
		UniformFboSize:     render.Vec2(mgl32.Vec2{float32(f.Grid.Width), float32(f.Grid.Height)}),
		UniformViewSize:    render.Vec2(mgl32.Vec2{float32(f.ViewWidth), float32(f.ViewHeight)}),
		UniformTime:        render.Float(f.Time),
		UniformStep:        render.Float(f.Step),
		UniformStateScale:  render.Float(scale),
		UniformStatePacked: render.Float(packed),
	}
}

// applyUniforms sets every declared uniform of u on p.
func applyUniforms(p render.Program, u render.Uniforms) error {
	for name, v := range u {
		if err := setIfDeclared(p, name, v); err != nil {
			return err
		}
	}
	return nil
}
