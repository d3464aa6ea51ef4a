// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformKind is the declared type of a program uniform.
type UniformKind uint8

const (
	KindInvalid UniformKind = iota
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindMat3
	// KindSampler binds a texture variable to a texture unit.
	KindSampler
)

// String returns the WGSL spelling of the kind.
func (k UniformKind) String() string {
	switch k {
	case KindFloat:
		return "f32"
	case KindVec2:
		return "vec2<f32>"
	case KindVec3:
		return "vec3<f32>"
	case KindVec4:
		return "vec4<f32>"
	case KindMat3:
		return "mat3x3<f32>"
	case KindSampler:
		return "texture_2d<f32>"
	default:
		return "invalid"
	}
}

// components returns the number of float32 values the kind carries.
func (k UniformKind) components() int {
	switch k {
	case KindFloat:
		return 1
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	case KindMat3:
		return 9
	default:
		return 0
	}
}

// Value is a typed uniform value.
//
// Values are built with Float, Vec2, Vec3, Vec4, Mat3 and Sampler. The zero
// Value has KindInvalid and is rejected by SetUniform.
type Value struct {
	kind UniformKind
	f    [9]float32
	unit int
}

// Float returns a scalar value.
func Float(v float32) Value {
	return Value{kind: KindFloat, f: [9]float32{v}}
}

// Vec2 returns a two-component value.
func Vec2(v mgl32.Vec2) Value {
	return Value{kind: KindVec2, f: [9]float32{v[0], v[1]}}
}

// Vec3 returns a three-component value.
func Vec3(v mgl32.Vec3) Value {
	return Value{kind: KindVec3, f: [9]float32{v[0], v[1], v[2]}}
}

// Vec4 returns a four-component value.
func Vec4(v mgl32.Vec4) Value {
	return Value{kind: KindVec4, f: [9]float32{v[0], v[1], v[2], v[3]}}
}

// Mat3 returns a column-major 3x3 matrix value.
func Mat3(m mgl32.Mat3) Value {
	return Value{kind: KindMat3, f: m}
}

// Sampler returns a texture-unit binding.
func Sampler(unit int) Value {
	return Value{kind: KindSampler, unit: unit}
}

// Kind returns the value kind.
func (v Value) Kind() UniformKind { return v.kind }

// Float returns the first component.
func (v Value) Float() float32 { return v.f[0] }

// Vec2 returns the first two components.
func (v Value) Vec2() mgl32.Vec2 { return mgl32.Vec2{v.f[0], v.f[1]} }

// Vec3 returns the first three components.
func (v Value) Vec3() mgl32.Vec3 { return mgl32.Vec3{v.f[0], v.f[1], v.f[2]} }

// Vec4 returns the first four components.
func (v Value) Vec4() mgl32.Vec4 { return mgl32.Vec4{v.f[0], v.f[1], v.f[2], v.f[3]} }

// Mat3 returns the matrix.
func (v Value) Mat3() mgl32.Mat3 { return v.f }

// Unit returns the texture unit of a sampler value.
func (v Value) Unit() int { return v.unit }

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case KindSampler:
		return fmt.Sprintf("unit(%d)", v.unit)
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("%s%v", v.kind, v.f[:v.kind.components()])
	}
}

// Uniforms is a named set of uniform values.
type Uniforms map[string]Value

// UniformBlock holds a program's uniform values and their packed bytes.
//
// Scalar and vector values are packed at the offsets reflected from the WGSL
// uniform struct. Sampler values only record the texture unit.
type UniformBlock struct {
	layout *Layout
	values map[string]Value
	data   []byte
	dirty  bool
}

// NewUniformBlock creates an empty block for layout.
func NewUniformBlock(layout *Layout) *UniformBlock {
	if layout == nil {
		layout = &Layout{}
	}
	return &UniformBlock{
		layout: layout,
		values: make(map[string]Value),
		data:   make([]byte, layout.UniformSize),
	}
}

// Layout returns the reflected program layout.
func (b *UniformBlock) Layout() *Layout {
	return b.layout
}

// Has reports whether the program declares a uniform or texture named name.
func (b *UniformBlock) Has(name string) bool {
	return b.layout.HasUniform(name)
}

// SetUniform stores v under name.
//
// It returns ErrUnknownUniform if the program does not declare name and
// ErrUniformKind if v does not match the declared kind.
func (b *UniformBlock) SetUniform(name string, v Value) error {
	if info, ok := b.layout.Uniforms[name]; ok {
		if v.kind != info.Kind {
			return fmt.Errorf("%w: %s is %s, got %s", ErrUniformKind, name, info.Kind, v.kind)
		}
		b.pack(info, v)
		b.values[name] = v
		b.dirty = true
		return nil
	}
	if _, ok := b.layout.Textures[name]; ok {
		if v.kind != KindSampler {
			return fmt.Errorf("%w: %s is %s, got %s", ErrUniformKind, name, KindSampler, v.kind)
		}
		b.values[name] = v
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownUniform, name)
}

// SetUniforms applies every value in u, stopping at the first error.
func (b *UniformBlock) SetUniforms(u Uniforms) error {
	for name, v := range u {
		if err := b.SetUniform(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Uniform returns the last value set under name.
func (b *UniformBlock) Uniform(name string) (Value, bool) {
	v, ok := b.values[name]
	return v, ok
}

// TextureUnit returns the unit bound to the texture variable name.
func (b *UniformBlock) TextureUnit(name string) (int, bool) {
	v, ok := b.values[name]
	if !ok || v.kind != KindSampler {
		return 0, false
	}
	return v.unit, true
}

// Bytes returns the packed uniform buffer contents.
func (b *UniformBlock) Bytes() []byte {
	return b.data
}

// Dirty reports whether values changed since the last MarkClean.
func (b *UniformBlock) Dirty() bool {
	return b.dirty
}

// MarkClean clears the dirty flag after an upload.
func (b *UniformBlock) MarkClean() {
	b.dirty = false
}

func (b *UniformBlock) pack(info UniformInfo, v Value) {
	if v.kind == KindMat3 {
		// mat3x3<f32> columns are vec3 padded to 16 bytes.
		for c := 0; c < 3; c++ {
			for r := 0; r < 3; r++ {
				b.putFloat(int(info.Offset)+c*16+r*4, v.f[c*3+r])
			}
		}
		return
	}
	for i := 0; i < v.kind.components(); i++ {
		b.putFloat(int(info.Offset)+i*4, v.f[i])
	}
}

func (b *UniformBlock) putFloat(off int, f float32) {
	if off+4 > len(b.data) {
		return
	}
	binary.LittleEndian.PutUint32(b.data[off:], math.Float32bits(f))
}
