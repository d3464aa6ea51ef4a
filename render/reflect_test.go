// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"
)

const reflectSource = `
struct Uniforms {
    uViewSize: vec2<f32>,
    uAlpha: f32,
    uColor: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var uSampler: texture_2d<f32>;
@group(0) @binding(2) var sSampler: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) aVertexPosition: vec2<f32>, @location(1) aTextureCoord: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(aVertexPosition / u.uViewSize * 2.0 - 1.0, 0.0, 1.0);
    out.uv = aTextureCoord;
    return out;
}

@fragment
fn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(uSampler, sSampler, input.uv) * u.uColor * u.uAlpha;
}
`

const reflectStructInput = `
struct VertexInput {
    @location(0) aVertexPosition: vec2<f32>,
    @location(3) aParticleIndex: vec2<f32>,
    @builtin(instance_index) instance: u32,
}

@vertex
fn vs_main(v: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(v.aVertexPosition + v.aParticleIndex, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func TestReflect(t *testing.T) {
	l, err := Reflect(reflectSource, "vs_main")
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}

	attrs := []struct {
		name       string
		location   uint32
		components int
	}{
		{"aVertexPosition", 0, 2},
		{"aTextureCoord", 1, 2},
	}
	for _, a := range attrs {
		got, ok := l.Attributes[a.name]
		if !ok {
			t.Errorf("attribute %s missing", a.name)
			continue
		}
		if got.Location != a.location || got.Components != a.components {
			t.Errorf("attribute %s = %+v, want location %d components %d", a.name, got, a.location, a.components)
		}
	}

	uniforms := []struct {
		name   string
		kind   UniformKind
		offset uint32
	}{
		{"uViewSize", KindVec2, 0},
		{"uAlpha", KindFloat, 8},
		{"uColor", KindVec4, 16},
	}
	for _, u := range uniforms {
		got, ok := l.Uniforms[u.name]
		if !ok {
			t.Errorf("uniform %s missing", u.name)
			continue
		}
		if got.Kind != u.kind || got.Offset != u.offset {
			t.Errorf("uniform %s = %+v, want kind %s offset %d", u.name, got, u.kind, u.offset)
		}
	}
	if l.UniformSize != 32 {
		t.Errorf("UniformSize = %d, want 32", l.UniformSize)
	}
	if !l.HasUniformBuffer || l.UniformBinding != 0 {
		t.Errorf("uniform buffer = %v binding %d, want true binding 0", l.HasUniformBuffer, l.UniformBinding)
	}
	if b, ok := l.Textures["uSampler"]; !ok || b != 1 {
		t.Errorf("texture uSampler = %d, %v, want 1, true", b, ok)
	}
	if b, ok := l.Samplers["sSampler"]; !ok || b != 2 {
		t.Errorf("sampler sSampler = %d, %v, want 2, true", b, ok)
	}
	if !l.HasUniform("uAlpha") || !l.HasUniform("uSampler") || l.HasUniform("uNormalSampler") {
		t.Error("HasUniform() reports wrong membership")
	}
}

func TestReflectStructInput(t *testing.T) {
	l, err := Reflect(reflectStructInput, "vs_main")
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	if len(l.Attributes) != 2 {
		t.Errorf("len(Attributes) = %d, want 2 (builtins skipped)", len(l.Attributes))
	}
	if a := l.Attributes["aParticleIndex"]; a.Location != 3 {
		t.Errorf("aParticleIndex location = %d, want 3", a.Location)
	}
	if l.HasUniformBuffer {
		t.Error("HasUniformBuffer = true for a shader without uniforms")
	}
	got := l.AttributesByLocation()
	if len(got) != 2 || got[0].Name != "aVertexPosition" || got[1].Name != "aParticleIndex" {
		t.Errorf("AttributesByLocation() = %+v", got)
	}
}

func TestReflectErrors(t *testing.T) {
	if _, err := Reflect("fn broken(", "vs_main"); !errors.Is(err, ErrReflect) {
		t.Errorf("Reflect(broken) error = %v, want ErrReflect", err)
	}
	if _, err := Reflect(reflectSource, "vs_other"); !errors.Is(err, ErrReflect) {
		t.Errorf("Reflect(missing entry) error = %v, want ErrReflect", err)
	}
}
