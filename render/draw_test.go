// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

// stubProgram is a Program backed by a UniformBlock.
type stubProgram struct {
	*UniformBlock
}

func (p stubProgram) Label() string { return "stub" }
func (p stubProgram) Destroy()      {}

func TestDrawCommandValidate(t *testing.T) {
	prog := stubProgram{NewUniformBlock(testLayout())}
	a := &fakeTarget{desc: TargetDescriptor{Label: "a", Width: 1, Height: 1, Format: FormatFloat}}
	b := &fakeTarget{desc: TargetDescriptor{Label: "b", Width: 1, Height: 1, Format: FormatFloat}}

	tests := []struct {
		name    string
		cmd     DrawCommand
		wantErr error
	}{
		{"ok", DrawCommand{Program: prog, Target: a, Textures: []Texture{b}}, nil},
		{"feedback", DrawCommand{Program: prog, Target: a, Textures: []Texture{b, a}}, ErrFeedbackLoop},
		{"nil unit", DrawCommand{Program: prog, Target: a, Textures: []Texture{nil, b}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := (&DrawCommand{Target: a}).Validate(); err == nil {
		t.Error("Validate() without program succeeded")
	}
	if err := (&DrawCommand{Program: prog}).Validate(); err == nil {
		t.Error("Validate() without target succeeded")
	}
}

func TestDrawCommandTextureFor(t *testing.T) {
	prog := stubProgram{NewUniformBlock(testLayout())}
	b := &fakeTarget{desc: TargetDescriptor{Label: "b"}}
	cmd := DrawCommand{Program: prog, Textures: []Texture{nil, b}}

	if cmd.TextureFor("uSampler") != nil {
		t.Error("TextureFor() before binding should be nil")
	}
	if err := prog.SetUniform("uSampler", Sampler(1)); err != nil {
		t.Fatal(err)
	}
	if got := cmd.TextureFor("uSampler"); got != Texture(b) {
		t.Errorf("TextureFor(uSampler) = %v, want b", got)
	}
	if err := prog.SetUniform("uSampler", Sampler(9)); err != nil {
		t.Fatal(err)
	}
	if cmd.TextureFor("uSampler") != nil {
		t.Error("TextureFor() with out-of-range unit should be nil")
	}
}

func TestBlendModeState(t *testing.T) {
	if BlendNone.BlendState() != nil {
		t.Error("BlendNone.BlendState() should be nil")
	}
	n := BlendNormal.BlendState()
	if n == nil || n.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("BlendNormal.BlendState() = %+v", n)
	}
	a := BlendAdd.BlendState()
	if a == nil || a.Color.SrcFactor != gputypes.BlendFactorOne || a.Color.DstFactor != gputypes.BlendFactorOne {
		t.Errorf("BlendAdd.BlendState() = %+v", a)
	}
}

func TestVertexFormat(t *testing.T) {
	tests := []struct {
		f          VertexFormat
		components int
		size       int
		gpu        gputypes.VertexFormat
	}{
		{VertexFloat32, 1, 4, gputypes.VertexFormatFloat32},
		{VertexFloat32, 2, 8, gputypes.VertexFormatFloat32x2},
		{VertexFloat32, 4, 16, gputypes.VertexFormatFloat32x4},
		{VertexUnorm8, 2, 4, gputypes.VertexFormatUnorm8x2},
		{VertexUnorm8, 3, 4, gputypes.VertexFormatUnorm8x4},
		{VertexUnorm8, 4, 4, gputypes.VertexFormatUnorm8x4},
	}
	for _, tt := range tests {
		if got := tt.f.Size(tt.components); got != tt.size {
			t.Errorf("Size(%d) = %d, want %d", tt.components, got, tt.size)
		}
		if got := tt.f.GPUFormat(tt.components); got != tt.gpu {
			t.Errorf("GPUFormat(%d) = %v, want %v", tt.components, got, tt.gpu)
		}
	}
}
