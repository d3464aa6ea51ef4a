// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Attribute describes one vertex shader input.
type Attribute struct {
	Name       string
	Location   uint32
	Components int
}

// UniformInfo describes one member of the program's uniform struct.
type UniformInfo struct {
	Name   string
	Kind   UniformKind
	Offset uint32
}

// Layout is the reflected name table of a program.
type Layout struct {
	// Attributes maps vertex input names to their locations.
	Attributes map[string]Attribute

	// Uniforms maps uniform struct member names to kinds and offsets.
	Uniforms map[string]UniformInfo

	// UniformSize is the byte size of the uniform struct.
	UniformSize uint32

	// UniformBinding is the @binding of the uniform buffer in group 0.
	// HasUniformBuffer is false when the program declares no uniforms.
	UniformBinding   uint32
	HasUniformBuffer bool

	// Textures maps texture_2d variable names to their @binding.
	Textures map[string]uint32

	// Samplers maps sampler variable names to their @binding.
	Samplers map[string]uint32
}

// HasAttribute reports whether the vertex entry declares name.
func (l *Layout) HasAttribute(name string) bool {
	_, ok := l.Attributes[name]
	return ok
}

// HasUniform reports whether name is a uniform member or a texture variable.
func (l *Layout) HasUniform(name string) bool {
	if _, ok := l.Uniforms[name]; ok {
		return true
	}
	_, ok := l.Textures[name]
	return ok
}

// TextureNames returns texture variable names ordered by binding.
func (l *Layout) TextureNames() []string {
	names := make([]string, 0, len(l.Textures))
	for n := range l.Textures {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return l.Textures[names[i]] < l.Textures[names[j]] })
	return names
}

// AttributesByLocation returns vertex inputs ordered by location.
func (l *Layout) AttributesByLocation() []Attribute {
	out := make([]Attribute, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// Reflect parses WGSL source and extracts the layout of the vertex entry
// point named vertexEntry along with all group 0 resources.
func Reflect(source, vertexEntry string) (*Layout, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrReflect, err)
	}
	mod, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: lower: %w", ErrReflect, err)
	}

	l := &Layout{
		Attributes: make(map[string]Attribute),
		Uniforms:   make(map[string]UniformInfo),
		Textures:   make(map[string]uint32),
		Samplers:   make(map[string]uint32),
	}

	for _, gv := range mod.GlobalVariables {
		if gv.Binding == nil || gv.Binding.Group != 0 {
			continue
		}
		switch gv.Space {
		case ir.SpaceUniform:
			if l.HasUniformBuffer {
				return nil, fmt.Errorf("%w: more than one uniform buffer (%s)", ErrReflect, gv.Name)
			}
			if err := reflectUniforms(mod, gv.Type, l); err != nil {
				return nil, err
			}
			l.UniformBinding = gv.Binding.Binding
			l.HasUniformBuffer = true
		case ir.SpaceHandle:
			switch mod.Types[gv.Type].Inner.(type) {
			case ir.ImageType:
				l.Textures[gv.Name] = gv.Binding.Binding
			case ir.SamplerType:
				l.Samplers[gv.Name] = gv.Binding.Binding
			}
		}
	}

	found := false
	for i := range mod.EntryPoints {
		ep := &mod.EntryPoints[i]
		if ep.Stage != ir.StageVertex || ep.Name != vertexEntry {
			continue
		}
		found = true
		for _, arg := range ep.Function.Arguments {
			reflectInput(mod, arg.Name, arg.Type, arg.Binding, l)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no vertex entry point %q", ErrReflect, vertexEntry)
	}
	return l, nil
}

func reflectUniforms(mod *ir.Module, th ir.TypeHandle, l *Layout) error {
	st, ok := mod.Types[th].Inner.(ir.StructType)
	if !ok {
		return fmt.Errorf("%w: uniform buffer must be a struct", ErrReflect)
	}
	for _, m := range st.Members {
		kind := kindOf(mod.Types[m.Type].Inner)
		if kind == KindInvalid {
			return fmt.Errorf("%w: uniform %s has unsupported type", ErrReflect, m.Name)
		}
		l.Uniforms[m.Name] = UniformInfo{Name: m.Name, Kind: kind, Offset: m.Offset}
	}
	l.UniformSize = st.Span
	return nil
}

// reflectInput records a vertex input. Struct inputs contribute each
// located member; builtins are skipped.
func reflectInput(mod *ir.Module, name string, th ir.TypeHandle, binding *ir.Binding, l *Layout) {
	if binding != nil {
		loc, ok := (*binding).(ir.LocationBinding)
		if !ok {
			return
		}
		l.Attributes[name] = Attribute{
			Name:       name,
			Location:   loc.Location,
			Components: kindOf(mod.Types[th].Inner).components(),
		}
		return
	}
	st, ok := mod.Types[th].Inner.(ir.StructType)
	if !ok {
		return
	}
	for _, m := range st.Members {
		if m.Binding != nil {
			reflectInput(mod, m.Name, m.Type, m.Binding, l)
		}
	}
}

func kindOf(inner ir.TypeInner) UniformKind {
	switch t := inner.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat {
			return KindFloat
		}
	case ir.VectorType:
		if t.Scalar.Kind != ir.ScalarFloat {
			return KindInvalid
		}
		switch t.Size {
		case ir.Vec2:
			return KindVec2
		case ir.Vec3:
			return KindVec3
		case ir.Vec4:
			return KindVec4
		}
	case ir.MatrixType:
		if t.Columns == ir.Vec3 && t.Rows == ir.Vec3 {
			return KindMat3
		}
	}
	return KindInvalid
}
