package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/fx/light"
	"github.com/gogpu/fx/render"
)

// Scene describes one demo render.
type Scene struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Background mgl32.Vec4 `yaml:"background"`
	Frames     int        `yaml:"frames"`
	Step       float32    `yaml:"step"`
	Particles  Particles  `yaml:"particles"`
	Lights     []Light    `yaml:"lights"`
}

// Particles configures the particle group.
type Particles struct {
	Count   int        `yaml:"count"`
	Pattern string     `yaml:"pattern"`
	Seed    uint64     `yaml:"seed"`
	Size    float32    `yaml:"size"`
	Speed   float32    `yaml:"speed"`
	Gravity mgl32.Vec2 `yaml:"gravity"`
	Format  formatName `yaml:"format"`
	Scale   float32    `yaml:"scale"`
	Sheet   Sheet      `yaml:"sheet"`
}

// Sheet configures the procedural sprite sheet animation.
type Sheet struct {
	Frames   int     `yaml:"frames"`
	Duration float32 `yaml:"duration"`
}

// Light configures one light.
type Light struct {
	Kind       kindName    `yaml:"kind"`
	Position   mgl32.Vec2  `yaml:"position"`
	Target     mgl32.Vec2  `yaml:"target"`
	Color      mgl32.Vec3  `yaml:"color"`
	Brightness float32     `yaml:"brightness"`
	Height     float32     `yaml:"height"`
	Radius     float32     `yaml:"radius"`
	Falloff    *mgl32.Vec3 `yaml:"falloff"`
}

// defaultScene is rendered when no scene file is given.
func defaultScene() Scene {
	return Scene{
		Width:      256,
		Height:     256,
		Background: mgl32.Vec4{0.6, 0.6, 0.65, 1},
		Frames:     60,
		Step:       1.0 / 60,
		Particles: Particles{
			Count:   256,
			Pattern: "ring",
			Seed:    1,
			Size:    6,
			Speed:   60,
			Gravity: mgl32.Vec2{0, 40},
			Format:  formatName(render.FormatAuto),
			Scale:   512,
			Sheet:   Sheet{Frames: 4, Duration: 0.1},
		},
		Lights: []Light{
			{Kind: kindName(light.KindAmbient), Color: mgl32.Vec3{0.15, 0.15, 0.2}, Brightness: 1},
			{Kind: kindName(light.KindPoint), Position: mgl32.Vec2{96, 96}, Color: mgl32.Vec3{1, 0.85, 0.6}, Brightness: 1.5, Radius: 200},
			{Kind: kindName(light.KindDirectional), Position: mgl32.Vec2{256, 0}, Target: mgl32.Vec2{128, 128}, Color: mgl32.Vec3{0.3, 0.4, 0.8}, Brightness: 0.5},
		},
	}
}

// loadScene reads a YAML scene on top of the defaults.
func loadScene(path string) (Scene, error) {
	s := defaultScene()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("scene %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return s, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

func (s *Scene) validate() error {
	var errs []error
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", s.Width, s.Height))
	}
	if s.Frames < 0 || s.Step <= 0 {
		errs = append(errs, fmt.Errorf("invalid timing: %d frames of %v", s.Frames, s.Step))
	}
	if s.Particles.Count < 0 {
		errs = append(errs, fmt.Errorf("negative particle count %d", s.Particles.Count))
	}
	switch s.Particles.Pattern {
	case "ring", "grid", "random":
	default:
		errs = append(errs, fmt.Errorf("unknown pattern %q", s.Particles.Pattern))
	}
	if s.Particles.Sheet.Frames < 1 || s.Particles.Sheet.Duration <= 0 {
		errs = append(errs, fmt.Errorf("invalid sheet: %d frames of %v", s.Particles.Sheet.Frames, s.Particles.Sheet.Duration))
	}
	if len(s.Lights) == 0 {
		errs = append(errs, errors.New("no lights"))
	}
	return errors.Join(errs...)
}

// build returns the light of l.
func (l Light) build() *light.Light {
	var opts []light.Option
	if l.Brightness != 0 {
		opts = append(opts, light.WithBrightness(l.Brightness))
	}
	if l.Height != 0 {
		opts = append(opts, light.WithHeight(l.Height))
	}
	if l.Radius != 0 {
		opts = append(opts, light.WithRadius(l.Radius))
	}
	if l.Falloff != nil {
		opts = append(opts, light.WithFalloff(l.Falloff[0], l.Falloff[1], l.Falloff[2]))
	}
	switch light.Kind(l.Kind) {
	case light.KindPoint:
		return light.NewPoint(l.Position[0], l.Position[1], l.Color, opts...)
	case light.KindDirectional:
		return light.NewDirectional(l.Position[0], l.Position[1], l.Target, l.Color, opts...)
	default:
		return light.NewAmbient(l.Color, opts...)
	}
}

// formatName decodes a render.Format from its name.
type formatName render.Format

func (f *formatName) UnmarshalYAML(value *yaml.Node) error {
	for _, c := range []render.Format{render.FormatAuto, render.FormatRGBA, render.FormatHalfFloat, render.FormatFloat} {
		if strings.EqualFold(value.Value, c.String()) {
			*f = formatName(c)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown format %q", value.Line, value.Value)
}

// kindName decodes a light.Kind from its name.
type kindName light.Kind

func (k *kindName) UnmarshalYAML(value *yaml.Node) error {
	for _, c := range []light.Kind{light.KindAmbient, light.KindPoint, light.KindDirectional} {
		if strings.EqualFold(value.Value, c.String()) {
			*k = kindName(c)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown light kind %q", value.Line, value.Value)
}
