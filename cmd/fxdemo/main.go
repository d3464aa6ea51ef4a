// Command fxdemo renders a lit particle scene headlessly and saves it as PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/anim"
	"github.com/gogpu/fx/backend/software"
	"github.com/gogpu/fx/light"
	"github.com/gogpu/fx/particle"
	"github.com/gogpu/fx/render"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "YAML scene file (default: built-in scene)")
		output    = flag.String("output", "fxdemo.png", "output file")
		frames    = flag.Int("frames", -1, "simulation frames (overrides the scene)")
		verbose   = flag.Bool("v", false, "log resource and lifecycle events")
	)
	flag.Parse()

	if *verbose {
		fx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	scene, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	if *frames >= 0 {
		scene.Frames = *frames
	}

	img, err := run(scene)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := savePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d, %d particles, %d lights)\n",
		*output, scene.Width, scene.Height, scene.Particles.Count, len(scene.Lights))
}

// run simulates and renders scene on the software device.
func run(scene Scene) (*image.RGBA, error) {
	dev := software.New(software.WithViewSize(scene.Width, scene.Height), software.WithWorkers(0))
	defer dev.Destroy()
	d := fx.NewDispatcher(dev)
	defer d.Destroy()

	diffuse, err := newTarget(dev, "diffuse", scene.Width, scene.Height)
	if err != nil {
		return nil, err
	}
	defer diffuse.Destroy()
	bg := scene.Background
	if err := dev.Clear(diffuse, gputypes.Color{R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: float64(bg[3])}); err != nil {
		return nil, err
	}

	if scene.Particles.Count > 0 {
		if err := simulate(scene, dev, d, diffuse); err != nil {
			return nil, err
		}
	}

	normal, err := dev.CreateTexture("normal", render.SolidImage(scene.Width, scene.Height, color.RGBA{128, 128, 255, 255}))
	if err != nil {
		return nil, err
	}
	defer normal.Destroy()

	lights := make([]*light.Light, len(scene.Lights))
	for i, l := range scene.Lights {
		lights[i] = l.build()
	}
	lit, err := newTarget(dev, "lit", scene.Width, scene.Height)
	if err != nil {
		return nil, err
	}
	defer lit.Destroy()
	if err := d.Render(light.NewCompositor(diffuse, normal, lights), lit); err != nil {
		return nil, fmt.Errorf("lighting: %w", err)
	}

	stats := dev.Stats()
	fx.Logger().Info("fxdemo: frame rendered", "draws", stats.Draws, "clears", stats.Clears, "instances", stats.Instances)
	return lit.(*software.Texture).Image(), nil
}

func newTarget(dev render.Device, label string, w, h int) (render.Target, error) {
	return dev.CreateTarget(&render.TargetDescriptor{Label: label, Width: w, Height: h, Format: render.FormatRGBA})
}

// simulate runs the particle group for scene.Frames ticks and draws it into
// target.
func simulate(scene Scene, dev render.Device, d *fx.Dispatcher, target render.Target) error {
	ps := scene.Particles
	cfg := seed(scene)
	sheet := sheetImage(ps.Sheet.Frames, 8)
	p, err := particle.NewDrift(ps.Count, cfg,
		particle.WithFormat(render.Format(ps.Format)),
		particle.WithScale(ps.Scale),
		particle.WithSize(ps.Size),
		particle.WithTexture(sheet),
	)
	if err != nil {
		return err
	}
	defer p.Destroy()
	if err := p.Init(dev); err != nil {
		return err
	}

	frames, err := anim.SliceSheet(p.Texture(), ps.Sheet.Frames, 1, ps.Sheet.Duration)
	if err != nil {
		return err
	}
	tl, err := anim.New(frames, anim.WithLoop(true))
	if err != nil {
		return err
	}
	defer tl.Destroy()
	p.Display().Uniforms = func(*particle.Particle) render.Uniforms {
		return render.Uniforms{particle.UniformFrame: render.Vec4(tl.Rect())}
	}

	for range scene.Frames {
		if err := p.Update(scene.Step); err != nil {
			return err
		}
		tl.Update(scene.Step)
	}
	return d.Render(p, target)
}

// seed lays out the starting positions and velocities of scene's pattern.
func seed(scene Scene) particle.DriftConfig {
	ps := scene.Particles
	center := mgl32.Vec2{float32(scene.Width) / 2, float32(scene.Height) / 2}
	rng := rand.New(rand.NewPCG(ps.Seed, ps.Seed^0x9e3779b97f4a7c15))
	cfg := particle.DriftConfig{
		Positions:  make([]mgl32.Vec2, ps.Count),
		Velocities: make([]mgl32.Vec2, ps.Count),
		Colors:     make([]mgl32.Vec4, ps.Count),
		Gravity:    ps.Gravity,
	}
	side := int(math32.Ceil(math32.Sqrt(float32(ps.Count))))
	for i := range ps.Count {
		t := float32(i) / float32(max(ps.Count, 1))
		var pos, dir mgl32.Vec2
		switch ps.Pattern {
		case "grid":
			cell := mgl32.Vec2{float32(i%side) + 0.5, float32(i/side) + 0.5}
			pos = mgl32.Vec2{cell[0] * float32(scene.Width) / float32(side), cell[1] * float32(scene.Height) / float32(side) / 2}
			dir = mgl32.Vec2{0, -1}
		case "random":
			pos = mgl32.Vec2{rng.Float32() * float32(scene.Width), rng.Float32() * float32(scene.Height)}
			a := rng.Float32() * 2 * math32.Pi
			dir = mgl32.Vec2{math32.Cos(a), math32.Sin(a)}
		default:
			a := t * 2 * math32.Pi
			dir = mgl32.Vec2{math32.Cos(a), math32.Sin(a)}
			pos = center.Add(dir.Mul(float32(min(scene.Width, scene.Height)) / 8))
		}
		cfg.Positions[i] = pos
		cfg.Velocities[i] = dir.Mul(ps.Speed)
		cfg.Colors[i] = mgl32.Vec4{1, 0.4 + 0.6*t, 1 - t, 1}
	}
	return cfg
}

// sheetImage draws a horizontal strip of n cells of size px, each a white
// disc whose radius grows with the cell index.
func sheetImage(n, px int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n*px, px))
	c := float32(px) / 2
	for f := range n {
		r := c * float32(f+1) / float32(n)
		for y := range px {
			for x := range px {
				dx, dy := float32(x)+0.5-c, float32(y)+0.5-c
				if dx*dx+dy*dy <= r*r {
					img.Set(f*px+x, y, color.White)
				}
			}
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
