// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/render"
)

// Texture is a CPU-resident texture or render target.
//
// Texels are stored as float32 RGBA and quantized to the target format on
// every write, so reads observe the same precision a GPU target would.
type Texture struct {
	label     string
	width     int
	height    int
	format    render.Format
	scale     float32
	pix       []float32
	destroyed bool
}

func newTexture(label string, width, height int, format render.Format, scale float32) *Texture {
	if scale <= 0 {
		scale = 1
	}
	return &Texture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		scale:  scale,
		pix:    make([]float32, width*height*4),
	}
}

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Width returns the width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel encoding.
func (t *Texture) Format() render.Format { return t.format }

// Scale returns the byte-packing scale the target was created with.
func (t *Texture) Scale() float32 { return t.scale }

// Destroy releases the texel storage.
func (t *Texture) Destroy() {
	t.destroyed = true
	t.pix = nil
}

// Destroyed reports whether Destroy has been called.
func (t *Texture) Destroyed() bool { return t.destroyed }

// At returns the raw channel values at (x, y), clamped to the edge.
func (t *Texture) At(x, y int) mgl32.Vec4 {
	if t.destroyed || t.width == 0 || t.height == 0 {
		return mgl32.Vec4{}
	}
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := (y*t.width + x) * 4
	return mgl32.Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Sample returns the nearest texel at normalized coordinates.
func (t *Texture) Sample(u, v float32) mgl32.Vec4 {
	x := int(math.Floor(float64(u * float32(t.width))))
	y := int(math.Floor(float64(v * float32(t.height))))
	return t.At(x, y)
}

// Texels returns a copy of the raw channel values, 4 per texel, row-major.
func (t *Texture) Texels() []float32 {
	out := make([]float32, len(t.pix))
	copy(out, t.pix)
	return out
}

// State returns the logical state values, decoding byte-packed pairs for
// FormatRGBA targets.
func (t *Texture) State() []float32 {
	out := make([]float32, len(t.pix))
	for i := 0; i+3 < len(t.pix); i += 4 {
		s := render.DecodeState(mgl32.Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}, t.format, t.scale)
		copy(out[i:i+4], s[:])
	}
	return out
}

// Image converts the texture to an 8-bit premultiplied RGBA image.
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for i, v := range t.pix {
		img.Pix[i] = uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return img
}

func (t *Texture) set(x, y int, c mgl32.Vec4) {
	i := (y*t.width + x) * 4
	for k := 0; k < 4; k++ {
		t.pix[i+k] = t.quantize(c[k])
	}
}

func (t *Texture) quantize(v float32) float32 {
	switch t.format {
	case render.FormatFloat:
		return v
	case render.FormatHalfFloat:
		return render.QuantizeHalf(v)
	default:
		return float32(math.Round(float64(min(max(v, 0), 1))*255)) / 255
	}
}

// blend combines src into the texel at (x, y) using premultiplied alpha.
func (t *Texture) blend(x, y int, src mgl32.Vec4, mode render.BlendMode) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	switch mode {
	case render.BlendNormal:
		dst := t.At(x, y)
		src = src.Add(dst.Mul(1 - src[3]))
	case render.BlendAdd:
		src = src.Add(t.At(x, y))
	}
	t.set(x, y, src)
}

func (t *Texture) fill(c mgl32.Vec4) {
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			t.set(x, y, c)
		}
	}
}

// upload writes seed values, encoding them the way a GPU upload of the same
// data would land in the target.
func (t *Texture) upload(seed []float32) error {
	if t.format != render.FormatRGBA {
		for i, v := range seed {
			t.pix[i] = t.quantize(v)
		}
		return nil
	}
	data, err := render.EncodeTexels(render.FormatRGBA, seed, t.scale)
	if err != nil {
		return err
	}
	for i, b := range data {
		t.pix[i] = float32(b) / 255
	}
	return nil
}

// uploadImage copies an image whose origin is (0, 0).
func (t *Texture) uploadImage(img *image.RGBA) {
	for y := 0; y < t.height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < t.width; x++ {
			i := (y*t.width + x) * 4
			for k := 0; k < 4; k++ {
				t.pix[i+k] = float32(row[x*4+k]) / 255
			}
		}
	}
}
