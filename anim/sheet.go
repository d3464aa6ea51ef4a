// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fx/render"
)

// SliceSheet cuts a sprite sheet texture into cols x rows frames, read
// left to right and top to bottom, each lasting duration. Every frame
// shares sheet and selects its cell through Rect.
func SliceSheet(sheet render.Texture, cols, rows int, duration float32) ([]Frame, error) {
	cells, err := sheetCells(sheet.Width(), sheet.Height(), cols, rows)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, len(cells))
	for i, r := range cells {
		frames[i] = Frame{Texture: sheet, Rect: r, Duration: duration}
	}
	return frames, nil
}

// SheetTextures cuts img into cols x rows cells and uploads each cell as
// its own texture. Use it for devices or programs that cannot select a
// sub-rectangle. Textures belong to the caller.
func SheetTextures(dev render.Device, label string, img image.Image, cols, rows int, duration float32) ([]Frame, error) {
	b := img.Bounds()
	cells, err := sheetCells(b.Dx(), b.Dy(), cols, rows)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, 0, len(cells))
	for i, r := range cells {
		tex, err := dev.CreateTexture(fmt.Sprintf("%s_%d", label, i), render.SubImage(img, r.Add(b.Min)))
		if err != nil {
			for _, f := range frames {
				f.Texture.Destroy()
			}
			return nil, fmt.Errorf("anim: frame %d: %w", i, err)
		}
		frames = append(frames, Frame{Texture: tex, Duration: duration})
	}
	return frames, nil
}

func sheetCells(width, height, cols, rows int) ([]image.Rectangle, error) {
	if cols <= 0 || rows <= 0 || width < cols || height < rows {
		return nil, fmt.Errorf("%w: %dx%d cells of a %dx%d sheet", ErrSheetGrid, cols, rows, width, height)
	}
	cw, ch := width/cols, height/rows
	cells := make([]image.Rectangle, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cells = append(cells, image.Rect(x*cw, y*ch, (x+1)*cw, (y+1)*ch))
		}
	}
	return cells, nil
}

// FrameRect converts rect within a width x height texture to normalized
// (x, y, w, h). An empty rect selects the whole texture.
func FrameRect(rect image.Rectangle, width, height int) mgl32.Vec4 {
	if rect.Empty() || width <= 0 || height <= 0 {
		return mgl32.Vec4{0, 0, 1, 1}
	}
	w, h := float32(width), float32(height)
	return mgl32.Vec4{
		float32(rect.Min.X) / w,
		float32(rect.Min.Y) / h,
		float32(rect.Dx()) / w,
		float32(rect.Dy()) / h,
	}
}
