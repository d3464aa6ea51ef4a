// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/x448/float16"
)

// Byte-packed RGBA targets store two logical channels per texel. Each
// logical value in [-scale, scale] is quantized to 16 bits and split into a
// (hi, lo) byte pair: channel 0 goes to R,G and channel 1 to B,A.

const pairMax = 65535

// EncodePair quantizes v to a (hi, lo) byte pair.
func EncodePair(v, scale float32) (hi, lo uint8) {
	if scale <= 0 {
		scale = 1
	}
	n := (v/scale + 1) / 2
	n = min(max(n, 0), 1)
	q := uint16(math.Round(float64(n) * pairMax))
	return uint8(q >> 8), uint8(q)
}

// DecodePair reverses EncodePair.
func DecodePair(hi, lo uint8, scale float32) float32 {
	if scale <= 0 {
		scale = 1
	}
	q := uint16(hi)<<8 | uint16(lo)
	return (float32(q)/pairMax*2 - 1) * scale
}

// PairStep returns the quantization step of EncodePair for scale.
func PairStep(scale float32) float32 {
	if scale <= 0 {
		scale = 1
	}
	return 2 * scale / pairMax
}

// EncodeState converts logical state values into channel values ready to be
// written to a target of the given format. Float formats pass through;
// RGBA packs channels 0 and 1 into normalized byte pairs.
func EncodeState(v mgl32.Vec4, format Format, scale float32) mgl32.Vec4 {
	if format != FormatRGBA {
		return v
	}
	h0, l0 := EncodePair(v[0], scale)
	h1, l1 := EncodePair(v[1], scale)
	return mgl32.Vec4{
		float32(h0) / 255, float32(l0) / 255,
		float32(h1) / 255, float32(l1) / 255,
	}
}

// DecodeState reverses EncodeState for a texel read from a target.
func DecodeState(c mgl32.Vec4, format Format, scale float32) mgl32.Vec4 {
	if format != FormatRGBA {
		return c
	}
	return mgl32.Vec4{
		DecodePair(unorm8(c[0]), unorm8(c[1]), scale),
		DecodePair(unorm8(c[2]), unorm8(c[3]), scale),
		0, 0,
	}
}

func unorm8(c float32) uint8 {
	return uint8(math.Round(float64(min(max(c, 0), 1)) * 255))
}

// EncodeTexels converts logical values (4 per texel) into the upload bytes
// of a target with the given format.
func EncodeTexels(format Format, values []float32, scale float32) ([]byte, error) {
	if len(values)%4 != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of 4", ErrSeedSize, len(values))
	}
	texels := len(values) / 4
	out := make([]byte, texels*format.BytesPerTexel())

	switch format {
	case FormatFloat:
		for i, v := range values {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
	case FormatHalfFloat:
		for i, v := range values {
			binary.LittleEndian.PutUint16(out[i*2:], float16.Fromfloat32(v).Bits())
		}
	case FormatRGBA:
		for t := 0; t < texels; t++ {
			out[t*4+0], out[t*4+1] = EncodePair(values[t*4+0], scale)
			out[t*4+2], out[t*4+3] = EncodePair(values[t*4+1], scale)
		}
	default:
		return nil, fmt.Errorf("render: encode texels: unresolved format %s", format)
	}
	return out, nil
}

// DecodeTexels converts target bytes back into logical values, 4 per texel.
// Byte-packed RGBA decodes channels 2 and 3 as zero.
func DecodeTexels(format Format, data []byte, scale float32) ([]float32, error) {
	bpt := format.BytesPerTexel()
	if format == FormatAuto || len(data)%bpt != 0 {
		return nil, fmt.Errorf("render: decode texels: %d bytes for format %s", len(data), format)
	}
	texels := len(data) / bpt
	out := make([]float32, texels*4)

	switch format {
	case FormatFloat:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case FormatHalfFloat:
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32()
		}
	case FormatRGBA:
		for t := 0; t < texels; t++ {
			out[t*4+0] = DecodePair(data[t*4+0], data[t*4+1], scale)
			out[t*4+1] = DecodePair(data[t*4+2], data[t*4+3], scale)
		}
	}
	return out, nil
}

// QuantizeHalf rounds v to the nearest half-precision value.
func QuantizeHalf(v float32) float32 {
	return float16.Fromfloat32(v).Float32()
}
