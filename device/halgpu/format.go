// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/immgl/device"
)

// formatInfo describes how a device pixel format is stored on the GPU.
//
// WebGPU has no 24-bit, luminance or 16-bit packed color formats, so those
// are widened to RGBA8 on upload and narrowed again on readback.
type formatInfo struct {
	// GPU is the texture format the data is stored in.
	GPU gputypes.TextureFormat

	// SrcBytes is the size of one pixel in the caller's layout.
	SrcBytes int

	// GPUBytes is the size of one pixel as stored on the GPU.
	GPUBytes int

	// widen converts caller pixels to GPU pixels. nil means identical.
	widen func(src []byte) []byte

	// narrow converts GPU pixels back to caller pixels. nil means identical.
	narrow func(src []byte) []byte
}

// formatTable lists the pixel formats this device can store. Compressed
// formats and R9G9B9E5 are absent: the device does not enable the optional
// texture compression features.
var formatTable = map[device.PixelFormat]formatInfo{
	device.PixelFormatGrayscale: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 1, GPUBytes: 4,
		widen: grayToRGBA, narrow: rgbaToGray,
	},
	device.PixelFormatGrayAlpha: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 2, GPUBytes: 4,
		widen: grayAlphaToRGBA, narrow: rgbaToGrayAlpha,
	},
	device.PixelFormatR5G6B5: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 2, GPUBytes: 4,
		widen: r5g6b5ToRGBA, narrow: rgbaToR5G6B5,
	},
	device.PixelFormatR8G8B8: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 3, GPUBytes: 4,
		widen: rgbToRGBA, narrow: rgbaToRGB,
	},
	device.PixelFormatR5G5B5A1: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 2, GPUBytes: 4,
		widen: r5g5b5a1ToRGBA, narrow: rgbaToR5G5B5A1,
	},
	device.PixelFormatR4G4B4A4: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 2, GPUBytes: 4,
		widen: r4g4b4a4ToRGBA, narrow: rgbaToR4G4B4A4,
	},
	device.PixelFormatR8G8B8A8: {
		GPU: gputypes.TextureFormatRGBA8Unorm, SrcBytes: 4, GPUBytes: 4,
	},
	device.PixelFormatR32: {
		GPU: gputypes.TextureFormatR32Float, SrcBytes: 4, GPUBytes: 4,
	},
	device.PixelFormatR32G32B32: {
		GPU: gputypes.TextureFormatRGBA32Float, SrcBytes: 12, GPUBytes: 16,
		widen: rgb32fToRGBA32f, narrow: rgba32fToRGB32f,
	},
	device.PixelFormatR32G32B32A32: {
		GPU: gputypes.TextureFormatRGBA32Float, SrcBytes: 16, GPUBytes: 16,
	},
}

// depthFormat backs depth textures and renderbuffers.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

func lookupFormat(f device.PixelFormat) (formatInfo, bool) {
	info, ok := formatTable[f]
	return info, ok
}

// toGPU converts caller pixels to the GPU layout.
func (fi formatInfo) toGPU(src []byte) []byte {
	if fi.widen == nil {
		return src
	}
	return fi.widen(src)
}

// fromGPU converts GPU pixels to the caller layout.
func (fi formatInfo) fromGPU(src []byte) []byte {
	if fi.narrow == nil {
		return src
	}
	return fi.narrow(src)
}

func grayToRGBA(src []byte) []byte {
	dst := make([]byte, len(src)*4)
	for i, g := range src {
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = g, g, g, 255
	}
	return dst
}

func rgbaToGray(src []byte) []byte {
	dst := make([]byte, len(src)/4)
	for i := range dst {
		dst[i] = src[i*4]
	}
	return dst
}

func grayAlphaToRGBA(src []byte) []byte {
	n := len(src) / 2
	dst := make([]byte, n*4)
	for i := 0; i < n; i++ {
		g, a := src[i*2], src[i*2+1]
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = g, g, g, a
	}
	return dst
}

func rgbaToGrayAlpha(src []byte) []byte {
	n := len(src) / 4
	dst := make([]byte, n*2)
	for i := 0; i < n; i++ {
		dst[i*2], dst[i*2+1] = src[i*4], src[i*4+3]
	}
	return dst
}

func rgbToRGBA(src []byte) []byte {
	n := len(src) / 3
	dst := make([]byte, n*4)
	for i := 0; i < n; i++ {
		copy(dst[i*4:i*4+3], src[i*3:i*3+3])
		dst[i*4+3] = 255
	}
	return dst
}

func rgbaToRGB(src []byte) []byte {
	n := len(src) / 4
	dst := make([]byte, n*3)
	for i := 0; i < n; i++ {
		copy(dst[i*3:i*3+3], src[i*4:i*4+3])
	}
	return dst
}

// expand scales an n-bit channel value to 8 bits.
func expand(v uint16, bits uint) byte {
	top := uint32(1)<<bits - 1
	return byte((uint32(v)*255 + top/2) / top)
}

// quantize scales an 8-bit channel value to n bits.
func quantize(v byte, bits uint) uint16 {
	top := uint32(1)<<bits - 1
	return uint16((uint32(v)*top + 127) / 255)
}

// unpack16 widens 16-bit packed pixels. shifts and bits give each channel's
// position in R, G, B, A order; a channel with zero bits is opaque.
func unpack16(src []byte, shifts, bits [4]uint) []byte {
	n := len(src) / 2
	dst := make([]byte, n*4)
	for i := 0; i < n; i++ {
		p := binary.LittleEndian.Uint16(src[i*2:])
		for c := 0; c < 4; c++ {
			if bits[c] == 0 {
				dst[i*4+c] = 255
				continue
			}
			dst[i*4+c] = expand(p>>shifts[c]&(1<<bits[c]-1), bits[c])
		}
	}
	return dst
}

func pack16(src []byte, shifts, bits [4]uint) []byte {
	n := len(src) / 4
	dst := make([]byte, n*2)
	for i := 0; i < n; i++ {
		var p uint16
		for c := 0; c < 4; c++ {
			if bits[c] == 0 {
				continue
			}
			p |= quantize(src[i*4+c], bits[c]) << shifts[c]
		}
		binary.LittleEndian.PutUint16(dst[i*2:], p)
	}
	return dst
}

var (
	r5g6b5Shifts   = [4]uint{11, 5, 0, 0}
	r5g6b5Bits     = [4]uint{5, 6, 5, 0}
	r5g5b5a1Shifts = [4]uint{11, 6, 1, 0}
	r5g5b5a1Bits   = [4]uint{5, 5, 5, 1}
	r4g4b4a4Shifts = [4]uint{12, 8, 4, 0}
	r4g4b4a4Bits   = [4]uint{4, 4, 4, 4}
)

func r5g6b5ToRGBA(src []byte) []byte   { return unpack16(src, r5g6b5Shifts, r5g6b5Bits) }
func rgbaToR5G6B5(src []byte) []byte   { return pack16(src, r5g6b5Shifts, r5g6b5Bits) }
func r5g5b5a1ToRGBA(src []byte) []byte { return unpack16(src, r5g5b5a1Shifts, r5g5b5a1Bits) }
func rgbaToR5G5B5A1(src []byte) []byte { return pack16(src, r5g5b5a1Shifts, r5g5b5a1Bits) }
func r4g4b4a4ToRGBA(src []byte) []byte { return unpack16(src, r4g4b4a4Shifts, r4g4b4a4Bits) }
func rgbaToR4G4B4A4(src []byte) []byte { return pack16(src, r4g4b4a4Shifts, r4g4b4a4Bits) }

func rgb32fToRGBA32f(src []byte) []byte {
	n := len(src) / 12
	dst := make([]byte, n*16)
	one := math.Float32bits(1)
	for i := 0; i < n; i++ {
		copy(dst[i*16:i*16+12], src[i*12:i*12+12])
		binary.LittleEndian.PutUint32(dst[i*16+12:], one)
	}
	return dst
}

func rgba32fToRGB32f(src []byte) []byte {
	n := len(src) / 16
	dst := make([]byte, n*12)
	for i := 0; i < n; i++ {
		copy(dst[i*12:i*12+12], src[i*16:i*16+12])
	}
	return dst
}

// copyPitchAlignment is the row alignment WebGPU requires for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedRow returns the padded row size for a texture copy.
func alignedRow(bytesPerRow uint32) uint32 {
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// stripRows removes the per-row padding of an aligned texture readback.
func stripRows(src []byte, rowBytes, alignedBytes, rows int) []byte {
	if rowBytes == alignedBytes {
		return src[:rowBytes*rows]
	}
	dst := make([]byte, rowBytes*rows)
	for r := 0; r < rows; r++ {
		copy(dst[r*rowBytes:(r+1)*rowBytes], src[r*alignedBytes:r*alignedBytes+rowBytes])
	}
	return dst
}
