// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/device"
)

func TestFormatTableCoversUncompressedFormats(t *testing.T) {
	for f := device.PixelFormatGrayscale; f <= device.PixelFormatR32G32B32A32; f++ {
		info, ok := lookupFormat(f)
		if f == device.PixelFormatR9G9B9E5 {
			assert.False(t, ok, "R9G9B9E5 has no storage format")
			continue
		}
		require.True(t, ok, f.String())
		assert.Equal(t, f.BitsPerPixel()/8, info.SrcBytes, f.String())
	}
	_, ok := lookupFormat(device.PixelFormatDXT1RGB)
	assert.False(t, ok)
}

func TestGrayRoundTrip(t *testing.T) {
	info, _ := lookupFormat(device.PixelFormatGrayscale)
	gpu := info.toGPU([]byte{0, 128, 255})
	assert.Equal(t, []byte{0, 0, 0, 255, 128, 128, 128, 255, 255, 255, 255, 255}, gpu)
	assert.Equal(t, []byte{0, 128, 255}, info.fromGPU(gpu))
}

func TestGrayAlphaRoundTrip(t *testing.T) {
	info, _ := lookupFormat(device.PixelFormatGrayAlpha)
	gpu := info.toGPU([]byte{10, 20})
	assert.Equal(t, []byte{10, 10, 10, 20}, gpu)
	assert.Equal(t, []byte{10, 20}, info.fromGPU(gpu))
}

func TestRGBWidensWithOpaqueAlpha(t *testing.T) {
	info, _ := lookupFormat(device.PixelFormatR8G8B8)
	gpu := info.toGPU([]byte{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, gpu)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, info.fromGPU(gpu))
}

func packed(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func TestPacked16(t *testing.T) {
	tests := []struct {
		name   string
		format device.PixelFormat
		src    uint16
		want   []byte
	}{
		{"565 red", device.PixelFormatR5G6B5, 0xF800, []byte{255, 0, 0, 255}},
		{"565 green", device.PixelFormatR5G6B5, 0x07E0, []byte{0, 255, 0, 255}},
		{"565 blue", device.PixelFormatR5G6B5, 0x001F, []byte{0, 0, 255, 255}},
		{"5551 opaque white", device.PixelFormatR5G5B5A1, 0xFFFF, []byte{255, 255, 255, 255}},
		{"5551 transparent red", device.PixelFormatR5G5B5A1, 0xF800, []byte{255, 0, 0, 0}},
		{"4444 alpha", device.PixelFormatR4G4B4A4, 0x000F, []byte{0, 0, 0, 255}},
		{"4444 half", device.PixelFormatR4G4B4A4, 0x8888, []byte{136, 136, 136, 136}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, _ := lookupFormat(tt.format)
			gpu := info.toGPU(packed(tt.src))
			assert.Equal(t, tt.want, gpu)
			assert.Equal(t, packed(tt.src), info.fromGPU(gpu))
		})
	}
}

func TestFloat3WidensWithOneAlpha(t *testing.T) {
	info, _ := lookupFormat(device.PixelFormatR32G32B32)
	assert.Equal(t, gputypes.TextureFormatRGBA32Float, info.GPU)

	src := device.AppendFloat32s(nil, []float32{0.25, 0.5, 0.75})
	gpu := info.toGPU(src)
	require.Len(t, gpu, 16)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(gpu[12:])))
	assert.Equal(t, src, info.fromGPU(gpu))
}

func TestIdentityFormatsShareBuffer(t *testing.T) {
	info, _ := lookupFormat(device.PixelFormatR8G8B8A8)
	src := []byte{1, 2, 3, 4}
	assert.Same(t, &src[0], &info.toGPU(src)[0])
}

func TestAlignedRow(t *testing.T) {
	assert.Equal(t, uint32(256), alignedRow(4))
	assert.Equal(t, uint32(256), alignedRow(256))
	assert.Equal(t, uint32(512), alignedRow(257))
}

func TestStripRows(t *testing.T) {
	src := make([]byte, 2*8)
	copy(src, []byte{1, 2, 3, 0, 0, 0, 0, 0, 4, 5, 6})
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, stripRows(src, 3, 8, 2))

	tight := []byte{1, 2, 3, 4}
	assert.Equal(t, tight, stripRows(tight, 2, 2, 2))
}
