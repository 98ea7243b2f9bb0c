// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelDataSize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		format PixelFormat
		want   int
	}{
		{"grayscale", 16, 16, PixelFormatGrayscale, 256},
		{"gray alpha", 16, 16, PixelFormatGrayAlpha, 512},
		{"r5g6b5", 8, 8, PixelFormatR5G6B5, 128},
		{"rgb", 10, 10, PixelFormatR8G8B8, 300},
		{"rgba", 1, 1, PixelFormatR8G8B8A8, 4},
		{"r32", 4, 4, PixelFormatR32, 64},
		{"rgb32f", 2, 2, PixelFormatR32G32B32, 48},
		{"rgba32f", 2, 2, PixelFormatR32G32B32A32, 64},
		{"dxt1", 8, 8, PixelFormatDXT1RGB, 32},
		{"dxt5", 8, 8, PixelFormatDXT5RGBA, 64},
		{"astc8x8", 16, 16, PixelFormatASTC8x8RGBA, 64},
		{"dxt1 below block", 2, 2, PixelFormatDXT1RGBA, 8},
		{"etc1 below block", 1, 1, PixelFormatETC1RGB, 16},
		{"dxt3 below block", 2, 2, PixelFormatDXT3RGBA, 16},
		{"astc4x4 below block", 2, 2, PixelFormatASTC4x4RGBA, 16},
		{"astc8x8 below block", 2, 2, PixelFormatASTC8x8RGBA, 1},
		{"uncompressed below block", 2, 2, PixelFormatR8G8B8A8, 16},
		{"unknown", 4, 4, PixelFormat(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PixelDataSize(tt.w, tt.h, tt.format))
		})
	}
}

func TestMipChainSize(t *testing.T) {
	// 4x4 + 2x2 + 1x1 RGBA
	assert.Equal(t, (16+4+1)*4, MipChainSize(4, 4, 3, PixelFormatR8G8B8A8))
	// non-square chain clamps the short side at 1
	assert.Equal(t, (8*2+4*1+2*1+1*1)*1, MipChainSize(8, 2, 4, PixelFormatGrayscale))
}

func TestPixelFormatString(t *testing.T) {
	assert.Equal(t, "GRAYSCALE", PixelFormatGrayscale.String())
	assert.Equal(t, "ETC2_RGBA", PixelFormatETC2EACRGBA.String())
	assert.Equal(t, "ASTC_8x8_RGBA", PixelFormatASTC8x8RGBA.String())
	assert.Equal(t, "UNKNOWN", PixelFormat(99).String())
}

func TestPixelFormatFamilies(t *testing.T) {
	assert.False(t, PixelFormatR8G8B8A8.Compressed())
	assert.True(t, PixelFormatDXT1RGB.Compressed())
	assert.Equal(t, FamilyDXT, PixelFormatDXT5RGBA.Family())
	assert.Equal(t, FamilyETC1, PixelFormatETC1RGB.Family())
	assert.Equal(t, FamilyETC2, PixelFormatETC2RGB.Family())
	assert.Equal(t, FamilyPVRT, PixelFormatPVRTRGBA.Family())
	assert.Equal(t, FamilyASTC, PixelFormatASTC4x4RGBA.Family())
	assert.Equal(t, FamilyNone, PixelFormatR32.Family())
}

func TestCapabilitiesSupportsFormat(t *testing.T) {
	caps := Capabilities{CompressedDXT: true}
	assert.True(t, caps.SupportsFormat(PixelFormatR8G8B8A8))
	assert.True(t, caps.SupportsFormat(PixelFormatDXT1RGB))
	assert.False(t, caps.SupportsFormat(PixelFormatETC2RGB))
	assert.False(t, caps.SupportsFormat(PixelFormatR32))
	assert.False(t, caps.SupportsFormat(PixelFormat(0)))

	caps.FloatTextures = true
	assert.True(t, caps.SupportsFormat(PixelFormatR32G32B32A32))
}

func TestUniformTypeComponents(t *testing.T) {
	assert.Equal(t, 1, UniformFloat.Components())
	assert.Equal(t, 3, UniformIVec3.Components())
	assert.Equal(t, 4, UniformUIVec4.Components())
	assert.Equal(t, 1, UniformSampler2D.Components())
	assert.False(t, UniformVec4.Integer())
	assert.True(t, UniformInt.Integer())
}

func TestLocations(t *testing.T) {
	l := NewLocations()
	for i := range l {
		assert.Equal(t, -1, l[i])
	}
	l[LocMatrixMVP] = 7
	assert.Equal(t, 7, l.Get(LocMatrixMVP))
	assert.Equal(t, LocMapAlbedo, LocMapDiffuse)
	assert.Equal(t, ShaderLocation(25), LocMapBRDF)
}
