// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/device/recorder"
	"github.com/gogpu/immgl/internal/mipmap"
)

func textureParam(t *testing.T, rec *recorder.Recorder, tex device.Texture, p device.TextureParameter) int32 {
	t.Helper()
	v, ok := rec.TextureParameter(tex, p)
	require.True(t, ok, "parameter %#x not set", uint32(p))
	return v
}

func TestLoadTextureSingleLevel(t *testing.T) {
	rc, rec := newTestContext(t)
	tex := rc.LoadTexture(make([]byte, 8*8*4), 8, 8, device.PixelFormatR8G8B8A8, 1)
	require.True(t, tex.Valid())

	assert.Equal(t, device.WrapRepeat, textureParam(t, rec, tex, device.ParamWrapS))
	assert.Equal(t, device.WrapRepeat, textureParam(t, rec, tex, device.ParamWrapT))
	assert.Equal(t, device.FilterNearest, textureParam(t, rec, tex, device.ParamMagFilter))
	assert.Equal(t, device.FilterNearest, textureParam(t, rec, tex, device.ParamMinFilter))

	info, ok := rec.TextureInfo(tex)
	require.True(t, ok)
	assert.Equal(t, device.Texture2D, info.Kind)
	assert.Equal(t, 1, info.MipLevels)
}

func TestLoadTextureMipmaps(t *testing.T) {
	rc, rec := newTestContext(t)
	data := make([]byte, 4*4*4+2*2*4+1*1*4)
	tex := rc.LoadTexture(data, 4, 4, device.PixelFormatR8G8B8A8, 3)
	require.True(t, tex.Valid())

	assert.Equal(t, device.FilterLinear, textureParam(t, rec, tex, device.ParamMagFilter))
	assert.Equal(t, device.FilterLinearMipLinear, textureParam(t, rec, tex, device.ParamMinFilter))

	creates := rec.CallsOf(recorder.OpCreateTexture)
	require.Len(t, creates, 1)
	assert.Equal(t, 3, creates[0].Count)
	assert.Equal(t, "R8G8B8A8", creates[0].Format)
}

func TestLoadTextureShortMipChain(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)

	tex := rc.LoadTexture(make([]byte, 4*4*4+2*2*4), 4, 4, device.PixelFormatR8G8B8A8, 3)
	require.True(t, tex.Valid())
	info, _ := rec.TextureInfo(tex)
	assert.Equal(t, 2, info.MipLevels)
	assert.Contains(t, logs.String(), "texture data shorter than mip chain")

	assert.False(t, rc.LoadTexture(make([]byte, 10), 4, 4, device.PixelFormatR8G8B8A8, 1).Valid())
}

func TestLoadTextureNilData(t *testing.T) {
	rc, rec := newTestContext(t)
	tex := rc.LoadTexture(nil, 16, 16, device.PixelFormatR8G8B8, 4)
	require.True(t, tex.Valid())
	info, _ := rec.TextureInfo(tex)
	assert.Equal(t, 4, info.MipLevels)
}

func TestLoadTextureCompressed(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)

	tex := rc.LoadTexture(make([]byte, 8), 4, 4, device.PixelFormatDXT1RGB, 1)
	assert.False(t, tex.Valid())
	assert.Zero(t, rec.Count(recorder.OpCreateTexture), "rejected before reaching the device")
	assert.Contains(t, logs.String(), "compressed texture format not supported")

	caps := recorder.DefaultCapabilities()
	caps.CompressedDXT = true
	rc2, rec2 := newTestContextOn(t, recorder.New(recorder.WithCapabilities(caps)))
	tex = rc2.LoadTexture(make([]byte, 8), 4, 4, device.PixelFormatDXT1RGB, 1)
	assert.True(t, tex.Valid())
	assert.Equal(t, 1, rec2.Count(recorder.OpCreateTexture))
}

func TestLoadTextureDeviceRefuses(t *testing.T) {
	caps := recorder.DefaultCapabilities()
	caps.FloatTextures = false
	rc, _ := newTestContextOn(t, recorder.New(recorder.WithCapabilities(caps)))
	assert.False(t, rc.LoadTexture(nil, 4, 4, device.PixelFormatR32, 1).Valid())
}

func TestLoadTextureDepth(t *testing.T) {
	rc, rec := newTestContext(t)

	tex := rc.LoadTextureDepth(64, 32, false)
	require.True(t, tex.Valid())
	info, _ := rec.TextureInfo(tex)
	assert.Equal(t, device.TextureDepth, info.Kind)
	assert.Equal(t, device.WrapClamp, textureParam(t, rec, tex, device.ParamWrapS))
	assert.Equal(t, device.FilterNearest, textureParam(t, rec, tex, device.ParamMinFilter))

	rb := rc.LoadTextureDepth(64, 32, true)
	require.True(t, rb.Valid())
	info, _ = rec.TextureInfo(rb)
	assert.Equal(t, device.TextureRenderbuffer, info.Kind)
	_, ok := rec.TextureParameter(rb, device.ParamMinFilter)
	assert.False(t, ok, "renderbuffers have no sampler state")
}

func TestLoadTextureDepthFallsBackToRenderbuffer(t *testing.T) {
	caps := recorder.DefaultCapabilities()
	caps.DepthTextures = false
	rc, rec := newTestContextOn(t, recorder.New(recorder.WithCapabilities(caps)))

	tex := rc.LoadTextureDepth(64, 64, false)
	require.True(t, tex.Valid())
	info, _ := rec.TextureInfo(tex)
	assert.Equal(t, device.TextureRenderbuffer, info.Kind)
}

func TestLoadTextureCubemap(t *testing.T) {
	rc, rec := newTestContext(t)
	face := device.PixelDataSize(8, 8, device.PixelFormatR8G8B8A8)

	tex := rc.LoadTextureCubemap(make([]byte, 6*face), 8, device.PixelFormatR8G8B8A8)
	require.True(t, tex.Valid())
	info, _ := rec.TextureInfo(tex)
	assert.Equal(t, device.TextureCubemap, info.Kind)
	assert.Equal(t, device.WrapClamp, textureParam(t, rec, tex, device.ParamWrapT))
	assert.Equal(t, device.FilterLinear, textureParam(t, rec, tex, device.ParamMagFilter))

	assert.True(t, rc.LoadTextureCubemap(nil, 8, device.PixelFormatR8G8B8A8).Valid())
	assert.False(t, rc.LoadTextureCubemap(make([]byte, 5*face), 8, device.PixelFormatR8G8B8A8).Valid())
	assert.False(t, rc.LoadTextureCubemap(nil, 8, device.PixelFormatETC2RGB).Valid())
}

func TestUpdateAndReadTexture(t *testing.T) {
	rc, _ := newTestContext(t)
	tex := rc.LoadTexture(make([]byte, 2*2*4), 2, 2, device.PixelFormatR8G8B8A8, 1)
	require.True(t, tex.Valid())

	rc.UpdateTexture(tex, 1, 1, 1, 1, device.PixelFormatR8G8B8A8, []byte{255, 0, 0, 255})
	got := rc.ReadTexturePixels(tex, 2, 2, device.PixelFormatR8G8B8A8)
	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 255, 0, 0, 255,
	}
	assert.Equal(t, want, got)
}

func TestUpdateTextureRejects(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)
	tex := rc.LoadTexture(make([]byte, 2*2*4), 2, 2, device.PixelFormatR8G8B8A8, 1)
	rec.Reset()

	rc.UpdateTexture(tex, 0, 0, 1, 1, device.PixelFormatDXT5RGBA, make([]byte, 16))
	assert.Zero(t, rec.Count(recorder.OpUpdateTexture))

	rc.UpdateTexture(tex, 2, 2, 1, 1, device.PixelFormatR8G8B8A8, make([]byte, 4))
	assert.Equal(t, 1, rec.Count(recorder.OpUpdateTexture))
	assert.Contains(t, logs.String(), "failed to update texture")

	assert.Nil(t, rc.ReadTexturePixels(tex, 2, 2, device.PixelFormatASTC4x4RGBA))
	assert.Nil(t, rc.ReadTexturePixels(device.Texture(999), 2, 2, device.PixelFormatR8G8B8A8))
}

func TestGenTextureMipmaps(t *testing.T) {
	rc, rec := newTestContext(t)
	base := bytes.Repeat([]byte{200, 100, 50, 255}, 4*4)
	tex := rc.LoadTexture(base, 4, 4, device.PixelFormatR8G8B8A8, 1)
	require.True(t, tex.Valid())
	rec.Reset()

	assert.Equal(t, 3, rc.GenTextureMipmaps(tex, 4, 4, device.PixelFormatR8G8B8A8))

	updates := rec.CallsOf(recorder.OpUpdateTexture)
	require.Len(t, updates, 2)
	assert.Equal(t, 1, updates[0].Unit)
	assert.Equal(t, device.Viewport{Width: 2, Height: 2}, updates[0].Rect)
	assert.Equal(t, 2, updates[1].Unit)
	assert.Equal(t, device.Viewport{Width: 1, Height: 1}, updates[1].Rect)

	lvl, err := rec.ReadTexture(tex, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 100, 50, 255}, lvl)
	assert.Equal(t, device.FilterLinearMipLinear, textureParam(t, rec, tex, device.ParamMinFilter))
}

func TestGenTextureMipmapsNonPowerOfTwo(t *testing.T) {
	rc, rec := newTestContext(t)
	base := make([]byte, 6*6*4)
	for i := 0; i < 6*6; i++ {
		base[i*4], base[i*4+1], base[i*4+2], base[i*4+3] = byte(i*7), byte(255-i*7), byte(i%6*40), 255
	}
	tex := rc.LoadTexture(base, 6, 6, device.PixelFormatR8G8B8A8, 1)
	require.True(t, tex.Valid())
	rec.Reset()

	assert.Equal(t, 3, rc.GenTextureMipmaps(tex, 6, 6, device.PixelFormatR8G8B8A8))

	want, err := mipmap.Generate(base, 6, 6, mipmap.RGBA, mipmap.BiLinear)
	require.NoError(t, err)
	for level := 1; level < 3; level++ {
		got, err := rec.ReadTexture(tex, level)
		require.NoError(t, err)
		assert.Equal(t, want[level], got, "level %d", level)
	}
}

func TestGenTextureMipmapsFilterOption(t *testing.T) {
	tests := []struct {
		filter MipmapFilter
		kernel mipmap.Filter
	}{
		{MipmapBox, mipmap.Box},
		{MipmapBiLinear, mipmap.BiLinear},
		{MipmapCatmullRom, mipmap.CatmullRom},
	}
	base := make([]byte, 8*4)
	for i := range base {
		base[i] = byte(i * 9)
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			rc, rec := newTestContext(t, WithMipmapFilter(tt.filter))
			tex := rc.LoadTexture(base, 4, 8, device.PixelFormatGrayscale, 1)
			require.True(t, tex.Valid())

			assert.Equal(t, 4, rc.GenTextureMipmaps(tex, 4, 8, device.PixelFormatGrayscale))
			want, err := mipmap.Generate(base, 4, 8, mipmap.Gray, tt.kernel)
			require.NoError(t, err)
			got, err := rec.ReadTexture(tex, 1)
			require.NoError(t, err)
			assert.Equal(t, want[1], got)
		})
	}
}

func TestMipmapFilterKernel(t *testing.T) {
	assert.Equal(t, mipmap.Box, MipmapAuto.kernel(64, 32))
	assert.Equal(t, mipmap.BiLinear, MipmapAuto.kernel(48, 32))
	assert.Equal(t, mipmap.BiLinear, MipmapFilter("").kernel(5, 5))
	assert.Equal(t, mipmap.CatmullRom, MipmapCatmullRom.kernel(64, 64))
}

func TestTextureParametersDeviceFailure(t *testing.T) {
	logs := captureLogs(t)
	rc, _ := newTestContext(t)
	rc.TextureParameters(device.Texture(999), device.ParamWrapS, device.WrapClamp)

	out := logs.String()
	assert.Contains(t, out, "failed to set texture parameter")
	assert.Contains(t, out, "id=999")
}

func TestGenTextureMipmapsUnsupported(t *testing.T) {
	rc, rec := newTestContext(t)
	tex := rc.LoadTexture(make([]byte, 4*4*2), 4, 4, device.PixelFormatR5G6B5, 1)
	require.True(t, tex.Valid())
	rec.Reset()

	assert.Equal(t, 1, rc.GenTextureMipmaps(tex, 4, 4, device.PixelFormatR5G6B5))
	assert.Zero(t, rec.Count(recorder.OpUpdateTexture))
	assert.Equal(t, 1, rc.GenTextureMipmaps(device.Texture(999), 4, 4, device.PixelFormatR8G8B8A8))
}

func TestTextureParametersResetAnisotropy(t *testing.T) {
	rc, rec := newTestContext(t)
	tex := rc.DefaultTexture()

	rc.TextureParameters(tex, device.ParamWrapS, device.WrapMirrorRepeat)
	calls := rec.CallsOf(recorder.OpSetTextureParameter)
	require.Len(t, calls, 2)
	assert.Equal(t, int(device.ParamAnisotropy), calls[0].Unit)
	assert.Equal(t, []int32{1}, calls[0].Ints)
	assert.Equal(t, int(device.ParamWrapS), calls[1].Unit)
	assert.Equal(t, device.WrapMirrorRepeat, textureParam(t, rec, tex, device.ParamWrapS))
}

func TestTextureParametersAnisotropy(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)
	tex := rc.DefaultTexture()

	rc.TextureParameters(tex, device.ParamAnisotropy, 8)
	assert.Equal(t, int32(8), textureParam(t, rec, tex, device.ParamAnisotropy))

	rc.CubemapParameters(tex, device.ParamAnisotropy, 32)
	assert.Equal(t, int32(32), textureParam(t, rec, tex, device.ParamAnisotropy))
	assert.Contains(t, logs.String(), "maximum anisotropic filter level exceeded")
}

func TestTextureParametersNoAnisotropy(t *testing.T) {
	logs := captureLogs(t)
	caps := recorder.DefaultCapabilities()
	caps.Anisotropy = false
	rc, rec := newTestContextOn(t, recorder.New(recorder.WithCapabilities(caps)))
	tex := rc.DefaultTexture()

	rc.TextureParameters(tex, device.ParamAnisotropy, 4)
	assert.Zero(t, rec.Count(recorder.OpSetTextureParameter))
	assert.Contains(t, logs.String(), "anisotropic filtering not supported")

	rc.TextureParameters(tex, device.ParamMipmapBias, -50)
	assert.Equal(t, int32(-50), textureParam(t, rec, tex, device.ParamMipmapBias))
	assert.Equal(t, 1, rec.Count(recorder.OpSetTextureParameter))
}

func TestUnloadTexture(t *testing.T) {
	rc, rec := newTestContext(t)
	live := rec.Live()
	tex := rc.LoadTexture(nil, 4, 4, device.PixelFormatGrayscale, 1)
	require.Equal(t, live+1, rec.Live())
	rc.UnloadTexture(tex)
	assert.Equal(t, live, rec.Live())
}

func TestPixelHelpers(t *testing.T) {
	assert.Equal(t, 4*4*4, PixelDataSize(4, 4, device.PixelFormatR8G8B8A8))
	assert.Equal(t, 8, PixelDataSize(4, 4, device.PixelFormatDXT1RGB))
	assert.Equal(t, "R8G8B8A8", PixelFormatName(device.PixelFormatR8G8B8A8))
	assert.Equal(t, "GRAYSCALE", PixelFormatName(device.PixelFormatGrayscale))
}
