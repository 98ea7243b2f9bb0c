// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/internal/mipmap"
)

// LoadTexture uploads a 2D texture with mipmaps levels packed one after the
// other in data. Each level halves the previous one down to 1x1. A nil data
// allocates uninitialized storage. It returns 0 if the format is not
// supported by the device or the device refuses the texture.
func (c *Context) LoadTexture(data []byte, width, height int, format device.PixelFormat, mipmaps int) device.Texture {
	caps := c.dev.Capabilities()
	if format.Compressed() && !caps.SupportsFormat(format) {
		Logger().Warn("immgl: compressed texture format not supported", "format", format)
		return 0
	}
	mipmaps = max(mipmaps, 1)

	var levels [][]byte
	if data != nil {
		levels = make([][]byte, 0, mipmaps)
		w, h, off := width, height, 0
		for i := 0; i < mipmaps; i++ {
			size := device.PixelDataSize(w, h, format)
			Logger().Debug("immgl: texture mip level", "level", i, "width", w, "height", h, "size", size, "offset", off)
			if off+size > len(data) {
				Logger().Warn("immgl: texture data shorter than mip chain", "level", i, "have", len(data), "need", off+size)
				mipmaps = i
				break
			}
			levels = append(levels, data[off:off+size])
			off += size
			w, h = max(w/2, 1), max(h/2, 1)
		}
		if mipmaps == 0 {
			return 0
		}
	}

	tex, err := c.dev.CreateTexture(device.TextureDescriptor{
		Kind:      device.Texture2D,
		Width:     width,
		Height:    height,
		Format:    format,
		MipLevels: mipmaps,
	}, levels)
	if err != nil {
		Logger().Warn("immgl: failed to load texture", "err", err)
		return 0
	}

	c.setTextureParams(tex, device.WrapRepeat, device.FilterNearest, device.FilterNearest)
	if mipmaps > 1 {
		c.setTextureParams(tex, 0, device.FilterLinear, device.FilterLinearMipLinear)
	}
	Logger().Info("immgl: texture loaded", "id", tex, "width", width, "height", height,
		"format", format, "mipmaps", mipmaps)
	return tex
}

// setTextureParams sets wrap (both axes, skipped when 0) and the filters.
func (c *Context) setTextureParams(tex device.Texture, wrap, mag, min int32) {
	if wrap != 0 {
		c.setTextureParam(tex, device.ParamWrapS, wrap)
		c.setTextureParam(tex, device.ParamWrapT, wrap)
	}
	c.setTextureParam(tex, device.ParamMagFilter, mag)
	c.setTextureParam(tex, device.ParamMinFilter, min)
}

// setTextureParam applies one sampler parameter, logging a device failure.
func (c *Context) setTextureParam(tex device.Texture, param device.TextureParameter, value int32) {
	if err := c.dev.SetTextureParameter(tex, param, value); err != nil {
		Logger().Warn("immgl: failed to set texture parameter", "id", tex, "param", param,
			"value", value, "err", err)
	}
}

// LoadTextureDepth creates a depth attachment. A sampleable depth texture
// is created when the device supports one and useRenderBuffer is false,
// a renderbuffer otherwise.
func (c *Context) LoadTextureDepth(width, height int, useRenderBuffer bool) device.Texture {
	kind := device.TextureRenderbuffer
	if !useRenderBuffer && c.dev.Capabilities().DepthTextures {
		kind = device.TextureDepth
	}
	tex, err := c.dev.CreateTexture(device.TextureDescriptor{
		Kind:      kind,
		Width:     width,
		Height:    height,
		MipLevels: 1,
	}, nil)
	if err != nil {
		Logger().Warn("immgl: failed to load depth texture", "err", err)
		return 0
	}
	if kind == device.TextureDepth {
		c.setTextureParams(tex, device.WrapClamp, device.FilterNearest, device.FilterNearest)
		Logger().Info("immgl: depth texture loaded", "id", tex)
	} else {
		Logger().Info("immgl: depth renderbuffer loaded", "id", tex)
	}
	return tex
}

// LoadTextureCubemap uploads six size x size faces packed in data in the
// order +X, -X, +Y, -Y, +Z, -Z. A nil data allocates empty faces, which is
// not possible for compressed formats.
func (c *Context) LoadTextureCubemap(data []byte, size int, format device.PixelFormat) device.Texture {
	faceSize := device.PixelDataSize(size, size, format)
	var levels [][]byte
	if data == nil {
		if format.Compressed() {
			Logger().Warn("immgl: empty cubemap creation does not support compressed formats", "format", format)
			return 0
		}
	} else {
		if len(data) < 6*faceSize {
			Logger().Warn("immgl: cubemap data shorter than six faces", "have", len(data), "need", 6*faceSize)
			return 0
		}
		levels = make([][]byte, 6)
		for i := range levels {
			levels[i] = data[i*faceSize : (i+1)*faceSize]
		}
	}
	tex, err := c.dev.CreateTexture(device.TextureDescriptor{
		Kind:      device.TextureCubemap,
		Width:     size,
		Height:    size,
		Format:    format,
		MipLevels: 1,
	}, levels)
	if err != nil {
		Logger().Warn("immgl: failed to load cubemap texture", "err", err)
		return 0
	}
	c.setTextureParams(tex, device.WrapClamp, device.FilterLinear, device.FilterLinear)
	Logger().Info("immgl: cubemap texture loaded", "id", tex, "size", size)
	return tex
}

// UpdateTexture replaces a rectangle of level 0. Compressed formats cannot
// be updated.
func (c *Context) UpdateTexture(tex device.Texture, x, y, width, height int, format device.PixelFormat, data []byte) {
	if format.Compressed() || !format.Valid() {
		Logger().Warn("immgl: failed to update texture for format", "id", tex, "format", format)
		return
	}
	err := c.dev.UpdateTexture(tex, device.TextureRegion{X: x, Y: y, Width: width, Height: height}, format, data)
	if err != nil {
		Logger().Warn("immgl: failed to update texture", "id", tex, "err", err)
	}
}

// ReadTexturePixels returns level 0 of tex, or nil for compressed formats
// and device failures.
func (c *Context) ReadTexturePixels(tex device.Texture, width, height int, format device.PixelFormat) []byte {
	if format.Compressed() || !format.Valid() {
		Logger().Warn("immgl: data retrieval not supported for pixel format", "id", tex, "format", format)
		return nil
	}
	data, err := c.dev.ReadTexture(tex, 0)
	if err != nil {
		Logger().Warn("immgl: failed to read texture", "id", tex, "err", err)
		return nil
	}
	if size := device.PixelDataSize(width, height, format); len(data) > size {
		data = data[:size]
	}
	return data
}

// GenTextureMipmaps fills the mip chain of tex from level 0 and returns the
// number of levels it now has. Levels are downscaled with the configured
// MipmapFilter. Only 8-bit uncompressed formats can be filtered; for others
// tex is left alone and 1 is returned.
func (c *Context) GenTextureMipmaps(tex device.Texture, width, height int, format device.PixelFormat) int {
	layout, ok := mipLayouts[format]
	if !ok {
		Logger().Warn("immgl: mipmap generation not supported for pixel format", "id", tex, "format", format)
		return 1
	}
	base, err := c.dev.ReadTexture(tex, 0)
	if err != nil {
		Logger().Warn("immgl: failed to read texture for mipmaps", "id", tex, "err", err)
		return 1
	}
	chain, err := mipmap.Generate(base, width, height, layout, c.cfg.MipmapFilter.kernel(width, height))
	if err != nil {
		Logger().Warn("immgl: failed to generate mipmaps", "id", tex, "err", err)
		return 1
	}
	n := 1
	for i := 1; i < len(chain); i++ {
		w, h := mipmap.Size(width, height, i)
		region := device.TextureRegion{Level: i, Width: w, Height: h}
		if err := c.dev.UpdateTexture(tex, region, format, chain[i]); err != nil {
			Logger().Warn("immgl: failed to upload mip level", "id", tex, "level", i, "err", err)
			break
		}
		n++
	}
	if n > 1 {
		c.setTextureParams(tex, 0, device.FilterLinear, device.FilterLinearMipLinear)
	}
	Logger().Info("immgl: mipmaps generated", "id", tex, "levels", n)
	return n
}

var mipLayouts = map[device.PixelFormat]mipmap.Layout{
	device.PixelFormatGrayscale: mipmap.Gray,
	device.PixelFormatGrayAlpha: mipmap.GrayAlpha,
	device.PixelFormatR8G8B8:    mipmap.RGB,
	device.PixelFormatR8G8B8A8:  mipmap.RGBA,
}

// UnloadTexture destroys tex.
func (c *Context) UnloadTexture(tex device.Texture) {
	c.dev.DestroyTexture(tex)
}

// TextureParameters sets a sampler parameter of a 2D texture. Anisotropy is
// reset to 1 before any parameter is applied. Anisotropy values above the
// device maximum are applied with a warning; MipmapBias takes hundredths.
func (c *Context) TextureParameters(tex device.Texture, param device.TextureParameter, value int32) {
	c.textureParameters(tex, param, value)
}

// CubemapParameters is TextureParameters for cubemaps.
func (c *Context) CubemapParameters(tex device.Texture, param device.TextureParameter, value int32) {
	c.textureParameters(tex, param, value)
}

func (c *Context) textureParameters(tex device.Texture, param device.TextureParameter, value int32) {
	caps := c.dev.Capabilities()
	if caps.Anisotropy {
		c.setTextureParam(tex, device.ParamAnisotropy, 1)
	}
	switch param {
	case device.ParamWrapS, device.ParamWrapT, device.ParamMagFilter, device.ParamMinFilter:
		c.setTextureParam(tex, param, value)
	case device.ParamAnisotropy:
		switch {
		case caps.Anisotropy && float32(value) <= caps.MaxAnisotropy:
			c.setTextureParam(tex, param, value)
		case caps.Anisotropy && caps.MaxAnisotropy > 0:
			Logger().Warn("immgl: maximum anisotropic filter level exceeded", "id", tex,
				"value", value, "max", caps.MaxAnisotropy)
			c.setTextureParam(tex, param, value)
		default:
			Logger().Warn("immgl: anisotropic filtering not supported")
		}
	case device.ParamMipmapBias:
		// Devices take the bias in hundredths; value/100 is the LOD bias.
		c.setTextureParam(tex, param, value)
	}
}

// PixelDataSize returns the byte size of a width x height image in format.
func PixelDataSize(width, height int, format device.PixelFormat) int {
	return device.PixelDataSize(width, height, format)
}

// PixelFormatName returns the short name of format.
func PixelFormatName(format device.PixelFormat) string {
	return format.String()
}
