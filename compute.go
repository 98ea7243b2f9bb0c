// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "github.com/gogpu/immgl/device"

// ComputeShaderDispatch runs the bound compute program over x*y*z groups.
func (c *Context) ComputeShaderDispatch(x, y, z uint32) {
	if err := c.dev.Dispatch(x, y, z); err != nil {
		Logger().Error("immgl: compute dispatch failed", "err", err)
	}
}

// LoadShaderBuffer creates a storage buffer of size bytes. data, when not
// nil, initializes its head; the rest is zeroed.
func (c *Context) LoadShaderBuffer(size int, data []byte, usage device.BufferUsage) device.Buffer {
	if !c.dev.Capabilities().StorageBuffers {
		Logger().Warn("immgl: shader storage buffers not supported")
		return 0
	}
	init := make([]byte, size)
	copy(init, data)
	b, err := c.dev.CreateBuffer(device.BufferDescriptor{
		Label: "shader storage",
		Kind:  device.BufferStorage,
		Size:  size,
		Usage: usage,
	}, init)
	if err != nil {
		Logger().Warn("immgl: failed to load shader buffer", "err", err)
		return 0
	}
	return b
}

// UnloadShaderBuffer destroys the storage buffer b.
func (c *Context) UnloadShaderBuffer(b device.Buffer) {
	c.dev.DestroyBuffer(b)
}

// UpdateShaderBuffer writes data into b at byte offset.
func (c *Context) UpdateShaderBuffer(b device.Buffer, data []byte, offset int) {
	if err := c.dev.UpdateBuffer(b, offset, data); err != nil {
		Logger().Warn("immgl: failed to update shader buffer", "id", b, "err", err)
	}
}

// ShaderBufferSize returns the byte size of b, or 0 if unknown.
func (c *Context) ShaderBufferSize(b device.Buffer) int {
	return c.dev.BufferSize(b)
}

// ReadShaderBuffer fills dst from b starting at byte offset.
func (c *Context) ReadShaderBuffer(b device.Buffer, dst []byte, offset int) {
	if err := c.dev.ReadBuffer(b, offset, dst); err != nil {
		Logger().Warn("immgl: failed to read shader buffer", "id", b, "err", err)
	}
}

// BindShaderBuffer binds b to storage binding index.
func (c *Context) BindShaderBuffer(b device.Buffer, index int) {
	c.dev.BindStorageBuffer(b, index)
}

// CopyShaderBuffer copies count bytes between storage buffers.
func (c *Context) CopyShaderBuffer(dst, src device.Buffer, dstOffset, srcOffset, count int) {
	if err := c.dev.CopyBuffer(dst, src, dstOffset, srcOffset, count); err != nil {
		Logger().Warn("immgl: failed to copy shader buffer", "dst", dst, "src", src, "err", err)
	}
}

// BindImageTexture binds level 0 of tex as a storage image at unit.
func (c *Context) BindImageTexture(tex device.Texture, unit int, format device.PixelFormat, readOnly bool) {
	if format.Compressed() || !format.Valid() {
		Logger().Warn("immgl: image texture format not supported", "format", format)
		return
	}
	c.dev.BindImageTexture(unit, tex, format, readOnly)
}
