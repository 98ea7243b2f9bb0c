// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "github.com/gogpu/immgl/device"

// LoadVertexArray creates a vertex input configuration. It returns 0 on
// failure.
func (c *Context) LoadVertexArray() device.VertexArray {
	va, err := c.dev.CreateVertexArray()
	if err != nil {
		Logger().Warn("immgl: failed to load vertex array", "err", err)
		return 0
	}
	return va
}

// EnableVertexArray binds va and reports whether the device uses vertex
// arrays at all.
func (c *Context) EnableVertexArray(va device.VertexArray) bool {
	return c.dev.BindVertexArray(va)
}

// DisableVertexArray unbinds the current vertex array.
func (c *Context) DisableVertexArray() {
	c.dev.BindVertexArray(0)
}

// UnloadVertexArray destroys va.
func (c *Context) UnloadVertexArray(va device.VertexArray) {
	c.dev.BindVertexArray(0)
	c.dev.DestroyVertexArray(va)
	Logger().Info("immgl: vertex array unloaded", "id", va)
}

// LoadVertexBuffer creates a vertex buffer holding data and binds it.
func (c *Context) LoadVertexBuffer(data []byte, dynamic bool) device.Buffer {
	b := c.loadBuffer(device.BufferVertex, data, dynamic)
	if b.Valid() {
		c.dev.BindVertexBuffer(b)
	}
	return b
}

// LoadVertexBufferElement creates an index buffer holding data and binds it.
func (c *Context) LoadVertexBufferElement(data []byte, dynamic bool) device.Buffer {
	b := c.loadBuffer(device.BufferIndex, data, dynamic)
	if b.Valid() {
		c.dev.BindIndexBuffer(b)
	}
	return b
}

func (c *Context) loadBuffer(kind device.BufferKind, data []byte, dynamic bool) device.Buffer {
	usage := device.UsageStaticDraw
	if dynamic {
		usage = device.UsageDynamicDraw
	}
	b, err := c.dev.CreateBuffer(device.BufferDescriptor{Kind: kind, Size: len(data), Usage: usage}, data)
	if err != nil {
		Logger().Warn("immgl: failed to load buffer", "kind", kind, "err", err)
		return 0
	}
	return b
}

// EnableVertexBuffer binds b as the vertex buffer.
func (c *Context) EnableVertexBuffer(b device.Buffer) { c.dev.BindVertexBuffer(b) }

// DisableVertexBuffer unbinds the vertex buffer.
func (c *Context) DisableVertexBuffer() { c.dev.BindVertexBuffer(0) }

// EnableVertexBufferElement binds b as the index buffer.
func (c *Context) EnableVertexBufferElement(b device.Buffer) { c.dev.BindIndexBuffer(b) }

// DisableVertexBufferElement unbinds the index buffer.
func (c *Context) DisableVertexBufferElement() { c.dev.BindIndexBuffer(0) }

// UpdateVertexBuffer writes data into b at byte offset.
func (c *Context) UpdateVertexBuffer(b device.Buffer, data []byte, offset int) {
	if err := c.dev.UpdateBuffer(b, offset, data); err != nil {
		Logger().Warn("immgl: failed to update vertex buffer", "id", b, "err", err)
	}
}

// UpdateVertexBufferElements writes index data into b at byte offset.
func (c *Context) UpdateVertexBufferElements(b device.Buffer, data []byte, offset int) {
	if err := c.dev.UpdateBuffer(b, offset, data); err != nil {
		Logger().Warn("immgl: failed to update index buffer", "id", b, "err", err)
	}
}

// UnloadVertexBuffer destroys b.
func (c *Context) UnloadVertexBuffer(b device.Buffer) {
	c.dev.DestroyBuffer(b)
}

// SetVertexAttribute describes attribute index of the bound vertex buffer.
func (c *Context) SetVertexAttribute(index, components int, typ device.AttribType, normalized bool, stride, offset int) {
	c.dev.SetVertexAttribute(index, device.VertexAttribute{
		Components: components,
		Type:       typ,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
	})
}

// SetVertexAttributeDivisor sets the instance step of attribute index.
func (c *Context) SetVertexAttributeDivisor(index, divisor int) {
	c.dev.SetVertexAttributeDivisor(index, divisor)
}

// SetVertexAttributeDefault sets the value attribute index takes when it is
// disabled. value holds 1 to 4 components.
func (c *Context) SetVertexAttributeDefault(index int, value []float32) {
	if len(value) == 0 || len(value) > 4 {
		Logger().Warn("immgl: vertex attribute default takes 1 to 4 components", "index", index, "count", len(value))
		return
	}
	c.dev.SetVertexAttributeDefault(index, value)
}

// EnableVertexAttribute enables attribute index.
func (c *Context) EnableVertexAttribute(index int) { c.dev.EnableVertexAttribute(index, true) }

// DisableVertexAttribute disables attribute index.
func (c *Context) DisableVertexAttribute(index int) { c.dev.EnableVertexAttribute(index, false) }

// DrawVertexArray draws count vertices from offset as triangles.
func (c *Context) DrawVertexArray(offset, count int) {
	c.dev.Draw(device.PrimitiveTriangles, offset, count, 1)
}

// DrawVertexArrayElements draws count uint16 indices starting at index
// offset as triangles.
func (c *Context) DrawVertexArrayElements(offset, count int) {
	c.dev.DrawIndexed(device.PrimitiveTriangles, count, device.IndexUint16, offset*device.IndexUint16.Size(), 1)
}

// DrawVertexArrayInstanced draws instances copies of a vertex range.
func (c *Context) DrawVertexArrayInstanced(offset, count, instances int) {
	c.dev.Draw(device.PrimitiveTriangles, offset, count, instances)
}

// DrawVertexArrayElementsInstanced draws instances copies of an index range.
func (c *Context) DrawVertexArrayElementsInstanced(offset, count, instances int) {
	c.dev.DrawIndexed(device.PrimitiveTriangles, count, device.IndexUint16, offset*device.IndexUint16.Size(), instances)
}
