// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "github.com/gogpu/immgl/batch"

// Begin starts a group of vertices drawn as mode.
func (c *Context) Begin(mode batch.Mode) {
	c.active.Begin(mode)
}

// End closes the vertex group started by Begin.
func (c *Context) End() {
	c.active.End()
}

// Vertex3f emits a vertex with the pending texture coordinate and color.
// While a Modelview push is active the position is multiplied by the
// transform matrix first.
func (c *Context) Vertex3f(x, y, z float32) {
	if c.transformRequired {
		x, y, z = c.transform.Transform(x, y, z)
	}
	c.active.Vertex([3]float32{x, y, z}, c.texcoord, c.color)
}

// Vertex2f emits a vertex at the current 2D depth.
func (c *Context) Vertex2f(x, y float32) {
	c.Vertex3f(x, y, c.active.Depth())
}

// Vertex2i emits a vertex at integer coordinates and the current 2D depth.
func (c *Context) Vertex2i(x, y int) {
	c.Vertex3f(float32(x), float32(y), c.active.Depth())
}

// TexCoord2f sets the texture coordinate of the following vertices.
func (c *Context) TexCoord2f(u, v float32) {
	c.texcoord = [2]float32{u, v}
}

// Normal3f sets the pending normal. The batch vertex layout has no normal
// attribute, so the value is only kept for Normal.
func (c *Context) Normal3f(x, y, z float32) {
	c.normal = [3]float32{x, y, z}
}

// Normal returns the pending normal.
func (c *Context) Normal() [3]float32 { return c.normal }

// Color4ub sets the color of the following vertices.
func (c *Context) Color4ub(r, g, b, a uint8) {
	c.color = [4]uint8{r, g, b, a}
}

// Color4f sets the color from components in [0, 1].
func (c *Context) Color4f(r, g, b, a float32) {
	c.Color4ub(unorm8(r), unorm8(g), unorm8(b), unorm8(a))
}

// Color3f sets an opaque color from components in [0, 1].
func (c *Context) Color3f(r, g, b float32) {
	c.Color4ub(unorm8(r), unorm8(g), unorm8(b), 255)
}

// unorm8 truncates v*255 to a byte. Values outside [0, 1] are clamped.
func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}
