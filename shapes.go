// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "github.com/gogpu/immgl/device"

const floatSize = 4

// quadVertices is a full-screen quad in NDC as a triangle strip:
// position (3) and texcoord (2) per vertex.
var quadVertices = []float32{
	-1, 1, 0, 0, 1,
	-1, -1, 0, 0, 0,
	1, 1, 0, 1, 1,
	1, -1, 0, 1, 0,
}

// cubeVertices is a unit cube in NDC as 36 triangle vertices: position (3),
// normal (3) and texcoord (2) per vertex.
var cubeVertices = []float32{
	-1, -1, -1, 0, 0, -1, 0, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	1, -1, -1, 0, 0, -1, 1, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	-1, -1, -1, 0, 0, -1, 0, 0,
	-1, 1, -1, 0, 0, -1, 0, 1,
	-1, -1, 1, 0, 0, 1, 0, 0,
	1, -1, 1, 0, 0, 1, 1, 0,
	1, 1, 1, 0, 0, 1, 1, 1,
	1, 1, 1, 0, 0, 1, 1, 1,
	-1, 1, 1, 0, 0, 1, 0, 1,
	-1, -1, 1, 0, 0, 1, 0, 0,
	-1, 1, 1, -1, 0, 0, 1, 0,
	-1, 1, -1, -1, 0, 0, 1, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, 1, -1, 0, 0, 0, 0,
	-1, 1, 1, -1, 0, 0, 1, 0,
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, -1, 1, 0, 0, 1, 1,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, 1, 1, 0, 0, 0, 0,
	-1, -1, -1, 0, -1, 0, 0, 1,
	1, -1, -1, 0, -1, 0, 1, 1,
	1, -1, 1, 0, -1, 0, 1, 0,
	1, -1, 1, 0, -1, 0, 1, 0,
	-1, -1, 1, 0, -1, 0, 0, 0,
	-1, -1, -1, 0, -1, 0, 0, 1,
	-1, 1, -1, 0, 1, 0, 0, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	1, 1, -1, 0, 1, 0, 1, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	-1, 1, -1, 0, 1, 0, 0, 1,
	-1, 1, 1, 0, 1, 0, 0, 0,
}

type vertexLayout struct {
	slot, components, offset int
}

// LoadDrawQuad draws a full-screen textured quad with the program in use.
// Its buffers exist only for the duration of the call.
func (c *Context) LoadDrawQuad() {
	c.drawTemporary(quadVertices, 5, device.PrimitiveTriangleStrip, []vertexLayout{
		{device.SlotPosition, 3, 0},
		{device.SlotTexCoord, 2, 3},
	})
}

// LoadDrawCube draws a unit cube with normals and texture coordinates with
// the program in use. Its buffers exist only for the duration of the call.
func (c *Context) LoadDrawCube() {
	c.drawTemporary(cubeVertices, 8, device.PrimitiveTriangles, []vertexLayout{
		{device.SlotPosition, 3, 0},
		{device.SlotNormal, 3, 3},
		{device.SlotTexCoord, 2, 6},
	})
}

func (c *Context) drawTemporary(vertices []float32, stride int, mode device.Primitive, layout []vertexLayout) {
	va, err := c.dev.CreateVertexArray()
	if err != nil {
		Logger().Error("immgl: temporary vertex array", "err", err)
		return
	}
	defer c.dev.DestroyVertexArray(va)
	c.dev.BindVertexArray(va)

	vb, err := c.dev.CreateBuffer(device.BufferDescriptor{
		Kind:  device.BufferVertex,
		Size:  len(vertices) * floatSize,
		Usage: device.UsageStaticDraw,
	}, device.AppendFloat32s(nil, vertices))
	if err != nil {
		c.dev.BindVertexArray(0)
		Logger().Error("immgl: temporary vertex buffer", "err", err)
		return
	}
	defer c.dev.DestroyBuffer(vb)
	c.dev.BindVertexBuffer(vb)

	for _, l := range layout {
		c.dev.SetVertexAttribute(l.slot, device.VertexAttribute{
			Components: l.components,
			Type:       device.AttribFloat,
			Stride:     stride * floatSize,
			Offset:     l.offset * floatSize,
		})
		c.dev.EnableVertexAttribute(l.slot, true)
	}
	c.dev.Draw(mode, 0, len(vertices)/stride, 1)
	c.dev.BindVertexArray(0)
}
