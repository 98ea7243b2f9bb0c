// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"errors"
	"fmt"

	"github.com/gogpu/immgl/device"
)

// Per-vertex component counts of the batch vertex layout.
const (
	positionComponents = 3
	texcoordComponents = 2
	colorComponents    = 4
	indicesPerQuad     = 6
	indexSize          = 4
)

// VertexBuffer is one multi-buffering slot: fixed-size CPU arrays and
// their device mirrors.
//
// Capacity counts quads, so every array holds Capacity*4 vertices.
type VertexBuffer struct {
	Capacity  int
	Positions []float32
	TexCoords []float32
	Colors    []uint8
	Indices   []uint32

	vao       device.VertexArray
	positions device.Buffer
	texcoords device.Buffer
	colors    device.Buffer
	indices   device.Buffer

	scratch []byte
}

// QuadIndices returns the index list drawing capacity quads as triangle
// pairs: 4k, 4k+1, 4k+2, 4k, 4k+2, 4k+3.
func QuadIndices(capacity int) []uint32 {
	idx := make([]uint32, capacity*indicesPerQuad)
	for k := range capacity {
		base := uint32(4 * k)
		j := k * indicesPerQuad
		idx[j+0] = base
		idx[j+1] = base + 1
		idx[j+2] = base + 2
		idx[j+3] = base
		idx[j+4] = base + 2
		idx[j+5] = base + 3
	}
	return idx
}

// newVertexBuffer allocates the CPU arrays and creates the device objects.
// Attributes are bound at the given shader locations; a negative location
// leaves that attribute unbound.
func newVertexBuffer(dev device.Device, capacity int, locs device.Locations) (*VertexBuffer, error) {
	n := capacity * 4
	vb := &VertexBuffer{
		Capacity:  capacity,
		Positions: make([]float32, n*positionComponents),
		TexCoords: make([]float32, n*texcoordComponents),
		Colors:    make([]uint8, n*colorComponents),
		Indices:   QuadIndices(capacity),
	}

	var err error
	if vb.vao, err = dev.CreateVertexArray(); err != nil {
		return nil, fmt.Errorf("batch: vertex array: %w", err)
	}
	dev.BindVertexArray(vb.vao)
	defer dev.BindVertexArray(0)

	attribs := []struct {
		buf   *device.Buffer
		label string
		size  int
		loc   int
		attr  device.VertexAttribute
	}{
		{&vb.positions, "batch positions", len(vb.Positions) * 4, locs.Get(device.LocVertexPosition),
			device.VertexAttribute{Components: positionComponents, Type: device.AttribFloat}},
		{&vb.texcoords, "batch texcoords", len(vb.TexCoords) * 4, locs.Get(device.LocVertexTexCoord01),
			device.VertexAttribute{Components: texcoordComponents, Type: device.AttribFloat}},
		{&vb.colors, "batch colors", len(vb.Colors), locs.Get(device.LocVertexColor),
			device.VertexAttribute{Components: colorComponents, Type: device.AttribUnsignedByte, Normalized: true}},
	}
	for _, a := range attribs {
		*a.buf, err = dev.CreateBuffer(device.BufferDescriptor{
			Label: a.label,
			Kind:  device.BufferVertex,
			Size:  a.size,
			Usage: device.UsageDynamicDraw,
		}, nil)
		if err != nil {
			vb.release(dev)
			return nil, fmt.Errorf("batch: %s: %w", a.label, err)
		}
		if a.loc < 0 {
			continue
		}
		dev.BindVertexBuffer(*a.buf)
		dev.SetVertexAttribute(a.loc, a.attr)
		dev.EnableVertexAttribute(a.loc, true)
	}

	vb.indices, err = dev.CreateBuffer(device.BufferDescriptor{
		Label: "batch indices",
		Kind:  device.BufferIndex,
		Size:  len(vb.Indices) * indexSize,
		Usage: device.UsageStaticDraw,
	}, device.AppendUint32s(nil, vb.Indices))
	if err != nil {
		vb.release(dev)
		return nil, fmt.Errorf("batch: indices: %w", err)
	}
	dev.BindIndexBuffer(vb.indices)

	return vb, nil
}

// upload copies the first count vertices of every array to the device.
func (vb *VertexBuffer) upload(dev device.Device, count int) error {
	vb.scratch = device.AppendFloat32s(vb.scratch[:0], vb.Positions[:count*positionComponents])
	errP := dev.UpdateBuffer(vb.positions, 0, vb.scratch)

	vb.scratch = device.AppendFloat32s(vb.scratch[:0], vb.TexCoords[:count*texcoordComponents])
	errT := dev.UpdateBuffer(vb.texcoords, 0, vb.scratch)

	errC := dev.UpdateBuffer(vb.colors, 0, vb.Colors[:count*colorComponents])
	return errors.Join(errP, errT, errC)
}

// release destroys the device objects. The CPU arrays stay valid.
func (vb *VertexBuffer) release(dev device.Device) {
	for _, b := range []*device.Buffer{&vb.positions, &vb.texcoords, &vb.colors, &vb.indices} {
		if b.Valid() {
			dev.DestroyBuffer(*b)
			*b = 0
		}
	}
	if vb.vao.Valid() {
		dev.DestroyVertexArray(vb.vao)
		vb.vao = 0
	}
}
