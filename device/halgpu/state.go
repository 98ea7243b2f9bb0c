// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"github.com/gogpu/immgl/device"
)

type imageBinding struct {
	texture  device.Texture
	readOnly bool
}

// attribState is one vertex attribute slot of a vertex array.
type attribState struct {
	attr    device.VertexAttribute
	buffer  device.Buffer
	enabled bool
	divisor int
}

type vertexArray struct {
	attribs map[int]*attribState
	index   device.Buffer
}

func newVertexArray() *vertexArray {
	return &vertexArray{attribs: make(map[int]*attribState)}
}

func (va *vertexArray) slot(i int) *attribState {
	a, ok := va.attribs[i]
	if !ok {
		a = &attribState{}
		va.attribs[i] = a
	}
	return a
}

// state is the bound GL-style state consulted when a draw is encoded.
type state struct {
	program      device.Program
	vertexArray  device.VertexArray
	defaultVA    *vertexArray
	vertexBuffer device.Buffer
	framebuffer  device.Framebuffer
	drawBuffers  int

	textures map[int]device.Texture
	images   map[int]imageBinding
	storage  map[int]device.Buffer

	// attribDefaults holds the constant value of disabled attributes.
	attribDefaults map[int][4]float32

	viewport    device.Viewport
	viewportSet bool
	scissor     device.Viewport

	blendOn     bool
	depthTest   bool
	depthMask   bool
	cullOn      bool
	scissorTest bool
	cullFace    device.CullFace
	blend       device.BlendState
}

func newState() state {
	return state{
		defaultVA:      newVertexArray(),
		drawBuffers:    1,
		textures:       make(map[int]device.Texture),
		images:         make(map[int]imageBinding),
		storage:        make(map[int]device.Buffer),
		attribDefaults: make(map[int][4]float32),
		depthMask:      true,
		blend: device.BlendState{
			SrcRGB: device.BlendOne, DstRGB: device.BlendZero,
			SrcAlpha: device.BlendOne, DstAlpha: device.BlendZero,
			EqRGB: device.EquationAdd, EqAlpha: device.EquationAdd,
		},
	}
}

// boundVA returns the bound vertex array, the default one for handle 0.
func (d *Device) boundVA() *vertexArray {
	if va, ok := d.vertexArrays[d.state.vertexArray]; ok {
		return va
	}
	return d.state.defaultVA
}

// CreateVertexArray implements device.Device.
func (d *Device) CreateVertexArray() (device.VertexArray, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := device.VertexArray(d.newID())
	d.vertexArrays[id] = newVertexArray()
	return id, nil
}

// BindVertexArray implements device.Device.
func (d *Device) BindVertexArray(id device.VertexArray) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id != 0 {
		if _, ok := d.vertexArrays[id]; !ok {
			return false
		}
	}
	d.state.vertexArray = id
	return true
}

// DestroyVertexArray implements device.Device.
func (d *Device) DestroyVertexArray(id device.VertexArray) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.vertexArrays, id)
	if d.state.vertexArray == id {
		d.state.vertexArray = 0
	}
}

// BindVertexBuffer implements device.Device. The buffer is captured by the
// next SetVertexAttribute calls.
func (d *Device) BindVertexBuffer(id device.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.vertexBuffer = id
}

// BindIndexBuffer implements device.Device. The index buffer is part of
// the bound vertex array.
func (d *Device) BindIndexBuffer(id device.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.boundVA().index = id
}

// SetVertexAttribute implements device.Device.
func (d *Device) SetVertexAttribute(index int, attr device.VertexAttribute) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a := d.boundVA().slot(index)
	a.attr = attr
	a.buffer = d.state.vertexBuffer
}

// EnableVertexAttribute implements device.Device.
func (d *Device) EnableVertexAttribute(index int, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.boundVA().slot(index).enabled = enabled
}

// SetVertexAttributeDivisor implements device.Device. Any non-zero divisor
// steps the attribute once per instance.
func (d *Device) SetVertexAttributeDivisor(index, divisor int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if divisor > 1 {
		d.log().Warn("halgpu: attribute divisor above 1 steps once per instance", "index", index, "divisor", divisor)
	}
	d.boundVA().slot(index).divisor = divisor
}

// SetVertexAttributeDefault implements device.Device. Missing components
// default to (0, 0, 0, 1).
func (d *Device) SetVertexAttributeDefault(index int, value []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := [4]float32{0, 0, 0, 1}
	copy(v[:], value)
	d.state.attribDefaults[index] = v
}

// SetViewport implements device.Device.
func (d *Device) SetViewport(v device.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.viewport = v
	d.state.viewportSet = true
}

// SetScissor implements device.Device.
func (d *Device) SetScissor(r device.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.scissor = r
}

// SetFeature implements device.Device. Wireframe, point mode and line
// smoothing have no WebGPU equivalent and are ignored.
func (d *Device) SetFeature(f device.Feature, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch f {
	case device.FeatureBlend:
		d.state.blendOn = enabled
	case device.FeatureDepthTest:
		d.state.depthTest = enabled
	case device.FeatureDepthMask:
		d.state.depthMask = enabled
	case device.FeatureCullFace:
		d.state.cullOn = enabled
	case device.FeatureScissorTest:
		d.state.scissorTest = enabled
	default:
		if enabled {
			d.log().Debug("halgpu: feature not supported", "feature", f)
		}
	}
}

// SetCullFace implements device.Device.
func (d *Device) SetCullFace(face device.CullFace) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.cullFace = face
}

// SetLineWidth implements device.Device. WebGPU rasterizes lines one pixel
// wide, so other widths are ignored.
func (d *Device) SetLineWidth(width float32) {
	if width != 1 {
		d.log().Debug("halgpu: line width not supported", "width", width)
	}
}

// SetBlend implements device.Device.
func (d *Device) SetBlend(b device.BlendState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.blend = b
}
