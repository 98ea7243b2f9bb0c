// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/immgl/device"
)

// maxColorTargets bounds the color attachments of a pipeline key.
const maxColorTargets = 8

// pipelineKey identifies a render pipeline: the program plus every piece of
// bound state WebGPU bakes into a pipeline.
type pipelineKey struct {
	program   device.Program
	topology  gputypes.PrimitiveTopology
	cull      gputypes.CullMode
	blendOn   bool
	blend     device.BlendState
	depthTest bool
	depthMask bool
	hasDepth  bool
	colors    int
	formats   [maxColorTargets]gputypes.TextureFormat
	layout    uint64
}

// vertexSlot is one vertex buffer binding of a draw.
type vertexSlot struct {
	buffer *buffer
	offset uint64

	// constant holds the value of a stride-0 buffer for a disabled
	// attribute.
	constant []byte
}

// vertexLayout resolves the vertex buffers of a draw from the bound vertex
// array. Attributes sharing a buffer, stride and step mode share a slot.
func (d *Device) vertexLayout(p *program) ([]gputypes.VertexBufferLayout, []vertexSlot, uint64, error) {
	type slotKey struct {
		buffer device.Buffer
		stride int
		base   int
		step   gputypes.VertexStepMode
	}
	va := d.boundVA()
	var (
		layouts []gputypes.VertexBufferLayout
		slots   []vertexSlot
		index   = make(map[slotKey]int)
	)
	h := fnv.New64a()
	var scratch [8]byte
	write := func(vs ...uint64) {
		for _, v := range vs {
			binary.LittleEndian.PutUint64(scratch[:], v)
			_, _ = h.Write(scratch[:]) // fnv.Write never returns an error
		}
	}

	for _, in := range p.vertex.refl.Inputs {
		a := va.attribs[in.Location]
		var b *buffer
		if a != nil && a.enabled {
			b = d.buffers[a.buffer]
		}
		if b == nil {
			v, ok := d.state.attribDefaults[in.Location]
			if !ok {
				v = [4]float32{0, 0, 0, 1}
			}
			format := floatVertexFormat(in.Components)
			layouts = append(layouts, gputypes.VertexBufferLayout{
				ArrayStride: 0,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  []gputypes.VertexAttribute{{Format: format, Offset: 0, ShaderLocation: uint32(in.Location)}},
			})
			slots = append(slots, vertexSlot{constant: device.AppendFloat32s(nil, v[:])})
			write(0, uint64(format), uint64(in.Location))
			continue
		}

		format, ok := convertVertexFormat(a.attr.Type, a.attr.Components, a.attr.Normalized)
		if !ok {
			return nil, nil, 0, fmt.Errorf("attribute %d: %d x %#x has no vertex format", in.Location, a.attr.Components, uint32(a.attr.Type))
		}
		stride := a.attr.Stride
		if stride == 0 {
			stride = a.attr.Components * a.attr.Type.Size()
		}
		offset, base := a.attr.Offset, 0
		if offset >= stride {
			base = offset - offset%stride
			offset %= stride
		}
		step := gputypes.VertexStepModeVertex
		if a.divisor > 0 {
			step = gputypes.VertexStepModeInstance
		}
		k := slotKey{a.buffer, stride, base, step}
		i, ok := index[k]
		if !ok {
			i = len(layouts)
			index[k] = i
			layouts = append(layouts, gputypes.VertexBufferLayout{ArrayStride: uint64(stride), StepMode: step})
			slots = append(slots, vertexSlot{buffer: b, offset: uint64(base)})
		}
		layouts[i].Attributes = append(layouts[i].Attributes, gputypes.VertexAttribute{
			Format: format, Offset: uint64(offset), ShaderLocation: uint32(in.Location),
		})
		write(uint64(i), uint64(stride), uint64(step), uint64(format), uint64(offset), uint64(in.Location))
	}
	return layouts, slots, h.Sum64(), nil
}

// renderPipeline returns the cached pipeline for key, creating it on first
// use.
func (d *Device) renderPipeline(key pipelineKey, p *program, layouts []gputypes.VertexBufferLayout, t *target) (hal.RenderPipeline, error) {
	if rp, ok := d.pipelines[key]; ok {
		return rp, nil
	}
	targets := make([]gputypes.ColorTargetState, len(t.formats))
	for i, f := range t.formats {
		targets[i] = gputypes.ColorTargetState{Format: f, WriteMask: gputypes.ColorWriteMaskAll}
		if key.blendOn {
			blend := convertBlend(key.blend)
			targets[i].Blend = &blend
		}
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  "immgl_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertex.module,
			EntryPoint: p.vertex.refl.Entry,
			Buffers:    layouts,
		},
		Fragment: &hal.FragmentState{
			Module:     p.frag.module,
			EntryPoint: p.frag.refl.Entry,
			Targets:    targets,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  key.topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  key.cull,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	}
	if key.hasDepth {
		compare := gputypes.CompareFunctionAlways
		if key.depthTest {
			compare = gputypes.CompareFunctionLessEqual
		}
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format: depthFormat,
			// GL discards depth writes while the depth test is off.
			DepthWriteEnabled: key.depthTest && key.depthMask,
			DepthCompare:      compare,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		}
	}
	rp, err := d.dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("halgpu: create render pipeline: %w", err)
	}
	d.pipelines[key] = rp
	d.log().Debug("halgpu: render pipeline created", "program", key.program, "pipelines", len(d.pipelines))
	return rp, nil
}

// bindGroups creates the bind groups of p for the current bound state.
// They live until the frame is submitted.
func (d *Device) bindGroups(p *program) ([]hal.BindGroup, error) {
	groups := make([]hal.BindGroup, 0, len(p.groups))
	for gi, g := range p.groups {
		entries := make([]gputypes.BindGroupEntry, 0, len(g))
		for _, b := range g {
			entry := gputypes.BindGroupEntry{Binding: uint32(b.res.Binding)}
			switch b.res.Kind {
			case resourceUniform:
				ub, err := d.uniformBuffer(p.blocks[b.block].data)
				if err != nil {
					return nil, err
				}
				entry.Resource = gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uint64(len(p.blocks[b.block].data))}
			case resourceStorage:
				sb, ok := d.buffers[d.state.storage[b.res.Binding]]
				if !ok {
					return nil, fmt.Errorf("storage buffer %s: no buffer bound at index %d", b.res.Name, b.res.Binding)
				}
				if !b.res.ReadOnly {
					sb.gpuWritten = true
				}
				d.touchBuffer(sb)
				entry.Resource = gputypes.BufferBinding{Buffer: sb.hal.NativeHandle(), Offset: 0, Size: uint64(alignUp(sb.size))}
			case resourceTexture:
				t := d.unitTexture(p, b.res.Name)
				d.touchTexture(t)
				entry.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
			case resourceSampler:
				t := d.unitTexture(p, b.texture)
				s, err := d.samplerFor(t)
				if err != nil {
					return nil, err
				}
				entry.Resource = gputypes.SamplerBinding{Sampler: s.NativeHandle()}
			case resourceStorageTexture:
				img, ok := d.state.images[b.res.Binding]
				t := d.textures[img.texture]
				if !ok || t == nil {
					return nil, fmt.Errorf("storage texture %s: no image bound at unit %d", b.res.Name, b.res.Binding)
				}
				d.touchTexture(t)
				entry.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
			}
			entries = append(entries, entry)
		}
		bg, err := d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("immgl_group%d", gi),
			Layout:  p.layouts[gi],
			Entries: entries,
		})
		if err != nil {
			return nil, fmt.Errorf("halgpu: create bind group %d: %w", gi, err)
		}
		d.frame.cleanup = append(d.frame.cleanup, func() { d.dev.DestroyBindGroup(bg) })
		groups = append(groups, bg)
	}
	return groups, nil
}

// unitTexture returns the texture bound to the unit the texture variable
// name samples, or the white fallback texture.
func (d *Device) unitTexture(p *program, name string) *texture {
	if t, ok := d.textures[d.state.textures[p.units[name]]]; ok {
		return t
	}
	return d.white
}

// uniformBuffer uploads a uniform block snapshot into a buffer that is
// destroyed with the frame.
func (d *Device) uniformBuffer(data []byte) (hal.Buffer, error) {
	return d.transientBuffer("immgl_uniforms", gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, data)
}

func (d *Device) transientBuffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(alignUp(max(len(data), 16))),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	d.frame.cleanup = append(d.frame.cleanup, func() { d.dev.DestroyBuffer(buf) })
	return buf, nil
}

// Draw implements device.Device.
func (d *Device) Draw(mode device.Primitive, first, count, instances int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if count <= 0 {
		return
	}
	rp, err := d.prepareDraw(mode, false)
	if err != nil {
		d.log().Error("halgpu: draw", "err", err)
		return
	}
	rp.Draw(uint32(count), uint32(max(instances, 1)), uint32(first), 0)
	d.frame.draws++
}

// DrawIndexed implements device.Device.
func (d *Device) DrawIndexed(mode device.Primitive, count int, format device.IndexFormat, byteOffset, instances int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if count <= 0 {
		return
	}
	ib, ok := d.buffers[d.boundVA().index]
	if !ok {
		d.log().Error("halgpu: indexed draw without index buffer")
		return
	}
	rp, err := d.prepareDraw(mode, true)
	if err != nil {
		d.log().Error("halgpu: draw indexed", "err", err)
		return
	}
	size := format.Size()
	rp.SetIndexBuffer(ib.hal, convertIndexFormat(format), uint64(byteOffset-byteOffset%size))
	d.touchBuffer(ib)
	rp.DrawIndexed(uint32(count), uint32(max(instances, 1)), 0, 0, 0)
	d.frame.draws++
}

// prepareDraw opens the render pass on the bound framebuffer and binds the
// pipeline, bind groups, vertex buffers, viewport and scissor.
func (d *Device) prepareDraw(mode device.Primitive, indexed bool) (hal.RenderPassEncoder, error) {
	p, ok := d.programs[d.state.program]
	if !ok || p.vertex == nil {
		return nil, fmt.Errorf("no render program bound")
	}
	layouts, slots, layoutHash, err := d.vertexLayout(p)
	if err != nil {
		return nil, err
	}
	// Bind groups and constant buffers are created before the pass begins
	// so their queue writes precede it.
	groups, err := d.bindGroups(p)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].constant == nil {
			continue
		}
		cb, err := d.transientBuffer("immgl_constant_attribute", gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, slots[i].constant)
		if err != nil {
			return nil, err
		}
		slots[i].buffer = &buffer{hal: cb}
	}

	rp, t, err := d.beginPass(d.state.framebuffer)
	if err != nil {
		return nil, err
	}
	topology := convertPrimitive(mode)
	if indexed && topology == gputypes.PrimitiveTopologyTriangleStrip {
		// Strip pipelines need a strip index format; draw the strip as a list.
		topology = gputypes.PrimitiveTopologyTriangleList
	}
	key := pipelineKey{
		program:   d.state.program,
		topology:  topology,
		cull:      convertCull(d.state.cullOn, d.state.cullFace),
		blendOn:   d.state.blendOn,
		depthTest: d.state.depthTest,
		depthMask: d.state.depthMask,
		hasDepth:  t.depth != nil,
		colors:    min(len(t.formats), maxColorTargets),
		layout:    layoutHash,
	}
	if key.blendOn {
		key.blend = d.state.blend
	}
	copy(key.formats[:], t.formats)
	pipe, err := d.renderPipeline(key, p, layouts, t)
	if err != nil {
		return nil, err
	}

	rp.SetPipeline(pipe)
	for i, bg := range groups {
		rp.SetBindGroup(uint32(i), bg, nil)
	}
	for i, s := range slots {
		rp.SetVertexBuffer(uint32(i), s.buffer.hal, s.offset)
		if s.constant == nil {
			d.touchBuffer(s.buffer)
		}
	}

	vp := device.Viewport{Width: t.width, Height: t.height}
	if d.state.viewportSet {
		vp = clampRect(d.state.viewport, t.width, t.height)
	}
	vx, vy, vw, vh := flipRect(vp, t.height)
	rp.SetViewport(float32(vx), float32(vy), float32(vw), float32(vh), 0, 1)

	sc := device.Viewport{Width: t.width, Height: t.height}
	if d.state.scissorTest {
		sc = clampRect(d.state.scissor, t.width, t.height)
	}
	sx, sy, sw, sh := flipRect(sc, t.height)
	rp.SetScissorRect(uint32(sx), uint32(sy), uint32(sw), uint32(sh))
	return rp, nil
}

// clampRect clips r to a width x height target.
func clampRect(r device.Viewport, width, height int) device.Viewport {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.Width, width), min(r.Y+r.Height, height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return device.Viewport{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// flipRect converts a bottom-left origin rectangle to the top-left origin
// WebGPU uses.
func flipRect(r device.Viewport, height int) (x, y, w, h int) {
	return r.X, height - r.Y - r.Height, r.Width, r.Height
}

// Dispatch implements device.Device.
func (d *Device) Dispatch(x, y, z uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.caps.ComputeShaders {
		return fmt.Errorf("halgpu: dispatch: %w", device.ErrNotSupported)
	}
	p, ok := d.programs[d.state.program]
	if !ok || p.pipeline == nil {
		return fmt.Errorf("halgpu: dispatch without a compute program: %w", device.ErrInvalidHandle)
	}
	if x == 0 || y == 0 || z == 0 {
		return nil
	}
	groups, err := d.bindGroups(p)
	if err != nil {
		return fmt.Errorf("halgpu: dispatch: %w", err)
	}
	d.endPass()
	d.ensureEncoder()
	if d.frame.encoder == nil {
		return fmt.Errorf("halgpu: dispatch: no command encoder")
	}
	pass := d.frame.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "immgl_compute"})
	pass.SetPipeline(p.pipeline)
	for i, bg := range groups {
		pass.SetBindGroup(uint32(i), bg, nil)
	}
	pass.Dispatch(x, y, z)
	pass.End()
	return nil
}
