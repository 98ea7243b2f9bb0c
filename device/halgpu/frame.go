// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/immgl/device"
)

const readbackUsage = gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

// pendingClear is a Clear that has not been turned into a render pass yet.
type pendingClear struct {
	color [4]float32
	flags device.ClearFlags
}

// frame holds the commands recorded since the last Submit.
type frame struct {
	encoder hal.CommandEncoder

	pass   hal.RenderPassEncoder
	passFB device.Framebuffer

	clears map[device.Framebuffer]pendingClear

	// cleanup runs after the GPU finished the frame: per-draw uniform
	// buffers, bind groups and objects destroyed while in flight.
	cleanup []func()

	buffers  []*buffer
	textures []*texture

	draws int
}

// ensureEncoder opens the frame command encoder.
func (d *Device) ensureEncoder() {
	if d.frame.encoder != nil {
		return
	}
	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "immgl_frame"})
	if err != nil {
		d.log().Error("halgpu: create command encoder", "err", err)
		return
	}
	if err := enc.BeginEncoding("immgl_frame"); err != nil {
		d.log().Error("halgpu: begin encoding", "err", err)
		return
	}
	d.frame.encoder = enc
}

// endPass closes the open render pass, if any.
func (d *Device) endPass() {
	if d.frame.pass == nil {
		return
	}
	d.frame.pass.End()
	d.frame.pass = nil
}

// beginPass returns a render pass on fb, reusing the open one when it
// already targets fb. Pending clears of fb become the load operations.
func (d *Device) beginPass(fb device.Framebuffer) (hal.RenderPassEncoder, *target, error) {
	t, err := d.target(fb)
	if err != nil {
		return nil, nil, err
	}
	if d.frame.pass != nil && d.frame.passFB == fb {
		return d.frame.pass, t, nil
	}
	d.endPass()
	d.ensureEncoder()
	if d.frame.encoder == nil {
		return nil, nil, fmt.Errorf("halgpu: no command encoder")
	}

	pc, cleared := d.frame.clears[fb]
	delete(d.frame.clears, fb)

	desc := &hal.RenderPassDescriptor{Label: "immgl_pass"}
	for _, view := range t.colors {
		a := hal.RenderPassColorAttachment{
			View:    view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if cleared && pc.flags&device.ClearColor != 0 {
			a.LoadOp = gputypes.LoadOpClear
			a.ClearValue = gputypes.Color{
				R: float64(pc.color[0]), G: float64(pc.color[1]),
				B: float64(pc.color[2]), A: float64(pc.color[3]),
			}
		}
		desc.ColorAttachments = append(desc.ColorAttachments, a)
	}
	if t.depth != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:              t.depth,
			DepthLoadOp:       gputypes.LoadOpLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
		if cleared && pc.flags&device.ClearDepth != 0 {
			ds.DepthLoadOp = gputypes.LoadOpClear
		}
		if cleared && pc.flags&device.ClearStencil != 0 {
			ds.StencilLoadOp = gputypes.LoadOpClear
		}
		desc.DepthStencilAttachment = ds
	}

	d.frame.pass = d.frame.encoder.BeginRenderPass(desc)
	d.frame.passFB = fb
	for _, tex := range t.textures {
		d.touchTexture(tex)
	}
	return d.frame.pass, t, nil
}

// Clear implements device.Device. The clear is folded into the load
// operations of the next render pass on the bound framebuffer.
func (d *Device) Clear(color [4]float32, flags device.ClearFlags) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb := d.state.framebuffer
	if d.frame.clears == nil {
		d.frame.clears = make(map[device.Framebuffer]pendingClear)
	}
	pc := d.frame.clears[fb]
	pc.flags |= flags
	if flags&device.ClearColor != 0 {
		pc.color = color
	}
	d.frame.clears[fb] = pc
	if d.frame.passFB == fb {
		d.endPass()
	}
}

// release runs destroy now, or after the next submit when the object may
// still be referenced by recorded commands.
func (d *Device) release(inFlight bool, destroy func()) {
	if inFlight && d.frame.encoder != nil {
		d.frame.cleanup = append(d.frame.cleanup, destroy)
		return
	}
	destroy()
}

// oneShot records and submits a standalone command buffer and waits for it.
func (d *Device) oneShot(label string, record func(enc hal.CommandEncoder)) error {
	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	record(enc)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	return d.submitAndWait(cmd)
}

func (d *Device) submitAndWait(cmd hal.CommandBuffer) error {
	defer d.dev.FreeCommandBuffer(cmd)

	fence, err := d.dev.CreateFence()
	if err != nil {
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	defer d.dev.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	ok, err := d.dev.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("halgpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// submitLocked flushes pending clears, ends the frame encoder and waits
// for the GPU to finish it.
func (d *Device) submitLocked() error {
	for fb := range d.frame.clears {
		if _, _, err := d.beginPass(fb); err != nil {
			d.log().Warn("halgpu: dropped clear", "framebuffer", fb, "err", err)
			delete(d.frame.clears, fb)
		}
	}
	d.endPass()

	var err error
	if enc := d.frame.encoder; enc != nil {
		var cmd hal.CommandBuffer
		cmd, err = enc.EndEncoding()
		if err != nil {
			err = fmt.Errorf("halgpu: end encoding: %w", err)
		} else {
			err = d.submitAndWait(cmd)
		}
		d.log().Debug("halgpu: frame submitted", "draws", d.frame.draws)
	}

	for _, fn := range d.frame.cleanup {
		fn()
	}
	for _, b := range d.frame.buffers {
		b.inFlight = false
	}
	for _, t := range d.frame.textures {
		t.inFlight = false
	}
	d.frame = frame{}
	return err
}
