// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/immgl/device"
)

// attachment is a texture bound to a framebuffer attachment point.
type attachment struct {
	texture device.Texture
	layer   int
	level   int
}

type framebuffer struct {
	width, height int
	attachments   map[device.Attachment]attachment
}

// screen is the default render target: an offscreen color texture, or a
// host surface view set with SetSurface, plus a matching depth buffer.
type screen struct {
	width, height int
	format        gputypes.TextureFormat

	color   *texture
	surface hal.TextureView
	depth   *texture
}

// target is the resolved attachment set of a render pass.
type target struct {
	width, height int
	colors        []hal.TextureView
	formats       []gputypes.TextureFormat
	depth         hal.TextureView
	textures      []*texture
}

func (d *Device) createScreen(width, height int, format gputypes.TextureFormat) error {
	color, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "immgl_screen",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create screen texture: %w", err)
	}
	view, err := d.dev.CreateTextureView(color, &hal.TextureViewDescriptor{
		Label:         "immgl_screen",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.dev.DestroyTexture(color)
		return fmt.Errorf("halgpu: create screen view: %w", err)
	}
	info := formatInfo{GPU: format, SrcBytes: 4, GPUBytes: 4}
	if format == gputypes.TextureFormatBGRA8Unorm {
		info.narrow = swapRedBlue
	}
	d.screen.color = &texture{
		desc:   device.TextureDescriptor{Label: "immgl_screen", Kind: device.Texture2D, Width: width, Height: height, Format: device.PixelFormatR8G8B8A8, MipLevels: 1},
		info:   info,
		format: format,
		layers: 1,
		levels: 1,
		hal:    color,
		view:   view,
		attach: make(map[attachKey]hal.TextureView),
		params: make(map[device.TextureParameter]int32),
	}
	d.screen.width, d.screen.height, d.screen.format = width, height, format
	return d.resizeScreenDepth(width, height)
}

func (d *Device) resizeScreenDepth(width, height int) error {
	if old := d.screen.depth; old != nil {
		d.screen.depth = nil
		d.release(old.inFlight, func() { d.destroyTexture(old) })
	}
	depth, err := d.newTexture(device.TextureDescriptor{
		Label: "immgl_screen_depth", Kind: device.TextureRenderbuffer, Width: width, Height: height,
	}, nil)
	if err != nil {
		return err
	}
	d.screen.depth = depth
	return nil
}

func (d *Device) destroyScreen() {
	d.destroyTexture(d.screen.color)
	d.destroyTexture(d.screen.depth)
	d.screen = screen{}
}

// SetSurface makes view, a width x height texture view owned by the host,
// the default render target until the next SetSurface. A nil view returns
// to the offscreen target. format must be the view's texture format.
func (d *Device) SetSurface(view hal.TextureView, width, height int, format gputypes.TextureFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frame.passFB == 0 {
		d.endPass()
	}
	if view == nil {
		d.screen.surface = nil
		d.screen.width, d.screen.height = d.screen.color.desc.Width, d.screen.color.desc.Height
		d.screen.format = d.screen.color.format
		return d.resizeScreenDepth(d.screen.width, d.screen.height)
	}
	d.screen.surface = view
	d.screen.format = format
	if width == d.screen.width && height == d.screen.height {
		return nil
	}
	d.screen.width, d.screen.height = width, height
	return d.resizeScreenDepth(width, height)
}

// ReadScreen returns the RGBA8 pixels of the offscreen default render
// target, top row first.
func (d *Device) ReadScreen() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.screen.surface != nil {
		return nil, fmt.Errorf("halgpu: read host surface: %w", device.ErrNotSupported)
	}
	if err := d.submitLocked(); err != nil {
		return nil, err
	}
	c := d.screen.color
	return d.readTexture(c, 0, c.desc.Width, c.desc.Height)
}

// target resolves the attachments of fb.
func (d *Device) target(id device.Framebuffer) (*target, error) {
	if id == 0 {
		depth, err := d.attachView(d.screen.depth, 0, 0)
		if err != nil {
			return nil, err
		}
		t := &target{width: d.screen.width, height: d.screen.height, depth: depth}
		if d.screen.surface != nil {
			t.colors = []hal.TextureView{d.screen.surface}
		} else {
			t.colors = []hal.TextureView{d.screen.color.view}
			t.textures = append(t.textures, d.screen.color)
		}
		t.formats = []gputypes.TextureFormat{d.screen.format}
		t.textures = append(t.textures, d.screen.depth)
		return t, nil
	}

	fb, ok := d.framebuffers[id]
	if !ok {
		return nil, device.ErrInvalidHandle
	}
	t := &target{width: fb.width, height: fb.height}
	points := make([]device.Attachment, 0, len(fb.attachments))
	for a := range fb.attachments {
		if a.IsColor() && int(a) < d.state.drawBuffers {
			points = append(points, a)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	for _, a := range points {
		at := fb.attachments[a]
		tex, ok := d.textures[at.texture]
		if !ok {
			return nil, fmt.Errorf("halgpu: framebuffer %d attachment %d: %w", id, a, device.ErrInvalidHandle)
		}
		v, err := d.attachView(tex, at.layer, at.level)
		if err != nil {
			return nil, err
		}
		t.colors = append(t.colors, v)
		t.formats = append(t.formats, tex.format)
		t.textures = append(t.textures, tex)
	}
	for _, a := range []device.Attachment{device.AttachDepth, device.AttachStencil} {
		at, ok := fb.attachments[a]
		if !ok {
			continue
		}
		tex, ok := d.textures[at.texture]
		if !ok {
			return nil, fmt.Errorf("halgpu: framebuffer %d depth attachment: %w", id, device.ErrInvalidHandle)
		}
		v, err := d.attachView(tex, 0, 0)
		if err != nil {
			return nil, err
		}
		t.depth = v
		t.textures = append(t.textures, tex)
		break
	}
	if len(t.colors) == 0 && t.depth == nil {
		return nil, fmt.Errorf("halgpu: framebuffer %d: %w", id, device.ErrIncompleteFramebuffer)
	}
	return t, nil
}

// CreateFramebuffer implements device.Device.
func (d *Device) CreateFramebuffer(width, height int) (device.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("halgpu: framebuffer size %dx%d: %w", width, height, device.ErrOutOfRange)
	}
	id := device.Framebuffer(d.newID())
	d.framebuffers[id] = &framebuffer{width: width, height: height, attachments: make(map[device.Attachment]attachment)}
	return id, nil
}

// AttachFramebuffer implements device.Device.
func (d *Device) AttachFramebuffer(id device.Framebuffer, t device.Texture, attach device.Attachment, texType device.AttachTextureType, mipLevel int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb, ok := d.framebuffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	tex, ok := d.textures[t]
	if !ok {
		return device.ErrInvalidHandle
	}
	at := attachment{texture: t, level: mipLevel}
	if texType.IsCubemapFace() {
		if tex.desc.Kind != device.TextureCubemap {
			return fmt.Errorf("halgpu: cube face attachment of a 2D texture: %w", device.ErrIncompleteFramebuffer)
		}
		at.layer = int(texType)
	}
	if attach.IsColor() == tex.isDepth() {
		return fmt.Errorf("halgpu: texture kind %d on attachment %d: %w", tex.desc.Kind, attach, device.ErrIncompleteFramebuffer)
	}
	if mipLevel < 0 || mipLevel >= int(tex.levels) {
		return device.ErrOutOfRange
	}
	if d.frame.passFB == id {
		d.endPass()
	}
	fb.attachments[attach] = at
	return nil
}

// FramebufferStatus implements device.Device. Every attachment must match
// the framebuffer size at its mip level.
func (d *Device) FramebufferStatus(id device.Framebuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb, ok := d.framebuffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if len(fb.attachments) == 0 {
		return fmt.Errorf("halgpu: framebuffer %d has no attachments: %w", id, device.ErrIncompleteFramebuffer)
	}
	for a, at := range fb.attachments {
		tex, ok := d.textures[at.texture]
		if !ok {
			return fmt.Errorf("halgpu: framebuffer %d attachment %d destroyed: %w", id, a, device.ErrIncompleteFramebuffer)
		}
		w, h := max(tex.desc.Width>>at.level, 1), max(tex.desc.Height>>at.level, 1)
		if w != fb.width || h != fb.height {
			return fmt.Errorf("halgpu: framebuffer %d is %dx%d, attachment %d is %dx%d: %w",
				id, fb.width, fb.height, a, w, h, device.ErrIncompleteFramebuffer)
		}
	}
	return nil
}

// BindFramebuffer implements device.Device.
func (d *Device) BindFramebuffer(id device.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.framebuffer = id
}

// SetDrawBuffers implements device.Device.
func (d *Device) SetDrawBuffers(count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	count = max(1, min(count, d.caps.MaxColorAttachments))
	if count != d.state.drawBuffers && d.frame.passFB != 0 {
		d.endPass()
	}
	d.state.drawBuffers = count
}

// DestroyFramebuffer implements device.Device. Attached textures are not
// destroyed.
func (d *Device) DestroyFramebuffer(id device.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.framebuffers[id]; !ok {
		return
	}
	if d.frame.passFB == id {
		d.endPass()
	}
	delete(d.frame.clears, id)
	delete(d.framebuffers, id)
	if d.state.framebuffer == id {
		d.state.framebuffer = 0
	}
}

func swapRedBlue(src []byte) []byte {
	dst := make([]byte, len(src))
	for i := 0; i+3 < len(src); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
	}
	return dst
}
