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

// texture is a GPU texture with its default view and lazily created
// sampler.
type texture struct {
	desc   device.TextureDescriptor
	info   formatInfo
	format gputypes.TextureFormat
	layers uint32
	levels uint32

	hal  hal.Texture
	view hal.TextureView

	// attach holds single-level 2D views used as render attachments, keyed
	// by face and mip level.
	attach map[attachKey]hal.TextureView

	params  map[device.TextureParameter]int32
	sampler hal.Sampler

	inFlight bool
}

type attachKey struct{ layer, level int }

func (t *texture) isDepth() bool {
	return t.desc.Kind == device.TextureDepth || t.desc.Kind == device.TextureRenderbuffer
}

// CreateTexture implements device.Device. For cubemaps levels holds the six
// faces of level 0; otherwise it holds one entry per mip level.
func (d *Device) CreateTexture(desc device.TextureDescriptor, levels [][]byte) (device.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.newTexture(desc, levels)
	if err != nil {
		return 0, err
	}
	id := device.Texture(d.newID())
	d.textures[id] = t
	return id, nil
}

func (d *Device) newTexture(desc device.TextureDescriptor, levels [][]byte) (*texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("halgpu: texture %q size %dx%d: %w", desc.Label, desc.Width, desc.Height, device.ErrOutOfRange)
	}
	t := &texture{
		desc:   desc,
		layers: 1,
		levels: uint32(max(desc.MipLevels, 1)),
		params: make(map[device.TextureParameter]int32),
		attach: make(map[attachKey]hal.TextureView),
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst |
		gputypes.TextureUsageCopySrc | gputypes.TextureUsageRenderAttachment
	viewDim := gputypes.TextureViewDimension2D

	switch desc.Kind {
	case device.TextureDepth, device.TextureRenderbuffer:
		t.format = depthFormat
		t.levels = 1
		usage = gputypes.TextureUsageRenderAttachment
		if desc.Kind == device.TextureDepth {
			usage |= gputypes.TextureUsageTextureBinding
		}
	default:
		info, ok := lookupFormat(desc.Format)
		if !ok {
			return nil, fmt.Errorf("halgpu: %s: %w", desc.Format, device.ErrUnsupportedFormat)
		}
		t.info = info
		t.format = info.GPU
		if d.caps.ComputeShaders {
			usage |= gputypes.TextureUsageStorageBinding
		}
		if desc.Kind == device.TextureCubemap {
			t.layers = 6
			t.levels = 1
			viewDim = gputypes.TextureViewDimensionCube
		}
	}

	ht, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: t.layers},
		MipLevelCount: t.levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.dev.CreateTextureView(ht, &hal.TextureViewDescriptor{
		Label:         desc.Label,
		Format:        t.format,
		Dimension:     viewDim,
		Aspect:        t.aspect(),
		MipLevelCount: t.levels,
	})
	if err != nil {
		d.dev.DestroyTexture(ht)
		return nil, fmt.Errorf("halgpu: create texture view %q: %w", desc.Label, err)
	}
	t.hal, t.view = ht, view

	if t.isDepth() {
		return t, nil
	}
	for i, data := range levels {
		if len(data) == 0 {
			continue
		}
		level, layer := i, 0
		if desc.Kind == device.TextureCubemap {
			level, layer = 0, i
		}
		if level >= int(t.levels) || layer >= int(t.layers) {
			break
		}
		w, h := max(desc.Width>>level, 1), max(desc.Height>>level, 1)
		if len(data) < w*h*t.info.SrcBytes {
			d.destroyTexture(t)
			return nil, fmt.Errorf("halgpu: texture %q level %d: %d bytes for %dx%d: %w",
				desc.Label, i, len(data), w, h, device.ErrOutOfRange)
		}
		d.writeTexture(t, level, layer, 0, 0, w, h, data[:w*h*t.info.SrcBytes])
	}
	return t, nil
}

// aspect returns the aspect sampled through the default view. Depth
// textures are sampled as depth; the stencil half is not exposed.
func (t *texture) aspect() gputypes.TextureAspect {
	if t.isDepth() {
		return gputypes.TextureAspectDepthOnly
	}
	return gputypes.TextureAspectAll
}

func (d *Device) writeTexture(t *texture, level, layer, x, y, w, h int, data []byte) {
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.hal,
			MipLevel: uint32(level),
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(layer)},
		},
		t.info.toGPU(data),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * t.info.GPUBytes),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
}

// UpdateTexture implements device.Device.
func (d *Device) UpdateTexture(id device.Texture, region device.TextureRegion, format device.PixelFormat, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if t.isDepth() {
		return fmt.Errorf("halgpu: update depth texture: %w", device.ErrNotSupported)
	}
	if format != t.desc.Format {
		return fmt.Errorf("halgpu: update %s texture with %s data: %w", t.desc.Format, format, device.ErrUnsupportedFormat)
	}
	w, h := max(t.desc.Width>>region.Level, 1), max(t.desc.Height>>region.Level, 1)
	if region.Level < 0 || region.Level >= int(t.levels) || region.Face < 0 || region.Face >= int(t.layers) ||
		region.X < 0 || region.Y < 0 || region.X+region.Width > w || region.Y+region.Height > h {
		return device.ErrOutOfRange
	}
	n := region.Width * region.Height * t.info.SrcBytes
	if len(data) < n {
		return device.ErrOutOfRange
	}
	if n == 0 {
		return nil
	}
	if t.inFlight {
		if err := d.submitLocked(); err != nil {
			return err
		}
	}
	d.writeTexture(t, region.Level, region.Face, region.X, region.Y, region.Width, region.Height, data[:n])
	return nil
}

// ReadTexture implements device.Device for 2D color textures.
func (d *Device) ReadTexture(id device.Texture, level int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[id]
	if !ok {
		return nil, device.ErrInvalidHandle
	}
	if t.isDepth() || t.desc.Kind == device.TextureCubemap {
		return nil, fmt.Errorf("halgpu: read %s texture: %w", t.desc.Label, device.ErrNotSupported)
	}
	if level < 0 || level >= int(t.levels) {
		return nil, device.ErrOutOfRange
	}
	if err := d.submitLocked(); err != nil {
		return nil, err
	}
	w, h := max(t.desc.Width>>level, 1), max(t.desc.Height>>level, 1)
	return d.readTexture(t, level, w, h)
}

func (d *Device) readTexture(t *texture, level, w, h int) ([]byte, error) {
	rowBytes := uint32(w * t.info.GPUBytes)
	aligned := alignedRow(rowBytes)
	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "immgl_texture_readback",
		Size:  uint64(aligned) * uint64(h),
		Usage: readbackUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	err = d.oneShot("immgl_texture_readback", func(enc hal.CommandEncoder) {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: t.hal,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageTextureBinding,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		enc.CopyTextureToBuffer(t.hal, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: uint32(h)},
			TextureBase:  hal.ImageCopyTexture{Texture: t.hal, MipLevel: uint32(level)},
			Size:         hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		}})
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: t.hal,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageTextureBinding,
			},
		}})
	})
	if err != nil {
		return nil, err
	}
	raw := make([]byte, uint64(aligned)*uint64(h))
	if err := d.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("halgpu: texture readback: %w", err)
	}
	return t.info.fromGPU(stripRows(raw, int(rowBytes), int(aligned), h)), nil
}

// SetTextureParameter implements device.Device.
func (d *Device) SetTextureParameter(id device.Texture, param device.TextureParameter, value int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	switch param {
	case device.ParamWrapS, device.ParamWrapT, device.ParamMagFilter, device.ParamMinFilter,
		device.ParamMipmapBias, device.ParamAnisotropy:
	default:
		return fmt.Errorf("halgpu: texture parameter %#x: %w", uint32(param), device.ErrNotSupported)
	}
	if old, ok := t.params[param]; ok && old == value {
		return nil
	}
	t.params[param] = value
	if s := t.sampler; s != nil {
		t.sampler = nil
		d.release(t.inFlight, func() { d.dev.DestroySampler(s) })
	}
	return nil
}

// samplerFor returns the sampler described by the parameters of t.
func (d *Device) samplerFor(t *texture) (hal.Sampler, error) {
	if t.sampler != nil {
		return t.sampler, nil
	}
	param := func(p device.TextureParameter, def int32) int32 {
		if v, ok := t.params[p]; ok {
			return v
		}
		return def
	}
	minParam := param(device.ParamMinFilter, device.FilterNearestMipLinear)
	if t.levels == 1 && usesMipmaps(minParam) {
		minParam = device.FilterLinear
	}
	minFilter, mipFilter := convertMinFilter(minParam)
	desc := &hal.SamplerDescriptor{
		Label:        t.desc.Label,
		AddressModeU: convertWrap(param(device.ParamWrapS, device.WrapRepeat)),
		AddressModeV: convertWrap(param(device.ParamWrapT, device.WrapRepeat)),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    convertMagFilter(param(device.ParamMagFilter, device.FilterLinear)),
		MinFilter:    minFilter,
		MipmapFilter: mipFilter,
		LodMinClamp:  0,
		LodMaxClamp:  float32(t.levels),
		Anisotropy:   1,
	}
	if !usesMipmaps(minParam) {
		desc.LodMaxClamp = 0
	}
	// WebGPU has no LOD bias; a positive bias is applied as a minimum LOD.
	if bias := float32(param(device.ParamMipmapBias, 0)) / 100; bias > 0 {
		desc.LodMinClamp = min(bias, desc.LodMaxClamp)
	}
	if a := param(device.ParamAnisotropy, 1); a > 1 && desc.MinFilter == gputypes.FilterModeLinear &&
		desc.MagFilter == gputypes.FilterModeLinear && desc.MipmapFilter == gputypes.FilterModeLinear {
		desc.Anisotropy = uint16(min(a, 16))
	}
	s, err := d.dev.CreateSampler(desc)
	if err != nil {
		return nil, fmt.Errorf("halgpu: create sampler %q: %w", t.desc.Label, err)
	}
	t.sampler = s
	return s, nil
}

// DestroyTexture implements device.Device.
func (d *Device) DestroyTexture(id device.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	if !ok {
		return
	}
	delete(d.textures, id)
	for unit, bound := range d.state.textures {
		if bound == id {
			delete(d.state.textures, unit)
		}
	}
	for unit, img := range d.state.images {
		if img.texture == id {
			delete(d.state.images, unit)
		}
	}
	d.release(t.inFlight, func() { d.destroyTexture(t) })
}

func (d *Device) destroyTexture(t *texture) {
	if t == nil || t.hal == nil {
		return
	}
	if t.sampler != nil {
		d.dev.DestroySampler(t.sampler)
	}
	for _, v := range t.attach {
		d.dev.DestroyTextureView(v)
	}
	d.dev.DestroyTextureView(t.view)
	d.dev.DestroyTexture(t.hal)
	t.hal, t.view, t.sampler = nil, nil, nil
}

// attachView returns a single-level 2D view of t usable as a render
// attachment.
func (d *Device) attachView(t *texture, layer, level int) (hal.TextureView, error) {
	if t.layers == 1 && t.levels == 1 && !t.isDepth() {
		return t.view, nil
	}
	k := attachKey{layer, level}
	if v, ok := t.attach[k]; ok {
		return v, nil
	}
	aspect := gputypes.TextureAspectAll
	v, err := d.dev.CreateTextureView(t.hal, &hal.TextureViewDescriptor{
		Label:           t.desc.Label + "_attachment",
		Format:          t.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          aspect,
		BaseMipLevel:    uint32(level),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create attachment view: %w", err)
	}
	t.attach[k] = v
	return v, nil
}

// BindTexture implements device.Device.
func (d *Device) BindTexture(unit int, id device.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == 0 {
		delete(d.state.textures, unit)
		return
	}
	d.state.textures[unit] = id
}

// BindImageTexture implements device.Device. unit is the @binding of the
// storage texture variable.
func (d *Device) BindImageTexture(unit int, id device.Texture, format device.PixelFormat, readOnly bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == 0 {
		delete(d.state.images, unit)
		return
	}
	if t, ok := d.textures[id]; ok && t.desc.Format != format {
		d.log().Warn("halgpu: image unit format differs from texture",
			"unit", unit, "texture", t.desc.Format, "format", format)
	}
	d.state.images[unit] = imageBinding{texture: id, readOnly: readOnly}
}

func (d *Device) touchTexture(t *texture) {
	if !t.inFlight {
		t.inFlight = true
		d.frame.textures = append(d.frame.textures, t)
	}
}
