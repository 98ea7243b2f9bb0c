// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package halgpu implements [device.Device] on the gogpu/wgpu hardware
// abstraction layer.
//
// The device translates the bind-and-draw call stream of the renderer into
// WebGPU command encoding: bound state is tracked on the CPU, render
// pipelines are built on demand for each distinct state combination and
// cached, and uniforms are snapshotted into a fresh uniform buffer for every
// draw. Recorded commands reach the GPU queue on Submit.
//
// Shaders are WGSL. Uniforms live in `var<uniform>` structs, textures are
// paired with the sampler named after them (texture0 with texture0Sampler),
// storage buffers bind by binding index and vertex inputs by @location:
//
//	dev, err := halgpu.New(halgpu.Config{Width: 800, Height: 450})
//	...
//	rc, err := immgl.New(dev, 800, 450)
//
// Build with the nogpu tag to exclude the device.
package halgpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/immgl/device"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// fenceTimeout bounds the wait for a submitted frame.
const fenceTimeout = 5 * time.Second

// ErrNoAdapter is returned by New when no GPU adapter can be opened.
var ErrNoAdapter = errors.New("halgpu: no GPU adapter available")

var _ device.Device = (*Device)(nil)

// Config configures a Device.
type Config struct {
	// Width and Height size the offscreen default render target.
	Width, Height int

	// ColorFormat is the format of the default render target. Zero means
	// RGBA8Unorm.
	ColorFormat gputypes.TextureFormat
}

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Device implements device.Device on a hal.Device and hal.Queue.
//
// Device is safe for concurrent use, but the renderer drives it from one
// goroutine and commands are encoded in call order.
type Device struct {
	mu     sync.Mutex
	dev    hal.Device
	queue  hal.Queue
	caps   device.Capabilities
	logger atomic.Pointer[slog.Logger]

	// owned is set when New opened the device; Close destroys it then.
	owned    bool
	instance hal.Instance

	nextID       uint32
	buffers      map[device.Buffer]*buffer
	textures     map[device.Texture]*texture
	framebuffers map[device.Framebuffer]*framebuffer
	vertexArrays map[device.VertexArray]*vertexArray
	shaders      map[device.Shader]*shader
	programs     map[device.Program]*program

	screen    screen
	white     *texture
	state     state
	pipelines map[pipelineKey]hal.RenderPipeline
	frame     frame
	closed    bool
}

// New opens the first usable GPU adapter and creates a device with an
// offscreen default render target.
func New(cfg Config) (*Device, error) {
	var lastErr error = ErrNoAdapter
	for _, b := range []gputypes.Backend{gputypes.BackendVulkan, gputypes.BackendMetal, gputypes.BackendDX12} {
		backend, ok := hal.GetBackend(b)
		if !ok {
			continue
		}
		instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			lastErr = fmt.Errorf("halgpu: create instance: %w", err)
			continue
		}
		adapters := instance.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			instance.Destroy()
			continue
		}
		selected := &adapters[0]
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
				adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
		open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
		if err != nil {
			instance.Destroy()
			lastErr = fmt.Errorf("halgpu: open %s: %w", selected.Info.Name, err)
			continue
		}
		d, err := newDevice(open.Device, open.Queue, cfg)
		if err != nil {
			open.Device.Destroy()
			instance.Destroy()
			return nil, err
		}
		d.owned = true
		d.instance = instance
		d.log().Info("halgpu: device opened", "adapter", selected.Info.Name)
		return d, nil
	}
	return nil, lastErr
}

// NewFromProvider shares the device of a host application. The provider
// must expose its HAL objects through HalDevice() and HalQueue(); the
// host keeps ownership of them.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, errors.New("halgpu: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, errors.New("halgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("halgpu: provider HalQueue is not hal.Queue")
	}
	return newDevice(dev, queue, cfg)
}

func newDevice(dev hal.Device, queue hal.Queue, cfg Config) (*Device, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("halgpu: invalid target size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.ColorFormat == gputypes.TextureFormatUndefined {
		cfg.ColorFormat = gputypes.TextureFormatRGBA8Unorm
	}
	lim := gputypes.DefaultLimits()
	d := &Device{
		dev:   dev,
		queue: queue,
		caps: device.Capabilities{
			ComputeShaders:      true,
			StorageBuffers:      true,
			InstancedDraw:       true,
			DepthTextures:       true,
			FloatTextures:       true,
			Anisotropy:          true,
			MaxAnisotropy:       16,
			MaxTextureSize:      int(lim.MaxTextureDimension2D),
			MaxTextureUnits:     int(lim.MaxSampledTexturesPerShaderStage),
			MaxVertexAttributes: int(lim.MaxVertexAttributes),
			MaxColorAttachments: int(lim.MaxColorAttachments),
		},
		buffers:      make(map[device.Buffer]*buffer),
		textures:     make(map[device.Texture]*texture),
		framebuffers: make(map[device.Framebuffer]*framebuffer),
		vertexArrays: make(map[device.VertexArray]*vertexArray),
		shaders:      make(map[device.Shader]*shader),
		programs:     make(map[device.Program]*program),
		pipelines:    make(map[pipelineKey]hal.RenderPipeline),
		state:        newState(),
	}
	d.logger.Store(slog.New(nopHandler{}))

	if err := d.createScreen(cfg.Width, cfg.Height, cfg.ColorFormat); err != nil {
		return nil, err
	}
	white, err := d.newTexture(device.TextureDescriptor{
		Label: "immgl_white", Kind: device.Texture2D,
		Width: 1, Height: 1, Format: device.PixelFormatR8G8B8A8, MipLevels: 1,
	}, [][]byte{{255, 255, 255, 255}})
	if err != nil {
		d.destroyScreen()
		return nil, fmt.Errorf("halgpu: fallback texture: %w", err)
	}
	d.white = white
	return d, nil
}

// SetLogger sets the logger used for device failures and per-frame debug
// output. Pass nil to disable logging.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger { return d.logger.Load() }

// Capabilities implements device.Device.
func (d *Device) Capabilities() device.Capabilities {
	return d.caps
}

func (d *Device) newID() uint32 {
	d.nextID++
	return d.nextID
}

// Submit implements device.Device. It waits until the GPU has finished the
// submitted work.
func (d *Device) Submit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitLocked()
}

// Close implements device.Device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	err := d.submitLocked()
	d.closed = true

	for k, p := range d.pipelines {
		d.dev.DestroyRenderPipeline(p)
		delete(d.pipelines, k)
	}
	for id, p := range d.programs {
		d.destroyProgram(p)
		delete(d.programs, id)
	}
	for id, s := range d.shaders {
		d.dev.DestroyShaderModule(s.module)
		delete(d.shaders, id)
	}
	for id := range d.framebuffers {
		delete(d.framebuffers, id)
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	for id, b := range d.buffers {
		d.dev.DestroyBuffer(b.hal)
		delete(d.buffers, id)
	}
	clear(d.vertexArrays)
	d.destroyTexture(d.white)
	d.destroyScreen()

	if d.owned {
		d.dev.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	return err
}
