// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"fmt"
	"io"

	"github.com/gogpu/immgl/batch"
	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/matrix"
)

// Context is the renderer state: matrix stack, pending vertex attributes,
// current shader, blend state, default resources and the active batch.
// Context implements io.Closer.
type Context struct {
	dev device.Device
	cfg Config

	// Matrix state
	mode              MatrixMode
	target            matrixTarget
	modelview         matrix.Matrix
	projection        matrix.Matrix
	transform         matrix.Matrix
	transformRequired bool
	stack             []matrix.Matrix

	// Pending vertex attributes
	texcoord [2]float32
	normal   [3]float32
	color    [4]uint8

	// Batches
	defaultBatch *batch.Batch
	active       *batch.Batch

	// Textures
	defaultTexture device.Texture
	activeTextures []device.Texture

	// Shaders
	defaultVS      device.Shader
	defaultFS      device.Shader
	defaultProgram device.Program
	defaultLocs    device.Locations
	program        device.Program
	locs           device.Locations

	// Blending
	blendMode            BlendMode
	blendFactors         device.BlendState // CUSTOM
	blendFactorsSeparate device.BlendState // CUSTOM_SEPARATE
	customBlendModified  bool

	// Framebuffers
	fbWidth, fbHeight int
	fbDepth           map[device.Framebuffer]device.Texture

	// Stereo
	stereo           bool
	projectionStereo [2]matrix.Matrix
	viewOffsetStereo [2]matrix.Matrix

	lineWidth   float32
	clearColor  [4]float32
	textureSlot int

	closed bool
}

var _ io.Closer = (*Context)(nil)

// New initializes a Context on dev for a framebuffer of width x height
// pixels. It loads the default white texture, the default shader program
// and the default render batch, and sets the initial device state: alpha
// blending on, back-face culling on, depth test off, cleared to black.
//
// The caller keeps ownership of dev; Close does not close it.
func New(dev device.Device, width, height int, opts ...Option) (*Context, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}
	registerDevice(dev)

	c := &Context{
		dev:            dev,
		cfg:            o.cfg,
		mode:           Modelview,
		target:         targetModelview,
		modelview:      matrix.Identity(),
		projection:     matrix.Identity(),
		transform:      matrix.Identity(),
		stack:          make([]matrix.Matrix, 0, o.cfg.StackSize),
		color:          [4]uint8{255, 255, 255, 255},
		activeTextures: make([]device.Texture, o.cfg.TextureUnits),
		fbWidth:        width,
		fbHeight:       height,
		fbDepth:        make(map[device.Framebuffer]device.Texture),
		lineWidth:      1,
		clearColor:     [4]float32{0, 0, 0, 1},
		blendFactors: device.BlendState{
			SrcRGB: device.BlendSrcAlpha, DstRGB: device.BlendOneMinusSrcAlpha,
			SrcAlpha: device.BlendSrcAlpha, DstAlpha: device.BlendOneMinusSrcAlpha,
			EqRGB: device.EquationAdd, EqAlpha: device.EquationAdd,
		},
	}
	c.blendFactorsSeparate = c.blendFactors
	c.projectionStereo = [2]matrix.Matrix{matrix.Identity(), matrix.Identity()}
	c.viewOffsetStereo = [2]matrix.Matrix{matrix.Identity(), matrix.Identity()}

	c.defaultTexture = c.LoadTexture([]byte{255, 255, 255, 255}, 1, 1, device.PixelFormatR8G8B8A8, 1)
	if c.defaultTexture.Valid() {
		Logger().Info("immgl: default texture loaded", "id", c.defaultTexture)
	} else {
		Logger().Warn("immgl: failed to load default texture")
	}

	c.loadDefaultShader(o.vertexShader, o.fragmentShader)
	c.program = c.defaultProgram
	c.locs = c.defaultLocs

	b, err := batch.New(dev, (*batchHost)(c), c.batchConfig(o.cfg.BatchBuffers, o.cfg.BatchCapacity))
	if err != nil {
		c.unloadDefaults()
		unregisterDevice(dev)
		return nil, fmt.Errorf("immgl: default batch: %w", err)
	}
	c.defaultBatch = b
	c.active = b

	dev.SetFeature(device.FeatureDepthTest, false)
	dev.SetBlend(blendStates[BlendAlpha])
	dev.SetFeature(device.FeatureBlend, true)
	dev.SetCullFace(device.CullBack)
	dev.SetFeature(device.FeatureCullFace, true)
	dev.Clear(c.clearColor, device.ClearColor|device.ClearDepth)

	Logger().Info("immgl: context initialized", "width", width, "height", height,
		"batchCapacity", o.cfg.BatchCapacity, "batchBuffers", o.cfg.BatchBuffers)
	return c, nil
}

// Close releases the default batch, shader and texture. Resources the
// caller loaded are not tracked and stay alive. Close is idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.defaultBatch.Unload()
	c.unloadDefaults()
	unregisterDevice(c.dev)
	Logger().Info("immgl: context closed")
	return nil
}

// Device returns the device the context drives.
func (c *Context) Device() device.Device { return c.dev }

// Config returns the configuration the context was created with.
func (c *Context) Config() Config { return c.cfg }

func (c *Context) unloadDefaults() {
	c.unloadDefaultShader()
	if c.defaultTexture.Valid() {
		c.dev.DestroyTexture(c.defaultTexture)
		Logger().Info("immgl: default texture unloaded", "id", c.defaultTexture)
	}
}

func (c *Context) batchConfig(buffers, capacity int) batch.Config {
	return batch.Config{
		Buffers:        buffers,
		Capacity:       capacity,
		DrawCalls:      c.cfg.DrawCalls,
		DefaultTexture: c.defaultTexture,
		Locations:      c.locs,
		InitialDepth:   c.cfg.InitialDepth,
		DepthStep:      c.cfg.DepthStep,
	}
}

// batchHost exposes the flush-time state of a Context to its batches
// without adding Host methods to the Context API.
type batchHost Context

func (h *batchHost) FlushState() batch.FlushState {
	c := (*Context)(h)
	return batch.FlushState{
		Program:           c.program,
		Locations:         c.locs,
		Modelview:         c.modelview,
		Projection:        c.projection,
		Stereo:            c.stereo,
		ProjectionStereo:  c.projectionStereo,
		ViewOffsetStereo:  c.viewOffsetStereo,
		FramebufferWidth:  c.fbWidth,
		FramebufferHeight: c.fbHeight,
		ActiveTextures:    c.activeTextures,
	}
}

func (h *batchHost) Flushed() {
	clear(h.activeTextures)
}
