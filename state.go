// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"fmt"

	"github.com/gogpu/immgl/device"
)

// BlendMode selects how fragments are combined with the render target.
type BlendMode int

const (
	// BlendAlpha blends with the source alpha (default).
	BlendAlpha BlendMode = iota
	// BlendAdditive adds the alpha-weighted source.
	BlendAdditive
	// BlendMultiplied multiplies source and destination colors.
	BlendMultiplied
	// BlendAddColors adds source and destination.
	BlendAddColors
	// BlendSubtractColors subtracts source from destination.
	BlendSubtractColors
	// BlendAlphaPremultiply blends a premultiplied source.
	BlendAlphaPremultiply
	// BlendCustom uses the factors set with SetBlendFactors.
	BlendCustom
	// BlendCustomSeparate uses the factors set with SetBlendFactorsSeparate.
	BlendCustomSeparate
)

var blendModeNames = [...]string{
	BlendAlpha:            "Alpha",
	BlendAdditive:         "Additive",
	BlendMultiplied:       "Multiplied",
	BlendAddColors:        "AddColors",
	BlendSubtractColors:   "SubtractColors",
	BlendAlphaPremultiply: "AlphaPremultiply",
	BlendCustom:           "Custom",
	BlendCustomSeparate:   "CustomSeparate",
}

func (m BlendMode) String() string {
	if m >= 0 && int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

func (m BlendMode) custom() bool {
	return m == BlendCustom || m == BlendCustomSeparate
}

func uniformBlend(src, dst device.BlendFactor, eq device.BlendEquation) device.BlendState {
	return device.BlendState{
		SrcRGB: src, DstRGB: dst,
		SrcAlpha: src, DstAlpha: dst,
		EqRGB: eq, EqAlpha: eq,
	}
}

// blendStates holds the device state of the preset modes.
var blendStates = [...]device.BlendState{
	BlendAlpha:            uniformBlend(device.BlendSrcAlpha, device.BlendOneMinusSrcAlpha, device.EquationAdd),
	BlendAdditive:         uniformBlend(device.BlendSrcAlpha, device.BlendOne, device.EquationAdd),
	BlendMultiplied:       uniformBlend(device.BlendDstColor, device.BlendOneMinusSrcAlpha, device.EquationAdd),
	BlendAddColors:        uniformBlend(device.BlendOne, device.BlendOne, device.EquationAdd),
	BlendSubtractColors:   uniformBlend(device.BlendOne, device.BlendOne, device.EquationSubtract),
	BlendAlphaPremultiply: uniformBlend(device.BlendOne, device.BlendOneMinusSrcAlpha, device.EquationAdd),
}

// SetBlendMode flushes the active batch and applies mode. Nothing happens
// if mode is already set, unless it is a custom mode whose factors changed
// since it was applied.
func (c *Context) SetBlendMode(mode BlendMode) {
	if mode == c.blendMode && !(mode.custom() && c.customBlendModified) {
		return
	}
	var state device.BlendState
	switch {
	case mode == BlendCustom:
		state = c.blendFactors
	case mode == BlendCustomSeparate:
		state = c.blendFactorsSeparate
	case mode >= 0 && int(mode) < len(blendStates):
		state = blendStates[mode]
	default:
		Logger().Warn("immgl: unknown blend mode", "mode", mode)
		return
	}
	_ = c.active.Draw()
	c.dev.SetBlend(state)
	c.blendMode = mode
	c.customBlendModified = false
}

// BlendMode returns the blend mode last applied.
func (c *Context) BlendMode() BlendMode { return c.blendMode }

// SetBlendFactors sets the factors and equation used by BlendCustom for
// both color and alpha.
func (c *Context) SetBlendFactors(src, dst device.BlendFactor, eq device.BlendEquation) {
	s := uniformBlend(src, dst, eq)
	if s != c.blendFactors {
		c.blendFactors = s
		c.customBlendModified = true
	}
}

// SetBlendFactorsSeparate sets the factors and equations used by
// BlendCustomSeparate.
func (c *Context) SetBlendFactorsSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha device.BlendFactor, eqRGB, eqAlpha device.BlendEquation) {
	s := device.BlendState{
		SrcRGB: srcRGB, DstRGB: dstRGB,
		SrcAlpha: srcAlpha, DstAlpha: dstAlpha,
		EqRGB: eqRGB, EqAlpha: eqAlpha,
	}
	if s != c.blendFactorsSeparate {
		c.blendFactorsSeparate = s
		c.customBlendModified = true
	}
}

// EnableColorBlend turns blending on.
func (c *Context) EnableColorBlend() { c.dev.SetFeature(device.FeatureBlend, true) }

// DisableColorBlend turns blending off.
func (c *Context) DisableColorBlend() { c.dev.SetFeature(device.FeatureBlend, false) }

// EnableDepthTest turns depth testing on.
func (c *Context) EnableDepthTest() { c.dev.SetFeature(device.FeatureDepthTest, true) }

// DisableDepthTest turns depth testing off.
func (c *Context) DisableDepthTest() { c.dev.SetFeature(device.FeatureDepthTest, false) }

// EnableDepthMask turns depth writes on.
func (c *Context) EnableDepthMask() { c.dev.SetFeature(device.FeatureDepthMask, true) }

// DisableDepthMask turns depth writes off.
func (c *Context) DisableDepthMask() { c.dev.SetFeature(device.FeatureDepthMask, false) }

// EnableBackfaceCulling turns face culling on.
func (c *Context) EnableBackfaceCulling() { c.dev.SetFeature(device.FeatureCullFace, true) }

// DisableBackfaceCulling turns face culling off.
func (c *Context) DisableBackfaceCulling() { c.dev.SetFeature(device.FeatureCullFace, false) }

// SetCullFace selects the faces discarded while culling is on.
func (c *Context) SetCullFace(face device.CullFace) { c.dev.SetCullFace(face) }

// EnableScissorTest turns the scissor test on.
func (c *Context) EnableScissorTest() { c.dev.SetFeature(device.FeatureScissorTest, true) }

// DisableScissorTest turns the scissor test off.
func (c *Context) DisableScissorTest() { c.dev.SetFeature(device.FeatureScissorTest, false) }

// Scissor sets the scissor rectangle.
func (c *Context) Scissor(x, y, width, height int) {
	c.dev.SetScissor(device.Viewport{X: x, Y: y, Width: width, Height: height})
}

// EnableWireMode draws polygons as outlines.
func (c *Context) EnableWireMode() { c.dev.SetFeature(device.FeatureWireframe, true) }

// EnablePointMode draws polygons as points.
func (c *Context) EnablePointMode() { c.dev.SetFeature(device.FeaturePointMode, true) }

// DisableWireMode restores filled polygons from wire or point mode.
func (c *Context) DisableWireMode() {
	c.dev.SetFeature(device.FeatureWireframe, false)
	c.dev.SetFeature(device.FeaturePointMode, false)
}

// EnableSmoothLines turns line antialiasing on.
func (c *Context) EnableSmoothLines() { c.dev.SetFeature(device.FeatureLineSmooth, true) }

// DisableSmoothLines turns line antialiasing off.
func (c *Context) DisableSmoothLines() { c.dev.SetFeature(device.FeatureLineSmooth, false) }

// SetLineWidth sets the rasterized line width.
func (c *Context) SetLineWidth(width float32) {
	c.lineWidth = width
	c.dev.SetLineWidth(width)
}

// LineWidth returns the line width last set.
func (c *Context) LineWidth() float32 { return c.lineWidth }

// EnableStereoRender makes flushes draw every batch once per eye.
func (c *Context) EnableStereoRender() { c.stereo = true }

// DisableStereoRender returns to a single full viewport per flush.
func (c *Context) DisableStereoRender() { c.stereo = false }

// IsStereoRenderEnabled reports whether stereo rendering is on.
func (c *Context) IsStereoRenderEnabled() bool { return c.stereo }

// ClearColor sets the color used by ClearScreenBuffers.
func (c *Context) ClearColor(r, g, b, a uint8) {
	c.clearColor = [4]float32{
		float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255,
	}
}

// ClearScreenBuffers clears the color and depth buffers of the current
// render target.
func (c *Context) ClearScreenBuffers() {
	c.dev.Clear(c.clearColor, device.ClearColor|device.ClearDepth)
}

// EnableFramebuffer makes fb the render target.
func (c *Context) EnableFramebuffer(fb device.Framebuffer) { c.dev.BindFramebuffer(fb) }

// DisableFramebuffer restores the default render target.
func (c *Context) DisableFramebuffer() { c.dev.BindFramebuffer(0) }

// ActiveDrawBuffers selects how many color attachments of the bound
// framebuffer are written. Between 1 and 8 are accepted.
func (c *Context) ActiveDrawBuffers(count int) {
	switch {
	case count <= 0:
		Logger().Warn("immgl: one color buffer is active by default", "count", count)
	case count > 8:
		Logger().Warn("immgl: at most 8 color buffers can be active", "count", count)
	default:
		c.dev.SetDrawBuffers(count)
	}
}

// ActiveTextureSlot selects the unit EnableTexture binds to.
func (c *Context) ActiveTextureSlot(slot int) { c.textureSlot = slot }

// EnableTexture binds tex to the active texture slot.
func (c *Context) EnableTexture(tex device.Texture) { c.dev.BindTexture(c.textureSlot, tex) }

// DisableTexture unbinds the active texture slot.
func (c *Context) DisableTexture() { c.dev.BindTexture(c.textureSlot, 0) }

// EnableTextureCubemap binds the cubemap tex to the active texture slot.
func (c *Context) EnableTextureCubemap(tex device.Texture) { c.dev.BindTexture(c.textureSlot, tex) }

// DisableTextureCubemap unbinds the active texture slot.
func (c *Context) DisableTextureCubemap() { c.dev.BindTexture(c.textureSlot, 0) }

// EnableShader makes program current on the device without touching the
// batch shader.
func (c *Context) EnableShader(p device.Program) { c.dev.UseProgram(p) }

// DisableShader unbinds the device program.
func (c *Context) DisableShader() { c.dev.UseProgram(0) }

// FramebufferWidth returns the width used for stereo viewports.
func (c *Context) FramebufferWidth() int { return c.fbWidth }

// FramebufferHeight returns the height used for stereo viewports.
func (c *Context) FramebufferHeight() int { return c.fbHeight }

// SetFramebufferWidth sets the width used for stereo viewports.
func (c *Context) SetFramebufferWidth(w int) { c.fbWidth = w }

// SetFramebufferHeight sets the height used for stereo viewports.
func (c *Context) SetFramebufferHeight(h int) { c.fbHeight = h }

// CullDistanceNear returns the configured near cull distance.
func (c *Context) CullDistanceNear() float64 { return c.cfg.CullNear }

// CullDistanceFar returns the configured far cull distance.
func (c *Context) CullDistanceFar() float64 { return c.cfg.CullFar }

// DefaultTexture returns the 1x1 white texture used for untextured vertices.
func (c *Context) DefaultTexture() device.Texture { return c.defaultTexture }

// DefaultShader returns the default program.
func (c *Context) DefaultShader() device.Program { return c.defaultProgram }

// DefaultShaderLocations returns the location table of the default program.
func (c *Context) DefaultShaderLocations() device.Locations { return c.defaultLocs }

// Shader returns the program the batch draws with.
func (c *Context) Shader() device.Program { return c.program }

// ShaderLocations returns the location table of the current program.
func (c *Context) ShaderLocations() device.Locations { return c.locs }
