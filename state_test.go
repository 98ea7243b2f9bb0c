// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/device/recorder"
	"github.com/gogpu/immgl/matrix"
)

func TestSetBlendMode(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want device.BlendState
	}{
		{BlendAdditive, device.BlendState{
			SrcRGB: device.BlendSrcAlpha, DstRGB: device.BlendOne,
			SrcAlpha: device.BlendSrcAlpha, DstAlpha: device.BlendOne,
			EqRGB: device.EquationAdd, EqAlpha: device.EquationAdd,
		}},
		{BlendMultiplied, uniformBlend(device.BlendDstColor, device.BlendOneMinusSrcAlpha, device.EquationAdd)},
		{BlendAddColors, uniformBlend(device.BlendOne, device.BlendOne, device.EquationAdd)},
		{BlendSubtractColors, uniformBlend(device.BlendOne, device.BlendOne, device.EquationSubtract)},
		{BlendAlphaPremultiply, uniformBlend(device.BlendOne, device.BlendOneMinusSrcAlpha, device.EquationAdd)},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			rc, rec := newTestContext(t)
			triangle(rc)

			rc.SetBlendMode(tt.mode)
			assert.Equal(t, tt.want, rec.State().Blend)
			assert.Equal(t, tt.mode, rc.BlendMode())
			assert.Len(t, rec.Draws(), 1, "pending vertices are flushed first")

			rc.SetBlendMode(tt.mode)
			assert.Equal(t, 1, rec.Count(recorder.OpSetBlend), "unchanged mode is a no-op")
			assert.Equal(t, 1, rec.Count(recorder.OpSubmit))
		})
	}
}

func TestSetBlendModeSameModeNoFlush(t *testing.T) {
	rc, rec := newTestContext(t)
	triangle(rc)
	rc.SetBlendMode(BlendAlpha)
	assert.Empty(t, rec.Calls())
	assert.Equal(t, 3, rc.ActiveBatch().VertexCounter())
}

func TestSetBlendModeCustom(t *testing.T) {
	rc, rec := newTestContext(t)

	rc.SetBlendFactors(device.BlendOne, device.BlendZero, device.EquationAdd)
	rc.SetBlendMode(BlendCustom)
	assert.Equal(t, uniformBlend(device.BlendOne, device.BlendZero, device.EquationAdd), rec.State().Blend)

	rc.SetBlendMode(BlendCustom)
	assert.Equal(t, 1, rec.Count(recorder.OpSetBlend), "unmodified custom factors are not reapplied")

	rc.SetBlendFactors(device.BlendOne, device.BlendZero, device.EquationAdd)
	rc.SetBlendMode(BlendCustom)
	assert.Equal(t, 1, rec.Count(recorder.OpSetBlend), "setting identical factors is not a modification")

	rc.SetBlendFactors(device.BlendZero, device.BlendOne, device.EquationSubtract)
	rc.SetBlendMode(BlendCustom)
	assert.Equal(t, 2, rec.Count(recorder.OpSetBlend))
	assert.Equal(t, uniformBlend(device.BlendZero, device.BlendOne, device.EquationSubtract), rec.State().Blend)
}

func TestSetBlendModeCustomSeparate(t *testing.T) {
	rc, rec := newTestContext(t)
	want := device.BlendState{
		SrcRGB: device.BlendOne, DstRGB: device.BlendZero,
		SrcAlpha: device.BlendSrcAlpha, DstAlpha: device.BlendOneMinusSrcAlpha,
		EqRGB: device.EquationAdd, EqAlpha: device.EquationSubtract,
	}
	rc.SetBlendFactorsSeparate(want.SrcRGB, want.DstRGB, want.SrcAlpha, want.DstAlpha, want.EqRGB, want.EqAlpha)
	rc.SetBlendMode(BlendCustomSeparate)
	assert.Equal(t, want, rec.State().Blend)
	assert.Equal(t, BlendCustomSeparate, rc.BlendMode())
}

func TestSetBlendModeUnknown(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)
	triangle(rc)
	rc.SetBlendMode(BlendMode(42))
	assert.Equal(t, BlendAlpha, rc.BlendMode())
	assert.Zero(t, rec.Count(recorder.OpSetBlend))
	assert.Empty(t, rec.Draws(), "an unknown mode does not flush")
	assert.Equal(t, 3, rc.ActiveBatch().VertexCounter())
	assert.Contains(t, logs.String(), "unknown blend mode")
}

func TestBlendModeString(t *testing.T) {
	assert.Equal(t, "Alpha", BlendAlpha.String())
	assert.Equal(t, "CustomSeparate", BlendCustomSeparate.String())
	assert.Equal(t, "BlendMode(42)", BlendMode(42).String())
}

func TestFeatureToggles(t *testing.T) {
	tests := []struct {
		name    string
		feature device.Feature
		enable  func(*Context)
		disable func(*Context)
	}{
		{"blend", device.FeatureBlend, (*Context).EnableColorBlend, (*Context).DisableColorBlend},
		{"depth test", device.FeatureDepthTest, (*Context).EnableDepthTest, (*Context).DisableDepthTest},
		{"depth mask", device.FeatureDepthMask, (*Context).EnableDepthMask, (*Context).DisableDepthMask},
		{"culling", device.FeatureCullFace, (*Context).EnableBackfaceCulling, (*Context).DisableBackfaceCulling},
		{"scissor", device.FeatureScissorTest, (*Context).EnableScissorTest, (*Context).DisableScissorTest},
		{"smooth lines", device.FeatureLineSmooth, (*Context).EnableSmoothLines, (*Context).DisableSmoothLines},
		{"wireframe", device.FeatureWireframe, (*Context).EnableWireMode, (*Context).DisableWireMode},
		{"points", device.FeaturePointMode, (*Context).EnablePointMode, (*Context).DisableWireMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, rec := newTestContext(t)
			tt.enable(rc)
			assert.True(t, rec.State().Features[tt.feature])
			tt.disable(rc)
			assert.False(t, rec.State().Features[tt.feature])
		})
	}
}

func TestRasterState(t *testing.T) {
	rc, rec := newTestContext(t)

	rc.SetCullFace(device.CullFront)
	rc.Scissor(1, 2, 3, 4)
	rc.SetLineWidth(2.5)

	st := rec.State()
	assert.Equal(t, device.CullFront, st.CullFace)
	assert.Equal(t, device.Viewport{X: 1, Y: 2, Width: 3, Height: 4}, st.Scissor)
	assert.Equal(t, float32(2.5), st.LineWidth)
	assert.Equal(t, float32(2.5), rc.LineWidth())
}

func TestClearScreenBuffers(t *testing.T) {
	rc, rec := newTestContext(t)
	rc.ClearColor(255, 0, 51, 255)
	rc.ClearScreenBuffers()

	calls := rec.CallsOf(recorder.OpClear)
	require.Len(t, calls, 1)
	assert.Equal(t, []float32{1, 0, 0.2, 1}, calls[0].Values)
	assert.Equal(t, int(device.ClearColor|device.ClearDepth), calls[0].Unit)
}

func TestActiveDrawBuffers(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)

	rc.ActiveDrawBuffers(3)
	assert.Equal(t, 3, rec.State().DrawBuffers)

	rc.ActiveDrawBuffers(0)
	rc.ActiveDrawBuffers(9)
	assert.Equal(t, 1, rec.Count(recorder.OpSetDrawBuffers))
	assert.Contains(t, logs.String(), "at most 8 color buffers")
}

func TestTextureSlots(t *testing.T) {
	rc, rec := newTestContext(t)
	tex := rc.DefaultTexture()

	rc.ActiveTextureSlot(2)
	rc.EnableTexture(tex)
	assert.Equal(t, tex, rec.State().Textures[2])
	rc.DisableTexture()
	assert.Zero(t, rec.State().Textures[2])

	rc.ActiveTextureSlot(0)
	rc.EnableTextureCubemap(tex)
	assert.Equal(t, tex, rec.State().Textures[0])
	rc.DisableTextureCubemap()
	assert.Zero(t, rec.State().Textures[0])
}

func TestEnableShader(t *testing.T) {
	rc, rec := newTestContext(t)
	rc.EnableShader(rc.DefaultShader())
	assert.Equal(t, rc.DefaultShader(), rec.State().Program)
	rc.DisableShader()
	assert.Zero(t, rec.State().Program)
}

func TestEnableFramebuffer(t *testing.T) {
	rc, rec := newTestContext(t)
	fb := rc.LoadFramebuffer(64, 64)
	require.True(t, fb.Valid())

	rc.EnableFramebuffer(fb)
	assert.Equal(t, fb, rec.State().Framebuffer)
	rc.DisableFramebuffer()
	assert.Zero(t, rec.State().Framebuffer)
}

func TestStereoRender(t *testing.T) {
	rc, rec := newTestContext(t)
	assert.False(t, rc.IsStereoRenderEnabled())

	right := matrix.Translate(-1, 0, 0)
	left := matrix.Translate(1, 0, 0)
	proj := [2]matrix.Matrix{matrix.Scale(2, 2, 2), matrix.Scale(3, 3, 3)}
	rc.SetMatrixProjectionStereo(proj[0], proj[1])
	rc.SetMatrixViewOffsetStereo(right, left)
	rc.EnableStereoRender()
	assert.True(t, rc.IsStereoRenderEnabled())

	rc.Translate(0, 5, 0)
	triangle(rc)
	require.NoError(t, rc.DrawRenderBatchActive())

	vps := rec.CallsOf(recorder.OpSetViewport)
	require.Len(t, vps, 3)
	assert.Equal(t, device.Viewport{X: 0, Width: 400, Height: 600}, vps[0].Rect)
	assert.Equal(t, device.Viewport{X: 400, Width: 400, Height: 600}, vps[1].Rect)
	assert.Equal(t, device.Viewport{Width: 800, Height: 600}, vps[2].Rect)

	assert.Len(t, rec.Draws(), 2)
	mvps := rec.CallsOf(recorder.OpSetUniformMatrix)
	require.Len(t, mvps, 2)
	for eye, offset := range []matrix.Matrix{right, left} {
		want := matrix.Multiply(matrix.Multiply(rc.MatrixModelview(), offset), proj[eye]).Floats()
		assert.Equal(t, want[:], mvps[eye].Values, "eye %d", eye)
	}

	rc.DisableStereoRender()
	assert.False(t, rc.IsStereoRenderEnabled())
}

func TestStereoUsesFramebufferSize(t *testing.T) {
	rc, rec := newTestContext(t)
	rc.SetFramebufferWidth(1000)
	rc.SetFramebufferHeight(500)
	assert.Equal(t, 1000, rc.FramebufferWidth())
	assert.Equal(t, 500, rc.FramebufferHeight())

	rc.EnableStereoRender()
	require.NoError(t, rc.DrawRenderBatchActive())
	vps := rec.CallsOf(recorder.OpSetViewport)
	require.Len(t, vps, 3)
	assert.Equal(t, device.Viewport{X: 500, Width: 500, Height: 500}, vps[1].Rect)
}
