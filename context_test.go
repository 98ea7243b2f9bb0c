// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/batch"
	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/device/recorder"
)

// Handles the recorder assigns during New.
const (
	testDefaultTexture device.Texture = 1
	testDefaultProgram device.Program = 4

	// Objects alive after New: texture, two stages, program, VAO and four
	// batch buffers.
	testLiveAfterNew = 9
)

// Uniform locations of the default program in the recorder.
const (
	testLocMVP        = 0
	testLocTexture0   = 1
	testLocColDiffuse = 2
)

func newTestContext(t *testing.T, opts ...Option) (*Context, *recorder.Recorder) {
	t.Helper()
	return newTestContextOn(t, recorder.New(), opts...)
}

func newTestContextOn(t *testing.T, rec *recorder.Recorder, opts ...Option) (*Context, *recorder.Recorder) {
	t.Helper()
	rc, err := New(rec, 800, 600, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	rec.Reset()
	return rc, rec
}

// captureLogs routes the package logger into a buffer for the duration of
// the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func TestNewNilDevice(t *testing.T) {
	rc, err := New(nil, 800, 600)
	assert.ErrorIs(t, err, ErrNilDevice)
	assert.Nil(t, rc)
}

func TestNewInvalidConfig(t *testing.T) {
	rec := recorder.New()
	rc, err := New(rec, 800, 600, WithBatchCapacity(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, rc)
	assert.Empty(t, rec.Calls(), "no device call before validation")
}

func TestNewInitialState(t *testing.T) {
	rec := recorder.New()
	rc, err := New(rec, 800, 600)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, testLiveAfterNew, rec.Live())
	assert.Equal(t, testDefaultTexture, rc.DefaultTexture())
	assert.Equal(t, testDefaultProgram, rc.DefaultShader())
	assert.Equal(t, rc.DefaultShader(), rc.Shader())
	assert.Same(t, rc.DefaultBatch(), rc.ActiveBatch())

	st := rec.State()
	assert.False(t, st.Features[device.FeatureDepthTest])
	assert.True(t, st.Features[device.FeatureBlend])
	assert.True(t, st.Features[device.FeatureCullFace])
	assert.Equal(t, device.CullBack, st.CullFace)
	assert.Equal(t, blendStates[BlendAlpha], st.Blend)
	assert.Equal(t, BlendAlpha, rc.BlendMode())

	clears := rec.CallsOf(recorder.OpClear)
	require.Len(t, clears, 1)
	assert.Equal(t, []float32{0, 0, 0, 1}, clears[0].Values)

	locs := rc.DefaultShaderLocations()
	assert.Equal(t, testLocMVP, locs.Get(device.LocMatrixMVP))
	assert.Equal(t, testLocTexture0, locs.Get(device.LocMapDiffuse))
	assert.Equal(t, testLocColDiffuse, locs.Get(device.LocColorDiffuse))
	assert.Equal(t, device.SlotPosition, locs.Get(device.LocVertexPosition))
	assert.Equal(t, device.SlotTexCoord, locs.Get(device.LocVertexTexCoord01))
	assert.Equal(t, device.SlotColor, locs.Get(device.LocVertexColor))
	assert.Equal(t, -1, locs.Get(device.LocMatrixView))

	assert.Equal(t, 800, rc.FramebufferWidth())
	assert.Equal(t, 600, rc.FramebufferHeight())
	assert.Equal(t, float32(1), rc.LineWidth())
	assert.Equal(t, 0, rc.StackDepth())
	assert.Equal(t, float32(-1), rc.ActiveBatch().Depth())
}

func TestDefaultTextureIsWhite(t *testing.T) {
	rc, rec := newTestContext(t)

	info, ok := rec.TextureInfo(rc.DefaultTexture())
	require.True(t, ok)
	assert.Equal(t, 1, info.Width)
	assert.Equal(t, 1, info.Height)
	assert.Equal(t, device.PixelFormatR8G8B8A8, info.Format)
	assert.Equal(t, []byte{255, 255, 255, 255}, rc.ReadTexturePixels(rc.DefaultTexture(), 1, 1, device.PixelFormatR8G8B8A8))
}

func TestCloseReleasesDefaults(t *testing.T) {
	rec := recorder.New()
	rc, err := New(rec, 800, 600)
	require.NoError(t, err)

	require.NoError(t, rc.Close())
	assert.Equal(t, 0, rec.Live())

	rec.Reset()
	require.NoError(t, rc.Close())
	assert.Empty(t, rec.Calls(), "second Close is a no-op")
}

func TestCloseKeepsUserResources(t *testing.T) {
	rec := recorder.New()
	rc, err := New(rec, 800, 600)
	require.NoError(t, err)

	tex := rc.LoadTexture(make([]byte, 4*4*4), 4, 4, device.PixelFormatR8G8B8A8, 1)
	require.True(t, tex.Valid())
	require.NoError(t, rc.Close())

	_, ok := rec.TextureInfo(tex)
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Live())
}

func TestNewBatchFailure(t *testing.T) {
	rec := recorder.New()
	rec.FailNext(recorder.OpCreateBuffer, 1)

	rc, err := New(rec, 800, 600)
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrNotSupported)
	assert.Nil(t, rc)
	assert.Equal(t, 0, rec.Live(), "defaults are released when the batch fails")
	_, registered := devices.Load(rec)
	assert.False(t, registered)
}

func TestNewDefaultShaderOverride(t *testing.T) {
	const vs = "#version 330\nin vec3 vertexPosition;\nuniform mat4 mvp;\n"
	const fs = "#version 330\nuniform vec4 colDiffuse;\n"
	rc, _ := newTestContext(t, WithDefaultShader(vs, fs))

	locs := rc.DefaultShaderLocations()
	assert.Equal(t, 0, locs.Get(device.LocMatrixMVP))
	assert.Equal(t, 1, locs.Get(device.LocColorDiffuse))
	assert.Equal(t, -1, locs.Get(device.LocMapDiffuse))
	assert.Equal(t, -1, locs.Get(device.LocVertexColor))
}

func TestNewDefaultShaderFailure(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t, WithDefaultShader("#error broken", "#error broken"))

	assert.False(t, rc.DefaultShader().Valid())
	assert.Equal(t, device.DefaultLocations(), rc.DefaultShaderLocations())
	assert.Contains(t, logs.String(), "failed to load default shader")

	rc.Begin(batch.Triangles)
	rc.Vertex2f(0, 0)
	rc.Vertex2f(1, 0)
	rc.Vertex2f(0, 1)
	rc.End()
	require.NoError(t, rc.DrawRenderBatchActive())
	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Zero(t, draws[0].Program)
}

func TestConfigAccessors(t *testing.T) {
	rc, _ := newTestContext(t, WithCullDistance(0.5, 50), WithTextureUnits(2), WithDrawCalls(16))
	assert.Equal(t, 0.5, rc.CullDistanceNear())
	assert.Equal(t, 50.0, rc.CullDistanceFar())
	assert.Equal(t, 2, rc.Config().TextureUnits)
	assert.Equal(t, 16, rc.Config().DrawCalls)
	assert.Len(t, rc.DefaultBatch().DrawCalls(), 1)
}
