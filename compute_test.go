// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/device/recorder"
)

func TestShaderBufferRoundTrip(t *testing.T) {
	rc, rec := newTestContext(t)

	b := rc.LoadShaderBuffer(16, []byte{1, 2, 3, 4}, device.UsageDynamicCopy)
	require.True(t, b.Valid())
	assert.Equal(t, 16, rc.ShaderBufferSize(b))
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, rec.BufferData(b))

	creates := rec.CallsOf(recorder.OpCreateBuffer)
	require.Len(t, creates, 1)
	assert.Equal(t, "Storage", creates[0].Kind)

	rc.UpdateShaderBuffer(b, []byte{9, 9}, 6)
	dst := make([]byte, 4)
	rc.ReadShaderBuffer(b, dst, 4)
	assert.Equal(t, []byte{0, 0, 9, 9}, dst)

	rc.UnloadShaderBuffer(b)
	assert.Zero(t, rc.ShaderBufferSize(b))
}

func TestShaderBufferOutOfRange(t *testing.T) {
	logs := captureLogs(t)
	rc, _ := newTestContext(t)
	b := rc.LoadShaderBuffer(8, nil, device.UsageStaticDraw)

	rc.UpdateShaderBuffer(b, make([]byte, 4), 6)
	rc.ReadShaderBuffer(b, make([]byte, 16), 0)
	assert.Contains(t, logs.String(), "failed to update shader buffer")
	assert.Contains(t, logs.String(), "failed to read shader buffer")
}

func TestCopyShaderBuffer(t *testing.T) {
	rc, rec := newTestContext(t)
	src := rc.LoadShaderBuffer(8, []byte{1, 2, 3, 4, 5, 6, 7, 8}, device.UsageStaticDraw)
	dst := rc.LoadShaderBuffer(8, nil, device.UsageStaticDraw)

	rc.CopyShaderBuffer(dst, src, 2, 4, 3)
	assert.Equal(t, []byte{0, 0, 5, 6, 7, 0, 0, 0}, rec.BufferData(dst))

	calls := rec.CallsOf(recorder.OpCopyBuffer)
	require.Len(t, calls, 1)
	assert.Equal(t, uint32(dst), calls[0].Handle)
	assert.Equal(t, uint32(src), calls[0].Other)
	assert.Equal(t, 2, calls[0].Offset)
	assert.Equal(t, 4, calls[0].First)
	assert.Equal(t, 3, calls[0].Size)
}

func TestBindShaderBuffer(t *testing.T) {
	rc, rec := newTestContext(t)
	b := rc.LoadShaderBuffer(4, nil, device.UsageStaticDraw)
	rc.BindShaderBuffer(b, 3)
	assert.Equal(t, b, rec.State().Storage[3])
}

func TestComputeShaderDispatch(t *testing.T) {
	rc, rec := newTestContext(t)
	rc.ComputeShaderDispatch(8, 4, 1)

	calls := rec.CallsOf(recorder.OpDispatch)
	require.Len(t, calls, 1)
	assert.Equal(t, []int32{8, 4, 1}, calls[0].Ints)
}

func TestComputeUnsupported(t *testing.T) {
	logs := captureLogs(t)
	caps := recorder.DefaultCapabilities()
	caps.ComputeShaders = false
	caps.StorageBuffers = false
	rc, rec := newTestContextOn(t, recorder.New(recorder.WithCapabilities(caps)))

	assert.False(t, rc.LoadShaderBuffer(16, nil, device.UsageDynamicCopy).Valid())
	assert.Zero(t, rec.Count(recorder.OpCreateBuffer))
	assert.Contains(t, logs.String(), "shader storage buffers not supported")

	rc.ComputeShaderDispatch(1, 1, 1)
	assert.Contains(t, logs.String(), "compute dispatch failed")
}

func TestBindImageTexture(t *testing.T) {
	rc, rec := newTestContext(t)
	tex := rc.LoadTexture(nil, 8, 8, device.PixelFormatR32, 1)
	require.True(t, tex.Valid())

	rc.BindImageTexture(tex, 1, device.PixelFormatR32, true)
	rc.BindImageTexture(tex, 2, device.PixelFormatDXT1RGB, false)
	rc.BindImageTexture(tex, 2, device.PixelFormat(0), false)

	calls := rec.CallsOf(recorder.OpBindImageTexture)
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].Unit)
	assert.Equal(t, "R32", calls[0].Format)
	assert.True(t, calls[0].Flag)
}
