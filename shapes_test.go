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

func TestLoadDrawQuad(t *testing.T) {
	rc, rec := newTestContext(t)
	live := rec.Live()

	rc.LoadDrawQuad()

	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "TriangleStrip", draws[0].Mode)
	assert.Equal(t, 4, draws[0].Count)
	assert.Equal(t, live, rec.Live(), "temporary buffers are released")

	attrs := rec.CallsOf(recorder.OpSetVertexAttribute)
	require.Len(t, attrs, 2)
	assert.Equal(t, device.SlotPosition, attrs[0].Unit)
	assert.Equal(t, device.SlotTexCoord, attrs[1].Unit)
	assert.Equal(t, 3*4, attrs[1].Offset)
	assert.Equal(t, 5*4, attrs[1].Size)
}

func TestLoadDrawCube(t *testing.T) {
	rc, rec := newTestContext(t)
	live := rec.Live()

	rc.LoadDrawCube()

	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "Triangles", draws[0].Mode)
	assert.Equal(t, 36, draws[0].Count)
	assert.Equal(t, live, rec.Live())

	attrs := rec.CallsOf(recorder.OpSetVertexAttribute)
	require.Len(t, attrs, 3)
	assert.Equal(t, device.SlotNormal, attrs[1].Unit)
	assert.Equal(t, device.SlotTexCoord, attrs[2].Unit)
	assert.Equal(t, 6*4, attrs[2].Offset)

	creates := rec.CallsOf(recorder.OpCreateBuffer)
	require.Len(t, creates, 1)
	assert.Equal(t, len(cubeVertices)*4, creates[0].Size)
	assert.Zero(t, rec.State().VertexArray)
}

func TestLoadDrawShapeFailure(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)
	live := rec.Live()

	rec.FailNext(recorder.OpCreateBuffer, 1)
	rc.LoadDrawQuad()
	assert.Empty(t, rec.Draws())
	assert.Equal(t, live, rec.Live())
	assert.Contains(t, logs.String(), "temporary vertex buffer")
}
