// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/device/recorder"
	"github.com/gogpu/immgl/matrix"
)

const testVertexShader = `#version 330
in vec3 vertexPosition;
in vec4 vertexColor;
in float vertexWeight;
uniform mat4 mvp;
uniform float time;
`

const testFragmentShader = `#version 330
uniform sampler2D texture0;
uniform sampler2D texture1;
uniform vec4 colDiffuse;
uniform ivec2 tiles;
`

func TestCompileShaderFailure(t *testing.T) {
	logs := captureLogs(t)
	rc, _ := newTestContext(t)

	assert.False(t, rc.CompileShader("", device.StageVertex).Valid())
	assert.False(t, rc.CompileShader("#error nope", device.StageFragment).Valid())
	assert.Contains(t, logs.String(), "failed to compile shader")
	assert.True(t, rc.CompileShader(testVertexShader, device.StageVertex).Valid())
}

func TestLoadShaderCode(t *testing.T) {
	rc, rec := newTestContext(t)
	live := rec.Live()

	p := rc.LoadShaderCode(testVertexShader, testFragmentShader)
	require.True(t, p.Valid())
	assert.NotEqual(t, rc.DefaultShader(), p)
	assert.Equal(t, live+1, rec.Live(), "compiled stages are released after linking")

	locs := rc.ShaderLocationsOf(p)
	assert.Equal(t, 0, locs.Get(device.LocMatrixMVP))
	assert.Equal(t, 2, locs.Get(device.LocMapDiffuse))
	assert.Equal(t, 3, locs.Get(device.LocMapSpecular))
	assert.Equal(t, 4, locs.Get(device.LocColorDiffuse))
	assert.Equal(t, device.SlotColor, locs.Get(device.LocVertexColor))
	assert.Equal(t, -1, locs.Get(device.LocVertexTexCoord01))

	assert.Equal(t, 1, rc.LocationUniform(p, "time"))
	assert.Equal(t, 5, rc.LocationUniform(p, "tiles"))
	assert.Equal(t, -1, rc.LocationUniform(p, "missing"))
	assert.Equal(t, device.SlotTexCoord2+1, rc.LocationAttrib(p, "vertexWeight"))

	rc.UnloadShaderProgram(p)
	assert.Equal(t, live, rec.Live())
}

func TestLoadShaderCodeFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		vs, fs      string
		failLink    bool
		wantDefault bool
	}{
		{"both empty", "", "", false, true},
		{"both broken", "#error a", "#error b", false, true},
		{"vertex only", testVertexShader, "", false, false},
		{"fragment only", "", testFragmentShader, false, false},
		{"broken vertex", "#error a", testFragmentShader, false, false},
		{"link failure", testVertexShader, testFragmentShader, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, rec := newTestContext(t)
			live := rec.Live()
			if tt.failLink {
				rec.FailNext(recorder.OpLinkProgram, 1)
			}

			p := rc.LoadShaderCode(tt.vs, tt.fs)
			if tt.wantDefault {
				assert.Equal(t, rc.DefaultShader(), p)
				assert.Equal(t, live, rec.Live(), "nothing leaks")
				return
			}
			assert.NotEqual(t, rc.DefaultShader(), p)
			assert.True(t, p.Valid())
			assert.Equal(t, live+1, rec.Live())
		})
	}
}

func TestUnloadShaderProgramKeepsDefault(t *testing.T) {
	rc, rec := newTestContext(t)
	rc.UnloadShaderProgram(rc.DefaultShader())
	rc.UnloadShaderProgram(0)
	assert.Zero(t, rec.Count(recorder.OpDestroyProgram))
}

func TestLoadComputeShaderProgram(t *testing.T) {
	const cs = "#version 430\nuniform float scale;\n"
	rc, rec := newTestContext(t)

	s := rc.CompileShader(cs, device.StageCompute)
	require.True(t, s.Valid())
	p := rc.LoadComputeShaderProgram(s)
	require.True(t, p.Valid())
	assert.Equal(t, 0, rc.LocationUniform(p, "scale"))

	links := rec.CallsOf(recorder.OpLinkProgram)
	require.Len(t, links, 1)
	assert.Equal(t, 1, links[0].Count)
}

func TestLoadComputeShaderProgramUnsupported(t *testing.T) {
	logs := captureLogs(t)
	caps := recorder.DefaultCapabilities()
	caps.ComputeShaders = false
	rc, rec := newTestContextOn(t, recorder.New(recorder.WithCapabilities(caps)))

	assert.False(t, rc.CompileShader("void main() {}", device.StageCompute).Valid())
	assert.False(t, rc.LoadComputeShaderProgram(rc.defaultVS).Valid())
	assert.Zero(t, rec.Count(recorder.OpLinkProgram))
	assert.Contains(t, logs.String(), "compute shaders not supported")
}

func TestSetUniformFloats(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)

	rc.SetUniformFloats(-1, device.UniformVec4, []float32{1, 2, 3, 4})
	rc.SetUniformFloats(3, device.UniformVec3, []float32{1, 2})
	rc.SetUniformFloats(3, device.UniformIVec2, []float32{1, 2})
	rc.SetUniformFloats(3, device.UniformVec2, nil)
	assert.Zero(t, rec.Count(recorder.OpSetUniform))
	assert.Contains(t, logs.String(), "values for 3-component uniform")
	assert.Contains(t, logs.String(), "does not take float values")

	rc.SetUniformFloats(3, device.UniformVec2, []float32{1, 2, 3, 4})
	calls := rec.CallsOf(recorder.OpSetUniform)
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].Unit)
	assert.Equal(t, 2, calls[0].Count)
	assert.Equal(t, []float32{1, 2, 3, 4}, calls[0].Values)
}

func TestSetUniformInts(t *testing.T) {
	rc, rec := newTestContext(t)

	rc.SetUniformInts(2, device.UniformVec2, []int32{1, 2})
	assert.Zero(t, rec.Count(recorder.OpSetUniform))

	rc.SetUniformInts(2, device.UniformIVec2, []int32{7, 8})
	calls := rec.CallsOf(recorder.OpSetUniform)
	require.Len(t, calls, 1)
	assert.Equal(t, []int32{7, 8}, calls[0].Ints)
}

func TestSetUniformMatrix(t *testing.T) {
	rc, rec := newTestContext(t)
	m := matrix.Translate(1, 2, 3)

	rc.SetUniformMatrix(-1, m)
	rc.SetUniformMatrix(5, m)
	calls := rec.CallsOf(recorder.OpSetUniformMatrix)
	require.Len(t, calls, 1)
	f := m.Floats()
	assert.Equal(t, f[:], calls[0].Values)
}

func TestSetUniformSampler(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t, WithTextureUnits(2))
	a := rc.LoadTexture(nil, 2, 2, device.PixelFormatR8G8B8A8, 1)
	b := rc.LoadTexture(nil, 2, 2, device.PixelFormatR8G8B8A8, 1)
	c := rc.LoadTexture(nil, 2, 2, device.PixelFormatR8G8B8A8, 1)
	rec.Reset()

	rc.SetUniformSampler(10, a)
	rc.SetUniformSampler(11, b)
	rc.SetUniformSampler(12, a)
	rc.SetUniformSampler(13, c)

	calls := rec.CallsOf(recorder.OpSetUniform)
	require.Len(t, calls, 2)
	assert.Equal(t, 10, calls[0].Unit)
	assert.Equal(t, []int32{1}, calls[0].Ints)
	assert.Equal(t, 11, calls[1].Unit)
	assert.Equal(t, []int32{2}, calls[1].Ints)
	assert.Contains(t, logs.String(), "no free texture unit for sampler")

	triangle(rc)
	require.NoError(t, rc.DrawRenderBatchActive())
	binds := rec.CallsOf(recorder.OpBindTexture)
	units := map[int]uint32{}
	for _, bc := range binds {
		if bc.Unit > 0 {
			units[bc.Unit] = bc.Handle
		}
	}
	assert.Equal(t, map[int]uint32{1: uint32(a), 2: uint32(b)}, units)

	rec.Reset()
	rc.SetUniformSampler(13, c)
	calls = rec.CallsOf(recorder.OpSetUniform)
	require.Len(t, calls, 1, "units are free again after a flush")
	assert.Equal(t, []int32{1}, calls[0].Ints)
}

func TestSetShader(t *testing.T) {
	rc, rec := newTestContext(t)
	p := rc.LoadShaderCode(testVertexShader, testFragmentShader)
	locs := rc.ShaderLocationsOf(p)
	rec.Reset()

	triangle(rc)
	rc.SetShader(rc.DefaultShader(), rc.DefaultShaderLocations())
	assert.Empty(t, rec.Draws(), "same program does not flush")

	rc.SetShader(p, locs)
	require.Len(t, rec.Draws(), 1)
	assert.Equal(t, uint32(rc.DefaultShader()), rec.Draws()[0].Program)
	assert.Equal(t, p, rc.Shader())
	assert.Equal(t, locs, rc.ShaderLocations())

	triangle(rc)
	require.NoError(t, rc.DrawRenderBatchActive())
	draws := rec.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, uint32(p), draws[1].Program)
}

func writeShaderFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestReloadShader(t *testing.T) {
	rc, rec := newTestContext(t)
	dir := t.TempDir()
	vsPath := writeShaderFile(t, dir, "shader.vs", testVertexShader)
	fsPath := writeShaderFile(t, dir, "shader.fs", testFragmentShader)

	old := rc.LoadShaderCode(testVertexShader, "")
	rc.SetShader(old, rc.ShaderLocationsOf(old))

	p := rc.ReloadShader(old, vsPath, fsPath)
	require.True(t, p.Valid())
	assert.NotEqual(t, old, p)
	assert.Equal(t, p, rc.Shader(), "the current shader follows the reload")
	assert.Equal(t, 4, rc.ShaderLocations().Get(device.LocColorDiffuse))

	destroyed := rec.CallsOf(recorder.OpDestroyProgram)
	require.Len(t, destroyed, 1)
	assert.Equal(t, uint32(old), destroyed[0].Handle)
}

func TestReloadShaderFailureKeepsOld(t *testing.T) {
	logs := captureLogs(t)
	rc, rec := newTestContext(t)
	dir := t.TempDir()
	broken := writeShaderFile(t, dir, "broken.fs", "#error syntax\n")

	old := rc.LoadShaderCode(testVertexShader, testFragmentShader)
	rec.Reset()

	assert.Equal(t, old, rc.ReloadShader(old, "", broken))
	assert.Equal(t, old, rc.ReloadShader(old, filepath.Join(dir, "missing.vs"), ""))
	assert.Zero(t, rec.Count(recorder.OpDestroyProgram))
	assert.Contains(t, logs.String(), "keeping previous program")
	assert.Contains(t, logs.String(), "read shader source")
}
