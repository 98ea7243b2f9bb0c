// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/immgl/device"
)

func reflected(t *testing.T, stage device.ShaderStage, src string) *shader {
	t.Helper()
	r, err := reflectWGSL(stage, src)
	require.NoError(t, err)
	return &shader{stage: stage, refl: r}
}

func newProgram(stages ...*shader) *program {
	return &program{
		stages:   stages,
		uniforms: make(map[string]int),
		textures: make(map[int]string),
		units:    make(map[string]int),
	}
}

func TestResolveDefaultProgram(t *testing.T) {
	p := newProgram(
		reflected(t, device.StageVertex, DefaultVertexShader),
		reflected(t, device.StageFragment, DefaultFragmentShader),
	)
	require.NoError(t, p.resolve())

	assert.Equal(t, map[string]int{"mvp": 0, "colDiffuse": 1, "texture0": 2}, p.uniforms)
	assert.Equal(t, "texture0", p.textures[2])
	require.Len(t, p.blocks, 2)
	assert.Len(t, p.blocks[0].data, 64)
	assert.Len(t, p.blocks[1].data, 16)

	require.Len(t, p.groups, 1)
	g := p.groups[0]
	require.Len(t, g, 4)
	for i, b := range g {
		assert.Equal(t, i, b.res.Binding)
	}
	assert.Equal(t, gputypes.ShaderStageVertex, g[0].visibility)
	assert.Equal(t, gputypes.ShaderStageFragment, g[1].visibility)
	assert.Equal(t, "texture0", g[3].texture)
}

func TestResolveSharedBinding(t *testing.T) {
	vs := `struct U { tint: vec4<f32> };
@group(0) @binding(0) var<uniform> u: U;
@vertex fn main(@location(0) vertexPosition: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(vertexPosition, 1.0) * u.tint;
}`
	fs := `struct U { tint: vec4<f32> };
@group(0) @binding(0) var<uniform> u: U;
@fragment fn main() -> @location(0) vec4<f32> { return u.tint; }`
	p := newProgram(reflected(t, device.StageVertex, vs), reflected(t, device.StageFragment, fs))
	require.NoError(t, p.resolve())

	require.Len(t, p.groups[0], 1)
	assert.Equal(t, gputypes.ShaderStageVertex|gputypes.ShaderStageFragment, p.groups[0][0].visibility)
	assert.Len(t, p.blocks, 1)
	assert.Len(t, p.targets[p.uniforms["tint"]], 1)
}

func TestResolveBindingConflict(t *testing.T) {
	vs := `struct U { a: vec4<f32> };
@group(0) @binding(0) var<uniform> first: U;
@vertex fn main() -> @builtin(position) vec4<f32> { return first.a; }`
	fs := `@group(0) @binding(0) var tex: texture_2d<f32>;
@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`
	p := newProgram(reflected(t, device.StageVertex, vs), reflected(t, device.StageFragment, fs))
	assert.ErrorContains(t, p.resolve(), "@group(0) @binding(0)")
}

func TestResolveSamplerPairing(t *testing.T) {
	fs := `@group(1) @binding(0) var albedo: texture_2d<f32>;
@group(1) @binding(1) var smp: sampler;
@group(0) @binding(5) var normals: texture_2d<f32>;
@group(0) @binding(2) var normals_sampler: sampler;
@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`
	p := newProgram(reflected(t, device.StageFragment, fs))
	require.NoError(t, p.resolve())

	require.Len(t, p.groups, 2)
	assert.Equal(t, []int{2, 5}, []int{p.groups[0][0].res.Binding, p.groups[0][1].res.Binding})
	assert.Equal(t, "normals", p.groups[0][0].texture)
	assert.Equal(t, "albedo", p.groups[1][1].texture)
}

func TestResolveOrphanSampler(t *testing.T) {
	fs := `@group(0) @binding(0) var smp: sampler;
@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`
	p := newProgram(reflected(t, device.StageFragment, fs))
	assert.ErrorContains(t, p.resolve(), "sampler smp has no texture")
}

func TestWriteScalarsMatrixColumns(t *testing.T) {
	f := field{Offset: 16, Size: 48, Stride: 48, Count: 1, Scalars: 9, Columns: 3, Rows: 3, ColumnStride: 16}
	data := make([]byte, 64)
	writeScalars(data, f, 9, 9, func(i int) uint32 { return uint32(i + 1) })

	word := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	assert.Equal(t, []uint32{1, 2, 3, 0}, []uint32{word(16), word(20), word(24), word(28)})
	assert.Equal(t, []uint32{4, 5, 6, 0}, []uint32{word(32), word(36), word(40), word(44)})
	assert.Equal(t, []uint32{7, 8, 9, 0}, []uint32{word(48), word(52), word(56), word(60)})
	assert.Zero(t, word(0))
}

func TestResolveNestedUniformNames(t *testing.T) {
	vs := `struct Light { color: vec4<f32>, power: f32 };
struct U { mvp: mat4x4<f32>, light: Light };
@group(0) @binding(0) var<uniform> u: U;
@vertex fn main(@location(0) p: vec3<f32>) -> @builtin(position) vec4<f32> {
    return u.mvp * vec4<f32>(p, u.light.power);
}`
	fs := `@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`
	p := newProgram(reflected(t, device.StageVertex, vs), reflected(t, device.StageFragment, fs))
	require.NoError(t, p.resolve())
	assert.Equal(t, map[string]int{"mvp": 0, "light.color": 1, "light.power": 2}, p.uniforms)
}

func TestClampRect(t *testing.T) {
	tests := []struct {
		name string
		in   device.Viewport
		want device.Viewport
	}{
		{"inside", device.Viewport{X: 10, Y: 10, Width: 20, Height: 20}, device.Viewport{X: 10, Y: 10, Width: 20, Height: 20}},
		{"negative origin", device.Viewport{X: -10, Y: -5, Width: 20, Height: 20}, device.Viewport{X: 0, Y: 0, Width: 10, Height: 15}},
		{"overflow", device.Viewport{X: 90, Y: 40, Width: 20, Height: 20}, device.Viewport{X: 90, Y: 40, Width: 10, Height: 10}},
		{"outside", device.Viewport{X: 200, Y: 0, Width: 20, Height: 20}, device.Viewport{X: 200, Y: 0, Width: 0, Height: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampRect(tt.in, 100, 50))
		})
	}
}

func TestFlipRect(t *testing.T) {
	x, y, w, h := flipRect(device.Viewport{X: 5, Y: 10, Width: 20, Height: 30}, 100)
	assert.Equal(t, []int{5, 60, 20, 30}, []int{x, y, w, h})
}
