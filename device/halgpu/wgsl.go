// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// DefaultVertexShader is the WGSL vertex stage of the default program. The
// mvp matrix maps to GL clip space; depth is remapped to the [0, 1] range
// WebGPU clips against.
const DefaultVertexShader = `struct VertexUniforms {
    mvp: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> vertexUniforms: VertexUniforms;

struct VertexInput {
    @location(0) vertexPosition: vec3<f32>,
    @location(1) vertexTexCoord: vec2<f32>,
    @location(3) vertexColor: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) fragTexCoord: vec2<f32>,
    @location(1) fragColor: vec4<f32>,
};

@vertex
fn vs_main(input: VertexInput) -> VertexOutput {
    var output: VertexOutput;
    output.fragTexCoord = input.vertexTexCoord;
    output.fragColor = input.vertexColor;
    let pos = vertexUniforms.mvp * vec4<f32>(input.vertexPosition, 1.0);
    output.position = vec4<f32>(pos.xy, (pos.z + pos.w) * 0.5, pos.w);
    return output;
}
`

// DefaultFragmentShader is the WGSL fragment stage of the default program.
const DefaultFragmentShader = `struct FragmentUniforms {
    colDiffuse: vec4<f32>,
};

@group(0) @binding(1) var<uniform> fragmentUniforms: FragmentUniforms;
@group(0) @binding(2) var texture0: texture_2d<f32>;
@group(0) @binding(3) var texture0Sampler: sampler;

@fragment
fn fs_main(@location(0) fragTexCoord: vec2<f32>, @location(1) fragColor: vec4<f32>) -> @location(0) vec4<f32> {
    let texelColor = textureSample(texture0, texture0Sampler, fragTexCoord);
    return texelColor * fragmentUniforms.colDiffuse * fragColor;
}
`

// lowerWGSL parses WGSL source and lowers it to naga IR.
func lowerWGSL(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	m, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	return m, nil
}

// generateSPIRV validates a lowered module and translates it to SPIR-V
// words. Reflect the module before calling it.
func generateSPIRV(m *ir.Module) ([]uint32, error) {
	verrs, err := naga.Validate(m)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", verrs[0])
	}
	spirvBytes, err := naga.GenerateSPIRV(m, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V module of %d bytes is not word aligned", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return code, nil
}

// compileSPIRV lowers and translates WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	m, err := lowerWGSL(source)
	if err != nil {
		return nil, err
	}
	return generateSPIRV(m)
}
