// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/immgl/device"
)

func convertPrimitive(p device.Primitive) gputypes.PrimitiveTopology {
	switch p {
	case device.PrimitiveLines:
		return gputypes.PrimitiveTopologyLineList
	case device.PrimitiveTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case device.PrimitivePoints:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func convertBlendFactor(f device.BlendFactor) gputypes.BlendFactor {
	switch f {
	case device.BlendZero:
		return gputypes.BlendFactorZero
	case device.BlendOne:
		return gputypes.BlendFactorOne
	case device.BlendSrcColor:
		return gputypes.BlendFactorSrc
	case device.BlendOneMinusSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case device.BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case device.BlendOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case device.BlendDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case device.BlendOneMinusDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case device.BlendDstColor:
		return gputypes.BlendFactorDst
	case device.BlendOneMinusDstColor:
		return gputypes.BlendFactorOneMinusDst
	case device.BlendSrcAlphaSaturate:
		return gputypes.BlendFactorSrcAlphaSaturated
	case device.BlendConstantColor, device.BlendConstantAlpha:
		return gputypes.BlendFactorConstant
	case device.BlendOneMinusConstantColor, device.BlendOneMinusConstantAlpha:
		return gputypes.BlendFactorOneMinusConstant
	default:
		return gputypes.BlendFactorOne
	}
}

func convertBlendEquation(e device.BlendEquation) gputypes.BlendOperation {
	switch e {
	case device.EquationSubtract:
		return gputypes.BlendOperationSubtract
	case device.EquationReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	case device.EquationMin:
		return gputypes.BlendOperationMin
	case device.EquationMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

func convertBlend(b device.BlendState) gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: convertBlendFactor(b.SrcRGB),
			DstFactor: convertBlendFactor(b.DstRGB),
			Operation: convertBlendEquation(b.EqRGB),
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: convertBlendFactor(b.SrcAlpha),
			DstFactor: convertBlendFactor(b.DstAlpha),
			Operation: convertBlendEquation(b.EqAlpha),
		},
	}
}

func convertCull(enabled bool, face device.CullFace) gputypes.CullMode {
	if !enabled {
		return gputypes.CullModeNone
	}
	if face == device.CullFront {
		return gputypes.CullModeFront
	}
	return gputypes.CullModeBack
}

func convertIndexFormat(f device.IndexFormat) gputypes.IndexFormat {
	if f == device.IndexUint16 {
		return gputypes.IndexFormatUint16
	}
	return gputypes.IndexFormatUint32
}

// convertBufferUsage returns the usage flags for a buffer of kind k. Every
// buffer can be copied both ways so updates and readback work on all kinds.
func convertBufferUsage(k device.BufferKind) gputypes.BufferUsage {
	usage := gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	switch k {
	case device.BufferIndex:
		usage |= gputypes.BufferUsageIndex
	case device.BufferStorage:
		usage |= gputypes.BufferUsageStorage | gputypes.BufferUsageVertex
	default:
		usage |= gputypes.BufferUsageVertex
	}
	return usage
}

type vertexFormatKey struct {
	typ        device.AttribType
	components int
	normalized bool
}

var vertexFormats = map[vertexFormatKey]gputypes.VertexFormat{
	{device.AttribFloat, 1, false}: gputypes.VertexFormatFloat32,
	{device.AttribFloat, 2, false}: gputypes.VertexFormatFloat32x2,
	{device.AttribFloat, 3, false}: gputypes.VertexFormatFloat32x3,
	{device.AttribFloat, 4, false}: gputypes.VertexFormatFloat32x4,

	{device.AttribHalfFloat, 2, false}: gputypes.VertexFormatFloat16x2,
	{device.AttribHalfFloat, 4, false}: gputypes.VertexFormatFloat16x4,

	{device.AttribUnsignedByte, 2, true}:  gputypes.VertexFormatUnorm8x2,
	{device.AttribUnsignedByte, 4, true}:  gputypes.VertexFormatUnorm8x4,
	{device.AttribUnsignedByte, 2, false}: gputypes.VertexFormatUint8x2,
	{device.AttribUnsignedByte, 4, false}: gputypes.VertexFormatUint8x4,
	{device.AttribByte, 2, true}:          gputypes.VertexFormatSnorm8x2,
	{device.AttribByte, 4, true}:          gputypes.VertexFormatSnorm8x4,
	{device.AttribByte, 2, false}:         gputypes.VertexFormatSint8x2,
	{device.AttribByte, 4, false}:         gputypes.VertexFormatSint8x4,

	{device.AttribUnsignedShort, 2, true}:  gputypes.VertexFormatUnorm16x2,
	{device.AttribUnsignedShort, 4, true}:  gputypes.VertexFormatUnorm16x4,
	{device.AttribUnsignedShort, 2, false}: gputypes.VertexFormatUint16x2,
	{device.AttribUnsignedShort, 4, false}: gputypes.VertexFormatUint16x4,
	{device.AttribShort, 2, true}:          gputypes.VertexFormatSnorm16x2,
	{device.AttribShort, 4, true}:          gputypes.VertexFormatSnorm16x4,
	{device.AttribShort, 2, false}:         gputypes.VertexFormatSint16x2,
	{device.AttribShort, 4, false}:         gputypes.VertexFormatSint16x4,

	{device.AttribUnsignedInt, 1, false}: gputypes.VertexFormatUint32,
	{device.AttribUnsignedInt, 2, false}: gputypes.VertexFormatUint32x2,
	{device.AttribUnsignedInt, 3, false}: gputypes.VertexFormatUint32x3,
	{device.AttribUnsignedInt, 4, false}: gputypes.VertexFormatUint32x4,
	{device.AttribInt, 1, false}:         gputypes.VertexFormatSint32,
	{device.AttribInt, 2, false}:         gputypes.VertexFormatSint32x2,
	{device.AttribInt, 3, false}:         gputypes.VertexFormatSint32x3,
	{device.AttribInt, 4, false}:         gputypes.VertexFormatSint32x4,
}

// convertVertexFormat maps a GL-style attribute description to a WebGPU
// vertex format. Three-component 8 and 16 bit formats do not exist in
// WebGPU and report false.
func convertVertexFormat(typ device.AttribType, components int, normalized bool) (gputypes.VertexFormat, bool) {
	// Float and 32-bit integer attributes ignore the normalized flag.
	if typ == device.AttribFloat || typ == device.AttribHalfFloat ||
		typ == device.AttribInt || typ == device.AttribUnsignedInt {
		normalized = false
	}
	f, ok := vertexFormats[vertexFormatKey{typ, components, normalized}]
	return f, ok
}

// floatVertexFormat returns the float format with n components, used for
// constant attribute buffers.
func floatVertexFormat(n int) gputypes.VertexFormat {
	switch n {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

func convertWrap(v int32) gputypes.AddressMode {
	switch v {
	case device.WrapClamp:
		return gputypes.AddressModeClampToEdge
	case device.WrapMirrorRepeat, device.WrapMirrorClamp:
		// WebGPU has no mirror-once mode.
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeRepeat
	}
}

// convertMinFilter splits a GL minification filter into the WebGPU min
// filter and mipmap filter.
func convertMinFilter(v int32) (minFilter, mipFilter gputypes.FilterMode) {
	switch v {
	case device.FilterNearest, device.FilterNearestMipNearest:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case device.FilterLinear, device.FilterLinearMipNearest:
		return gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case device.FilterNearestMipLinear:
		return gputypes.FilterModeNearest, gputypes.FilterModeLinear
	default:
		return gputypes.FilterModeLinear, gputypes.FilterModeLinear
	}
}

func convertMagFilter(v int32) gputypes.FilterMode {
	if v == device.FilterNearest || v == device.FilterNearestMipNearest || v == device.FilterNearestMipLinear {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// usesMipmaps reports whether a GL minification filter samples below the
// base level.
func usesMipmaps(v int32) bool {
	return v != device.FilterNearest && v != device.FilterLinear
}
