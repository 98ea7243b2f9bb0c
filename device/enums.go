// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "fmt"

// Primitive is the topology of a device draw.
type Primitive uint8

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
	PrimitiveTriangleStrip
	PrimitivePoints
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveTriangles:
		return "Triangles"
	case PrimitiveLines:
		return "Lines"
	case PrimitiveTriangleStrip:
		return "TriangleStrip"
	case PrimitivePoints:
		return "Points"
	default:
		return fmt.Sprintf("Primitive(%d)", p)
	}
}

// BufferKind selects the binding role of a buffer.
type BufferKind uint8

const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferStorage
)

func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "Vertex"
	case BufferIndex:
		return "Index"
	case BufferStorage:
		return "Storage"
	default:
		return fmt.Sprintf("BufferKind(%d)", k)
	}
}

// BufferUsage is an update-frequency hint. Values match the classic GL
// enumerants so they can be passed through from callers unchanged.
type BufferUsage uint32

const (
	UsageStreamDraw  BufferUsage = 0x88E0
	UsageStreamRead  BufferUsage = 0x88E1
	UsageStreamCopy  BufferUsage = 0x88E2
	UsageStaticDraw  BufferUsage = 0x88E4
	UsageStaticRead  BufferUsage = 0x88E5
	UsageStaticCopy  BufferUsage = 0x88E6
	UsageDynamicDraw BufferUsage = 0x88E8
	UsageDynamicRead BufferUsage = 0x88E9
	UsageDynamicCopy BufferUsage = 0x88EA
)

// Dynamic reports whether the usage expects frequent updates.
func (u BufferUsage) Dynamic() bool {
	return u == UsageDynamicDraw || u == UsageDynamicRead || u == UsageDynamicCopy ||
		u == UsageStreamDraw || u == UsageStreamRead || u == UsageStreamCopy
}

// AttribType is the component type of a vertex attribute.
type AttribType uint32

const (
	AttribByte          AttribType = 0x1400
	AttribUnsignedByte  AttribType = 0x1401
	AttribShort         AttribType = 0x1402
	AttribUnsignedShort AttribType = 0x1403
	AttribInt           AttribType = 0x1404
	AttribUnsignedInt   AttribType = 0x1405
	AttribFloat         AttribType = 0x1406
	AttribHalfFloat     AttribType = 0x140B
)

// Size returns the component size in bytes.
func (t AttribType) Size() int {
	switch t {
	case AttribByte, AttribUnsignedByte:
		return 1
	case AttribShort, AttribUnsignedShort, AttribHalfFloat:
		return 2
	default:
		return 4
	}
}

// UniformType describes the data layout of a uniform value.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformInt
	UniformIVec2
	UniformIVec3
	UniformIVec4
	UniformUInt
	UniformUIVec2
	UniformUIVec3
	UniformUIVec4
	UniformSampler2D
)

// Components returns the number of scalar components of t.
func (t UniformType) Components() int {
	switch t {
	case UniformFloat, UniformInt, UniformUInt, UniformSampler2D:
		return 1
	case UniformVec2, UniformIVec2, UniformUIVec2:
		return 2
	case UniformVec3, UniformIVec3, UniformUIVec3:
		return 3
	default:
		return 4
	}
}

// Integer reports whether t carries integer components.
func (t UniformType) Integer() bool {
	return t >= UniformInt
}

// ShaderStage is a programmable pipeline stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderStage(%d)", s)
	}
}

// Feature is a toggleable piece of fixed-function state.
type Feature uint8

const (
	FeatureBlend Feature = iota
	FeatureDepthTest
	FeatureDepthMask
	FeatureCullFace
	FeatureScissorTest
	FeatureWireframe
	FeaturePointMode
	FeatureLineSmooth
)

// CullFace selects which faces are discarded when culling is enabled.
type CullFace uint8

const (
	CullBack CullFace = iota
	CullFront
)

// BlendFactor is a source or destination blend factor (GL values).
type BlendFactor uint32

const (
	BlendZero                  BlendFactor = 0
	BlendOne                   BlendFactor = 1
	BlendSrcColor              BlendFactor = 0x0300
	BlendOneMinusSrcColor      BlendFactor = 0x0301
	BlendSrcAlpha              BlendFactor = 0x0302
	BlendOneMinusSrcAlpha      BlendFactor = 0x0303
	BlendDstAlpha              BlendFactor = 0x0304
	BlendOneMinusDstAlpha      BlendFactor = 0x0305
	BlendDstColor              BlendFactor = 0x0306
	BlendOneMinusDstColor      BlendFactor = 0x0307
	BlendSrcAlphaSaturate      BlendFactor = 0x0308
	BlendConstantColor         BlendFactor = 0x8001
	BlendOneMinusConstantColor BlendFactor = 0x8002
	BlendConstantAlpha         BlendFactor = 0x8003
	BlendOneMinusConstantAlpha BlendFactor = 0x8004
)

// BlendEquation combines the weighted source and destination (GL values).
type BlendEquation uint32

const (
	EquationAdd             BlendEquation = 0x8006
	EquationMin             BlendEquation = 0x8007
	EquationMax             BlendEquation = 0x8008
	EquationSubtract        BlendEquation = 0x800A
	EquationReverseSubtract BlendEquation = 0x800B
)

// BlendState is the full color/alpha blend configuration.
type BlendState struct {
	SrcRGB, DstRGB     BlendFactor
	SrcAlpha, DstAlpha BlendFactor
	EqRGB, EqAlpha     BlendEquation
}

// ClearFlags selects the buffers cleared by Device.Clear.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

// Attachment is a framebuffer attachment point.
type Attachment int

const (
	AttachColor0  Attachment = 0
	AttachColor1  Attachment = 1
	AttachColor2  Attachment = 2
	AttachColor3  Attachment = 3
	AttachColor4  Attachment = 4
	AttachColor5  Attachment = 5
	AttachColor6  Attachment = 6
	AttachColor7  Attachment = 7
	AttachDepth   Attachment = 100
	AttachStencil Attachment = 200
)

// IsColor reports whether a is one of the eight color attachments.
func (a Attachment) IsColor() bool {
	return a >= AttachColor0 && a <= AttachColor7
}

// AttachTextureType describes what kind of object is attached.
type AttachTextureType int

const (
	AttachCubemapPositiveX AttachTextureType = 0
	AttachCubemapNegativeX AttachTextureType = 1
	AttachCubemapPositiveY AttachTextureType = 2
	AttachCubemapNegativeY AttachTextureType = 3
	AttachCubemapPositiveZ AttachTextureType = 4
	AttachCubemapNegativeZ AttachTextureType = 5
	AttachTexture2D        AttachTextureType = 100
	AttachRenderbuffer     AttachTextureType = 200
)

// IsCubemapFace reports whether t names one of the six cube faces.
func (t AttachTextureType) IsCubemapFace() bool {
	return t >= AttachCubemapPositiveX && t <= AttachCubemapNegativeZ
}

// TextureKind distinguishes the texture storage shapes.
type TextureKind uint8

const (
	Texture2D TextureKind = iota
	TextureCubemap
	TextureDepth
	TextureRenderbuffer
)

// TextureParameter is a sampler parameter set with SetTextureParameter.
type TextureParameter uint32

const (
	ParamWrapS      TextureParameter = 0x2802
	ParamWrapT      TextureParameter = 0x2803
	ParamMagFilter  TextureParameter = 0x2800
	ParamMinFilter  TextureParameter = 0x2801
	ParamMipmapBias TextureParameter = 0x4000 // value is the LOD bias in hundredths
	ParamAnisotropy TextureParameter = 0x3000
)

// Texture filter and wrap values (GL enumerants).
const (
	FilterNearest           int32 = 0x2600
	FilterLinear            int32 = 0x2601
	FilterNearestMipNearest int32 = 0x2700
	FilterLinearMipNearest  int32 = 0x2701
	FilterNearestMipLinear  int32 = 0x2702
	FilterLinearMipLinear   int32 = 0x2703
	WrapRepeat              int32 = 0x2901
	WrapClamp               int32 = 0x812F
	WrapMirrorRepeat        int32 = 0x8370
	WrapMirrorClamp         int32 = 0x8742
)

// IndexFormat is the element type of an index buffer.
type IndexFormat uint8

const (
	IndexUint32 IndexFormat = iota
	IndexUint16
)

// Size returns the byte size of one index.
func (f IndexFormat) Size() int {
	if f == IndexUint16 {
		return 2
	}
	return 4
}
