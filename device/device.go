// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "github.com/gogpu/immgl/matrix"

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Kind  BufferKind
	Size  int
	Usage BufferUsage
}

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label     string
	Kind      TextureKind
	Width     int
	Height    int
	Format    PixelFormat
	MipLevels int
}

// TextureRegion addresses a rectangle of one mip level (and cube face).
type TextureRegion struct {
	Level  int
	Face   int
	X, Y   int
	Width  int
	Height int
}

// VertexAttribute describes how a vertex attribute is read from the bound
// vertex buffer.
type VertexAttribute struct {
	Components int
	Type       AttribType
	Normalized bool
	Stride     int
	Offset     int
}

// Viewport is a pixel rectangle on the current render target.
type Viewport struct {
	X, Y, Width, Height int
}

// Device is the graphics device the renderer drives. All methods are
// called from the goroutine that owns the renderer.
//
// Creation methods return the zero handle together with a non-nil error on
// failure. Methods without an error result ignore unknown handles.
type Device interface {
	Capabilities() Capabilities

	// Buffers.
	CreateBuffer(desc BufferDescriptor, data []byte) (Buffer, error)
	UpdateBuffer(b Buffer, offset int, data []byte) error
	ReadBuffer(b Buffer, offset int, dst []byte) error
	CopyBuffer(dst, src Buffer, dstOffset, srcOffset, size int) error
	BufferSize(b Buffer) int
	BindStorageBuffer(b Buffer, index int)
	DestroyBuffer(b Buffer)

	// Vertex input.
	CreateVertexArray() (VertexArray, error)
	BindVertexArray(va VertexArray) bool
	DestroyVertexArray(va VertexArray)
	BindVertexBuffer(b Buffer)
	BindIndexBuffer(b Buffer)
	SetVertexAttribute(index int, attr VertexAttribute)
	EnableVertexAttribute(index int, enabled bool)
	SetVertexAttributeDivisor(index, divisor int)
	SetVertexAttributeDefault(index int, value []float32)

	// Textures.
	CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error)
	UpdateTexture(t Texture, region TextureRegion, format PixelFormat, data []byte) error
	ReadTexture(t Texture, level int) ([]byte, error)
	SetTextureParameter(t Texture, param TextureParameter, value int32) error
	DestroyTexture(t Texture)
	BindTexture(unit int, t Texture)
	BindImageTexture(unit int, t Texture, format PixelFormat, readOnly bool)

	// Framebuffers. The zero Framebuffer is the default render target.
	CreateFramebuffer(width, height int) (Framebuffer, error)
	AttachFramebuffer(fb Framebuffer, t Texture, attach Attachment, texType AttachTextureType, mipLevel int) error
	FramebufferStatus(fb Framebuffer) error
	BindFramebuffer(fb Framebuffer)
	SetDrawBuffers(count int)
	DestroyFramebuffer(fb Framebuffer)

	// Shaders.
	CompileShader(stage ShaderStage, source string) (Shader, error)
	LinkProgram(stages ...Shader) (Program, error)
	DestroyShader(s Shader)
	DestroyProgram(p Program)
	UseProgram(p Program)
	AttributeLocation(p Program, name string) int
	UniformLocation(p Program, name string) int
	SetUniformFloats(loc int, typ UniformType, values []float32)
	SetUniformInts(loc int, typ UniformType, values []int32)
	SetUniformMatrix(loc int, m matrix.Matrix)

	// Fixed-function state.
	SetViewport(v Viewport)
	SetScissor(r Viewport)
	SetFeature(f Feature, enabled bool)
	SetCullFace(face CullFace)
	SetLineWidth(width float32)
	SetBlend(b BlendState)
	Clear(color [4]float32, flags ClearFlags)

	// Draw issuance.
	Draw(mode Primitive, first, count, instances int)
	DrawIndexed(mode Primitive, count int, format IndexFormat, byteOffset, instances int)
	Dispatch(x, y, z uint32) error

	// Submit hands every command recorded since the previous Submit to
	// the device queue.
	Submit() error

	// Close releases every object the device still owns.
	Close() error
}
