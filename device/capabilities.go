// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// Capabilities describes optional device features the renderer consults
// before using them.
type Capabilities struct {
	ComputeShaders bool
	StorageBuffers bool
	InstancedDraw  bool
	DepthTextures  bool
	FloatTextures  bool
	Anisotropy     bool
	MaxAnisotropy  float32

	CompressedDXT  bool
	CompressedETC1 bool
	CompressedETC2 bool
	CompressedPVRT bool
	CompressedASTC bool

	MaxTextureSize      int
	MaxTextureUnits     int
	MaxVertexAttributes int
	MaxColorAttachments int
}

// SupportsFormat reports whether textures in format f can be created.
func (c Capabilities) SupportsFormat(f PixelFormat) bool {
	switch f.Family() {
	case FamilyDXT:
		return c.CompressedDXT
	case FamilyETC1:
		return c.CompressedETC1
	case FamilyETC2:
		return c.CompressedETC2
	case FamilyPVRT:
		return c.CompressedPVRT
	case FamilyASTC:
		return c.CompressedASTC
	}
	switch f {
	case PixelFormatR32, PixelFormatR32G32B32, PixelFormatR32G32B32A32:
		return c.FloatTextures
	}
	return f.Valid()
}
