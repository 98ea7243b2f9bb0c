// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// PixelFormat enumerates texture and image data layouts. The zero value is
// not a valid format.
type PixelFormat int32

const (
	PixelFormatGrayscale PixelFormat = iota + 1
	PixelFormatGrayAlpha
	PixelFormatR5G6B5
	PixelFormatR8G8B8
	PixelFormatR5G5B5A1
	PixelFormatR4G4B4A4
	PixelFormatR8G8B8A8
	PixelFormatR9G9B9E5
	PixelFormatR32
	PixelFormatR32G32B32
	PixelFormatR32G32B32A32
	PixelFormatDXT1RGB
	PixelFormatDXT1RGBA
	PixelFormatDXT3RGBA
	PixelFormatDXT5RGBA
	PixelFormatETC1RGB
	PixelFormatETC2RGB
	PixelFormatETC2EACRGBA
	PixelFormatPVRTRGB
	PixelFormatPVRTRGBA
	PixelFormatASTC4x4RGBA
	PixelFormatASTC8x8RGBA
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatGrayscale:    "GRAYSCALE",
	PixelFormatGrayAlpha:    "GRAY_ALPHA",
	PixelFormatR5G6B5:       "R5G6B5",
	PixelFormatR8G8B8:       "R8G8B8",
	PixelFormatR5G5B5A1:     "R5G5B5A1",
	PixelFormatR4G4B4A4:     "R4G4B4A4",
	PixelFormatR8G8B8A8:     "R8G8B8A8",
	PixelFormatR9G9B9E5:     "R9G9B9E5",
	PixelFormatR32:          "R32",
	PixelFormatR32G32B32:    "R32G32B32",
	PixelFormatR32G32B32A32: "R32G32B32A32",
	PixelFormatDXT1RGB:      "DXT1_RGB",
	PixelFormatDXT1RGBA:     "DXT1_RGBA",
	PixelFormatDXT3RGBA:     "DXT3_RGBA",
	PixelFormatDXT5RGBA:     "DXT5_RGBA",
	PixelFormatETC1RGB:      "ETC1_RGB",
	PixelFormatETC2RGB:      "ETC2_RGB",
	PixelFormatETC2EACRGBA:  "ETC2_RGBA",
	PixelFormatPVRTRGB:      "PVRT_RGB",
	PixelFormatPVRTRGBA:     "PVRT_RGBA",
	PixelFormatASTC4x4RGBA:  "ASTC_4x4_RGBA",
	PixelFormatASTC8x8RGBA:  "ASTC_8x8_RGBA",
}

// String returns the short upper-case name of the format, or "UNKNOWN".
func (f PixelFormat) String() string {
	if n, ok := pixelFormatNames[f]; ok {
		return n
	}
	return "UNKNOWN"
}

// Valid reports whether f is one of the enumerated formats.
func (f PixelFormat) Valid() bool {
	return f >= PixelFormatGrayscale && f <= PixelFormatASTC8x8RGBA
}

// Compressed reports whether f is a block-compressed format.
func (f PixelFormat) Compressed() bool {
	return f >= PixelFormatDXT1RGB && f <= PixelFormatASTC8x8RGBA
}

// CompressionFamily groups compressed formats by the capability that
// enables them.
type CompressionFamily uint8

const (
	FamilyNone CompressionFamily = iota
	FamilyDXT
	FamilyETC1
	FamilyETC2
	FamilyPVRT
	FamilyASTC
)

// Family returns the compression family of f.
func (f PixelFormat) Family() CompressionFamily {
	switch f {
	case PixelFormatDXT1RGB, PixelFormatDXT1RGBA, PixelFormatDXT3RGBA, PixelFormatDXT5RGBA:
		return FamilyDXT
	case PixelFormatETC1RGB:
		return FamilyETC1
	case PixelFormatETC2RGB, PixelFormatETC2EACRGBA:
		return FamilyETC2
	case PixelFormatPVRTRGB, PixelFormatPVRTRGBA:
		return FamilyPVRT
	case PixelFormatASTC4x4RGBA, PixelFormatASTC8x8RGBA:
		return FamilyASTC
	default:
		return FamilyNone
	}
}

// BitsPerPixel returns the storage cost of one pixel of f. Compressed
// formats report their average rate.
func (f PixelFormat) BitsPerPixel() int {
	switch f {
	case PixelFormatGrayscale:
		return 8
	case PixelFormatGrayAlpha, PixelFormatR5G6B5, PixelFormatR5G5B5A1, PixelFormatR4G4B4A4:
		return 16
	case PixelFormatR8G8B8:
		return 24
	case PixelFormatR8G8B8A8, PixelFormatR9G9B9E5, PixelFormatR32:
		return 32
	case PixelFormatR32G32B32:
		return 96
	case PixelFormatR32G32B32A32:
		return 128
	case PixelFormatDXT1RGB, PixelFormatDXT1RGBA, PixelFormatETC1RGB, PixelFormatETC2RGB,
		PixelFormatPVRTRGB, PixelFormatPVRTRGBA:
		return 4
	case PixelFormatDXT3RGBA, PixelFormatDXT5RGBA, PixelFormatETC2EACRGBA, PixelFormatASTC4x4RGBA:
		return 8
	case PixelFormatASTC8x8RGBA:
		return 2
	default:
		return 0
	}
}

// PixelDataSize returns the byte size of a width x height image in format f.
// Block-compressed images smaller than one 4x4 block still occupy a whole
// block: 8 bytes for the 64-bit block formats, 16 for the 128-bit ones.
func PixelDataSize(width, height int, f PixelFormat) int {
	size := width * height * f.BitsPerPixel() / 8

	if width < 4 && height < 4 {
		switch {
		case f >= PixelFormatDXT1RGB && f < PixelFormatDXT3RGBA:
			size = 8
		case f >= PixelFormatDXT3RGBA && f < PixelFormatASTC8x8RGBA:
			size = 16
		}
	}
	return size
}

// MipChainSize returns the total byte size of levels mip levels starting at
// width x height, halving each dimension per level down to a minimum of 1.
func MipChainSize(width, height, levels int, f PixelFormat) int {
	total := 0
	w, h := width, height
	for i := 0; i < levels; i++ {
		total += PixelDataSize(w, h, f)
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return total
}
