// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mipmap builds mip chains on the CPU for devices that cannot
// generate them.
package mipmap

import (
	"errors"
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// ErrUnsupportedLayout is returned for pixel layouts the generator cannot
// filter.
var ErrUnsupportedLayout = errors.New("mipmap: unsupported pixel layout")

// Layout is the byte layout of an uncompressed 8-bit image.
type Layout int

const (
	Gray      Layout = iota + 1 // 1 byte per pixel
	GrayAlpha                   // 2 bytes per pixel
	RGB                         // 3 bytes per pixel
	RGBA                        // 4 bytes per pixel
)

// BytesPerPixel returns the pixel size of l, or 0 for an unknown layout.
func (l Layout) BytesPerPixel() int {
	switch l {
	case Gray, GrayAlpha, RGB, RGBA:
		return int(l)
	}
	return 0
}

// Filter selects the downscale kernel.
type Filter int

const (
	// Box averages each 2x2 block. Odd edges repeat the last row or column.
	Box Filter = iota
	// BiLinear resamples with golang.org/x/image/draw.BiLinear.
	BiLinear
	// CatmullRom resamples with golang.org/x/image/draw.CatmullRom.
	CatmullRom
)

// Levels returns the length of a full chain for a width x height image:
// levels are halved until the larger side reaches 1.
func Levels(width, height int) int {
	m := max(width, height)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}

// Size returns the dimensions of level n of a width x height image.
func Size(width, height, n int) (int, int) {
	return max(width>>n, 1), max(height>>n, 1)
}

// Generate returns the full mip chain of data. Level 0 is data itself;
// each further level is filtered from the previous one.
func Generate(data []byte, width, height int, layout Layout, f Filter) ([][]byte, error) {
	bpp := layout.BytesPerPixel()
	if bpp == 0 {
		return nil, ErrUnsupportedLayout
	}
	if width <= 0 || height <= 0 || len(data) < width*height*bpp {
		return nil, errors.New("mipmap: image data shorter than width*height")
	}

	n := Levels(width, height)
	chain := make([][]byte, n)
	chain[0] = data[:width*height*bpp]
	w, h := width, height
	for i := 1; i < n; i++ {
		dw, dh := Size(width, height, i)
		if f == Box {
			chain[i] = boxDown(chain[i-1], w, h, dw, dh, bpp)
		} else {
			chain[i] = scaleDown(chain[i-1], w, h, dw, dh, layout, f)
		}
		w, h = dw, dh
	}
	return chain, nil
}

// boxDown averages 2x2 blocks of src into a dw x dh image.
func boxDown(src []byte, sw, sh, dw, dh, bpp int) []byte {
	dst := make([]byte, dw*dh*bpp)
	for dy := 0; dy < dh; dy++ {
		sy0 := min(dy*2, sh-1)
		sy1 := min(dy*2+1, sh-1)
		for dx := 0; dx < dw; dx++ {
			sx0 := min(dx*2, sw-1)
			sx1 := min(dx*2+1, sw-1)
			p0 := (sy0*sw + sx0) * bpp
			p1 := (sy0*sw + sx1) * bpp
			p2 := (sy1*sw + sx0) * bpp
			p3 := (sy1*sw + sx1) * bpp
			o := (dy*dw + dx) * bpp
			for c := 0; c < bpp; c++ {
				sum := uint16(src[p0+c]) + uint16(src[p1+c]) + uint16(src[p2+c]) + uint16(src[p3+c])
				dst[o+c] = byte(sum / 4)
			}
		}
	}
	return dst
}

func scaleDown(src []byte, sw, sh, dw, dh int, layout Layout, f Filter) []byte {
	var k draw.Interpolator = draw.BiLinear
	if f == CatmullRom {
		k = draw.CatmullRom
	}
	in := toImage(src, sw, sh, layout)
	var out draw.Image
	if layout == Gray {
		out = image.NewGray(image.Rect(0, 0, dw, dh))
	} else {
		out = image.NewNRGBA(image.Rect(0, 0, dw, dh))
	}
	k.Scale(out, out.Bounds(), in, in.Bounds(), draw.Src, nil)
	return fromImage(out, layout)
}

// toImage wraps or expands src into a standard library image. Gray and
// RGBA share the backing bytes; GrayAlpha and RGB are widened to NRGBA.
func toImage(src []byte, w, h int, layout Layout) image.Image {
	r := image.Rect(0, 0, w, h)
	switch layout {
	case Gray:
		return &image.Gray{Pix: src, Stride: w, Rect: r}
	case RGBA:
		return &image.NRGBA{Pix: src, Stride: w * 4, Rect: r}
	}
	img := image.NewNRGBA(r)
	bpp := layout.BytesPerPixel()
	for i := 0; i < w*h; i++ {
		s, d := src[i*bpp:], img.Pix[i*4:]
		switch layout {
		case GrayAlpha:
			d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
		case RGB:
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 255
		}
	}
	return img
}

func fromImage(img draw.Image, layout Layout) []byte {
	switch m := img.(type) {
	case *image.Gray:
		return m.Pix
	case *image.NRGBA:
		if layout == RGBA {
			return m.Pix
		}
		n := m.Rect.Dx() * m.Rect.Dy()
		bpp := layout.BytesPerPixel()
		out := make([]byte, n*bpp)
		for i := 0; i < n; i++ {
			s, d := m.Pix[i*4:], out[i*bpp:]
			switch layout {
			case GrayAlpha:
				d[0], d[1] = s[0], s[3]
			case RGB:
				d[0], d[1], d[2] = s[0], s[1], s[2]
			}
		}
		return out
	}
	return nil
}
