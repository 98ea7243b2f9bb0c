// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"encoding/binary"
	"math"
)

// AppendFloat32s appends the little-endian encoding of v to dst.
func AppendFloat32s(dst []byte, v []float32) []byte {
	for _, f := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

// AppendUint32s appends the little-endian encoding of v to dst.
func AppendUint32s(dst []byte, v []uint32) []byte {
	for _, u := range v {
		dst = binary.LittleEndian.AppendUint32(dst, u)
	}
	return dst
}

// Float32s decodes little-endian float32 values from b. Trailing bytes that
// do not form a whole value are ignored.
func Float32s(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// Uint32s decodes little-endian uint32 values from b.
func Uint32s(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}
