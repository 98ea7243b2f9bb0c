// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package matrix provides the 4x4 float32 matrix algebra used by the
// immediate-mode renderer.
//
// A Matrix stores sixteen elements m0..m15 in column-major order, the layout
// expected by shader uniforms:
//
//	| m0  m4  m8  m12 |
//	| m1  m5  m9  m13 |
//	| m2  m6  m10 m14 |
//	| m3  m7  m11 m15 |
//
// Multiply follows the "left is applied first" convention: transforming a
// point by Multiply(a, b) equals transforming it by a and then by b.
package matrix

import "github.com/chewxy/math32"

// Deg2Rad converts degrees to radians.
const Deg2Rad = math32.Pi / 180

// Matrix is a 4x4 column-major transformation matrix.
type Matrix [16]float32

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		0:  1,
		5:  1,
		10: 1,
		15: 1,
	}
}

// FromFloats builds a matrix from sixteen column-major values.
func FromFloats(f [16]float32) Matrix {
	return Matrix(f)
}

// Floats returns the column-major element array.
func (m Matrix) Floats() [16]float32 {
	return [16]float32(m)
}

// Multiply returns the product of left and right such that the result
// applies left first, then right.
func Multiply(left, right Matrix) Matrix {
	var r Matrix
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[c*4+row] = left[c*4+0]*right[0*4+row] +
				left[c*4+1]*right[1*4+row] +
				left[c*4+2]*right[2*4+row] +
				left[c*4+3]*right[3*4+row]
		}
	}
	return r
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Matrix {
	m := Identity()
	m[12] = x
	m[13] = y
	m[14] = z
	return m
}

// Scale returns a scaling matrix.
func Scale(x, y, z float32) Matrix {
	return Matrix{
		0:  x,
		5:  y,
		10: z,
		15: 1,
	}
}

// Rotate returns a rotation of angle degrees around the axis (x, y, z).
//
// The axis is normalized only when its squared length is neither 0 nor 1.
// A zero axis produces the degenerate matrix with only the cosine terms set.
func Rotate(angle, x, y, z float32) Matrix {
	if l2 := x*x + y*y + z*z; l2 != 1 && l2 != 0 {
		inv := 1 / math32.Sqrt(l2)
		x *= inv
		y *= inv
		z *= inv
	}

	s := math32.Sin(angle * Deg2Rad)
	c := math32.Cos(angle * Deg2Rad)
	t := 1 - c

	return Matrix{
		x*x*t + c, y*x*t + z*s, z*x*t - y*s, 0,
		x*y*t - z*s, y*y*t + c, z*y*t + x*s, 0,
		x*z*t + y*s, y*z*t - x*s, z*z*t + c, 0,
		0, 0, 0, 1,
	}
}

// Frustum returns a perspective projection for the given clip planes.
func Frustum(left, right, bottom, top, near, far float64) Matrix {
	rl := float32(right - left)
	tb := float32(top - bottom)
	fn := float32(far - near)

	return Matrix{
		0:  float32(near) * 2 / rl,
		5:  float32(near) * 2 / tb,
		8:  float32(right+left) / rl,
		9:  float32(top+bottom) / tb,
		10: -float32(far+near) / fn,
		11: -1,
		14: -float32(far*near*2) / fn,
	}
}

// Ortho returns an orthographic projection for the given clip planes.
func Ortho(left, right, bottom, top, near, far float64) Matrix {
	rl := float32(right - left)
	tb := float32(top - bottom)
	fn := float32(far - near)

	return Matrix{
		0:  2 / rl,
		5:  2 / tb,
		10: -2 / fn,
		12: -float32(left+right) / rl,
		13: -float32(top+bottom) / tb,
		14: -float32(far+near) / fn,
		15: 1,
	}
}

// Perspective returns a symmetric perspective projection. fovy is the
// vertical field of view in radians.
func Perspective(fovy, aspect, near, far float64) Matrix {
	top := near * float64(math32.Tan(float32(fovy)*0.5))
	right := top * aspect
	return Frustum(-right, right, -top, top, near, far)
}

// Transpose returns the transposed matrix.
func (m Matrix) Transpose() Matrix {
	var r Matrix
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[row*4+c] = m[c*4+row]
		}
	}
	return r
}

// Transform applies m to the point (x, y, z, 1) and returns the resulting
// x, y and z. The w component is not divided out.
func (m Matrix) Transform(x, y, z float32) (tx, ty, tz float32) {
	tx = m[0]*x + m[4]*y + m[8]*z + m[12]
	ty = m[1]*x + m[5]*y + m[9]*z + m[13]
	tz = m[2]*x + m[6]*y + m[10]*z + m[14]
	return tx, ty, tz
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
