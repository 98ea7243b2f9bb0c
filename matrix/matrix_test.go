// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package matrix

import (
	"math"
	"testing"
)

const eps = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < eps
}

func nearMatrix(a, b Matrix) bool {
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity()[%d] = %v, want %v", i, m[i], want)
		}
	}
	if !m.IsIdentity() {
		t.Error("IsIdentity() = false for Identity()")
	}
}

func TestMultiplyOrder(t *testing.T) {
	s := Scale(2, 2, 2)
	tr := Translate(1, 0, 0)

	tests := []struct {
		name  string
		m     Matrix
		wantX float32
	}{
		{"scale then translate", Multiply(s, tr), 1},
		{"translate then scale", Multiply(tr, s), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, z := tt.m.Transform(0, 0, 0)
			if !near(x, tt.wantX) || y != 0 || z != 0 {
				t.Errorf("Transform(0,0,0) = (%v,%v,%v), want (%v,0,0)", x, y, z, tt.wantX)
			}
		})
	}
}

func TestMultiplyIdentity(t *testing.T) {
	m := Multiply(Rotate(30, 0, 0, 1), Translate(4, 5, 6))
	if got := Multiply(m, Identity()); got != m {
		t.Errorf("m*I = %v, want %v", got, m)
	}
	if got := Multiply(Identity(), m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
}

func TestTranslateTransform(t *testing.T) {
	x, y, z := Translate(1, 2, 3).Transform(1, 1, 1)
	if x != 2 || y != 3 || z != 4 {
		t.Errorf("Transform = (%v,%v,%v), want (2,3,4)", x, y, z)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name             string
		angle, ax, ay, az float32
		in               [3]float32
		want             [3]float32
	}{
		{"z 90", 90, 0, 0, 1, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{"z 90 unnormalized axis", 90, 0, 0, 5, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{"x 90", 90, 1, 0, 0, [3]float32{0, 1, 0}, [3]float32{0, 0, 1}},
		{"y 180", 180, 0, 1, 0, [3]float32{1, 0, 0}, [3]float32{-1, 0, 0}},
		{"zero angle", 0, 1, 1, 1, [3]float32{3, 4, 5}, [3]float32{3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Rotate(tt.angle, tt.ax, tt.ay, tt.az)
			x, y, z := m.Transform(tt.in[0], tt.in[1], tt.in[2])
			if !near(x, tt.want[0]) || !near(y, tt.want[1]) || !near(z, tt.want[2]) {
				t.Errorf("got (%v,%v,%v), want %v", x, y, z, tt.want)
			}
		})
	}
}

func TestRotateZeroAxis(t *testing.T) {
	m := Rotate(90, 0, 0, 0)
	c := float32(math.Cos(math.Pi / 2))
	want := Matrix{0: c, 5: c, 10: c, 15: 1}
	if !nearMatrix(m, want) {
		t.Errorf("Rotate(90, 0,0,0) = %v, want %v", m, want)
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(0, 800, 600, 0, 0, 1)

	tests := []struct {
		in   [3]float32
		want [3]float32
	}{
		{[3]float32{0, 0, 0}, [3]float32{-1, 1, -1}},
		{[3]float32{800, 600, 0}, [3]float32{1, -1, -1}},
		{[3]float32{400, 300, 0}, [3]float32{0, 0, -1}},
	}
	for _, tt := range tests {
		x, y, z := m.Transform(tt.in[0], tt.in[1], tt.in[2])
		if !near(x, tt.want[0]) || !near(y, tt.want[1]) || !near(z, tt.want[2]) {
			t.Errorf("Ortho.Transform(%v) = (%v,%v,%v), want %v", tt.in, x, y, z, tt.want)
		}
	}
}

func TestFrustum(t *testing.T) {
	m := Frustum(-1, 1, -1, 1, 1, 10)
	want := Matrix{
		0:  1,
		5:  1,
		10: -11.0 / 9.0,
		11: -1,
		14: -20.0 / 9.0,
	}
	if !nearMatrix(m, want) {
		t.Errorf("Frustum = %v, want %v", m, want)
	}
}

func TestPerspectiveSymmetric(t *testing.T) {
	m := Perspective(math.Pi/2, 1, 1, 100)
	if !near(m[0], 1) || !near(m[5], 1) || m[8] != 0 || m[9] != 0 {
		t.Errorf("Perspective(90deg, 1) = %v", m)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3).Transpose()
	if m[3] != 1 || m[7] != 2 || m[11] != 3 || m[12] != 0 {
		t.Errorf("Transpose = %v", m)
	}
	if got := m.Transpose(); got != Translate(1, 2, 3) {
		t.Errorf("double Transpose = %v", got)
	}
}

func TestFloatsRoundTrip(t *testing.T) {
	m := Rotate(33, 1, 2, 3)
	if got := FromFloats(m.Floats()); got != m {
		t.Errorf("FromFloats(Floats()) = %v, want %v", got, m)
	}
}
