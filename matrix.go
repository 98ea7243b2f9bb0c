// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/matrix"
)

// MatrixMode selects the matrix the stack operations act on. Values match
// the classic GL enumerants.
type MatrixMode int32

const (
	Modelview  MatrixMode = 0x1700
	Projection MatrixMode = 0x1701
	Texture    MatrixMode = 0x1702
)

// matrixTarget names the stored matrix that is currently modified.
type matrixTarget uint8

const (
	targetModelview matrixTarget = iota
	targetProjection
	targetTransform
)

// current resolves the target to the stored matrix.
func (c *Context) current() *matrix.Matrix {
	switch c.target {
	case targetProjection:
		return &c.projection
	case targetTransform:
		return &c.transform
	default:
		return &c.modelview
	}
}

// MatrixMode selects the matrix the following operations modify. Texture
// is recorded as the mode but keeps the current target matrix.
func (c *Context) MatrixMode(mode MatrixMode) {
	switch mode {
	case Projection:
		c.target = targetProjection
	case Modelview:
		c.target = targetModelview
	case Texture:
	default:
		return
	}
	c.mode = mode
}

// PushMatrix saves the current matrix. In Modelview mode the first push
// starts CPU-side vertex transformation: later matrix operations modify the
// transform matrix instead of the modelview. A full stack drops the push.
func (c *Context) PushMatrix() {
	if len(c.stack) >= c.cfg.StackSize {
		Logger().Error("immgl: matrix stack overflow", "size", c.cfg.StackSize)
		return
	}
	if c.mode == Modelview {
		c.transformRequired = true
		c.target = targetTransform
	}
	c.stack = append(c.stack, *c.current())
}

// PopMatrix restores the most recently pushed matrix. Popping the last
// Modelview entry ends CPU-side vertex transformation.
func (c *Context) PopMatrix() {
	if n := len(c.stack); n > 0 {
		*c.current() = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
	if len(c.stack) == 0 && c.mode == Modelview {
		c.target = targetModelview
		c.transformRequired = false
	}
}

// StackDepth returns the number of pushed matrices.
func (c *Context) StackDepth() int { return len(c.stack) }

// LoadIdentity resets the current matrix.
func (c *Context) LoadIdentity() {
	*c.current() = matrix.Identity()
}

// Translate multiplies the current matrix by a translation.
func (c *Context) Translate(x, y, z float32) {
	cur := c.current()
	*cur = matrix.Multiply(matrix.Translate(x, y, z), *cur)
}

// Rotate multiplies the current matrix by a rotation of angle degrees
// around (x, y, z).
func (c *Context) Rotate(angle, x, y, z float32) {
	cur := c.current()
	*cur = matrix.Multiply(matrix.Rotate(angle, x, y, z), *cur)
}

// Scale multiplies the current matrix by a scale.
func (c *Context) Scale(x, y, z float32) {
	cur := c.current()
	*cur = matrix.Multiply(matrix.Scale(x, y, z), *cur)
}

// MultMatrixf multiplies the current matrix by m (column-major).
func (c *Context) MultMatrixf(m [16]float32) {
	cur := c.current()
	*cur = matrix.Multiply(*cur, matrix.FromFloats(m))
}

// Frustum multiplies the current matrix by a perspective projection.
func (c *Context) Frustum(left, right, bottom, top, near, far float64) {
	cur := c.current()
	*cur = matrix.Multiply(*cur, matrix.Frustum(left, right, bottom, top, near, far))
}

// Ortho multiplies the current matrix by an orthographic projection.
func (c *Context) Ortho(left, right, bottom, top, near, far float64) {
	cur := c.current()
	*cur = matrix.Multiply(*cur, matrix.Ortho(left, right, bottom, top, near, far))
}

// Viewport sets the device viewport.
func (c *Context) Viewport(x, y, width, height int) {
	c.dev.SetViewport(device.Viewport{X: x, Y: y, Width: width, Height: height})
}

// MatrixModelview returns the modelview matrix.
func (c *Context) MatrixModelview() matrix.Matrix { return c.modelview }

// MatrixProjection returns the projection matrix.
func (c *Context) MatrixProjection() matrix.Matrix { return c.projection }

// MatrixTransform returns the transform applied to vertices while a
// Modelview push is active.
func (c *Context) MatrixTransform() matrix.Matrix { return c.transform }

// SetMatrixModelview replaces the modelview matrix.
func (c *Context) SetMatrixModelview(m matrix.Matrix) { c.modelview = m }

// SetMatrixProjection replaces the projection matrix.
func (c *Context) SetMatrixProjection(m matrix.Matrix) { c.projection = m }

// MatrixProjectionStereo returns the projection of eye 0 (right) or 1 (left).
func (c *Context) MatrixProjectionStereo(eye int) matrix.Matrix {
	return c.projectionStereo[eye]
}

// MatrixViewOffsetStereo returns the view offset of eye 0 (right) or 1 (left).
func (c *Context) MatrixViewOffsetStereo(eye int) matrix.Matrix {
	return c.viewOffsetStereo[eye]
}

// SetMatrixProjectionStereo sets the per-eye projections.
func (c *Context) SetMatrixProjectionStereo(right, left matrix.Matrix) {
	c.projectionStereo = [2]matrix.Matrix{right, left}
}

// SetMatrixViewOffsetStereo sets the per-eye view offsets.
func (c *Context) SetMatrixViewOffsetStereo(right, left matrix.Matrix) {
	c.viewOffsetStereo = [2]matrix.Matrix{right, left}
}
