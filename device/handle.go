// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// Buffer identifies a device buffer (vertex, index or storage).
type Buffer uint32

// Texture identifies a device texture or renderbuffer.
type Texture uint32

// Framebuffer identifies an offscreen render target.
type Framebuffer uint32

// VertexArray identifies a vertex input configuration.
type VertexArray uint32

// Shader identifies a single compiled shader stage.
type Shader uint32

// Program identifies a linked shader program.
type Program uint32

// Valid reports whether b is a live handle.
func (b Buffer) Valid() bool { return b != 0 }

// Valid reports whether t is a live handle.
func (t Texture) Valid() bool { return t != 0 }

// Valid reports whether f is a live handle.
func (f Framebuffer) Valid() bool { return f != 0 }

// Valid reports whether v is a live handle.
func (v VertexArray) Valid() bool { return v != 0 }

// Valid reports whether s is a live handle.
func (s Shader) Valid() bool { return s != 0 }

// Valid reports whether p is a live handle.
func (p Program) Valid() bool { return p != 0 }
