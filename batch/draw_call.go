// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import "github.com/gogpu/immgl/device"

// DrawCall is one contiguous run of vertices sharing a mode and texture.
type DrawCall struct {
	Mode            Mode
	VertexCount     int
	VertexAlignment int
	Texture         device.Texture
}

// DrawTable is the ordered, bounded list of draw calls of one batch. It
// always holds at least one entry.
type DrawTable struct {
	entries []DrawCall
	count   int
}

func newDrawTable(max int, tex device.Texture) DrawTable {
	t := DrawTable{entries: make([]DrawCall, max)}
	t.reset(tex)
	return t
}

// Len returns the number of entries in use.
func (t *DrawTable) Len() int { return t.count }

// Cap returns the maximum number of entries.
func (t *DrawTable) Cap() int { return len(t.entries) }

// Current returns the in-progress entry.
func (t *DrawTable) Current() *DrawCall { return &t.entries[t.count-1] }

// Entries returns a copy of the entries in use.
func (t *DrawTable) Entries() []DrawCall {
	return append([]DrawCall(nil), t.entries[:t.count]...)
}

// open starts a new entry after the current one. The new entry keeps
// whatever values it held; callers overwrite them.
func (t *DrawTable) open() {
	if t.count < len(t.entries) {
		t.count++
	}
}

func (t *DrawTable) full() bool { return t.count >= len(t.entries) }

// reset returns every entry to an empty Quads run on tex and leaves one
// entry in use.
func (t *DrawTable) reset(tex device.Texture) {
	for i := range t.entries {
		t.entries[i] = DrawCall{Mode: Quads, Texture: tex}
	}
	t.count = 1
}
