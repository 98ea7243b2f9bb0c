// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"github.com/gogpu/immgl/batch"
	"github.com/gogpu/immgl/device"
)

// LoadRenderBatch creates a batch of buffers slots holding capacity quads
// each, wired to this context. It returns nil if the device buffers could
// not be created.
func (c *Context) LoadRenderBatch(buffers, capacity int) *batch.Batch {
	b, err := batch.New(c.dev, (*batchHost)(c), c.batchConfig(buffers, capacity))
	if err != nil {
		Logger().Error("immgl: load render batch", "err", err)
		return nil
	}
	return b
}

// UnloadRenderBatch releases the device buffers of b. If b is active its
// pending vertices are drawn first and the default batch becomes active.
// The default batch is owned by the context and released by Close.
func (c *Context) UnloadRenderBatch(b *batch.Batch) {
	if b == nil || b == c.defaultBatch {
		return
	}
	if b == c.active {
		c.SetRenderBatchActive(nil)
	}
	b.Unload()
}

// DrawRenderBatch flushes b with the current renderer state.
func (c *Context) DrawRenderBatch(b *batch.Batch) {
	if b == nil {
		return
	}
	_ = b.Draw()
}

// SetRenderBatchActive flushes the active batch and makes b active. A nil
// b selects the default batch.
func (c *Context) SetRenderBatchActive(b *batch.Batch) {
	_ = c.active.Draw()
	if b == nil {
		b = c.defaultBatch
	}
	c.active = b
}

// DrawRenderBatchActive flushes the active batch. The error joins upload
// and submit failures; it has already been logged.
func (c *Context) DrawRenderBatchActive() error {
	return c.active.Draw()
}

// CheckRenderBatchLimit flushes the active batch if n more vertices would
// not fit and reports whether it did.
func (c *Context) CheckRenderBatchLimit(n int) bool {
	return c.active.CheckLimit(n)
}

// SetTexture makes tex the texture of the following vertices. The zero
// texture keeps the current one.
func (c *Context) SetTexture(tex device.Texture) {
	c.active.SetTexture(tex)
}

// ActiveBatch returns the batch vertices are written to.
func (c *Context) ActiveBatch() *batch.Batch { return c.active }

// DefaultBatch returns the batch created by New.
func (c *Context) DefaultBatch() *batch.Batch { return c.defaultBatch }
