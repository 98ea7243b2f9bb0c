// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/immgl/device"
)

// copyAlignment is the offset and size granularity of WebGPU buffer writes
// and copies.
const copyAlignment = 4

// buffer is a GPU buffer with a CPU shadow of its contents. Queue writes
// must be 4-byte aligned, so unaligned updates are widened using the
// shadow bytes around them.
type buffer struct {
	hal    hal.Buffer
	kind   device.BufferKind
	size   int
	shadow []byte

	// gpuWritten is set once a compute pass bound the buffer writable; the
	// shadow is stale until the next readback.
	gpuWritten bool

	// inFlight is set while recorded commands reference the buffer.
	inFlight bool
}

func alignDown(v int) int { return v &^ (copyAlignment - 1) }
func alignUp(v int) int   { return (v + copyAlignment - 1) &^ (copyAlignment - 1) }

// CreateBuffer implements device.Device.
func (d *Device) CreateBuffer(desc device.BufferDescriptor, data []byte) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	size := desc.Size
	if size == 0 {
		size = len(data)
	}
	if size <= 0 || len(data) > size {
		return 0, fmt.Errorf("halgpu: create buffer %q of %d bytes: %w", desc.Label, size, device.ErrOutOfRange)
	}
	if desc.Kind == device.BufferStorage && !d.caps.StorageBuffers {
		return 0, fmt.Errorf("halgpu: storage buffer: %w", device.ErrNotSupported)
	}
	hb, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(alignUp(size)),
		Usage: convertBufferUsage(desc.Kind),
	})
	if err != nil {
		return 0, fmt.Errorf("halgpu: create buffer %q: %w", desc.Label, err)
	}
	b := &buffer{hal: hb, kind: desc.Kind, size: size, shadow: make([]byte, alignUp(size))}
	if len(data) > 0 {
		copy(b.shadow, data)
		d.queue.WriteBuffer(hb, 0, b.shadow[:alignUp(len(data))])
	}
	id := device.Buffer(d.newID())
	d.buffers[id] = b
	return id, nil
}

// UpdateBuffer implements device.Device.
func (d *Device) UpdateBuffer(id device.Buffer, offset int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("halgpu: update buffer %d [%d:%d] of %d: %w",
			id, offset, offset+len(data), b.size, device.ErrOutOfRange)
	}
	if len(data) == 0 {
		return nil
	}
	// Queue writes are ordered before the commands still being recorded,
	// so pending draws must reach the GPU with the old contents first.
	if b.inFlight {
		if err := d.submitLocked(); err != nil {
			return err
		}
	}
	lo, hi := alignDown(offset), alignUp(offset+len(data))
	if b.gpuWritten && (lo != offset || hi != offset+len(data)) {
		if err := d.readback(b, 0, b.shadow); err != nil {
			return err
		}
		b.gpuWritten = false
	}
	copy(b.shadow[offset:], data)
	d.queue.WriteBuffer(b.hal, uint64(lo), b.shadow[lo:hi])
	return nil
}

// ReadBuffer implements device.Device.
func (d *Device) ReadBuffer(id device.Buffer, offset int, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if offset < 0 || offset+len(dst) > b.size {
		return fmt.Errorf("halgpu: read buffer %d [%d:%d] of %d: %w",
			id, offset, offset+len(dst), b.size, device.ErrOutOfRange)
	}
	if b.inFlight {
		if err := d.submitLocked(); err != nil {
			return err
		}
	}
	if b.gpuWritten {
		if err := d.readback(b, 0, b.shadow); err != nil {
			return err
		}
		b.gpuWritten = false
	}
	copy(dst, b.shadow[offset:])
	return nil
}

// readback copies the GPU contents of b starting at offset into dst through
// a staging buffer. dst must be a multiple of 4 bytes long.
func (d *Device) readback(b *buffer, offset int, dst []byte) error {
	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "immgl_readback",
		Size:  uint64(len(dst)),
		Usage: readbackUsage,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	err = d.oneShot("immgl_readback", func(enc hal.CommandEncoder) {
		enc.CopyBufferToBuffer(b.hal, staging, []hal.BufferCopy{
			{SrcOffset: uint64(offset), DstOffset: 0, Size: uint64(len(dst))},
		})
	})
	if err != nil {
		return err
	}
	if err := d.queue.ReadBuffer(staging, 0, dst); err != nil {
		return fmt.Errorf("halgpu: read staging buffer: %w", err)
	}
	return nil
}

// CopyBuffer implements device.Device. Offsets and size must be multiples
// of 4.
func (d *Device) CopyBuffer(dst, src device.Buffer, dstOffset, srcOffset, size int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	db, ok1 := d.buffers[dst]
	sb, ok2 := d.buffers[src]
	if !ok1 || !ok2 {
		return device.ErrInvalidHandle
	}
	if srcOffset < 0 || dstOffset < 0 || size < 0 || srcOffset+size > sb.size || dstOffset+size > db.size {
		return device.ErrOutOfRange
	}
	if srcOffset%copyAlignment != 0 || dstOffset%copyAlignment != 0 || size%copyAlignment != 0 {
		return fmt.Errorf("halgpu: copy of %d bytes at %d->%d is not 4-byte aligned: %w",
			size, srcOffset, dstOffset, device.ErrNotSupported)
	}
	if size == 0 {
		return nil
	}
	d.ensureEncoder()
	d.endPass()
	d.frame.encoder.CopyBufferToBuffer(sb.hal, db.hal, []hal.BufferCopy{
		{SrcOffset: uint64(srcOffset), DstOffset: uint64(dstOffset), Size: uint64(size)},
	})
	copy(db.shadow[dstOffset:dstOffset+size], sb.shadow[srcOffset:srcOffset+size])
	db.gpuWritten = db.gpuWritten || sb.gpuWritten
	d.touchBuffer(sb)
	d.touchBuffer(db)
	return nil
}

// BufferSize implements device.Device.
func (d *Device) BufferSize(id device.Buffer) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.buffers[id]; ok {
		return b.size
	}
	return 0
}

// BindStorageBuffer implements device.Device. index is the @binding of the
// storage buffer variable.
func (d *Device) BindStorageBuffer(id device.Buffer, index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == 0 {
		delete(d.state.storage, index)
		return
	}
	d.state.storage[index] = id
}

// DestroyBuffer implements device.Device.
func (d *Device) DestroyBuffer(id device.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	delete(d.buffers, id)
	hb := b.hal
	d.release(b.inFlight, func() { d.dev.DestroyBuffer(hb) })
}

func (d *Device) touchBuffer(b *buffer) {
	if !b.inFlight {
		b.inFlight = true
		d.frame.buffers = append(d.frame.buffers, b)
	}
}
