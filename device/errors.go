// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "errors"

var (
	// ErrInvalidHandle is returned when an operation receives a handle that
	// the device does not know.
	ErrInvalidHandle = errors.New("device: invalid handle")

	// ErrUnsupportedFormat is returned when a pixel format cannot be used
	// with the device.
	ErrUnsupportedFormat = errors.New("device: unsupported pixel format")

	// ErrCompile is returned when a shader stage fails to compile.
	ErrCompile = errors.New("device: shader compilation failed")

	// ErrLink is returned when shader stages cannot be linked into a program.
	ErrLink = errors.New("device: program link failed")

	// ErrOutOfRange is returned when an offset or size exceeds a resource.
	ErrOutOfRange = errors.New("device: range out of bounds")

	// ErrNotSupported is returned for operations the device does not
	// implement (for example compute on a device without compute support).
	ErrNotSupported = errors.New("device: operation not supported")

	// ErrIncompleteFramebuffer is returned by FramebufferStatus.
	ErrIncompleteFramebuffer = errors.New("device: framebuffer incomplete")
)
