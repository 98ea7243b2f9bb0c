// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "errors"

var (
	// ErrInvalidConfig is returned when a Config has a non-positive size or
	// an inconsistent range.
	ErrInvalidConfig = errors.New("immgl: invalid config")

	// ErrConfigFormat is returned by LoadConfig for an unknown file extension.
	ErrConfigFormat = errors.New("immgl: unsupported config format")

	// ErrNilDevice is returned by New when no device is given.
	ErrNilDevice = errors.New("immgl: nil device")

	// ErrClosed is returned when a closed Context is used where an error
	// can be reported.
	ErrClosed = errors.New("immgl: context closed")
)
