// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import "log/slog"

// Option configures a Context during creation.
//
// Example:
//
//	rc, err := immgl.New(dev, 800, 600,
//	    immgl.WithBatchCapacity(1024),
//	    immgl.WithBatchBuffers(2))
type Option func(*options)

type options struct {
	cfg    Config
	logger *slog.Logger

	vertexShader   string
	fragmentShader string
}

func defaultOptions() options {
	return options{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration. Options given after it
// still apply on top.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithBatchCapacity sets the number of quads per batch buffer.
func WithBatchCapacity(quads int) Option {
	return func(o *options) {
		o.cfg.BatchCapacity = quads
	}
}

// WithBatchBuffers sets the number of buffers the default batch cycles
// through.
func WithBatchBuffers(n int) Option {
	return func(o *options) {
		o.cfg.BatchBuffers = n
	}
}

// WithDrawCalls sets the length of the draw call table.
func WithDrawCalls(n int) Option {
	return func(o *options) {
		o.cfg.DrawCalls = n
	}
}

// WithStackSize sets the depth of the matrix stack.
func WithStackSize(n int) Option {
	return func(o *options) {
		o.cfg.StackSize = n
	}
}

// WithTextureUnits sets the number of auxiliary sampler slots.
func WithTextureUnits(n int) Option {
	return func(o *options) {
		o.cfg.TextureUnits = n
	}
}

// WithCullDistance sets the near and far cull distances.
func WithCullDistance(near, far float64) Option {
	return func(o *options) {
		o.cfg.CullNear = near
		o.cfg.CullFar = far
	}
}

// WithInitialDepth sets the depth 2D vertices start from after a flush.
func WithInitialDepth(z float32) Option {
	return func(o *options) {
		o.cfg.InitialDepth = z
	}
}

// WithMipmapFilter sets the kernel GenTextureMipmaps downscales with.
func WithMipmapFilter(f MipmapFilter) Option {
	return func(o *options) {
		o.cfg.MipmapFilter = f
	}
}

// WithLogger sets the package logger, as SetLogger does.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDefaultShader overrides the source of the default program. Devices
// that report their own default source are otherwise asked first; the
// GLSL sources in this package are the fallback.
func WithDefaultShader(vertex, fragment string) Option {
	return func(o *options) {
		o.vertexShader = vertex
		o.fragmentShader = fragment
	}
}
