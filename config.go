// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/immgl/internal/mipmap"
)

// Config holds the sizes and constants a Context is created with.
type Config struct {
	// BatchCapacity is the number of quads each batch buffer holds.
	BatchCapacity int `yaml:"batch_capacity" toml:"batch_capacity"`
	// BatchBuffers is the number of buffers the default batch cycles through.
	BatchBuffers int `yaml:"batch_buffers" toml:"batch_buffers"`
	// DrawCalls is the length of the draw call table.
	DrawCalls int `yaml:"draw_calls" toml:"draw_calls"`
	// TextureUnits is the number of auxiliary sampler slots bound on flush.
	TextureUnits int `yaml:"texture_units" toml:"texture_units"`
	// StackSize is the depth of the matrix stack.
	StackSize int `yaml:"stack_size" toml:"stack_size"`

	CullNear float64 `yaml:"cull_near" toml:"cull_near"`
	CullFar  float64 `yaml:"cull_far" toml:"cull_far"`

	// InitialDepth is the z given to 2D vertices after every flush.
	InitialDepth float32 `yaml:"initial_depth" toml:"initial_depth"`
	// DepthStep is added to the 2D depth by every End.
	DepthStep float32 `yaml:"depth_step" toml:"depth_step"`

	// MipmapFilter is the kernel GenTextureMipmaps downscales with.
	MipmapFilter MipmapFilter `yaml:"mipmap_filter" toml:"mipmap_filter"`
}

// MipmapFilter names the downscale kernel of CPU mipmap generation.
type MipmapFilter string

const (
	// MipmapAuto averages 2x2 blocks for power-of-two images and resamples
	// bilinearly otherwise. The empty filter means MipmapAuto.
	MipmapAuto       MipmapFilter = "auto"
	MipmapBox        MipmapFilter = "box"
	MipmapBiLinear   MipmapFilter = "bilinear"
	MipmapCatmullRom MipmapFilter = "catmullrom"
)

// kernel returns the filter for a width x height base image.
func (f MipmapFilter) kernel(width, height int) mipmap.Filter {
	switch f {
	case MipmapBox:
		return mipmap.Box
	case MipmapBiLinear:
		return mipmap.BiLinear
	case MipmapCatmullRom:
		return mipmap.CatmullRom
	}
	if isPowerOfTwo(width) && isPowerOfTwo(height) {
		return mipmap.Box
	}
	return mipmap.BiLinear
}

func (f MipmapFilter) valid() bool {
	switch f {
	case "", MipmapAuto, MipmapBox, MipmapBiLinear, MipmapCatmullRom:
		return true
	}
	return false
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BatchCapacity: 8192,
		BatchBuffers:  1,
		DrawCalls:     256,
		TextureUnits:  4,
		StackSize:     32,
		CullNear:      0.01,
		CullFar:       1000.0,
		InitialDepth:  -1.0,
		DepthStep:     1.0 / 20000.0,
		MipmapFilter:  MipmapAuto,
	}
}

// Validate reports whether every size is positive and the cull range is
// well formed.
func (c Config) Validate() error {
	switch {
	case c.BatchCapacity <= 0:
		return fmt.Errorf("%w: batch_capacity %d", ErrInvalidConfig, c.BatchCapacity)
	case c.BatchBuffers <= 0:
		return fmt.Errorf("%w: batch_buffers %d", ErrInvalidConfig, c.BatchBuffers)
	case c.DrawCalls <= 0:
		return fmt.Errorf("%w: draw_calls %d", ErrInvalidConfig, c.DrawCalls)
	case c.TextureUnits <= 0:
		return fmt.Errorf("%w: texture_units %d", ErrInvalidConfig, c.TextureUnits)
	case c.StackSize <= 0:
		return fmt.Errorf("%w: stack_size %d", ErrInvalidConfig, c.StackSize)
	case c.CullNear <= 0 || c.CullFar <= c.CullNear:
		return fmt.Errorf("%w: cull range [%g, %g]", ErrInvalidConfig, c.CullNear, c.CullFar)
	case c.DepthStep <= 0:
		return fmt.Errorf("%w: depth_step %g", ErrInvalidConfig, c.DepthStep)
	case !c.MipmapFilter.valid():
		return fmt.Errorf("%w: mipmap_filter %q", ErrInvalidConfig, c.MipmapFilter)
	}
	return nil
}

// LoadConfig reads a configuration file. The format is chosen by extension:
// .yaml and .yml are YAML, .toml is TOML. Keys missing from the file keep
// their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("immgl: read config: %w", err)
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes data in the format named by ext (".yaml", ".yml" or
// ".toml") over DefaultConfig and validates the result.
func ParseConfig(data []byte, ext string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrConfigFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("immgl: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
