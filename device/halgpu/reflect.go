// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/immgl/device"
)

// resourceKind classifies a module-scope WGSL resource variable.
type resourceKind uint8

const (
	resourceUniform resourceKind = iota
	resourceStorage
	resourceTexture
	resourceSampler
	resourceStorageTexture
)

// resource is a `@group(g) @binding(b) var ...` declaration.
type resource struct {
	Group   int
	Binding int
	Name    string
	Kind    resourceKind

	// ReadOnly is set for var<storage, read> buffers.
	ReadOnly bool

	// SampleType and ViewDimension describe sampled textures.
	SampleType    gputypes.TextureSampleType
	ViewDimension gputypes.TextureViewDimension

	// Format and Access describe storage textures.
	Format gputypes.TextureFormat
	Access gputypes.StorageTextureAccess

	// Block is the layout of a uniform buffer.
	Block *uniformLayout
}

// field is one addressable member of a uniform buffer. Nested struct
// members are flattened to dotted names: light.color, lights[1].color.
type field struct {
	Name   string
	Offset int
	Size   int

	// Scalars is the number of 32-bit components of one element.
	Scalars int

	// Count and Stride describe array fields; Count is 1 otherwise.
	Count  int
	Stride int

	// Columns and Rows are set for matrices. ColumnStride is the byte
	// distance between two columns.
	Columns      int
	Rows         int
	ColumnStride int

	Integer bool
}

// uniformLayout is the uniform address space layout of a buffer.
type uniformLayout struct {
	Size   int
	Fields []field
}

// vertexInput is a @location parameter of the vertex entry point.
type vertexInput struct {
	Name       string
	Location   int
	Components int
	Integer    bool
}

// reflection is what the device needs to know about one shader module.
type reflection struct {
	Stage     device.ShaderStage
	Entry     string
	Resources []resource
	Inputs    []vertexInput
}

// reflectWGSL lowers src and reflects it for stage.
func reflectWGSL(stage device.ShaderStage, src string) (*reflection, error) {
	m, err := lowerWGSL(src)
	if err != nil {
		return nil, err
	}
	return reflectModule(stage, m)
}

// reflectModule extracts entry point, resources and vertex inputs from a
// lowered module compiled for stage.
func reflectModule(stage device.ShaderStage, m *ir.Module) (*reflection, error) {
	ep, err := findEntry(m, stage)
	if err != nil {
		return nil, err
	}
	r := &reflection{Stage: stage, Entry: ep.Name}

	for _, gv := range m.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		res := resource{
			Group:   int(gv.Binding.Group),
			Binding: int(gv.Binding.Binding),
			Name:    gv.Name,
		}
		switch gv.Space {
		case ir.SpaceUniform:
			res.Kind = resourceUniform
			block, err := layoutBlock(m, gv.Name, gv.Type)
			if err != nil {
				return nil, fmt.Errorf("uniform %s: %w", gv.Name, err)
			}
			res.Block = block
		case ir.SpaceStorage:
			res.Kind = resourceStorage
			res.ReadOnly = gv.Access == ir.StorageRead
		case ir.SpaceHandle:
			if err := reflectHandle(&res, m.Types[gv.Type].Inner); err != nil {
				return nil, fmt.Errorf("%s: %w", gv.Name, err)
			}
		default:
			continue
		}
		r.Resources = append(r.Resources, res)
	}

	if stage == device.StageVertex {
		r.Inputs, err = vertexInputs(m, ep.Function.Arguments)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func findEntry(m *ir.Module, stage device.ShaderStage) (*ir.EntryPoint, error) {
	want := ir.StageCompute
	switch stage {
	case device.StageVertex:
		want = ir.StageVertex
	case device.StageFragment:
		want = ir.StageFragment
	}
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == want {
			return &m.EntryPoints[i], nil
		}
	}
	return nil, fmt.Errorf("no @%s entry point", stage)
}

// reflectHandle classifies a texture or sampler variable.
func reflectHandle(res *resource, inner ir.TypeInner) error {
	switch t := inner.(type) {
	case ir.SamplerType:
		res.Kind = resourceSampler
	case ir.ImageType:
		if t.Class == ir.ImageClassStorage {
			format, ok := storageFormat(t.StorageFormat)
			if !ok {
				return fmt.Errorf("unsupported storage texture format %d", t.StorageFormat)
			}
			res.Kind = resourceStorageTexture
			res.Format = format
			res.Access = storageAccess(t.StorageAccess)
			return nil
		}
		res.Kind = resourceTexture
		res.SampleType = textureSampleType(t)
		res.ViewDimension = textureViewDimension(t)
	default:
		return fmt.Errorf("unsupported resource type %T", inner)
	}
	return nil
}

func vertexInputs(m *ir.Module, args []ir.FunctionArgument) ([]vertexInput, error) {
	var out []vertexInput
	add := func(name string, b *ir.Binding, th ir.TypeHandle) error {
		if b == nil {
			return nil
		}
		loc, ok := (*b).(ir.LocationBinding)
		if !ok {
			return nil
		}
		comps, integer, ok := shape(m.Types[th].Inner)
		if !ok {
			return fmt.Errorf("vertex input %s: unsupported type", name)
		}
		out = append(out, vertexInput{Name: name, Location: int(loc.Location), Components: comps, Integer: integer})
		return nil
	}
	for _, a := range args {
		if st, ok := m.Types[a.Type].Inner.(ir.StructType); ok && a.Binding == nil {
			for _, mem := range st.Members {
				if err := add(mem.Name, mem.Binding, mem.Type); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(a.Name, a.Binding, a.Type); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// shape returns the component count of a scalar or vector type and
// whether the components are integers.
func shape(inner ir.TypeInner) (int, bool, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return 1, isInteger(t), true
	case ir.VectorType:
		return int(t.Size), isInteger(t.Scalar), true
	}
	return 0, false, false
}

func isInteger(s ir.ScalarType) bool {
	return s.Kind == ir.ScalarSint || s.Kind == ir.ScalarUint
}

// layoutBlock flattens the uniform buffer variable name of type th. The
// offsets and sizes are the ones naga assigned.
func layoutBlock(m *ir.Module, name string, th ir.TypeHandle) (*uniformLayout, error) {
	b := &uniformLayout{Size: int(ir.TypeSize(m, th))}
	prefix := name
	if _, ok := m.Types[th].Inner.(ir.StructType); ok {
		prefix = ""
	}
	fields, err := appendFields(m, nil, prefix, 0, th)
	if err != nil {
		return nil, err
	}
	b.Fields = fields
	return b, nil
}

func appendFields(m *ir.Module, out []field, name string, offset int, th ir.TypeHandle) ([]field, error) {
	switch t := m.Types[th].Inner.(type) {
	case ir.StructType:
		var err error
		for _, mem := range t.Members {
			child := mem.Name
			if name != "" {
				child = name + "." + mem.Name
			}
			if out, err = appendFields(m, out, child, offset+int(mem.Offset), mem.Type); err != nil {
				return nil, err
			}
		}
		return out, nil
	case ir.ArrayType:
		if t.Size.Constant == nil {
			return nil, fmt.Errorf("field %s: runtime-sized array", name)
		}
		n := int(*t.Size.Constant)
		if _, ok := m.Types[t.Base].Inner.(ir.StructType); ok {
			var err error
			for i := range n {
				elem := fmt.Sprintf("%s[%d]", name, i)
				if out, err = appendFields(m, out, elem, offset+i*int(t.Stride), t.Base); err != nil {
					return nil, err
				}
			}
			return out, nil
		}
		f, err := leafField(m, name, t.Base)
		if err != nil {
			return nil, err
		}
		f.Offset = offset
		f.Count = n
		f.Stride = int(t.Stride)
		f.Size = n * f.Stride
		return append(out, f), nil
	default:
		f, err := leafField(m, name, th)
		if err != nil {
			return nil, err
		}
		f.Offset = offset
		return append(out, f), nil
	}
}

// leafField describes a scalar, vector or matrix member.
func leafField(m *ir.Module, name string, th ir.TypeHandle) (field, error) {
	size := int(ir.TypeSize(m, th))
	f := field{Name: name, Size: size, Stride: size, Count: 1}
	var scalar ir.ScalarType
	switch t := m.Types[th].Inner.(type) {
	case ir.ScalarType:
		scalar, f.Scalars = t, 1
	case ir.VectorType:
		scalar, f.Scalars = t.Scalar, int(t.Size)
	case ir.MatrixType:
		scalar = t.Scalar
		f.Columns, f.Rows = int(t.Columns), int(t.Rows)
		f.Scalars = f.Columns * f.Rows
		f.ColumnStride = size / f.Columns
	default:
		return field{}, fmt.Errorf("field %s: unsupported type %T", name, t)
	}
	if scalar.Kind == ir.ScalarBool || scalar.Width != 4 {
		return field{}, fmt.Errorf("field %s: unsupported %d-byte scalar", name, scalar.Width)
	}
	f.Integer = isInteger(scalar)
	return f, nil
}

func textureSampleType(t ir.ImageType) gputypes.TextureSampleType {
	if t.Class == ir.ImageClassDepth {
		return gputypes.TextureSampleTypeDepth
	}
	switch t.SampledKind {
	case ir.ScalarSint:
		return gputypes.TextureSampleTypeSint
	case ir.ScalarUint:
		return gputypes.TextureSampleTypeUint
	default:
		return gputypes.TextureSampleTypeFloat
	}
}

func textureViewDimension(t ir.ImageType) gputypes.TextureViewDimension {
	if t.Dim == ir.DimCube {
		return gputypes.TextureViewDimensionCube
	}
	return gputypes.TextureViewDimension2D
}

var storageFormats = map[ir.StorageFormat]gputypes.TextureFormat{
	ir.StorageFormatR32Float:    gputypes.TextureFormatR32Float,
	ir.StorageFormatR32Uint:     gputypes.TextureFormatR32Uint,
	ir.StorageFormatR32Sint:     gputypes.TextureFormatR32Sint,
	ir.StorageFormatRg32Float:   gputypes.TextureFormatRG32Float,
	ir.StorageFormatRgba8Unorm:  gputypes.TextureFormatRGBA8Unorm,
	ir.StorageFormatRgba8Snorm:  gputypes.TextureFormatRGBA8Snorm,
	ir.StorageFormatRgba8Uint:   gputypes.TextureFormatRGBA8Uint,
	ir.StorageFormatRgba8Sint:   gputypes.TextureFormatRGBA8Sint,
	ir.StorageFormatRgba16Float: gputypes.TextureFormatRGBA16Float,
	ir.StorageFormatRgba32Float: gputypes.TextureFormatRGBA32Float,
	ir.StorageFormatRgba32Uint:  gputypes.TextureFormatRGBA32Uint,
	ir.StorageFormatRgba32Sint:  gputypes.TextureFormatRGBA32Sint,
}

func storageFormat(f ir.StorageFormat) (gputypes.TextureFormat, bool) {
	format, ok := storageFormats[f]
	return format, ok
}

func storageAccess(a ir.StorageAccess) gputypes.StorageTextureAccess {
	switch a {
	case ir.StorageAccessRead:
		return gputypes.StorageTextureAccessReadOnly
	case ir.StorageAccessReadWrite, ir.StorageAccessAtomic:
		return gputypes.StorageTextureAccessReadWrite
	default:
		return gputypes.StorageTextureAccessWriteOnly
	}
}
