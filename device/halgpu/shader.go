// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/matrix"
)

type shader struct {
	stage  device.ShaderStage
	refl   *reflection
	module hal.ShaderModule

	// refs counts the programs linked against the module. A destroyed
	// shader keeps its module until the last program is gone.
	refs      int
	destroyed bool
}

// binding is one resolved bind group layout entry of a program.
type binding struct {
	res        resource
	visibility gputypes.ShaderStage

	// block indexes program.blocks for uniform buffers.
	block int

	// texture names the texture a sampler is paired with.
	texture string
}

// blockData is the CPU copy of a uniform buffer, uploaded per draw.
type blockData struct {
	layout *uniformLayout
	data   []byte
}

// uniformTarget is one field a uniform location writes to.
type uniformTarget struct {
	block int
	field int
}

type program struct {
	stages  []*shader
	vertex  *shader
	frag    *shader
	compute *shader

	blocks []*blockData
	groups [][]binding

	// targets[loc] lists the fields a location writes; textures[loc] is
	// the texture variable whose unit it selects.
	uniforms map[string]int
	targets  [][]uniformTarget
	textures map[int]string

	// units maps a texture variable to its texture unit.
	units map[string]int

	layouts    []hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// DefaultShaderSource returns the WGSL sources of the default program.
func (d *Device) DefaultShaderSource() (vertex, fragment string) {
	return DefaultVertexShader, DefaultFragmentShader
}

// CompileShader implements device.Device. Sources are WGSL; the module
// must contain an entry point for stage.
func (d *Device) CompileShader(stage device.ShaderStage, source string) (device.Shader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("halgpu: %s shader: empty source: %w", stage, device.ErrCompile)
	}
	if stage == device.StageCompute && !d.caps.ComputeShaders {
		return 0, fmt.Errorf("halgpu: compute shader: %w", device.ErrNotSupported)
	}
	m, err := lowerWGSL(source)
	if err != nil {
		return 0, fmt.Errorf("halgpu: %s shader: %w: %v", stage, device.ErrCompile, err)
	}
	refl, err := reflectModule(stage, m)
	if err != nil {
		return 0, fmt.Errorf("halgpu: %s shader: %w: %v", stage, device.ErrCompile, err)
	}
	code, err := generateSPIRV(m)
	if err != nil {
		return 0, fmt.Errorf("halgpu: %s shader: %w: %v", stage, device.ErrCompile, err)
	}
	module, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "immgl_" + stage.String(),
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return 0, fmt.Errorf("halgpu: %s shader module: %w: %v", stage, device.ErrCompile, err)
	}
	id := device.Shader(d.newID())
	d.shaders[id] = &shader{stage: stage, refl: refl, module: module}
	return id, nil
}

// DestroyShader implements device.Device.
func (d *Device) DestroyShader(id device.Shader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.shaders[id]
	if !ok {
		return
	}
	delete(d.shaders, id)
	s.destroyed = true
	d.unrefShader(s)
}

func (d *Device) unrefShader(s *shader) {
	if s.destroyed && s.refs == 0 && s.module != nil {
		d.dev.DestroyShaderModule(s.module)
		s.module = nil
	}
}

// LinkProgram implements device.Device. A program is either a vertex and a
// fragment stage or a single compute stage.
func (d *Device) LinkProgram(stages ...device.Shader) (device.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := &program{
		uniforms: make(map[string]int),
		textures: make(map[int]string),
		units:    make(map[string]int),
	}
	for _, id := range stages {
		s, ok := d.shaders[id]
		if !ok {
			return 0, fmt.Errorf("halgpu: link unknown shader %d: %w", id, device.ErrLink)
		}
		var slot **shader
		switch s.stage {
		case device.StageVertex:
			slot = &p.vertex
		case device.StageFragment:
			slot = &p.frag
		default:
			slot = &p.compute
		}
		if *slot != nil {
			return 0, fmt.Errorf("halgpu: link: two %s stages: %w", s.stage, device.ErrLink)
		}
		*slot = s
	}
	switch {
	case p.compute != nil && p.vertex == nil && p.frag == nil:
		p.stages = []*shader{p.compute}
	case p.compute == nil && p.vertex != nil && p.frag != nil:
		p.stages = []*shader{p.vertex, p.frag}
	default:
		return 0, fmt.Errorf("halgpu: link needs vertex+fragment or compute stages: %w", device.ErrLink)
	}

	if err := p.resolve(); err != nil {
		return 0, fmt.Errorf("halgpu: link: %w: %v", device.ErrLink, err)
	}
	for _, s := range p.stages {
		s.refs++
	}
	if err := d.createLayouts(p); err != nil {
		d.destroyProgram(p)
		return 0, fmt.Errorf("halgpu: link: %w: %v", device.ErrLink, err)
	}
	if p.compute != nil {
		cp, err := d.dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  "immgl_compute",
			Layout: p.pipeLayout,
			Compute: hal.ComputeState{
				Module:     p.compute.module,
				EntryPoint: p.compute.refl.Entry,
			},
		})
		if err != nil {
			d.destroyProgram(p)
			return 0, fmt.Errorf("halgpu: link compute pipeline: %w: %v", device.ErrLink, err)
		}
		p.pipeline = cp
	}
	id := device.Program(d.newID())
	d.programs[id] = p
	return id, nil
}

// resolve merges the stage reflections into bindings and assigns uniform
// locations in declaration order, vertex stage first.
func (p *program) resolve() error {
	type key struct{ group, binding int }
	seen := make(map[key]int)
	var all []binding

	for _, s := range p.stages {
		vis := stageVisibility(s.stage)
		for _, r := range s.refl.Resources {
			k := key{r.Group, r.Binding}
			if i, ok := seen[k]; ok {
				if all[i].res.Name != r.Name || all[i].res.Kind != r.Kind {
					return fmt.Errorf("@group(%d) @binding(%d) is %s in one stage and %s in another",
						r.Group, r.Binding, all[i].res.Name, r.Name)
				}
				all[i].visibility |= vis
				continue
			}
			b := binding{res: r, visibility: vis, block: -1}
			switch r.Kind {
			case resourceUniform:
				b.block = len(p.blocks)
				p.blocks = append(p.blocks, &blockData{layout: r.Block, data: make([]byte, r.Block.Size)})
				for fi, f := range r.Block.Fields {
					loc := p.location(f.Name)
					p.targets[loc] = append(p.targets[loc], uniformTarget{block: b.block, field: fi})
				}
			case resourceTexture:
				p.textures[p.location(r.Name)] = r.Name
			}
			seen[k] = len(all)
			all = append(all, b)
		}
	}

	// Pair samplers with textures: texture0Sampler samples texture0, and
	// otherwise the closest preceding texture of the same group is used.
	for i := range all {
		if all[i].res.Kind != resourceSampler {
			continue
		}
		name := all[i].res.Name
		for _, suffix := range []string{"Sampler", "_sampler", "_smp"} {
			if base, ok := strings.CutSuffix(name, suffix); ok && p.hasTexture(all, base) {
				all[i].texture = base
				break
			}
		}
		if all[i].texture == "" {
			for j := i - 1; j >= 0; j-- {
				if all[j].res.Kind == resourceTexture && all[j].res.Group == all[i].res.Group {
					all[i].texture = all[j].res.Name
					break
				}
			}
		}
		if all[i].texture == "" {
			return fmt.Errorf("sampler %s has no texture", name)
		}
	}

	for _, b := range all {
		for len(p.groups) <= b.res.Group {
			p.groups = append(p.groups, nil)
		}
		p.groups[b.res.Group] = append(p.groups[b.res.Group], b)
	}
	for _, g := range p.groups {
		sort.Slice(g, func(i, j int) bool { return g[i].res.Binding < g[j].res.Binding })
	}
	return nil
}

func (p *program) hasTexture(all []binding, name string) bool {
	for _, b := range all {
		if b.res.Kind == resourceTexture && b.res.Name == name {
			return true
		}
	}
	return false
}

// location returns the location of a uniform name, assigning the next one
// on first use.
func (p *program) location(name string) int {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := len(p.targets)
	p.uniforms[name] = loc
	p.targets = append(p.targets, nil)
	return loc
}

func stageVisibility(s device.ShaderStage) gputypes.ShaderStage {
	switch s {
	case device.StageVertex:
		return gputypes.ShaderStageVertex
	case device.StageFragment:
		return gputypes.ShaderStageFragment
	default:
		return gputypes.ShaderStageCompute
	}
}

func (d *Device) createLayouts(p *program) error {
	for gi, g := range p.groups {
		entries := make([]gputypes.BindGroupLayoutEntry, 0, len(g))
		for _, b := range g {
			entry := gputypes.BindGroupLayoutEntry{Binding: uint32(b.res.Binding), Visibility: b.visibility}
			switch b.res.Kind {
			case resourceUniform:
				entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
			case resourceStorage:
				t := gputypes.BufferBindingTypeStorage
				if b.res.ReadOnly {
					t = gputypes.BufferBindingTypeReadOnlyStorage
				}
				entry.Buffer = &gputypes.BufferBindingLayout{Type: t}
			case resourceTexture:
				entry.Texture = &gputypes.TextureBindingLayout{
					SampleType:    b.res.SampleType,
					ViewDimension: b.res.ViewDimension,
				}
			case resourceSampler:
				entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
			case resourceStorageTexture:
				entry.StorageTexture = &gputypes.StorageTextureBindingLayout{
					Access:        b.res.Access,
					Format:        b.res.Format,
					ViewDimension: gputypes.TextureViewDimension2D,
				}
			}
			entries = append(entries, entry)
		}
		layout, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("immgl_group%d", gi),
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("bind group layout %d: %w", gi, err)
		}
		p.layouts = append(p.layouts, layout)
	}
	layout, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "immgl_program",
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}
	p.pipeLayout = layout
	return nil
}

// DestroyProgram implements device.Device.
func (d *Device) DestroyProgram(id device.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return
	}
	delete(d.programs, id)
	if d.state.program == id {
		d.state.program = 0
	}
	var pipes []hal.RenderPipeline
	for k, rp := range d.pipelines {
		if k.program == id {
			pipes = append(pipes, rp)
			delete(d.pipelines, k)
		}
	}
	d.release(true, func() {
		for _, rp := range pipes {
			d.dev.DestroyRenderPipeline(rp)
		}
		d.destroyProgram(p)
	})
}

func (d *Device) destroyProgram(p *program) {
	if p.pipeline != nil {
		d.dev.DestroyComputePipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		d.dev.DestroyPipelineLayout(p.pipeLayout)
	}
	for _, l := range p.layouts {
		d.dev.DestroyBindGroupLayout(l)
	}
	p.pipeline, p.pipeLayout, p.layouts = nil, nil, nil
	for _, s := range p.stages {
		s.refs--
		d.unrefShader(s)
	}
	p.stages = nil
}

// UseProgram implements device.Device.
func (d *Device) UseProgram(id device.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.program = id
}

// AttributeLocation implements device.Device. It returns the @location of
// the vertex input called name, or -1.
func (d *Device) AttributeLocation(id device.Program, name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok || p.vertex == nil {
		return -1
	}
	for _, in := range p.vertex.refl.Inputs {
		if in.Name == name {
			return in.Location
		}
	}
	return -1
}

// UniformLocation implements device.Device. Uniform struct members and
// texture variables are addressable by name.
func (d *Device) UniformLocation(id device.Program, name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

// current returns the bound program and whether loc is one of its
// locations.
func (d *Device) current(loc int) (*program, bool) {
	p, ok := d.programs[d.state.program]
	if !ok || loc < 0 || loc >= len(p.targets) {
		return nil, false
	}
	return p, true
}

// SetUniformFloats implements device.Device.
func (d *Device) SetUniformFloats(loc int, typ device.UniformType, values []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.current(loc)
	if !ok {
		return
	}
	for _, t := range p.targets[loc] {
		blk := p.blocks[t.block]
		f := blk.layout.Fields[t.field]
		writeScalars(blk.data, f, typ.Components(), len(values), func(i int) uint32 {
			if f.Integer {
				return uint32(int32(values[i]))
			}
			return math.Float32bits(values[i])
		})
	}
}

// SetUniformInts implements device.Device. On a texture location the value
// selects the texture unit the texture variable samples.
func (d *Device) SetUniformInts(loc int, typ device.UniformType, values []int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.current(loc)
	if !ok || len(values) == 0 {
		return
	}
	if name, ok := p.textures[loc]; ok {
		p.units[name] = int(values[0])
	}
	for _, t := range p.targets[loc] {
		blk := p.blocks[t.block]
		f := blk.layout.Fields[t.field]
		writeScalars(blk.data, f, typ.Components(), len(values), func(i int) uint32 {
			if f.Integer {
				return uint32(values[i])
			}
			return math.Float32bits(float32(values[i]))
		})
	}
}

// SetUniformMatrix implements device.Device.
func (d *Device) SetUniformMatrix(loc int, m matrix.Matrix) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.current(loc)
	if !ok {
		return
	}
	cm := m.Floats()
	for _, t := range p.targets[loc] {
		blk := p.blocks[t.block]
		f := blk.layout.Fields[t.field]
		if f.Columns == 0 {
			continue
		}
		for c := 0; c < f.Columns; c++ {
			for r := 0; r < f.Rows; r++ {
				binary.LittleEndian.PutUint32(blk.data[f.Offset+c*f.ColumnStride+r*4:], math.Float32bits(cm[c*4+r]))
			}
		}
	}
}

// writeScalars stores n values with comps components per element into the
// array elements of f. Matrix components fill columns in order. Extra
// values are dropped.
func writeScalars(data []byte, f field, comps, n int, value func(i int) uint32) {
	comps = max(comps, 1)
	for e := 0; e < f.Count && e*comps < n; e++ {
		base := f.Offset + e*f.Stride
		for c := 0; c < comps && c < f.Scalars && e*comps+c < n; c++ {
			off := c * 4
			if f.Rows > 0 {
				off = c/f.Rows*f.ColumnStride + c%f.Rows*4
			}
			binary.LittleEndian.PutUint32(data[base+off:], value(e*comps+c))
		}
	}
}
