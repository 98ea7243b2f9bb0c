// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recorder provides an in-memory [device.Device] that records every
// call it receives.
//
// A Recorder keeps CPU copies of buffer and texture contents, tracks bound
// state and assigns handles from a single counter starting at 1. Tests use
// it to assert the exact sequence of uploads and draws the renderer issues;
// tools use it to trace a frame without a GPU.
package recorder

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/matrix"
)

// Recorder implements device.Device in memory.
//
// Recorder is safe for concurrent use; the renderer drives it from one
// goroutine while tests may inspect it from another.
type Recorder struct {
	mu     sync.Mutex
	caps   device.Capabilities
	logger *slog.Logger

	nextID uint32
	calls  []Call
	fail   map[Op]int

	buffers      map[device.Buffer]*buffer
	textures     map[device.Texture]*texture
	framebuffers map[device.Framebuffer]*framebuffer
	vertexArrays map[device.VertexArray]*vertexArray
	shaders      map[device.Shader]*shader
	programs     map[device.Program]*program

	state State
}

type buffer struct {
	desc device.BufferDescriptor
	data []byte
}

type texture struct {
	desc   device.TextureDescriptor
	levels [][]byte
	params map[device.TextureParameter]int32
}

type framebuffer struct {
	width, height int
	attachments   map[device.Attachment]device.Texture
}

type vertexArray struct {
	attribs map[int]device.VertexAttribute
	enabled map[int]bool
	buffers map[int]device.Buffer
	index   device.Buffer
}

type shader struct {
	stage  device.ShaderStage
	source string
}

type program struct {
	stages   []device.Shader
	attribs  map[string]int
	uniforms map[string]int
}

// State is a snapshot of the state bound on the recorder.
type State struct {
	Program      device.Program
	VertexArray  device.VertexArray
	VertexBuffer device.Buffer
	IndexBuffer  device.Buffer
	Framebuffer  device.Framebuffer
	Textures     map[int]device.Texture
	Storage      map[int]device.Buffer
	Viewport     device.Viewport
	Scissor      device.Viewport
	Blend        device.BlendState
	Features     map[device.Feature]bool
	CullFace     device.CullFace
	LineWidth    float32
	DrawBuffers  int
	Uniforms     map[int][]float32
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapabilities overrides the reported device capabilities.
func WithCapabilities(c device.Capabilities) Option {
	return func(r *Recorder) { r.caps = c }
}

// DefaultCapabilities is what a Recorder reports unless overridden: every
// optional feature except block-compressed formats.
func DefaultCapabilities() device.Capabilities {
	return device.Capabilities{
		ComputeShaders:      true,
		StorageBuffers:      true,
		InstancedDraw:       true,
		DepthTextures:       true,
		FloatTextures:       true,
		Anisotropy:          true,
		MaxAnisotropy:       16,
		MaxTextureSize:      16384,
		MaxTextureUnits:     16,
		MaxVertexAttributes: 16,
		MaxColorAttachments: 8,
	}
}

// New returns an empty Recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		caps:         DefaultCapabilities(),
		logger:       slog.New(nopHandler{}),
		nextID:       1,
		fail:         make(map[Op]int),
		buffers:      make(map[device.Buffer]*buffer),
		textures:     make(map[device.Texture]*texture),
		framebuffers: make(map[device.Framebuffer]*framebuffer),
		vertexArrays: make(map[device.VertexArray]*vertexArray),
		shaders:      make(map[device.Shader]*shader),
		programs:     make(map[device.Program]*program),
	}
	r.state = newState()
	for _, o := range opts {
		o(r)
	}
	return r
}

func newState() State {
	return State{
		Textures:  make(map[int]device.Texture),
		Storage:   make(map[int]device.Buffer),
		Features:  make(map[device.Feature]bool),
		Uniforms:  make(map[int][]float32),
		LineWidth: 1,
	}
}

// SetLogger sets the logger used for per-call debug output.
func (r *Recorder) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l == nil {
		l = slog.New(nopHandler{})
	}
	r.logger = l
}

// FailNext makes the next n calls of op fail. Creation calls then return
// the invalid handle and an error; other calls with an error result return
// the error.
func (r *Recorder) FailNext(op Op, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] += n
}

func (r *Recorder) shouldFail(op Op) bool {
	if r.fail[op] > 0 {
		r.fail[op]--
		return true
	}
	return false
}

func (r *Recorder) newID() uint32 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Recorder) record(c Call) {
	r.calls = append(r.calls, c)
	r.logger.Debug("recorder: call", "op", string(c.Op), "handle", c.Handle)
}

// Capabilities implements device.Device.
func (r *Recorder) Capabilities() device.Capabilities {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caps
}

// === Buffers ===

// CreateBuffer implements device.Device.
func (r *Recorder) CreateBuffer(desc device.BufferDescriptor, data []byte) (device.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shouldFail(OpCreateBuffer) || desc.Size < 0 {
		r.record(Call{Op: OpCreateBuffer, Size: desc.Size, Name: desc.Label})
		return 0, fmt.Errorf("recorder: create buffer %q: %w", desc.Label, device.ErrNotSupported)
	}
	size := desc.Size
	if size == 0 {
		size = len(data)
	}
	b := &buffer{desc: desc, data: make([]byte, size)}
	b.desc.Size = size
	copy(b.data, data)

	id := device.Buffer(r.newID())
	r.buffers[id] = b
	r.record(Call{Op: OpCreateBuffer, Handle: uint32(id), Size: size, Bytes: len(data), Name: desc.Label, Kind: desc.Kind.String()})
	return id, nil
}

// UpdateBuffer implements device.Device.
func (r *Recorder) UpdateBuffer(id device.Buffer, offset int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Call{Op: OpUpdateBuffer, Handle: uint32(id), Offset: offset, Bytes: len(data)})
	b, ok := r.buffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("recorder: update buffer %d [%d:%d] of %d: %w",
			id, offset, offset+len(data), len(b.data), device.ErrOutOfRange)
	}
	copy(b.data[offset:], data)
	return nil
}

// ReadBuffer implements device.Device.
func (r *Recorder) ReadBuffer(id device.Buffer, offset int, dst []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Call{Op: OpReadBuffer, Handle: uint32(id), Offset: offset, Bytes: len(dst)})
	b, ok := r.buffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if offset < 0 || offset+len(dst) > len(b.data) {
		return device.ErrOutOfRange
	}
	copy(dst, b.data[offset:])
	return nil
}

// CopyBuffer implements device.Device.
func (r *Recorder) CopyBuffer(dst, src device.Buffer, dstOffset, srcOffset, size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Call{Op: OpCopyBuffer, Handle: uint32(dst), Other: uint32(src), Offset: dstOffset, First: srcOffset, Size: size})
	d, ok1 := r.buffers[dst]
	s, ok2 := r.buffers[src]
	if !ok1 || !ok2 {
		return device.ErrInvalidHandle
	}
	if srcOffset < 0 || dstOffset < 0 || srcOffset+size > len(s.data) || dstOffset+size > len(d.data) {
		return device.ErrOutOfRange
	}
	copy(d.data[dstOffset:dstOffset+size], s.data[srcOffset:srcOffset+size])
	return nil
}

// BufferSize implements device.Device.
func (r *Recorder) BufferSize(id device.Buffer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buffers[id]; ok {
		return len(b.data)
	}
	return 0
}

// BindStorageBuffer implements device.Device.
func (r *Recorder) BindStorageBuffer(id device.Buffer, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindStorageBuffer, Handle: uint32(id), Unit: index})
	r.state.Storage[index] = id
}

// DestroyBuffer implements device.Device.
func (r *Recorder) DestroyBuffer(id device.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDestroyBuffer, Handle: uint32(id)})
	delete(r.buffers, id)
}

// === Vertex input ===

// CreateVertexArray implements device.Device.
func (r *Recorder) CreateVertexArray() (device.VertexArray, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shouldFail(OpCreateVertexArray) {
		r.record(Call{Op: OpCreateVertexArray})
		return 0, device.ErrNotSupported
	}
	id := device.VertexArray(r.newID())
	r.vertexArrays[id] = &vertexArray{
		attribs: make(map[int]device.VertexAttribute),
		enabled: make(map[int]bool),
		buffers: make(map[int]device.Buffer),
	}
	r.record(Call{Op: OpCreateVertexArray, Handle: uint32(id)})
	return id, nil
}

// BindVertexArray implements device.Device.
func (r *Recorder) BindVertexArray(id device.VertexArray) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindVertexArray, Handle: uint32(id)})
	if id != 0 {
		if _, ok := r.vertexArrays[id]; !ok {
			return false
		}
	}
	r.state.VertexArray = id
	return true
}

// DestroyVertexArray implements device.Device.
func (r *Recorder) DestroyVertexArray(id device.VertexArray) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDestroyVertexArray, Handle: uint32(id)})
	delete(r.vertexArrays, id)
	if r.state.VertexArray == id {
		r.state.VertexArray = 0
	}
}

// BindVertexBuffer implements device.Device.
func (r *Recorder) BindVertexBuffer(id device.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindVertexBuffer, Handle: uint32(id)})
	r.state.VertexBuffer = id
}

// BindIndexBuffer implements device.Device.
func (r *Recorder) BindIndexBuffer(id device.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindIndexBuffer, Handle: uint32(id)})
	r.state.IndexBuffer = id
	if va, ok := r.vertexArrays[r.state.VertexArray]; ok {
		va.index = id
	}
}

// SetVertexAttribute implements device.Device.
func (r *Recorder) SetVertexAttribute(index int, attr device.VertexAttribute) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetVertexAttribute, Handle: uint32(r.state.VertexBuffer), Unit: index,
		Count: attr.Components, Offset: attr.Offset, Size: attr.Stride, Flag: attr.Normalized})
	if va, ok := r.vertexArrays[r.state.VertexArray]; ok {
		va.attribs[index] = attr
		va.buffers[index] = r.state.VertexBuffer
	}
}

// EnableVertexAttribute implements device.Device.
func (r *Recorder) EnableVertexAttribute(index int, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpEnableVertexAttribute, Unit: index, Flag: enabled})
	if va, ok := r.vertexArrays[r.state.VertexArray]; ok {
		va.enabled[index] = enabled
	}
}

// SetVertexAttributeDivisor implements device.Device.
func (r *Recorder) SetVertexAttributeDivisor(index, divisor int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetVertexAttributeDivisor, Unit: index, Count: divisor})
}

// SetVertexAttributeDefault implements device.Device.
func (r *Recorder) SetVertexAttributeDefault(index int, value []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetVertexAttributeDefault, Unit: index, Values: append([]float32(nil), value...)})
}

// === Textures ===

// CreateTexture implements device.Device.
func (r *Recorder) CreateTexture(desc device.TextureDescriptor, levels [][]byte) (device.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := Call{Op: OpCreateTexture, Name: desc.Label, Rect: device.Viewport{Width: desc.Width, Height: desc.Height},
		Count: desc.MipLevels, Format: desc.Format.String()}
	if r.shouldFail(OpCreateTexture) {
		r.record(call)
		return 0, device.ErrNotSupported
	}
	if desc.Kind != device.TextureDepth && desc.Kind != device.TextureRenderbuffer && !r.caps.SupportsFormat(desc.Format) {
		r.record(call)
		return 0, fmt.Errorf("recorder: %s: %w", desc.Format, device.ErrUnsupportedFormat)
	}
	t := &texture{desc: desc, params: make(map[device.TextureParameter]int32)}
	for _, l := range levels {
		t.levels = append(t.levels, append([]byte(nil), l...))
	}
	id := device.Texture(r.newID())
	r.textures[id] = t
	call.Handle = uint32(id)
	r.record(call)
	return id, nil
}

// UpdateTexture implements device.Device.
func (r *Recorder) UpdateTexture(id device.Texture, region device.TextureRegion, format device.PixelFormat, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Call{Op: OpUpdateTexture, Handle: uint32(id), Unit: region.Level, Bytes: len(data),
		Rect: device.Viewport{X: region.X, Y: region.Y, Width: region.Width, Height: region.Height}})
	t, ok := r.textures[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if format != t.desc.Format {
		return fmt.Errorf("recorder: update %s texture with %s data: %w", t.desc.Format, format, device.ErrUnsupportedFormat)
	}
	w, h := max(t.desc.Width>>region.Level, 1), max(t.desc.Height>>region.Level, 1)
	if region.X < 0 || region.Y < 0 || region.X+region.Width > w || region.Y+region.Height > h {
		return device.ErrOutOfRange
	}
	for len(t.levels) <= region.Level {
		t.levels = append(t.levels, nil)
	}
	lvl := t.levels[region.Level]
	if need := device.PixelDataSize(w, h, format); len(lvl) < need {
		lvl = append(lvl, make([]byte, need-len(lvl))...)
	}
	bpp := format.BitsPerPixel() / 8
	if !format.Compressed() && len(data) < region.Width*region.Height*bpp {
		return device.ErrOutOfRange
	}
	if bpp == 0 || format.Compressed() {
		copy(lvl, data)
	} else {
		for row := 0; row < region.Height; row++ {
			src := data[row*region.Width*bpp : (row+1)*region.Width*bpp]
			copy(lvl[((region.Y+row)*w+region.X)*bpp:], src)
		}
	}
	t.levels[region.Level] = lvl
	return nil
}

// ReadTexture implements device.Device.
func (r *Recorder) ReadTexture(id device.Texture, level int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpReadTexture, Handle: uint32(id), Unit: level})
	t, ok := r.textures[id]
	if !ok {
		return nil, device.ErrInvalidHandle
	}
	if level < 0 || level >= len(t.levels) {
		return nil, device.ErrOutOfRange
	}
	return append([]byte(nil), t.levels[level]...), nil
}

// SetTextureParameter implements device.Device.
func (r *Recorder) SetTextureParameter(id device.Texture, param device.TextureParameter, value int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetTextureParameter, Handle: uint32(id), Unit: int(param), Ints: []int32{value}})
	t, ok := r.textures[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	t.params[param] = value
	return nil
}

// DestroyTexture implements device.Device.
func (r *Recorder) DestroyTexture(id device.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDestroyTexture, Handle: uint32(id)})
	delete(r.textures, id)
}

// BindTexture implements device.Device.
func (r *Recorder) BindTexture(unit int, id device.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindTexture, Handle: uint32(id), Unit: unit})
	r.state.Textures[unit] = id
}

// BindImageTexture implements device.Device.
func (r *Recorder) BindImageTexture(unit int, id device.Texture, format device.PixelFormat, readOnly bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindImageTexture, Handle: uint32(id), Unit: unit, Format: format.String(), Flag: readOnly})
}

// === Framebuffers ===

// CreateFramebuffer implements device.Device.
func (r *Recorder) CreateFramebuffer(width, height int) (device.Framebuffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shouldFail(OpCreateFramebuffer) {
		r.record(Call{Op: OpCreateFramebuffer})
		return 0, device.ErrNotSupported
	}
	id := device.Framebuffer(r.newID())
	r.framebuffers[id] = &framebuffer{width: width, height: height, attachments: make(map[device.Attachment]device.Texture)}
	r.record(Call{Op: OpCreateFramebuffer, Handle: uint32(id), Rect: device.Viewport{Width: width, Height: height}})
	return id, nil
}

// AttachFramebuffer implements device.Device.
func (r *Recorder) AttachFramebuffer(id device.Framebuffer, t device.Texture, attach device.Attachment, texType device.AttachTextureType, mipLevel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpAttachFramebuffer, Handle: uint32(id), Other: uint32(t), Unit: int(attach), Count: int(texType), First: mipLevel})
	fb, ok := r.framebuffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if _, ok := r.textures[t]; !ok {
		return device.ErrInvalidHandle
	}
	fb.attachments[attach] = t
	return nil
}

// FramebufferStatus implements device.Device. A framebuffer is complete
// once it has at least one attachment.
func (r *Recorder) FramebufferStatus(id device.Framebuffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpFramebufferStatus, Handle: uint32(id)})
	fb, ok := r.framebuffers[id]
	if !ok {
		return device.ErrInvalidHandle
	}
	if len(fb.attachments) == 0 {
		return fmt.Errorf("recorder: framebuffer %d has no attachments: %w", id, device.ErrIncompleteFramebuffer)
	}
	return nil
}

// BindFramebuffer implements device.Device.
func (r *Recorder) BindFramebuffer(id device.Framebuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindFramebuffer, Handle: uint32(id)})
	r.state.Framebuffer = id
}

// SetDrawBuffers implements device.Device.
func (r *Recorder) SetDrawBuffers(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetDrawBuffers, Count: count})
	r.state.DrawBuffers = count
}

// DestroyFramebuffer implements device.Device.
func (r *Recorder) DestroyFramebuffer(id device.Framebuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDestroyFramebuffer, Handle: uint32(id)})
	delete(r.framebuffers, id)
	if r.state.Framebuffer == id {
		r.state.Framebuffer = 0
	}
}

// === Shaders ===

// compileErrorPattern marks sources the recorder refuses to compile.
var compileErrorPattern = regexp.MustCompile(`(?m)^\s*#error\b`)

// CompileShader implements device.Device. Empty sources and sources with an
// #error directive fail to compile.
func (r *Recorder) CompileShader(stage device.ShaderStage, source string) (device.Shader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := Call{Op: OpCompileShader, Name: stage.String(), Bytes: len(source)}
	if r.shouldFail(OpCompileShader) || source == "" || compileErrorPattern.MatchString(source) {
		r.record(call)
		return 0, fmt.Errorf("recorder: %s shader: %w", stage, device.ErrCompile)
	}
	if stage == device.StageCompute && !r.caps.ComputeShaders {
		r.record(call)
		return 0, fmt.Errorf("recorder: compute shader: %w", device.ErrNotSupported)
	}
	id := device.Shader(r.newID())
	r.shaders[id] = &shader{stage: stage, source: source}
	call.Handle = uint32(id)
	r.record(call)
	return id, nil
}

// LinkProgram implements device.Device.
func (r *Recorder) LinkProgram(stages ...device.Shader) (device.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := Call{Op: OpLinkProgram, Count: len(stages)}
	if r.shouldFail(OpLinkProgram) || len(stages) == 0 {
		r.record(call)
		return 0, device.ErrLink
	}
	p := &program{
		stages:   append([]device.Shader(nil), stages...),
		attribs:  make(map[string]int),
		uniforms: make(map[string]int),
	}
	for _, s := range stages {
		sh, ok := r.shaders[s]
		if !ok {
			r.record(call)
			return 0, fmt.Errorf("recorder: link unknown shader %d: %w", s, device.ErrLink)
		}
		reflect(p, sh)
	}
	id := device.Program(r.newID())
	r.programs[id] = p
	call.Handle = uint32(id)
	r.record(call)
	return id, nil
}

// DestroyShader implements device.Device.
func (r *Recorder) DestroyShader(id device.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDestroyShader, Handle: uint32(id)})
	delete(r.shaders, id)
}

// DestroyProgram implements device.Device.
func (r *Recorder) DestroyProgram(id device.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDestroyProgram, Handle: uint32(id)})
	delete(r.programs, id)
	if r.state.Program == id {
		r.state.Program = 0
	}
}

// UseProgram implements device.Device.
func (r *Recorder) UseProgram(id device.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpUseProgram, Handle: uint32(id)})
	r.state.Program = id
}

// AttributeLocation implements device.Device.
func (r *Recorder) AttributeLocation(id device.Program, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.programs[id]; ok {
		if loc, ok := p.attribs[name]; ok {
			return loc
		}
	}
	return -1
}

// UniformLocation implements device.Device.
func (r *Recorder) UniformLocation(id device.Program, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.programs[id]; ok {
		if loc, ok := p.uniforms[name]; ok {
			return loc
		}
	}
	return -1
}

// SetUniformFloats implements device.Device.
func (r *Recorder) SetUniformFloats(loc int, typ device.UniformType, values []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := append([]float32(nil), values...)
	r.record(Call{Op: OpSetUniform, Unit: loc, Count: typ.Components(), Values: v})
	r.state.Uniforms[loc] = v
}

// SetUniformInts implements device.Device.
func (r *Recorder) SetUniformInts(loc int, typ device.UniformType, values []int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetUniform, Unit: loc, Count: typ.Components(), Ints: append([]int32(nil), values...)})
	f := make([]float32, len(values))
	for i, x := range values {
		f[i] = float32(x)
	}
	r.state.Uniforms[loc] = f
}

// SetUniformMatrix implements device.Device.
func (r *Recorder) SetUniformMatrix(loc int, m matrix.Matrix) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := m.Floats()
	r.record(Call{Op: OpSetUniformMatrix, Unit: loc, Values: f[:]})
	r.state.Uniforms[loc] = append([]float32(nil), f[:]...)
}

// === Fixed-function state ===

// SetViewport implements device.Device.
func (r *Recorder) SetViewport(v device.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetViewport, Rect: v})
	r.state.Viewport = v
}

// SetScissor implements device.Device.
func (r *Recorder) SetScissor(v device.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetScissor, Rect: v})
	r.state.Scissor = v
}

// SetFeature implements device.Device.
func (r *Recorder) SetFeature(f device.Feature, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetFeature, Unit: int(f), Flag: enabled})
	r.state.Features[f] = enabled
}

// SetCullFace implements device.Device.
func (r *Recorder) SetCullFace(face device.CullFace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetCullFace, Unit: int(face)})
	r.state.CullFace = face
}

// SetLineWidth implements device.Device.
func (r *Recorder) SetLineWidth(width float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetLineWidth, Values: []float32{width}})
	r.state.LineWidth = width
}

// SetBlend implements device.Device.
func (r *Recorder) SetBlend(b device.BlendState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetBlend, Blend: b})
	r.state.Blend = b
}

// Clear implements device.Device.
func (r *Recorder) Clear(color [4]float32, flags device.ClearFlags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpClear, Values: color[:], Unit: int(flags)})
}

// === Draw issuance ===

// Draw implements device.Device.
func (r *Recorder) Draw(mode device.Primitive, first, count, instances int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDraw, Mode: mode.String(), First: first, Count: count, Instances: instances,
		Handle: uint32(r.state.Textures[0]), Program: uint32(r.state.Program)})
}

// DrawIndexed implements device.Device.
func (r *Recorder) DrawIndexed(mode device.Primitive, count int, format device.IndexFormat, byteOffset, instances int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDrawIndexed, Mode: mode.String(), Count: count, Offset: byteOffset, Size: format.Size(),
		Instances: instances, Handle: uint32(r.state.Textures[0]), Program: uint32(r.state.Program)})
}

// Dispatch implements device.Device.
func (r *Recorder) Dispatch(x, y, z uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDispatch, Ints: []int32{int32(x), int32(y), int32(z)}, Program: uint32(r.state.Program)})
	if !r.caps.ComputeShaders {
		return device.ErrNotSupported
	}
	return nil
}

// Submit implements device.Device.
func (r *Recorder) Submit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSubmit})
	if r.shouldFail(OpSubmit) {
		return device.ErrNotSupported
	}
	return nil
}

// Close implements device.Device. It drops every object still alive.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpClose})
	clear(r.buffers)
	clear(r.textures)
	clear(r.framebuffers)
	clear(r.vertexArrays)
	clear(r.shaders)
	clear(r.programs)
	r.state = newState()
	return nil
}

var _ device.Device = (*Recorder)(nil)
