// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/gogpu/immgl/device"
)

// Op names a recorded device call.
type Op string

const (
	OpCreateBuffer              Op = "CreateBuffer"
	OpUpdateBuffer              Op = "UpdateBuffer"
	OpReadBuffer                Op = "ReadBuffer"
	OpCopyBuffer                Op = "CopyBuffer"
	OpBindStorageBuffer         Op = "BindStorageBuffer"
	OpDestroyBuffer             Op = "DestroyBuffer"
	OpCreateVertexArray         Op = "CreateVertexArray"
	OpBindVertexArray           Op = "BindVertexArray"
	OpDestroyVertexArray        Op = "DestroyVertexArray"
	OpBindVertexBuffer          Op = "BindVertexBuffer"
	OpBindIndexBuffer           Op = "BindIndexBuffer"
	OpSetVertexAttribute        Op = "SetVertexAttribute"
	OpEnableVertexAttribute     Op = "EnableVertexAttribute"
	OpSetVertexAttributeDivisor Op = "SetVertexAttributeDivisor"
	OpSetVertexAttributeDefault Op = "SetVertexAttributeDefault"
	OpCreateTexture             Op = "CreateTexture"
	OpUpdateTexture             Op = "UpdateTexture"
	OpReadTexture               Op = "ReadTexture"
	OpSetTextureParameter       Op = "SetTextureParameter"
	OpDestroyTexture            Op = "DestroyTexture"
	OpBindTexture               Op = "BindTexture"
	OpBindImageTexture          Op = "BindImageTexture"
	OpCreateFramebuffer         Op = "CreateFramebuffer"
	OpAttachFramebuffer         Op = "AttachFramebuffer"
	OpFramebufferStatus         Op = "FramebufferStatus"
	OpBindFramebuffer           Op = "BindFramebuffer"
	OpSetDrawBuffers            Op = "SetDrawBuffers"
	OpDestroyFramebuffer        Op = "DestroyFramebuffer"
	OpCompileShader             Op = "CompileShader"
	OpLinkProgram               Op = "LinkProgram"
	OpDestroyShader             Op = "DestroyShader"
	OpDestroyProgram            Op = "DestroyProgram"
	OpUseProgram                Op = "UseProgram"
	OpSetUniform                Op = "SetUniform"
	OpSetUniformMatrix          Op = "SetUniformMatrix"
	OpSetViewport               Op = "SetViewport"
	OpSetScissor                Op = "SetScissor"
	OpSetFeature                Op = "SetFeature"
	OpSetCullFace               Op = "SetCullFace"
	OpSetLineWidth              Op = "SetLineWidth"
	OpSetBlend                  Op = "SetBlend"
	OpClear                     Op = "Clear"
	OpDraw                      Op = "Draw"
	OpDrawIndexed               Op = "DrawIndexed"
	OpDispatch                  Op = "Dispatch"
	OpSubmit                    Op = "Submit"
	OpClose                     Op = "Close"
)

// Call is one recorded device call. Only the fields meaningful for Op are
// set; the rest keep their zero value.
//
// For draws, Handle is the texture bound to unit 0 and Program the bound
// program at the time of the call.
type Call struct {
	Op        Op                `yaml:"op"`
	Handle    uint32            `yaml:"handle,omitempty"`
	Other     uint32            `yaml:"other,omitempty"`
	Program   uint32            `yaml:"program,omitempty"`
	Name      string            `yaml:"name,omitempty"`
	Kind      string            `yaml:"kind,omitempty"`
	Mode      string            `yaml:"mode,omitempty"`
	Format    string            `yaml:"format,omitempty"`
	First     int               `yaml:"first,omitempty"`
	Count     int               `yaml:"count,omitempty"`
	Instances int               `yaml:"instances,omitempty"`
	Offset    int               `yaml:"offset,omitempty"`
	Size      int               `yaml:"size,omitempty"`
	Bytes     int               `yaml:"bytes,omitempty"`
	Unit      int               `yaml:"unit,omitempty"`
	Flag      bool              `yaml:"flag,omitempty"`
	Values    []float32         `yaml:"values,omitempty,flow"`
	Ints      []int32           `yaml:"ints,omitempty,flow"`
	Rect      device.Viewport   `yaml:"rect,omitempty"`
	Blend     device.BlendState `yaml:"blend,omitempty"`
}

// Calls returns a copy of every call recorded since the last Reset.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf returns the recorded calls with the given op, in order.
func (r *Recorder) CallsOf(op Op) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many calls with the given op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Draws returns the Draw and DrawIndexed calls in issue order.
func (r *Recorder) Draws() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == OpDraw || c.Op == OpDrawIndexed {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls. Live objects and bound state are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// State returns a copy of the currently bound state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	s.Textures = cloneMap(r.state.Textures)
	s.Storage = cloneMap(r.state.Storage)
	s.Features = cloneMap(r.state.Features)
	s.Uniforms = cloneMap(r.state.Uniforms)
	return s
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// BufferData returns a copy of a buffer's contents, or nil if b is unknown.
func (r *Recorder) BufferData(b device.Buffer) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buf, ok := r.buffers[b]; ok {
		return append([]byte(nil), buf.data...)
	}
	return nil
}

// TextureInfo returns the descriptor a texture was created with.
func (r *Recorder) TextureInfo(t device.Texture) (device.TextureDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tex, ok := r.textures[t]; ok {
		return tex.desc, true
	}
	return device.TextureDescriptor{}, false
}

// TextureParameter returns a parameter previously set on t.
func (r *Recorder) TextureParameter(t device.Texture, p device.TextureParameter) (int32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tex, ok := r.textures[t]; ok {
		v, ok := tex.params[p]
		return v, ok
	}
	return 0, false
}

// Attachment returns the texture attached to fb at point a.
func (r *Recorder) Attachment(fb device.Framebuffer, a device.Attachment) device.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.framebuffers[fb]; ok {
		return f.attachments[a]
	}
	return 0
}

// Live returns the number of device objects that have not been destroyed.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers) + len(r.textures) + len(r.framebuffers) +
		len(r.vertexArrays) + len(r.shaders) + len(r.programs)
}

// Source reflection: the recorder understands GLSL-style declarations.
var (
	attribPattern  = regexp.MustCompile(`(?m)^\s*(?:in|attribute)\s+\w+\s+(\w+)\s*;`)
	uniformPattern = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*(?:\[\s*\d+\s*\])?\s*;`)
)

func reflect(p *program, sh *shader) {
	if sh.stage == device.StageVertex {
		next := device.SlotTexCoord2 + 1
		for _, m := range attribPattern.FindAllStringSubmatch(sh.source, -1) {
			name := m[1]
			if _, ok := p.attribs[name]; ok {
				continue
			}
			slot := -1
			for _, b := range device.DefaultAttribBindings {
				if b.Name == name {
					slot = b.Slot
				}
			}
			if slot < 0 {
				slot = next
				next++
			}
			p.attribs[name] = slot
		}
	}
	for _, m := range uniformPattern.FindAllStringSubmatch(sh.source, -1) {
		if _, ok := p.uniforms[m[1]]; !ok {
			p.uniforms[m[1]] = len(p.uniforms)
		}
	}
}

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
