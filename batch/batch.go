// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package batch accumulates immediate-mode vertices into fixed-size buffers
// and issues them to a [device.Device] as few draw calls as the mode and
// texture changes allow.
//
// A Batch owns one or more [VertexBuffer] slots used round-robin and a
// [DrawTable]. Vertices are grouped into draw calls by primitive mode and
// texture; a draw call is split when either changes, and the whole batch is
// flushed when a buffer or the table fills up. Primitive groups are never
// split across a flush.
//
// A Batch is not safe for concurrent use, and a [Host] must not call back
// into the batch while it is flushing.
package batch

import (
	"errors"
	"fmt"

	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/matrix"
)

// ErrInvalidConfig is returned by New for non-positive sizes.
var ErrInvalidConfig = errors.New("batch: invalid config")

// FlushState is the renderer state a flush reads.
type FlushState struct {
	Program   device.Program
	Locations device.Locations

	Modelview  matrix.Matrix
	Projection matrix.Matrix

	Stereo           bool
	ProjectionStereo [2]matrix.Matrix
	ViewOffsetStereo [2]matrix.Matrix

	FramebufferWidth  int
	FramebufferHeight int

	// ActiveTextures are bound to units 1.. for every draw of the flush.
	ActiveTextures []device.Texture
}

// Host supplies renderer state at flush time.
type Host interface {
	FlushState() FlushState

	// Flushed is called once a flush has reset the batch.
	Flushed()
}

// Config sizes a Batch.
type Config struct {
	Buffers        int
	Capacity       int // quads per buffer
	DrawCalls      int
	DefaultTexture device.Texture
	Locations      device.Locations // attribute slots bound in the vertex arrays
	InitialDepth   float32
	DepthStep      float32
}

// DefaultConfig returns the default sizes.
func DefaultConfig() Config {
	return Config{
		Buffers:      1,
		Capacity:     8192,
		DrawCalls:    256,
		Locations:    device.DefaultLocations(),
		InitialDepth: -1.0,
		DepthStep:    1.0 / 20000.0,
	}
}

// Batch is a render batch.
type Batch struct {
	dev  device.Device
	host Host

	buffers []*VertexBuffer
	current int
	draws   DrawTable

	vertexCounter  int
	depth          float32
	initialDepth   float32
	depthStep      float32
	defaultTexture device.Texture

	flushes int
}

// New creates a batch and its device buffers. A nil host flushes with
// identity matrices and program 0.
func New(dev device.Device, host Host, cfg Config) (*Batch, error) {
	if cfg.Buffers <= 0 || cfg.Capacity <= 0 || cfg.DrawCalls <= 0 {
		return nil, fmt.Errorf("%w: buffers=%d capacity=%d draw calls=%d",
			ErrInvalidConfig, cfg.Buffers, cfg.Capacity, cfg.DrawCalls)
	}
	if host == nil {
		host = identityHost{}
	}
	b := &Batch{
		dev:            dev,
		host:           host,
		buffers:        make([]*VertexBuffer, 0, cfg.Buffers),
		draws:          newDrawTable(cfg.DrawCalls, cfg.DefaultTexture),
		depth:          cfg.InitialDepth,
		initialDepth:   cfg.InitialDepth,
		depthStep:      cfg.DepthStep,
		defaultTexture: cfg.DefaultTexture,
	}
	for range cfg.Buffers {
		vb, err := newVertexBuffer(dev, cfg.Capacity, cfg.Locations)
		if err != nil {
			b.Unload()
			return nil, err
		}
		b.buffers = append(b.buffers, vb)
	}
	slogger().Info("batch: loaded",
		"buffers", cfg.Buffers, "capacity", cfg.Capacity, "drawCalls", cfg.DrawCalls)
	return b, nil
}

// Unload destroys the device buffers of every slot.
func (b *Batch) Unload() {
	b.dev.BindVertexArray(0)
	for _, vb := range b.buffers {
		vb.release(b.dev)
	}
	b.buffers = nil
	slogger().Info("batch: unloaded")
}

// VertexCounter returns the number of vertices written into the current
// buffer since the last flush, padding included.
func (b *Batch) VertexCounter() int { return b.vertexCounter }

// Depth returns the depth assigned to 2D vertices.
func (b *Batch) Depth() float32 { return b.depth }

// CurrentBuffer returns the index of the slot being filled.
func (b *Batch) CurrentBuffer() int { return b.current }

// BufferCount returns the number of slots.
func (b *Batch) BufferCount() int { return len(b.buffers) }

// Buffer returns slot i.
func (b *Batch) Buffer(i int) *VertexBuffer { return b.buffers[i] }

// Capacity returns the vertex capacity of the current buffer.
func (b *Batch) Capacity() int { return b.buffers[b.current].Capacity * 4 }

// DrawCalls returns a copy of the draw calls in use.
func (b *Batch) DrawCalls() []DrawCall { return b.draws.Entries() }

// Current returns the in-progress draw call.
func (b *Batch) Current() DrawCall { return *b.draws.Current() }

// Flushes returns the number of flushes performed so far.
func (b *Batch) Flushes() int { return b.flushes }

// SetHost replaces the state source used at flush time.
func (b *Batch) SetHost(h Host) {
	if h == nil {
		h = identityHost{}
	}
	b.host = h
}

// Begin starts a primitive group in mode. A different mode on a draw call
// that already holds vertices opens a new draw call.
func (b *Batch) Begin(mode Mode) {
	if b.draws.Current().Mode != mode {
		b.split(mode, b.defaultTexture)
	}
}

// End closes a primitive group and advances the depth.
func (b *Batch) End() {
	b.depth += b.depthStep
}

// SetTexture makes tex the texture of the following vertices. The zero
// texture only flushes a full buffer.
func (b *Batch) SetTexture(tex device.Texture) {
	if !tex.Valid() {
		if b.vertexCounter >= b.Capacity() {
			b.flush()
		}
		return
	}
	cur := b.draws.Current()
	if cur.Texture != tex {
		b.split(cur.Mode, tex)
	}
}

// split pads the in-progress draw call to a quad boundary and opens the
// next one with mode and tex.
func (b *Batch) split(mode Mode, tex device.Texture) {
	cur := b.draws.Current()
	if cur.VertexCount > 0 {
		cur.VertexAlignment = alignment(cur.Mode, cur.VertexCount)
		if !b.CheckLimit(cur.VertexAlignment) {
			b.vertexCounter += cur.VertexAlignment
			b.draws.open()
		}
	}
	if b.draws.full() {
		b.flush()
	}
	cur = b.draws.Current()
	cur.Mode = mode
	cur.VertexCount = 0
	cur.Texture = tex
}

// CheckLimit flushes if n more vertices would not fit in the current buffer
// and reports whether it did. The in-progress mode and texture survive the
// flush.
func (b *Batch) CheckLimit(n int) bool {
	if b.vertexCounter+n < b.Capacity() {
		return false
	}
	b.flushKeep()
	return true
}

func (b *Batch) flushKeep() {
	cur := b.draws.Current()
	mode, tex := cur.Mode, cur.Texture
	b.flush()
	cur = b.draws.Current()
	cur.Mode = mode
	cur.Texture = tex
}

// Vertex appends one vertex. pos is already transformed.
func (b *Batch) Vertex(pos [3]float32, uv [2]float32, color [4]uint8) {
	limit := b.Capacity()
	cur := b.draws.Current()
	if b.vertexCounter > limit-4 && cur.VertexCount%cur.Mode.GroupSize() == 0 {
		b.CheckLimit(cur.Mode.GroupSize() + 1)
	}
	if b.vertexCounter >= limit {
		b.flushKeep()
	}
	cur = b.draws.Current()

	vb := b.buffers[b.current]
	i := b.vertexCounter
	copy(vb.Positions[i*positionComponents:], pos[:])
	copy(vb.TexCoords[i*texcoordComponents:], uv[:])
	copy(vb.Colors[i*colorComponents:], color[:])

	b.vertexCounter++
	cur.VertexCount++
}

// Draw flushes the batch: uploads the written vertices, issues one device
// draw per draw call and resets the batch onto the next buffer slot.
func (b *Batch) Draw() error {
	return b.flush()
}

func (b *Batch) flush() error {
	st := b.host.FlushState()
	vb := b.buffers[b.current]
	pending := b.vertexCounter > 0

	var errs []error
	if pending {
		if err := vb.upload(b.dev, b.vertexCounter); err != nil {
			errs = append(errs, err)
		}
	}

	eyes := 1
	if st.Stereo {
		eyes = 2
	}
	for eye := range eyes {
		modelview, projection := st.Modelview, st.Projection
		if eyes == 2 {
			b.dev.SetViewport(device.Viewport{
				X:      eye * st.FramebufferWidth / 2,
				Width:  st.FramebufferWidth / 2,
				Height: st.FramebufferHeight,
			})
			modelview = matrix.Multiply(st.Modelview, st.ViewOffsetStereo[eye])
			projection = st.ProjectionStereo[eye]
		}
		if pending {
			b.issue(vb, &st, matrix.Multiply(modelview, projection))
		}
	}
	if eyes == 2 {
		b.dev.SetViewport(device.Viewport{Width: st.FramebufferWidth, Height: st.FramebufferHeight})
	}

	slogger().Debug("batch: flush",
		"buffer", b.current, "vertices", b.vertexCounter, "drawCalls", b.draws.Len(), "eyes", eyes)

	b.vertexCounter = 0
	b.depth = b.initialDepth
	b.draws.reset(b.defaultTexture)
	b.current = (b.current + 1) % len(b.buffers)
	b.flushes++
	b.host.Flushed()

	if err := b.dev.Submit(); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	if err != nil {
		slogger().Error("batch: flush failed", "err", err)
	}
	return err
}

// issue binds the program and draws every draw call of the table.
func (b *Batch) issue(vb *VertexBuffer, st *FlushState, mvp matrix.Matrix) {
	dev := b.dev
	dev.UseProgram(st.Program)
	dev.SetUniformMatrix(st.Locations.Get(device.LocMatrixMVP), mvp)
	dev.BindVertexArray(vb.vao)
	dev.SetUniformFloats(st.Locations.Get(device.LocColorDiffuse), device.UniformVec4, []float32{1, 1, 1, 1})
	dev.SetUniformInts(st.Locations.Get(device.LocMapDiffuse), device.UniformSampler2D, []int32{0})
	for i, t := range st.ActiveTextures {
		if t.Valid() {
			dev.BindTexture(1+i, t)
		}
	}

	offset := 0
	for _, dc := range b.draws.entries[:b.draws.count] {
		if dc.VertexCount > 0 {
			dev.BindTexture(0, dc.Texture)
			switch dc.Mode {
			case Lines:
				dev.Draw(device.PrimitiveLines, offset, dc.VertexCount, 1)
			case Triangles:
				dev.Draw(device.PrimitiveTriangles, offset, dc.VertexCount, 1)
			default:
				dev.DrawIndexed(device.PrimitiveTriangles, dc.VertexCount/4*indicesPerQuad,
					device.IndexUint32, offset/4*indicesPerQuad*indexSize, 1)
			}
		}
		offset += dc.VertexCount + dc.VertexAlignment
	}

	dev.BindTexture(0, 0)
	dev.BindVertexArray(0)
	dev.UseProgram(0)
}

type identityHost struct{}

func (identityHost) FlushState() FlushState {
	return FlushState{
		Locations:  device.DefaultLocations(),
		Modelview:  matrix.Identity(),
		Projection: matrix.Identity(),
	}
}

func (identityHost) Flushed() {}
