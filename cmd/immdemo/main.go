// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command immdemo drives the immgl render batch through a scripted scene on
// the recording device and reports what reached the device.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/immgl"
	"github.com/gogpu/immgl/batch"
	"github.com/gogpu/immgl/device"
	"github.com/gogpu/immgl/device/recorder"
	"github.com/gogpu/immgl/matrix"
)

const (
	width  = 800
	height = 450
)

// frameTrace is the YAML document written by -trace.
type frameTrace struct {
	Frame int             `yaml:"frame"`
	Draws int             `yaml:"draws"`
	Calls []recorder.Call `yaml:"calls"`
}

func main() {
	var (
		frames   = flag.Int("frames", 3, "number of frames to draw")
		capacity = flag.Int("capacity", 0, "quads per batch buffer (0 keeps the configured value)")
		buffers  = flag.Int("buffers", 0, "batch buffers (0 keeps the configured value)")
		config   = flag.String("config", "", "YAML or TOML configuration file")
		trace    = flag.String("trace", "", "write the recorded device calls as YAML to this file")
		verbose  = flag.Bool("v", false, "log batch activity to stderr")
	)
	flag.Parse()

	if *verbose {
		immgl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := immgl.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = immgl.LoadConfig(*config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	opts := []immgl.Option{immgl.WithConfig(cfg)}
	if *capacity > 0 {
		opts = append(opts, immgl.WithBatchCapacity(*capacity))
	}
	if *buffers > 0 {
		opts = append(opts, immgl.WithBatchBuffers(*buffers))
	}

	rec := recorder.New()
	rc, err := immgl.New(rec, width, height, opts...)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer rc.Close()

	sprite := rc.LoadTexture(checkerboard(32, 8), 32, 32, device.PixelFormatR8G8B8A8, 1)
	if sprite == 0 {
		log.Fatal("Failed to load sprite texture")
	}
	defer rc.UnloadTexture(sprite)

	var traces []frameTrace
	for f := 0; f < *frames; f++ {
		rec.Reset()
		drawFrame(rc, sprite, f)
		if err := rc.DrawRenderBatchActive(); err != nil {
			log.Fatalf("Frame %d: %v", f, err)
		}

		draws := len(rec.Draws())
		fmt.Printf("frame %d: %d draws, %d submits, %d calls\n",
			f, draws, rec.Count(recorder.OpSubmit), len(rec.Calls()))
		if *trace != "" {
			traces = append(traces, frameTrace{Frame: f, Draws: draws, Calls: rec.Calls()})
		}
	}

	if *trace != "" {
		if err := writeTrace(*trace, traces); err != nil {
			log.Fatalf("Failed to write trace: %v", err)
		}
		log.Printf("Trace saved to %s (%d frames)\n", *trace, len(traces))
	}
}

func writeTrace(path string, traces []frameTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(traces); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawFrame(rc *immgl.Context, sprite device.Texture, frame int) {
	rc.ClearColor(24, 24, 32, 255)
	rc.ClearScreenBuffers()

	rc.Viewport(0, 0, width, height)
	rc.MatrixMode(immgl.Projection)
	rc.LoadIdentity()
	rc.Ortho(0, width, height, 0, 0, 1)
	rc.MatrixMode(immgl.Modelview)
	rc.LoadIdentity()

	drawBackground(rc)
	drawSprites(rc, sprite, frame)
	drawSpinner(rc, frame)
	drawGrid(rc)

	if frame%2 == 1 {
		drawStereoCube(rc, frame)
	}
}

// drawBackground fills the screen with horizontal bands, one quad each.
func drawBackground(rc *immgl.Context) {
	const steps = 16
	rc.Begin(batch.Quads)
	for i := 0; i < steps; i++ {
		t := float32(i) / steps
		y0 := float32(height) * t
		y1 := y0 + float32(height)/steps
		rc.Color4f(0.1+t*0.4, 0.2+t*0.3, 0.4+t*0.2, 1)
		rc.Vertex2f(0, y0)
		rc.Vertex2f(0, y1)
		rc.Vertex2f(width, y1)
		rc.Vertex2f(width, y0)
	}
	rc.End()
}

// drawSprites draws textured quads, forcing a texture switch per row.
func drawSprites(rc *immgl.Context, sprite device.Texture, frame int) {
	for row := 0; row < 2; row++ {
		rc.SetTexture(sprite)
		rc.Begin(batch.Quads)
		rc.Color4ub(255, 255, 255, 255)
		for i := 0; i < 6; i++ {
			x := float32(40 + i*70 + (frame*5)%30)
			y := float32(40 + row*80)
			rc.TexCoord2f(0, 0)
			rc.Vertex2f(x, y)
			rc.TexCoord2f(0, 1)
			rc.Vertex2f(x, y+64)
			rc.TexCoord2f(1, 1)
			rc.Vertex2f(x+64, y+64)
			rc.TexCoord2f(1, 0)
			rc.Vertex2f(x+64, y)
		}
		rc.End()
		rc.SetTexture(0)
	}
}

// drawSpinner rotates triangles around a pivot using the matrix stack.
func drawSpinner(rc *immgl.Context, frame int) {
	rc.PushMatrix()
	rc.Translate(600, 160, 0)
	for i := 0; i < 8; i++ {
		rc.PushMatrix()
		rc.Rotate(float32(i*45+frame*10), 0, 0, 1)
		rc.Begin(batch.Triangles)
		hue := float64(i) / 8
		rc.Color4f(float32(0.5+0.5*math.Cos(2*math.Pi*hue)), float32(0.5+0.5*math.Sin(2*math.Pi*hue)), 0.8, 1)
		rc.Vertex2f(0, 0)
		rc.Vertex2f(60, -12)
		rc.Vertex2f(60, 12)
		rc.End()
		rc.PopMatrix()
	}
	rc.PopMatrix()
}

// drawGrid draws a line grid across the lower half.
func drawGrid(rc *immgl.Context) {
	rc.Begin(batch.Lines)
	rc.Color4ub(200, 200, 200, 160)
	for x := 0; x <= width; x += 50 {
		rc.Vertex2i(x, height/2)
		rc.Vertex2i(x, height)
	}
	for y := height / 2; y <= height; y += 50 {
		rc.Vertex2i(0, y)
		rc.Vertex2i(width, y)
	}
	rc.End()
}

// drawStereoCube draws a cube once per eye with stereo rendering enabled.
func drawStereoCube(rc *immgl.Context, frame int) {
	// Flush the 2D content so it is drawn once, not per eye.
	if err := rc.DrawRenderBatchActive(); err != nil {
		immgl.Logger().Warn("immdemo: flush before stereo", "err", err)
	}

	aspect := float64(width/2) / float64(height)
	proj := matrix.Perspective(math.Pi/3, aspect, 0.1, 100)
	eye := matrix.Translate(0.03, 0, 0)
	rc.SetMatrixProjectionStereo(proj, proj)
	rc.SetMatrixViewOffsetStereo(eye, matrix.Translate(-0.03, 0, 0))

	rc.EnableStereoRender()
	rc.EnableDepthTest()
	rc.PushMatrix()
	rc.LoadIdentity()
	rc.Translate(0, 0, -4)
	rc.Rotate(float32(frame*15), 0.3, 1, 0)
	rc.LoadDrawCube()
	rc.PopMatrix()
	if err := rc.DrawRenderBatchActive(); err != nil {
		immgl.Logger().Warn("immdemo: stereo flush", "err", err)
	}
	rc.DisableDepthTest()
	rc.DisableStereoRender()
}

// checkerboard returns an RGBA image of size x size pixels with cell-wide
// squares.
func checkerboard(size, cell int) []byte {
	px := make([]byte, 0, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				px = append(px, 255, 255, 255, 255)
			} else {
				px = append(px, 60, 60, 60, 255)
			}
		}
	}
	return px
}
