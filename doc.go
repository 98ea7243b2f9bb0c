// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package immgl is an immediate-mode rendering layer over a modern,
// buffer-oriented graphics device.
//
// # Overview
//
// Callers describe geometry one vertex at a time between Begin and End, in
// the manner of classic fixed-function GL, and drive a matrix stack with
// PushMatrix, Translatef, Rotatef and friends. A [Context] batches the
// vertices into fixed-size buffers, splits them into draw calls on mode or
// texture changes, and issues them to a [device.Device] when the batch is
// flushed.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/immgl"
//	    "github.com/gogpu/immgl/batch"
//	    "github.com/gogpu/immgl/device/recorder"
//	)
//
//	rc, err := immgl.New(recorder.New(), 800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rc.Close()
//
//	rc.MatrixMode(immgl.Projection)
//	rc.Ortho(0, 800, 600, 0, 0, 1)
//	rc.Begin(batch.Quads)
//	rc.Color4ub(255, 0, 0, 255)
//	rc.Vertex2f(10, 10)
//	rc.Vertex2f(10, 110)
//	rc.Vertex2f(110, 110)
//	rc.Vertex2f(110, 10)
//	rc.End()
//	rc.DrawRenderBatchActive()
//
// # Devices
//
// The core never talks to a graphics API directly. [device.Device] is the
// adapter interface; device/recorder implements it in memory for tests and
// tracing, and device/halgpu implements it on gogpu/wgpu.
//
// # Errors
//
// Procedural calls never fail: problems are logged through the package
// logger (see [SetLogger]) and a default resource is substituted where one
// exists. Constructors return an error.
//
// # Concurrency
//
// A Context is not safe for concurrent use. All calls, including those on
// the device, happen on the caller's goroutine.
package immgl
