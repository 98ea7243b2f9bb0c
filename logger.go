// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package immgl

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/immgl/batch"
	"github.com/gogpu/immgl/shaderwatch"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// devices holds the devices of open contexts so SetLogger can reach them.
var devices sync.Map // loggerSetter -> struct{}

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for immgl and its sub-packages.
// By default immgl produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
//
// Log levels used by immgl:
//   - [slog.LevelDebug]: batch flushes and draw issuance
//   - [slog.LevelInfo]: lifecycle (context, default shader and texture, batches)
//   - [slog.LevelWarn]: substitutions (unsupported format, shader fallback,
//     matrix stack overflow, no free sampler slot)
//   - [slog.LevelError]: device call failures
//
// Example:
//
//	immgl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	batch.SetLogger(l)
	shaderwatch.SetLogger(l)
	devices.Range(func(k, _ any) bool {
		k.(loggerSetter).SetLogger(l)
		return true
	})
}

// Logger returns the current logger used by immgl.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// registerDevice hands the current logger to dev and keeps it updated
// until unregisterDevice.
func registerDevice(dev any) {
	if ls, ok := dev.(loggerSetter); ok {
		ls.SetLogger(Logger())
		devices.Store(ls, struct{}{})
	}
}

func unregisterDevice(dev any) {
	if ls, ok := dev.(loggerSetter); ok {
		devices.Delete(ls)
	}
}
