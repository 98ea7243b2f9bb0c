// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shaderwatch reports edits to shader source files so a host can
// reload programs between frames.
//
// The watcher runs its own goroutine that collects file system events.
// The render thread calls Poll once per frame and reloads any shader whose
// file changed:
//
//	w, err := shaderwatch.New("shaders/sprite.vs", "shaders/sprite.fs")
//	...
//	for _, path := range w.Poll() {
//		prog = rc.ReloadShader(prog, vsPath, fsPath)
//	}
package shaderwatch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when a closed Watcher is asked to add paths.
var ErrClosed = errors.New("shaderwatch: watcher closed")

// Watcher collects change notifications for a fixed set of files.
//
// Parent directories are watched rather than the files themselves, since
// most editors save by writing a temporary file and renaming it over the
// original, which drops a watch placed on the file.
type Watcher struct {
	watch *fsnotify.Watcher

	mu      sync.Mutex
	files   map[string]bool // cleaned absolute path -> watched
	dirs    map[string]int  // directory -> number of watched files in it
	pending map[string]bool
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New starts watching the given files. Files do not need to exist yet,
// but their directories do.
func New(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shaderwatch: %w", err)
	}
	w := &Watcher{
		watch:   fw,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]bool),
		done:    make(chan struct{}),
	}
	if err := w.Add(paths...); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add starts watching more files.
func (w *Watcher) Add(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("shaderwatch: %s: %w", p, err)
		}
		if w.files[abs] {
			continue
		}
		dir := filepath.Dir(abs)
		if w.dirs[dir] == 0 {
			if err := w.watch.Add(dir); err != nil {
				return fmt.Errorf("shaderwatch: watch %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
		w.files[abs] = true
		slogger().Debug("shaderwatch: watching", "path", abs)
	}
	return nil
}

// Remove stops watching a file. Removing an unknown path is a no-op.
func (w *Watcher) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[abs] {
		return
	}
	delete(w.files, abs)
	delete(w.pending, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		_ = w.watch.Remove(dir)
	}
}

// Files returns the watched files in sorted order.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Poll returns the watched files that changed since the last call, in
// sorted order, and never blocks. Each path appears at most once no matter
// how many events it produced.
func (w *Watcher) Poll() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	clear(w.pending)
	sort.Strings(out)
	return out
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.watch.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watch.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watch.Errors:
			if !ok {
				return
			}
			slogger().Warn("shaderwatch: watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write,
		event.Op&fsnotify.Create == fsnotify.Create,
		event.Op&fsnotify.Rename == fsnotify.Rename:
	default:
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return
	}
	if !w.pending[abs] {
		slogger().Debug("shaderwatch: changed", "path", abs, "op", event.Op.String())
	}
	w.pending[abs] = true
}
