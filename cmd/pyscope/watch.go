// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// A watcher reports changed Python files, debounced so that a burst
// of writes to the same files yields one callback.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	exclude  []glob.Glob
	onChange func([]string)
	callMu   sync.Mutex // serializes onChange

	// Owned by add before run starts, then by run.
	files map[string]bool // files named explicitly
	trees map[string]bool // directories watched for all their Python files

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

func newWatcher(debounce time.Duration, exclude []glob.Glob, onChange func([]string)) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		fs:       fsw,
		debounce: debounce,
		exclude:  exclude,
		onChange: onChange,
		pending:  make(map[string]bool),
		files:    make(map[string]bool),
		trees:    make(map[string]bool),
	}, nil
}

// add watches each path: directories recursively, and files through
// their parent directory, which survives editors that replace the file.
// Other files in such a parent directory are ignored.
func (w *watcher) add(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if err := w.fs.Add(filepath.Dir(path)); err != nil {
				return err
			}
			w.files[filepath.Clean(path)] = true
			continue
		}
		if err := w.addTree(path); err != nil {
			return err
		}
	}
	return nil
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && excluded(path, w.exclude) {
			return filepath.SkipDir
		}
		w.trees[filepath.Clean(path)] = true
		return w.fs.Add(path)
	})
}

// run delivers changes until ctx is cancelled.
func (w *watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					if w.trees[filepath.Dir(name)] && !excluded(name, w.exclude) {
						if err := w.addTree(name); err != nil {
							slog.Warn("failed to watch new directory", "path", name, "error", err)
						}
					}
					continue
				}
			}
			if !w.wanted(name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("change", "path", name, "op", event.Op.String())
				w.schedule(name)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// wanted reports whether a change to the named file should be reported.
// Only explicitly named files count in a directory that is not a watched tree.
func (w *watcher) wanted(name string) bool {
	if w.files[name] {
		return true
	}
	return w.trees[filepath.Dir(name)] && isPython(name) && !excluded(name, w.exclude)
}

func (w *watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	sort.Strings(paths)
	if len(paths) > 0 {
		w.callMu.Lock()
		defer w.callMu.Unlock()
		w.onChange(paths)
	}
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}
