// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// collect expands the command-line arguments into the Python files to
// build. Directories are walked recursively; a file or directory whose
// base name or slash-separated path matches an exclude pattern is
// skipped. Files named explicitly are never excluded.
func collect(args []string, exclude []glob.Glob) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != arg && excluded(path, exclude) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && isPython(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isPython(path string) bool { return strings.HasSuffix(path, ".py") }

func excluded(path string, exclude []glob.Glob) bool {
	base := filepath.Base(path)
	slashed := filepath.ToSlash(path)
	for _, g := range exclude {
		if g.Match(base) || g.Match(slashed) {
			return true
		}
	}
	return false
}
