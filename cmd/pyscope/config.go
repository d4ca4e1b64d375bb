// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"

	"go.pyscope.net/symtable"
)

// defaultConfig is read from the current directory when -config is not given.
const defaultConfig = ".pyscope.toml"

// A Config holds the settings read from a TOML file:
//
//	mode = "exec"
//	output = "text"
//	exclude = ["venv", "*_pb2.py"]
//	passthrough = true
//	comprehension_scopes = true
//	debounce = "200ms"
type Config struct {
	Mode                string        `toml:"mode"`
	Output              string        `toml:"output"`
	Exclude             []string      `toml:"exclude"`
	PassThrough         *bool         `toml:"passthrough"`
	ComprehensionScopes *bool         `toml:"comprehension_scopes"`
	Debounce            time.Duration `toml:"debounce"`
}

// loadConfig reads the named file, or the default file if name is
// empty. A missing default file yields an empty Config.
func loadConfig(name string) (*Config, error) {
	cfg := new(Config)
	path := name
	if path == "" {
		path = defaultConfig
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if name == "" && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown settings: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// settings are the effective options of one run.
type settings struct {
	mode     symtable.Mode
	output   string
	exclude  []glob.Glob
	debounce time.Duration
}

var outputs = []string{"text", "json", "wire", "proto-text"}

// flagValues are the command-line values that may override a Config.
// set records which of them were given explicitly.
type flagValues struct {
	mode, output, exclude   string
	passthrough, compScopes bool
	set                     map[string]bool
}

// resolve merges the file settings with the command line, which wins,
// and applies the resolver options.
func (c *Config) resolve(fv flagValues) (*settings, error) {
	s := &settings{debounce: 200 * time.Millisecond}
	if c.Debounce > 0 {
		s.debounce = c.Debounce
	}

	mode := pick(fv.set["mode"], fv.mode, c.Mode, "exec")
	m, err := symtable.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	s.mode = m

	s.output = pick(fv.set["output"], fv.output, c.Output, "text")
	if !contains(outputs, s.output) {
		return nil, fmt.Errorf("unsupported output format %q (want one of %s)", s.output, strings.Join(outputs, ", "))
	}

	patterns := append([]string(nil), c.Exclude...)
	if fv.exclude != "" {
		patterns = append(patterns, strings.Split(fv.exclude, ",")...)
	}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %v", pattern, err)
		}
		s.exclude = append(s.exclude, g)
	}

	symtable.RecordPassThrough = fv.passthrough
	if !fv.set["passthrough"] && c.PassThrough != nil {
		symtable.RecordPassThrough = *c.PassThrough
	}
	symtable.AllowComprehensionScopes = fv.compScopes
	if !fv.set["comprehensionscopes"] && c.ComprehensionScopes != nil {
		symtable.AllowComprehensionScopes = *c.ComprehensionScopes
	}
	return s, nil
}

// pick returns the flag value if it was set, else the file value if
// non-empty, else the default.
func pick(flagSet bool, flagValue, fileValue, def string) string {
	switch {
	case flagSet:
		return flagValue
	case fileValue != "":
		return fileValue
	}
	return def
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
