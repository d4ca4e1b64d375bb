// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import (
	"fmt"
	"strings"
)

// Identifiers returns the names known to the module scope, in order of
// first introduction.
func (t *Table) Identifiers() []string { return t.Root().Identifiers() }

// Child returns the i'th scope nested directly in the module.
func (t *Table) Child(i int) (*Scope, error) { return t.Root().Child(i) }

// ChildParameters returns the parameter names of the i'th scope nested
// directly in the module. The result is empty if that scope is a class.
func (t *Table) ChildParameters(i int) ([]string, error) {
	c, err := t.Child(i)
	if err != nil {
		return nil, err
	}
	return c.Parameters(), nil
}

// Find returns the scope named by a dotted path of scope names relative
// to the module, such as "outer.inner". Where several children share a
// name, the first in source order is chosen. The empty path denotes the
// module itself.
func (t *Table) Find(path string) (*Scope, error) {
	s := t.Root()
	if path == "" {
		return s, nil
	}
	for _, name := range strings.Split(path, ".") {
		next := s.childNamed(name)
		if next == nil {
			return nil, fmt.Errorf("%s: no scope %q in %s: %w", t.label, path, s, ErrNotFound)
		}
		s = next
	}
	return s, nil
}

func (s *Scope) childNamed(name string) *Scope {
	for _, id := range s.children {
		if c := s.table.scopes[id]; c.name == name {
			return c
		}
	}
	return nil
}
