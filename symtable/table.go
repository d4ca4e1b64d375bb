// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import (
	"fmt"
	"sort"
	"strings"
)

// A ScopeID identifies a scope within its Table.
// The root scope is always 0; IDs follow preorder.
type ScopeID int32

const noScope ScopeID = -1

// A Table is the result of Build: a tree of scopes, each mapping the
// names it mentions to their classification.
//
// A Table is immutable once built and may be used by concurrent readers.
type Table struct {
	label  string
	mode   Mode
	scopes []*Scope // preorder
}

func (t *Table) Label() string { return t.label }
func (t *Table) Mode() Mode    { return t.mode }

// Root returns the module scope.
func (t *Table) Root() *Scope { return t.scopes[0] }

// Len returns the number of scopes in the table.
func (t *Table) Len() int { return len(t.scopes) }

// Scopes returns all scopes in preorder, root first.
func (t *Table) Scopes() []*Scope {
	return append([]*Scope(nil), t.scopes...)
}

// Scope returns the scope with the given ID.
func (t *Table) Scope(id ScopeID) (*Scope, error) {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil, fmt.Errorf("scope %d of %d: %w", id, len(t.scopes), ErrIndexOutOfBounds)
	}
	return t.scopes[id], nil
}

// String returns a deterministic indented dump of the table,
// one line per scope followed by one line per symbol.
func (t *Table) String() string {
	var buf strings.Builder
	var dump func(s *Scope, indent int)
	dump = func(s *Scope, indent int) {
		pad := strings.Repeat("  ", indent)
		fmt.Fprintf(&buf, "%s%s %s", pad, s.kind, s.name)
		if s.line > 0 {
			fmt.Fprintf(&buf, " line %d", s.line)
		}
		if s.kind.functionLike() {
			fmt.Fprintf(&buf, " (%s)", strings.Join(s.params, ", "))
		}
		buf.WriteByte('\n')
		for _, name := range s.order {
			fmt.Fprintf(&buf, "%s  %s\n", pad, s.symbols[name])
		}
		for _, c := range s.children {
			dump(t.scopes[c], indent+1)
		}
	}
	dump(t.Root(), 0)
	return buf.String()
}

// A Scope is one lexical block: the module, a function or lambda body,
// a class body, or a comprehension.
type Scope struct {
	table    *Table
	id       ScopeID
	parent   ScopeID
	kind     Kind
	name     string
	line     int
	params   []string
	symbols  map[string]*Symbol
	order    []string // names in first-introduction order
	children []ScopeID
}

func (s *Scope) ID() ScopeID   { return s.id }
func (s *Scope) Kind() Kind    { return s.kind }
func (s *Scope) Table() *Table { return s.table }

// Name returns the scope's name: "top" for the module, the def or class
// name, "lambda", or the comprehension kind (e.g. "listcomp").
func (s *Scope) Name() string { return s.name }

// Line returns the line on which the scope begins, or 0 for the module.
func (s *Scope) Line() int { return s.line }

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	if s.parent == noScope {
		return nil
	}
	return s.table.scopes[s.parent]
}

// IsNested reports whether the scope is enclosed by a function-like scope.
func (s *Scope) IsNested() bool {
	for p := s.Parent(); p != nil; p = p.Parent() {
		if p.kind.functionLike() {
			return true
		}
	}
	return false
}

// IsOptimized reports whether the scope's locals live in a frame,
// that is, whether it is a function, comprehension or annotation scope.
func (s *Scope) IsOptimized() bool { return s.kind.functionLike() }

func (s *Scope) HasChildren() bool { return len(s.children) > 0 }

// Children returns the nested scopes in source order.
func (s *Scope) Children() []*Scope {
	children := make([]*Scope, len(s.children))
	for i, id := range s.children {
		children[i] = s.table.scopes[id]
	}
	return children
}

// Child returns the i'th nested scope.
func (s *Scope) Child(i int) (*Scope, error) {
	if i < 0 || i >= len(s.children) {
		return nil, fmt.Errorf("%s %s has %d children, no child %d: %w",
			s.kind, s.name, len(s.children), i, ErrIndexOutOfBounds)
	}
	return s.table.scopes[s.children[i]], nil
}

// Identifiers returns the names known to the scope in order of first
// introduction.
func (s *Scope) Identifiers() []string {
	return append([]string(nil), s.order...)
}

// Symbols returns the scope's symbols in order of first introduction.
func (s *Scope) Symbols() []*Symbol {
	syms := make([]*Symbol, len(s.order))
	for i, name := range s.order {
		syms[i] = s.symbols[name]
	}
	return syms
}

// Lookup returns the symbol for name.
func (s *Scope) Lookup(name string) (*Symbol, error) {
	if sym, ok := s.symbols[name]; ok {
		return sym, nil
	}
	return nil, fmt.Errorf("%s %s: name %q: %w", s.kind, s.name, name, ErrNotFound)
}

// Parameters returns the formal parameter names in declaration order.
// It returns nil for module and class scopes.
func (s *Scope) Parameters() []string {
	if !s.kind.functionLike() {
		return nil
	}
	return append([]string{}, s.params...)
}

// Locals returns the names bound in the scope.
func (s *Scope) Locals() []string {
	return s.filter(func(sym *Symbol) bool { return sym.IsLocal() })
}

// Globals returns the names resolved at module level.
func (s *Scope) Globals() []string {
	return s.filter(func(sym *Symbol) bool { return sym.IsGlobal() })
}

// Frees returns the names bound in an enclosing function.
func (s *Scope) Frees() []string {
	return s.filter(func(sym *Symbol) bool { return sym.IsFree() })
}

// Nonlocals returns the names declared nonlocal.
func (s *Scope) Nonlocals() []string {
	return s.filter(func(sym *Symbol) bool { return sym.IsDeclaredNonlocal() })
}

// Methods returns, for a class scope, the names of the functions
// defined directly in its body, sorted. It returns nil otherwise.
func (s *Scope) Methods() []string {
	if s.kind != ClassScope {
		return nil
	}
	var methods []string
	seen := make(map[string]bool)
	for _, c := range s.Children() {
		if c.kind == AnnotationScope {
			// def m[T](...): the method is nested in its type parameter scope.
			for _, gc := range c.Children() {
				if gc.kind == FunctionScope {
					c = gc
					break
				}
			}
		}
		if c.kind == FunctionScope && c.name != "lambda" && !seen[c.name] {
			seen[c.name] = true
			methods = append(methods, c.name)
		}
	}
	sort.Strings(methods)
	return methods
}

func (s *Scope) filter(keep func(*Symbol) bool) []string {
	var names []string
	for _, name := range s.order {
		if keep(s.symbols[name]) {
			names = append(names, name)
		}
	}
	return names
}

func (s *Scope) String() string { return fmt.Sprintf("%s %s", s.kind, s.name) }
