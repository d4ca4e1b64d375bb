// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import (
	"fmt"
	"strings"

	"go.pyscope.net/syntax"
)

// Flags records the facts observed about a name within one scope.
type Flags uint16

const (
	Assigned         Flags = 1 << iota // bound by assignment, def, class, import, for, with, except or del
	Referenced                         // read
	IsParameter                        // bound by the formal parameter list
	DeclaredGlobal                     // subject of a global statement (or surfaced from one)
	DeclaredNonlocal                   // subject of a nonlocal statement
	Imported                           // bound by an import statement
	Annotated                          // has a variable annotation
	FreeInClass                        // a class scope passing a free name to its methods
)

var flagNames = [...]string{
	"assigned",
	"referenced",
	"parameter",
	"declared_global",
	"declared_nonlocal",
	"imported",
	"annotated",
	"free_in_class",
}

func (f Flags) String() string {
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

// A Symbol is the classification of one name within one scope.
type Symbol struct {
	table      *Table
	name       string
	class      Class
	flags      Flags
	namespaces []ScopeID
	pos        syntax.Position // first declaration, or first occurrence
	implicit   bool            // nonlocal implied by an assignment expression
}

func (s *Symbol) Name() string   { return s.name }
func (s *Symbol) Class() Class   { return s.class }
func (s *Symbol) Flags() Flags   { return s.flags }
func (s *Symbol) String() string { return fmt.Sprintf("%s: %s {%s}", s.name, s.class, s.flags) }

// IsLocal reports whether the name is bound in its own scope.
func (s *Symbol) IsLocal() bool { return s.class.binds() }

// IsGlobal reports whether the name is resolved at module level,
// implicitly or by declaration.
func (s *Symbol) IsGlobal() bool { return s.class == Global || s.class == GlobalExplicit }

func (s *Symbol) IsFree() bool             { return s.class == Free }
func (s *Symbol) IsCell() bool             { return s.class == Cell }
func (s *Symbol) IsParameter() bool        { return s.flags&IsParameter != 0 }
func (s *Symbol) IsAssigned() bool         { return s.flags&Assigned != 0 }
func (s *Symbol) IsReferenced() bool       { return s.flags&Referenced != 0 }
func (s *Symbol) IsDeclaredGlobal() bool   { return s.flags&DeclaredGlobal != 0 }
func (s *Symbol) IsDeclaredNonlocal() bool { return s.flags&DeclaredNonlocal != 0 }
func (s *Symbol) IsImported() bool         { return s.flags&Imported != 0 }
func (s *Symbol) IsAnnotated() bool        { return s.flags&Annotated != 0 }

// IsNamespace reports whether the name is bound by a def or class
// statement that introduced a child scope.
func (s *Symbol) IsNamespace() bool { return len(s.namespaces) > 0 }

// Namespaces returns the child scopes bound to this name, in source order.
func (s *Symbol) Namespaces() []*Scope {
	scopes := make([]*Scope, len(s.namespaces))
	for i, id := range s.namespaces {
		scopes[i] = s.table.scopes[id]
	}
	return scopes
}

// Namespace returns the sole child scope bound to this name.
// It fails unless exactly one namespace is bound.
func (s *Symbol) Namespace() (*Scope, error) {
	if n := len(s.namespaces); n != 1 {
		return nil, fmt.Errorf("name %q is bound to %d namespaces", s.name, n)
	}
	return s.table.scopes[s.namespaces[0]], nil
}
