// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symtable builds the lexical scopes of a Python program
// and classifies every name each scope mentions.
//
// Build proceeds in three steps. The walker visits the syntax tree in
// source order, creating a scope for the module and for each def,
// lambda, class and comprehension, and recording a binding event
// (assign, use, global, nonlocal, parameter) for every identifier in
// the scope whose body contains it. All identifiers of one body are
// recorded before the bodies of its nested scopes are visited.
//
// Pass 1 then classifies each name from its own scope's events alone:
// a global declaration makes it GlobalExplicit; a parameter makes it
// Parameter; an assignment anywhere in the body makes it Local, even if
// a use precedes it. A name that is only used is tentatively free, and
// a nonlocal name is pending.
//
// Pass 2 resolves the tentative names by searching enclosing scopes,
// outward, for a function-like scope that binds them. Class scopes
// are skipped: names bound in a class body are not visible to the
// functions nested in it. A name found bound in a function becomes
// Free in the using scope and Cell in the binder; every scope in
// between is given a Free symbol so that the value can be passed
// through it. A name found nowhere is Global. The worklist is processed
// top-down and repeated until no scope changes.
//
// Scoping rules broken by the program, such as a parameter that is
// also declared global, are reported as violations but never stop
// the build.
package symtable // import "go.pyscope.net/symtable"

import (
	"fmt"
	"os"
	"sort"

	"go.pyscope.net/syntax"
)

const debug = false

// Global options. These are not safe to change concurrently with Build.
var (
	// AllowComprehensionScopes gives each comprehension and generator
	// expression its own scope. When false, comprehension variables bind
	// in the enclosing scope, as in Python 2 list comprehensions.
	AllowComprehensionScopes = true

	// RecordPassThrough adds a Free symbol to every scope that lies
	// between a free use and its binder.
	RecordPassThrough = true
)

// Build returns the symbol table of the file. The label names the
// table, typically the file name. The root of the table is always a
// module scope named "top".
//
// The table is complete even when the program breaks scoping rules;
// in that case the error is an ErrorList of the violations, sorted by
// position.
func Build(f *syntax.File, label string, mode Mode) (*Table, error) {
	b := new(builder)
	root := b.newBlock(noScope, ModuleScope, "top", 0)
	if mode == Eval && !singleExpr(f) {
		pos, _ := f.Span()
		b.errorf(root, pos, "", "%s mode requires a single expression", mode)
	}

	w := walker{b: b}
	w.block(root, f)
	b.check()

	t := b.finish(label, mode)
	r := resolver{table: t, errors: &b.errors}
	r.propagate()

	if debug {
		fmt.Fprint(os.Stderr, t)
	}

	if len(b.errors) > 0 {
		sort.Stable(b.errors)
		return t, b.errors
	}
	return t, nil
}

func singleExpr(f *syntax.File) bool {
	if len(f.Stmts) != 1 {
		return false
	}
	_, ok := f.Stmts[0].(*syntax.ExprStmt)
	return ok
}

// classify is Pass 1: it assigns a class to a name using only the
// events of its own scope. Free and nonlocal names are left
// unresolved for Pass 2, except at module level where there is
// nothing further out.
func classify(kind Kind, bk *bucket) Class {
	switch {
	case bk.seen.has(globalEvent):
		return GlobalExplicit
	case bk.seen.has(paramEvent):
		return Parameter
	case bk.seen.has(nonlocalEvent):
		return unresolved
	case bk.seen.has(assignEvent):
		return Local
	case kind == ModuleScope:
		return Global
	}
	return unresolved
}

// A resolver performs Pass 2 over a table whose names have been
// classified by Pass 1.
type resolver struct {
	table  *Table
	errors *ErrorList
}

// propagate resolves every unresolved name. Scopes are visited in
// preorder, so enclosing scopes settle before the scopes they enclose;
// a scope whose lookup meets an unsettled ancestor is retried in the
// next round.
func (r *resolver) propagate() {
	var work []*Scope
	depth := 0
	for _, s := range r.table.scopes {
		if d := s.depth(); d > depth {
			depth = d
		}
		if s.hasUnresolved() {
			work = append(work, s)
		}
	}

	for round := 0; len(work) > 0; round++ {
		if round > depth+2 {
			panic(fmt.Sprintf("symtable: resolution of %s did not converge after %d rounds",
				r.table.label, round))
		}
		var retry []*Scope
		for _, s := range work {
			if !r.resolveScope(s) {
				retry = append(retry, s)
			}
		}
		if debug {
			fmt.Fprintf(os.Stderr, "round %d: %d scopes, %d to retry\n", round, len(work), len(retry))
		}
		work = retry
	}
}

// resolveScope resolves the unresolved names of s.
// It reports whether all of them were settled.
func (r *resolver) resolveScope(s *Scope) bool {
	done := true
	for _, name := range append([]string(nil), s.order...) {
		sym := s.symbols[name]
		if sym.class != unresolved {
			continue
		}
		if !r.resolveName(s, sym) {
			done = false
		}
	}
	return done
}

// resolveName searches the scopes enclosing s for the binder of sym.
// It reports false if the outcome depends on a name not yet resolved.
func (r *resolver) resolveName(s *Scope, sym *Symbol) bool {
	nonlocal := sym.flags&DeclaredNonlocal != 0
	var between []*Scope
	for a := s.Parent(); a != nil; a = a.Parent() {
		if a.kind == ClassScope {
			between = append(between, a)
			continue
		}
		if a.kind == ModuleScope {
			break
		}
		outer, ok := a.symbols[sym.name]
		if !ok {
			between = append(between, a)
			continue
		}
		switch {
		case outer.class == unresolved:
			return false
		case outer.class.binds():
			sym.class = Free
			outer.class = Cell
			r.passThrough(sym.name, between)
			return true
		case outer.class == Free:
			sym.class = Free
			r.passThrough(sym.name, between)
			return true
		case outer.class == GlobalExplicit && sym.implicit:
			// (x := ...) in a comprehension within a function that
			// declares x global assigns the global.
			sym.class = GlobalExplicit
			sym.flags = sym.flags&^DeclaredNonlocal | DeclaredGlobal
			return true
		}
		// Global in the enclosing function: stop looking.
		break
	}

	if nonlocal {
		r.errorf(s, sym.name, "no binding for nonlocal '%s' found", sym.name)
		s.remove(sym.name)
		return true
	}
	sym.class = Global
	return true
}

// passThrough records name as free in each intermediate scope, or,
// for a class that binds the name itself, marks it FreeInClass.
func (r *resolver) passThrough(name string, between []*Scope) {
	for _, s := range between {
		if sym, ok := s.symbols[name]; ok {
			if s.kind == ClassScope && sym.flags&(Assigned|DeclaredGlobal) != 0 {
				sym.flags |= FreeInClass
			}
			continue
		}
		if RecordPassThrough {
			s.symbols[name] = &Symbol{table: r.table, name: name, class: Free}
			s.order = append(s.order, name)
		}
	}
}

func (r *resolver) errorf(s *Scope, name, format string, args ...interface{}) {
	*r.errors = append(*r.errors, Violation{
		Pos:       s.symbols[name].pos,
		Scope:     s.id,
		ScopeName: s.name,
		Name:      name,
		Msg:       fmt.Sprintf(format, args...),
	})
}

func (s *Scope) depth() int {
	d := 0
	for p := s.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

func (s *Scope) hasUnresolved() bool {
	for _, sym := range s.symbols {
		if sym.class == unresolved {
			return true
		}
	}
	return false
}

// remove deletes name from the scope.
func (s *Scope) remove(name string) {
	delete(s.symbols, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}
