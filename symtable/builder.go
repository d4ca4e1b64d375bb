// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

// This file defines the scope builder: an arena of scopes under
// construction, each holding the binding events of its own body
// bucketed by name.

import (
	"fmt"

	"go.pyscope.net/syntax"
)

// An eventKind is the kind of a raw binding event.
type eventKind uint8

const (
	assignEvent eventKind = iota
	useEvent
	globalEvent
	nonlocalEvent
	paramEvent
	numEvents
)

type eventSet uint8

func (s eventSet) has(k eventKind) bool { return s&(1<<k) != 0 }

// A bucket gathers every event for one name in one scope.
type bucket struct {
	seen     eventSet
	explicit eventSet // events that occur in the source, as opposed to inferred ones
	first    [numEvents]syntax.Position
	imported bool
	annot    bool
	spaces   []ScopeID // child scopes bound to this name (provisional IDs)
}

// A block is a scope under construction.
type block struct {
	parent   ScopeID
	kind     Kind
	name     string
	line     int
	depth    int
	params   []string
	names    map[string]*bucket
	order    []string
	children []ScopeID
	context  string // what an annotation scope evaluates, for messages
}

func (b *block) bucket(name string) *bucket {
	bk, ok := b.names[name]
	if !ok {
		bk = new(bucket)
		b.names[name] = bk
		b.order = append(b.order, name)
	}
	return bk
}

// A builder accumulates blocks and violations. Block IDs are assigned
// in creation order; finish renumbers them in preorder.
type builder struct {
	blocks []*block
	errors ErrorList
}

func (b *builder) newBlock(parent ScopeID, kind Kind, name string, line int) ScopeID {
	id := ScopeID(len(b.blocks))
	blk := &block{
		parent: parent,
		kind:   kind,
		name:   name,
		line:   line,
		names:  make(map[string]*bucket),
	}
	if parent != noScope {
		p := b.blocks[parent]
		p.children = append(p.children, id)
		blk.depth = p.depth + 1
	}
	b.blocks = append(b.blocks, blk)
	return id
}

// event records an occurrence of name in scope.
func (b *builder) event(scope ScopeID, k eventKind, name string, pos syntax.Position) *bucket {
	bk := b.blocks[scope].bucket(name)
	bk.seen |= 1 << k
	if !bk.explicit.has(k) {
		bk.explicit |= 1 << k
		bk.first[k] = pos
	}
	return bk
}

// infer records a declaration that does not occur in the source,
// such as the module-level image of a nested global statement.
// pos is the construct that implies it.
func (b *builder) infer(scope ScopeID, k eventKind, name string, pos syntax.Position) {
	bk := b.blocks[scope].bucket(name)
	bk.seen |= 1 << k
	if !bk.first[k].IsValid() {
		bk.first[k] = pos
	}
}

func (b *builder) param(scope ScopeID, name string, pos syntax.Position) {
	blk := b.blocks[scope]
	blk.params = append(blk.params, name)
	b.event(scope, paramEvent, name, pos)
}

func (b *builder) errorf(scope ScopeID, pos syntax.Position, name, format string, args ...interface{}) {
	b.errors = append(b.errors, Violation{
		Pos:   pos,
		Scope: scope,
		Name:  name,
		Msg:   fmt.Sprintf(format, args...),
	})
}

// check reports structural conflicts among the events of each name.
// It runs once all events are in, so declaration order within a
// scope does not matter except where the message says so.
func (b *builder) check() {
	for id, blk := range b.blocks {
		scope := ScopeID(id)
		for _, name := range blk.order {
			bk := blk.names[name]
			global := bk.explicit.has(globalEvent)
			nonlocal := bk.explicit.has(nonlocalEvent)
			switch {
			case global && bk.seen.has(paramEvent):
				b.errorf(scope, bk.first[globalEvent], name, "name '%s' is parameter and global", name)
			case nonlocal && bk.seen.has(paramEvent):
				b.errorf(scope, bk.first[nonlocalEvent], name, "name '%s' is parameter and nonlocal", name)
			case global && nonlocal:
				pos := bk.first[globalEvent]
				if pos.Before(bk.first[nonlocalEvent]) {
					pos = bk.first[nonlocalEvent]
				}
				b.errorf(scope, pos, name, "name '%s' is nonlocal and global", name)
			}
			for _, decl := range [...]struct {
				k    eventKind
				word string
			}{{globalEvent, "global"}, {nonlocalEvent, "nonlocal"}} {
				if !bk.explicit.has(decl.k) {
					continue
				}
				pos := bk.first[decl.k]
				switch {
				case bk.annot:
					b.errorf(scope, pos, name, "annotated name '%s' can't be %s", name, decl.word)
				case bk.explicit.has(useEvent) && bk.first[useEvent].Before(pos):
					b.errorf(scope, pos, name, "name '%s' is used prior to %s declaration", name, decl.word)
				case bk.explicit.has(assignEvent) && bk.first[assignEvent].Before(pos):
					b.errorf(scope, pos, name, "name '%s' is assigned to before %s declaration", name, decl.word)
				}
			}
		}
	}
}

// finish converts the blocks into an unresolved table, renumbering
// scopes in preorder and classifying each name by Pass 1.
func (b *builder) finish(label string, mode Mode) *Table {
	t := &Table{label: label, mode: mode}
	if len(b.blocks) == 0 {
		return t
	}

	renum := make([]ScopeID, len(b.blocks))
	var order func(id ScopeID)
	order = func(id ScopeID) {
		renum[id] = ScopeID(len(t.scopes))
		t.scopes = append(t.scopes, nil)
		for _, c := range b.blocks[id].children {
			order(c)
		}
	}
	order(0)

	for id, blk := range b.blocks {
		s := &Scope{
			table:   t,
			id:      renum[id],
			parent:  noScope,
			kind:    blk.kind,
			name:    blk.name,
			line:    blk.line,
			params:  blk.params,
			symbols: make(map[string]*Symbol, len(blk.names)),
			order:   blk.order,
		}
		if blk.parent != noScope {
			s.parent = renum[blk.parent]
		}
		for _, c := range blk.children {
			s.children = append(s.children, renum[c])
		}
		for _, name := range blk.order {
			bk := blk.names[name]
			sym := &Symbol{
				table:    t,
				name:     name,
				class:    classify(blk.kind, bk),
				flags:    flagsOf(bk),
				pos:      bk.pos(),
				implicit: bk.seen.has(nonlocalEvent) && !bk.explicit.has(nonlocalEvent),
			}
			for _, c := range bk.spaces {
				sym.namespaces = append(sym.namespaces, renum[c])
			}
			s.symbols[name] = sym
		}
		t.scopes[s.id] = s
	}

	for i := range b.errors {
		v := &b.errors[i]
		v.Scope = renum[v.Scope]
		v.ScopeName = t.scopes[v.Scope].name
	}
	return t
}

// pos returns the position of the name's first declaration if it has
// one, or else of its first explicit occurrence. A name with only
// inferred events takes the position of the construct implying them.
func (bk *bucket) pos() syntax.Position {
	kinds := [...]eventKind{globalEvent, nonlocalEvent, paramEvent, assignEvent, useEvent}
	for _, k := range kinds {
		if bk.explicit.has(k) {
			return bk.first[k]
		}
	}
	for _, k := range kinds {
		if bk.seen.has(k) && bk.first[k].IsValid() {
			return bk.first[k]
		}
	}
	return syntax.Position{}
}

func flagsOf(bk *bucket) Flags {
	var f Flags
	if bk.seen.has(assignEvent) {
		f |= Assigned
	}
	if bk.seen.has(useEvent) {
		f |= Referenced
	}
	if bk.seen.has(paramEvent) {
		f |= IsParameter
	}
	if bk.seen.has(globalEvent) {
		f |= DeclaredGlobal
	}
	if bk.seen.has(nonlocalEvent) {
		f |= DeclaredNonlocal
	}
	if bk.imported {
		f |= Imported
	}
	if bk.annot {
		f |= Annotated
	}
	return f
}
