// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

import (
	"errors"
	"fmt"

	"go.pyscope.net/syntax"
)

// Lookup failures. Errors returned by the query functions wrap one
// of these and may be tested with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
)

// A Violation is a scoping rule broken by the program, such as a
// parameter redeclared global or a nonlocal with no enclosing binding.
// Violations are recorded without stopping the build; the table is
// complete regardless.
type Violation struct {
	Pos       syntax.Position
	Scope     ScopeID // scope in which the rule was broken
	ScopeName string
	Name      string // offending identifier, if any
	Msg       string
}

func (v Violation) Error() string { return v.Pos.String() + ": " + v.Msg }

// An ErrorList is a non-empty list of violations, in source order.
type ErrorList []Violation

func (e ErrorList) Len() int      { return len(e) }
func (e ErrorList) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e ErrorList) Less(i, j int) bool {
	if e[i].Pos != e[j].Pos {
		return e[i].Pos.Before(e[j].Pos)
	}
	return e[i].Msg < e[j].Msg
}

func (e ErrorList) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0], len(e)-1)
}

// A Mode selects the top-level construct a file is built as.
type Mode uint8

const (
	Exec   Mode = iota // a module: any sequence of statements
	Eval               // a single expression
	Single             // one interactive statement
)

var modeNames = [...]string{
	Exec:   "exec",
	Eval:   "eval",
	Single: "single",
}

func (m Mode) String() string { return modeNames[m] }

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q (want exec, eval or single)", s)
}
