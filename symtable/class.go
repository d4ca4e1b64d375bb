// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

// This file defines the classification and scope-kind enumerations.

// A Class records how a name is reached within one scope.
type Class uint8

const (
	unresolved     Class = iota // pending; never visible once Build returns
	Local                       // bound in this scope, held in the frame
	Parameter                   // bound by the formal parameter list
	Cell                        // bound here and captured by a nested scope
	Free                        // bound in an enclosing function scope
	Global                      // not bound in any enclosing function; module-level
	GlobalExplicit              // declared global in this scope
)

var classNames = [...]string{
	unresolved:     "unresolved",
	Local:          "local",
	Parameter:      "parameter",
	Cell:           "cell",
	Free:           "free",
	Global:         "global",
	GlobalExplicit: "global_explicit",
}

func (c Class) String() string { return classNames[c] }

// binds reports whether a name of this class is bound in its own scope
// and may therefore satisfy a free reference from a nested function.
func (c Class) binds() bool {
	return c == Local || c == Parameter || c == Cell
}

// The Kind of a Scope indicates which construct introduced it.
type Kind uint8

const (
	ModuleScope        Kind = iota // the root of every table
	FunctionScope                  // def or lambda
	ClassScope                     // class body
	ComprehensionScope             // list/set/dict comprehension or generator expression
	AnnotationScope                // type parameters, type alias value or TypeVar bound
)

var kindNames = [...]string{
	ModuleScope:        "module",
	FunctionScope:      "function",
	ClassScope:         "class",
	ComprehensionScope: "comprehension",
	AnnotationScope:    "annotation",
}

func (k Kind) String() string { return kindNames[k] }

// functionLike reports whether scopes of this kind have parameters
// and may bind names captured by nested functions.
func (k Kind) functionLike() bool {
	return k == FunctionScope || k == ComprehensionScope || k == AnnotationScope
}
