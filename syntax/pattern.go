// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines the match statement and its patterns.

// A MatchStmt represents a match statement: match Subject: Cases.
type MatchStmt struct {
	Match   Position
	Subject Expr // a TupleExpr for "match a, b:"
	Cases   []*CaseClause
}

func (x *MatchStmt) Span() (start, end Position) {
	end = End(x.Subject)
	if n := len(x.Cases); n > 0 {
		end = End(x.Cases[n-1])
	}
	return x.Match, end
}

// A CaseClause is one case of a MatchStmt: case Pattern [if Guard]: Body.
type CaseClause struct {
	Case    Position
	Pattern Pattern // a SequencePattern for "case a, b:"
	Guard   Expr    // optional
	Body    []Stmt
}

func (x *CaseClause) Span() (start, end Position) {
	return x.Case, bodyEnd(x.Body, End(x.Pattern))
}

// A Pattern is the pattern of a case clause, or a part of one.
type Pattern interface {
	Node
	pattern()
}

func (*AsPattern) pattern()       {}
func (*CapturePattern) pattern()  {}
func (*ClassPattern) pattern()    {}
func (*KeywordPattern) pattern()  {}
func (*MappingPattern) pattern()  {}
func (*OrPattern) pattern()       {}
func (*SequencePattern) pattern() {}
func (*StarPattern) pattern()     {}
func (*ValuePattern) pattern()    {}
func (*WildcardPattern) pattern() {}

// A CapturePattern binds the subject to Name.
type CapturePattern struct {
	Name *Ident
}

func (x *CapturePattern) Span() (start, end Position) { return x.Name.Span() }

// A WildcardPattern (_) matches anything and binds nothing.
type WildcardPattern struct {
	Underscore Position
}

func (x *WildcardPattern) Span() (start, end Position) {
	return x.Underscore, x.Underscore.add("_")
}

// A ValuePattern compares the subject with a literal or a dotted name
// such as Color.RED. The names in X are uses, not bindings.
type ValuePattern struct {
	X Expr
}

func (x *ValuePattern) Span() (start, end Position) { return x.X.Span() }

// A SequencePattern matches a sequence: [p, q], (p, q), or the
// unbracketed p, q of a case clause, in which case Lbrack is invalid.
type SequencePattern struct {
	Lbrack Position
	Elems  []Pattern
	Rbrack Position
}

func (x *SequencePattern) Span() (start, end Position) {
	if x.Lbrack.IsValid() {
		return x.Lbrack, x.Rbrack.add("]")
	}
	return Start(x.Elems[0]), End(x.Elems[len(x.Elems)-1])
}

// A StarPattern captures the rest of a sequence: *Name, or *_ if Name is nil.
type StarPattern struct {
	Star Position
	Name *Ident // nil for *_
}

func (x *StarPattern) Span() (start, end Position) {
	if x.Name == nil {
		return x.Star, x.Star.add("*_")
	}
	return x.Star, End(x.Name)
}

// A MappingPattern matches a mapping: {Keys[i]: Values[i], **Rest}.
type MappingPattern struct {
	Lbrace Position
	Keys   []Expr // literals or dotted names
	Values []Pattern
	Rest   *Ident // optional
	Rbrace Position
}

func (x *MappingPattern) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A ClassPattern matches an instance of Cls: Cls(p, q, name=r).
// Keyword patterns appear in Args as *KeywordPattern.
type ClassPattern struct {
	Cls    Expr // Ident or DotExpr
	Args   []Pattern
	Rparen Position
}

func (x *ClassPattern) Span() (start, end Position) {
	return Start(x.Cls), x.Rparen.add(")")
}

// A KeywordPattern matches attribute Name of the subject against Value.
// Name is not an identifier reference.
type KeywordPattern struct {
	NamePos Position
	Name    string
	Value   Pattern
}

func (x *KeywordPattern) Span() (start, end Position) {
	return x.NamePos, End(x.Value)
}

// An OrPattern matches if any alternative does: p | q.
type OrPattern struct {
	Alts []Pattern
}

func (x *OrPattern) Span() (start, end Position) {
	return Start(x.Alts[0]), End(x.Alts[len(x.Alts)-1])
}

// An AsPattern binds Name to the subject if Pattern matches: p as name.
type AsPattern struct {
	Pattern Pattern
	Name    *Ident
}

func (x *AsPattern) Span() (start, end Position) {
	return Start(x.Pattern), End(x.Name)
}
