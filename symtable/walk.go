// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable

// This file defines the walker, which turns a syntax tree into binding
// events. Each scope's own body is walked first; the bodies of the
// scopes nested within it are walked afterwards, in source order.

import (
	"strings"

	"go.pyscope.net/syntax"
)

// generic is the type parameter scope of a generic def, class or
// type alias.
type generic struct{ syntax.Node }

// lazy is the body of an annotation scope holding a lazily evaluated
// expression: a type alias value or a type parameter bound.
type lazy struct{ syntax.Expr }

type walker struct {
	b      *builder
	scope  ScopeID  // current scope
	nested []nested // scopes found in the current body, not yet walked
}

// A nested scope awaiting its walk.
type nested struct {
	id   ScopeID
	node syntax.Node // *syntax.DefStmt, *syntax.LambdaExpr, *syntax.ClassStmt, *syntax.Comprehension, generic or lazy
}

// block walks the body of the scope introduced by n, then the bodies
// of the scopes nested within it.
func (w *walker) block(id ScopeID, n syntax.Node) {
	savedScope, savedNested := w.scope, w.nested
	w.scope, w.nested = id, nil

	switch n := n.(type) {
	case *syntax.File:
		w.stmts(n.Stmts)

	case *syntax.DefStmt:
		w.params(n.Params)
		w.stmts(n.Body)

	case *syntax.LambdaExpr:
		w.params(n.Params)
		w.expr(n.Body)

	case *syntax.ClassStmt:
		w.stmts(n.Body)

	case *syntax.Comprehension:
		first := n.Clauses[0].(*syntax.ForClause)
		w.b.param(w.scope, ".0", syntax.Start(first.X))
		w.target(first.Vars)
		w.clauses(n.Clauses[1:])
		w.expr(n.Body)

	case generic:
		w.generic(n.Node)

	case lazy:
		w.expr(n.Expr)
	}

	for _, c := range w.nested {
		w.block(c.id, c.node)
	}
	w.scope, w.nested = savedScope, savedNested
}

// enter creates the scope for a nested construct and queues its body.
func (w *walker) enter(kind Kind, name string, n syntax.Node) ScopeID {
	id := w.b.newBlock(w.scope, kind, name, int(syntax.Start(n).Line))
	w.nested = append(w.nested, nested{id, n})
	return id
}

func (w *walker) use(id *syntax.Ident) {
	w.b.event(w.scope, useEvent, id.Name, id.NamePos)
}

func (w *walker) assign(id *syntax.Ident) *bucket {
	return w.b.event(w.scope, assignEvent, id.Name, id.NamePos)
}

func (w *walker) params(params []*syntax.Param) {
	for _, p := range params {
		w.b.param(w.scope, p.Name.Name, p.Name.NamePos)
	}
}

func (w *walker) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		w.stmt(stmt)
	}
}

func (w *walker) stmt(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.AssertStmt:
		w.expr(stmt.Cond)
		w.expr(stmt.Msg)

	case *syntax.AssignStmt:
		switch stmt.Op {
		case "=":
			if stmt.Type != nil {
				w.annotated(stmt.Targets[0])
				break
			}
			for _, lhs := range stmt.Targets {
				w.target(lhs)
			}
		case ":":
			// bare annotation: x: int
			w.annotated(stmt.Targets[0])
		default:
			// augmented assignment: x += 1 reads and writes x
			if id, ok := unparen(stmt.Targets[0]).(*syntax.Ident); ok {
				w.use(id)
				w.assign(id)
			} else {
				w.expr(stmt.Targets[0])
			}
		}
		w.expr(stmt.Type)
		w.expr(stmt.RHS)

	case *syntax.BranchStmt:
		// no names

	case *syntax.ClassStmt:
		w.exprs(stmt.Decorators)
		w.assign(stmt.Name)
		var id ScopeID
		if stmt.TypeParams != nil {
			id = w.enterGeneric(stmt.Name.Name, stmt)
		} else {
			w.exprs(stmt.Bases)
			id = w.enter(ClassScope, stmt.Name.Name, stmt)
		}
		w.bindNamespace(stmt.Name.Name, id)

	case *syntax.DefStmt:
		w.exprs(stmt.Decorators)
		w.assign(stmt.Name)
		var id ScopeID
		if stmt.TypeParams != nil {
			// Defaults are evaluated outside the type parameter scope,
			// annotations within it.
			for _, p := range stmt.Params {
				w.expr(p.Default)
			}
			id = w.enterGeneric(stmt.Name.Name, stmt)
		} else {
			for _, p := range stmt.Params {
				w.expr(p.Type)
				w.expr(p.Default)
			}
			w.expr(stmt.Returns)
			id = w.enter(FunctionScope, stmt.Name.Name, stmt)
		}
		w.bindNamespace(stmt.Name.Name, id)

	case *syntax.DelStmt:
		for _, x := range stmt.Targets {
			w.target(x)
		}

	case *syntax.ExprStmt:
		w.expr(stmt.X)

	case *syntax.ForStmt:
		w.target(stmt.Vars)
		w.expr(stmt.X)
		w.stmts(stmt.Body)
		w.stmts(stmt.Else)

	case *syntax.GlobalStmt:
		for _, id := range stmt.Names {
			w.b.event(w.scope, globalEvent, id.Name, id.NamePos)
			if w.scope != 0 {
				w.b.infer(0, globalEvent, id.Name, id.NamePos)
			}
		}

	case *syntax.MatchStmt:
		w.expr(stmt.Subject)
		for _, c := range stmt.Cases {
			w.pattern(c.Pattern)
			w.expr(c.Guard)
			w.stmts(c.Body)
		}

	case *syntax.NonlocalStmt:
		if w.b.blocks[w.scope].kind == ModuleScope {
			w.b.errorf(w.scope, stmt.Nonlocal, "", "nonlocal declaration not allowed at module level")
			break
		}
		for _, id := range stmt.Names {
			w.b.event(w.scope, nonlocalEvent, id.Name, id.NamePos)
		}

	case *syntax.IfStmt:
		w.expr(stmt.Cond)
		w.stmts(stmt.True)
		w.stmts(stmt.False)

	case *syntax.ImportStmt:
		if stmt.Star {
			if w.b.blocks[w.scope].kind != ModuleScope {
				w.b.errorf(w.scope, stmt.Import, "*", "import * only allowed at module level")
			}
			break
		}
		for _, imp := range stmt.Names {
			var bk *bucket
			switch {
			case imp.Alias != nil:
				bk = w.assign(imp.Alias)
			case stmt.From:
				bk = w.b.event(w.scope, assignEvent, imp.Name, imp.NamePos)
			default:
				// import a.b.c binds a
				name := imp.Name
				if i := strings.IndexByte(name, '.'); i >= 0 {
					name = name[:i]
				}
				bk = w.b.event(w.scope, assignEvent, name, imp.NamePos)
			}
			bk.imported = true
		}

	case *syntax.RaiseStmt:
		w.expr(stmt.X)
		w.expr(stmt.Cause)

	case *syntax.ReturnStmt:
		w.expr(stmt.Result)

	case *syntax.TryStmt:
		w.stmts(stmt.Body)
		for _, h := range stmt.Handlers {
			w.expr(h.Type)
			if h.Name != nil {
				w.assign(h.Name)
			}
			w.stmts(h.Body)
		}
		w.stmts(stmt.Else)
		w.stmts(stmt.Finally)

	case *syntax.TypeAliasStmt:
		w.assign(stmt.Name)
		if stmt.TypeParams != nil {
			w.enterGeneric(stmt.Name.Name, stmt)
			break
		}
		w.enterLazy(stmt.Name.Name, "a type alias", stmt.Value)

	case *syntax.WhileStmt:
		w.expr(stmt.Cond)
		w.stmts(stmt.Body)
		w.stmts(stmt.Else)

	case *syntax.WithStmt:
		for _, item := range stmt.Items {
			w.expr(item.X)
			if item.Vars != nil {
				w.target(item.Vars)
			}
		}
		w.stmts(stmt.Body)

	default:
		panic(stmt)
	}
}

// enterGeneric creates the type parameter scope of a generic def,
// class or type alias.
func (w *walker) enterGeneric(name string, n syntax.Node) ScopeID {
	id := w.enter(AnnotationScope, "<generic parameters of "+name+">", generic{n})
	w.b.blocks[id].context = "the definition of a generic"
	return id
}

// enterLazy creates an annotation scope evaluating x.
func (w *walker) enterLazy(name, context string, x syntax.Expr) ScopeID {
	id := w.enter(AnnotationScope, name, lazy{x})
	w.b.blocks[id].context = context
	return id
}

// generic walks the type parameter scope of n, which encloses the
// scope of n itself.
func (w *walker) generic(n syntax.Node) {
	switch n := n.(type) {
	case *syntax.DefStmt:
		w.typeParams(n.TypeParams)
		for _, p := range n.Params {
			w.expr(p.Type)
		}
		w.expr(n.Returns)
		w.enter(FunctionScope, n.Name.Name, n)

	case *syntax.ClassStmt:
		w.typeParams(n.TypeParams)
		w.exprs(n.Bases)
		w.enter(ClassScope, n.Name.Name, n)

	case *syntax.TypeAliasStmt:
		w.typeParams(n.TypeParams)
		w.enterLazy(n.Name.Name, "a type alias", n.Value)
	}
}

// typeParams binds each type parameter. A bound is evaluated lazily,
// in an annotation scope named after the parameter.
func (w *walker) typeParams(params []*syntax.TypeParam) {
	for _, p := range params {
		w.assign(p.Name)
		if p.Bound != nil {
			w.enterLazy(p.Name.Name, "a TypeVar bound", p.Bound)
		}
	}
}

// pattern records the names bound by a case pattern.
// Class names and dotted value patterns are uses.
func (w *walker) pattern(p syntax.Pattern) {
	switch p := p.(type) {
	case *syntax.WildcardPattern:
		// binds nothing

	case *syntax.CapturePattern:
		w.assign(p.Name)

	case *syntax.ValuePattern:
		w.expr(p.X)

	case *syntax.SequencePattern:
		for _, elem := range p.Elems {
			w.pattern(elem)
		}

	case *syntax.StarPattern:
		if p.Name != nil {
			w.assign(p.Name)
		}

	case *syntax.MappingPattern:
		for i, key := range p.Keys {
			w.expr(key)
			w.pattern(p.Values[i])
		}
		if p.Rest != nil {
			w.assign(p.Rest)
		}

	case *syntax.ClassPattern:
		w.expr(p.Cls)
		for _, arg := range p.Args {
			w.pattern(arg)
		}

	case *syntax.KeywordPattern:
		w.pattern(p.Value)

	case *syntax.OrPattern:
		for _, alt := range p.Alts {
			w.pattern(alt)
		}

	case *syntax.AsPattern:
		w.pattern(p.Pattern)
		w.assign(p.Name)

	default:
		panic(p)
	}
}

// annotated records an annotated target. Only a simple name is bound
// by an annotation; x.f: int and x[i]: int merely evaluate x.
func (w *walker) annotated(lhs syntax.Expr) {
	if id, ok := lhs.(*syntax.Ident); ok {
		w.assign(id).annot = true
		return
	}
	w.expr(lhs)
}

func (w *walker) bindNamespace(name string, child ScopeID) {
	bk := w.b.blocks[w.scope].names[name]
	bk.spaces = append(bk.spaces, child)
}

// target records the names bound by an assignment, for, with, del
// or comprehension target.
func (w *walker) target(lhs syntax.Expr) {
	switch lhs := lhs.(type) {
	case *syntax.Ident:
		w.assign(lhs)
	case *syntax.TupleExpr:
		for _, x := range lhs.List {
			w.target(x)
		}
	case *syntax.ListExpr:
		for _, x := range lhs.List {
			w.target(x)
		}
	case *syntax.ParenExpr:
		w.target(lhs.X)
	case *syntax.UnaryExpr:
		if lhs.Op == "*" {
			w.target(lhs.X)
			return
		}
		w.expr(lhs)
	default:
		// x.f = ..., x[i] = ...
		w.expr(lhs)
	}
}

func (w *walker) exprs(list []syntax.Expr) {
	for _, x := range list {
		w.expr(x)
	}
}

func (w *walker) expr(e syntax.Expr) {
	switch e := e.(type) {
	case nil:
		// optional expression

	case *syntax.Ident:
		w.use(e)

	case *syntax.Literal:
		w.exprs(e.Interps)

	case *syntax.BinaryExpr:
		w.expr(e.X)
		w.expr(e.Y)

	case *syntax.CallExpr:
		w.expr(e.Fn)
		w.exprs(e.Args)

	case *syntax.Comprehension:
		w.comprehension(e)

	case *syntax.CondExpr:
		w.expr(e.True)
		w.expr(e.Cond)
		w.expr(e.False)

	case *syntax.DictEntry:
		w.expr(e.Key)
		w.expr(e.Value)

	case *syntax.DictExpr:
		w.exprs(e.List)

	case *syntax.DotExpr:
		w.expr(e.X)

	case *syntax.IndexExpr:
		w.expr(e.X)
		w.exprs(e.Index)

	case *syntax.KeywordArg:
		w.expr(e.Value)

	case *syntax.LambdaExpr:
		for _, p := range e.Params {
			w.expr(p.Default)
		}
		w.enter(FunctionScope, "lambda", e)

	case *syntax.ListExpr:
		w.exprs(e.List)

	case *syntax.NamedExpr:
		w.namedExpr(e)

	case *syntax.ParenExpr:
		w.expr(e.X)

	case *syntax.SetExpr:
		w.exprs(e.List)

	case *syntax.SliceExpr:
		w.expr(e.Lo)
		w.expr(e.Hi)
		w.expr(e.Step)

	case *syntax.TupleExpr:
		w.exprs(e.List)

	case *syntax.UnaryExpr:
		w.expr(e.X)

	case *syntax.YieldExpr:
		w.expr(e.X)

	default:
		panic(e)
	}
}

// comprehension records the first iterable in the current scope and
// queues the rest of the comprehension as a nested scope.
func (w *walker) comprehension(c *syntax.Comprehension) {
	first := c.Clauses[0].(*syntax.ForClause)
	if !AllowComprehensionScopes {
		w.expr(first.X)
		w.target(first.Vars)
		w.clauses(c.Clauses[1:])
		w.expr(c.Body)
		return
	}
	w.expr(first.X)
	w.enter(ComprehensionScope, c.Kind.String(), c)
}

func (w *walker) clauses(clauses []syntax.Node) {
	for _, clause := range clauses {
		switch clause := clause.(type) {
		case *syntax.ForClause:
			w.target(clause.Vars)
			w.expr(clause.X)
		case *syntax.IfClause:
			w.expr(clause.Cond)
		}
	}
}

// namedExpr records an assignment expression. Within a comprehension
// the name is bound in the nearest enclosing scope that is not a
// comprehension, and is implicitly nonlocal (or, at module level,
// global) in the comprehension itself.
func (w *walker) namedExpr(e *syntax.NamedExpr) {
	target := w.scope
	for w.b.blocks[target].kind == ComprehensionScope {
		target = w.b.blocks[target].parent
	}
	if blk := w.b.blocks[target]; blk.kind == AnnotationScope {
		w.b.errorf(w.scope, e.OpPos, e.Name.Name,
			"named expression cannot be used within %s", blk.context)
		w.expr(e.X)
		return
	}
	if target == w.scope {
		w.assign(e.Name)
		w.expr(e.X)
		return
	}

	switch w.b.blocks[target].kind {
	case ClassScope:
		w.b.errorf(w.scope, e.OpPos, e.Name.Name,
			"assignment expression within a comprehension cannot be used in a class body")
		w.assign(e.Name)
	case ModuleScope:
		w.b.infer(w.scope, globalEvent, e.Name.Name, e.OpPos)
		w.b.event(target, assignEvent, e.Name.Name, e.Name.NamePos)
	default:
		w.b.infer(w.scope, nonlocalEvent, e.Name.Name, e.OpPos)
		w.b.event(target, assignEvent, e.Name.Name, e.Name.NamePos)
	}
	w.expr(e.X)
}

func unparen(e syntax.Expr) syntax.Expr {
	if p, ok := e.(*syntax.ParenExpr); ok {
		return unparen(p.X)
	}
	return e
}
