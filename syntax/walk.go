// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)

	case *ExprStmt:
		Walk(n.X, f)

	case *BranchStmt:
		// no-op

	case *IfStmt:
		Walk(n.Cond, f)
		walkStmts(n.True, f)
		walkStmts(n.False, f)

	case *AssignStmt:
		walkExprs(n.Targets, f)
		walkOpt(n.Type, f)
		walkOpt(n.RHS, f)

	case *DefStmt:
		walkExprs(n.Decorators, f)
		Walk(n.Name, f)
		walkTypeParams(n.TypeParams, f)
		for _, param := range n.Params {
			Walk(param, f)
		}
		walkOpt(n.Returns, f)
		walkStmts(n.Body, f)

	case *Param:
		Walk(n.Name, f)
		walkOpt(n.Type, f)
		walkOpt(n.Default, f)

	case *ClassStmt:
		walkExprs(n.Decorators, f)
		Walk(n.Name, f)
		walkTypeParams(n.TypeParams, f)
		walkExprs(n.Bases, f)
		walkStmts(n.Body, f)

	case *TypeParam:
		Walk(n.Name, f)
		walkOpt(n.Bound, f)

	case *TypeAliasStmt:
		Walk(n.Name, f)
		walkTypeParams(n.TypeParams, f)
		Walk(n.Value, f)

	case *MatchStmt:
		Walk(n.Subject, f)
		for _, c := range n.Cases {
			Walk(c, f)
		}

	case *CaseClause:
		Walk(n.Pattern, f)
		walkOpt(n.Guard, f)
		walkStmts(n.Body, f)

	case *WildcardPattern:
		// no-op

	case *CapturePattern:
		Walk(n.Name, f)

	case *ValuePattern:
		Walk(n.X, f)

	case *SequencePattern:
		walkPatterns(n.Elems, f)

	case *StarPattern:
		if n.Name != nil {
			Walk(n.Name, f)
		}

	case *MappingPattern:
		for i, key := range n.Keys {
			Walk(key, f)
			Walk(n.Values[i], f)
		}
		if n.Rest != nil {
			Walk(n.Rest, f)
		}

	case *ClassPattern:
		Walk(n.Cls, f)
		walkPatterns(n.Args, f)

	case *KeywordPattern:
		Walk(n.Value, f)

	case *OrPattern:
		walkPatterns(n.Alts, f)

	case *AsPattern:
		Walk(n.Pattern, f)
		Walk(n.Name, f)

	case *GlobalStmt:
		for _, id := range n.Names {
			Walk(id, f)
		}

	case *NonlocalStmt:
		for _, id := range n.Names {
			Walk(id, f)
		}

	case *ImportStmt:
		for _, name := range n.Names {
			Walk(name, f)
		}

	case *ImportName:
		if n.Alias != nil {
			Walk(n.Alias, f)
		}

	case *ForStmt:
		Walk(n.Vars, f)
		Walk(n.X, f)
		walkStmts(n.Body, f)
		walkStmts(n.Else, f)

	case *WhileStmt:
		Walk(n.Cond, f)
		walkStmts(n.Body, f)
		walkStmts(n.Else, f)

	case *TryStmt:
		walkStmts(n.Body, f)
		for _, h := range n.Handlers {
			Walk(h, f)
		}
		walkStmts(n.Else, f)
		walkStmts(n.Finally, f)

	case *ExceptClause:
		walkOpt(n.Type, f)
		if n.Name != nil {
			Walk(n.Name, f)
		}
		walkStmts(n.Body, f)

	case *WithStmt:
		for _, item := range n.Items {
			Walk(item, f)
		}
		walkStmts(n.Body, f)

	case *WithItem:
		Walk(n.X, f)
		walkOpt(n.Vars, f)

	case *DelStmt:
		walkExprs(n.Targets, f)

	case *RaiseStmt:
		walkOpt(n.X, f)
		walkOpt(n.Cause, f)

	case *AssertStmt:
		Walk(n.Cond, f)
		walkOpt(n.Msg, f)

	case *ReturnStmt:
		walkOpt(n.Result, f)

	case *Ident:
		// no-op

	case *Literal:
		walkExprs(n.Interps, f) // f-string replacement fields

	case *ListExpr:
		walkExprs(n.List, f)

	case *SetExpr:
		walkExprs(n.List, f)

	case *CondExpr:
		Walk(n.True, f)
		Walk(n.Cond, f)
		Walk(n.False, f)

	case *IndexExpr:
		Walk(n.X, f)
		walkExprs(n.Index, f)

	case *SliceExpr:
		walkOpt(n.Lo, f)
		walkOpt(n.Hi, f)
		walkOpt(n.Step, f)

	case *Comprehension:
		Walk(n.Body, f)
		for _, c := range n.Clauses {
			Walk(c, f)
		}

	case *IfClause:
		Walk(n.Cond, f)

	case *ForClause:
		Walk(n.Vars, f)
		Walk(n.X, f)

	case *TupleExpr:
		walkExprs(n.List, f)

	case *ParenExpr:
		Walk(n.X, f)

	case *DictExpr:
		walkExprs(n.List, f)

	case *DictEntry:
		Walk(n.Key, f)
		Walk(n.Value, f)

	case *UnaryExpr:
		walkOpt(n.X, f)

	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *DotExpr:
		Walk(n.X, f)
		Walk(n.Name, f)

	case *CallExpr:
		Walk(n.Fn, f)
		walkExprs(n.Args, f)

	case *KeywordArg:
		Walk(n.Value, f)

	case *LambdaExpr:
		for _, param := range n.Params {
			Walk(param, f)
		}
		Walk(n.Body, f)

	case *NamedExpr:
		Walk(n.Name, f)
		Walk(n.X, f)

	case *YieldExpr:
		walkOpt(n.X, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}

func walkExprs(exprs []Expr, f func(Node) bool) {
	for _, x := range exprs {
		Walk(x, f)
	}
}

func walkOpt(x Expr, f func(Node) bool) {
	if x != nil {
		Walk(x, f)
	}
}

func walkPatterns(patterns []Pattern, f func(Node) bool) {
	for _, p := range patterns {
		Walk(p, f)
	}
}

func walkTypeParams(params []*TypeParam, f func(Node) bool) {
	for _, p := range params {
		Walk(p, f)
	}
}
