// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a Python parser and abstract syntax tree.
//
// The tree is deliberately small: it records exactly the constructs that
// introduce scopes, bind names, or refer to them, plus enough of the
// remaining expression grammar to reach every identifier.
package syntax // import "go.pyscope.net/syntax"

// A Node is a node in a Python syntax tree.
type Node interface {
	// Span returns the start and end position of the node.
	Span() (start, end Position)
}

// Start returns the start position of the node.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the node.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a Python source file.
type File struct {
	Path  string
	Stmts []Stmt
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is a Python statement.
type Stmt interface {
	Node
	stmt()
}

func (*AssertStmt) stmt()    {}
func (*AssignStmt) stmt()    {}
func (*BranchStmt) stmt()    {}
func (*ClassStmt) stmt()     {}
func (*DefStmt) stmt()       {}
func (*DelStmt) stmt()       {}
func (*ExprStmt) stmt()      {}
func (*ForStmt) stmt()       {}
func (*GlobalStmt) stmt()    {}
func (*IfStmt) stmt()        {}
func (*ImportStmt) stmt()    {}
func (*MatchStmt) stmt()     {}
func (*NonlocalStmt) stmt()  {}
func (*RaiseStmt) stmt()     {}
func (*ReturnStmt) stmt()    {}
func (*TryStmt) stmt()       {}
func (*TypeAliasStmt) stmt() {}
func (*WhileStmt) stmt()     {}
func (*WithStmt) stmt()      {}

// bodyEnd returns the end of the last statement of body,
// or def if body is empty (possible only after error recovery).
func bodyEnd(body []Stmt, def Position) Position {
	if len(body) == 0 {
		return def
	}
	return End(body[len(body)-1])
}

// An AssignStmt represents an assignment:
//
//	x = 0
//	x = y = 0
//	x, y = y, x
//	x += 1
//	x: int = 1
//	x: int
//
// Op is "=" for plain and chained assignments, ":" for a bare
// annotation, and the operator (e.g. "+=") for augmented assignments.
type AssignStmt struct {
	OpPos   Position
	Op      string
	Targets []Expr // one per "=" in a chain; exactly one otherwise
	Type    Expr   // optional annotation
	RHS     Expr   // nil for a bare annotation
}

func (x *AssignStmt) Span() (start, end Position) {
	start = Start(x.Targets[0])
	switch {
	case x.RHS != nil:
		end = End(x.RHS)
	case x.Type != nil:
		end = End(x.Type)
	default:
		end = End(x.Targets[len(x.Targets)-1])
	}
	return start, end
}

// A DefStmt represents a function definition.
type DefStmt struct {
	Def        Position // position of DEF (or ASYNC) token
	Async      bool
	Decorators []Expr
	Name       *Ident
	TypeParams []*TypeParam // def f[T](...)
	Params     []*Param
	Returns    Expr // optional annotation
	Body       []Stmt
}

func (x *DefStmt) Span() (start, end Position) {
	return x.Def, bodyEnd(x.Body, x.Name.NamePos)
}

// ParamKind distinguishes the forms of a formal parameter.
type ParamKind uint8

const (
	PlainParam   ParamKind = iota // x, x=1, x: int
	VarArgsParam                  // *args
	KwArgsParam                   // **kwargs
)

var paramKindNames = [...]string{
	PlainParam:   "plain",
	VarArgsParam: "varargs",
	KwArgsParam:  "kwargs",
}

func (k ParamKind) String() string { return paramKindNames[k] }

// A Param is one formal parameter of a def or lambda.
// The bare "*" and "/" separators are not represented.
type Param struct {
	Kind    ParamKind
	Star    Position // position of "*" or "**" (VarArgs and KwArgs only)
	Name    *Ident
	Type    Expr // optional annotation
	Default Expr // optional
}

func (x *Param) Span() (start, end Position) {
	start = x.Name.NamePos
	if x.Star.IsValid() {
		start = x.Star
	}
	_, end = x.Name.Span()
	if x.Default != nil {
		end = End(x.Default)
	} else if x.Type != nil {
		end = End(x.Type)
	}
	return start, end
}

// A TypeParam is one type parameter of a generic def, class or type
// alias: T, T: Bound, *Ts (VarArgsParam) or **P (KwArgsParam).
type TypeParam struct {
	Kind  ParamKind
	Star  Position // position of "*" or "**"
	Name  *Ident
	Bound Expr // optional bound or tuple of constraints
}

func (x *TypeParam) Span() (start, end Position) {
	start, end = x.Name.Span()
	if x.Star.IsValid() {
		start = x.Star
	}
	if x.Bound != nil {
		end = End(x.Bound)
	}
	return start, end
}

// A TypeAliasStmt declares a type alias: type Name[TypeParams] = Value.
// Value is evaluated lazily, in a scope of its own.
type TypeAliasStmt struct {
	Type       Position
	Name       *Ident
	TypeParams []*TypeParam // optional
	Value      Expr
}

func (x *TypeAliasStmt) Span() (start, end Position) {
	return x.Type, End(x.Value)
}

// A ClassStmt represents a class definition.
type ClassStmt struct {
	Class      Position
	Decorators []Expr
	Name       *Ident
	TypeParams []*TypeParam // class C[T]
	Bases      []Expr       // including *KeywordArg (e.g. metaclass=M) and splats
	Body       []Stmt
}

func (x *ClassStmt) Span() (start, end Position) {
	return x.Class, bodyEnd(x.Body, x.Name.NamePos)
}

// A GlobalStmt declares names global: global x, y.
type GlobalStmt struct {
	Global Position
	Names  []*Ident
}

func (x *GlobalStmt) Span() (start, end Position) {
	return x.Global, End(x.Names[len(x.Names)-1])
}

// A NonlocalStmt declares names bound in an enclosing function: nonlocal x, y.
type NonlocalStmt struct {
	Nonlocal Position
	Names    []*Ident
}

func (x *NonlocalStmt) Span() (start, end Position) {
	return x.Nonlocal, End(x.Names[len(x.Names)-1])
}

// An ImportStmt represents
//
//	import a.b, c as d
//	from .m import x, y as z
//	from m import *
//
// From is set for the second and third forms; Module and Level then
// describe the source module (Level counts leading dots).
type ImportStmt struct {
	Import Position // IMPORT or FROM
	From   bool
	Module string
	Level  int
	Names  []*ImportName
	Star   bool // from m import *
	End    Position
}

func (x *ImportStmt) Span() (start, end Position) {
	return x.Import, x.End
}

// An ImportName is one imported item: Name [as Alias].
// For a plain import, Name may be dotted.
type ImportName struct {
	NamePos Position
	Name    string
	Alias   *Ident // optional
}

func (x *ImportName) Span() (start, end Position) {
	if x.Alias != nil {
		return x.NamePos, End(x.Alias)
	}
	return x.NamePos, x.NamePos.add(x.Name)
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

// An IfStmt is a conditional: If Cond: True; else: False.
// 'elif' is desugared into a chain of IfStmts.
type IfStmt struct {
	If      Position // IF or ELIF
	Cond    Expr
	True    []Stmt
	ElsePos Position // ELSE or ELIF
	False   []Stmt   // optional
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.False
	if body == nil {
		body = x.True
	}
	return x.If, bodyEnd(body, End(x.Cond))
}

// A ForStmt represents a loop: for Vars in X: Body [else: Else].
type ForStmt struct {
	For   Position
	Async bool
	Vars  Expr // name, or tuple of names
	X     Expr
	Body  []Stmt
	Else  []Stmt // optional
}

func (x *ForStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Body
	}
	return x.For, bodyEnd(body, End(x.X))
}

// A WhileStmt represents a loop: while Cond: Body [else: Else].
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  []Stmt
	Else  []Stmt // optional
}

func (x *WhileStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Body
	}
	return x.While, bodyEnd(body, End(x.Cond))
}

// A TryStmt represents try/except/else/finally.
type TryStmt struct {
	Try      Position
	Body     []Stmt
	Handlers []*ExceptClause
	Else     []Stmt // optional
	Finally  []Stmt // optional
}

func (x *TryStmt) Span() (start, end Position) {
	end = bodyEnd(x.Body, x.Try)
	if n := len(x.Handlers); n > 0 {
		_, end = x.Handlers[n-1].Span()
	}
	end = bodyEnd(x.Else, end)
	end = bodyEnd(x.Finally, end)
	return x.Try, end
}

// An ExceptClause is one handler of a TryStmt: except Type as Name: Body.
type ExceptClause struct {
	Except Position
	Group  bool   // except*
	Type   Expr   // optional
	Name   *Ident // optional
	Body   []Stmt
}

func (x *ExceptClause) Span() (start, end Position) {
	return x.Except, bodyEnd(x.Body, x.Except)
}

// A WithStmt represents a context manager block: with Items: Body.
type WithStmt struct {
	With  Position
	Async bool
	Items []*WithItem
	Body  []Stmt
}

func (x *WithStmt) Span() (start, end Position) {
	return x.With, bodyEnd(x.Body, x.With)
}

// A WithItem is one item of a WithStmt: X [as Vars].
type WithItem struct {
	X    Expr
	Vars Expr // optional
}

func (x *WithItem) Span() (start, end Position) {
	start, end = x.X.Span()
	if x.Vars != nil {
		end = End(x.Vars)
	}
	return start, end
}

// A DelStmt deletes its targets: del x, y[i].
type DelStmt struct {
	Del     Position
	Targets []Expr
}

func (x *DelStmt) Span() (start, end Position) {
	return x.Del, End(x.Targets[len(x.Targets)-1])
}

// A RaiseStmt raises an exception: raise [X [from Cause]].
type RaiseStmt struct {
	Raise Position
	X     Expr // optional
	Cause Expr // optional
}

func (x *RaiseStmt) Span() (start, end Position) {
	switch {
	case x.Cause != nil:
		end = End(x.Cause)
	case x.X != nil:
		end = End(x.X)
	default:
		end = x.Raise.add("raise")
	}
	return x.Raise, end
}

// An AssertStmt checks a condition: assert Cond [, Msg].
type AssertStmt struct {
	Assert Position
	Cond   Expr
	Msg    Expr // optional
}

func (x *AssertStmt) Span() (start, end Position) {
	if x.Msg != nil {
		return x.Assert, End(x.Msg)
	}
	return x.Assert, End(x.Cond)
}

// A BranchStmt changes the flow of control: break, continue, pass.
type BranchStmt struct {
	Token    string // = "break" | "continue" | "pass"
	TokenPos Position
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Token)
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return, x.Return.add("return")
	}
	return x.Return, End(x.Result)
}

// An Expr is a Python expression.
type Expr interface {
	Node
	expr()
}

func (*BinaryExpr) expr()    {}
func (*CallExpr) expr()      {}
func (*Comprehension) expr() {}
func (*CondExpr) expr()      {}
func (*DictEntry) expr()     {}
func (*DictExpr) expr()      {}
func (*DotExpr) expr()       {}
func (*Ident) expr()         {}
func (*IndexExpr) expr()     {}
func (*KeywordArg) expr()    {}
func (*LambdaExpr) expr()    {}
func (*ListExpr) expr()      {}
func (*Literal) expr()       {}
func (*NamedExpr) expr()     {}
func (*ParenExpr) expr()     {}
func (*SetExpr) expr()       {}
func (*SliceExpr) expr()     {}
func (*TupleExpr) expr()     {}
func (*UnaryExpr) expr()     {}
func (*YieldExpr) expr()     {}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// LiteralKind distinguishes the kinds of Literal.
type LiteralKind uint8

const (
	StringLit LiteralKind = iota // including bytes and f-strings
	NumberLit
	TrueLit
	FalseLit
	NoneLit
	EllipsisLit
)

// A Literal represents a literal string, number or constant.
// An f-string records the expressions of its replacement fields in Interps.
type Literal struct {
	Kind     LiteralKind
	TokenPos Position
	EndPos   Position
	Raw      string // uninterpreted text
	Interps  []Expr
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.EndPos
}

// A CallExpr represents a function call expression: Fn(Args).
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr // positional, *KeywordArg, or *UnaryExpr splats
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	return Start(x.Fn), x.Rparen.add(")")
}

// A KeywordArg represents a named argument Name=Value in a call or class
// header. Name is not an identifier reference.
type KeywordArg struct {
	NamePos Position
	Name    string
	Value   Expr
}

func (x *KeywordArg) Span() (start, end Position) {
	return x.NamePos, End(x.Value)
}

// A DotExpr represents a field or method selector: X.Name.
type DotExpr struct {
	X    Expr
	Dot  Position
	Name *Ident
}

func (x *DotExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Name)
}

// ComprehensionKind distinguishes the four comprehension forms.
type ComprehensionKind uint8

const (
	ListComp ComprehensionKind = iota // [x for ...]
	SetComp                           // {x for ...}
	DictComp                          // {k: v for ...}
	GenExpr                           // (x for ...)
)

var comprehensionNames = [...]string{
	ListComp: "listcomp",
	SetComp:  "setcomp",
	DictComp: "dictcomp",
	GenExpr:  "genexpr",
}

func (k ComprehensionKind) String() string { return comprehensionNames[k] }

// A Comprehension represents a list, set or dict comprehension
// or a generator expression.
type Comprehension struct {
	Kind    ComprehensionKind
	Lbrack  Position
	Body    Expr   // *DictEntry for DictComp
	Clauses []Node // = *ForClause | *IfClause; the first is a *ForClause
	Rbrack  Position
}

func (x *Comprehension) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A ForClause represents a for clause in a comprehension: for Vars in X.
type ForClause struct {
	For   Position
	Async bool
	Vars  Expr // name, or tuple of names
	In    Position
	X     Expr
}

func (x *ForClause) Span() (start, end Position) {
	return x.For, End(x.X)
}

// An IfClause represents an if clause in a comprehension: if Cond.
type IfClause struct {
	If   Position
	Cond Expr
}

func (x *IfClause) Span() (start, end Position) {
	return x.If, End(x.Cond)
}

// A DictExpr represents a dictionary literal: { List }.
type DictExpr struct {
	Lbrace Position
	List   []Expr // *DictEntry or **splat *UnaryExpr
	Rbrace Position
}

func (x *DictExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A DictEntry represents a dictionary entry: Key: Value.
// Used only within a DictExpr or a DictComp.
type DictEntry struct {
	Key   Expr
	Colon Position
	Value Expr
}

func (x *DictEntry) Span() (start, end Position) {
	return Start(x.Key), End(x.Value)
}

// A LambdaExpr represents an inline function abstraction.
type LambdaExpr struct {
	Lambda Position
	Params []*Param
	Body   Expr
}

func (x *LambdaExpr) Span() (start, end Position) {
	return x.Lambda, End(x.Body)
}

// A ListExpr represents a list literal: [ List ].
type ListExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
}

func (x *ListExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A SetExpr represents a set literal: { List }.
type SetExpr struct {
	Lbrace Position
	List   []Expr
	Rbrace Position
}

func (x *SetExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// CondExpr represents the conditional: True if Cond else False.
type CondExpr struct {
	If      Position
	Cond    Expr
	True    Expr
	ElsePos Position
	False   Expr
}

func (x *CondExpr) Span() (start, end Position) {
	return Start(x.True), End(x.False)
}

// A TupleExpr represents a tuple literal: (List).
type TupleExpr struct {
	Lparen Position // optional (e.g. in x, y = 0, 1), but required if List is empty
	List   []Expr
	Rparen Position
}

func (x *TupleExpr) Span() (start, end Position) {
	if x.Lparen.IsValid() {
		return x.Lparen, x.Rparen.add(")")
	}
	return Start(x.List[0]), End(x.List[len(x.List)-1])
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// A NamedExpr represents an assignment expression: Name := X.
type NamedExpr struct {
	Name  *Ident
	OpPos Position
	X     Expr
}

func (x *NamedExpr) Span() (start, end Position) {
	return x.Name.NamePos, End(x.X)
}

// A YieldExpr represents yield [X] or yield from X.
type YieldExpr struct {
	Yield Position
	From  bool
	X     Expr // optional unless From
}

func (x *YieldExpr) Span() (start, end Position) {
	if x.X == nil {
		return x.Yield, x.Yield.add("yield")
	}
	return x.Yield, End(x.X)
}

// A UnaryExpr represents a unary expression: Op X.
// Op is one of "-", "+", "~", "not", "await", and, for starred
// expressions and splats, "*" or "**".
type UnaryExpr struct {
	OpPos Position
	Op    string
	X     Expr
}

func (x *UnaryExpr) Span() (start, end Position) {
	return x.OpPos, End(x.X)
}

// A BinaryExpr represents a binary expression: X Op Y.
// Chained comparisons a < b < c are represented as ((a < b) < c).
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    string
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Y)
}

// A SliceExpr represents one slice element of a subscript: Lo:Hi:Step.
type SliceExpr struct {
	Lbound       Position // position of the first token of the slice
	Lo, Hi, Step Expr     // all optional
	Rbound       Position // end of the slice
}

func (x *SliceExpr) Span() (start, end Position) {
	return x.Lbound, x.Rbound
}

// An IndexExpr represents a subscript: X[Index...].
// Index holds one element for x[i], several for x[i, j],
// and *SliceExpr elements for slices.
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Index  []Expr
	Rbrack Position
}

func (x *IndexExpr) Span() (start, end Position) {
	return Start(x.X), x.Rbrack.add("]")
}
