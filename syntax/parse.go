// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file converts the concrete syntax tree produced by the
// tree-sitter Python grammar into the abstract syntax tree of this package.
// Conversion errors are reported by panicking with an Error,
// which Parse recovers.

import (
	"fmt"
	"io"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// An Error describes the nature and position of a syntax error.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string,
// []byte, or io.Reader.
// If src == nil, Parse parses the file specified by filename.
//
// A syntax error is reported as an Error at the position of the
// first erroneous or missing token.
func Parse(filename string, src interface{}) (f *File, err error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}

	sp := parsers.Get()
	defer parsers.Put(sp)

	tree := sp.Parse(data, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: tree-sitter returned no tree", filename)
	}
	defer tree.Close()

	c := &converter{src: data, file: &filename}
	defer func() {
		if e := recover(); e != nil {
			serr, ok := e.(Error)
			if !ok {
				panic(e)
			}
			f, err = nil, serr
		}
	}()

	root := tree.RootNode()
	if root.HasError() {
		c.checkErrors(root)
	}
	f = &File{Path: filename}
	for _, child := range c.children(root) {
		f.Stmts = append(f.Stmts, c.stmt(child))
	}
	return f, nil
}

// ParseExpr parses a Python expression.
// The input must consist of a single expression,
// optionally followed by a newline.
func ParseExpr(filename string, src interface{}) (Expr, error) {
	f, err := Parse(filename, src)
	if err != nil {
		return nil, err
	}
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*ExprStmt); ok {
			return stmt.X, nil
		}
	}
	pos := MakePosition(&f.Path, 1, 1)
	if len(f.Stmts) > 0 {
		pos = Start(f.Stmts[0])
	}
	return nil, Error{pos, "got statement, want expression"}
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case io.Reader:
		data, err := io.ReadAll(src)
		if err != nil {
			err = &os.PathError{Op: "read", Path: filename, Err: err}
			return nil, err
		}
		return data, nil
	case nil:
		return os.ReadFile(filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

type converter struct {
	src  []byte
	file *string
}

func (c *converter) pos(n *sitter.Node) Position {
	p := n.StartPosition()
	return MakePosition(c.file, int32(p.Row)+1, int32(c.column(n.StartByte(), p.Column))+1)
}

func (c *converter) end(n *sitter.Node) Position {
	p := n.EndPosition()
	return MakePosition(c.file, int32(p.Row)+1, int32(c.column(n.EndByte(), p.Column))+1)
}

// column converts tree-sitter's byte column to a rune column.
func (c *converter) column(offset, col uint) int {
	line := c.src[offset-col : offset]
	return len([]rune(string(line)))
}

func (c *converter) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func (c *converter) errorf(n *sitter.Node, format string, args ...interface{}) {
	panic(Error{c.pos(n), fmt.Sprintf(format, args...)})
}

// checkErrors reports the first ERROR or MISSING node beneath n.
func (c *converter) checkErrors(n *sitter.Node) {
	if n.IsMissing() {
		c.errorf(n, "syntax error: missing %s", n.Kind())
	}
	if n.IsError() {
		c.errorf(n, "syntax error: unexpected %q", firstLine(c.text(n)))
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && (child.HasError() || child.IsMissing()) {
			c.checkErrors(child)
		}
	}
	c.errorf(n, "syntax error")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// children returns the named children of n, excluding extras
// such as comments and line continuations.
func (c *converter) children(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsExtra() {
			continue
		}
		out = append(out, child)
	}
	return out
}

// field returns the named field of n, or reports an error if absent.
func (c *converter) field(n *sitter.Node, name string) *sitter.Node {
	child := n.ChildByFieldName(name)
	if child == nil {
		c.errorf(n, "%s has no %s", n.Kind(), name)
	}
	return child
}

// token returns the first anonymous child of n whose text is tok, or nil.
func (c *converter) token(n *sitter.Node, tok string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Kind() == tok {
			return child
		}
	}
	return nil
}

// tokenPos returns the position of the anonymous child tok of n,
// or the zero Position if there is none.
func (c *converter) tokenPos(n *sitter.Node, tok string) Position {
	if t := c.token(n, tok); t != nil {
		return c.pos(t)
	}
	return Position{}
}

// hasToken reports whether n has an anonymous child tok (e.g. "async").
func (c *converter) hasToken(n *sitter.Node, tok string) bool {
	return c.token(n, tok) != nil
}

func sameNode(x, y *sitter.Node) bool {
	return x != nil && y != nil && x.StartByte() == y.StartByte() && x.EndByte() == y.EndByte() && x.Kind() == y.Kind()
}

// ---- statements ----

func (c *converter) block(n *sitter.Node) []Stmt {
	if n == nil {
		return nil
	}
	var stmts []Stmt
	for _, child := range c.children(n) {
		stmts = append(stmts, c.stmt(child))
	}
	return stmts
}

func (c *converter) stmt(n *sitter.Node) Stmt {
	switch n.Kind() {
	case "expression_statement":
		elems := c.children(n)
		if len(elems) == 1 {
			switch elems[0].Kind() {
			case "assignment", "augmented_assignment":
				return c.assign(elems[0])
			}
			return &ExprStmt{X: c.expr(elems[0])}
		}
		return &ExprStmt{X: &TupleExpr{List: c.exprs(elems)}}

	case "function_definition":
		return c.def(n, nil)

	case "class_definition":
		return c.class(n, nil)

	case "decorated_definition":
		var decorators []Expr
		for _, child := range c.children(n) {
			if child.Kind() == "decorator" {
				elems := c.children(child)
				if len(elems) != 1 {
					c.errorf(child, "malformed decorator")
				}
				decorators = append(decorators, c.expr(elems[0]))
			}
		}
		def := c.field(n, "definition")
		switch def.Kind() {
		case "function_definition":
			return c.def(def, decorators)
		case "class_definition":
			return c.class(def, decorators)
		}
		c.errorf(def, "cannot decorate %s", def.Kind())

	case "global_statement":
		return &GlobalStmt{Global: c.pos(n), Names: c.idents(n)}

	case "nonlocal_statement":
		return &NonlocalStmt{Nonlocal: c.pos(n), Names: c.idents(n)}

	case "return_statement":
		x := &ReturnStmt{Return: c.pos(n)}
		if elems := c.children(n); len(elems) > 0 {
			x.Result = c.expr(elems[0])
		}
		return x

	case "pass_statement", "break_statement", "continue_statement":
		return &BranchStmt{Token: strings.TrimSuffix(n.Kind(), "_statement"), TokenPos: c.pos(n)}

	case "if_statement":
		return c.ifStmt(n)

	case "for_statement":
		x := &ForStmt{
			For:   c.pos(n),
			Async: c.hasToken(n, "async"),
			Vars:  c.expr(c.field(n, "left")),
			X:     c.expr(c.field(n, "right")),
			Body:  c.block(c.field(n, "body")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			x.Else = c.block(c.field(alt, "body"))
		}
		return x

	case "while_statement":
		x := &WhileStmt{
			While: c.pos(n),
			Cond:  c.expr(c.field(n, "condition")),
			Body:  c.block(c.field(n, "body")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			x.Else = c.block(c.field(alt, "body"))
		}
		return x

	case "try_statement":
		x := &TryStmt{Try: c.pos(n), Body: c.block(c.field(n, "body"))}
		for _, child := range c.children(n) {
			switch child.Kind() {
			case "except_clause", "except_group_clause":
				x.Handlers = append(x.Handlers, c.except(child))
			case "else_clause":
				x.Else = c.block(c.field(child, "body"))
			case "finally_clause":
				x.Finally = c.lastBlock(child)
			}
		}
		return x

	case "with_statement":
		x := &WithStmt{With: c.pos(n), Async: c.hasToken(n, "async")}
		for _, child := range c.children(n) {
			if child.Kind() != "with_clause" {
				continue
			}
			for _, item := range c.children(child) {
				if item.Kind() == "with_item" {
					x.Items = append(x.Items, c.withItem(item))
				}
			}
		}
		x.Body = c.block(c.field(n, "body"))
		return x

	case "import_statement":
		x := &ImportStmt{Import: c.pos(n), End: c.end(n)}
		for _, child := range c.children(n) {
			x.Names = append(x.Names, c.importName(child))
		}
		return x

	case "import_from_statement", "future_import_statement":
		x := &ImportStmt{Import: c.pos(n), From: true, End: c.end(n)}
		module := n.ChildByFieldName("module_name")
		if n.Kind() == "future_import_statement" {
			x.Module = "__future__"
		} else if module != nil {
			name := c.text(module)
			trimmed := strings.TrimLeft(name, ".")
			x.Level = len(name) - len(trimmed)
			x.Module = trimmed
		}
		for _, child := range c.children(n) {
			if sameNode(child, module) {
				continue
			}
			if child.Kind() == "wildcard_import" {
				x.Star = true
				continue
			}
			x.Names = append(x.Names, c.importName(child))
		}
		return x

	case "delete_statement":
		x := &DelStmt{Del: c.pos(n)}
		for _, child := range c.children(n) {
			x.Targets = append(x.Targets, c.flatten(child)...)
		}
		if len(x.Targets) == 0 {
			c.errorf(n, "del with no targets")
		}
		return x

	case "raise_statement":
		x := &RaiseStmt{Raise: c.pos(n)}
		cause := n.ChildByFieldName("cause")
		for _, child := range c.children(n) {
			if sameNode(child, cause) {
				continue
			}
			x.X = c.expr(child)
			break
		}
		if cause != nil {
			x.Cause = c.expr(cause)
		}
		return x

	case "match_statement":
		return c.match(n)

	case "type_alias_statement":
		return c.typeAlias(n)

	case "assert_statement":
		elems := c.children(n)
		x := &AssertStmt{Assert: c.pos(n), Cond: c.expr(elems[0])}
		if len(elems) > 1 {
			x.Msg = c.expr(elems[1])
		}
		return x
	}
	c.errorf(n, "unsupported statement: %s", n.Kind())
	panic("unreachable")
}

func (c *converter) ifStmt(n *sitter.Node) *IfStmt {
	x := &IfStmt{
		If:   c.pos(n),
		Cond: c.expr(c.field(n, "condition")),
		True: c.block(c.field(n, "consequence")),
	}
	// Desugar elif chains into nested IfStmts.
	tail := x
	for _, child := range c.children(n) {
		switch child.Kind() {
		case "elif_clause":
			elif := &IfStmt{
				If:   c.pos(child),
				Cond: c.expr(c.field(child, "condition")),
				True: c.block(c.field(child, "consequence")),
			}
			tail.ElsePos = elif.If
			tail.False = []Stmt{elif}
			tail = elif
		case "else_clause":
			tail.ElsePos = c.pos(child)
			tail.False = c.block(c.field(child, "body"))
		}
	}
	return x
}

func (c *converter) except(n *sitter.Node) *ExceptClause {
	x := &ExceptClause{Except: c.pos(n), Group: n.Kind() == "except_group_clause"}
	var (
		exprs  []*sitter.Node
		sawAs  bool
		aliasN *sitter.Node
	)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch {
		case child == nil:
		case !child.IsNamed():
			if child.Kind() == "as" {
				sawAs = true
			}
		case child.IsExtra():
		case child.Kind() == "block":
			x.Body = c.block(child)
		case child.Kind() == "as_pattern":
			// Newer grammars: except E as e
			elems := c.children(child)
			exprs = append(exprs, elems[0])
			aliasN = child.ChildByFieldName("alias")
		case sawAs:
			aliasN = child
		default:
			exprs = append(exprs, child)
		}
	}
	if len(exprs) > 0 {
		x.Type = c.expr(exprs[0])
	}
	if aliasN != nil {
		alias := c.aliasTarget(aliasN)
		id, ok := alias.(*Ident)
		if !ok {
			c.errorf(aliasN, "except clause must bind a name")
		}
		x.Name = id
	}
	return x
}

func (c *converter) lastBlock(n *sitter.Node) []Stmt {
	var body []Stmt
	for _, child := range c.children(n) {
		if child.Kind() == "block" {
			body = c.block(child)
		}
	}
	return body
}

func (c *converter) withItem(n *sitter.Node) *WithItem {
	value := c.field(n, "value")
	item := &WithItem{}
	if value.Kind() == "as_pattern" {
		elems := c.children(value)
		item.X = c.expr(elems[0])
		if alias := value.ChildByFieldName("alias"); alias != nil {
			item.Vars = c.aliasTarget(alias)
		}
		return item
	}
	item.X = c.expr(value)
	if alias := n.ChildByFieldName("alias"); alias != nil {
		item.Vars = c.aliasTarget(alias)
	}
	return item
}

// aliasTarget converts the target of "as", unwrapping as_pattern_target.
func (c *converter) aliasTarget(n *sitter.Node) Expr {
	if n.Kind() == "as_pattern_target" {
		elems := c.children(n)
		if len(elems) != 1 {
			c.errorf(n, "malformed as target")
		}
		n = elems[0]
	}
	return c.expr(n)
}

func (c *converter) importName(n *sitter.Node) *ImportName {
	switch n.Kind() {
	case "dotted_name", "identifier":
		return &ImportName{NamePos: c.pos(n), Name: c.text(n)}
	case "aliased_import":
		name := c.field(n, "name")
		alias := c.field(n, "alias")
		return &ImportName{
			NamePos: c.pos(name),
			Name:    c.text(name),
			Alias:   &Ident{NamePos: c.pos(alias), Name: c.text(alias)},
		}
	}
	c.errorf(n, "unexpected %s in import", n.Kind())
	panic("unreachable")
}

func (c *converter) idents(n *sitter.Node) []*Ident {
	var ids []*Ident
	for _, child := range c.children(n) {
		if child.Kind() != "identifier" {
			c.errorf(child, "got %s, want identifier", child.Kind())
		}
		ids = append(ids, &Ident{NamePos: c.pos(child), Name: c.text(child)})
	}
	if len(ids) == 0 {
		c.errorf(n, "%s with no names", n.Kind())
	}
	return ids
}

func (c *converter) assign(n *sitter.Node) *AssignStmt {
	x := &AssignStmt{}
	if n.Kind() == "augmented_assignment" {
		op := c.field(n, "operator")
		x.OpPos = c.pos(op)
		x.Op = c.text(op)
		x.Targets = []Expr{c.expr(c.field(n, "left"))}
		x.RHS = c.expr(c.field(n, "right"))
		return x
	}
	// Chained assignments nest in the right operand: a = (b = 1).
	for {
		x.Targets = append(x.Targets, c.expr(c.field(n, "left")))
		if typ := n.ChildByFieldName("type"); typ != nil {
			x.Type = c.expr(typ)
		}
		right := n.ChildByFieldName("right")
		if x.Op == "" {
			if eq := c.token(n, "="); eq != nil {
				x.OpPos, x.Op = c.pos(eq), "="
			} else if colon := c.token(n, ":"); colon != nil {
				x.OpPos, x.Op = c.pos(colon), ":"
			}
		}
		if right == nil {
			return x
		}
		if right.Kind() == "assignment" {
			n = right
			continue
		}
		x.RHS = c.expr(right)
		return x
	}
}

func (c *converter) def(n *sitter.Node, decorators []Expr) *DefStmt {
	name := c.field(n, "name")
	x := &DefStmt{
		Def:        c.pos(n),
		Async:      c.hasToken(n, "async"),
		Decorators: decorators,
		Name:       &Ident{NamePos: c.pos(name), Name: c.text(name)},
		TypeParams: c.typeParams(n.ChildByFieldName("type_parameters")),
		Params:     c.params(n.ChildByFieldName("parameters")),
		Body:       c.block(c.field(n, "body")),
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		x.Returns = c.expr(ret)
	}
	return x
}

func (c *converter) class(n *sitter.Node, decorators []Expr) *ClassStmt {
	name := c.field(n, "name")
	x := &ClassStmt{
		Class:      c.pos(n),
		Decorators: decorators,
		Name:       &Ident{NamePos: c.pos(name), Name: c.text(name)},
		TypeParams: c.typeParams(n.ChildByFieldName("type_parameters")),
		Body:       c.block(c.field(n, "body")),
	}
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		x.Bases = c.args(bases)
	}
	return x
}

// typeParams converts the type_parameter list of a generic def, class
// or type alias. Each element is a type node holding an identifier,
// a splat_type (*Ts, **P) or a constrained_type (T: Bound).
func (c *converter) typeParams(n *sitter.Node) []*TypeParam {
	if n == nil {
		return nil
	}
	var params []*TypeParam
	for _, typ := range c.children(n) {
		elem := c.unwrapType(typ)
		switch elem.Kind() {
		case "identifier":
			params = append(params, &TypeParam{Name: c.ident(elem)})

		case "splat_type":
			kind := VarArgsParam
			if strings.HasPrefix(c.text(elem), "**") {
				kind = KwArgsParam
			}
			elems := c.children(elem)
			if len(elems) != 1 {
				c.errorf(elem, "malformed type parameter")
			}
			params = append(params, &TypeParam{Kind: kind, Star: c.pos(elem), Name: c.ident(elems[0])})

		case "constrained_type":
			elems := c.children(elem)
			if len(elems) != 2 {
				c.errorf(elem, "malformed type parameter")
			}
			params = append(params, &TypeParam{
				Name:  c.ident(c.unwrapType(elems[0])),
				Bound: c.expr(elems[1]),
			})

		default:
			c.errorf(elem, "unsupported type parameter: %s", elem.Kind())
		}
	}
	return params
}

// unwrapType returns the sole child of a type node.
func (c *converter) unwrapType(n *sitter.Node) *sitter.Node {
	if n.Kind() != "type" {
		return n
	}
	elems := c.children(n)
	if len(elems) != 1 {
		c.errorf(n, "malformed annotation")
	}
	return elems[0]
}

// typeAlias converts "type Name[TypeParams] = Value". The left side
// is a type holding an identifier or, with parameters, a generic_type.
func (c *converter) typeAlias(n *sitter.Node) *TypeAliasStmt {
	x := &TypeAliasStmt{Type: c.pos(n), Value: c.expr(c.field(n, "right"))}
	left := c.unwrapType(c.field(n, "left"))
	switch left.Kind() {
	case "identifier":
		x.Name = c.ident(left)
	case "generic_type":
		elems := c.children(left)
		if len(elems) != 2 {
			c.errorf(left, "malformed type alias")
		}
		x.Name = c.ident(elems[0])
		x.TypeParams = c.typeParams(elems[1])
	default:
		c.errorf(left, "cannot alias %s", left.Kind())
	}
	return x
}

func (c *converter) params(n *sitter.Node) []*Param {
	if n == nil {
		return nil
	}
	var params []*Param
	for _, child := range c.children(n) {
		switch child.Kind() {
		case "keyword_separator", "positional_separator":
			continue
		}
		params = append(params, c.param(child))
	}
	return params
}

func (c *converter) param(n *sitter.Node) *Param {
	switch n.Kind() {
	case "identifier":
		return &Param{Name: c.ident(n)}

	case "default_parameter":
		return &Param{
			Name:    c.ident(c.field(n, "name")),
			Default: c.expr(c.field(n, "value")),
		}

	case "typed_default_parameter":
		return &Param{
			Name:    c.ident(c.field(n, "name")),
			Type:    c.expr(c.field(n, "type")),
			Default: c.expr(c.field(n, "value")),
		}

	case "typed_parameter":
		// The name is the sole unnamed-field child:
		// identifier, list_splat_pattern or dictionary_splat_pattern.
		typ := c.field(n, "type")
		for _, child := range c.children(n) {
			if sameNode(child, typ) {
				continue
			}
			p := c.param(child)
			p.Type = c.expr(typ)
			return p
		}

	case "list_splat_pattern", "dictionary_splat_pattern":
		kind := VarArgsParam
		if n.Kind() == "dictionary_splat_pattern" {
			kind = KwArgsParam
		}
		elems := c.children(n)
		if len(elems) != 1 || elems[0].Kind() != "identifier" {
			c.errorf(n, "malformed %s", n.Kind())
		}
		return &Param{Kind: kind, Star: c.pos(n), Name: c.ident(elems[0])}
	}
	c.errorf(n, "unsupported parameter: %s", n.Kind())
	panic("unreachable")
}

func (c *converter) ident(n *sitter.Node) *Ident {
	if n.Kind() != "identifier" {
		c.errorf(n, "got %s, want identifier", n.Kind())
	}
	return &Ident{NamePos: c.pos(n), Name: c.text(n)}
}

// ---- expressions ----

func (c *converter) exprs(nodes []*sitter.Node) []Expr {
	exprs := make([]Expr, 0, len(nodes))
	for _, n := range nodes {
		exprs = append(exprs, c.expr(n))
	}
	return exprs
}

// flatten converts an expression_list into its elements
// and any other expression into a singleton.
func (c *converter) flatten(n *sitter.Node) []Expr {
	if n.Kind() == "expression_list" {
		return c.exprs(c.children(n))
	}
	return []Expr{c.expr(n)}
}

// args converts an argument_list (call arguments or class bases).
func (c *converter) args(n *sitter.Node) []Expr {
	if n.Kind() == "generator_expression" {
		return []Expr{c.expr(n)}
	}
	var args []Expr
	for _, child := range c.children(n) {
		if child.Kind() == "keyword_argument" {
			name := c.field(child, "name")
			args = append(args, &KeywordArg{
				NamePos: c.pos(name),
				Name:    c.text(name),
				Value:   c.expr(c.field(child, "value")),
			})
			continue
		}
		args = append(args, c.expr(child))
	}
	return args
}

func (c *converter) literal(n *sitter.Node, kind LiteralKind) *Literal {
	return &Literal{Kind: kind, TokenPos: c.pos(n), EndPos: c.end(n), Raw: c.text(n)}
}

// interpolations collects the replacement-field expressions of an f-string,
// including those nested in format specifiers.
func (c *converter) interpolations(n *sitter.Node, out []Expr) []Expr {
	for _, child := range c.children(n) {
		if k := child.Kind(); k == "interpolation" || k == "format_expression" {
			if x := child.ChildByFieldName("expression"); x != nil {
				out = append(out, c.flatten(x)...)
			}
			if spec := child.ChildByFieldName("format_specifier"); spec != nil {
				out = c.interpolations(spec, out)
			}
			continue
		}
		out = c.interpolations(child, out)
	}
	return out
}

func (c *converter) comprehension(n *sitter.Node, kind ComprehensionKind) *Comprehension {
	x := &Comprehension{
		Kind:   kind,
		Lbrack: c.pos(n),
		Body:   c.expr(c.field(n, "body")),
		Rbrack: c.end(n),
	}
	x.Rbrack.Col-- // position of the closing bracket
	for _, child := range c.children(n) {
		switch child.Kind() {
		case "for_in_clause":
			x.Clauses = append(x.Clauses, &ForClause{
				For:   c.pos(child),
				Async: c.hasToken(child, "async"),
				Vars:  c.expr(c.field(child, "left")),
				In:    c.tokenPos(child, "in"),
				X:     c.expr(c.field(child, "right")),
			})
		case "if_clause":
			elems := c.children(child)
			x.Clauses = append(x.Clauses, &IfClause{If: c.pos(child), Cond: c.expr(elems[0])})
		}
	}
	if len(x.Clauses) == 0 {
		c.errorf(n, "comprehension has no for clause")
	}
	if _, ok := x.Clauses[0].(*ForClause); !ok {
		c.errorf(n, "comprehension must start with a for clause")
	}
	return x
}

func (c *converter) slice(n *sitter.Node) *SliceExpr {
	x := &SliceExpr{Lbound: c.pos(n), Rbound: c.end(n)}
	colons := 0
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch {
		case child == nil || child.IsExtra():
		case !child.IsNamed():
			if child.Kind() == ":" {
				colons++
			}
		default:
			e := c.expr(child)
			switch colons {
			case 0:
				x.Lo = e
			case 1:
				x.Hi = e
			default:
				x.Step = e
			}
		}
	}
	return x
}

func (c *converter) expr(n *sitter.Node) Expr {
	switch n.Kind() {
	case "identifier":
		return c.ident(n)

	case "integer", "float":
		return c.literal(n, NumberLit)
	case "true":
		return c.literal(n, TrueLit)
	case "false":
		return c.literal(n, FalseLit)
	case "none":
		return c.literal(n, NoneLit)
	case "ellipsis":
		return c.literal(n, EllipsisLit)
	case "string", "concatenated_string":
		lit := c.literal(n, StringLit)
		lit.Interps = c.interpolations(n, nil)
		return lit

	case "parenthesized_expression":
		elems := c.children(n)
		if len(elems) != 1 {
			c.errorf(n, "malformed parenthesized expression")
		}
		return &ParenExpr{Lparen: c.pos(n), X: c.expr(elems[0]), Rparen: c.closer(n)}

	case "tuple", "tuple_pattern":
		return &TupleExpr{Lparen: c.pos(n), List: c.exprs(c.children(n)), Rparen: c.closer(n)}

	case "expression_list", "pattern_list":
		return &TupleExpr{List: c.exprs(c.children(n))}

	case "list", "list_pattern":
		return &ListExpr{Lbrack: c.pos(n), List: c.exprs(c.children(n)), Rbrack: c.closer(n)}

	case "set":
		return &SetExpr{Lbrace: c.pos(n), List: c.exprs(c.children(n)), Rbrace: c.closer(n)}

	case "dictionary":
		x := &DictExpr{Lbrace: c.pos(n), Rbrace: c.closer(n)}
		for _, child := range c.children(n) {
			x.List = append(x.List, c.expr(child))
		}
		return x

	case "pair":
		return &DictEntry{
			Key:   c.expr(c.field(n, "key")),
			Colon: c.tokenPos(n, ":"),
			Value: c.expr(c.field(n, "value")),
		}

	case "list_comprehension":
		return c.comprehension(n, ListComp)
	case "set_comprehension":
		return c.comprehension(n, SetComp)
	case "dictionary_comprehension":
		return c.comprehension(n, DictComp)
	case "generator_expression":
		return c.comprehension(n, GenExpr)

	case "call":
		args := c.field(n, "arguments")
		return &CallExpr{
			Fn:     c.expr(c.field(n, "function")),
			Lparen: c.pos(args),
			Args:   c.args(args),
			Rparen: c.closer(args),
		}

	case "attribute":
		attr := c.field(n, "attribute")
		obj := c.field(n, "object")
		return &DotExpr{X: c.expr(obj), Dot: c.end(obj), Name: c.ident(attr)}

	case "subscript":
		value := c.field(n, "value")
		x := &IndexExpr{X: c.expr(value), Rbrack: c.closer(n)}
		x.Lbrack = c.tokenPos(n, "[")
		for _, child := range c.children(n) {
			if sameNode(child, value) {
				continue
			}
			if child.Kind() == "slice" {
				x.Index = append(x.Index, c.slice(child))
				continue
			}
			x.Index = append(x.Index, c.expr(child))
		}
		return x

	case "binary_operator", "boolean_operator":
		op := c.field(n, "operator")
		return &BinaryExpr{
			X:     c.expr(c.field(n, "left")),
			OpPos: c.pos(op),
			Op:    c.text(op),
			Y:     c.expr(c.field(n, "right")),
		}

	case "comparison_operator":
		// a < b < c  =>  ((a < b) < c); the operator is the source text
		// between operands, so that "not in" and "is not" survive.
		operands := c.children(n)
		var x Expr = c.expr(operands[0])
		for i := 1; i < len(operands); i++ {
			prev, cur := operands[i-1], operands[i]
			op := strings.Join(strings.Fields(string(c.src[prev.EndByte():cur.StartByte()])), " ")
			x = &BinaryExpr{X: x, OpPos: c.end(prev), Op: op, Y: c.expr(cur)}
		}
		return x

	case "not_operator":
		return &UnaryExpr{OpPos: c.pos(n), Op: "not", X: c.expr(c.field(n, "argument"))}

	case "unary_operator":
		op := c.field(n, "operator")
		return &UnaryExpr{OpPos: c.pos(op), Op: c.text(op), X: c.expr(c.field(n, "argument"))}

	case "await":
		elems := c.children(n)
		return &UnaryExpr{OpPos: c.pos(n), Op: "await", X: c.expr(elems[0])}

	case "list_splat", "list_splat_pattern", "dictionary_splat", "dictionary_splat_pattern":
		op := "*"
		if strings.HasPrefix(n.Kind(), "dictionary") {
			op = "**"
		}
		elems := c.children(n)
		if len(elems) != 1 {
			c.errorf(n, "malformed %s", n.Kind())
		}
		return &UnaryExpr{OpPos: c.pos(n), Op: op, X: c.expr(elems[0])}

	case "conditional_expression":
		elems := c.children(n)
		if len(elems) != 3 {
			c.errorf(n, "malformed conditional expression")
		}
		x := &CondExpr{
			True:  c.expr(elems[0]),
			Cond:  c.expr(elems[1]),
			False: c.expr(elems[2]),
		}
		x.If = c.tokenPos(n, "if")
		x.ElsePos = c.tokenPos(n, "else")
		return x

	case "lambda":
		return &LambdaExpr{
			Lambda: c.pos(n),
			Params: c.params(n.ChildByFieldName("parameters")),
			Body:   c.expr(c.field(n, "body")),
		}

	case "named_expression":
		name := c.field(n, "name")
		return &NamedExpr{
			Name:  c.ident(name),
			OpPos: c.tokenPos(n, ":="),
			X:     c.expr(c.field(n, "value")),
		}

	case "yield":
		x := &YieldExpr{Yield: c.pos(n), From: c.hasToken(n, "from")}
		if elems := c.children(n); len(elems) > 0 {
			x.X = c.expr(elems[0])
		}
		return x

	case "type":
		// annotation wrapper
		return c.expr(c.unwrapType(n))

	case "generic_type":
		// list[int] in an annotation
		elems := c.children(n)
		if len(elems) != 2 {
			c.errorf(n, "malformed generic type")
		}
		params := elems[1]
		return &IndexExpr{
			X:      c.ident(elems[0]),
			Lbrack: c.pos(params),
			Index:  c.exprs(c.children(params)),
			Rbrack: c.closer(params),
		}

	case "union_type":
		elems := c.children(n)
		if len(elems) != 2 {
			c.errorf(n, "malformed union type")
		}
		return &BinaryExpr{
			X:     c.expr(elems[0]),
			OpPos: c.tokenPos(n, "|"),
			Op:    "|",
			Y:     c.expr(elems[1]),
		}

	case "member_type":
		elems := c.children(n)
		if len(elems) != 2 {
			c.errorf(n, "malformed member type")
		}
		return &DotExpr{X: c.expr(elems[0]), Dot: c.end(elems[0]), Name: c.ident(elems[1])}

	case "splat_type":
		op := "*"
		if strings.HasPrefix(c.text(n), "**") {
			op = "**"
		}
		elems := c.children(n)
		if len(elems) != 1 {
			c.errorf(n, "malformed %s", n.Kind())
		}
		return &UnaryExpr{OpPos: c.pos(n), Op: op, X: c.ident(elems[0])}

	case "keyword_argument":
		name := c.field(n, "name")
		return &KeywordArg{NamePos: c.pos(name), Name: c.text(name), Value: c.expr(c.field(n, "value"))}
	}
	c.errorf(n, "unsupported expression: %s", n.Kind())
	panic("unreachable")
}

// closer returns the position of the last character of n,
// its closing bracket for bracketed forms.
func (c *converter) closer(n *sitter.Node) Position {
	p := c.end(n)
	p.Col--
	return p
}

// ---- patterns ----

func (c *converter) match(n *sitter.Node) *MatchStmt {
	body := c.field(n, "body")
	var subjects []*sitter.Node
	for _, child := range c.children(n) {
		if !sameNode(child, body) {
			subjects = append(subjects, child)
		}
	}
	if len(subjects) == 0 {
		c.errorf(n, "match has no subject")
	}
	x := &MatchStmt{Match: c.pos(n)}
	if len(subjects) == 1 && !c.hasToken(n, ",") {
		x.Subject = c.expr(subjects[0])
	} else {
		x.Subject = &TupleExpr{List: c.exprs(subjects)}
	}
	for _, child := range c.children(body) {
		if child.Kind() == "case_clause" {
			x.Cases = append(x.Cases, c.caseClause(child))
		}
	}
	return x
}

func (c *converter) caseClause(n *sitter.Node) *CaseClause {
	x := &CaseClause{Case: c.pos(n), Body: c.block(c.field(n, "consequence"))}
	var patterns []Pattern
	for _, child := range c.children(n) {
		if child.Kind() == "case_pattern" {
			patterns = append(patterns, c.pattern(child))
		}
	}
	if len(patterns) == 0 {
		c.errorf(n, "case has no pattern")
	}
	if len(patterns) == 1 && !c.hasToken(n, ",") {
		x.Pattern = patterns[0]
	} else {
		x.Pattern = &SequencePattern{Elems: patterns}
	}
	if guard := n.ChildByFieldName("guard"); guard != nil {
		elems := c.children(guard)
		if len(elems) != 1 {
			c.errorf(guard, "malformed guard")
		}
		x.Guard = c.expr(elems[0])
	}
	return x
}

// subpatterns converts the children of n, after skipping its first
// skip named children, as patterns. The grammar leaves the wildcard _
// and the sign of a negative number as anonymous tokens.
func (c *converter) subpatterns(n *sitter.Node, skip int) []Pattern {
	var (
		out   []Pattern
		minus *sitter.Node
	)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch {
		case child == nil || child.IsExtra():
		case !child.IsNamed():
			switch child.Kind() {
			case "-":
				minus = child
			case "_":
				out = append(out, &WildcardPattern{Underscore: c.pos(child)})
			}
		case skip > 0:
			skip--
		default:
			p := c.pattern(child)
			if v, ok := p.(*ValuePattern); ok && minus != nil {
				v.X = &UnaryExpr{OpPos: c.pos(minus), Op: "-", X: v.X}
			}
			minus = nil
			out = append(out, p)
		}
	}
	return out
}

func (c *converter) pattern(n *sitter.Node) Pattern {
	switch n.Kind() {
	case "case_pattern":
		ps := c.subpatterns(n, 0)
		if len(ps) != 1 {
			c.errorf(n, "malformed case pattern")
		}
		return ps[0]

	case "dotted_name":
		ids := c.children(n)
		if len(ids) == 1 {
			id := c.ident(ids[0])
			if id.Name == "_" {
				return &WildcardPattern{Underscore: id.NamePos}
			}
			return &CapturePattern{Name: id}
		}
		return &ValuePattern{X: c.dotted(n)}

	case "string", "concatenated_string", "integer", "float", "true", "false", "none":
		return &ValuePattern{X: c.expr(n)}

	case "complex_pattern":
		return &ValuePattern{X: c.literal(n, NumberLit)}

	case "as_pattern":
		elems := c.children(n)
		if len(elems) != 2 || elems[1].Kind() != "identifier" {
			c.errorf(n, "malformed as pattern")
		}
		return &AsPattern{Pattern: c.pattern(elems[0]), Name: c.ident(elems[1])}

	case "union_pattern":
		return &OrPattern{Alts: c.subpatterns(n, 0)}

	case "list_pattern", "tuple_pattern":
		x := &SequencePattern{Lbrack: c.pos(n), Rbrack: c.closer(n)}
		for _, child := range c.children(n) {
			x.Elems = append(x.Elems, c.pattern(child))
		}
		return x

	case "splat_pattern":
		x := &StarPattern{Star: c.pos(n)}
		if elems := c.children(n); len(elems) == 1 {
			x.Name = c.ident(elems[0])
		}
		if strings.HasPrefix(c.text(n), "**") {
			c.errorf(n, "** pattern outside a mapping pattern")
		}
		return x

	case "dict_pattern":
		return c.mappingPattern(n)

	case "class_pattern":
		elems := c.children(n)
		x := &ClassPattern{Cls: c.dotted(elems[0]), Rparen: c.closer(n)}
		for _, child := range elems[1:] {
			x.Args = append(x.Args, c.pattern(child))
		}
		return x

	case "keyword_pattern":
		elems := c.children(n)
		value := c.subpatterns(n, 1)
		if len(elems) == 0 || len(value) != 1 {
			c.errorf(n, "malformed keyword pattern")
		}
		return &KeywordPattern{NamePos: c.pos(elems[0]), Name: c.text(elems[0]), Value: value[0]}
	}
	c.errorf(n, "unsupported pattern: %s", n.Kind())
	panic("unreachable")
}

// mappingPattern converts {key: pattern, ..., **rest}. Keys are fields
// named "key", each a value pattern, possibly after a "-" token.
func (c *converter) mappingPattern(n *sitter.Node) *MappingPattern {
	x := &MappingPattern{Lbrace: c.pos(n), Rbrace: c.closer(n)}
	var minus *sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.IsExtra() {
			continue
		}
		switch n.FieldNameForChild(uint32(i)) {
		case "key":
			if !child.IsNamed() {
				if child.Kind() == "-" {
					minus = child
				}
				continue
			}
			v, ok := c.pattern(child).(*ValuePattern)
			if !ok {
				c.errorf(child, "mapping pattern keys must be literals or dotted names")
			}
			key := v.X
			if minus != nil {
				key = &UnaryExpr{OpPos: c.pos(minus), Op: "-", X: key}
				minus = nil
			}
			x.Keys = append(x.Keys, key)
		case "value":
			x.Values = append(x.Values, c.pattern(child))
		default:
			if child.Kind() == "splat_pattern" {
				if elems := c.children(child); len(elems) == 1 {
					x.Rest = c.ident(elems[0])
				}
			}
		}
	}
	if len(x.Keys) != len(x.Values) {
		c.errorf(n, "malformed mapping pattern")
	}
	return x
}

// dotted converts a dotted_name to an Ident or a chain of DotExprs.
func (c *converter) dotted(n *sitter.Node) Expr {
	if n.Kind() != "dotted_name" {
		return c.expr(n)
	}
	ids := c.children(n)
	var x Expr = c.ident(ids[0])
	for i := 1; i < len(ids); i++ {
		x = &DotExpr{X: x, Dot: c.end(ids[i-1]), Name: c.ident(ids[i])}
	}
	return x
}
