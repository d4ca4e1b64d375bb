// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.pyscope.net/internal/chunkedfile"
	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

func setOptions(src string) {
	symtable.AllowComprehensionScopes = !option(src, "nocomprehensionscopes")
	symtable.RecordPassThrough = !option(src, "nopassthrough")
}

func option(chunk, name string) bool {
	return strings.Contains(chunk, "option:"+name)
}

func TestViolations(t *testing.T) {
	defer setOptions("")
	filename := filepath.Join("testdata", "violations.py")
	for _, chunk := range chunkedfile.Read(filename, t) {
		f, err := syntax.Parse(filename, chunk.Source)
		if err != nil {
			t.Error(err)
			continue
		}

		setOptions(chunk.Source)

		if _, err := symtable.Build(f, filename, symtable.Exec); err != nil {
			for _, v := range err.(symtable.ErrorList) {
				chunk.GotError(int(v.Pos.Line), v.Msg)
			}
		}
		chunk.Done()
	}
}

// build parses and builds src, failing the test on any error.
func build(t *testing.T, src string) *symtable.Table {
	t.Helper()
	f, err := syntax.Parse("test.py", src)
	if err != nil {
		t.Fatal(err)
	}
	table, err := symtable.Build(f, "test.py", symtable.Exec)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func find(t *testing.T, table *symtable.Table, path string) *symtable.Scope {
	t.Helper()
	s, err := table.Find(path)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// classes maps each name of s to its class.
func classes(s *symtable.Scope) map[string]string {
	m := make(map[string]string)
	for _, sym := range s.Symbols() {
		m[sym.Name()] = sym.Class().String()
	}
	return m
}

func TestClassify(t *testing.T) {
	for _, test := range []struct {
		desc, src string
		want      map[string]map[string]string // scope path -> name -> class
	}{
		{
			desc: "closure",
			src: `
def outer():
    x = 1
    def inner():
        return x
    return inner
`,
			want: map[string]map[string]string{
				"":            {"outer": "local"},
				"outer":       {"x": "cell", "inner": "local"},
				"outer.inner": {"x": "free"},
			},
		},
		{
			desc: "assignment makes local even after a use",
			src: `
x = 0
def f():
    print(x)
    x = 1
`,
			want: map[string]map[string]string{
				"":  {"x": "local", "f": "local"},
				"f": {"print": "global", "x": "local"},
			},
		},
		{
			desc: "class scopes are skipped",
			src: `
def f():
    x = 1
    class C:
        x = 2
        def m(self):
            return x
`,
			want: map[string]map[string]string{
				"f":     {"x": "cell", "C": "local"},
				"f.C":   {"x": "local", "m": "local"},
				"f.C.m": {"self": "parameter", "x": "free"},
			},
		},
		{
			desc: "class binding is invisible to methods",
			src: `
class C:
    y = 1
    def m(self):
        return y
`,
			want: map[string]map[string]string{
				"":    {"C": "local"},
				"C":   {"y": "local", "m": "local"},
				"C.m": {"self": "parameter", "y": "global"},
			},
		},
		{
			desc: "pass-through",
			src: `
def a():
    v = 1
    def b():
        def c():
            return v
        return c
    return b
`,
			want: map[string]map[string]string{
				"a":     {"v": "cell", "b": "local"},
				"a.b":   {"c": "local", "v": "free"},
				"a.b.c": {"v": "free"},
			},
		},
		{
			desc: "captured parameter",
			src: `
def f(n):
    return lambda: n
`,
			want: map[string]map[string]string{
				"f":        {"n": "cell"},
				"f.lambda": {"n": "free"},
			},
		},
		{
			desc: "global declaration",
			src: `
def f():
    global y
    y = 1
`,
			want: map[string]map[string]string{
				"":  {"f": "local", "y": "global_explicit"},
				"f": {"y": "global_explicit"},
			},
		},
		{
			desc: "global in an enclosing function hides nothing further out",
			src: `
def f():
    global x
    def g():
        return x
`,
			want: map[string]map[string]string{
				"f":   {"x": "global_explicit", "g": "local"},
				"f.g": {"x": "global"},
			},
		},
		{
			desc: "nonlocal",
			src: `
def f():
    n = 0
    def inc():
        nonlocal n
        n += 1
    return inc
`,
			want: map[string]map[string]string{
				"f":     {"n": "cell", "inc": "local"},
				"f.inc": {"n": "free"},
			},
		},
		{
			desc: "comprehension",
			src: `
xs = [y * k for y in range(3) if y]
`,
			want: map[string]map[string]string{
				"":         {"xs": "local", "range": "global"},
				"listcomp": {".0": "parameter", "y": "local", "k": "global"},
			},
		},
		{
			desc: "comprehension in a function",
			src: `
def f(k, rows):
    return {r: k for r in rows}
`,
			want: map[string]map[string]string{
				"f":          {"k": "cell", "rows": "parameter"},
				"f.dictcomp": {".0": "parameter", "r": "local", "k": "free"},
			},
		},
		{
			desc: "assignment expression in a comprehension",
			src: `
def f(data):
    if any([(hit := x) > 0 for x in data]):
        return hit
`,
			want: map[string]map[string]string{
				"f":          {"data": "parameter", "any": "global", "hit": "cell"},
				"f.listcomp": {".0": "parameter", "x": "local", "hit": "free"},
			},
		},
		{
			desc: "assignment expression at module level",
			src: `
ys = [(last := v) for v in range(3)]
`,
			want: map[string]map[string]string{
				"":         {"ys": "local", "range": "global", "last": "local"},
				"listcomp": {".0": "parameter", "v": "local", "last": "global_explicit"},
			},
		},
		{
			desc: "assignment expression to a name declared global",
			src: `
def f():
    global h
    [(h := 1) for _ in r]
`,
			want: map[string]map[string]string{
				"":           {"f": "local", "h": "global_explicit"},
				"f":          {"h": "global_explicit", "r": "global"},
				"f.listcomp": {".0": "parameter", "_": "local", "h": "global_explicit"},
			},
		},
		{
			desc: "match patterns",
			src: `
def f(p):
    match p:
        case Point(x=0, y=yy) as q if q:
            return yy
        case [_, *rest]:
            return rest
        case {"k": v, **kw}:
            return v, kw
        case Color.RED:
            pass
`,
			want: map[string]map[string]string{
				"f": {
					"p": "parameter", "Point": "global", "yy": "local", "q": "local",
					"rest": "local", "v": "local", "kw": "local", "Color": "global",
				},
			},
		},
		{
			desc: "generic function",
			src: `
def f[T](x: T, y=d) -> T:
    return T
`,
			want: map[string]map[string]string{
				"":                            {"f": "local", "d": "global"},
				"<generic parameters of f>":   {"T": "cell"},
				"<generic parameters of f>.f": {"x": "parameter", "y": "parameter", "T": "free"},
			},
		},
		{
			desc: "type alias",
			src: `
type Pair[K: Base] = tuple[K, V]
type N = int
`,
			want: map[string]map[string]string{
				"":                                  {"Pair": "local", "N": "local"},
				"<generic parameters of Pair>":      {"K": "cell"},
				"<generic parameters of Pair>.K":    {"Base": "global"},
				"<generic parameters of Pair>.Pair": {"tuple": "global", "K": "free", "V": "global"},
				"N":                                 {"int": "global"},
			},
		},
		{
			desc: "imports",
			src: `
import os.path
from m import a as b, c
def f():
    import json
    return json, os
`,
			want: map[string]map[string]string{
				"":  {"os": "local", "b": "local", "c": "local", "f": "local"},
				"f": {"json": "local", "os": "global"},
			},
		},
		{
			desc: "targets",
			src: `
def f():
    for i, (j, *k) in g():
        pass
    with open(p) as fh:
        pass
    try:
        pass
    except E as e:
        pass
    del d
    a.b = c[i]
`,
			want: map[string]map[string]string{
				"f": {
					"i": "local", "j": "local", "k": "local", "g": "global",
					"open": "global", "p": "global", "fh": "local",
					"E": "global", "e": "local", "d": "local",
					"a": "global", "c": "global",
				},
			},
		},
		{
			desc: "defaults and decorators are evaluated outside",
			src: `
def f():
    d = 1
    @dec(d)
    def g(x=d, *args, y: T = d, **kw) -> R:
        return x
`,
			want: map[string]map[string]string{
				"f":   {"d": "local", "dec": "global", "g": "local", "T": "global", "R": "global"},
				"f.g": {"x": "parameter", "args": "parameter", "y": "parameter", "kw": "parameter"},
			},
		},
	} {
		table := build(t, test.src)
		for path, want := range test.want {
			s, err := table.Find(path)
			if err != nil {
				t.Errorf("%s: %v", test.desc, err)
				continue
			}
			if diff := cmp.Diff(want, classes(s)); diff != "" {
				t.Errorf("%s: scope %q (-want +got):\n%s", test.desc, path, diff)
			}
		}
	}
}

func TestIdentifiers(t *testing.T) {
	table := build(t, `
import sys

def f(a, b):
    return a + b

class C:
    pass

x = f(sys.argv, 2)
`)
	if got, want := table.Identifiers(), []string{"sys", "f", "C", "x"}; !cmp.Equal(got, want) {
		t.Errorf("Identifiers() = %q, want %q", got, want)
	}
	params, err := table.ChildParameters(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b"}; !cmp.Equal(params, want) {
		t.Errorf("ChildParameters(0) = %q, want %q", params, want)
	}
	params, err = table.ChildParameters(1)
	if err != nil {
		t.Fatal(err)
	}
	if params != nil {
		t.Errorf("ChildParameters(1) = %q, want nil for a class", params)
	}
	for _, name := range []string{"a", "b"} {
		sym, err := find(t, table, "f").Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if sym.Class() != symtable.Parameter || !sym.IsParameter() || !sym.IsReferenced() {
			t.Errorf("%s = %v, want referenced parameter", name, sym)
		}
	}
}

func TestCapturedParameterKeepsFlag(t *testing.T) {
	table := build(t, "def f(n):\n    return lambda: n\n")
	sym, err := find(t, table, "f").Lookup("n")
	if err != nil {
		t.Fatal(err)
	}
	if !sym.IsCell() || !sym.IsParameter() || !sym.IsLocal() {
		t.Errorf("n = %v, want cell parameter", sym)
	}
}

func TestGlobalSurfacesInModule(t *testing.T) {
	table := build(t, "def f():\n    global y\n    y = 1\n")
	sym, err := table.Root().Lookup("y")
	if err != nil {
		t.Fatal(err)
	}
	if sym.Class() != symtable.GlobalExplicit || !sym.IsDeclaredGlobal() || sym.IsAssigned() {
		t.Errorf("module y = %v, want unassigned global_explicit", sym)
	}
	inner, err := find(t, table, "f").Lookup("y")
	if err != nil {
		t.Fatal(err)
	}
	if want := symtable.Assigned | symtable.DeclaredGlobal; inner.Flags() != want {
		t.Errorf("f.y flags = %v, want %v", inner.Flags(), want)
	}
}

func TestNonlocalWithoutBinding(t *testing.T) {
	src := `
def f():
    def g():
        nonlocal z
        z = 1
`
	f, err := syntax.Parse("test.py", src)
	if err != nil {
		t.Fatal(err)
	}
	table, err := symtable.Build(f, "test.py", symtable.Exec)
	list, ok := err.(symtable.ErrorList)
	if !ok || len(list) != 1 {
		t.Fatalf("Build error = %v, want one violation", err)
	}
	v := list[0]
	if v.Msg != "no binding for nonlocal 'z' found" || v.Name != "z" || v.ScopeName != "g" || v.Pos.Line != 4 {
		t.Errorf("violation = %+v", v)
	}
	if got := v.Error(); got != "test.py:4:18: no binding for nonlocal 'z' found" {
		t.Errorf("Error() = %q", got)
	}
	g := find(t, table, "f.g")
	if _, err := g.Lookup("z"); !errors.Is(err, symtable.ErrNotFound) {
		t.Errorf("Lookup(z) error = %v, want ErrNotFound", err)
	}
	if scope, _ := table.Scope(v.Scope); scope != g {
		t.Errorf("violation scope = %v, want %v", scope, g)
	}
}

func TestAssignmentExpressionRebindsGlobal(t *testing.T) {
	table := build(t, `
def f():
    global h
    [(h := 1) for _ in r]
`)
	sym, err := find(t, table, "f.listcomp").Lookup("h")
	if err != nil {
		t.Fatal(err)
	}
	if !sym.IsDeclaredGlobal() || sym.IsDeclaredNonlocal() || !sym.IsGlobal() {
		t.Errorf("h = %v, want a declared global", sym)
	}
}

func TestClassPassesFreeToMethods(t *testing.T) {
	table := build(t, `
def f():
    x = 1
    class C:
        x = 2
        def m(self):
            return x
`)
	sym, err := find(t, table, "f.C").Lookup("x")
	if err != nil {
		t.Fatal(err)
	}
	if sym.Class() != symtable.Local || sym.Flags()&symtable.FreeInClass == 0 {
		t.Errorf("C.x = %v, want local with free_in_class", sym)
	}
	if got, want := find(t, table, "f.C").Methods(), []string{"m"}; !cmp.Equal(got, want) {
		t.Errorf("Methods() = %q, want %q", got, want)
	}
}

func TestGenericScopes(t *testing.T) {
	table := build(t, `
class C[T](Base[T]):
    def m[U](self, u: U) -> T:
        pass
`)
	generic := find(t, table, "<generic parameters of C>")
	if generic.Kind() != symtable.AnnotationScope || !generic.IsOptimized() {
		t.Errorf("%v: kind %v, optimized %t", generic, generic.Kind(), generic.IsOptimized())
	}
	c := find(t, table, "<generic parameters of C>.C")
	if got, want := c.Methods(), []string{"m"}; !cmp.Equal(got, want) {
		t.Errorf("Methods() = %q, want %q", got, want)
	}
	if got, want := classes(generic), map[string]string{"T": "cell", "Base": "global"}; !cmp.Equal(got, want) {
		t.Errorf("%v (-want +got):\n%s", generic, cmp.Diff(want, got))
	}
	sym, err := table.Root().Lookup("C")
	if err != nil {
		t.Fatal(err)
	}
	if spaces := sym.Namespaces(); len(spaces) != 1 || spaces[0] != generic {
		t.Errorf("C namespaces = %v, want [%v]", spaces, generic)
	}
}

func TestPassThroughOption(t *testing.T) {
	defer setOptions("")
	src := `
def a():
    v = 1
    def b():
        def c():
            return v
`
	for _, record := range []bool{true, false} {
		symtable.RecordPassThrough = record
		table := build(t, src)
		got := find(t, table, "a.b").Identifiers()
		want := []string{"c"}
		if record {
			want = append(want, "v")
		}
		if !cmp.Equal(got, want) {
			t.Errorf("RecordPassThrough=%t: b identifiers = %q, want %q", record, got, want)
		}
		if sym, err := find(t, table, "a").Lookup("v"); err != nil || !sym.IsCell() {
			t.Errorf("RecordPassThrough=%t: a.v = %v, %v; want cell", record, sym, err)
		}
	}
}

func TestComprehensionScopesOption(t *testing.T) {
	defer setOptions("")
	symtable.AllowComprehensionScopes = false
	table := build(t, "xs = [y for y in range(3) if y]\n")
	if got, want := table.Identifiers(), []string{"xs", "range", "y"}; !cmp.Equal(got, want) {
		t.Errorf("Identifiers() = %q, want %q", got, want)
	}
	if table.Root().HasChildren() {
		t.Errorf("comprehension created a scope: %v", table.Root().Children())
	}
}

func TestQueryErrors(t *testing.T) {
	table := build(t, `
def outer():
    def inner():
        pass
`)
	if _, err := table.Child(1); !errors.Is(err, symtable.ErrIndexOutOfBounds) {
		t.Errorf("Child(1) error = %v, want ErrIndexOutOfBounds", err)
	}
	if _, err := table.Child(-1); !errors.Is(err, symtable.ErrIndexOutOfBounds) {
		t.Errorf("Child(-1) error = %v, want ErrIndexOutOfBounds", err)
	}
	if _, err := table.ChildParameters(3); !errors.Is(err, symtable.ErrIndexOutOfBounds) {
		t.Errorf("ChildParameters(3) error = %v, want ErrIndexOutOfBounds", err)
	}
	if _, err := table.Scope(99); !errors.Is(err, symtable.ErrIndexOutOfBounds) {
		t.Errorf("Scope(99) error = %v, want ErrIndexOutOfBounds", err)
	}
	if _, err := table.Root().Lookup("nope"); !errors.Is(err, symtable.ErrNotFound) {
		t.Errorf("Lookup(nope) error = %v, want ErrNotFound", err)
	}
	if _, err := table.Find("outer.missing"); !errors.Is(err, symtable.ErrNotFound) {
		t.Errorf("Find error = %v, want ErrNotFound", err)
	}

	inner := find(t, table, "outer.inner")
	if inner.Parent().Name() != "outer" || inner.Parent().Parent() != table.Root() || table.Root().Parent() != nil {
		t.Errorf("bad parent chain for %v", inner)
	}
	if !inner.IsNested() || find(t, table, "outer").IsNested() {
		t.Errorf("IsNested: inner=%t outer=%t", inner.IsNested(), find(t, table, "outer").IsNested())
	}
	if params := inner.Parameters(); params == nil || len(params) != 0 {
		t.Errorf("Parameters() = %#v, want empty non-nil", params)
	}
	if table.Root().Parameters() != nil {
		t.Errorf("module has parameters")
	}
}

func TestScopeTree(t *testing.T) {
	table := build(t, `
def f():
    g = lambda: [x for x in ()]
    class C:
        def m(self): pass

def h(): pass
`)
	var got []string
	for _, s := range table.Scopes() {
		got = append(got, s.Kind().String()+":"+s.Name())
	}
	want := []string{
		"module:top",
		"function:f",
		"function:lambda",
		"comprehension:listcomp",
		"class:C",
		"function:m",
		"function:h",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preorder scopes (-want +got):\n%s", diff)
	}
	for i, s := range table.Scopes() {
		if s.ID() != symtable.ScopeID(i) {
			t.Errorf("scope %v has ID %d at index %d", s, s.ID(), i)
		}
	}
	if table.Len() != len(want) || table.Root().Name() != "top" || table.Root().Kind() != symtable.ModuleScope {
		t.Errorf("bad root or length: %v, %d", table.Root(), table.Len())
	}
	if c := find(t, table, "f.C"); c.Line() != 4 || c.IsOptimized() {
		t.Errorf("C: line %d, optimized %t", c.Line(), c.IsOptimized())
	}
}

func TestNamespaces(t *testing.T) {
	table := build(t, `
def f(): pass
def f(): pass
class K: pass
`)
	f, err := table.Root().Lookup("f")
	if err != nil {
		t.Fatal(err)
	}
	if spaces := f.Namespaces(); len(spaces) != 2 || spaces[0].Line() != 2 || spaces[1].Line() != 3 {
		t.Errorf("f namespaces = %v", spaces)
	}
	if _, err := f.Namespace(); err == nil {
		t.Errorf("Namespace() of a doubly bound name succeeded")
	}
	k, err := table.Root().Lookup("K")
	if err != nil {
		t.Fatal(err)
	}
	if ns, err := k.Namespace(); err != nil || ns.Kind() != symtable.ClassScope {
		t.Errorf("K.Namespace() = %v, %v", ns, err)
	}
}

func TestEvalMode(t *testing.T) {
	for _, test := range []struct {
		src     string
		wantErr string
	}{
		{"x + 1\n", ""},
		{"x = 1\n", "eval mode requires a single expression"},
		{"x\ny\n", "eval mode requires a single expression"},
	} {
		f, err := syntax.Parse("eval.py", test.src)
		if err != nil {
			t.Fatal(err)
		}
		table, err := symtable.Build(f, "eval.py", symtable.Eval)
		if table == nil || table.Mode() != symtable.Eval {
			t.Fatalf("Build(%q) returned a bad table", test.src)
		}
		var got string
		if err != nil {
			got = err.(symtable.ErrorList)[0].Msg
		}
		if got != test.wantErr {
			t.Errorf("Build(%q) violation = %q, want %q", test.src, got, test.wantErr)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []symtable.Mode{symtable.Exec, symtable.Eval, symtable.Single} {
		got, err := symtable.ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := symtable.ParseMode("compile"); err == nil {
		t.Errorf("ParseMode(compile) succeeded")
	}
}

// TestHandBuiltTree builds a table from a tree constructed without the
// parser, as a client holding its own syntax tree would.
func TestHandBuiltTree(t *testing.T) {
	file := new(string)
	*file = "built.py"
	pos := func(line, col int32) syntax.Position { return syntax.MakePosition(file, line, col) }
	ident := func(name string, line, col int32) *syntax.Ident {
		return &syntax.Ident{NamePos: pos(line, col), Name: name}
	}
	// def f(a):
	//     return g(a)
	f := &syntax.File{
		Path: "built.py",
		Stmts: []syntax.Stmt{
			&syntax.DefStmt{
				Def:    pos(1, 1),
				Name:   ident("f", 1, 5),
				Params: []*syntax.Param{{Name: ident("a", 1, 7)}},
				Body: []syntax.Stmt{
					&syntax.ReturnStmt{
						Return: pos(2, 5),
						Result: &syntax.CallExpr{
							Fn:     ident("g", 2, 12),
							Lparen: pos(2, 13),
							Args:   []syntax.Expr{ident("a", 2, 14)},
							Rparen: pos(2, 15),
						},
					},
				},
			},
		},
	}
	table, err := symtable.Build(f, "built.py", symtable.Exec)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"a": "parameter", "g": "global"}
	if diff := cmp.Diff(want, classes(find(t, table, "f"))); diff != "" {
		t.Errorf("f (-want +got):\n%s", diff)
	}
}

func TestDeterminism(t *testing.T) {
	const src = `
import os
def a(x, *rest):
    y = [x + z for z in rest]
    def b():
        nonlocal y
        class K:
            w = y
            def m(self):
                return w, x, os
        return K
    return b
`
	first := build(t, src)
	for i := 0; i < 10; i++ {
		again := build(t, src)
		if diff := cmp.Diff(first.String(), again.String()); diff != "" {
			t.Fatalf("build %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestString(t *testing.T) {
	table := build(t, `
def outer():
    x = 1
    def inner():
        return x
    return inner
`)
	want := `module top
  outer: local {assigned}
  function outer line 2 ()
    x: cell {assigned}
    inner: local {assigned,referenced}
    function inner line 4 ()
      x: free {referenced}
`
	if diff := cmp.Diff(want, table.String()); diff != "" {
		t.Errorf("String() (-want +got):\n%s", diff)
	}
}
