// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtable_test

import (
	"fmt"
	"log"

	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

// ExampleBuild builds the table of a small program with a closure
// and prints how each scope sees the captured variable.
func ExampleBuild() {
	const src = `
def counter():
    n = 0
    def inc():
        nonlocal n
        n += 1
        return n
    return inc
`
	f, err := syntax.Parse("counter.py", src)
	if err != nil {
		log.Fatal(err)
	}
	table, err := symtable.Build(f, "counter.py", symtable.Exec)
	if err != nil {
		log.Fatal(err)
	}
	for _, path := range []string{"counter", "counter.inc"} {
		scope, _ := table.Find(path)
		sym, _ := scope.Lookup("n")
		fmt.Printf("%s: %s\n", path, sym.Class())
	}

	// Output:
	// counter: cell
	// counter.inc: free
}

// ExampleTable_Identifiers prints the top-level names of a module and
// the parameters of its first function.
func ExampleTable_Identifiers() {
	f, err := syntax.Parse("sym.py", "def f(a, b):\n    return a + b\n\nx = f(1, 2)\n")
	if err != nil {
		log.Fatal(err)
	}
	table, _ := symtable.Build(f, "sym.py", symtable.Exec)
	fmt.Println(table.Identifiers())
	params, _ := table.ChildParameters(0)
	fmt.Println(params)

	// Output:
	// [f x]
	// [a b]
}

// ExampleErrorList shows that violations leave the table complete.
func ExampleErrorList() {
	f, err := syntax.Parse("bad.py", "def f(x):\n    global x\n")
	if err != nil {
		log.Fatal(err)
	}
	table, err := symtable.Build(f, "bad.py", symtable.Exec)
	for _, v := range err.(symtable.ErrorList) {
		fmt.Println(v)
	}
	fmt.Println(table.Identifiers())

	// Output:
	// bad.py:2:12: name 'x' is parameter and global
	// [f x]
}
