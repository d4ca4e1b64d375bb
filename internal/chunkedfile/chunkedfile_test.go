// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package chunkedfile

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testReporter struct {
	reported []string
}

func (r *testReporter) Errorf(format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	r.reported = append(r.reported, formatted)
}

func (r *testReporter) assertNone(t *testing.T) {
	t.Helper()
	if len(r.reported) > 0 {
		t.Errorf("reporter expected no errors, got %d", len(r.reported))
	}
}

func (r *testReporter) assertOne(t *testing.T, exp string) {
	t.Helper()
	if len(r.reported) != 1 {
		t.Fatalf("reporter expected 1 error, got %d", len(r.reported))
	}
	if r.reported[0] != exp {
		t.Fatalf("reporter expected %q, got %q", exp, r.reported[0])
	}
}

func (r *testReporter) reset() {
	r.reported = nil
}

func TestChunkedFile(t *testing.T) {
	data := []byte(`def f(x):
    global x ### "parameter and global"
---
x = 1
print(x)
`)

	reporter := &testReporter{}
	chunks := readBytes("test_file", data, reporter, "\n")

	reporter.assertNone(t) // should not have reported any errors

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	// Check the first chunk
	exp := "def f(x):\n    global x ### \"parameter and global\""
	chunk := chunks[0]
	if chunk.Source != exp {
		t.Fatalf("expected %q, got %q", exp, chunk.Source)
	}

	// First chunk has an expected error, on line 2

	if len(chunk.wantErrs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(chunk.wantErrs))
	}
	re, ok := chunk.wantErrs[2]
	if !ok {
		t.Fatalf("expected an error on line 2, got %v", chunk.wantErrs)
	}
	if exp := "parameter and global"; re.String() != exp {
		t.Fatalf("expected %q, got %q", exp, re.String())
	}

	// Send an error that is expected.

	chunk.GotError(2, "name 'x' is parameter and global")

	reporter.assertNone(t) // the error was expected

	if len(chunk.wantErrs) != 0 {
		t.Fatalf("expected 0 errors, got %d", len(chunk.wantErrs))
	}

	// Send the same error again; it is no longer expected.

	chunk.GotError(2, "name 'x' is parameter and global")

	exp = "\ntest_file:2: unexpected error: name 'x' is parameter and global"
	reporter.assertOne(t, exp)

	// Check the second chunk, padded to keep its line numbers.

	exp = "\n\n\nx = 1\nprint(x)\n"
	chunk = chunks[1]
	if chunk.Source != exp {
		t.Fatalf("expected %q, got %q", exp, chunk.Source)
	}
	if len(chunk.wantErrs) != 0 {
		t.Fatalf("expected 0 errors, got %d", len(chunk.wantErrs))
	}

	reporter.reset()
	chunk.GotError(123, "foobar")

	exp = "\ntest_file:123: unexpected error: foobar"
	reporter.assertOne(t, exp)
}

func TestMismatch(t *testing.T) {
	reporter := &testReporter{}
	chunks := readBytes("test_file", []byte(`nonlocal x ### "not allowed"`), reporter, "\n")
	chunks[0].GotError(1, "something else")
	reporter.assertOne(t, "\ntest_file:1: error \"something else\" does not match pattern \"not allowed\"")
}

func TestBadPattern(t *testing.T) {
	reporter := &testReporter{}
	readBytes("test_file", []byte("x = 1 ### not quoted\n"), reporter, "\n")
	reporter.assertOne(t, "\ntest_file:1: not a quoted regexp: not quoted")
}

func TestDoneReportsInLineOrder(t *testing.T) {
	data := []byte(`a ### "three"
b
c ### "one"
d ### "two"
`)
	reporter := &testReporter{}
	chunks := readBytes("test_file", data, reporter, "\n")
	chunks[0].Done()

	want := []string{
		"\ntest_file:1: expected error matching \"three\"",
		"\ntest_file:3: expected error matching \"one\"",
		"\ntest_file:4: expected error matching \"two\"",
	}
	if diff := cmp.Diff(want, reporter.reported); diff != "" {
		t.Errorf("Done reports (-want +got):\n%s", diff)
	}
}
