package repl

import (
	"io"
	"strings"
	"testing"
)

func lines(input ...string) func() (string, error) {
	return func() (string, error) {
		if len(input) == 0 {
			return "", io.EOF
		}
		line := input[0]
		input = input[1:]
		return line, nil
	}
}

func TestReadInput(t *testing.T) {
	for _, test := range []struct {
		input []string
		want  string
	}{
		{[]string{"x = 1", "y = 2"}, "x = 1\n"},
		{[]string{"def f():", "    return 1", "", "z"}, "def f():\n    return 1\n"},
		{[]string{"f(a,", "  b)", ""}, "f(a,\n  b)\n"},
		{[]string{"x = 1 \\", "  + 2"}, "x = 1 \\\n  + 2\n"},
		{[]string{"s = '(' # unbalanced in a string"}, "s = '(' # unbalanced in a string\n"},
		{[]string{"if x:  # comment", "    pass"}, "if x:  # comment\n    pass\n"},
	} {
		got, err := readInput(lines(test.input...))
		if err != nil {
			t.Errorf("readInput(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("readInput(%q) = %q, want %q", test.input, got, test.want)
		}
	}

	if _, err := readInput(lines()); err != io.EOF {
		t.Errorf("readInput at EOF: got %v, want io.EOF", err)
	}
}

func TestInspect(t *testing.T) {
	var out strings.Builder
	if !Inspect(&out, "<stdin>", "def f(a):\n    return lambda: a\n") {
		t.Fatal("Inspect reported failure")
	}
	want := `module top
  f: local {assigned}
  function f line 1 (a)
    a: cell {parameter}
    function lambda line 2 ()
      a: free {referenced}
`
	if got := out.String(); got != want {
		t.Errorf("Inspect printed:\n%s\nwant:\n%s", got, want)
	}

	out.Reset()
	if Inspect(&out, "<stdin>", "def f(x):\n    global x\n") {
		t.Error("Inspect succeeded despite a violation")
	}
	if !strings.Contains(out.String(), "function f") {
		t.Errorf("table not printed alongside violation: %q", out.String())
	}

	out.Reset()
	if Inspect(&out, "<stdin>", "def (:\n") {
		t.Error("Inspect succeeded despite a syntax error")
	}
	if out.Len() != 0 {
		t.Errorf("printed a table for a syntax error: %q", out.String())
	}
}
