// Package repl provides a read/build/print loop for inspecting the
// scopes of Python fragments.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// A line that opens a block (it ends with a colon or a backslash, or
// leaves a bracket open) is followed by continuation lines up to the
// next blank line. Each complete input is parsed, built as an
// interactive statement, and its symbol table printed.
package repl // import "go.pyscope.net/repl"

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"go.pyscope.net/symtable"
	"go.pyscope.net/syntax"
)

// REPL executes a read, build, print loop, writing tables to out.
func REPL(out io.Writer) {
	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	for {
		if err := rep(rl, out); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

// rep reads, builds, and prints one item.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if readline failed. Syntax errors and violations are printed.
func rep(rl *readline.Instance, out io.Writer) error {
	rl.SetPrompt(">>> ")
	src, err := readInput(func() (string, error) {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		return line, err
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(src) == "" {
		return nil
	}
	Inspect(out, "<stdin>", src)
	return nil
}

// readInput reads one input item using next, which returns successive
// lines without their newlines.
func readInput(next func() (string, error)) (string, error) {
	line, err := next()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	buf.WriteString(line)
	buf.WriteByte('\n')
	if !incomplete(line) {
		return buf.String(), nil
	}
	for {
		line, err := next()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// incomplete reports whether line cannot stand alone as an input.
func incomplete(line string) bool {
	if i := strings.IndexByte(line, '#'); i >= 0 && !strings.ContainsAny(line[:i], `"'`) {
		line = line[:i]
	}
	line = strings.TrimRight(line, " \t")
	if strings.HasSuffix(line, ":") || strings.HasSuffix(line, `\`) {
		return true
	}
	depth := 0
	var quote rune
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case strings.ContainsRune("([{", r):
			depth++
		case strings.ContainsRune(")]}", r):
			depth--
		}
	}
	return depth > 0
}

// Inspect parses and builds src and prints its table to out.
// Errors are printed to stderr. It reports whether the input was free
// of syntax errors and violations.
func Inspect(out io.Writer, filename, src string) bool {
	f, err := syntax.Parse(filename, src)
	if err != nil {
		PrintError(err)
		return false
	}
	table, err := symtable.Build(f, filename, symtable.Single)
	fmt.Fprint(out, table)
	if err != nil {
		PrintError(err)
		return false
	}
	return true
}

// PrintError prints the error to stderr, one line per violation if it
// is a list of them.
func PrintError(err error) {
	if list, ok := err.(symtable.ErrorList); ok {
		for _, v := range list {
			fmt.Fprintln(os.Stderr, v)
		}
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
}
