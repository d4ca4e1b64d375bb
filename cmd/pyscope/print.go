// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"go.pyscope.net/repl"
	"go.pyscope.net/symtable"
	"go.pyscope.net/symtablepb"
	"go.pyscope.net/syntax"
)

var (
	scopeStyle = lipgloss.NewStyle().Bold(true)

	classStyles = map[symtable.Class]lipgloss.Style{
		symtable.Local:          lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		symtable.Parameter:      lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		symtable.Cell:           lipgloss.NewStyle().Foreground(lipgloss.Color("#A855F7")).Bold(true),
		symtable.Free:           lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true),
		symtable.Global:         lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")),
		symtable.GlobalExplicit: lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
	}
)

// A printer builds source files and writes their tables.
type printer struct {
	out         io.Writer
	settings    *settings
	styled      bool // text output to a terminal
	identifiers bool // print only identifiers and the first child's parameters
	headers     bool // precede each text table with its label
}

// file parses, builds and prints one source, where src is as for
// syntax.Parse. It reports whether the source was free of syntax
// errors and violations.
func (p *printer) file(label string, src interface{}) bool {
	start := time.Now()
	f, err := syntax.Parse(label, src)
	if err != nil {
		repl.PrintError(err)
		return false
	}
	table, err := symtable.Build(f, label, p.settings.mode)
	violations := 0
	if list, ok := err.(symtable.ErrorList); ok {
		violations = len(list)
	}
	slog.Debug("built", "file", label, "scopes", table.Len(), "violations", violations, "elapsed", time.Since(start))

	if perr := p.print(table); perr != nil {
		repl.PrintError(perr)
		return false
	}
	if err != nil {
		repl.PrintError(err)
		return false
	}
	return true
}

func (p *printer) print(t *symtable.Table) error {
	if p.identifiers {
		return writeIdentifiers(p.out, t)
	}
	if p.settings.output != "text" {
		data, err := symtablepb.Marshal(t, p.settings.output)
		if err != nil {
			return err
		}
		_, err = p.out.Write(data)
		return err
	}
	if p.headers {
		fmt.Fprintf(p.out, "# %s\n", t.Label())
	}
	return writeText(p.out, t, p.styled)
}

// writeIdentifiers prints the module's identifiers, one per line,
// followed by the parameter list of its first child scope.
func writeIdentifiers(w io.Writer, t *symtable.Table) error {
	for _, name := range t.Identifiers() {
		fmt.Fprintln(w, name)
	}
	params, err := t.ChildParameters(0)
	if err != nil {
		return err
	}
	quoted := make([]string, len(params))
	for i, p := range params {
		quoted[i] = "'" + p + "'"
	}
	_, err = fmt.Fprintf(w, "[%s]\n", strings.Join(quoted, ", "))
	return err
}

// writeText prints the table in the layout of Table.String, with scope
// headers and classes styled if requested.
func writeText(w io.Writer, t *symtable.Table, styled bool) error {
	if !styled {
		_, err := io.WriteString(w, t.String())
		return err
	}
	var buf strings.Builder
	for _, s := range t.Scopes() {
		pad := strings.Repeat("  ", depth(s))
		header := s.Kind().String() + " " + s.Name()
		if s.Line() > 0 {
			header += fmt.Sprintf(" line %d", s.Line())
		}
		if params := s.Parameters(); params != nil {
			header += " (" + strings.Join(params, ", ") + ")"
		}
		fmt.Fprintf(&buf, "%s%s\n", pad, scopeStyle.Render(header))
		for _, sym := range s.Symbols() {
			class := classStyles[sym.Class()].Render(sym.Class().String())
			fmt.Fprintf(&buf, "%s  %s: %s {%s}\n", pad, sym.Name(), class, sym.Flags())
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func depth(s *symtable.Scope) int {
	d := 0
	for p := s.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}
