// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The pyscope command prints the lexical scopes of Python programs and
// the classification of every name in each scope.
//
// Usage:
//
//	pyscope [flags] [file|dir ...]
//
// Directories are searched for .py files. With -c, the program text is
// taken from the command line. With no arguments, pyscope reads a
// program from standard input, or starts a read-build-print loop if
// standard input is a terminal.
//
// Settings may also be given in a TOML file (.pyscope.toml by default);
// flags override the file. The exit status is 1 if any input has a
// syntax error or breaks a scoping rule.
package main // import "go.pyscope.net/cmd/pyscope"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/term"

	"go.pyscope.net/repl"
	"go.pyscope.net/symtable"
)

// flags
var (
	execprog    = flag.String("c", "", "build program `prog`")
	modeFlag    = flag.String("mode", "exec", "build mode (exec, eval, single)")
	outputFlag  = flag.String("output", "text", "output format (text, json, wire, proto-text)")
	excludeFlag = flag.String("exclude", "", "comma-separated glob `patterns` of files and directories to skip")
	identifiers = flag.Bool("identifiers", false, "print only the module's identifiers and the parameters of its first child")
	configFlag  = flag.String("config", "", "read settings from TOML `file` (default "+defaultConfig+" if present)")
	watchFlag   = flag.Bool("watch", false, "rebuild files when they change")
	verbose     = flag.Bool("v", false, "log progress to stderr")
)

// resolver flags
var (
	passthrough = flag.Bool("passthrough", symtable.RecordPassThrough, "record free names in the scopes they pass through")
	compScopes  = flag.Bool("comprehensionscopes", symtable.AllowComprehensionScopes, "give comprehensions their own scopes")
)

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("pyscope: ")
	log.SetFlags(0)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Print(err)
		return 1
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	s, err := cfg.resolve(flagValues{
		mode:        *modeFlag,
		output:      *outputFlag,
		exclude:     *excludeFlag,
		passthrough: *passthrough,
		compScopes:  *compScopes,
		set:         set,
	})
	if err != nil {
		log.Print(err)
		return 1
	}

	p := &printer{
		out:         os.Stdout,
		settings:    s,
		styled:      s.output == "text" && term.IsTerminal(int(os.Stdout.Fd())),
		identifiers: *identifiers,
	}

	switch {
	case *execprog != "":
		if flag.NArg() > 0 {
			log.Print("-c and file arguments are mutually exclusive")
			return 1
		}
		return status(p.file("cmdline", *execprog))

	case flag.NArg() > 0:
		files, err := collect(flag.Args(), s.exclude)
		if err != nil {
			log.Print(err)
			return 1
		}
		p.headers = len(files) > 1
		ok := true
		for _, file := range files {
			ok = p.file(file, nil) && ok
		}
		if *watchFlag {
			if err := watch(p, flag.Args()); err != nil {
				log.Print(err)
				return 1
			}
		}
		return status(ok)

	case *watchFlag:
		log.Print("-watch requires file or directory arguments")
		return 1

	case term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Println("Welcome to pyscope (go.pyscope.net)")
		repl.REPL(os.Stdout)
		return 0

	default:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Print(err)
			return 1
		}
		return status(p.file("<stdin>", src))
	}
}

// watch rebuilds changed files until interrupted.
func watch(p *printer, paths []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := newWatcher(p.settings.debounce, p.settings.exclude, func(changed []string) {
		for _, file := range changed {
			if _, err := os.Stat(file); err != nil {
				continue // removed
			}
			p.file(file, nil)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.add(paths); err != nil {
		return err
	}
	slog.Info("watching", "paths", paths)
	w.run(ctx)
	return nil
}

func status(ok bool) int {
	if ok {
		return 0
	}
	return 1
}
