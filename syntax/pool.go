// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// python is the tree-sitter grammar used by Parse.
var python = sitter.NewLanguage(tree_sitter_python.Language())

// parsers recycles tree-sitter parsers so that Parse is cheap
// and safe to call from multiple goroutines.
var parsers = newParserPool(python)

// A parserPool is a sync.Pool of parsers configured for one grammar.
type parserPool struct {
	lang *sitter.Language
	pool sync.Pool
}

func newParserPool(lang *sitter.Language) *parserPool {
	p := &parserPool{lang: lang}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(lang)
		return sp
	}
	return p
}

// Get returns a parser configured for the pool's grammar.
func (p *parserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// Ensure the language is set in case the parser was Reset externally.
	sp.SetLanguage(p.lang)
	return sp
}

// Put resets sp and returns it to the pool.
// Callers must not use sp after calling Put.
func (p *parserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.pool.Put(sp)
}
