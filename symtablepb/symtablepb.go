// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symtablepb converts symbol tables to protocol messages.
//
// A table is represented as a google.protobuf.Struct so that it can be
// exchanged without a schema:
//
//	{
//	  "label": "a.py",
//	  "mode": "exec",
//	  "scopes": [
//	    {"id": 0, "kind": "module", "name": "top", "line": 0,
//	     "parent": -1, "params": [], "children": [1],
//	     "symbols": [{"name": "f", "class": "local",
//	                  "flags": ["assigned"], "namespaces": [1]}]},
//	    ...
//	  ]
//	}
//
// Scopes appear in preorder, so a scope's id is its index in "scopes".
package symtablepb // import "go.pyscope.net/symtablepb"

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"go.pyscope.net/symtable"
)

// Formats lists the encodings accepted by Marshal.
var Formats = []string{"json", "wire", "proto-text"}

// ToStruct returns the table as a Struct message.
func ToStruct(t *symtable.Table) (*structpb.Struct, error) {
	scopes := make([]interface{}, 0, t.Len())
	for _, s := range t.Scopes() {
		scopes = append(scopes, scope(s))
	}
	return structpb.NewStruct(map[string]interface{}{
		"label":  t.Label(),
		"mode":   t.Mode().String(),
		"scopes": scopes,
	})
}

func scope(s *symtable.Scope) map[string]interface{} {
	parent := -1
	if p := s.Parent(); p != nil {
		parent = int(p.ID())
	}
	children := []interface{}{}
	for _, c := range s.Children() {
		children = append(children, int(c.ID()))
	}
	params := []interface{}{}
	for _, p := range s.Parameters() {
		params = append(params, p)
	}
	symbols := []interface{}{}
	for _, sym := range s.Symbols() {
		symbols = append(symbols, symbol(sym))
	}
	return map[string]interface{}{
		"id":       int(s.ID()),
		"kind":     s.Kind().String(),
		"name":     s.Name(),
		"line":     s.Line(),
		"parent":   parent,
		"params":   params,
		"children": children,
		"symbols":  symbols,
	}
}

func symbol(sym *symtable.Symbol) map[string]interface{} {
	flags := []interface{}{}
	if f := sym.Flags().String(); f != "" {
		for _, name := range strings.Split(f, ",") {
			flags = append(flags, name)
		}
	}
	spaces := []interface{}{}
	for _, ns := range sym.Namespaces() {
		spaces = append(spaces, int(ns.ID()))
	}
	return map[string]interface{}{
		"name":       sym.Name(),
		"class":      sym.Class().String(),
		"flags":      flags,
		"namespaces": spaces,
	}
}

// Marshal encodes the table in the named format: "json", "wire"
// (binary protocol buffer) or "proto-text".
func Marshal(t *symtable.Table, format string) ([]byte, error) {
	msg, err := ToStruct(t)
	if err != nil {
		return nil, err
	}
	var marshal func(proto.Message) ([]byte, error)
	switch format {
	case "wire":
		marshal = proto.MarshalOptions{Deterministic: true}.Marshal

	case "proto-text":
		marshal = prototext.MarshalOptions{Multiline: true, Indent: "\t"}.Marshal

	case "json":
		marshal = protojson.MarshalOptions{Multiline: true, Indent: "\t"}.Marshal

	default:
		return nil, fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return marshal(msg)
}

// Unmarshal decodes a Struct previously encoded by Marshal.
func Unmarshal(data []byte, format string) (*structpb.Struct, error) {
	msg := new(structpb.Struct)
	var err error
	switch format {
	case "wire":
		err = proto.Unmarshal(data, msg)
	case "proto-text":
		err = prototext.Unmarshal(data, msg)
	case "json":
		err = protojson.Unmarshal(data, msg)
	default:
		return nil, fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}
