// Copyright 2026 The nix2js Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the compiler's error type: a position-carrying
// message plus a kind sentinel, and a List that batches several of them
// (used for parse errors, which are collected rather than aborting on the
// first one). Grounded on cue/errors' Error/list/Print split, trimmed to
// what the translator and CLI actually need.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/YZITE/nix2js/internal/token"
)

// Kind identifies one of the five error categories of the design.
type Kind int

const (
	Parse Kind = iota
	MissingChild
	UnknownIdentifier
	InvalidShape
	ValueDeserialization
)

func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse-error"
	case MissingChild:
		return "missing-child"
	case UnknownIdentifier:
		return "unknown-identifier"
	case InvalidShape:
		return "invalid-shape"
	case ValueDeserialization:
		return "value-deserialization"
	}
	return "error"
}

// Error is a single compiler diagnostic. Its Error() text is always of the
// form "line N: message", or "offset N: message" when no file/line is
// available (internal/unreachable failures).
type Error struct {
	Kind Kind
	Pos  token.Pos
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("line %d: %s", e.Pos.Position().Line, e.Msg)
	}
	return fmt.Sprintf("offset %d: %s", e.Pos.Offset(), e.Msg)
}

// Is lets callers test error kinds with errors.Is(err, errors.Parse.Sentinel())-
// style checks via the package-level Is helper below; Error itself compares
// by Kind so errors.Is(err, &Error{Kind: Parse}) works without matching text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

// New builds a positioned error of the given kind.
func New(kind Kind, pos token.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel returns a zero-message error of kind k suitable for errors.Is
// comparisons, e.g. errors.Is(err, errors.UnknownIdentifier.Sentinel()).
func (k Kind) Sentinel() error { return &Error{Kind: k} }

// List batches several Errors, e.g. the parser's accumulated syntax errors.
// The zero value is an empty, ready-to-use list.
type List []*Error

func (l *List) Add(e *Error) { *l = append(*l, e) }

func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// Is reports whether any error in the list matches target.
func (l List) Is(target error) bool {
	for _, e := range l {
		if errors.Is(e, target) {
			return true
		}
	}
	return false
}

// Print writes one error per line to w.
func Print(w io.Writer, err error) {
	var l List
	if errors.As(err, &l) {
		for _, e := range l {
			fmt.Fprintln(w, e.Error())
		}
		return
	}
	fmt.Fprintln(w, err.Error())
}

// Details is a convenience wrapper around Print returning the text.
func Details(err error) string {
	var b strings.Builder
	Print(&b, err)
	return b.String()
}
