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

// Package scope implements the compile-time binding table of §4.1: an
// ordered stack of (name, category) pairs, last-match-wins, with strict
// push/truncate discipline enforced by the caller (internal/translate) via
// the Mark/Truncate pair.
package scope

// Category tags how a resolved identifier must be emitted.
type Category int

const (
	// Literal identifiers map verbatim to a target-language literal (true,
	// false, null, the builtins handle).
	Literal Category = iota
	// AliasedBuiltin identifiers resolve to a member of the builtins
	// namespace.
	AliasedBuiltin
	// LambdaArg identifiers are bound by the nearest enclosing lambda.
	LambdaArg
	// LetScopeVar identifiers are bound by a let or recursive-attrset scope
	// and resolved through the dynamic in-scope object.
	LetScopeVar
	// WithScopeVar identifiers can only be resolved dynamically, through a
	// with-chain namespace object.
	WithScopeVar
)

// Binding is one (name, category) entry. Emit carries the target-language
// text to emit verbatim (Literal, LambdaArg) or the builtin member name
// (AliasedBuiltin), and is unused for LetScopeVar and WithScopeVar.
type Binding struct {
	Name     string
	Category Category
	Emit     string
}

// Table is the scope stack. The zero value is an empty table.
type Table struct {
	bindings  []Binding
	withDepth int
}

// Push adds a binding to the top of the stack.
func (t *Table) Push(b Binding) {
	t.bindings = append(t.bindings, b)
}

// Mark returns the current stack depth, to be passed to Truncate once the
// scope that pushed bindings on top of it is done translating its body.
func (t *Table) Mark() int { return len(t.bindings) }

// Truncate pops every binding pushed since the matching Mark call.
func (t *Table) Truncate(mark int) {
	t.bindings = t.bindings[:mark]
}

// EnterWith increments the with-nesting depth; leave with LeaveWith.
func (t *Table) EnterWith() { t.withDepth++ }

// LeaveWith decrements the with-nesting depth.
func (t *Table) LeaveWith() { t.withDepth-- }

// InWith reports whether a `with` scope is currently active, the condition
// under which unresolved names fall back to WithScopeVar instead of erroring.
func (t *Table) InWith() bool { return t.withDepth > 0 }

// Resolve looks up name from the top of the stack down (last-match-wins).
// ok is false only when name is free and no with-scope is active, i.e. the
// caller should report an unknown-identifier error.
func (t *Table) Resolve(name string) (b Binding, ok bool) {
	for i := len(t.bindings) - 1; i >= 0; i-- {
		if t.bindings[i].Name == name {
			return t.bindings[i], true
		}
	}
	if t.InWith() {
		return Binding{Name: name, Category: WithScopeVar}, true
	}
	return Binding{}, false
}

// New returns a table pre-populated with the given default bindings, as
// required by §3 ("Pre-populated at program start with the full default
// binding set").
func New(defaults []Binding) *Table {
	t := &Table{bindings: make([]Binding, len(defaults))}
	copy(t.bindings, defaults)
	return t
}
