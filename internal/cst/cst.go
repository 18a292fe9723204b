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

// Package cst declares the typed concrete syntax tree that the translator
// consumes. Parsing of L is, per the design, an external concern; this
// package is the contract a parser must produce — a minimal one lives in
// internal/parser so the compiler can be exercised and tested end to end.
//
// Node shapes follow cue/ast's convention of plain exported fields rather
// than accessor methods, which keeps the translator's pattern matches
// (switches on concrete *T) terse.
package cst

import "github.com/YZITE/nix2js/internal/token"

// Node is implemented by every CST node.
type Node interface {
	Pos() token.Pos // position of the first byte belonging to the node
	End() token.Pos // position of the first byte after the node
}

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Root wraps the single top-level expression of a translation unit.
type Root struct {
	File *token.File
	Expr Expr
}

func (r *Root) Pos() token.Pos { return r.Expr.Pos() }
func (r *Root) End() token.Pos { return r.Expr.End() }

// Ident is a bare identifier reference.
type Ident struct {
	NamePos token.Pos
	Name    string
}

func (x *Ident) Pos() token.Pos { return x.NamePos }
func (x *Ident) End() token.Pos { return x.NamePos.Add(len(x.Name)) }
func (*Ident) exprNode()        {}

// LitKind distinguishes the surface form of a BasicLit.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	TrueLit
	FalseLit
	NullLit
)

// BasicLit is an integer, float, or one of the true/false/null literals.
// true/false/null are surfaced as BasicLit rather than Ident even though L's
// own grammar treats them as identifiers resolved through the default scope;
// the parser resolves that ambiguity once so the translator doesn't have to
// special-case three magic identifier spellings (see internal/scope for the
// category that would otherwise apply).
type BasicLit struct {
	ValuePos token.Pos
	Kind     LitKind
	Value    string // raw source text, e.g. "1.5e3" or "true"
}

func (x *BasicLit) Pos() token.Pos { return x.ValuePos }
func (x *BasicLit) End() token.Pos { return x.ValuePos.Add(len(x.Value)) }
func (*BasicLit) exprNode()        {}

// PathAnchor distinguishes how a path literal should be resolved at runtime.
type PathAnchor int

const (
	PathRelative PathAnchor = iota // ./foo
	PathHome                       // ~/foo
	PathSearch                     // <nixpkgs>
	PathAbsolute                   // /foo
)

// PathLit is a path literal, exported to R.export(anchor, path) by the
// translator. Interpolated paths (`./${x}/foo`) are not supported by this
// reference parser.
type PathLit struct {
	ValuePos token.Pos
	RawEnd   token.Pos
	Anchor   PathAnchor
	Value    string // the path text, without the `<` `>` / `~` delimiters
}

func (x *PathLit) Pos() token.Pos { return x.ValuePos }
func (x *PathLit) End() token.Pos { return x.RawEnd }
func (*PathLit) exprNode()        {}

// StrPart is one piece of a (possibly interpolated) string: either a decoded
// literal run or an embedded expression.
type StrPart struct {
	Literal string // valid when Interp == nil
	Interp  Expr   // valid when non-nil; the inner expression of `${...}`
}

// StringExpr is a double-quoted string, which may contain interpolations.
type StringExpr struct {
	Quote token.Pos // position of the opening quote
	EndP  token.Pos // position just after the closing quote
	Parts []StrPart
}

func (x *StringExpr) Pos() token.Pos { return x.Quote }
func (x *StringExpr) End() token.Pos { return x.EndP }
func (*StringExpr) exprNode()        {}

// ListExpr is `[ a b c ]`.
type ListExpr struct {
	Lbrack, Rbrack token.Pos
	Items          []Expr
}

func (x *ListExpr) Pos() token.Pos { return x.Lbrack }
func (x *ListExpr) End() token.Pos { return x.Rbrack.Add(1) }
func (*ListExpr) exprNode()        {}

// ParenExpr is `( inner )`.
type ParenExpr struct {
	Lparen, Rparen token.Pos
	Inner          Expr
}

func (x *ParenExpr) Pos() token.Pos { return x.Lparen }
func (x *ParenExpr) End() token.Pos { return x.Rparen.Add(1) }
func (*ParenExpr) exprNode()        {}

// Dynamic is a computed key segment, `${ inner }`, used only inside Key.Path.
type Dynamic struct {
	DollarPos token.Pos
	RbracePos token.Pos
	Inner     Expr
}

func (x *Dynamic) Pos() token.Pos { return x.DollarPos }
func (x *Dynamic) End() token.Pos { return x.RbracePos.Add(1) }
func (*Dynamic) exprNode()        {}

// Key is a (possibly dotted, possibly dynamic) attrset/let binding key, e.g.
// `a.b.${c}`. Each Path element is an *Ident, a *Dynamic, or a *StringExpr
// (a quoted key, which may itself be interpolated).
type Key struct {
	Path []Expr
}

func (k *Key) Pos() token.Pos { return k.Path[0].Pos() }
func (k *Key) End() token.Pos { return k.Path[len(k.Path)-1].End() }

// KeyValue is one `key = value;` entry of an attrset or let-block.
type KeyValue struct {
	K        *Key
	Eq       token.Pos
	V        Expr
	Semi     token.Pos
	AssignOK bool // false if the value clause was syntactically missing
	KeyOK    bool // false if the key clause was syntactically missing
}

func (kv *KeyValue) Pos() token.Pos {
	if kv.KeyOK {
		return kv.K.Pos()
	}
	return kv.Eq
}
func (kv *KeyValue) End() token.Pos { return kv.Semi.Add(1) }

// Inherit is `inherit [(from)] a b c;`.
type Inherit struct {
	KwPos token.Pos
	From  Expr // nil if there is no `(from)` clause
	Names []*Ident
	Semi  token.Pos
}

func (in *Inherit) Pos() token.Pos { return in.KwPos }
func (in *Inherit) End() token.Pos { return in.Semi.Add(1) }

// EntryHolder is implemented by every node with a body of KeyValue/Inherit
// entries: AttrSet, LetIn, LegacyLet.
type EntryHolder interface {
	Node
	Entries() []*KeyValue
	Inherits() []*Inherit
}

// AttrSet is `{ ... }` or `rec { ... }`.
type AttrSet struct {
	Lbrace, Rbrace token.Pos
	Recursive      bool
	KVs            []*KeyValue
	Inh            []*Inherit
}

func (x *AttrSet) Pos() token.Pos       { return x.Lbrace }
func (x *AttrSet) End() token.Pos       { return x.Rbrace.Add(1) }
func (*AttrSet) exprNode()              {}
func (x *AttrSet) Entries() []*KeyValue { return x.KVs }
func (x *AttrSet) Inherits() []*Inherit { return x.Inh }

// LetIn is `let ...bindings... in body`.
type LetIn struct {
	LetPos token.Pos
	KVs    []*KeyValue
	Inh    []*Inherit
	InPos  token.Pos
	Body   Expr // nil if the `in body` clause was syntactically missing
}

func (x *LetIn) Pos() token.Pos { return x.LetPos }
func (x *LetIn) End() token.Pos {
	if x.Body != nil {
		return x.Body.End()
	}
	return x.InPos.Add(2)
}
func (*LetIn) exprNode()              {}
func (x *LetIn) Entries() []*KeyValue { return x.KVs }
func (x *LetIn) Inherits() []*Inherit { return x.Inh }

// LegacyLet is `let { ...; body = expr; }` (deprecated sugar: the value
// bound to the `body` key becomes the result).
type LegacyLet struct {
	LetPos, Rbrace token.Pos
	KVs            []*KeyValue
	Inh            []*Inherit
}

func (x *LegacyLet) Pos() token.Pos       { return x.LetPos }
func (x *LegacyLet) End() token.Pos       { return x.Rbrace.Add(1) }
func (*LegacyLet) exprNode()              {}
func (x *LegacyLet) Entries() []*KeyValue { return x.KVs }
func (x *LegacyLet) Inherits() []*Inherit { return x.Inh }

// PatEntry is one `name` or `name ? default` of a lambda pattern.
type PatEntry struct {
	Name    *Ident
	Default Expr // nil if no default
}

// Pattern is `{ a, b ? d, ... } @ bound` lambda argument destructuring.
type Pattern struct {
	Lbrace, Rbrace token.Pos
	Entries        []*PatEntry
	Ellipsis       bool
	At             *Ident // nil if there is no `@ name` binding
}

func (p *Pattern) Pos() token.Pos { return p.Lbrace }
func (p *Pattern) End() token.Pos { return p.Rbrace.Add(1) }

// Lambda is `arg: body`, where Arg is either *Ident or *Pattern.
type Lambda struct {
	Arg  Node
	Body Expr
}

func (x *Lambda) Pos() token.Pos { return x.Arg.Pos() }
func (x *Lambda) End() token.Pos { return x.Body.End() }
func (*Lambda) exprNode()        {}

// Apply is `f v`, left-associative function application.
type Apply struct {
	Fn, Arg Expr
}

func (x *Apply) Pos() token.Pos { return x.Fn.Pos() }
func (x *Apply) End() token.Pos { return x.Arg.End() }
func (*Apply) exprNode()        {}

// Select is `set.index`; Index is an *Ident for a static segment or any
// Expr for a computed one (`set.${e}`).
type Select struct {
	Set   Expr
	DotP  token.Pos
	Index Expr
}

func (x *Select) Pos() token.Pos { return x.Set.Pos() }
func (x *Select) End() token.Pos { return x.Index.End() }
func (*Select) exprNode()        {}

// OrDefault is `indexExpr or default` (indexExpr is normally a *Select).
type OrDefault struct {
	Index   Expr
	OrPos   token.Pos
	Default Expr
}

func (x *OrDefault) Pos() token.Pos { return x.Index.Pos() }
func (x *OrDefault) End() token.Pos { return x.Default.End() }
func (*OrDefault) exprNode()        {}

// UnaryExpr is `!x` or `-x`.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token // token.NOT or token.SUB
	X     Expr
}

func (x *UnaryExpr) Pos() token.Pos { return x.OpPos }
func (x *UnaryExpr) End() token.Pos { return x.X.End() }
func (*UnaryExpr) exprNode()        {}

// BinaryExpr is a general binary operator application, including the
// has-attr `?` form (Op == token.QUESTION), which the translator lowers
// specially rather than through the generic operator-helper path.
type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Y     Expr // for Op == QUESTION this may be an *Ident standing for a bare attr name
}

func (x *BinaryExpr) Pos() token.Pos { return x.X.Pos() }
func (x *BinaryExpr) End() token.Pos { return x.Y.End() }
func (*BinaryExpr) exprNode()        {}

// IfExpr is `if cond then t else e`.
type IfExpr struct {
	IfPos            token.Pos
	Cond, Then, Else Expr
}

func (x *IfExpr) Pos() token.Pos { return x.IfPos }
func (x *IfExpr) End() token.Pos { return x.Else.End() }
func (*IfExpr) exprNode()        {}

// With is `with ns; body`.
type With struct {
	WithPos   token.Pos
	Namespace Expr
	Body      Expr
}

func (x *With) Pos() token.Pos { return x.WithPos }
func (x *With) End() token.Pos { return x.Body.End() }
func (*With) exprNode()        {}

// Assert is `assert cond; body`.
type Assert struct {
	AssertPos token.Pos
	Cond      Expr
	Body      Expr
	CondText  string // raw source text of Cond, captured for the runtime message
}

func (x *Assert) Pos() token.Pos { return x.AssertPos }
func (x *Assert) End() token.Pos { return x.Body.End() }
func (*Assert) exprNode()        {}
