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

// Package translate lowers a parsed CST into target text: a cooperative-async
// dialect that represents every L value as either a bare JS value, a Promise
// of one, or a nixBlti.PLazy thunk of one, per the state machine in
// internal/lazy. It is the single largest piece of the compiler and mirrors
// original_source/src/lib.rs's translate_node match arm for arm, adapted to
// a CST that already resolved the ambiguities (pattern-vs-attrset,
// true/false/null-vs-ident) rnix left for lib.rs to handle inline.
package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/YZITE/nix2js/internal/builtins"
	"github.com/YZITE/nix2js/internal/cst"
	"github.com/YZITE/nix2js/internal/errors"
	"github.com/YZITE/nix2js/internal/lazy"
	"github.com/YZITE/nix2js/internal/scope"
	"github.com/YZITE/nix2js/internal/sourcemap"
	"github.com/YZITE/nix2js/internal/token"
)

// Context carries the state threaded through one translation unit: the
// growing output buffer, the compile-time scope table, and an optional
// source map encoder. The zero value is not ready to use; call New.
type Context struct {
	buf   []byte
	scope *scope.Table
	sm    *sourcemap.Encoder
	dst   token.Cursor
}

// New returns a Context with a freshly pre-populated default scope. sm may
// be nil, in which case no source map is recorded.
func New(sm *sourcemap.Encoder) *Context {
	return &Context{scope: scope.New(builtins.Default()), sm: sm}
}

// Push appends s to the output buffer. It satisfies lazy.Pusher.
func (c *Context) Push(s string) { c.buf = append(c.buf, s...) }

// Output returns the generated text accumulated so far.
func (c *Context) Output() string { return string(c.buf) }

// mapIdent records one source map segment at an identifier-emission site.
// It is a no-op if no encoder was configured or pos carries no file.
func (c *Context) mapIdent(pos token.Pos, name string) {
	if c.sm == nil || !pos.IsValid() {
		return
	}
	line, col, ok := c.dst.Advance(c.buf, len(c.buf))
	if !ok {
		return
	}
	sp := pos.Position()
	c.sm.Add(line, col, sp.Line-1, sp.Column-1, name)
}

// Translate lowers root's expression, emitting into the Context's buffer.
// The root value is wrapped lazily (mksctx!(Normal, true) in the design this
// was ported from): the outermost result of a translation unit is itself a
// thunk, matching the guarantee that every L value is lazy including the
// program's own result.
func (c *Context) Translate(root *cst.Root) error {
	return c.translateNode(lazy.NormalLazy, root.Expr)
}

// ---- small leaf helpers -----------------------------------------------

func escapeStr(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// json.Marshal does not fail for a string value (invalid UTF-8 is
		// replaced with U+FFFD); this branch only satisfies the error return.
		return `""`
	}
	return string(b)
}

// attrElemRawSafe reports whether name can be accessed with plain `.name`
// dot syntax rather than `["name"]` bracket indexing: non-empty, starting
// with an ASCII letter, and containing only ASCII alphanumerics. Builtin
// names like `__add` fail this (leading underscore) and always go through
// bracket indexing, matching helpers.rs's rule exactly (no special-casing
// of the alias-stripped form here — that happens only for the B namespace,
// never for nixInScope attribute access).
func attrElemRawSafe(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if i == 0 && !isASCIIAlpha(ch) {
			return false
		}
		if !isASCIIAlpha(ch) && !isASCIIDigit(ch) {
			return false
		}
	}
	return true
}

func isASCIIAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isASCIIDigit(c byte) bool { return c >= '0' && c <= '9' }

// formatNumber canonicalizes a raw INT/FLOAT token's text into JS-literal
// form by round-tripping it through an arbitrary-precision decimal, so that
// e.g. "1.50" becomes "1.5" and large integers keep their exact digits
// instead of drifting through a float64. apd.Decimal's own String form
// occasionally uses exponential notation (e.g. "1E+2"), which is valid JS
// numeric-literal syntax, so no further massaging is needed.
func formatNumber(raw string) (string, error) {
	d, _, err := apd.NewFromString(raw)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(raw, ".eE") {
		// float literal: drop trailing zeros for the shortest form
		d.Reduce(d)
	}
	return d.String(), nil
}

func anchorName(a cst.PathAnchor) string {
	switch a {
	case cst.PathHome:
		return "Home"
	case cst.PathSearch:
		return "Search"
	case cst.PathAbsolute:
		return "Absolute"
	default:
		return "Relative"
	}
}

func binOpName(t token.Token) (string, bool) {
	switch t {
	case token.ADD:
		return builtins.OpAdd, true
	case token.SUB:
		return builtins.OpSub, true
	case token.MUL:
		return builtins.OpMul, true
	case token.QUO:
		return builtins.OpDiv, true
	case token.CONCAT:
		return builtins.OpConcat, true
	case token.EQ:
		return builtins.OpEqual, true
	case token.LSS:
		return builtins.OpLess, true
	case token.GTR:
		return builtins.OpMore, true
	case token.LEQ:
		return builtins.OpLessOrEq, true
	case token.GEQ:
		return builtins.OpMoreOrEq, true
	case token.NEQ:
		return builtins.OpNotEqual, true
	case token.LAND:
		return builtins.OpAnd, true
	case token.LOR:
		return builtins.OpOr, true
	case token.IMPL:
		return builtins.OpImplication, true
	case token.UPDATE:
		return builtins.OpUpdate, true
	}
	return "", false
}

// lambdaArgJSName mangles a formal-argument name into a valid JS identifier:
// `-` and `'` are both legal in a lambda pattern's argument names but not in
// a JS binding, so they're replaced with sequences that can't collide with
// an already-mangled name.
func lambdaArgJSName(name string) string {
	name = strings.ReplaceAll(name, "-", "_$_")
	name = strings.ReplaceAll(name, "'", "_$")
	return builtins.LambdaArgPrefix + name
}

// ---- key-element helpers ------------------------------------------------
//
// These two mirror translate_node_key_element_force_str/_indexing: unlike
// translateIdent, they never consult the scope table. A key element names
// a property, not a variable — `{ a = 1; }`'s `a` is never looked up as an
// identifier reference.

// keyElementForceStr emits e as a string-valued JS expression suitable as an
// object-key operand (e.g. the second argument to hasOwnProperty.call or
// _deepMerge).
func (c *Context) keyElementForceStr(e cst.Expr) error {
	if id, ok := e.(*cst.Ident); ok {
		c.mapIdent(id.Pos(), id.Name)
		c.Push(escapeStr(id.Name))
		return nil
	}
	return c.translateNode(lazy.WantAwait, e)
}

// keyElementIndexing emits e as a property-access suffix: `.name` for a
// plain-ASCII ident, `["name"]` otherwise, or `[<expr>]` for a computed key.
func (c *Context) keyElementIndexing(e cst.Expr) error {
	if id, ok := e.(*cst.Ident); ok {
		c.mapIdent(id.Pos(), id.Name)
		if attrElemRawSafe(id.Name) {
			c.Push("." + id.Name)
		} else {
			c.Push("[" + escapeStr(id.Name) + "]")
		}
		return nil
	}
	c.Push("[")
	if err := c.translateNode(lazy.WantAwait, e); err != nil {
		return err
	}
	c.Push("]")
	return nil
}

// ---- identifier resolution ------------------------------------------------

// translateIdent resolves a bound-variable reference through the scope
// table. It never wraps via lazy.Thread: a resolved reference is either a
// bare JS identifier, a property access, or the builtins-runtime handle —
// all plain expressions, never something that itself needs an await/thunk
// wrapper at the point of reference (whatever produced the binding already
// carries its own laziness).
func (c *Context) translateIdent(id *cst.Ident) error {
	name := id.Name
	b, ok := c.scope.Resolve(name)
	if !ok {
		return errors.New(errors.UnknownIdentifier, id.Pos(), "unknown identifier %q", name)
	}
	c.mapIdent(id.Pos(), name)
	switch b.Category {
	case scope.Literal:
		c.Push(b.Emit)
	case scope.AliasedBuiltin:
		if name == "import" {
			// import is the one builtin the runtime serves directly rather
			// than through the builtins-runtime namespace.
			c.Push(builtins.RuntimeHandle + ".import")
		} else {
			c.Push(builtins.BuiltinsRuntime + "." + builtins.StripAliasPrefix(b.Emit))
		}
	case scope.LambdaArg:
		c.Push(b.Emit)
	case scope.LetScopeVar, scope.WithScopeVar:
		if attrElemRawSafe(name) {
			c.Push(builtins.InScopeVar + "." + name)
		} else {
			c.Push(builtins.InScopeVar + "[" + escapeStr(name) + "]")
		}
	}
	return nil
}

// ---- the master dispatcher ------------------------------------------------

func (c *Context) translateNode(sctx lazy.StackCtx, n cst.Expr) error {
	switch x := n.(type) {
	case *cst.Ident:
		return c.translateIdent(x)
	case *cst.BasicLit:
		return c.translateBasicLit(x)
	case *cst.PathLit:
		return c.translatePathLit(x)
	case *cst.StringExpr:
		return c.translateString(sctx, x)
	case *cst.ListExpr:
		return c.translateList(x)
	case *cst.ParenExpr:
		return c.translateNode(sctx, x.Inner)
	case *cst.Dynamic:
		return c.translateNode(sctx, x.Inner)
	case *cst.Apply:
		return c.translateApply(sctx, x)
	case *cst.Select:
		return c.translateSelect(sctx, x)
	case *cst.OrDefault:
		return c.translateOrDefault(sctx, x)
	case *cst.UnaryExpr:
		return c.translateUnary(x)
	case *cst.BinaryExpr:
		return c.translateBinary(sctx, x)
	case *cst.IfExpr:
		return c.translateIf(sctx, x)
	case *cst.With:
		return c.translateWith(x)
	case *cst.Assert:
		return c.translateAssert(sctx, x)
	case *cst.Lambda:
		return c.translateLambda(x)
	case *cst.AttrSet:
		return c.translateAttrSet(sctx, x)
	case *cst.LetIn:
		return c.translateLetIn(sctx, x)
	case *cst.LegacyLet:
		return c.translateLegacyLet(sctx, x)
	}
	return errors.New(errors.InvalidShape, n.Pos(), "node kind %T cannot appear in expression position", n)
}

func (c *Context) translateBasicLit(x *cst.BasicLit) error {
	switch x.Kind {
	case cst.TrueLit:
		c.Push("true")
	case cst.FalseLit:
		c.Push("false")
	case cst.NullLit:
		c.Push("null")
	case cst.IntLit, cst.FloatLit:
		text, err := formatNumber(x.Value)
		if err != nil {
			return errors.New(errors.ValueDeserialization, x.Pos(), "invalid numeric literal %q: %v", x.Value, err)
		}
		c.Push(text)
	}
	return nil
}

func (c *Context) translatePathLit(x *cst.PathLit) error {
	c.Push(builtins.RuntimeHandle + ".export(" + escapeStr(anchorName(x.Anchor)) + "," + escapeStr(x.Value) + ")")
	return nil
}

func (c *Context) translateList(x *cst.ListExpr) error {
	c.Push("[")
	for i, item := range x.Items {
		if i > 0 {
			c.Push(",")
		}
		if err := c.translateNode(lazy.Normal, item); err != nil {
			return err
		}
	}
	c.Push("]")
	return nil
}

func (c *Context) translateApply(sctx lazy.StackCtx, x *cst.Apply) error {
	return lazy.ThreadSame(c, sctx, lazy.Need, func(lazy.StackCtx) error {
		c.Push("(")
		if err := c.translateNode(lazy.WantAwait, x.Fn); err != nil {
			return err
		}
		c.Push(")(")
		if err := c.translateNode(lazy.Normal, x.Arg); err != nil {
			return err
		}
		c.Push(")")
		return nil
	})
}

// translateSelect forwards lazyness untouched when the base is a bare
// identifier resolving to a Literal or AliasedBuiltin (per spec.md §4.8):
// such a base is always already a plain synchronous value, so indexing into
// it needs no resolution of its own. Any other base demands Need on both
// axes.
func (c *Context) translateSelect(sctx lazy.StackCtx, x *cst.Select) error {
	verb := lazy.Need
	if id, ok := x.Set.(*cst.Ident); ok {
		if b, ok2 := c.scope.Resolve(id.Name); ok2 && (b.Category == scope.Literal || b.Category == scope.AliasedBuiltin) {
			verb = lazy.Forward
		}
	}
	return lazy.ThreadSame(c, sctx, verb, func(lazy.StackCtx) error {
		c.Push("(")
		if err := c.translateNode(lazy.WantAwait, x.Set); err != nil {
			return err
		}
		c.Push(")")
		return c.keyElementIndexing(x.Index)
	})
}

func (c *Context) translateOrDefault(sctx lazy.StackCtx, x *cst.OrDefault) error {
	return lazy.ThreadSame(c, sctx, lazy.Need, func(lazy.StackCtx) error {
		c.Push(builtins.OrDefaultHelper + "(")
		if err := c.translateNode(lazy.NormalLazy, x.Index); err != nil {
			return err
		}
		c.Push(",()=>")
		if err := c.translateNode(lazy.NormalLazy, x.Default); err != nil {
			return err
		}
		c.Push(")")
		return nil
	})
}

func (c *Context) translateUnary(x *cst.UnaryExpr) error {
	var opName string
	switch x.Op {
	case token.NOT:
		opName = builtins.OpInvert
	case token.SUB:
		opName = builtins.OpNegate
	default:
		return errors.New(errors.InvalidShape, x.Pos(), "unknown unary operator %v", x.Op)
	}
	c.Push(builtins.OperatorsHandle + "." + opName + "(")
	if err := c.translateNode(lazy.Normal, x.X); err != nil {
		return err
	}
	c.Push(")")
	return nil
}

// translateBinary's has-attr (`?`) arm is never wrapped: its result is
// always a plain synchronous boolean, exactly like a literal, so there is
// nothing for the lazyness machine to decide here (spec.md §4.3 describes
// its emission without naming any Tr verb at all, unlike every other
// operator form).
func (c *Context) translateBinary(sctx lazy.StackCtx, x *cst.BinaryExpr) error {
	if x.Op == token.QUESTION {
		c.Push("Object.prototype.hasOwnProperty.call(")
		if err := c.translateNode(lazy.WantAwait, x.X); err != nil {
			return err
		}
		c.Push(",")
		if id, ok := x.Y.(*cst.Ident); ok {
			c.mapIdent(id.Pos(), id.Name)
			c.Push(escapeStr(id.Name))
		} else if err := c.translateNode(lazy.WantAwait, x.Y); err != nil {
			return err
		}
		c.Push(")")
		return nil
	}
	name, ok := binOpName(x.Op)
	if !ok {
		return errors.New(errors.InvalidShape, x.Pos(), "unknown binary operator %v", x.Op)
	}
	// await Need, lazy Flush per spec.md §4.3: the operator helper itself
	// forces its operands, so only a pending await promise is satisfied
	// here; a pending lazy promise is flushed (wrapped) rather than
	// demanded, since nothing downstream of a BinOp result needs it thunked
	// unless an ancestor already asked for that.
	return lazy.Thread(c, sctx, lazy.Need, lazy.Flush, func(lazy.StackCtx) error {
		c.Push(builtins.OperatorsHandle + "." + name + "(")
		if err := c.translateNode(lazy.Normal, x.X); err != nil {
			return err
		}
		c.Push(",")
		if err := c.translateNode(lazy.Normal, x.Y); err != nil {
			return err
		}
		c.Push(")")
		return nil
	})
}

func (c *Context) translateIf(sctx lazy.StackCtx, x *cst.IfExpr) error {
	return lazy.ThreadSame(c, sctx, lazy.Flush, func(inner lazy.StackCtx) error {
		c.Push("((")
		if err := c.translateNode(lazy.WantAwait, x.Cond); err != nil {
			return err
		}
		c.Push(")?(")
		if err := c.translateNode(inner, x.Then); err != nil {
			return err
		}
		c.Push("):(")
		if err := c.translateNode(inner, x.Else); err != nil {
			return err
		}
		c.Push("))")
		return nil
	})
}

// translateWith ignores the ambient sctx entirely, same as the original:
// the emitted async IIFE is a plain (non-thunked) expression whose result
// is awaited, if at all, by whatever Need site consumes it — exactly like
// the general operator call convention, which accepts awaitable operands
// without the caller pre-resolving them.
func (c *Context) translateWith(x *cst.With) error {
	c.Push("(async " + builtins.InScopeVar + "=>(")
	c.scope.EnterWith()
	defer c.scope.LeaveWith()
	err := c.translateNode(lazy.WantAwait, x.Body)
	if err != nil {
		return err
	}
	c.Push("))(nixBlti.mkScopeWith(" + builtins.InScopeVar + ",")
	if err := c.translateNode(lazy.WantAwait, x.Namespace); err != nil {
		return err
	}
	c.Push("))")
	return nil
}

// translateAssert's await and lazy axes diverge (spec.md §4.10): the await
// axis only flushes a promise the parent already made, but the lazy axis
// must always force a thunk, since the assertion check inside must not run
// until something actually demands the result.
func (c *Context) translateAssert(sctx lazy.StackCtx, x *cst.Assert) error {
	return lazy.Thread(c, sctx, lazy.Flush, lazy.Force, func(lazy.StackCtx) error {
		line := x.Cond.Pos().Position().Line
		msg := escapeStr(fmt.Sprintf("line %d: %s", line, x.CondText))
		c.Push("(async ()=>{await " + builtins.BuiltinsRuntime + ".assert(" + msg + ",")
		if err := c.translateNode(lazy.Normal, x.Cond); err != nil {
			return err
		}
		c.Push("); return (")
		if err := c.translateNode(lazy.WantAwait, x.Body); err != nil {
			return err
		}
		c.Push("); })()")
		return nil
	})
}

// translateLambda, like translateWith, emits unconditionally: a function
// expression is never itself promise- or thunk-shaped, so there is nothing
// for lazy.Thread to decide here.
func (c *Context) translateLambda(x *cst.Lambda) error {
	switch arg := x.Arg.(type) {
	case *cst.Ident:
		jsArg := lambdaArgJSName(arg.Name)
		mark := c.scope.Mark()
		c.scope.Push(scope.Binding{Name: arg.Name, Category: scope.LambdaArg, Emit: jsArg})
		c.Push("(async " + jsArg + "=>(")
		err := c.translateNode(lazy.WantAwait, x.Body)
		c.scope.Truncate(mark)
		if err != nil {
			return err
		}
		c.Push("))")
		return nil
	case *cst.Pattern:
		return c.translatePatternLambda(arg, x.Body)
	default:
		return errors.New(errors.InvalidShape, x.Pos(), "lambda argument is neither an identifier nor a pattern")
	}
}

// translatePatternLambda lowers `{ a, b ? d, ... } @ bound: body`. The bound
// parameter is the pattern's own `@` name if present, else a synthetic
// local; every formal is extracted from it via nixOp._lambdaA2chk, which is
// expected to validate the argument's shape against the formal names and
// apply defaults, consistently with how the same collaborator would reject
// a caller that passed something other than an attrset.
func (c *Context) translatePatternLambda(p *cst.Pattern, body cst.Expr) error {
	boundVar := builtins.LambdaBoundLocal
	if p.At != nil {
		boundVar = lambdaArgJSName(p.At.Name)
	}
	c.Push("(async " + boundVar + "=>{" + boundVar + "=await " + boundVar + ";")
	mark := c.scope.Mark()
	if p.At != nil {
		c.scope.Push(scope.Binding{Name: p.At.Name, Category: scope.LambdaArg, Emit: boundVar})
	}
	for _, entry := range p.Entries {
		jsArg := lambdaArgJSName(entry.Name.Name)
		c.Push("let " + jsArg + "=" + builtins.OperatorsHandle + "." + builtins.OpLambdaA2Chk + "(" + boundVar + "," + escapeStr(entry.Name.Name))
		if entry.Default != nil {
			c.Push(",()=>")
			if err := c.translateNode(lazy.NormalLazy, entry.Default); err != nil {
				c.scope.Truncate(mark)
				return err
			}
		}
		c.Push(");")
		c.scope.Push(scope.Binding{Name: entry.Name.Name, Category: scope.LambdaArg, Emit: jsArg})
	}
	c.Push("return ")
	err := c.translateNode(lazy.WantAwait, body)
	c.scope.Truncate(mark)
	if err != nil {
		return err
	}
	c.Push(";})")
	return nil
}

// ---- let/attrset machinery -------------------------------------------------
//
// AttrSet, LetIn and LegacyLet all fan into translateLet: the binding-group
// lowering that builds a fresh scope object, runs every entry's assignment
// against it, and returns either an explicit body expression (LetIn,
// LegacyLet) or the scope object itself, extracted via the well-known
// nixBlti.extractScope symbol key (plain AttrSet).

func (c *Context) translateAttrSet(sctx lazy.StackCtx, x *cst.AttrSet) error {
	scopeVar := "nixAttrsScope"
	valueSctx := lazy.Normal
	if x.Recursive {
		scopeVar = builtins.InScopeVar
		valueSctx = lazy.NormalLazy
	}
	return c.translateLet(sctx, valueSctx, scopeVar, x.Recursive, x.KVs, x.Inh, nil)
}

func (c *Context) translateLetIn(sctx lazy.StackCtx, x *cst.LetIn) error {
	if x.Body == nil {
		return errors.New(errors.MissingChild, x.Pos(), "let ... in body missing")
	}
	return c.translateLet(sctx, lazy.NormalLazy, builtins.InScopeVar, true, x.KVs, x.Inh, x.Body)
}

func (c *Context) translateLegacyLet(sctx lazy.StackCtx, x *cst.LegacyLet) error {
	var body cst.Expr
	found := false
	for _, kv := range x.KVs {
		if kv.KeyOK && len(kv.K.Path) == 1 {
			if id, ok := kv.K.Path[0].(*cst.Ident); ok && id.Name == "body" {
				found = true
				if kv.AssignOK {
					body = kv.V
				}
				break
			}
		}
	}
	if !found || body == nil {
		return errors.New(errors.MissingChild, x.Pos(), `legacy let block missing a "body" binding`)
	}
	return c.translateLet(sctx, lazy.NormalLazy, builtins.InScopeVar, true, x.KVs, x.Inh, body)
}

// translateLet is the shared core behind translateAttrSet/translateLetIn/
// translateLegacyLet. scopeVar is the JS identifier the new scope object is
// bound to ("nixInScope" for every recursive-binding form so inherit-less
// identifiers inside resolve dynamically through it, "nixAttrsScope" for a
// plain, non-recursive attrset). chainOuter controls both whether entries
// are statically visible to each other (true for every recursive form) and
// whether the freshly built scope object chains to the enclosing one.
// body is nil for a plain AttrSet, whose result is the scope object itself.
func (c *Context) translateLet(sctx, valueSctx lazy.StackCtx, scopeVar string, chainOuter bool, kvs []*cst.KeyValue, inh []*cst.Inherit, body cst.Expr) error {
	if len(kvs) == 0 && len(inh) == 0 {
		if body != nil {
			return c.translateNode(sctx, body)
		}
		c.Push("Object.create(null)")
		return nil
	}

	if !chainOuter && body == nil && len(inh) == 0 && allSimpleKVs(kvs) {
		return c.translateObjectLiteral(kvs, valueSctx)
	}

	return lazy.ThreadSame(c, sctx, lazy.Need, func(lazy.StackCtx) error {
		c.Push("(async " + scopeVar + "=>{")
		mark := c.scope.Mark()
		if chainOuter {
			c.pushScopeNames(kvs, inh)
		}
		var err error
		for _, kv := range kvs {
			if err = c.translateNodeKv(valueSctx, kv, scopeVar); err != nil {
				break
			}
		}
		for i, in := range inh {
			if err != nil {
				break
			}
			err = c.translateNodeInherit(valueSctx, in, scopeVar, fmt.Sprintf("nixInhR%d", i))
		}
		if err == nil {
			c.Push("return ")
			if body != nil {
				err = c.translateNode(lazy.WantAwait, body)
			} else {
				c.Push(scopeVar + "[" + builtins.ExtractScopeKey + "]")
			}
		}
		c.scope.Truncate(mark)
		if err != nil {
			return err
		}
		c.Push(";})(nixBlti.mkScope(")
		if chainOuter {
			c.Push(builtins.InScopeVar)
		}
		c.Push("))")
		return nil
	})
}

// allSimpleKVs reports whether every entry is a plain `name = value;`
// binding with a single-segment identifier key, enabling the non-recursive
// attrset fast path that emits a real object literal instead of an async
// IIFE over an empty scope.
func allSimpleKVs(kvs []*cst.KeyValue) bool {
	for _, kv := range kvs {
		if !kv.KeyOK || !kv.AssignOK || len(kv.K.Path) != 1 {
			return false
		}
		if _, ok := kv.K.Path[0].(*cst.Ident); !ok {
			return false
		}
	}
	return true
}

func (c *Context) translateObjectLiteral(kvs []*cst.KeyValue, valueSctx lazy.StackCtx) error {
	c.Push("Object.assign(Object.create(null),{")
	for i, kv := range kvs {
		if i > 0 {
			c.Push(",")
		}
		id := kv.K.Path[0].(*cst.Ident)
		c.mapIdent(id.Pos(), id.Name)
		c.Push(escapeStr(id.Name))
		c.Push(":")
		if err := c.translateNode(valueSctx, kv.V); err != nil {
			return err
		}
	}
	c.Push("})")
	return nil
}

// pushScopeNames registers every statically-known name a binding group
// introduces (the first key segment of each entry, plus every inherited
// name) as LetScopeVar, so later references resolve instead of reporting
// unknown-identifier, and so a typo inside the group is caught even though
// emission itself always goes through the dynamic nixInScope object.
func (c *Context) pushScopeNames(kvs []*cst.KeyValue, inh []*cst.Inherit) {
	for _, kv := range kvs {
		if !kv.KeyOK {
			continue
		}
		if id, ok := kv.K.Path[0].(*cst.Ident); ok {
			c.scope.Push(scope.Binding{Name: id.Name, Category: scope.LetScopeVar})
		}
	}
	for _, in := range inh {
		for _, name := range in.Names {
			c.scope.Push(scope.Binding{Name: name.Name, Category: scope.LetScopeVar})
		}
	}
}

// translateNodeKv lowers one `key = value;` entry. A single-segment key is
// a direct assignment; a dotted key (`a.b.c = v;`) deep-merges into a
// possibly-freshly-created nested object, since the first segment may
// already hold unrelated sibling keys from another dotted entry sharing the
// same prefix (`a.b = 1; a.c = 2;`).
func (c *Context) translateNodeKv(valueSctx lazy.StackCtx, kv *cst.KeyValue, scopeVar string) error {
	if !kv.KeyOK {
		return errors.New(errors.MissingChild, kv.Pos(), "key for key-value pair missing")
	}
	if !kv.AssignOK {
		return errors.New(errors.MissingChild, kv.Pos(), "value for key-value pair missing")
	}
	kpfi := kv.K.Path[0]
	kpr := kv.K.Path[1:]
	if len(kpr) == 0 {
		c.Push(scopeVar)
		if err := c.keyElementIndexing(kpfi); err != nil {
			return err
		}
		c.Push("=")
		if err := c.translateNode(valueSctx, kv.V); err != nil {
			return err
		}
		c.Push(";")
		return nil
	}

	c.Push("if(!Object.prototype.hasOwnProperty.call(" + scopeVar + ",")
	if err := c.keyElementForceStr(kpfi); err != nil {
		return err
	}
	c.Push("))" + scopeVar)
	if err := c.keyElementIndexing(kpfi); err != nil {
		return err
	}
	// A semicolon closes the if-body here (unlike the braceless single
	// statement this was ported from) so the following await starts its own
	// statement unambiguously.
	c.Push("=Object.create(null);")
	c.Push("await " + builtins.OperatorsHandle + "." + builtins.OpDeepMerge + "(" + scopeVar)
	if err := c.keyElementIndexing(kpfi); err != nil {
		return err
	}
	c.Push(",")
	if err := c.translateNode(valueSctx, kv.V); err != nil {
		return err
	}
	for _, seg := range kpr {
		c.Push(",")
		if err := c.keyElementForceStr(seg); err != nil {
			return err
		}
	}
	c.Push(");")
	return nil
}

// translateNodeInherit lowers `inherit [(from)] a b c;`. Without a `from`
// clause, each name resolves through the ambient scope chain exactly like a
// bare identifier reference. With one, and exactly one name, the source
// expression is forced and indexed directly; with several names the source
// is forced once into tmpVar and every name indexes that instead, so a
// `from` expression with side effects (a lazy computation) only runs once.
func (c *Context) translateNodeInherit(valueSctx lazy.StackCtx, in *cst.Inherit, scopeVar, tmpVar string) error {
	if in.From == nil {
		for _, name := range in.Names {
			c.Push(scopeVar)
			if err := c.keyElementIndexing(name); err != nil {
				return err
			}
			c.Push("=")
			if err := c.translateIdent(name); err != nil {
				return err
			}
			c.Push(";")
		}
		return nil
	}

	if len(in.Names) == 1 {
		name := in.Names[0]
		c.Push(scopeVar)
		if err := c.keyElementIndexing(name); err != nil {
			return err
		}
		c.Push("=await (")
		if err := c.translateNode(lazy.WantAwait, in.From); err != nil {
			return err
		}
		c.Push(")")
		if err := c.keyElementIndexing(name); err != nil {
			return err
		}
		c.Push(";")
		return nil
	}

	c.Push("let " + tmpVar + "=await (")
	if err := c.translateNode(lazy.WantAwait, in.From); err != nil {
		return err
	}
	c.Push(");")
	for _, name := range in.Names {
		c.Push(scopeVar)
		if err := c.keyElementIndexing(name); err != nil {
			return err
		}
		c.Push("=" + tmpVar)
		if err := c.keyElementIndexing(name); err != nil {
			return err
		}
		c.Push(";")
	}
	return nil
}

// ---- strings ---------------------------------------------------------------

// translateString lowers a (possibly interpolated) string literal. Empty
// literal runs are dropped before counting parts, so `"${a}"` (one
// interpolation, no surrounding text) takes the single-part fast path
// rather than emitting a pointless `""+`.
func (c *Context) translateString(sctx lazy.StackCtx, x *cst.StringExpr) error {
	return lazy.ThreadSame(c, sctx, lazy.Forward, func(lazy.StackCtx) error {
		parts := nonEmptyParts(x.Parts)
		switch len(parts) {
		case 0:
			c.Push(`""`)
		case 1:
			return c.translateStringPart(parts[0])
		default:
			c.Push("(")
			for i, p := range parts {
				if i > 0 {
					c.Push("+")
				}
				if err := c.translateStringPart(p); err != nil {
					return err
				}
			}
			c.Push(")")
		}
		return nil
	})
}

func (c *Context) translateStringPart(p cst.StrPart) error {
	if p.Interp == nil {
		c.Push(escapeStr(p.Literal))
		return nil
	}
	c.Push("(")
	if err := c.translateNode(lazy.WantAwait, p.Interp); err != nil {
		return err
	}
	c.Push(")")
	return nil
}

func nonEmptyParts(parts []cst.StrPart) []cst.StrPart {
	out := make([]cst.StrPart, 0, len(parts))
	for _, p := range parts {
		if p.Interp == nil && p.Literal == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
