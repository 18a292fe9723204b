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

// Package parser implements a recursive-descent parser producing the
// internal/cst tree straight from internal/scanner's token stream.
//
// Grounded on cue/parser's architecture (a parser struct holding the current
// token as lookahead, an errors.List collecting diagnostics instead of
// panicking, expectConsume-style recovery) generalized to L's grammar per
// original_source/src/main.rs's lalrpop grammar: function application is
// left-associative juxtaposition, `let`/`with`/`assert`/`if` all start at
// function-expression level, and lambda patterns require unbounded
// lookahead to tell apart from a bare attrset (see parsePattern).
package parser

import (
	"github.com/YZITE/nix2js/internal/cst"
	"github.com/YZITE/nix2js/internal/errors"
	"github.com/YZITE/nix2js/internal/scanner"
	"github.com/YZITE/nix2js/internal/token"
)

// Parser turns one file's token stream into a *cst.Root.
type Parser struct {
	sc   scanner.Scanner
	file *token.File

	tok token.Token
	pos token.Pos
	lit string

	pushedBack bool
	pbTok      token.Token
	pbPos      token.Pos
	pbLit      string

	errs errors.List
}

// Parse scans and parses src (whose content must match file) into a Root.
// Parsing never stops at the first error: syntax errors are collected and
// returned as an errors.List, with best-effort recovery so later errors in
// the same file are still reported.
func Parse(file *token.File, src []byte) (*cst.Root, error) {
	p := &Parser{file: file}
	p.sc.Init(file, src, func(pos token.Pos, msg string) {
		p.errs.Add(errors.New(errors.Parse, pos, "%s", msg))
	})
	p.next()
	root := &cst.Root{File: file, Expr: p.parseExprFunction()}
	if p.tok != token.EOF {
		p.errorf("unexpected trailing input")
	}
	return root, p.errs.Err()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs.Add(errors.New(errors.Parse, p.pos, format, args...))
}

// next advances the lookahead by one token, draining the pushback slot
// first if a peek() left one buffered.
func (p *Parser) next() {
	if p.pushedBack {
		p.tok, p.pos, p.lit = p.pbTok, p.pbPos, p.pbLit
		p.pushedBack = false
		return
	}
	p.pos, p.tok, p.lit = p.sc.Scan()
}

// peek returns the token after the current one without consuming it.
func (p *Parser) peek() (token.Token, string) {
	if !p.pushedBack {
		p.pbPos, p.pbTok, p.pbLit = p.sc.Scan()
		p.pushedBack = true
	}
	return p.pbTok, p.pbLit
}

// expectConsume requires the current token to be tok, reports an error and
// performs no recovery otherwise (the caller proceeds with whatever token is
// there, which is how cue/parser's expect behaves too: one missing token
// shouldn't desync the rest of the file).
func (p *Parser) expectConsume(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorf("expected %s, got %s", tok, p.tok)
		return pos
	}
	p.next()
	return pos
}

// snapshot lets the parser speculatively attempt a lambda-pattern parse and
// fall back to parsing the same `{` as a plain attrset if the attempt
// doesn't pan out, mirroring the backtracking real Nix parsers need for this
// exact ambiguity. The returned closure restores everything the attempt
// could have mutated: scanner byte position, lookahead token, pushback slot,
// and any errors recorded along the way.
func (p *Parser) snapshot() (restore func()) {
	scSnap := p.sc.Snapshot()
	tok, pos, lit := p.tok, p.pos, p.lit
	pb, pbTok, pbPos, pbLit := p.pushedBack, p.pbTok, p.pbPos, p.pbLit
	errLen := len(p.errs)
	return func() {
		p.sc.Restore(scSnap)
		p.tok, p.pos, p.lit = tok, pos, lit
		p.pushedBack, p.pbTok, p.pbPos, p.pbLit = pb, pbTok, pbPos, pbLit
		p.errs = p.errs[:errLen]
	}
}

// parseExprFunction is the entry point for any expression position: it
// handles the forms that only occur at function level (lambdas, let, with,
// assert, if) before falling through to the binary/unary operator grammar.
func (p *Parser) parseExprFunction() cst.Expr {
	switch p.tok {
	case token.ASSERT:
		return p.parseAssert()
	case token.WITH:
		return p.parseWith()
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.IDENT:
		if nt, _ := p.peek(); nt == token.COLON {
			name := &cst.Ident{NamePos: p.pos, Name: p.lit}
			p.next() // current = COLON
			p.next() // past COLON
			return &cst.Lambda{Arg: name, Body: p.parseExprFunction()}
		}
		if nt, _ := p.peek(); nt == token.ATSIGN {
			restore := p.snapshot()
			name := &cst.Ident{NamePos: p.pos, Name: p.lit}
			p.next() // current = ATSIGN
			p.next() // past ATSIGN, should sit on '{'
			if pat, ok := p.tryParsePattern(); ok {
				pat.At = name
				if p.tok == token.COLON {
					p.next()
					return &cst.Lambda{Arg: pat, Body: p.parseExprFunction()}
				}
			}
			restore()
		}
	case token.LBRACE:
		restore := p.snapshot()
		if pat, ok := p.tryParsePattern(); ok && p.tok == token.COLON {
			p.next()
			return &cst.Lambda{Arg: pat, Body: p.parseExprFunction()}
		}
		restore()
	}
	return p.parseExprOp()
}

func (p *Parser) parseAssert() cst.Expr {
	assertPos := p.pos
	p.next()
	textStart := p.pos
	cond := p.parseExprOp()
	condText := p.rawSlice(textStart, p.pos) // p.pos: start of the lookahead ';' token
	p.expectConsume(token.SEMICOLON)
	body := p.parseExprFunction()
	return &cst.Assert{AssertPos: assertPos, Cond: cond, Body: body, CondText: condText}
}

func (p *Parser) parseWith() cst.Expr {
	withPos := p.pos
	p.next()
	ns := p.parseExprOp()
	p.expectConsume(token.SEMICOLON)
	body := p.parseExprFunction()
	return &cst.With{WithPos: withPos, Namespace: ns, Body: body}
}

func (p *Parser) parseIf() cst.Expr {
	ifPos := p.pos
	p.next()
	cond := p.parseExprOp()
	p.expectConsume(token.THEN)
	thenE := p.parseExprFunction()
	p.expectConsume(token.ELSE)
	elseE := p.parseExprFunction()
	return &cst.IfExpr{IfPos: ifPos, Cond: cond, Then: thenE, Else: elseE}
}

func (p *Parser) parseLet() cst.Expr {
	letPos := p.pos
	p.next()
	if p.tok == token.LBRACE {
		p.next()
		kvs, inh := p.parseEntries(token.RBRACE)
		rbrace := p.expectConsume(token.RBRACE)
		return &cst.LegacyLet{LetPos: letPos, Rbrace: rbrace, KVs: kvs, Inh: inh}
	}
	kvs, inh := p.parseEntries(token.IN)
	inPos := p.pos
	var body cst.Expr
	if p.tok == token.IN {
		p.next()
		body = p.parseExprFunction()
	} else {
		p.errorf("expected 'in'")
	}
	return &cst.LetIn{LetPos: letPos, KVs: kvs, Inh: inh, InPos: inPos, Body: body}
}

// parseEntries reads KeyValue/Inherit entries until stop (RBRACE or IN),
// recovering from a malformed entry by skipping to the next SEMICOLON so one
// mistake doesn't cascade into spurious errors for the rest of the block.
func (p *Parser) parseEntries(stop token.Token) (kvs []*cst.KeyValue, inh []*cst.Inherit) {
	for p.tok != stop && p.tok != token.EOF {
		if p.tok == token.INHERIT {
			inh = append(inh, p.parseInherit())
			continue
		}
		before := p.pos
		kvs = append(kvs, p.parseKeyValue())
		if p.pos == before {
			// the entry consumed nothing: skip to the next SEMICOLON
			for p.tok != token.SEMICOLON && p.tok != stop && p.tok != token.EOF {
				p.next()
			}
			if p.tok == token.SEMICOLON {
				p.next()
			}
		}
	}
	return
}

func (p *Parser) parseInherit() *cst.Inherit {
	kw := p.pos
	p.next()
	in := &cst.Inherit{KwPos: kw}
	if p.tok == token.LPAREN {
		p.next()
		in.From = p.parseExprOp()
		p.expectConsume(token.RPAREN)
	}
	for p.tok == token.IDENT {
		in.Names = append(in.Names, &cst.Ident{NamePos: p.pos, Name: p.lit})
		p.next()
	}
	in.Semi = p.expectConsume(token.SEMICOLON)
	return in
}

func (p *Parser) parseKeyValue() *cst.KeyValue {
	kv := &cst.KeyValue{}
	if key := p.parseKey(); key != nil {
		kv.K = key
		kv.KeyOK = true
	} else {
		p.errorf("expected attribute name, got %s", p.tok)
	}
	if p.tok == token.ASSIGN {
		kv.Eq = p.pos
		p.next()
		kv.V = p.parseExprFunction()
		kv.AssignOK = true
	} else {
		p.errorf("expected '=', got %s", p.tok)
	}
	kv.Semi = p.expectConsume(token.SEMICOLON)
	return kv
}

func (p *Parser) parseKey() *cst.Key {
	seg := p.parseKeySegment()
	if seg == nil {
		return nil
	}
	path := []cst.Expr{seg}
	for p.tok == token.DOT {
		p.next()
		seg := p.parseKeySegment()
		if seg == nil {
			p.errorf("expected attribute name segment after '.'")
			break
		}
		path = append(path, seg)
	}
	return &cst.Key{Path: path}
}

func (p *Parser) parseKeySegment() cst.Expr {
	switch p.tok {
	case token.IDENT:
		id := &cst.Ident{NamePos: p.pos, Name: p.lit}
		p.next()
		return id
	case token.QUOTE:
		return p.parseString()
	case token.DOLLARBRC:
		return p.parseDynamic()
	}
	return nil
}

func (p *Parser) parseDynamic() *cst.Dynamic {
	dollar := p.pos
	p.next()
	inner := p.parseExprOp()
	rb := p.expectConsume(token.RBRACE)
	return &cst.Dynamic{DollarPos: dollar, RbracePos: rb, Inner: inner}
}

// tryParsePattern attempts to parse `{ a, b ? d, ... }` as a lambda pattern.
// It returns ok=false (silently, without recording errors) the moment it
// finds a token that couldn't appear in a formals list, since at that point
// the `{` almost certainly starts a plain attrset instead; the caller is
// responsible for restoring the parser's position before falling back.
func (p *Parser) tryParsePattern() (*cst.Pattern, bool) {
	lbrace := p.pos
	p.next()
	pat := &cst.Pattern{Lbrace: lbrace}
	if p.tok == token.RBRACE {
		pat.Rbrace = p.pos
		p.next()
		return pat, true
	}
	for {
		switch p.tok {
		case token.ELLIPSIS:
			pat.Ellipsis = true
			p.next()
			if p.tok != token.RBRACE {
				return nil, false
			}
			pat.Rbrace = p.pos
			p.next()
			return pat, true
		case token.IDENT:
			name := &cst.Ident{NamePos: p.pos, Name: p.lit}
			p.next()
			var def cst.Expr
			if p.tok == token.QUESTION {
				p.next()
				def = p.parseExprOp()
			}
			pat.Entries = append(pat.Entries, &cst.PatEntry{Name: name, Default: def})
			switch p.tok {
			case token.COMMA:
				p.next()
				continue
			case token.RBRACE:
				pat.Rbrace = p.pos
				p.next()
				return pat, true
			default:
				return nil, false
			}
		default:
			return nil, false
		}
	}
}

// parseExprOp parses the binary/unary operator grammar via precedence
// climbing, bottoming out at parseApp (application binds tighter than any
// binary operator) and handling the has-attr `?` operator and unary
// `!`/`-` specially since they sit outside the regular left-to-right
// left-associative table.
func (p *Parser) parseExprOp() cst.Expr {
	return p.parseBinary(0)
}

// questionPrec places the has-attr operator above every other binary
// operator (it binds tighter than `*`/`/`), matching Nix's grammar where `?`
// attaches directly to a selection chain rather than a general expression.
const questionPrec = 8

func (p *Parser) parseBinary(minPrec int) cst.Expr {
	lhs := p.parseUnary()
	for {
		isQuestion := p.tok == token.QUESTION
		var prec int
		if isQuestion {
			prec = questionPrec
		} else {
			prec = p.tok.Precedence()
			if prec < 0 || !p.tok.IsBinaryOp() {
				return lhs
			}
		}
		if prec < minPrec {
			return lhs
		}
		op, opPos := p.tok, p.pos
		p.next()
		if isQuestion {
			var y cst.Expr
			if p.tok == token.IDENT {
				y = &cst.Ident{NamePos: p.pos, Name: p.lit}
				p.next()
			} else {
				y = p.parseUnary()
			}
			lhs = &cst.BinaryExpr{X: lhs, OpPos: opPos, Op: token.QUESTION, Y: y}
			continue
		}
		rhs := p.parseBinary(prec + 1)
		lhs = &cst.BinaryExpr{X: lhs, OpPos: opPos, Op: op, Y: rhs}
	}
}

func (p *Parser) parseUnary() cst.Expr {
	if p.tok == token.NOT || p.tok == token.SUB {
		op, pos := p.tok, p.pos
		p.next()
		return &cst.UnaryExpr{OpPos: pos, Op: op, X: p.parseUnary()}
	}
	return p.parseApp()
}

// parseApp parses left-associative function application: a run of
// parseSelect atoms, folded left to right into nested Apply nodes.
func (p *Parser) parseApp() cst.Expr {
	fn := p.parseSelect()
	for p.startsAtom() {
		arg := p.parseSelect()
		fn = &cst.Apply{Fn: fn, Arg: arg}
	}
	return fn
}

// startsAtom reports whether the current token can begin an application
// argument, i.e. an exprSimple. Keywords that only introduce
// function-level forms (let, with, assert, if) are deliberately excluded:
// `f let x = 1; in x` is not valid application syntax in L, matching Nix.
func (p *Parser) startsAtom() bool {
	switch p.tok {
	case token.IDENT, token.INT, token.FLOAT, token.QUOTE, token.PATH,
		token.LBRACE, token.LBRACK, token.LPAREN, token.REC:
		return true
	}
	return false
}

func (p *Parser) parseSelect() cst.Expr {
	x := p.parseAtom()
	for p.tok == token.DOT {
		dot := p.pos
		p.next()
		idx := p.parseKeySegment()
		if idx == nil {
			p.errorf("expected attribute name after '.'")
			return x
		}
		x = &cst.Select{Set: x, DotP: dot, Index: idx}
		if p.tok == token.OR {
			orPos := p.pos
			p.next()
			def := p.parseSelect()
			x = &cst.OrDefault{Index: x, OrPos: orPos, Default: def}
		}
	}
	return x
}

func (p *Parser) parseAtom() cst.Expr {
	switch p.tok {
	case token.IDENT:
		switch p.lit {
		case "true":
			x := &cst.BasicLit{ValuePos: p.pos, Kind: cst.TrueLit, Value: p.lit}
			p.next()
			return x
		case "false":
			x := &cst.BasicLit{ValuePos: p.pos, Kind: cst.FalseLit, Value: p.lit}
			p.next()
			return x
		case "null":
			x := &cst.BasicLit{ValuePos: p.pos, Kind: cst.NullLit, Value: p.lit}
			p.next()
			return x
		}
		id := &cst.Ident{NamePos: p.pos, Name: p.lit}
		p.next()
		return id
	case token.INT:
		x := &cst.BasicLit{ValuePos: p.pos, Kind: cst.IntLit, Value: p.lit}
		p.next()
		return x
	case token.FLOAT:
		x := &cst.BasicLit{ValuePos: p.pos, Kind: cst.FloatLit, Value: p.lit}
		p.next()
		return x
	case token.PATH:
		return p.parsePathLit()
	case token.QUOTE:
		return p.parseString()
	case token.LBRACK:
		return p.parseList()
	case token.LPAREN:
		lp := p.pos
		p.next()
		inner := p.parseExprFunction()
		rp := p.expectConsume(token.RPAREN)
		return &cst.ParenExpr{Lparen: lp, Rparen: rp, Inner: inner}
	case token.REC:
		p.next()
		return p.parseAttrSet(true)
	case token.LBRACE:
		return p.parseAttrSet(false)
	default:
		p.errorf("unexpected token %s", p.tok)
		pos := p.pos
		p.next()
		return &cst.Ident{NamePos: pos, Name: "<error>"}
	}
}

func (p *Parser) parsePathLit() cst.Expr {
	pos, raw := p.pos, p.lit
	end := p.pos.Add(len(raw))
	p.next()
	var anchor cst.PathAnchor
	value := raw
	switch {
	case len(raw) > 0 && raw[0] == '<':
		anchor = cst.PathSearch
		value = raw[1 : len(raw)-1]
	case len(raw) > 0 && raw[0] == '~':
		anchor = cst.PathHome
		value = raw[1:]
	case len(raw) > 0 && raw[0] == '/':
		anchor = cst.PathAbsolute
	default:
		anchor = cst.PathRelative
	}
	return &cst.PathLit{ValuePos: pos, RawEnd: end, Anchor: anchor, Value: value}
}

func (p *Parser) parseList() cst.Expr {
	lb := p.pos
	p.next()
	var items []cst.Expr
	for p.tok != token.RBRACK && p.tok != token.EOF {
		items = append(items, p.parseSelect())
	}
	rb := p.expectConsume(token.RBRACK)
	return &cst.ListExpr{Lbrack: lb, Rbrack: rb, Items: items}
}

func (p *Parser) parseAttrSet(recursive bool) cst.Expr {
	lb := p.pos
	p.next()
	kvs, inh := p.parseEntries(token.RBRACE)
	rb := p.expectConsume(token.RBRACE)
	return &cst.AttrSet{Lbrace: lb, Rbrace: rb, Recursive: recursive, KVs: kvs, Inh: inh}
}

// parseString scans a (possibly interpolated) string literal. The scanner's
// raw-byte mode (ScanStringPart) and the normal token loop hand off to each
// other at each `${`/`}` boundary; see internal/scanner's doc comment on
// ScanStringPart for why this needs no separate lexer mode.
func (p *Parser) parseString() cst.Expr {
	quote := p.pos
	se := &cst.StringExpr{Quote: quote}
	for {
		text, atEnd := p.sc.ScanStringPart()
		if text != "" || atEnd {
			se.Parts = append(se.Parts, cst.StrPart{Literal: text})
		}
		if atEnd {
			se.EndP = p.file.Pos(p.sc.Offset())
			break
		}
		p.next() // load first token of the interpolated expression
		inner := p.parseExprOp()
		se.Parts = append(se.Parts, cst.StrPart{Interp: inner})
		if p.tok != token.RBRACE {
			p.errorf("expected '}' to close string interpolation")
		}
		// p.tok == RBRACE: the scanner's byte cursor already sits right
		// after the '}', exactly where ScanStringPart needs to resume.
	}
	p.next()
	return se
}

// rawSlice supports Assert's CondText, which captures the condition's raw
// source text for the runtime assertion message (the original compiler
// embeds the same text via the source span it parsed from).
func (p *Parser) rawSlice(from, to token.Pos) string {
	if !from.IsValid() || !to.IsValid() || to.Offset() < from.Offset() {
		return ""
	}
	return string(p.sc.SourceSlice(from.Offset(), to.Offset()))
}
