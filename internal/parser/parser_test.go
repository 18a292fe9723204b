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

package parser

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/YZITE/nix2js/internal/cst"
	"github.com/YZITE/nix2js/internal/token"
)

func mustParse(t *testing.T, src string) *cst.Root {
	t.Helper()
	file := token.NewFile("<test>", []byte(src))
	root, err := Parse(file, []byte(src))
	qt.Assert(t, qt.IsNil(err))
	return root
}

func TestParseLiteralsAndBinary(t *testing.T) {
	root := mustParse(t, "1 + 2")
	bin, ok := root.Expr.(*cst.BinaryExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(bin.Op, token.ADD))
}

func TestParseAttrSet(t *testing.T) {
	root := mustParse(t, "{ a = 1; b = 2; }")
	as, ok := root.Expr.(*cst.AttrSet)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(as.KVs, 2))
}

func TestParseLetIn(t *testing.T) {
	root := mustParse(t, "let x = 1; in x")
	li, ok := root.Expr.(*cst.LetIn)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(li.KVs, 1))
}

func TestParsePatternLambda(t *testing.T) {
	root := mustParse(t, "{ a, b ? 2 }: a + b")
	lam, ok := root.Expr.(*cst.Lambda)
	qt.Assert(t, qt.IsTrue(ok))
	pat, ok := lam.Arg.(*cst.Pattern)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(pat.Entries, 2))
	qt.Assert(t, qt.Not(qt.IsNil(pat.Entries[1].Default)))
}

func TestParseWith(t *testing.T) {
	root := mustParse(t, "with pkgs; foo")
	_, ok := root.Expr.(*cst.With)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestParseAssert(t *testing.T) {
	root := mustParse(t, "assert 1 == 1; 2")
	_, ok := root.Expr.(*cst.Assert)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestParseErrorsCollected(t *testing.T) {
	file := token.NewFile("<test>", []byte("{ a = ; }"))
	_, err := Parse(file, []byte("{ a = ; }"))
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}
