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

package translate

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/kr/pretty"

	"github.com/YZITE/nix2js/internal/builtins"
	"github.com/YZITE/nix2js/internal/cst"
	"github.com/YZITE/nix2js/internal/token"
)

func TestLambdaArgJSNameMangling(t *testing.T) {
	cases := []struct{ name, want string }{
		{"foo", builtins.LambdaArgPrefix + "foo"},
		{"foo-bar", builtins.LambdaArgPrefix + "foo_$_bar"},
		{"it's", builtins.LambdaArgPrefix + "it_$s"},
		{"a-b'c", builtins.LambdaArgPrefix + "a_$_b_$c"},
	}
	for _, tc := range cases {
		qt.Assert(t, qt.Equals(lambdaArgJSName(tc.name), tc.want))
	}
}

func TestEscapeStr(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a", `"a"`},
		{`a"b`, `"a\"b"`},
		{"a\nb", `"a\nb"`},
	}
	for _, tc := range cases {
		qt.Assert(t, qt.Equals(escapeStr(tc.in), tc.want))
	}
}

func TestAttrElemRawSafe(t *testing.T) {
	cases := []struct {
		name string
		safe bool
	}{
		{"foo", true},
		{"foo2", true},
		{"__add", false},
		{"", false},
		{"2foo", false},
		{"foo-bar", false},
		{"foo_bar", false},
	}
	for _, tc := range cases {
		qt.Assert(t, qt.Equals(attrElemRawSafe(tc.name), tc.safe))
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct{ raw, want string }{
		{"1", "1"},
		{"42", "42"},
		{"1.5", "1.5"},
	}
	for _, tc := range cases {
		got, err := formatNumber(tc.raw)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(got, tc.want))
	}
}

// TestAnchorName prints a readable multi-line diff via kr/pretty on mismatch
// rather than relying on %v, which collapses a []string diff into one line.
func TestAnchorName(t *testing.T) {
	got := []string{
		anchorName(cst.PathRelative),
		anchorName(cst.PathHome),
		anchorName(cst.PathSearch),
		anchorName(cst.PathAbsolute),
	}
	want := []string{"Relative", "Home", "Search", "Absolute"}
	if !qt.Check(t, qt.DeepEquals(got, want)) {
		t.Logf("anchorName diff:\n%s", pretty.Diff(want, got))
	}
}

func TestBinOpName(t *testing.T) {
	cases := []struct {
		tok  token.Token
		want string
	}{
		{token.ADD, builtins.OpAdd},
		{token.SUB, builtins.OpSub},
		{token.UPDATE, builtins.OpUpdate},
	}
	for _, tc := range cases {
		got, ok := binOpName(tc.tok)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Assert(t, qt.Equals(got, tc.want))
	}
	_, ok := binOpName(token.EOF)
	qt.Assert(t, qt.IsFalse(ok))
}

// TestTranslateUnknownIdentifier exercises the scope-resolution error path
// directly against a Context, bypassing the parser.
func TestTranslateUnknownIdentifier(t *testing.T) {
	c := New(nil)
	id := &cst.Ident{NamePos: token.NoPos, Name: "totallyUnboundName"}
	err := c.Translate(&cst.Root{Expr: id})
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}
