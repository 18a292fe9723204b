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

package nix2js

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
)

// fixture scenarios mirror spec.md §8's end-to-end table: each source must
// produce output containing the listed substring once wrapped in the
// standard prelude.
func TestTranslateFixtures(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"literal-true", "true", "true"},
		{"binop-add", "1 + 2", "nixOp.Add(1,2)"},
		{"attrset", "{ a = 1; b = 2; }", `Object.assign(Object.create(null),{"a":1,"b":2})`},
		{"with", "with pkgs; foo", `nixBlti.mkScopeWith(nixInScope,`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			js, sm, err := Translate(tc.source, tc.name+".nix")
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.StringContains(js, tc.want))

			var raw map[string]any
			qt.Assert(t, qt.IsNil(json.Unmarshal([]byte(sm), &raw)))
			_, ok := raw["mappings"].(string)
			qt.Assert(t, qt.IsTrue(ok))
		})
	}
}

// TestTranslateIdempotent covers invariant 3: translating the same input
// twice must produce byte-identical output and source map.
func TestTranslateIdempotent(t *testing.T) {
	const source = `let x = 1; in x + 2`
	js1, sm1, err := Translate(source, "idempotent.nix")
	qt.Assert(t, qt.IsNil(err))
	js2, sm2, err := Translate(source, "idempotent.nix")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(js1, js2))
	qt.Assert(t, qt.Equals(sm1, sm2))
}

// TestTranslateNoDoubleAwait covers invariant 4: an await is never emitted
// directly adjacent to another await around a single value-producing node.
func TestTranslateNoDoubleAwait(t *testing.T) {
	sources := []string{
		`1 + 2`,
		`rec { a = 1; b = a + 1; }`,
		`let x = 1; y = x + 1; in x + y`,
		`{ a, b ? 2 }: a + b`,
		`with { foo = 1; }; foo`,
		`assert 1 == 1; 2`,
	}
	for _, source := range sources {
		js, _, err := Translate(source, "no-double-await.nix")
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Not(qt.StringContains(js, "(await (await ")))
	}
}

// TestTranslateParseError exercises the errors.List path: a syntactically
// broken source must fail rather than panic or silently truncate.
func TestTranslateParseError(t *testing.T) {
	_, _, err := Translate("{ a = ; }", "bad.nix")
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestTranslateLambda(t *testing.T) {
	js, _, err := Translate(`{ a, b ? 2 }: a + b`, "lambda.nix")
	qt.Assert(t, qt.IsNil(err))
	for _, want := range []string{
		`_lambdaA2chk(`,
		`"a"`,
		`"b"`,
		`nixOp.Add(`,
	} {
		qt.Assert(t, qt.StringContains(js, want))
	}
}
