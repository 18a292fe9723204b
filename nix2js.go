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

// Package nix2js lowers L source into the cooperative-async JS dialect
// described by internal/translate, returning both the generated program and
// its version-3 source map in one call. It is the library entry point spec.md
// §6 names; cmd/nix2js is a thin CLI wrapper around it.
package nix2js

import (
	"github.com/YZITE/nix2js/internal/builtins"
	"github.com/YZITE/nix2js/internal/parser"
	"github.com/YZITE/nix2js/internal/sourcemap"
	"github.com/YZITE/nix2js/internal/token"
	"github.com/YZITE/nix2js/internal/translate"
)

// Translate compiles source (named inputName for diagnostics and the
// resulting source map's "sources" entry) into a JS program plus its source
// map JSON. A non-nil err is always either an *errors.Error or an
// errors.List (see internal/errors); callers that only care about messages
// can print it directly.
//
// The returned program is the body of a function, not a standalone script:
// a few `let` statements binding local aliases, then a `return` of the
// translated expression. It assumes two names are already in its enclosing
// scope, `nixBlti` (the B collaborator, builtins-lib) and `nixRt` (the R
// collaborator, runtime), and its result must itself be awaited by whatever
// embeds it, since every L value — including the program's own result — is
// lazy.
func Translate(source, inputName string) (js, sourceMap string, err error) {
	file := token.NewFile(inputName, []byte(source))
	root, err := parser.Parse(file, []byte(source))
	if err != nil {
		return "", "", err
	}

	sm := sourcemap.NewEncoder(inputName)
	ctx := translate.New(sm)
	if err := ctx.Translate(root); err != nil {
		return "", "", err
	}

	js = "let " + builtins.OperatorsHandle + "=" + builtins.BuiltinsHandle + "." + builtins.OperatorsHandle + ";" +
		"let " + builtins.BuiltinsRuntime + "=" + builtins.BuiltinsHandle + ".initRtDep(" + builtins.RuntimeHandle + ");" +
		"let " + builtins.InScopeVar + "=" + builtins.BuiltinsHandle + ".mkScopeWith();" +
		"return " + ctx.Output() + ";"

	sourceMap, err = sm.JSON("")
	if err != nil {
		return "", "", err
	}
	return js, sourceMap, nil
}
