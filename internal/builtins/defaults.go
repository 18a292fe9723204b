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

// Package builtins documents the B collaborator's surface (spec.md §6) and
// supplies the default scope-table contents every translation starts from.
// B's implementation is out of scope; this package only names what the
// emitted code expects B to provide.
package builtins

import "github.com/YZITE/nix2js/internal/scope"

// Well-known identifiers emitted verbatim or through the builtins-runtime
// handle. These match the JS surface a B implementation must provide.
const (
	BuiltinsHandle   = "nixBlti"   // the B collaborator (builtins-lib) itself
	OperatorsHandle  = "nixOp"     // B.nixOp — namespace of operator implementations
	BuiltinsRuntime  = "nixBltiRT" // the initialized builtins-runtime handle
	ExtractScopeKey  = "nixBlti.extractScope"
	OrDefaultHelper  = "nixBlti.orDefault"
	RuntimeHandle    = "nixRt"      // the R collaborator
	InScopeVar       = "nixInScope" // current dynamic scope object
	LambdaArgPrefix  = "nix__"
	LambdaBoundLocal = "nixBound"
)

// Default returns the scope-table bindings present at the start of every
// translation: the three value literals, the builtins handle itself, and
// every well-known builtin name, aliased to its (possibly `__`-prefixed)
// member on the builtins-runtime namespace.
func Default() []scope.Binding {
	defs := make([]scope.Binding, 0, len(aliasedBuiltinNames)+4)
	defs = append(defs,
		scope.Binding{Name: "true", Category: scope.Literal, Emit: "true"},
		scope.Binding{Name: "false", Category: scope.Literal, Emit: "false"},
		scope.Binding{Name: "null", Category: scope.Literal, Emit: "null"},
		scope.Binding{Name: "builtins", Category: scope.Literal, Emit: BuiltinsRuntime},
	)
	for _, name := range aliasedBuiltinNames {
		defs = append(defs, scope.Binding{Name: name, Category: scope.AliasedBuiltin, Emit: name})
	}
	return defs
}

// aliasedBuiltinNames is the full set of builtin identifiers L exposes,
// ported verbatim from the original compiler's default-variable table (the
// `__`-prefixed internal names and their unprefixed public aliases, plus
// `import`, `abort`, `throw`, `derivation`, and friends).
var aliasedBuiltinNames = []string{
	"abort",
	"__addErrorContext",
	"__add",
	"__all",
	"__any",
	"__appendContext",
	"__attrNames",
	"__attrValues",
	"baseNameOf",
	"__bitAnd",
	"__bitOr",
	"__bitXor",
	"__catAttrs",
	"__compareVersions",
	"__concatLists",
	"__concatMap",
	"__concatStringsSep",
	"__currentSystem",
	"__currentTime",
	"__deepSeq",
	"derivation",
	"derivationStrict",
	"dirOf",
	"__div",
	"__elemAt",
	"__elem",
	"fetchGit",
	"fetchMercurial",
	"fetchTarball",
	"__fetchurl",
	"__filter",
	"__filterSource",
	"__findFile",
	"__foldl'",
	"__fromJSON",
	"fromTOML",
	"__functionArgs",
	"__genericClosure",
	"__genList",
	"__getAttr",
	"__getContext",
	"__getEnv",
	"__hasAttr",
	"__hasContext",
	"__hashFile",
	"__hashString",
	"__head",
	"import",
	"__intersectAttrs",
	"__isAttrs",
	"__isBool",
	"__isFloat",
	"__isFunction",
	"__isInt",
	"__isList",
	"isNull",
	"__isPath",
	"__isString",
	"__langVersion",
	"__length",
	"__lessThan",
	"__listToAttrs",
	"__mapAttrs",
	"map",
	"__match",
	"__mul",
	"__nixPath",
	"__nixVersion",
	"__parseDrvName",
	"__partition",
	"__pathExists",
	"__path",
	"placeholder",
	"__readDir",
	"__readFile",
	"removeAttrs",
	"__replaceStrings",
	"scopedImport",
	"__seq",
	"__sort",
	"__split",
	"__splitVersion",
	"__storeDir",
	"__storePath",
	"__stringLength",
	"__sub",
	"__substring",
	"__tail",
	"throw",
	"__toFile",
	"__toJSON",
	"__toPath",
	"toString",
	"__toXML",
	"__trace",
	"__tryEval",
	"__typeOf",
	"__unsafeDiscardOutputDependency",
	"__unsafeDiscardStringContext",
	"__unsafeGetAttrPos",
	"__valueSize",
}

// StripAliasPrefix removes a leading "__" from a builtin member name, per
// §4.1's AliasedBuiltin emission rule.
func StripAliasPrefix(name string) string {
	if len(name) >= 2 && name[0] == '_' && name[1] == '_' {
		return name[2:]
	}
	return name
}

// Operator member names on B.nixOp, per spec.md §6.
const (
	OpAdd         = "Add"
	OpSub         = "Sub"
	OpMul         = "Mul"
	OpDiv         = "Div"
	OpConcat      = "Concat"
	OpEqual       = "Equal"
	OpLess        = "Less"
	OpMore        = "More"
	OpLessOrEq    = "LessOrEq"
	OpMoreOrEq    = "MoreOrEq"
	OpNotEqual    = "NotEqual"
	OpAnd         = "And"
	OpOr          = "Or"
	OpImplication = "Implication"
	OpUpdate      = "Update"
	OpInvert      = "u_Invert"
	OpNegate      = "u_Negate"
	OpDeepMerge   = "_deepMerge"
	OpLambdaA2Chk = "_lambdaA2chk"
)
