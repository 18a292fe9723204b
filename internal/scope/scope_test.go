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

package scope

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestResolveLastMatchWins(t *testing.T) {
	tb := New(nil)
	tb.Push(Binding{Name: "x", Category: Literal, Emit: "1"})
	tb.Push(Binding{Name: "x", Category: LambdaArg, Emit: "nix__x"})

	b, ok := tb.Resolve("x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.Category, LambdaArg))
	qt.Assert(t, qt.Equals(b.Emit, "nix__x"))
}

func TestMarkTruncateRestoresPriorBinding(t *testing.T) {
	tb := New(nil)
	tb.Push(Binding{Name: "x", Category: Literal, Emit: "outer"})
	mark := tb.Mark()
	tb.Push(Binding{Name: "x", Category: LambdaArg, Emit: "inner"})
	tb.Truncate(mark)

	b, ok := tb.Resolve("x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.Emit, "outer"))
}

func TestResolveUnboundWithoutWith(t *testing.T) {
	tb := New(nil)
	_, ok := tb.Resolve("nope")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestResolveFallsBackToWithScopeVar(t *testing.T) {
	tb := New(nil)
	tb.EnterWith()
	b, ok := tb.Resolve("whatever")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.Category, WithScopeVar))
	tb.LeaveWith()
	_, ok = tb.Resolve("whatever")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestNewCopiesDefaults(t *testing.T) {
	defaults := []Binding{{Name: "true", Category: Literal, Emit: "true"}}
	tb := New(defaults)
	tb.Push(Binding{Name: "x", Category: Literal, Emit: "1"})
	qt.Assert(t, qt.HasLen(defaults, 1))
	_, ok := tb.Resolve("true")
	qt.Assert(t, qt.IsTrue(ok))
}
