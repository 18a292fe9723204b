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

package lazy

import (
	"testing"

	"github.com/go-quicktest/qt"
)

type bufPusher struct{ s string }

func (b *bufPusher) Push(s string) { b.s += s }

// TestMerge exercises spec.md §4.2's merge table directly, state by state.
func TestMerge(t *testing.T) {
	cases := []struct {
		name       string
		s          State
		v          Verb
		wantNext   State
		wantAction bool
	}{
		{"forward-nothing", Nothing, Forward, Nothing, false},
		{"forward-want", Want, Forward, Want, false},
		{"forward-did", Did, Forward, Did, false},

		{"flush-nothing", Nothing, Flush, Nothing, false},
		{"flush-want", Want, Flush, Did, true},
		{"flush-did", Did, Flush, Did, false},

		{"need-nothing", Nothing, Need, Want, false},
		{"need-want", Want, Need, Did, true},
		{"need-did", Did, Need, Did, false},

		{"force-nothing", Nothing, Force, Did, true},
		{"force-want", Want, Force, Did, true},
		{"force-did", Did, Force, Did, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, action := merge(tc.s, tc.v)
			qt.Assert(t, qt.Equals(next, tc.wantNext))
			qt.Assert(t, qt.Equals(action, tc.wantAction))
		})
	}
}

func TestThreadWrapsBothAxesOnWant(t *testing.T) {
	p := &bufPusher{}
	sctx := StackCtx{Await: Want, LazyS: Want}
	err := Thread(p, sctx, Need, Need, func(inner StackCtx) error {
		qt.Assert(t, qt.Equals(inner.Await, Want))
		qt.Assert(t, qt.Equals(inner.LazyS, Nothing))
		p.Push("BODY")
		return nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(p.s, "(await nixBlti.PLazy.from(async ()=>BODY))"))
}

func TestThreadNoopOnNothingWithFlush(t *testing.T) {
	p := &bufPusher{}
	sctx := StackCtx{Await: Nothing, LazyS: Nothing}
	err := ThreadSame(p, sctx, Flush, func(inner StackCtx) error {
		p.Push("BODY")
		return nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(p.s, "BODY"))
}

func TestThreadAsymmetricVerbs(t *testing.T) {
	p := &bufPusher{}
	// Assert's shape: await Flush (no-op on Nothing), lazy Force (always wraps).
	sctx := StackCtx{Await: Nothing, LazyS: Nothing}
	err := Thread(p, sctx, Flush, Force, func(inner StackCtx) error {
		p.Push("BODY")
		return nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(p.s, "nixBlti.PLazy.from(async ()=>BODY)"))
}
