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

// Package lazy implements the lazyness state machine of spec.md §4.2 — the
// hard core of the translator. It decides, at every value-producing CST
// node, whether an await and/or a thunk constructor must wrap the node's
// emitted text, given what the parent has already announced via a StackCtx.
//
// Each axis (await, lazy) is merged independently against its own Verb: most
// nodes declare the same verb for both axes (Apply: Need/Need, IfElse:
// Flush/Flush), but some do not (BinOp: Need/Flush; Assert: Flush/Force),
// so Thread takes a verb per axis rather than assuming they match. Every
// per-node verb pair named in spec.md §4.3-§4.10 carries "front" adjacency
// (no node in this translator uses "back"); the adjacency discipline spec.md
// describes — suppressing a redundant await-of-a-freshly-opened-thunk — falls
// out directly of the merge table below (resetting the StackCtx to
// Await=Want, LazyS=Nothing the moment the lazy axis actually wraps), so no
// separate Adjacency parameter is threaded through calls.
package lazy

// State is one axis's current expectation, as announced by the parent.
type State int

const (
	// Did means a satisfying wrapper is already present in the emitted
	// prefix at this site.
	Did State = iota
	// Want means the parent has already arranged for the child to be
	// treated lazily/eagerly, so the child may skip re-wrapping but must
	// still propagate the expectation.
	Want
	// Nothing is the neutral state: no wrapper is present and none has
	// been arranged.
	Nothing
)

// Verb is how a node declares it will treat a child w.r.t. one axis.
type Verb int

const (
	// Need demands the axis end in Did: if Nothing, it becomes Want
	// without acting yet (the decision to act is deferred to whichever
	// descendant actually needs Did); if already Want, this call performs
	// the action that satisfies the ancestor's earlier promise.
	Need Verb = iota
	// Forward passes the state through unchanged; this node does nothing
	// on this axis and leaves the decision entirely to its child.
	Forward
	// Flush performs the wrapping action only if the parent had promised
	// one (Want), otherwise does nothing.
	Flush
	// Force unconditionally ends the axis in Did, wrapping unless a
	// wrapper is already present. Used where a node must guarantee the
	// action happened regardless of what the parent announced (assert's
	// lazy axis: the block body must always be a thunk).
	Force
)

// StackCtx is the two-field context threaded through the translator's
// recursion.
type StackCtx struct {
	Await State
	LazyS State
}

// merge computes the post-merge state and whether the wrapping action
// fires, for one axis. Exact port of spec.md §4.2's merge table.
func merge(s State, v Verb) (next State, action bool) {
	switch v {
	case Forward:
		return s, false
	case Flush:
		if s == Want {
			return Did, true
		}
		return s, false
	case Need:
		switch s {
		case Did:
			return Did, false
		case Want:
			return Did, true
		default: // Nothing
			return Want, false
		}
	case Force:
		if s == Did {
			return Did, false
		}
		return Did, true
	}
	return s, false
}

// Pusher is the emission sink a Thread call wraps text into; satisfied by
// internal/translate's Context.
type Pusher interface {
	Push(s string)
}

// Thread merges the incoming StackCtx against awaitVerb/lazyVerb (one per
// axis), emits whatever wrapper prefixes are required, invokes inner with
// the resulting StackCtx, then closes the wrappers in reverse order.
//
// When the lazy axis fires, the opened thunk constructor puts inner's text
// inside a fresh `async ()=>` body; from that point on an eventual await of
// the whole wrapper is what resolves it, so inner is told Await=Want,
// LazyS=Nothing — it must not re-wrap for an axis its parent is already
// satisfying by virtue of being inside the thunk.
func Thread(p Pusher, sctx StackCtx, awaitVerb, lazyVerb Verb, inner func(StackCtx) error) error {
	awaitSt, doAwait := merge(sctx.Await, awaitVerb)
	lazySt, doLazy := merge(sctx.LazyS, lazyVerb)

	sctx.Await = awaitSt
	sctx.LazyS = lazySt

	var closers []string
	if doAwait {
		p.Push("(await ")
		closers = append(closers, ")")
	}
	if doLazy {
		p.Push("nixBlti.PLazy.from(async ()=>")
		closers = append(closers, ")")
		sctx.Await = Want
		sctx.LazyS = Nothing
	}

	err := inner(sctx)

	for i := len(closers) - 1; i >= 0; i-- {
		p.Push(closers[i])
	}
	return err
}

// ThreadSame is Thread for the common case where both axes use the same
// verb (Apply, IfElse, Select's two cases, OrDefault, the general let/attrset
// IIFE wrap).
func ThreadSame(p Pusher, sctx StackCtx, verb Verb, inner func(StackCtx) error) error {
	return Thread(p, sctx, verb, verb, inner)
}

// Normal is the neutral StackCtx: neither axis has any promise attached,
// used whenever a node starts translating a child with no inherited
// expectation.
var Normal = StackCtx{Await: Nothing, LazyS: Nothing}

// WantAwait is the StackCtx used where a child's value is needed already
// resolved with no thunk expectation.
var WantAwait = StackCtx{Await: Want, LazyS: Nothing}

// NormalLazy is Normal but with the lazy axis pre-promised — used for
// contexts whose value must remain a thunk no matter what (the root
// expression, recursive-let/attrset bindings, pattern-lambda defaults,
// or-default's two arms).
var NormalLazy = StackCtx{Await: Nothing, LazyS: Want}
