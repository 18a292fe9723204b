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

// Package sourcemap builds a version-3 source map incrementally as the
// translator emits generated text, mirroring original_source/src/helpers.rs's
// snapshot_pos (there built on the `vlq` crate's encoder; here reimplemented
// natively since nothing in the retrieved pack ships a Go VLQ library).
//
// A v3 map's "mappings" field is a sequence of destination lines separated by
// `;`, each holding comma-separated segments. Every segment is a VLQ tuple:
//
//	[dstColumnDelta, sourceIndexDelta, srcLineDelta, srcColumnDelta, nameIndexDelta?]
//
// where every field but the first is a delta from the previous segment's
// corresponding field (not from the previous field on the same line for the
// source triple — source deltas run across the whole file), and the name
// index is present only for mappings that name an identifier.
package sourcemap

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Encoder accumulates mappings for a single (generated file, source file)
// pair. The zero value is ready to use.
type Encoder struct {
	sourceFile string
	sourceRoot string

	mappings strings.Builder
	line     int  // destination line of the last emitted segment
	lineOpen bool // whether the current destination line already has segments

	prevDstCol  int
	prevSrc     int // source index of the previous segment (always 0: single source)
	prevSrcLine int
	prevSrcCol  int
	prevName    int

	names   []string
	nameIdx map[string]int
}

// NewEncoder starts an Encoder mapping back into a single source file.
func NewEncoder(sourceFile string) *Encoder {
	return &Encoder{
		sourceFile: sourceFile,
		nameIdx:    make(map[string]int),
	}
}

// internName returns the stable index of name in the shared names table,
// interning it on first use.
func (e *Encoder) internName(name string) int {
	if i, ok := e.nameIdx[name]; ok {
		return i
	}
	if e.nameIdx == nil {
		e.nameIdx = make(map[string]int)
	}
	i := len(e.names)
	e.names = append(e.names, name)
	e.nameIdx[name] = i
	return i
}

// Add records one mapping: destination (dstLine, dstCol) in the generated
// file corresponds to (srcLine, srcCol) in the source file. Both coordinate
// pairs are 0-based. If name is non-empty, the mapping also carries a name
// reference (used at identifier-emission sites so renamed/aliased builtins
// still point back at the original identifier token).
//
// dstLine must never decrease across calls: the translator emits text
// strictly left to right, so mappings are recorded in destination order.
func (e *Encoder) Add(dstLine, dstCol, srcLine, srcCol int, name string) {
	for e.line < dstLine {
		e.mappings.WriteByte(';')
		e.line++
		e.lineOpen = false
		e.prevDstCol = 0
	}
	if e.lineOpen {
		e.mappings.WriteByte(',')
	}
	e.lineOpen = true

	var buf []byte
	buf = encodeVLQ(buf, dstCol-e.prevDstCol)
	buf = encodeVLQ(buf, 0-e.prevSrc) // single source, index always 0
	buf = encodeVLQ(buf, srcLine-e.prevSrcLine)
	buf = encodeVLQ(buf, srcCol-e.prevSrcCol)
	e.prevDstCol = dstCol
	e.prevSrc = 0
	e.prevSrcLine = srcLine
	e.prevSrcCol = srcCol

	if name != "" {
		ni := e.internName(name)
		buf = encodeVLQ(buf, ni-e.prevName)
		e.prevName = ni
	}
	e.mappings.Write(buf)
}

// rawMap mirrors the JSON shape of a version-3 source map, plus the informal
// "debugId" extension tool chains use to correlate a built artifact with the
// map that was produced alongside it.
type rawMap struct {
	Version    int      `json:"version"`
	File       string   `json:"file,omitempty"`
	SourceRoot string   `json:"sourceRoot,omitempty"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
	DebugID    string   `json:"debugId"`
}

// debugIDNamespace seeds the deterministic debug-ID derivation below; it has
// no meaning beyond keeping this package's UUIDs out of the v5 spec's public
// DNS/URL namespaces.
var debugIDNamespace = uuid.MustParse("a3b36d8e-3e0a-4f0b-8f0a-1b9d8c6a2e3f")

// JSON renders the accumulated mappings as a complete source map document.
// generatedFile is the value of the map's "file" field (the name the
// generated code will be saved under, or "" if unknown to the caller).
//
// The debugId is derived with uuid.NewSHA1 from the source name and the
// final mappings string rather than generated fresh, so that translating
// the same input twice yields byte-identical output (spec.md §8's
// idempotent-retranslation invariant covers the source map too).
func (e *Encoder) JSON(generatedFile string) (string, error) {
	mappings := e.mappings.String()
	id := uuid.NewSHA1(debugIDNamespace, []byte(e.sourceFile+"\x00"+mappings))

	m := rawMap{
		Version:  3,
		File:     generatedFile,
		Sources:  []string{e.sourceFile},
		Names:    e.names,
		Mappings: mappings,
		DebugID:  id.String(),
	}
	if e.names == nil {
		m.Names = []string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
