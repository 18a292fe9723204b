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

package sourcemap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
)

// decodeVLQ is a from-scratch decoder (deliberately independent of
// encodeVLQ) so these tests can't pass merely by mirroring the encoder's own
// bugs back at itself.
func decodeVLQ(s string) (values []int, rest string) {
	i := 0
	for i < len(s) {
		shift := 0
		result := 0
		for {
			c := s[i]
			i++
			digit := strings.IndexByte(b64alphabet, c)
			if digit < 0 {
				i--
				goto done
			}
			cont := digit & 0x20
			result |= (digit & 0x1f) << shift
			shift += 5
			if cont == 0 {
				break
			}
		}
		n := result >> 1
		if result&1 != 0 {
			n = -n
		}
		values = append(values, n)
	}
done:
	return values, s[i:]
}

func TestEncoderSingleLine(t *testing.T) {
	e := NewEncoder("in.nix")
	e.Add(0, 0, 0, 0, "")
	e.Add(0, 5, 1, 2, "foo")
	e.Add(0, 10, 1, 8, "")

	segs := strings.Split(e.mappings.String(), ",")
	qt.Assert(t, qt.HasLen(segs, 3))

	vals, _ := decodeVLQ(segs[1])
	// dstColDelta=5, srcIndexDelta=0, srcLineDelta=1, srcColDelta=2, nameIdx=0
	qt.Assert(t, qt.DeepEquals(vals, []int{5, 0, 1, 2, 0}))
}

func TestEncoderMultiLine(t *testing.T) {
	e := NewEncoder("in.nix")
	e.Add(0, 0, 0, 0, "")
	e.Add(2, 3, 5, 1, "")

	mappings := e.mappings.String()
	qt.Assert(t, qt.Equals(strings.Count(mappings, ";"), 2))
}

func TestEncoderJSONShape(t *testing.T) {
	e := NewEncoder("in.nix")
	e.Add(0, 0, 0, 0, "x")
	out, err := e.JSON("out.js")
	qt.Assert(t, qt.IsNil(err))

	var raw map[string]any
	qt.Assert(t, qt.IsNil(json.Unmarshal([]byte(out), &raw)))
	qt.Assert(t, qt.Equals(raw["version"].(float64), 3))
	qt.Assert(t, qt.Equals(raw["file"], "out.js"))

	sources, _ := raw["sources"].([]any)
	qt.Assert(t, qt.DeepEquals(sources, []any{"in.nix"}))

	names, _ := raw["names"].([]any)
	qt.Assert(t, qt.DeepEquals(names, []any{"x"}))

	_, ok := raw["debugId"].(string)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestEncoderDebugIDDeterministic(t *testing.T) {
	build := func() string {
		e := NewEncoder("in.nix")
		e.Add(0, 0, 0, 0, "x")
		e.Add(0, 4, 0, 6, "")
		out, err := e.JSON("out.js")
		qt.Assert(t, qt.IsNil(err))
		return out
	}
	a, b := build(), build()
	qt.Assert(t, qt.Equals(a, b))
}
