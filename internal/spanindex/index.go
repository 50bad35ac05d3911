// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spanindex

import "slices"

// Pos is a line and column position. Both are zero-based, as in source code
// info spans.
type Pos struct {
	Line, Column int
}

func (p Pos) key() int64 {
	return int64(p.Line)<<32 | int64(uint32(max(p.Column, 0)))
}

// Span is a source range. End is exclusive.
type Span struct {
	Start, End Pos
}

// Index maps positions to the values of the spans that contain them.
//
// A zero value is ready to use.
type Index[V any] struct {
	spans Intersect[int64, entry[V]]
	n     int
}

type entry[V any] struct {
	seq   int
	width int64
	value V
}

// Insert adds value over span. Empty spans cover their start position.
func (x *Index[V]) Insert(span Span, value V) {
	start, end := span.Start.key(), span.End.key()-1
	if end < start {
		end = start
	}
	x.n++
	x.spans.Insert(start, end, entry[V]{seq: x.n, width: end - start, value: value})
}

// At returns the values of the spans containing pos, innermost first.
// Spans of equal width are ordered latest inserted first.
func (x *Index[V]) At(pos Pos) []V {
	entries := slices.Clone(x.spans.Get(pos.key()))
	slices.SortFunc(entries, func(a, b entry[V]) int {
		if a.width != b.width {
			if a.width < b.width {
				return -1
			}
			return 1
		}
		return b.seq - a.seq
	})
	values := make([]V, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}
	return values
}

// Len returns the number of spans inserted.
func (x *Index[V]) Len() int {
	return x.n
}
