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

// Package spanindex indexes source spans for point queries.
//
// An [Intersect] splits the line of points into maximal pieces over which
// the set of covering intervals is constant, and keys each piece by its end
// in a btree. Finding the intervals that cover a point is then a single
// seek. An [Index] applies this to line and column positions.
package spanindex

import (
	"fmt"
	"iter"
	"slices"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints" //nolint:exptostd // Tries to replace w/ cmp.
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Piece is a maximal interval of points covered by the same intervals.
type Piece[K Endpoint, V any] struct {
	Start, End K // Inclusive.
	Values     []V
}

// Contains returns whether point lies within the piece.
func (p Piece[K, V]) Contains(point K) bool {
	return p.Start <= point && point <= p.End
}

// Intersect maps points to the values of the intervals that contain them.
// Values are kept in insertion order.
//
// A zero value is ready to use.
type Intersect[K Endpoint, V any] struct {
	tree    btree.Map[K, *Piece[K, V]] // Keyed by Piece.End.
	pending []*Piece[K, V]
}

// Get returns the values of all intervals that contain point, or nil.
func (m *Intersect[K, V]) Get(point K) []V {
	it := m.tree.Iter()
	if !it.Seek(point) || point < it.Value().Start {
		return nil
	}
	return it.Value().Values
}

// Pieces yields the pieces of the map in order. They are pairwise disjoint.
func (m *Intersect[K, V]) Pieces() iter.Seq[Piece[K, V]] {
	return func(yield func(Piece[K, V]) bool) {
		it := m.tree.Iter()
		for more := it.First(); more; more = it.Next() {
			if !yield(*it.Value()) {
				return
			}
		}
	}
}

// Insert adds value over the inclusive interval [start, end]. It returns
// true if the interval did not overlap any interval already present.
func (m *Intersect[K, V]) Insert(start, end K, value V) (disjoint bool) {
	if start > end {
		panic(fmt.Sprintf("spanindex: start (%#v) > end (%#v)", start, end))
	}

	var prev *Piece[K, V]
	for piece := range m.overlapping(start, end) {
		if prev == nil && start < piece.Start {
			// Gap before the first overlapping piece.
			m.pending = append(m.pending, &Piece[K, V]{Start: start, End: piece.Start - 1, Values: []V{value}})
		}

		// Values may share a backing array with a neighboring piece.
		orig := piece.Values

		if piece.Contains(end) && end < piece.End {
			// Split off the part of the piece past end; the existing node
			// keeps its key and becomes the tail.
			head := &Piece[K, V]{Start: piece.Start, End: end, Values: append(slices.Clip(orig), value)}
			piece.Start = end + 1
			m.pending = append(m.pending, head)
			piece = head
		}

		if piece.Contains(start) && piece.Start < start {
			// Split off the part of the piece before start. It keeps the
			// original values.
			m.pending = append(m.pending, &Piece[K, V]{Start: piece.Start, End: start - 1, Values: orig})
			piece.Start = start
		}

		piece.Values = append(slices.Clip(orig), value)

		if prev != nil && prev.End+1 < piece.Start {
			// Gap between two overlapping pieces.
			m.pending = append(m.pending, &Piece[K, V]{Start: prev.End + 1, End: piece.Start - 1, Values: []V{value}})
		}
		prev = piece
	}

	if prev != nil && prev.End < end {
		// Gap after the last overlapping piece.
		m.pending = append(m.pending, &Piece[K, V]{Start: prev.End + 1, End: end, Values: []V{value}})
	}

	for _, piece := range m.pending {
		m.tree.Set(piece.End, piece)
	}
	clear(m.pending)
	m.pending = m.pending[:0]

	if prev == nil {
		m.tree.Set(end, &Piece[K, V]{Start: start, End: end, Values: []V{value}})
	}
	return prev == nil
}

// overlapping yields the pieces that intersect [start, end], in order.
func (m *Intersect[K, V]) overlapping(start, end K) iter.Seq[*Piece[K, V]] {
	return func(yield func(*Piece[K, V]) bool) {
		// Seek finds the first piece whose end is at least start; walk
		// forward until a piece begins after end.
		it := m.tree.Iter()
		for more := it.Seek(start); more; more = it.Next() {
			if end < it.Value().Start || !yield(it.Value()) {
				return
			}
		}
	}
}
