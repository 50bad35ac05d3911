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

package spanindex_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/protodoc/internal/spanindex"
)

func TestInsert(t *testing.T) {
	t.Parallel()
	type in struct {
		start, end int
		value      string
	}
	type out = spanindex.Piece[int, string]

	tests := []struct {
		name   string
		ranges []in
		want   []out
	}{
		{
			name:   "empty",
			ranges: []in{{0, 9, "foo"}},
			want:   []out{{0, 9, []string{"foo"}}},
		},
		{
			name:   "disjoint",
			ranges: []in{{30, 39, "bar"}, {0, 9, "foo"}, {20, 25, "baz"}},
			want: []out{
				{0, 9, []string{"foo"}},
				{20, 25, []string{"baz"}},
				{30, 39, []string{"bar"}},
			},
		},
		{
			name:   "nested",
			ranges: []in{{0, 100, "a"}, {10, 20, "b"}, {12, 15, "c"}},
			want: []out{
				{0, 9, []string{"a"}},
				{10, 11, []string{"a", "b"}},
				{12, 15, []string{"a", "b", "c"}},
				{16, 20, []string{"a", "b"}},
				{21, 100, []string{"a"}},
			},
		},
		{
			name:   "overlap right",
			ranges: []in{{0, 9, "a"}, {5, 15, "b"}},
			want: []out{
				{0, 4, []string{"a"}},
				{5, 9, []string{"a", "b"}},
				{10, 15, []string{"b"}},
			},
		},
		{
			name:   "overlap left",
			ranges: []in{{5, 15, "b"}, {0, 9, "a"}},
			want: []out{
				{0, 4, []string{"a"}},
				{5, 9, []string{"b", "a"}},
				{10, 15, []string{"b"}},
			},
		},
		{
			name:   "spanning adjacent",
			ranges: []in{{0, 4, "a"}, {5, 9, "b"}, {20, 29, "c"}, {0, 29, "d"}},
			want: []out{
				{0, 4, []string{"a", "d"}},
				{5, 9, []string{"b", "d"}},
				{10, 19, []string{"d"}},
				{20, 29, []string{"c", "d"}},
			},
		},
		{
			name:   "identical",
			ranges: []in{{3, 7, "a"}, {3, 7, "b"}},
			want:   []out{{3, 7, []string{"a", "b"}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var m spanindex.Intersect[int, string]
			for _, r := range tc.ranges {
				m.Insert(r.start, r.end, r.value)
			}
			assert.Equal(t, tc.want, slices.Collect(m.Pieces()))
			for _, piece := range tc.want {
				assert.Equal(t, piece.Values, m.Get(piece.Start))
				assert.Equal(t, piece.Values, m.Get(piece.End))
			}
		})
	}
}

func TestInsertDisjoint(t *testing.T) {
	t.Parallel()
	var m spanindex.Intersect[int, int]
	assert.True(t, m.Insert(0, 5, 1))
	assert.True(t, m.Insert(10, 12, 2))
	assert.False(t, m.Insert(4, 11, 3))
	assert.Nil(t, m.Get(-1))
	assert.Nil(t, m.Get(13))
	assert.Panics(t, func() { m.Insert(5, 4, 0) })
}

func TestIndex(t *testing.T) {
	t.Parallel()
	var x spanindex.Index[string]
	x.Insert(spanindex.Span{Start: spanindex.Pos{Line: 2}, End: spanindex.Pos{Line: 10, Column: 1}}, "Outer")
	x.Insert(spanindex.Span{Start: spanindex.Pos{Line: 3, Column: 2}, End: spanindex.Pos{Line: 3, Column: 20}}, "Outer.id")
	x.Insert(spanindex.Span{Start: spanindex.Pos{Line: 5, Column: 2}, End: spanindex.Pos{Line: 8, Column: 3}}, "Outer.Inner")
	x.Insert(spanindex.Span{Start: spanindex.Pos{Line: 6, Column: 4}, End: spanindex.Pos{Line: 6, Column: 30}}, "Outer.Inner.v")
	x.Insert(spanindex.Span{Start: spanindex.Pos{Line: 12, Column: 0}, End: spanindex.Pos{Line: 12, Column: 0}}, "empty")
	assert.Equal(t, 5, x.Len())

	tests := []struct {
		pos  spanindex.Pos
		want []string
	}{
		{pos: spanindex.Pos{Line: 6, Column: 10}, want: []string{"Outer.Inner.v", "Outer.Inner", "Outer"}},
		{pos: spanindex.Pos{Line: 3, Column: 19}, want: []string{"Outer.id", "Outer"}},
		{pos: spanindex.Pos{Line: 3, Column: 20}, want: []string{"Outer"}},
		{pos: spanindex.Pos{Line: 7, Column: 100}, want: []string{"Outer.Inner", "Outer"}},
		{pos: spanindex.Pos{Line: 10, Column: 0}, want: []string{"Outer"}},
		{pos: spanindex.Pos{Line: 10, Column: 1}, want: []string{}},
		{pos: spanindex.Pos{Line: 12, Column: 0}, want: []string{"empty"}},
		{pos: spanindex.Pos{Line: 1, Column: 5}, want: []string{}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, x.At(tc.pos), "%+v", tc.pos)
	}
}
