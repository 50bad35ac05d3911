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

// Package arena defines an Arena type with compressed pointers.
package arena

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

const (
	chunkMinLenShift = 4
	chunkMinLen      = 1 << chunkMinLenShift
)

// Pointer is a compressed pointer into an [Arena]. Its value is one plus
// the number of elements allocated before it, so the zero value is nil.
type Pointer[T any] uint32

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return p == 0
}

// In looks up this pointer in the given arena, which must be the arena that
// allocated it. Panics if p is nil or out of range.
func (p Pointer[T]) In(arena *Arena[T]) *T {
	return arena.At(p)
}

// Arena is an append-only store whose elements never move once allocated,
// so *T values obtained from it stay valid while the arena grows.
//
// Elements live in chunks whose sizes double, which keeps lookup O(1).
//
// A zero Arena[T] is empty and ready to use.
type Arena[T any] struct {
	// cap(chunks[n]) == chunkMinLen << n, and every chunk but the last is
	// full.
	chunks [][]T
}

// New allocates a new value on the arena.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.chunks == nil {
		a.chunks = [][]T{make([]T, 0, chunkMinLen)}
	}

	last := &a.chunks[len(a.chunks)-1]
	if len(*last) == cap(*last) {
		a.chunks = append(a.chunks, make([]T, 0, 2*cap(*last)))
		last = &a.chunks[len(a.chunks)-1]
	}

	*last = append(*last, value)
	return Pointer[T](a.Len())
}

// At dereferences p, as if by [Pointer.In].
func (a *Arena[T]) At(p Pointer[T]) *T {
	chunk, idx := a.coordinates(int(p) - 1)
	return &a.chunks[chunk][idx]
}

// Len returns the number of values allocated so far.
func (a *Arena[T]) Len() int {
	if len(a.chunks) == 0 {
		return 0
	}
	return a.lenOfFirstNChunks(len(a.chunks)-1) + len(a.chunks[len(a.chunks)-1])
}

// All yields every allocated value with its pointer, in allocation order.
func (a *Arena[T]) All() iter.Seq2[Pointer[T], *T] {
	return func(yield func(Pointer[T], *T) bool) {
		var p Pointer[T]
		for _, chunk := range a.chunks {
			for i := range chunk {
				p++
				if !yield(p, &chunk[i]) {
					return
				}
			}
		}
	}
}

// String implements [fmt.Stringer]. Chunk boundaries are shown as '|'.
func (a *Arena[T]) String() string {
	var b strings.Builder
	b.WriteRune('[')
	for i, chunk := range a.chunks {
		if i != 0 {
			b.WriteRune('|')
		}
		for j, v := range chunk {
			if j != 0 {
				b.WriteRune(' ')
			}
			fmt.Fprint(&b, v)
		}
	}
	b.WriteRune(']')
	return b.String()
}

func (a *Arena[T]) lenOfFirstNChunks(n int) int {
	// 2^m + 2^(m+1) + ... + 2^(m+n-1) = 2^(m+n) - 2^m
	return max(0, chunkMinLen<<n-chunkMinLen)
}

// coordinates returns the chunk and offset of the element at idx, panicking
// if it is out of range.
func (a *Arena[T]) coordinates(idx int) (int, int) {
	if idx >= a.Len() || idx < 0 {
		panic(fmt.Sprintf("arena: pointer out of range: %#x", idx+1))
	}

	// Chunk n starts at (2^n - 1) << shift. Adding chunkMinLen turns every
	// start into a power of two whose bit position identifies the chunk.
	chunk := bits.UintSize - bits.LeadingZeros(uint(idx)+chunkMinLen)
	chunk -= chunkMinLenShift + 1
	return chunk, idx - a.lenOfFirstNChunks(chunk)
}
