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

// Package model builds the entity tree of a descriptor set.
//
// A [Model] is a rooted tree of packages, messages, enums, services and
// options, together with an index from full name to entity. Packages are
// synthesized from the dotted package names of the files; everything else
// wraps a descriptor proto from the set. Source info is attached from a
// [sourceinfo.Table] built for the same set.
//
// A Model is immutable once built and safe for concurrent reads.
package model

import (
	"iter"
	"strings"

	"github.com/tidwall/btree"
	"golang.org/x/text/collate"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal/arena"
	"github.com/bufbuild/protodoc/sourceinfo"
)

// Model is the entity tree and name index of a descriptor set.
type Model struct {
	fds   *descriptorpb.FileDescriptorSet
	table *sourceinfo.Table

	entities arena.Arena[Entity]
	root     arena.Pointer[Entity]
	index    btree.Map[string, arena.Pointer[Entity]]

	// Orders siblings. Only used while building.
	collator *collate.Collator
}

// compareNames orders full names by the root locale's collation, with
// byte order breaking ties between names that collate equal.
func (m *Model) compareNames(a, b string) int {
	if c := m.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Root returns the root package, whose full name is empty.
func (m *Model) Root() *Entity {
	return m.root.In(&m.entities)
}

// Lookup returns the entity with the given full name.
func (m *Model) Lookup(fullName string) (*Entity, bool) {
	p, ok := m.index.Get(fullName)
	if !ok {
		return nil, false
	}
	return p.In(&m.entities), true
}

// Len returns the number of entities in the index, including the root.
func (m *Model) Len() int {
	return m.index.Len()
}

// All yields every indexed entity in full name order, starting with the
// root.
func (m *Model) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		m.index.Scan(func(_ string, p arena.Pointer[Entity]) bool {
			return yield(p.In(&m.entities))
		})
	}
}

// OfKind returns the entities of the given kind in full name order.
func (m *Model) OfKind(kind Kind) []*Entity {
	var entities []*Entity
	for e := range m.All() {
		if e.kind == kind {
			entities = append(entities, e)
		}
	}
	return entities
}

// DescriptorSet returns the descriptor set the model was built from.
func (m *Model) DescriptorSet() *descriptorpb.FileDescriptorSet {
	return m.fds
}

// Files returns the names of the files in the descriptor set, in order.
func (m *Model) Files() []string {
	files := make([]string, len(m.fds.GetFile()))
	for i, file := range m.fds.GetFile() {
		files[i] = file.GetName()
	}
	return files
}

// FileIndex returns the index of the named file in the descriptor set.
func (m *Model) FileIndex(name string) (int, bool) {
	for i, file := range m.fds.GetFile() {
		if file.GetName() == name {
			return i, true
		}
	}
	return -1, false
}

// Sources returns the source info table the model was built with.
func (m *Model) Sources() *sourceinfo.Table {
	return m.table
}
