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

// Package search implements dotted-fragment search over an entity tree.
//
// A search term such as "api.Get" is split into fragments at dots. Walking
// down from the root, an entity matches the first remaining fragment if its
// name contains it, and the fragment is then consumed for the entity's
// subtree. An entity is part of the result if it matched a fragment or has a
// descendant that is part of the result.
package search

import (
	"strings"

	"github.com/bufbuild/protodoc/model"
)

// Fragments splits term at dots, dropping empty fragments.
func Fragments(term string) []string {
	var fragments []string
	for _, f := range strings.Split(term, ".") {
		if f != "" {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

// Result is the outcome of a search.
type Result struct {
	// Keys are the full names of all entities on a matching path. Keys of
	// descendants precede the key of their ancestor.
	Keys []string
	// Hits are the entities at which the last fragment was consumed, in
	// depth-first order.
	Hits []*model.Entity
}

// Search searches the tree under root for term.
func Search(root *model.Entity, term string) Result {
	var r Result
	fragments := Fragments(term)
	if len(fragments) == 0 {
		return r
	}
	r.Keys = r.visit(root, fragments)
	return r
}

// MatchingKeys returns the full names of the entities under root that lie on
// a path matching fragments, including root itself. It returns nil if
// fragments is empty.
func MatchingKeys(root *model.Entity, fragments []string) []string {
	if len(fragments) == 0 {
		return nil
	}
	var r Result
	return r.visit(root, fragments)
}

// Hits returns the entities under root at which every fragment of term has
// been matched.
func Hits(root *model.Entity, term string) []*model.Entity {
	return Search(root, term).Hits
}

func (r *Result) visit(e *model.Entity, fragments []string) []string {
	if len(fragments) == 0 {
		return nil
	}
	var keys []string
	include := false
	if !e.IsRoot() && strings.Contains(e.Name(), fragments[0]) {
		include = true
		fragments = fragments[1:]
		if len(fragments) == 0 {
			r.Hits = append(r.Hits, e)
		}
	}
	for _, child := range e.Children() {
		if childKeys := r.visit(child, fragments); len(childKeys) > 0 {
			include = true
			keys = append(keys, childKeys...)
		}
	}
	if include {
		keys = append(keys, e.FullName())
	}
	return keys
}

// Highlight splits name around the first occurrence of fragment. If name
// does not contain fragment, before is the whole name and ok is false.
func Highlight(name, fragment string) (before, match, after string, ok bool) {
	i := strings.Index(name, fragment)
	if i < 0 || fragment == "" {
		return name, "", "", false
	}
	return name[:i], fragment, name[i+len(fragment):], true
}
