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

// Package locate finds the entities and members declared at a source
// position.
package locate

import (
	"github.com/bufbuild/protodoc/internal/spanindex"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/sourceinfo"
)

// Node is an entity, or one of its members, whose span contains a position.
type Node struct {
	Entity *model.Entity
	// Member is nil when the node is the entity itself.
	Member *model.Member
}

// FullName returns the full name of the member or entity.
func (n Node) FullName() string {
	if n.Member != nil {
		return n.Member.FullName
	}
	return n.Entity.FullName()
}

// SourceInfo returns the source info of the member or entity.
func (n Node) SourceInfo() *sourceinfo.Info {
	if n.Member != nil {
		return n.Member.SourceInfo
	}
	return n.Entity.SourceInfo()
}

// Locator answers position queries against a model.
type Locator struct {
	files map[string]*spanindex.Index[Node]
}

// New indexes the spans of every entity and member of m that has source
// info.
func New(m *model.Model) *Locator {
	l := &Locator{files: map[string]*spanindex.Index[Node]{}}
	for e := range m.All() {
		if info := e.SourceInfo(); info != nil {
			l.insert(info, Node{Entity: e})
		}
		for _, member := range e.Members() {
			if member.SourceInfo != nil {
				l.insert(member.SourceInfo, Node{Entity: e, Member: &member})
			}
		}
	}
	return l
}

func (l *Locator) insert(info *sourceinfo.Info, node Node) {
	x := l.files[info.FileName]
	if x == nil {
		x = &spanindex.Index[Node]{}
		l.files[info.FileName] = x
	}
	x.Insert(spanindex.Span{
		Start: spanindex.Pos{Line: info.StartLine, Column: info.StartColumn},
		End:   spanindex.Pos{Line: info.EndLine, Column: info.EndColumn},
	}, node)
}

// At returns the nodes of the named file whose spans contain the given
// zero-based position, innermost first.
func (l *Locator) At(file string, line, column int) []Node {
	x := l.files[file]
	if x == nil {
		return nil
	}
	return x.At(spanindex.Pos{Line: line, Column: column})
}

// Files returns the number of files with indexed spans.
func (l *Locator) Files() int {
	return len(l.files)
}
