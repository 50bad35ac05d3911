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

package model

import (
	"slices"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protodoc/internal/arena"
	"github.com/bufbuild/protodoc/sourceinfo"
)

// RootName is the name of the root entity.
const RootName = "(root)"

// Entity is a documentation-addressable node of a [Model]: a package, or a
// message, enum, service or option declared in one of the model's files.
//
// Entities are owned by their model and must not be copied.
type Entity struct {
	model *Model

	kind     Kind
	name     string
	fullName string
	desc     proto.Message

	parent   arena.Pointer[Entity]
	children []arena.Pointer[Entity]

	files []string
	// Index of the declaring file and source path of the descriptor, or -1
	// for packages.
	file int
	path protoreflect.SourcePath
	info *sourceinfo.Info

	members []Member
}

// Member is a field of a message, a value of an enum or a method of a
// service. Members are not entities, but carry their own source info.
type Member struct {
	Kind     MemberKind
	Name     string
	FullName string
	// One of *descriptorpb.FieldDescriptorProto,
	// *descriptorpb.EnumValueDescriptorProto or
	// *descriptorpb.MethodDescriptorProto.
	Descriptor proto.Message
	Path       protoreflect.SourcePath
	SourceInfo *sourceinfo.Info
}

// Kind returns the kind of this entity.
func (e *Entity) Kind() Kind {
	return e.kind
}

// Name returns the short name: the declared name for descriptors, the last
// segment for packages and [RootName] for the root.
func (e *Entity) Name() string {
	return e.name
}

// FullName returns the dotted name of this entity with a leading dot, for
// example ".foo.bar.Baz". The root's full name is empty.
func (e *Entity) FullName() string {
	return e.fullName
}

// IsRoot returns whether e is the root of its model.
func (e *Entity) IsRoot() bool {
	return e.fullName == "" && e.parent.Nil()
}

// Descriptor returns the descriptor proto of this entity, or nil for
// packages.
func (e *Entity) Descriptor() proto.Message {
	return e.desc
}

// Parent returns the entity that contains e, or nil if e is the root.
func (e *Entity) Parent() *Entity {
	if e.parent.Nil() {
		return nil
	}
	return e.parent.In(&e.model.entities)
}

// Children returns the direct descendants of e, sorted by full name in
// collation order.
func (e *Entity) Children() []*Entity {
	children := make([]*Entity, len(e.children))
	for i, p := range e.children {
		children[i] = p.In(&e.model.entities)
	}
	return children
}

// NumChildren returns len(e.Children()).
func (e *Entity) NumChildren() int {
	return len(e.children)
}

// SourceFiles returns the names of the files that declare e, in the order
// they appear in the descriptor set. Only packages can have more than one.
func (e *Entity) SourceFiles() []string {
	return slices.Clone(e.files)
}

// SourceInfo returns the source info of e's descriptor, or nil if it has
// none. Packages never have source info.
func (e *Entity) SourceInfo() *sourceinfo.Info {
	return e.info
}

// Location returns the index of the file that declares e and the source
// path of its descriptor within that file. For packages, file is -1.
func (e *Entity) Location() (file int, path protoreflect.SourcePath) {
	return e.file, e.path
}

// Members returns the fields, values or methods of e, in declaration order.
func (e *Entity) Members() []Member {
	return slices.Clone(e.members)
}

// Comments returns the leading comment of e with surrounding whitespace
// removed, or "" if it has none.
func (e *Entity) Comments() string {
	if e.info == nil {
		return ""
	}
	return strings.TrimSpace(e.info.LeadingComments)
}

// String implements [fmt.Stringer].
func (e *Entity) String() string {
	if e.IsRoot() {
		return RootName
	}
	return e.kind.String() + " " + e.fullName
}

func (e *Entity) addChild(p arena.Pointer[Entity]) {
	name := p.In(&e.model.entities).fullName
	i, _ := slices.BinarySearchFunc(e.children, name, e.compareChild)
	// Entities with the same name keep their declaration order.
	for i < len(e.children) && e.children[i].In(&e.model.entities).fullName == name {
		i++
	}
	e.children = slices.Insert(e.children, i, p)
}

// findChild returns the direct child with the given full name.
func (e *Entity) findChild(fullName string) (arena.Pointer[Entity], bool) {
	i, found := slices.BinarySearchFunc(e.children, fullName, e.compareChild)
	if !found {
		return 0, false
	}
	return e.children[i], true
}

func (e *Entity) compareChild(c arena.Pointer[Entity], name string) int {
	return e.model.compareNames(c.In(&e.model.entities).fullName, name)
}

func (e *Entity) addSourceFile(name string) {
	if !slices.Contains(e.files, name) {
		e.files = append(e.files, name)
	}
}
