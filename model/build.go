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
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal"
	"github.com/bufbuild/protodoc/internal/arena"
	"github.com/bufbuild/protodoc/reporter"
	"github.com/bufbuild/protodoc/sourceinfo"
	"github.com/bufbuild/protodoc/walk"
)

// Build builds the model of fds, attaching source info from table. A nil
// table attaches nothing.
//
// Build fails only if fds is nil. Duplicate full names are not an error:
// the index keeps the entity built last.
func Build(fds *descriptorpb.FileDescriptorSet, table *sourceinfo.Table) (*Model, error) {
	if fds == nil {
		return nil, fmt.Errorf("%w: no descriptor set", reporter.ErrMalformedDescriptor)
	}
	m := &Model{fds: fds, table: table, collator: collate.New(language.Und)}
	m.root = m.entities.New(Entity{
		model: m,
		kind:  KindPackage,
		name:  RootName,
		file:  -1,
	})

	for i, file := range fds.GetFile() {
		pkg := m.ensurePackage(file.GetPackage())
		pkg.In(&m.entities).addSourceFile(file.GetName())

		b := &fileBuilder{model: m, file: file, index: i, pkg: pkg}
		if err := walk.DescriptorProtosWithPathEnterAndExit(file, b.enter, b.exit); err != nil {
			return nil, err
		}
	}

	m.index.Set("", m.root)
	m.collator = nil
	return m, nil
}

// ensurePackage returns the package entity for the dotted package name,
// creating it and any missing ancestors. The empty package is the root.
func (m *Model) ensurePackage(pkg string) arena.Pointer[Entity] {
	cur := m.root
	if pkg == "" {
		return cur
	}
	var fullName string
	for _, segment := range strings.Split(pkg, ".") {
		fullName += "." + segment
		parent := cur.In(&m.entities)
		if child, ok := parent.findChild(fullName); ok {
			cur = child
			continue
		}
		child := m.entities.New(Entity{
			model:    m,
			kind:     KindPackage,
			name:     segment,
			fullName: fullName,
			parent:   cur,
			file:     -1,
		})
		parent.addChild(child)
		m.index.Set(fullName, child)
		cur = child
	}
	return cur
}

// fileBuilder adds the declarations of one file to a model.
type fileBuilder struct {
	model *Model
	file  *descriptorpb.FileDescriptorProto
	index int
	pkg   arena.Pointer[Entity]

	// The entity each entered element produced, or nil for elements that
	// are not entities. The top is the innermost enclosing element.
	stack []arena.Pointer[Entity]
}

func (b *fileBuilder) enter(name protoreflect.FullName, path protoreflect.SourcePath, m proto.Message) error {
	var kind Kind
	switch d := m.(type) {
	case *descriptorpb.DescriptorProto:
		kind = KindMessage
	case *descriptorpb.EnumDescriptorProto:
		kind = KindEnum
	case *descriptorpb.ServiceDescriptorProto:
		kind = KindService
	case *descriptorpb.FieldDescriptorProto:
		if len(path) == 2 && path[0] == internal.FileExtensionsTag {
			kind = KindOption
			break
		}
		if path[len(path)-2] == internal.MessageFieldsTag {
			b.addMember(MemberField, d.GetName(), name, path, m)
		}
	case *descriptorpb.EnumValueDescriptorProto:
		b.addMember(MemberValue, d.GetName(), name, path, m)
	case *descriptorpb.MethodDescriptorProto:
		b.addMember(MemberMethod, d.GetName(), name, path, m)
	}
	if kind == 0 {
		b.stack = append(b.stack, 0)
		return nil
	}

	parent := b.scope()
	ent := b.model.entities.New(Entity{
		model:    b.model,
		kind:     kind,
		name:     nameOf(m),
		fullName: "." + string(name),
		desc:     m,
		parent:   parent,
		files:    []string{b.file.GetName()},
		file:     b.index,
		path:     path,
		info:     b.model.table.Lookup(b.index, path),
	})
	parent.In(&b.model.entities).addChild(ent)
	b.model.index.Set("."+string(name), ent)
	b.stack = append(b.stack, ent)
	return nil
}

func (b *fileBuilder) exit(protoreflect.FullName, protoreflect.SourcePath, proto.Message) error {
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// scope returns the innermost enclosing entity, which is the file's package
// for top-level declarations.
func (b *fileBuilder) scope() arena.Pointer[Entity] {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if !b.stack[i].Nil() {
			return b.stack[i]
		}
	}
	return b.pkg
}

func (b *fileBuilder) addMember(kind MemberKind, shortName string, name protoreflect.FullName, path protoreflect.SourcePath, m proto.Message) {
	owner := b.scope().In(&b.model.entities)
	owner.members = append(owner.members, Member{
		Kind:       kind,
		Name:       shortName,
		FullName:   "." + string(name),
		Descriptor: m,
		Path:       path,
		SourceInfo: b.model.table.Lookup(b.index, path),
	})
}

func nameOf(m proto.Message) string {
	type named interface{ GetName() string }
	if n, ok := m.(named); ok {
		return n.GetName()
	}
	return ""
}
