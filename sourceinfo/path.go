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

package sourceinfo

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal"
	"github.com/bufbuild/protodoc/reporter"
)

// ErrUnaddressable is returned by [Walk] when a path is well-formed but does
// not end on a descriptor node, for example because it names a file's package
// or a field's type. Such locations are skipped without a warning.
var ErrUnaddressable = errors.New("path does not address a descriptor node")

// NodeKind is the kind of descriptor node a path can address.
type NodeKind int

const (
	FileNode NodeKind = iota + 1
	MessageNode
	EnumNode
	ServiceNode
	FieldNode
	EnumValueNode
	MethodNode
	// ExtensionNode is a field declared at the top level of a file.
	ExtensionNode
)

// String implements [fmt.Stringer].
func (k NodeKind) String() string {
	switch k {
	case FileNode:
		return "file"
	case MessageNode:
		return "message"
	case EnumNode:
		return "enum"
	case ServiceNode:
		return "service"
	case FieldNode:
		return "field"
	case EnumValueNode:
		return "enum value"
	case MethodNode:
		return "method"
	case ExtensionNode:
		return "extension"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Walk follows path from file and returns the descriptor proto it addresses.
//
// Each element of the path is a field number of the current node's message
// type; when that field is a list, the next element is an index into it.
//
// The returned error wraps [ErrUnaddressable] if the path stops at something
// other than a descriptor node, [reporter.ErrUnrecognizedFieldTag] if it
// contains an unknown field number, and [reporter.ErrMalformedPath] if an
// index is missing or out of range.
func Walk(file *descriptorpb.FileDescriptorProto, path protoreflect.SourcePath) (NodeKind, proto.Message, error) {
	var cur node = fileNode{file}
	for i := 0; i < len(path); i++ {
		tag := path[i]
		elems, err := cur.child(tag)
		if err != nil {
			return 0, nil, err
		}
		i++
		if i == len(path) {
			return 0, nil, fmt.Errorf("%w: path ends after list tag %d of %v", reporter.ErrMalformedPath, tag, cur.kind())
		}
		idx := int(path[i])
		if idx < 0 || idx >= elems.len {
			return 0, nil, fmt.Errorf("%w: %v list %d has no element %d", reporter.ErrMalformedPath, cur.kind(), tag, idx)
		}
		cur = elems.at(idx)
	}
	return cur.kind(), cur.descriptor(), nil
}

// node is the position of a path walk. There is one implementation per
// NodeKind; each interprets field tags for its own descriptor type.
type node interface {
	kind() NodeKind
	descriptor() proto.Message
	// child returns the list of nodes selected by tag. It returns an error
	// if tag does not lead to more descriptor nodes.
	child(tag int32) (list, error)
}

// list is a repeated field of descriptor nodes.
type list struct {
	len int
	at  func(int) node
}

func listOf[T any](elems []T, wrap func(T) node) list {
	return list{len: len(elems), at: func(i int) node { return wrap(elems[i]) }}
}

func unrecognized(kind NodeKind, tag int32) error {
	return fmt.Errorf("%w %d for %v", reporter.ErrUnrecognizedFieldTag, tag, kind)
}

type fileNode struct {
	*descriptorpb.FileDescriptorProto
}

func (fileNode) kind() NodeKind              { return FileNode }
func (n fileNode) descriptor() proto.Message { return n.FileDescriptorProto }

func (n fileNode) child(tag int32) (list, error) {
	switch tag {
	case internal.FileMessagesTag:
		return listOf(n.GetMessageType(), newMessageNode), nil
	case internal.FileEnumsTag:
		return listOf(n.GetEnumType(), newEnumNode), nil
	case internal.FileServicesTag:
		return listOf(n.GetService(), newServiceNode), nil
	case internal.FileExtensionsTag:
		return listOf(n.GetExtension(), newExtensionNode), nil
	case internal.FileNameTag, internal.FilePackageTag, internal.FileDependencyTag,
		internal.FileOptionsTag, internal.FileSourceCodeInfoTag, internal.FilePublicDependencyTag,
		internal.FileWeakDependencyTag, internal.FileSyntaxTag, internal.FileEditionTag:
		return list{}, ErrUnaddressable
	default:
		return list{}, unrecognized(FileNode, tag)
	}
}

type messageNode struct{ *descriptorpb.DescriptorProto }

func newMessageNode(m *descriptorpb.DescriptorProto) node { return messageNode{m} }

func (messageNode) kind() NodeKind              { return MessageNode }
func (n messageNode) descriptor() proto.Message { return n.DescriptorProto }

func (n messageNode) child(tag int32) (list, error) {
	switch tag {
	case internal.MessageFieldsTag:
		return listOf(n.GetField(), newFieldNode), nil
	case internal.MessageNestedMessagesTag:
		return listOf(n.GetNestedType(), newMessageNode), nil
	case internal.MessageEnumsTag:
		return listOf(n.GetEnumType(), newEnumNode), nil
	case internal.MessageNameTag, internal.MessageExtensionRangesTag, internal.MessageExtensionsTag,
		internal.MessageOptionsTag, internal.MessageOneofsTag, internal.MessageReservedRangesTag,
		internal.MessageReservedNamesTag:
		return list{}, ErrUnaddressable
	default:
		return list{}, unrecognized(MessageNode, tag)
	}
}

type enumNode struct {
	*descriptorpb.EnumDescriptorProto
}

func newEnumNode(e *descriptorpb.EnumDescriptorProto) node { return enumNode{e} }

func (enumNode) kind() NodeKind              { return EnumNode }
func (n enumNode) descriptor() proto.Message { return n.EnumDescriptorProto }

func (n enumNode) child(tag int32) (list, error) {
	switch tag {
	case internal.EnumValuesTag:
		return listOf(n.GetValue(), newEnumValueNode), nil
	case internal.EnumNameTag, internal.EnumOptionsTag, internal.EnumReservedRangesTag,
		internal.EnumReservedNamesTag:
		return list{}, ErrUnaddressable
	default:
		return list{}, unrecognized(EnumNode, tag)
	}
}

type serviceNode struct {
	*descriptorpb.ServiceDescriptorProto
}

func newServiceNode(s *descriptorpb.ServiceDescriptorProto) node { return serviceNode{s} }

func (serviceNode) kind() NodeKind              { return ServiceNode }
func (n serviceNode) descriptor() proto.Message { return n.ServiceDescriptorProto }

func (n serviceNode) child(tag int32) (list, error) {
	switch tag {
	case internal.ServiceMethodsTag:
		return listOf(n.GetMethod(), newMethodNode), nil
	case internal.ServiceNameTag, internal.ServiceOptionsTag:
		return list{}, ErrUnaddressable
	default:
		return list{}, unrecognized(ServiceNode, tag)
	}
}

// leafNode covers fields, enum values, methods and extensions. Any path
// that continues past one of them is about one of its attributes.
type leafNode struct {
	k    NodeKind
	desc proto.Message
}

func newFieldNode(f *descriptorpb.FieldDescriptorProto) node {
	return leafNode{k: FieldNode, desc: f}
}

func newExtensionNode(f *descriptorpb.FieldDescriptorProto) node {
	return leafNode{k: ExtensionNode, desc: f}
}

func newEnumValueNode(v *descriptorpb.EnumValueDescriptorProto) node {
	return leafNode{k: EnumValueNode, desc: v}
}

func newMethodNode(m *descriptorpb.MethodDescriptorProto) node {
	return leafNode{k: MethodNode, desc: m}
}

func (n leafNode) kind() NodeKind            { return n.k }
func (n leafNode) descriptor() proto.Message { return n.desc }

func (leafNode) child(int32) (list, error) {
	return list{}, ErrUnaddressable
}
