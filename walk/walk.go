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

// Package walk provides helper functions for traversing all elements in a
// file descriptor proto, along with their fully-qualified names and their
// source paths.
package walk

import (
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal"
)

// Func is called for every element visited. The path is owned by the
// callee and may be retained.
type Func func(protoreflect.FullName, protoreflect.SourcePath, proto.Message) error

// DescriptorProtosWithPath walks all messages, enums, services, extensions
// and their members in file, in declaration order. Messages are visited
// before their fields, nested messages, nested enums and extensions, in
// that order. If fn returns an error, the walk stops and returns it.
func DescriptorProtosWithPath(file *descriptorpb.FileDescriptorProto, fn Func) error {
	return DescriptorProtosWithPathEnterAndExit(file, fn, nil)
}

// DescriptorProtosWithPathEnterAndExit is like DescriptorProtosWithPath,
// but also calls exit (if not nil) after an element and everything it
// contains has been visited.
func DescriptorProtosWithPathEnterAndExit(file *descriptorpb.FileDescriptorProto, enter, exit Func) error {
	w := &protoWalker{enter: enter, exit: exit}
	return w.walkDescriptorProtos(file)
}

type protoWalker struct {
	enter, exit Func
}

// child returns a new path for element i of the list with the given tag.
// The result never shares its backing array with path.
func child(path protoreflect.SourcePath, tag int32, i int) protoreflect.SourcePath {
	return append(slices.Clip(path), tag, int32(i))
}

func (w *protoWalker) leaf(fqn string, path protoreflect.SourcePath, m proto.Message) error {
	if err := w.enter(protoreflect.FullName(fqn), path, m); err != nil {
		return err
	}
	if w.exit != nil {
		return w.exit(protoreflect.FullName(fqn), path, m)
	}
	return nil
}

func (w *protoWalker) walkDescriptorProtos(file *descriptorpb.FileDescriptorProto) error {
	prefix := file.GetPackage()
	if prefix != "" {
		prefix += "."
	}
	var path protoreflect.SourcePath
	for i, msg := range file.GetMessageType() {
		if err := w.walkDescriptorProto(prefix, child(path, internal.FileMessagesTag, i), msg); err != nil {
			return err
		}
	}
	for i, en := range file.GetEnumType() {
		if err := w.walkEnumDescriptorProto(prefix, child(path, internal.FileEnumsTag, i), en); err != nil {
			return err
		}
	}
	for i, ext := range file.GetExtension() {
		if err := w.leaf(prefix+ext.GetName(), child(path, internal.FileExtensionsTag, i), ext); err != nil {
			return err
		}
	}
	for i, svc := range file.GetService() {
		if err := w.walkServiceDescriptorProto(prefix, child(path, internal.FileServicesTag, i), svc); err != nil {
			return err
		}
	}
	return nil
}

func (w *protoWalker) walkDescriptorProto(prefix string, path protoreflect.SourcePath, msg *descriptorpb.DescriptorProto) error {
	fqn := prefix + msg.GetName()
	if err := w.enter(protoreflect.FullName(fqn), path, msg); err != nil {
		return err
	}
	prefix = fqn + "."
	for i, fld := range msg.GetField() {
		if err := w.leaf(prefix+fld.GetName(), child(path, internal.MessageFieldsTag, i), fld); err != nil {
			return err
		}
	}
	for i, nested := range msg.GetNestedType() {
		if err := w.walkDescriptorProto(prefix, child(path, internal.MessageNestedMessagesTag, i), nested); err != nil {
			return err
		}
	}
	for i, en := range msg.GetEnumType() {
		if err := w.walkEnumDescriptorProto(prefix, child(path, internal.MessageEnumsTag, i), en); err != nil {
			return err
		}
	}
	for i, ext := range msg.GetExtension() {
		if err := w.leaf(prefix+ext.GetName(), child(path, internal.MessageExtensionsTag, i), ext); err != nil {
			return err
		}
	}
	if w.exit != nil {
		return w.exit(protoreflect.FullName(fqn), path, msg)
	}
	return nil
}

func (w *protoWalker) walkEnumDescriptorProto(prefix string, path protoreflect.SourcePath, en *descriptorpb.EnumDescriptorProto) error {
	fqn := prefix + en.GetName()
	if err := w.enter(protoreflect.FullName(fqn), path, en); err != nil {
		return err
	}
	for i, val := range en.GetValue() {
		// Enum values are scoped to the enum's parent, not the enum.
		if err := w.leaf(prefix+val.GetName(), child(path, internal.EnumValuesTag, i), val); err != nil {
			return err
		}
	}
	if w.exit != nil {
		return w.exit(protoreflect.FullName(fqn), path, en)
	}
	return nil
}

func (w *protoWalker) walkServiceDescriptorProto(prefix string, path protoreflect.SourcePath, svc *descriptorpb.ServiceDescriptorProto) error {
	fqn := prefix + svc.GetName()
	if err := w.enter(protoreflect.FullName(fqn), path, svc); err != nil {
		return err
	}
	for i, mtd := range svc.GetMethod() {
		if err := w.leaf(fqn+"."+mtd.GetName(), child(path, internal.ServiceMethodsTag, i), mtd); err != nil {
			return err
		}
	}
	if w.exit != nil {
		return w.exit(protoreflect.FullName(fqn), path, svc)
	}
	return nil
}
