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

// Package render formats entities and reports for people and programs.
package render

import (
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/route"
	"github.com/bufbuild/protodoc/sourceinfo"
)

// EntityView is the serializable form of an entity.
type EntityView struct {
	Kind        model.Kind       `json:"kind" yaml:"kind"`
	Name        string           `json:"name" yaml:"name"`
	FullName    string           `json:"fullName" yaml:"fullName"`
	Path        string           `json:"path" yaml:"path"`
	Parent      string           `json:"parent,omitempty" yaml:"parent,omitempty"`
	SourceFiles []string         `json:"sourceFiles,omitempty" yaml:"sourceFiles,omitempty"`
	Comments    string           `json:"comments,omitempty" yaml:"comments,omitempty"`
	SourceInfo  *sourceinfo.Info `json:"sourceInfo,omitempty" yaml:"sourceInfo,omitempty"`

	// Set for options.
	Extendee string `json:"extendee,omitempty" yaml:"extendee,omitempty"`
	Number   int32  `json:"number,omitempty" yaml:"number,omitempty"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`

	Children []Ref        `json:"children,omitempty" yaml:"children,omitempty"`
	Members  []MemberView `json:"members,omitempty" yaml:"members,omitempty"`
}

// Ref identifies an entity.
type Ref struct {
	Kind     model.Kind `json:"kind" yaml:"kind"`
	Name     string     `json:"name" yaml:"name"`
	FullName string     `json:"fullName" yaml:"fullName"`
	Path     string     `json:"path" yaml:"path"`
}

// MemberView is the serializable form of a field, enum value or method.
type MemberView struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name" yaml:"name"`
	FullName string `json:"fullName" yaml:"fullName"`
	Number   int32  `json:"number,omitempty" yaml:"number,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Oneof    *int32 `json:"oneof,omitempty" yaml:"oneof,omitempty"`

	Input           string `json:"input,omitempty" yaml:"input,omitempty"`
	Output          string `json:"output,omitempty" yaml:"output,omitempty"`
	ClientStreaming bool   `json:"clientStreaming,omitempty" yaml:"clientStreaming,omitempty"`
	ServerStreaming bool   `json:"serverStreaming,omitempty" yaml:"serverStreaming,omitempty"`

	Comments   string           `json:"comments,omitempty" yaml:"comments,omitempty"`
	SourceInfo *sourceinfo.Info `json:"sourceInfo,omitempty" yaml:"sourceInfo,omitempty"`
}

// RefOf returns a reference to e.
func RefOf(e *model.Entity) Ref {
	return Ref{Kind: e.Kind(), Name: e.Name(), FullName: e.FullName(), Path: route.FromFullName(e.FullName())}
}

// View returns the serializable form of e.
func View(e *model.Entity) EntityView {
	v := EntityView{
		Kind:        e.Kind(),
		Name:        e.Name(),
		FullName:    e.FullName(),
		Path:        route.FromFullName(e.FullName()),
		SourceFiles: e.SourceFiles(),
		Comments:    e.Comments(),
		SourceInfo:  e.SourceInfo(),
	}
	if parent := e.Parent(); parent != nil {
		v.Parent = route.FromFullName(parent.FullName())
	}
	if field, ok := e.Descriptor().(*descriptorpb.FieldDescriptorProto); ok {
		v.Extendee = strings.TrimPrefix(field.GetExtendee(), ".")
		v.Number = field.GetNumber()
		v.Type = fieldType(field)
	}
	for _, child := range e.Children() {
		v.Children = append(v.Children, RefOf(child))
	}
	for _, member := range e.Members() {
		v.Members = append(v.Members, memberView(member))
	}
	return v
}

func memberView(member model.Member) MemberView {
	v := MemberView{
		Kind:       member.Kind.String(),
		Name:       member.Name,
		FullName:   member.FullName,
		SourceInfo: member.SourceInfo,
	}
	if member.SourceInfo != nil {
		v.Comments = strings.TrimSpace(member.SourceInfo.LeadingComments)
	}
	switch d := member.Descriptor.(type) {
	case *descriptorpb.FieldDescriptorProto:
		v.Number = d.GetNumber()
		v.Type = fieldType(d)
		if d.Label != nil {
			v.Label = enumName(d.GetLabel().String(), "LABEL_")
		}
		if d.OneofIndex != nil {
			v.Oneof = d.OneofIndex
		}
	case *descriptorpb.EnumValueDescriptorProto:
		v.Number = d.GetNumber()
	case *descriptorpb.MethodDescriptorProto:
		v.Input = strings.TrimPrefix(d.GetInputType(), ".")
		v.Output = strings.TrimPrefix(d.GetOutputType(), ".")
		v.ClientStreaming = d.GetClientStreaming()
		v.ServerStreaming = d.GetServerStreaming()
	}
	return v
}

// fieldType returns the message or enum name of a field, or the name of its
// scalar type.
func fieldType(field *descriptorpb.FieldDescriptorProto) string {
	if name := field.GetTypeName(); name != "" {
		return strings.TrimPrefix(name, ".")
	}
	if field.Type == nil {
		return ""
	}
	return enumName(field.GetType().String(), "TYPE_")
}

func enumName(name, prefix string) string {
	return strings.ToLower(strings.TrimPrefix(name, prefix))
}
