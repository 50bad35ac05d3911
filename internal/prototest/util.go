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

// Package prototest holds descriptor fixtures and assertions shared by tests.
package prototest

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"
)

// LoadDescriptorSet reads a protobuf-JSON descriptor set from path.
func LoadDescriptorSet(t *testing.T, path string) *descriptorpb.FileDescriptorSet {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return ParseDescriptorSet(t, string(data))
}

// ParseDescriptorSet decodes a protobuf-JSON descriptor set.
func ParseDescriptorSet(t *testing.T, text string) *descriptorpb.FileDescriptorSet {
	t.Helper()
	var fdset descriptorpb.FileDescriptorSet
	err := protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal([]byte(text), &fdset)
	require.NoError(t, err)
	return &fdset
}

// Set wraps files in a descriptor set.
func Set(files ...*descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorSet {
	return &descriptorpb.FileDescriptorSet{File: files}
}

// File returns a file with the given name and package and no declarations.
func File(name, pkg string) *descriptorpb.FileDescriptorProto {
	file := &descriptorpb.FileDescriptorProto{Name: proto.String(name)}
	if pkg != "" {
		file.Package = proto.String(pkg)
	}
	return file
}

// Message returns a message with string fields of the given names, numbered
// from 1.
func Message(name string, fields ...string) *descriptorpb.DescriptorProto {
	msg := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for i, field := range fields {
		msg.Field = append(msg.Field, &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(field),
			Number: proto.Int32(int32(i + 1)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
		})
	}
	return msg
}

// Enum returns an enum with values of the given names, numbered from 0.
func Enum(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	en := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, value := range values {
		en.Value = append(en.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(value),
			Number: proto.Int32(int32(i)),
		})
	}
	return en
}

// Service returns a service whose methods take and return
// google.protobuf.Empty.
func Service(name string, methods ...string) *descriptorpb.ServiceDescriptorProto {
	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String(name)}
	for _, method := range methods {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(method),
			InputType:  proto.String(".google.protobuf.Empty"),
			OutputType: proto.String(".google.protobuf.Empty"),
		})
	}
	return svc
}

// Extension returns an extension of extendee with the given name and number.
func Extension(name string, number int32, extendee string) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
		Extendee: proto.String(extendee),
	}
}

// Loc returns a source location. leading is optional and sets the leading
// comment.
func Loc(path, span []int32, leading ...string) *descriptorpb.SourceCodeInfo_Location {
	loc := &descriptorpb.SourceCodeInfo_Location{Path: path, Span: span}
	if len(leading) > 0 {
		loc.LeadingComments = proto.String(leading[0])
	}
	return loc
}

// WithLocations sets the source code info of file and returns it.
func WithLocations(file *descriptorpb.FileDescriptorProto, locs ...*descriptorpb.SourceCodeInfo_Location) *descriptorpb.FileDescriptorProto {
	file.SourceCodeInfo = &descriptorpb.SourceCodeInfo{Location: locs}
	return file
}

func AssertMessagesEqual(t *testing.T, exp, act proto.Message, msgAndArgs ...interface{}) {
	t.Helper()
	AssertMessagesEqualWithOptions(t, exp, act, nil, msgAndArgs...)
}

func AssertMessagesEqualWithOptions(t *testing.T, exp, act proto.Message, opts []cmp.Option, msgAndArgs ...interface{}) {
	t.Helper()
	cmpOpts := []cmp.Option{protocmp.Transform()}
	cmpOpts = append(cmpOpts, opts...)
	if diff := cmp.Diff(exp, act, cmpOpts...); diff != "" {
		var prefix string
		if len(msgAndArgs) == 1 {
			if msg, ok := msgAndArgs[0].(string); ok {
				prefix = msg + ": "
			} else {
				prefix = fmt.Sprintf("%+v: ", msgAndArgs[0])
			}
		} else if len(msgAndArgs) > 1 {
			prefix = fmt.Sprintf(msgAndArgs[0].(string)+": ", msgAndArgs[1:]...)
		}

		t.Errorf("%smessage mismatch (-want +got):\n%v", prefix, diff)
	}
}
