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

// Package descset reads, compiles, merges and filters file descriptor sets.
package descset

import (
	"bytes"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/reporter"
)

// Extensions of binary descriptor set files recognized by [Parse].
var binaryExtensions = []string{".pb", ".protoset", ".bin", ".binpb"}

// ParseJSON decodes a descriptor set in protobuf JSON form. Unknown fields
// are ignored.
//
// The document must be a JSON object with a "file" array; otherwise the
// returned error wraps [reporter.ErrMalformedDescriptor].
func ParseJSON(data []byte) (*descriptorpb.FileDescriptorSet, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", reporter.ErrMalformedDescriptor)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: document is not an object", reporter.ErrMalformedDescriptor)
	}
	files := doc.Get("file")
	if !files.Exists() {
		return nil, fmt.Errorf("%w: missing file list", reporter.ErrMalformedDescriptor)
	}
	if !files.IsArray() {
		return nil, fmt.Errorf("%w: file is %s, not a list", reporter.ErrMalformedDescriptor, files.Type)
	}

	fds := &descriptorpb.FileDescriptorSet{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, fds); err != nil {
		return nil, fmt.Errorf("%w: %w", reporter.ErrMalformedDescriptor, err)
	}
	copyDetachedComments(files, fds)
	return fds, nil
}

// copyDetachedComments fills in detached comments that were written under
// the name "detachedLeadingComments", which protojson does not know.
func copyDetachedComments(files gjson.Result, fds *descriptorpb.FileDescriptorSet) {
	for i, file := range files.Array() {
		if i >= len(fds.GetFile()) {
			return
		}
		locs := fds.GetFile()[i].GetSourceCodeInfo().GetLocation()
		for j, loc := range file.Get("sourceCodeInfo.location").Array() {
			if j >= len(locs) {
				break
			}
			detached := loc.Get("detachedLeadingComments")
			if !detached.IsArray() || len(locs[j].GetLeadingDetachedComments()) > 0 {
				continue
			}
			for _, comment := range detached.Array() {
				locs[j].LeadingDetachedComments = append(locs[j].LeadingDetachedComments, comment.String())
			}
		}
	}
}

// ParseBinary decodes a descriptor set in protobuf binary form.
func ParseBinary(data []byte) (*descriptorpb.FileDescriptorSet, error) {
	fds := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, fds); err != nil {
		return nil, fmt.Errorf("%w: %w", reporter.ErrMalformedDescriptor, err)
	}
	return fds, nil
}

// Parse decodes a descriptor set read from the named file. Files ending in
// ".json" are decoded as JSON and files with a binary extension as binary.
// Other files are decoded as JSON if they start with '{'.
func Parse(name string, data []byte) (*descriptorpb.FileDescriptorSet, error) {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case ext == ".json":
		return ParseJSON(data)
	case isBinaryExt(ext):
		return ParseBinary(data)
	case bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")):
		return ParseJSON(data)
	default:
		return ParseBinary(data)
	}
}

func isBinaryExt(ext string) bool {
	return slices.Contains(binaryExtensions, ext)
}

// IsDescriptorFile returns whether name has an extension [Parse] recognizes.
func IsDescriptorFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".json" || isBinaryExt(ext)
}
