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

// Package sourceinfo re-associates source code info with the descriptors it
// describes.
//
// A file descriptor carries its comments and spans out of band, as a list
// of locations keyed by paths of field numbers. This package interprets
// those paths against the file's descriptor protos and produces a [Table]
// that maps each addressed node to an [Info]. The descriptors themselves are
// never modified.
package sourceinfo

import (
	"errors"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/reporter"
)

// Info is the source code info attached to a single descriptor node.
//
// Line and column numbers are copied verbatim from the location's span.
type Info struct {
	FileName                string   `json:"fileName" yaml:"fileName"`
	StartLine               int      `json:"startLine" yaml:"startLine"`
	StartColumn             int      `json:"startColumn" yaml:"startColumn"`
	EndLine                 int      `json:"endLine" yaml:"endLine"`
	EndColumn               int      `json:"endColumn" yaml:"endColumn"`
	LeadingComments         string   `json:"leadingComments,omitempty" yaml:"leadingComments,omitempty"`
	TrailingComments        string   `json:"trailingComments,omitempty" yaml:"trailingComments,omitempty"`
	DetachedLeadingComments []string `json:"detachedLeadingComments,omitempty" yaml:"detachedLeadingComments,omitempty"`
}

// Table maps descriptor nodes, identified by the index of their file in the
// descriptor set and their source path within that file, to their Info.
//
// A nil *Table is empty.
type Table struct {
	entries map[tableKey]*Info
}

type tableKey struct {
	file int
	path any
}

// Lookup returns the info for the node at path in the file with the given
// index, or nil if there is none. The empty path addresses the file itself.
func (t *Table) Lookup(file int, path protoreflect.SourcePath) *Info {
	if t == nil {
		return nil
	}
	return t.entries[tableKey{file: file, path: pathKey(path)}]
}

// Len returns the number of nodes that have info.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Table) set(file int, path protoreflect.SourcePath, info *Info) {
	if t.entries == nil {
		t.entries = map[tableKey]*Info{}
	}
	// Later locations for the same path replace earlier ones.
	t.entries[tableKey{file: file, path: pathKey(path)}] = info
}

// Resolve interprets the source code info of every file in fds and returns
// the resulting table.
//
// Locations that do not address a descriptor node are skipped. Those that are
// skipped because of an unknown field tag or a bad index or span are also
// reported to handler as warnings; handler may be nil.
func Resolve(fds *descriptorpb.FileDescriptorSet, handler *reporter.Handler) *Table {
	t := &Table{}
	for i, file := range fds.GetFile() {
		resolveFile(t, i, file, handler)
	}
	return t
}

func resolveFile(t *Table, index int, file *descriptorpb.FileDescriptorProto, handler *reporter.Handler) {
	for _, loc := range file.GetSourceCodeInfo().GetLocation() {
		path := protoreflect.SourcePath(loc.GetPath())
		if _, _, err := Walk(file, path); err != nil {
			if !errors.Is(err, ErrUnaddressable) {
				handler.HandleWarning(file.GetName(), path, err)
			}
			continue
		}
		span := loc.GetSpan()
		if len(span) != 3 && len(span) != 4 {
			handler.HandleWarningf(file.GetName(), path, "%w: span has %d elements, want 3 or 4", reporter.ErrMalformedPath, len(span))
			continue
		}
		t.set(index, path, newInfo(file.GetName(), loc))
	}
}

// newInfo converts loc, whose span has 3 or 4 elements.
func newInfo(fileName string, loc *descriptorpb.SourceCodeInfo_Location) *Info {
	span := loc.GetSpan()
	info := &Info{
		FileName:                fileName,
		StartLine:               int(span[0]),
		StartColumn:             int(span[1]),
		LeadingComments:         loc.GetLeadingComments(),
		TrailingComments:        loc.GetTrailingComments(),
		DetachedLeadingComments: loc.GetLeadingDetachedComments(),
	}
	if len(span) == 3 {
		info.EndLine, info.EndColumn = int(span[0]), int(span[2])
	} else {
		info.EndLine, info.EndColumn = int(span[2]), int(span[3])
	}
	return info
}
