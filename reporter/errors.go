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

package reporter

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrMalformedDescriptor is returned when a descriptor set document cannot
// be used at all: it is not an object, it has no file list, or it cannot be
// decoded. It is the only fatal input condition.
var ErrMalformedDescriptor = errors.New("malformed descriptor set")

// ErrMalformedPath is reported when a source location path names a list
// element that does not exist, stops right after a repeated field tag, or
// carries a span of the wrong length. The location is dropped.
var ErrMalformedPath = errors.New("malformed location path")

// ErrUnrecognizedFieldTag is reported when a source location path contains
// a field tag that is not known for the descriptor it is applied to. The
// location is dropped.
var ErrUnrecognizedFieldTag = errors.New("unrecognized field tag")

// ErrorWithPath is an error about a source code info location. It carries
// the name of the file whose location table was being read and the location
// path that was being interpreted.
//
// The value of Error() will contain the file, the path and the Underlying
// error. The value of Unwrap() will only be the Underlying error.
type ErrorWithPath interface {
	error
	GetFile() string
	GetPath() protoreflect.SourcePath
	Unwrap() error
}

// Error creates a new ErrorWithPath from the given error.
func Error(file string, path protoreflect.SourcePath, err error) ErrorWithPath {
	return errorWithPath{file: file, path: path, underlying: err}
}

// Errorf creates a new ErrorWithPath whose underlying error is created using
// the given message format and arguments (via fmt.Errorf).
func Errorf(file string, path protoreflect.SourcePath, format string, args ...any) ErrorWithPath {
	return errorWithPath{file: file, path: path, underlying: fmt.Errorf(format, args...)}
}

type errorWithPath struct {
	underlying error
	file       string
	path       protoreflect.SourcePath
}

func (e errorWithPath) Error() string {
	return fmt.Sprintf("%s: path %v: %v", e.file, []int32(e.path), e.underlying)
}

// GetFile implements the ErrorWithPath interface.
func (e errorWithPath) GetFile() string {
	return e.file
}

// GetPath implements the ErrorWithPath interface.
func (e errorWithPath) GetPath() protoreflect.SourcePath {
	return e.path
}

// Unwrap implements the ErrorWithPath interface, supplying the underlying
// error. This error will not include the file or path.
func (e errorWithPath) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPath = errorWithPath{}
