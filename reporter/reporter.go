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

// Package reporter contains the types used for reporting problems found
// while reading a descriptor set. Almost every problem is advisory: the
// offending piece of metadata is dropped and processing continues.
package reporter

import (
	"fmt"
	"slices"
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// WarningReporter is responsible for reporting the given warning. Warnings
// never stop processing; they describe metadata that was ignored.
type WarningReporter func(ErrorWithPath)

// Reporter receives advisory conditions found while resolving source code
// info.
type Reporter interface {
	Warning(ErrorWithPath)
}

// NewReporter creates a new reporter that invokes the given function. A nil
// function discards warnings.
func NewReporter(warnings WarningReporter) Reporter {
	return reporterFuncs{warnings: warnings}
}

type reporterFuncs struct {
	warnings WarningReporter
}

func (r reporterFuncs) Warning(err ErrorWithPath) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler is used by the resolver to deliver warnings to a Reporter. It
// counts the warnings it has delivered and is safe for concurrent use.
type Handler struct {
	reporter Reporter

	mu       sync.Mutex
	warnings int
}

// NewHandler creates a new Handler. A nil reporter discards warnings.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil)
	}
	return &Handler{reporter: rep}
}

// HandleWarning reports err against the given file and location path.
func (h *Handler) HandleWarning(file string, path protoreflect.SourcePath, err error) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.warnings++
	h.reporter.Warning(errorWithPath{file: file, path: slices.Clone(path), underlying: err})
}

// HandleWarningf is like HandleWarning, but formats the underlying error.
func (h *Handler) HandleWarningf(file string, path protoreflect.SourcePath, format string, args ...any) {
	if h == nil {
		return
	}
	h.HandleWarning(file, path, fmt.Errorf(format, args...))
}

// Warnings returns the number of warnings reported so far.
func (h *Handler) Warnings() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.warnings
}
