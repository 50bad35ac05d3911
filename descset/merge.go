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

package descset

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Merge concatenates the files of sets. When several sets contain a file
// with the same name, the first one wins.
func Merge(sets ...*descriptorpb.FileDescriptorSet) *descriptorpb.FileDescriptorSet {
	merged := &descriptorpb.FileDescriptorSet{}
	seen := map[string]struct{}{}
	for _, set := range sets {
		for _, file := range set.GetFile() {
			if _, ok := seen[file.GetName()]; ok {
				continue
			}
			seen[file.GetName()] = struct{}{}
			merged.File = append(merged.File, file)
		}
	}
	return merged
}

// Filter returns the files of fds whose names match at least one include
// pattern and no exclude pattern. Patterns are doublestar globs matched
// against file names, such as "google/**". No include patterns means every
// file is included.
func Filter(fds *descriptorpb.FileDescriptorSet, include, exclude []string) (*descriptorpb.FileDescriptorSet, error) {
	for _, pattern := range append(include[:len(include):len(include)], exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid file pattern %q", pattern)
		}
	}
	if len(include) == 0 && len(exclude) == 0 {
		return fds, nil
	}
	filtered := &descriptorpb.FileDescriptorSet{}
	for _, file := range fds.GetFile() {
		if matchAny(include, file.GetName(), true) && !matchAny(exclude, file.GetName(), false) {
			filtered.File = append(filtered.File, file)
		}
	}
	return filtered, nil
}

func matchAny(patterns []string, name string, empty bool) bool {
	if len(patterns) == 0 {
		return empty
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
