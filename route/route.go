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

// Package route maps entity full names to URL paths and back.
//
// The path of an entity is its full name without the leading dot. The root,
// whose full name is empty, has the path "(root)".
package route

import (
	"strings"

	"github.com/bufbuild/protodoc/model"
)

// FromFullName returns the URL path of the entity with the given full name.
func FromFullName(fullName string) string {
	if fullName == "" {
		return model.RootName
	}
	return strings.TrimPrefix(fullName, ".")
}

// ToFullName returns the full name addressed by a URL path. A leading slash
// is ignored.
func ToFullName(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == model.RootName || path == "" {
		return ""
	}
	return "." + path
}

// Resolve returns the entity of m addressed by path.
func Resolve(m *model.Model, path string) (*model.Entity, bool) {
	return m.Lookup(ToFullName(path))
}
