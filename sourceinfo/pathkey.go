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
	"reflect"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// pathKey turns a path into a comparable value by copying it into an array
// of the same length. Paths of different lengths have different array types,
// so they never compare equal.
func pathKey(p protoreflect.SourcePath) any {
	rv := reflect.ValueOf(p)
	array := reflect.New(reflect.ArrayOf(rv.Len(), rv.Type().Elem())).Elem()
	reflect.Copy(array, rv)
	return array.Interface()
}
