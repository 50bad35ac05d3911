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

package protodoc

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/descset"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/reporter"
	"github.com/bufbuild/protodoc/sourceinfo"
)

// Build decodes a descriptor set in protobuf JSON form and builds its model.
// Problems with individual source locations are reported to rep as warnings,
// which may be nil. The only error is a document that is not a descriptor
// set, which wraps [reporter.ErrMalformedDescriptor].
func Build(data []byte, rep reporter.Reporter) (*model.Model, error) {
	fds, err := descset.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return BuildSet(fds, rep)
}

// BuildSet resolves the source info of fds and builds its model.
func BuildSet(fds *descriptorpb.FileDescriptorSet, rep reporter.Reporter) (*model.Model, error) {
	table := sourceinfo.Resolve(fds, reporter.NewHandler(rep))
	return model.Build(fds, table)
}
