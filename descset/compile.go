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
	"context"
	"fmt"
	"io"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/protoutil"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal/toposort"
)

// Compile compiles the named .proto files, resolved against importPaths in
// fsys, and returns them with their imports. Each file appears once, after
// the files it imports. Source info is included.
func Compile(ctx context.Context, fsys afero.Fs, importPaths []string, files ...string) (*descriptorpb.FileDescriptorSet, error) {
	if len(files) == 0 {
		return &descriptorpb.FileDescriptorSet{}, nil
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: importPaths,
			Accessor: func(path string) (io.ReadCloser, error) {
				return fsys.Open(path)
			},
		}),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	compiled, err := compiler.Compile(ctx, files...)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	roots := make([]protoreflect.FileDescriptor, len(compiled))
	for i, fd := range compiled {
		roots[i] = fd
	}
	sorted, err := toposort.Sort(roots, protoreflect.FileDescriptor.Path, imports)
	if err != nil {
		return nil, err
	}
	fds := &descriptorpb.FileDescriptorSet{}
	for _, fd := range sorted {
		fds.File = append(fds.File, protoutil.ProtoFromFileDescriptor(fd))
	}
	return fds, nil
}

func imports(fd protoreflect.FileDescriptor) []protoreflect.FileDescriptor {
	imps := fd.Imports()
	deps := make([]protoreflect.FileDescriptor, imps.Len())
	for i := range deps {
		deps[i] = imps.Get(i).FileDescriptor
	}
	return deps
}
