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

package descset_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/descset"
	"github.com/bufbuild/protodoc/internal/prototest"
	"github.com/bufbuild/protodoc/reporter"
)

const sampleJSON = `{
  "file": [{
    "name": "a.proto",
    "package": "p",
    "messageType": [{"name": "Foo", "field": [{"name": "bar", "number": 1, "type": "TYPE_STRING"}]}],
    "someFutureField": true,
    "sourceCodeInfo": {"location": [
      {"path": [4, 0], "span": [3, 0, 5, 1], "leadingComments": " Foo.\n", "detachedLeadingComments": [" license\n"]},
      {"path": [4, 0, 2, 0], "span": [4, 2, 20], "leadingDetachedComments": [" kept\n"]}
    ]}
  }]
}`

func TestParseJSON(t *testing.T) {
	t.Parallel()
	fds, err := descset.ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, fds.GetFile(), 1)
	file := fds.GetFile()[0]
	assert.Equal(t, "p", file.GetPackage())
	assert.Equal(t, "bar", file.GetMessageType()[0].GetField()[0].GetName())

	locs := file.GetSourceCodeInfo().GetLocation()
	require.Len(t, locs, 2)
	assert.Equal(t, []int32{3, 0, 5, 1}, locs[0].GetSpan())
	assert.Equal(t, []string{" license\n"}, locs[0].GetLeadingDetachedComments())
	assert.Equal(t, []string{" kept\n"}, locs[1].GetLeadingDetachedComments())
}

func TestParseJSONMalformed(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"not json":      `{"file": [`,
		"array":         `[{"name": "a.proto"}]`,
		"string":        `"file"`,
		"no file list":  `{"files": []}`,
		"file not list": `{"file": {"name": "a.proto"}}`,
		"bad field":     `{"file": [{"name": 12}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := descset.ParseJSON([]byte(doc))
			assert.ErrorIs(t, err, reporter.ErrMalformedDescriptor)
		})
	}
}

func TestParseJSONEmptyList(t *testing.T) {
	t.Parallel()
	fds, err := descset.ParseJSON([]byte(`{"file": []}`))
	require.NoError(t, err)
	assert.Empty(t, fds.GetFile())
}

func TestParse(t *testing.T) {
	t.Parallel()
	want := prototest.Set(prototest.File("a.proto", "p"))
	binary, err := proto.Marshal(want)
	require.NoError(t, err)

	for _, name := range []string{"set.pb", "set.protoset", "set.BIN", "set.binpb", "noext"} {
		got, err := descset.Parse(name, binary)
		require.NoError(t, err, name)
		prototest.AssertMessagesEqual(t, want, got, name)
	}
	for _, name := range []string{"set.json", "noext"} {
		got, err := descset.Parse(name, []byte(` {"file": [{"name": "a.proto", "package": "p"}]}`))
		require.NoError(t, err, name)
		prototest.AssertMessagesEqual(t, want, got, name)
	}

	_, err = descset.Parse("set.pb", []byte{0xff, 0xff})
	assert.ErrorIs(t, err, reporter.ErrMalformedDescriptor)
	assert.True(t, descset.IsDescriptorFile("x/set.protoset"))
	assert.False(t, descset.IsDescriptorFile("x/a.proto"))
}

func TestMerge(t *testing.T) {
	t.Parallel()
	first := prototest.File("a.proto", "first")
	merged := descset.Merge(
		prototest.Set(first, prototest.File("b.proto", "")),
		nil,
		prototest.Set(prototest.File("a.proto", "second"), prototest.File("c.proto", "")),
	)
	var names []string
	for _, file := range merged.GetFile() {
		names = append(names, file.GetName())
	}
	assert.Equal(t, []string{"a.proto", "b.proto", "c.proto"}, names)
	assert.Same(t, first, merged.GetFile()[0])
}

func TestFilter(t *testing.T) {
	t.Parallel()
	fds := prototest.Set(
		prototest.File("google/protobuf/empty.proto", "google.protobuf"),
		prototest.File("acme/api/v1/api.proto", "acme.api.v1"),
		prototest.File("acme/internal/x.proto", "acme.internal"),
	)
	tests := []struct {
		name             string
		include, exclude []string
		want             []string
	}{
		{name: "none", want: []string{"google/protobuf/empty.proto", "acme/api/v1/api.proto", "acme/internal/x.proto"}},
		{name: "include", include: []string{"acme/**"}, want: []string{"acme/api/v1/api.proto", "acme/internal/x.proto"}},
		{name: "exclude", exclude: []string{"google/**", "**/internal/*"}, want: []string{"acme/api/v1/api.proto"}},
		{name: "both", include: []string{"acme/**"}, exclude: []string{"acme/api/**"}, want: []string{"acme/internal/x.proto"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			filtered, err := descset.Filter(fds, tc.include, tc.exclude)
			require.NoError(t, err)
			var names []string
			for _, file := range filtered.GetFile() {
				names = append(names, file.GetName())
			}
			assert.Equal(t, tc.want, names)
		})
	}

	_, err := descset.Filter(fds, []string{"a/[b"}, nil)
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "protos/acme/api.proto", []byte(`syntax = "proto3";

package acme;

import "google/protobuf/empty.proto";

// Greeter says hello.
service Greeter {
  rpc Hello(google.protobuf.Empty) returns (google.protobuf.Empty);
}
`), 0o644))

	fds, err := descset.Compile(context.Background(), fsys, []string{"protos"}, "acme/api.proto")
	require.NoError(t, err)
	require.Len(t, fds.GetFile(), 2)
	assert.Equal(t, "google/protobuf/empty.proto", fds.GetFile()[0].GetName())
	api := fds.GetFile()[1]
	assert.Equal(t, "acme/api.proto", api.GetName())

	var found *descriptorpb.SourceCodeInfo_Location
	for _, loc := range api.GetSourceCodeInfo().GetLocation() {
		if len(loc.GetPath()) == 2 && loc.GetPath()[0] == 6 && loc.GetPath()[1] == 0 {
			found = loc
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, " Greeter says hello.\n", found.GetLeadingComments())

	_, err = descset.Compile(context.Background(), fsys, []string{"protos"}, "missing.proto")
	assert.Error(t, err)

	empty, err := descset.Compile(context.Background(), fsys, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.GetFile())
}
