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

package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protodoc/coverage"
	"github.com/bufbuild/protodoc/internal/prototest"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/render"
	"github.com/bufbuild/protodoc/sourceinfo"
)

func sampleModel(t *testing.T) *model.Model {
	t.Helper()
	file := prototest.File("acme.proto", "acme")
	req := prototest.Message("Request", "id")
	req.Field[0].Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	req.NestedType = []*descriptorpb.DescriptorProto{prototest.Message("Filter")}
	file.MessageType = []*descriptorpb.DescriptorProto{req}
	file.EnumType = []*descriptorpb.EnumDescriptorProto{prototest.Enum("Status", "OK")}
	svc := prototest.Service("Api", "Get")
	svc.Method[0].InputType = proto.String(".acme.Request")
	svc.Method[0].ServerStreaming = proto.Bool(true)
	file.Service = []*descriptorpb.ServiceDescriptorProto{svc}
	file.Extension = []*descriptorpb.FieldDescriptorProto{prototest.Extension("label", 5000, ".google.protobuf.FieldOptions")}
	prototest.WithLocations(file,
		prototest.Loc([]int32{4, 0}, []int32{2, 0, 6, 1}, " A request.\n"),
		prototest.Loc([]int32{4, 0, 2, 0}, []int32{3, 2, 20}, " The ids.\n"),
	)
	fds := prototest.Set(file)
	m, err := model.Build(fds, sourceinfo.Resolve(fds, nil))
	require.NoError(t, err)
	return m
}

func TestTree(t *testing.T) {
	t.Parallel()
	m := sampleModel(t)
	tests := []struct {
		name string
		opts render.TreeOptions
		want string
	}{
		{
			name: "full",
			want: `(root)
└── acme package
    ├── Api service
    ├── label option
    ├── Request message
    │   └── Filter message
    └── Status enum
`,
		},
		{
			name: "search",
			opts: render.TreeOptions{Search: "Req"},
			want: `(root)
└── acme package
    └── Request message
`,
		},
		{
			name: "dotted search",
			opts: render.TreeOptions{Search: "acme.Fil"},
			want: `(root)
└── acme package
    └── Request message
        └── Filter message
`,
		},
		{
			name: "no match",
			opts: render.TreeOptions{Search: "zzz"},
			want: "",
		},
		{
			name: "depth",
			opts: render.TreeOptions{MaxDepth: 1},
			want: `(root)
└── acme package [+4]
`,
		},
		{
			name: "depth_two",
			opts: render.TreeOptions{MaxDepth: 2},
			want: `(root)
└── acme package
    ├── Api service
    ├── label option
    ├── Request message [+1]
    └── Status enum
`,
		},
		{
			name: "depth_search",
			opts: render.TreeOptions{MaxDepth: 1, Search: "Req"},
			want: `(root)
└── acme package
`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, render.Tree(&buf, m.Root(), tc.opts))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestTreeColor(t *testing.T) {
	t.Parallel()
	m := sampleModel(t)
	var buf bytes.Buffer
	require.NoError(t, render.Tree(&buf, m.Root(), render.TreeOptions{Search: "Req", Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Req")
	assert.Contains(t, buf.String(), "uest")
}

func TestCoverage(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, render.Coverage(&buf, coverage.Compute(sampleModel(t)), false))
	assert.Equal(t, strings.Join([]string{
		"KIND     DOCUMENTED  TOTAL  PERCENT",
		"package  0           1      0.0%     ░░░░░░░░░░░░░░░░░░░░",
		"message  1           2      50.0%    ██████████░░░░░░░░░░",
		"enum     0           1      0.0%     ░░░░░░░░░░░░░░░░░░░░",
		"service  0           1      0.0%     ░░░░░░░░░░░░░░░░░░░░",
		"option   0           1      0.0%     ░░░░░░░░░░░░░░░░░░░░",
		"",
	}, "\n"), buf.String())

	buf.Reset()
	require.NoError(t, render.Coverage(&buf, coverage.Compute(sampleModel(t)), true))
	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[2], "message  1           2      50.0%    \x1b["), lines[2])
}

func TestView(t *testing.T) {
	t.Parallel()
	m := sampleModel(t)
	req, ok := m.Lookup(".acme.Request")
	require.True(t, ok)
	v := render.View(req)
	assert.Equal(t, "acme.Request", v.Path)
	assert.Equal(t, "acme", v.Parent)
	assert.Equal(t, "A request.", v.Comments)
	assert.Equal(t, []render.Ref{{Kind: model.KindMessage, Name: "Filter", FullName: ".acme.Request.Filter", Path: "acme.Request.Filter"}}, v.Children)
	require.Len(t, v.Members, 1)
	assert.Equal(t, render.MemberView{
		Kind:       "field",
		Name:       "id",
		FullName:   ".acme.Request.id",
		Number:     1,
		Label:      "repeated",
		Type:       "string",
		Comments:   "The ids.",
		SourceInfo: req.Members()[0].SourceInfo,
	}, v.Members[0])

	api, ok := m.Lookup(".acme.Api")
	require.True(t, ok)
	method := render.View(api).Members[0]
	assert.Equal(t, "acme.Request", method.Input)
	assert.Equal(t, "google.protobuf.Empty", method.Output)
	assert.True(t, method.ServerStreaming)

	label, ok := m.Lookup(".acme.label")
	require.True(t, ok)
	lv := render.View(label)
	assert.Equal(t, "google.protobuf.FieldOptions", lv.Extendee)
	assert.Equal(t, int32(5000), lv.Number)
	assert.Equal(t, "string", lv.Type)

	root := render.View(m.Root())
	assert.Equal(t, "(root)", root.Path)
	assert.Empty(t, root.Parent)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "message", decoded["kind"])
	assert.Equal(t, ".acme.Request", decoded["fullName"])
}

func TestYAML(t *testing.T) {
	t.Parallel()
	m := sampleModel(t)
	req, ok := m.Lookup(".acme.Request")
	require.True(t, ok)
	var buf bytes.Buffer
	require.NoError(t, render.YAML(&buf, req))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "message", decoded["kind"])
	assert.Equal(t, "acme.Request", decoded["path"])
	info, ok := decoded["sourceInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acme.proto", info["fileName"])
	assert.Equal(t, 6, info["endLine"])
}

func TestIndent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "  a\n  b\n", render.Indent("a\nb\n", "  "))
	assert.Equal(t, "  a", render.Indent("a", "  "))
}
