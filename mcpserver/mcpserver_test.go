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

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal/prototest"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/snapshot"
	"github.com/bufbuild/protodoc/sourceinfo"
)

func testServer(t *testing.T, loaded bool) *Server {
	t.Helper()
	file := prototest.File("acme.proto", "acme")
	file.MessageType = []*descriptorpb.DescriptorProto{prototest.Message("Request", "id"), prototest.Message("Response")}
	prototest.WithLocations(file, prototest.Loc([]int32{4, 0}, []int32{2, 0, 6, 1}, " A request.\n"))
	fds := prototest.Set(file)
	m, err := model.Build(fds, sourceinfo.Resolve(fds, nil))
	require.NoError(t, err)

	store := &snapshot.Store{}
	if loaded {
		store.Swap(m)
	}
	return New(store, "test", nil)
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestGetEntity(t *testing.T) {
	t.Parallel()
	s := testServer(t, true)
	for _, name := range []string{"acme.Request", ".acme.Request", "/acme.Request"} {
		result, err := s.handleGetEntity(context.Background(), call("get_entity", map[string]interface{}{"name": name}))
		require.NoError(t, err)
		assert.False(t, result.IsError, name)
		text := resultText(t, result)
		assert.Equal(t, ".acme.Request", gjson.Get(text, "fullName").String(), name)
		assert.Equal(t, "A request.", gjson.Get(text, "comments").String())
		assert.Equal(t, "id", gjson.Get(text, "members.0.name").String())
	}

	result, err := s.handleGetEntity(context.Background(), call("get_entity", map[string]interface{}{"name": "(root)"}))
	require.NoError(t, err)
	assert.Equal(t, "acme", gjson.Get(resultText(t, result), "children.0.name").String())

	result, err = s.handleGetEntity(context.Background(), call("get_entity", map[string]interface{}{"name": "acme.Nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "acme.Nope")

	_, err = s.handleGetEntity(context.Background(), call("get_entity", map[string]interface{}{}))
	require.Error(t, err)
}

func TestSearchEntities(t *testing.T) {
	t.Parallel()
	s := testServer(t, true)
	result, err := s.handleSearchEntities(context.Background(), call("search_entities", map[string]interface{}{"query": "es"}))
	require.NoError(t, err)
	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &res))
	assert.Equal(t, "es", res.Query)
	var names []string
	for _, hit := range res.Hits {
		names = append(names, hit.FullName)
	}
	assert.Equal(t, []string{".acme.Request", ".acme.Response"}, names)

	_, err = s.handleSearchEntities(context.Background(), call("search_entities", map[string]interface{}{"query": ""}))
	require.Error(t, err)
}

func TestCoverageTool(t *testing.T) {
	t.Parallel()
	s := testServer(t, true)
	result, err := s.handleCoverage(context.Background(), call("coverage", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "message  1           2      50.0%")
}

func TestNotLoaded(t *testing.T) {
	t.Parallel()
	s := testServer(t, false)
	for _, result := range []func() (*mcp.CallToolResult, error){
		func() (*mcp.CallToolResult, error) {
			return s.handleGetEntity(context.Background(), call("get_entity", map[string]interface{}{"name": "acme"}))
		},
		func() (*mcp.CallToolResult, error) {
			return s.handleSearchEntities(context.Background(), call("search_entities", map[string]interface{}{"query": "acme"}))
		},
		func() (*mcp.CallToolResult, error) {
			return s.handleCoverage(context.Background(), call("coverage", nil))
		},
	} {
		res, err := result()
		require.NoError(t, err)
		assert.True(t, res.IsError)
	}
}

func TestToolsOverJSONRPC(t *testing.T) {
	t.Parallel()
	s := testServer(t, true)
	ctx := context.Background()

	resp := s.mcp.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var names []string
	for _, tool := range gjson.GetBytes(data, "result.tools").Array() {
		names = append(names, tool.Get("name").String())
	}
	assert.ElementsMatch(t, []string{"get_entity", "search_entities", "coverage"}, names)

	resp = s.mcp.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_entity","arguments":{"name":"acme.Response"}}}`))
	data, err = json.Marshal(resp)
	require.NoError(t, err)
	text := gjson.GetBytes(data, "result.content.0.text").String()
	assert.Equal(t, "message", gjson.Get(text, "kind").String())
}
