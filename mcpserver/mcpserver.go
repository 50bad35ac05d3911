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

// Package mcpserver exposes a model to MCP clients as a set of tools.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/bufbuild/protodoc/coverage"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/render"
	"github.com/bufbuild/protodoc/route"
	"github.com/bufbuild/protodoc/search"
	"github.com/bufbuild/protodoc/snapshot"
)

// ServerName is the name the server reports to clients.
const ServerName = "protodoc"

// Server wraps the MCP server with the model it serves.
type Server struct {
	mcp    *server.MCPServer
	store  *snapshot.Store
	logger logrus.FieldLogger
}

// New returns a server reading models from store. A nil logger discards
// logs.
func New(store *snapshot.Store, version string, logger logrus.FieldLogger) *Server {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, version),
		store:  store,
		logger: logger,
	}
	s.mcp.AddTool(getEntityTool(), s.handleGetEntity)
	s.mcp.AddTool(searchEntitiesTool(), s.handleSearchEntities)
	s.mcp.AddTool(coverageTool(), s.handleCoverage)
	return s
}

// Serve serves MCP over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func getEntityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_entity",
		Description: "Describe a protobuf package, message, enum, service or option: its documentation, source location, children and members",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Full name of the entity, such as acme.v1.User or .acme.v1.User. (root) or an empty name selects the root",
				},
			},
			Required: []string{"name"},
		},
	}
}

func searchEntitiesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_entities",
		Description: "Find entities by name. Dot-separated parts of the query must match successive levels of the tree, such as v1.User",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search term, matched as a substring of entity names",
				},
			},
			Required: []string{"query"},
		},
	}
}

func coverageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "coverage",
		Description: "Report how many entities of each kind have documentation comments",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func (s *Server) handleGetEntity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	name, ok := args["name"].(string)
	if !ok {
		return nil, errors.New("name parameter is required")
	}
	m := s.store.Load()
	if m == nil {
		return notReady(), nil
	}
	s.logger.WithField("name", name).Debug("get_entity")

	e, ok := lookup(m, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no entity named %q", name)), nil
	}
	return formatJSON(render.View(e))
}

func lookup(m *model.Model, name string) (*model.Entity, bool) {
	if strings.HasPrefix(name, ".") {
		return m.Lookup(name)
	}
	return route.Resolve(m, name)
}

// SearchResult is the result of the search_entities tool.
type SearchResult struct {
	Query string       `json:"query"`
	Hits  []render.Ref `json:"hits"`
}

func (s *Server) handleSearchEntities(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	query, _ := args["query"].(string)
	if len(search.Fragments(query)) == 0 {
		return nil, errors.New("query parameter is required and cannot be empty")
	}
	m := s.store.Load()
	if m == nil {
		return notReady(), nil
	}
	s.logger.WithField("query", query).Debug("search_entities")

	res := SearchResult{Query: query, Hits: []render.Ref{}}
	for _, hit := range search.Hits(m.Root(), query) {
		res.Hits = append(res.Hits, render.RefOf(hit))
	}
	return formatJSON(res)
}

func (s *Server) handleCoverage(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m := s.store.Load()
	if m == nil {
		return notReady(), nil
	}
	var buf bytes.Buffer
	if err := render.Coverage(&buf, coverage.Compute(m), false); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func notReady() *mcp.CallToolResult {
	return mcp.NewToolResultError("descriptors have not been loaded yet")
}

func formatJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
