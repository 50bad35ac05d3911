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

package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/internal/prototest"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/render"
	"github.com/bufbuild/protodoc/server"
	"github.com/bufbuild/protodoc/snapshot"
	"github.com/bufbuild/protodoc/sourceinfo"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	file := prototest.File("acme.proto", "acme")
	file.MessageType = []*descriptorpb.DescriptorProto{prototest.Message("Request", "id")}
	file.EnumType = []*descriptorpb.EnumDescriptorProto{prototest.Enum("Status", "OK")}
	prototest.WithLocations(file,
		prototest.Loc([]int32{4, 0}, []int32{2, 0, 6, 1}, " A request.\n"),
		prototest.Loc([]int32{4, 0, 2, 0}, []int32{3, 2, 20}),
	)
	fds := prototest.Set(file)
	m, err := model.Build(fds, sourceinfo.Resolve(fds, nil))
	require.NoError(t, err)
	return m
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, []byte) {
	t.Helper()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, target, nil))
	resp := rw.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestNotReady(t *testing.T) {
	t.Parallel()
	h := server.New(&snapshot.Store{}, nil).Handler()
	for _, target := range []string{"/api/descriptors", "/api/entities/acme", "/api/search?q=a", "/api/coverage", "/api/locate?file=a&line=1&column=1"} {
		resp, body := get(t, h, target)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, target)
		errs := decode[server.ErrorResponse](t, body)
		require.Len(t, errs.Errors, 1)
		assert.Equal(t, "503", errs.Errors[0].Status)
	}

	resp, body := get(t, h, "/ping")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestRoutes(t *testing.T) {
	t.Parallel()
	m := testModel(t)
	store := &snapshot.Store{}
	store.Swap(m)
	h := server.New(store, nil).Handler()

	t.Run("descriptors", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, h, "/api/descriptors")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		var fds descriptorpb.FileDescriptorSet
		require.NoError(t, protojson.Unmarshal(body, &fds))
		prototest.AssertMessagesEqual(t, m.DescriptorSet(), &fds)
	})

	t.Run("entities", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			target   string
			status   int
			fullName string
		}{
			{target: "/api/entities/acme.Request", status: http.StatusOK, fullName: ".acme.Request"},
			{target: "/api/entities/acme", status: http.StatusOK, fullName: ".acme"},
			{target: "/api/entities/", status: http.StatusOK, fullName: ""},
			{target: "/api/entities/(root)", status: http.StatusOK, fullName: ""},
			{target: "/api/entities/acme.Missing", status: http.StatusNotFound},
			{target: "/api/entities/acme.Request.id", status: http.StatusNotFound},
		}
		for _, tc := range tests {
			resp, body := get(t, h, tc.target)
			require.Equal(t, tc.status, resp.StatusCode, tc.target)
			if tc.status != http.StatusOK {
				errs := decode[server.ErrorResponse](t, body)
				assert.Equal(t, "404", errs.Errors[0].Status)
				continue
			}
			view := decode[render.EntityView](t, body)
			assert.Equal(t, tc.fullName, view.FullName, tc.target)
		}

		_, body := get(t, h, "/api/entities/acme.Request")
		view := decode[render.EntityView](t, body)
		assert.Equal(t, model.KindMessage, view.Kind)
		assert.Equal(t, "A request.", view.Comments)
		require.Len(t, view.Members, 1)
		assert.Equal(t, "id", view.Members[0].Name)
	})

	t.Run("search", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, h, "/api/search?q=acme.Req")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		res := decode[server.SearchResult](t, body)
		assert.Equal(t, "acme.Req", res.Query)
		assert.Equal(t, []string{".acme.Request", ".acme", ""}, res.Keys)
		assert.Equal(t, []render.Ref{{Kind: model.KindMessage, Name: "Request", FullName: ".acme.Request", Path: "acme.Request"}}, res.Hits)

		_, body = get(t, h, "/api/search?q=zzz")
		res = decode[server.SearchResult](t, body)
		assert.Empty(t, res.Keys)
		assert.Empty(t, res.Hits)
		assert.JSONEq(t, `{"query":"zzz","keys":[],"hits":[]}`, string(body))

		resp, _ = get(t, h, "/api/search?q=..")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("coverage", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, h, "/api/coverage")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var report struct {
			Counts []struct {
				Kind       string  `json:"kind"`
				Total      int     `json:"total"`
				Documented int     `json:"documented"`
				Percent    float64 `json:"percent"`
			} `json:"counts"`
		}
		require.NoError(t, json.Unmarshal(body, &report))
		require.Len(t, report.Counts, len(model.Kinds))
		assert.Equal(t, "message", report.Counts[1].Kind)
		assert.Equal(t, 1, report.Counts[1].Total)
		assert.InDelta(t, 100.0, report.Counts[1].Percent, 1e-9)
	})

	t.Run("locate", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, h, "/api/locate?file=acme.proto&line=3&column=5")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		results := decode[[]server.LocateResult](t, body)
		require.Len(t, results, 2)
		assert.Equal(t, ".acme.Request.id", results[0].FullName)
		assert.Equal(t, "field", results[0].Member)
		assert.Equal(t, ".acme.Request", results[0].Entity.FullName)
		assert.Equal(t, ".acme.Request", results[1].FullName)
		assert.Empty(t, results[1].Member)
		assert.Equal(t, 6, results[1].SourceInfo.EndLine)

		_, body = get(t, h, "/api/locate?file=acme.proto&line=40&column=0")
		assert.JSONEq(t, `[]`, string(body))

		resp, _ = get(t, h, "/api/locate?file=acme.proto&line=x&column=0")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLocatorFollowsSwaps(t *testing.T) {
	t.Parallel()
	store := &snapshot.Store{}
	store.Swap(testModel(t))
	h := server.New(store, nil).Handler()

	_, body := get(t, h, "/api/locate?file=acme.proto&line=3&column=5")
	require.Len(t, decode[[]server.LocateResult](t, body), 2)

	empty, err := model.Build(prototest.Set(prototest.File("acme.proto", "acme")), nil)
	require.NoError(t, err)
	store.Swap(empty)
	_, body = get(t, h, "/api/locate?file=acme.proto&line=3&column=5")
	assert.Empty(t, decode[[]server.LocateResult](t, body))
}

func TestRequestLogging(t *testing.T) {
	t.Parallel()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	store := &snapshot.Store{}
	store.Swap(testModel(t))
	h := server.New(store, logger).Handler()

	get(t, h, "/api/entities/acme.Missing")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "GET /api/entities/acme.Missing", entry.Message)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])

	get(t, h, "/ping")
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

func TestHTTPServer(t *testing.T) {
	t.Parallel()
	srv := server.New(&snapshot.Store{}, nil).HTTPServer("127.0.0.1:0")
	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
