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

// Package server serves a model over HTTP.
//
// All routes read the model currently held by a [snapshot.Store]; until the
// first model is stored, the API answers 503.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/bufbuild/protodoc/coverage"
	"github.com/bufbuild/protodoc/locate"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/render"
	"github.com/bufbuild/protodoc/route"
	"github.com/bufbuild/protodoc/search"
	"github.com/bufbuild/protodoc/snapshot"
	"github.com/bufbuild/protodoc/sourceinfo"
)

// Server holds the handlers of the HTTP API.
type Server struct {
	store  *snapshot.Store
	logger logrus.FieldLogger

	mu           sync.Mutex
	locator      *locate.Locator
	locatorModel *model.Model
}

// New returns a server reading models from store. A nil logger discards
// request logs.
func New(store *snapshot.Store, logger logrus.FieldLogger) *Server {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Server{store: store, logger: logger}
}

// Handler returns the handler of all routes, wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/descriptors", s.withModel(s.handleDescriptors))
	mux.Handle("GET /api/entities/{path...}", s.withModel(s.handleEntity))
	mux.Handle("GET /api/search", s.withModel(s.handleSearch))
	mux.Handle("GET /api/coverage", s.withModel(s.handleCoverage))
	mux.Handle("GET /api/locate", s.withModel(s.handleLocate))
	mux.Handle("/ping", handlePing(s.logger))
	return withLoggingHandler(s.logger, mux)
}

// HTTPServer returns an http.Server for the API at addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
}

type modelHandler func(rw http.ResponseWriter, r *http.Request, m *model.Model)

func (s *Server) withModel(next modelHandler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		m := s.store.Load()
		if m == nil {
			apiError(rw, "Not ready", "descriptors have not been loaded yet", http.StatusServiceUnavailable)
			return
		}
		next(rw, r, m)
	})
}

func (s *Server) handleDescriptors(rw http.ResponseWriter, _ *http.Request, m *model.Model) {
	data, err := protojson.Marshal(m.DescriptorSet())
	if err != nil {
		apiError(rw, "Encoding error", err.Error(), http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(data)
}

func (s *Server) handleEntity(rw http.ResponseWriter, r *http.Request, m *model.Model) {
	path := r.PathValue("path")
	e, ok := route.Resolve(m, path)
	if !ok {
		apiError(rw, "Not found", fmt.Sprintf("no entity at %q", path), http.StatusNotFound)
		return
	}
	s.writeJSON(rw, render.View(e))
}

// SearchResult is the body of a search response.
type SearchResult struct {
	Query string `json:"query"`
	// Full names of every entity on a path to a hit.
	Keys []string     `json:"keys"`
	Hits []render.Ref `json:"hits"`
}

func (s *Server) handleSearch(rw http.ResponseWriter, r *http.Request, m *model.Model) {
	q := r.URL.Query().Get("q")
	if len(search.Fragments(q)) == 0 {
		apiError(rw, "Bad request", "missing search term q", http.StatusBadRequest)
		return
	}
	res := search.Search(m.Root(), q)
	body := SearchResult{Query: q, Keys: res.Keys, Hits: []render.Ref{}}
	if body.Keys == nil {
		body.Keys = []string{}
	}
	for _, hit := range res.Hits {
		body.Hits = append(body.Hits, render.RefOf(hit))
	}
	s.writeJSON(rw, body)
}

func (s *Server) handleCoverage(rw http.ResponseWriter, _ *http.Request, m *model.Model) {
	s.writeJSON(rw, coverage.Compute(m))
}

// LocateResult is one node of a locate response.
type LocateResult struct {
	FullName string     `json:"fullName"`
	Entity   render.Ref `json:"entity"`
	// Set when the node is a member of Entity.
	Member     string           `json:"member,omitempty"`
	SourceInfo *sourceinfo.Info `json:"sourceInfo"`
}

func (s *Server) handleLocate(rw http.ResponseWriter, r *http.Request, m *model.Model) {
	query := r.URL.Query()
	file := query.Get("file")
	line, lineErr := strconv.Atoi(query.Get("line"))
	column, colErr := strconv.Atoi(query.Get("column"))
	if file == "" || lineErr != nil || colErr != nil {
		apiError(rw, "Bad request", "file, line and column are required", http.StatusBadRequest)
		return
	}
	results := []LocateResult{}
	for _, node := range s.locatorFor(m).At(file, line, column) {
		res := LocateResult{
			FullName:   node.FullName(),
			Entity:     render.RefOf(node.Entity),
			SourceInfo: node.SourceInfo(),
		}
		if node.Member != nil {
			res.Member = node.Member.Kind.String()
		}
		results = append(results, res)
	}
	s.writeJSON(rw, results)
}

// locatorFor returns a locator for m, reusing the last one built while
// requests keep seeing the same model.
func (s *Server) locatorFor(m *model.Model) *locate.Locator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locator == nil || s.locatorModel != m {
		s.locator, s.locatorModel = locate.New(m), m
	}
	return s.locator
}

func (s *Server) writeJSON(rw http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		apiError(rw, "Encoding error", err.Error(), http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	if _, err := rw.Write(data); err != nil {
		s.logger.WithError(err).Debug("Error while writing response")
	}
}

func handlePing(logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Add("Content-Type", "text/plain; charset=utf-8")
		if _, err := fmt.Fprint(rw, "ok"); err != nil {
			logger.WithError(err).Error("Error while printing ok")
		}
	})
}
