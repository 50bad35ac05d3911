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

// Package snapshot holds the current model of a long-running program and
// replaces it atomically when descriptors are reloaded.
package snapshot

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/route"
)

// LoadFunc loads a fresh model.
type LoadFunc func(context.Context) (*model.Model, error)

// Store holds the current model and the current selection. Models are never
// modified in place; readers keep using the model they loaded even after a
// swap.
//
// A zero Store is ready to use.
type Store struct {
	// If nil, reload failures are not logged.
	Logger logrus.FieldLogger

	current atomic.Pointer[model.Model]
	swaps   atomic.Uint64

	mu       sync.Mutex
	selected string
	hasSel   bool
}

// Load returns the current model, or nil if none has been stored yet.
func (s *Store) Load() *model.Model {
	return s.current.Load()
}

// Swap replaces the current model with m and returns the previous one.
func (s *Store) Swap(m *model.Model) *model.Model {
	old := s.current.Swap(m)
	s.swaps.Add(1)
	return old
}

// Generation returns the number of swaps so far.
func (s *Store) Generation() uint64 {
	return s.swaps.Load()
}

// Navigate selects the entity at the given URL path. The selection is kept
// by name, so it may be made before any model is stored, and it follows the
// entity across swaps. It reports whether the current model, if any, has
// such an entity.
func (s *Store) Navigate(path string) bool {
	name := route.ToFullName(path)
	s.mu.Lock()
	s.selected, s.hasSel = name, true
	s.mu.Unlock()

	m := s.Load()
	if m == nil {
		return false
	}
	_, ok := m.Lookup(name)
	return ok
}

// Selected returns the selected entity of the current model, or nil if there
// is no selection, no model, or no such entity in the model.
func (s *Store) Selected() *model.Entity {
	s.mu.Lock()
	name, ok := s.selected, s.hasSel
	s.mu.Unlock()

	m := s.Load()
	if !ok || m == nil {
		return nil
	}
	e, _ := m.Lookup(name)
	return e
}

// Watch calls load immediately and then every interval, swapping in each
// model it returns. Failures are logged and leave the current model in
// place. Watch returns ctx.Err() once ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration, load LoadFunc) error {
	logger := s.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	reload := func() {
		m, err := load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.WithError(err).Warn("Could not reload descriptors")
			}
			return
		}
		s.Swap(m)
		logger.WithFields(logrus.Fields{
			"entities":   m.Len(),
			"generation": s.Generation(),
		}).Debug("Reloaded descriptors")
	}

	reload()
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reload()
		}
	}
}
