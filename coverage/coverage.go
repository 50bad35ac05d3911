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

// Package coverage reports how much of a model is documented.
package coverage

import (
	"encoding/json"
	"math"

	"github.com/bufbuild/protodoc/model"
)

// Count is the documentation coverage of one kind of entity.
type Count struct {
	Kind       model.Kind `json:"kind" yaml:"kind"`
	Total      int        `json:"total" yaml:"total"`
	Documented int        `json:"documented" yaml:"documented"`
}

// Percent returns the documented share of the total, rounded to one
// decimal. It is 0 when there are no entities.
func (c Count) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return math.Round(float64(c.Documented)/float64(c.Total)*1000) / 10
}

// MarshalJSON adds the percentage to the encoded count.
func (c Count) MarshalJSON() ([]byte, error) {
	type plain Count
	return json.Marshal(struct {
		plain
		Percent float64 `json:"percent"`
	}{plain(c), c.Percent()})
}

// Report holds one Count per kind, in the order of [model.Kinds].
type Report struct {
	Counts []Count `json:"counts" yaml:"counts"`
}

// Of returns the count for kind.
func (r Report) Of(kind model.Kind) Count {
	for _, c := range r.Counts {
		if c.Kind == kind {
			return c
		}
	}
	return Count{Kind: kind}
}

// Compute counts the entities of m and those of them that have a non-blank
// leading comment. The root is not counted.
func Compute(m *model.Model) Report {
	counts := make(map[model.Kind]*Count, len(model.Kinds))
	for _, kind := range model.Kinds {
		counts[kind] = &Count{Kind: kind}
	}
	for e := range m.All() {
		if e.IsRoot() {
			continue
		}
		c, ok := counts[e.Kind()]
		if !ok {
			continue
		}
		c.Total++
		if Documented(e) {
			c.Documented++
		}
	}
	r := Report{Counts: make([]Count, 0, len(model.Kinds))}
	for _, kind := range model.Kinds {
		r.Counts = append(r.Counts, *counts[kind])
	}
	return r
}

// Documented returns whether e has a leading comment that is not blank.
func Documented(e *model.Entity) bool {
	return e.Comments() != ""
}
