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

package toposort_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protodoc/internal/toposort"
)

type dag map[string][]string

func (d dag) deps(n string) []string {
	return d[n]
}

func identity(n string) string { return n }

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dag   dag
		roots []string
		want  []string
	}{
		{
			name: "empty",
		},
		{
			name:  "chain",
			dag:   dag{"a": {"b"}, "b": {"c"}},
			roots: []string{"a"},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "chain_all_roots",
			dag:   dag{"a": {"b"}, "b": {"c"}},
			roots: []string{"b", "a", "c"},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "diamond",
			dag:   dag{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}},
			roots: []string{"a"},
			want:  []string{"d", "b", "c", "a"},
		},
		{
			name:  "diamond_reversed_deps",
			dag:   dag{"a": {"c", "b"}, "b": {"d"}, "c": {"d"}},
			roots: []string{"a"},
			want:  []string{"d", "c", "b", "a"},
		},
		{
			name:  "forest",
			dag:   dag{"x.proto": {"common.proto"}, "y.proto": {"common.proto"}},
			roots: []string{"y.proto", "x.proto"},
			want:  []string{"common.proto", "y.proto", "x.proto"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := toposort.Sort(tt.roots, identity, tt.dag.deps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCycle(t *testing.T) {
	t.Parallel()
	_, err := toposort.Sort([]string{"a"}, identity, dag{"a": {"b"}, "b": {"c"}, "c": {"b"}}.deps)
	require.ErrorIs(t, err, toposort.ErrCycle)
	assert.EqualError(t, err, "cycle detected: b -> c -> b")

	_, err = toposort.Sort([]string{"a"}, identity, dag{"a": {"a"}}.deps)
	assert.EqualError(t, err, "cycle detected: a -> a")
}
