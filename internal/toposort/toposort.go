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

// Package toposort orders the nodes of a DAG so that every node comes after
// the nodes it depends on.
package toposort

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is returned by [Sort] when the graph is not acyclic.
var ErrCycle = errors.New("cycle detected")

const (
	unsorted byte = iota
	walking
	sorted
)

type frame[Node any] struct {
	node Node
	deps []Node
	next int // Index of the next dependency to visit.
}

// Sort returns the nodes reachable from roots in dependency order.
//
// key returns a comparable key for each node, and deps returns the nodes a
// node depends on. Among nodes that do not depend on each other, the order
// follows roots and then the order in which deps lists them. Each node
// appears once.
func Sort[Node any, Key comparable](roots []Node, key func(Node) Key, deps func(Node) []Node) ([]Node, error) {
	state := make(map[Key]byte)
	var out []Node
	var stack []frame[Node]
	for _, root := range roots {
		if state[key(root)] != unsorted {
			continue
		}
		state[key(root)] = walking
		stack = append(stack, frame[Node]{node: root, deps: deps(root)})

		// Depth-first, with an explicit stack. A node is emitted once its
		// last dependency has been emitted.
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				state[key(top.node)] = sorted
				out = append(out, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			dep := top.deps[top.next]
			top.next++
			switch state[key(dep)] {
			case unsorted:
				state[key(dep)] = walking
				stack = append(stack, frame[Node]{node: dep, deps: deps(dep)})
			case walking:
				return nil, cycleError(stack, dep, key)
			}
		}
	}
	return out, nil
}

func cycleError[Node any, Key comparable](stack []frame[Node], dep Node, key func(Node) Key) error {
	var names []string
	for i := len(stack) - 1; i >= 0; i-- {
		names = append(names, fmt.Sprint(stack[i].node))
		if key(stack[i].node) == key(dep) {
			break
		}
	}
	slices.Reverse(names)
	names = append(names, fmt.Sprint(dep))
	return fmt.Errorf("%w: %s", ErrCycle, strings.Join(names, " -> "))
}
