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

package render

import (
	"bufio"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/search"
)

// TreeOptions configures [Tree].
type TreeOptions struct {
	// If set, only entities on a path matching the term are shown, and the
	// matched part of each name is highlighted.
	Search string
	// Levels below root to show. Zero means no limit. Entities on the last
	// level shown are marked with the number of their hidden children when
	// not searching.
	MaxDepth int
	// Colorize output.
	Color bool
}

type treeWriter struct {
	w     *bufio.Writer
	opts  TreeOptions
	keep  map[string]bool
	match *color.Color
	dim   *color.Color
	kinds map[model.Kind]*color.Color
}

// Tree writes the tree under root, one entity per line, with box-drawing
// guides:
//
//	(root)
//	└── acme package
//	    ├── Request message
//	    └── Status enum
func Tree(w io.Writer, root *model.Entity, opts TreeOptions) error {
	tw := &treeWriter{
		w:     bufio.NewWriter(w),
		opts:  opts,
		match: color.New(color.Bold, color.FgYellow),
		dim:   color.New(color.Faint),
		kinds: map[model.Kind]*color.Color{
			model.KindPackage: color.New(color.FgBlue),
			model.KindMessage: color.New(color.FgCyan),
			model.KindEnum:    color.New(color.FgGreen),
			model.KindService: color.New(color.FgMagenta),
			model.KindOption:  color.New(color.FgYellow),
		},
	}
	for _, c := range append([]*color.Color{tw.match, tw.dim}, slices.Collect(maps.Values(tw.kinds))...) {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	fragments := search.Fragments(opts.Search)
	if len(fragments) > 0 {
		tw.keep = map[string]bool{}
		for _, key := range search.MatchingKeys(root, fragments) {
			tw.keep[key] = true
		}
		if len(tw.keep) == 0 {
			return tw.w.Flush()
		}
	}

	tw.w.WriteString(tw.dim.Sprint(root.Name()))
	tw.w.WriteByte('\n')
	tw.children(root, "", 1, fragments)
	return tw.w.Flush()
}

func (tw *treeWriter) children(e *model.Entity, prefix string, depth int, fragments []string) {
	if tw.opts.MaxDepth > 0 && depth > tw.opts.MaxDepth {
		return
	}
	var shown []*model.Entity
	for _, child := range e.Children() {
		if tw.keep == nil || tw.keep[child.FullName()] {
			shown = append(shown, child)
		}
	}
	for i, child := range shown {
		connector, indent := "├── ", "│   "
		if i == len(shown)-1 {
			connector, indent = "└── ", "    "
		}
		remaining := fragments
		name := child.Name()
		if len(fragments) > 0 {
			if before, match, after, ok := search.Highlight(name, fragments[0]); ok {
				name = before + tw.match.Sprint(match) + after
				remaining = fragments[1:]
			}
		}
		tw.w.WriteString(prefix + connector + name + " " + tw.kinds[child.Kind()].Sprint(child.Kind()))
		if tw.keep == nil && depth == tw.opts.MaxDepth && child.NumChildren() > 0 {
			tw.w.WriteString(tw.dim.Sprintf(" [+%d]", child.NumChildren()))
		}
		tw.w.WriteByte('\n')
		tw.children(child, prefix+indent, depth+1, remaining)
	}
}

// Indent prefixes every line of s with indent.
func Indent(s, indent string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line != "" {
			b.WriteString(indent)
			b.WriteString(line)
		}
	}
	return b.String()
}
