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

package protodoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protodoc/descset"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/reporter"
)

// ErrNoSources is returned by [Loader.Load] when it is given nothing to load.
var ErrNoSources = errors.New("no descriptor sources")

// Loader reads descriptor sets and .proto sources from a file system and
// builds a single model from them.
type Loader struct {
	// The file system to read from. If nil, the OS file system is used.
	FS afero.Fs
	// Directories that .proto sources and their imports are resolved
	// against. If empty, sources are compiled using the paths given to Load.
	ImportPaths []string
	// Doublestar patterns over file names in the descriptor set. Only
	// files matching an include pattern (if any) and no exclude pattern are
	// kept.
	Include, Exclude []string
	// The maximum number of descriptor files read at once. If unspecified or
	// set to a non-positive value, then min(runtime.NumCPU(),
	// runtime.GOMAXPROCS(-1)) will be used.
	MaxParallelism int
	// Receives problems with individual source locations. May be nil.
	Reporter reporter.Reporter
}

// Load reads the given sources and returns the model of their union.
//
// Each source is a path or a doublestar pattern. Files ending in .proto are
// compiled together; anything else is decoded as a descriptor set. When
// several inputs contain a file of the same name, the first one wins, and
// descriptor sets come before compiled sources.
func (l *Loader) Load(ctx context.Context, sources ...string) (*model.Model, error) {
	fds, err := l.LoadSet(ctx, sources...)
	if err != nil {
		return nil, err
	}
	return BuildSet(fds, l.Reporter)
}

// LoadSet is like Load, but returns the merged and filtered descriptor set
// without building it.
func (l *Loader) LoadSet(ctx context.Context, sources ...string) (*descriptorpb.FileDescriptorSet, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	fsys := l.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	names, err := expand(fsys, sources)
	if err != nil {
		return nil, err
	}
	var protos, sets []string
	for _, name := range names {
		if strings.HasSuffix(name, ".proto") {
			protos = append(protos, name)
		} else {
			sets = append(sets, name)
		}
	}

	parsed, err := l.parseAll(ctx, fsys, sets)
	if err != nil {
		return nil, err
	}
	compiled, err := descset.Compile(ctx, fsys, l.ImportPaths, l.relativize(protos)...)
	if err != nil {
		return nil, err
	}
	return descset.Filter(descset.Merge(append(parsed, compiled)...), l.Include, l.Exclude)
}

func (l *Loader) parseAll(ctx context.Context, fsys afero.Fs, names []string) ([]*descriptorpb.FileDescriptorSet, error) {
	par := l.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}
	sem := semaphore.NewWeighted(int64(par))

	results := make([]*descriptorpb.FileDescriptorSet, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			data, err := afero.ReadFile(fsys, name)
			if err != nil {
				return err
			}
			fds, err := descset.Parse(name, data)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = fds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// relativize rewrites source paths to be relative to the first import path
// that contains them, since that is how the compiler names files.
func (l *Loader) relativize(protos []string) []string {
	if len(l.ImportPaths) == 0 {
		return protos
	}
	out := make([]string, len(protos))
	for i, name := range protos {
		out[i] = name
		for _, dir := range l.ImportPaths {
			rel, err := filepath.Rel(dir, name)
			if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				out[i] = filepath.ToSlash(rel)
				break
			}
		}
	}
	return out
}

// expand replaces patterns with the files they match, keeping the order of
// first appearance.
func expand(fsys afero.Fs, sources []string) ([]string, error) {
	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	for _, source := range sources {
		pattern := filepath.ToSlash(source)
		if !hasMeta(pattern) {
			add(source)
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid source pattern %q", source)
		}
		base, _ := doublestar.SplitPattern(pattern)
		var matched bool
		err := afero.Walk(fsys, filepath.FromSlash(base), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
				matched = true
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, fmt.Errorf("%s: no files match", source)
		}
	}
	return names, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
