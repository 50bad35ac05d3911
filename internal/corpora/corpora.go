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

// Package corpora runs table-driven tests whose table is a directory of
// input files, each with golden output files next to it.
package corpora

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

// A Corpus describes a directory of test cases.
type Corpus struct {
	// The root of the test data directory, relative to the file that calls
	// [Corpus.Run].
	Root string

	// An environment variable holding a doublestar pattern. Cases whose
	// names match it have their golden files rewritten instead of checked.
	Refresh string

	// The file extension (without a dot) of the files that define a case,
	// e.g. "json".
	Extension string
	// The outputs of each case. A missing golden file is treated as empty.
	Outputs []Output

	// Test runs one case. It returns one string per element of Outputs.
	Test func(t *testing.T, name string, input []byte) []string
}

// Output is one golden output of a case.
type Output struct {
	// The suffix appended to the input file's name; for "foo.json" and
	// "tree", the golden file is "foo.json.tree".
	Extension string

	// Compares outputs. If nil, outputs must be byte-for-byte equal.
	Compare Compare
}

// Compare returns the empty string if got matches want, and a description
// of the mismatch otherwise.
type Compare func(got, want string) string

// Run runs every case under Root.
func (c Corpus) Run(t *testing.T) {
	t.Helper()
	testDir := callerDir(0)
	fsys := afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(testDir, c.Root))

	var cases []string
	err := afero.Walk(fsys, string(filepath.Separator), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.TrimPrefix(filepath.Ext(path), ".") == c.Extension {
			cases = append(cases, path)
		}
		return nil
	})
	if err != nil {
		t.Fatal("corpora: error while walking test data:", err)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("corpora: refreshing test data because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, path := range cases {
		name := filepath.ToSlash(strings.TrimPrefix(path, string(filepath.Separator)))
		t.Run(name, func(t *testing.T) {
			input, err := afero.ReadFile(fsys, path)
			if err != nil {
				t.Fatalf("corpora: error while loading input file %q: %v", path, err)
			}
			results := c.Test(t, name, input)
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: test returned %d outputs, want %d", len(results), len(c.Outputs))
			}

			update, _ := doublestar.Match(refresh, name)
			for i, output := range c.Outputs {
				golden := path + "." + output.Extension
				if update {
					if err := write(fsys, golden, results[i]); err != nil {
						t.Errorf("corpora: error while updating %q: %v", golden, err)
					}
					continue
				}

				want, err := afero.ReadFile(fsys, golden)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("corpora: error while loading output file %q: %v", golden, err)
					continue
				}
				cmp := output.Compare
				if cmp == nil {
					cmp = Diff
				}
				if msg := cmp(results[i], string(want)); msg != "" {
					t.Errorf("output mismatch for %q:\n%s", golden, msg)
				}
			}
		})
	}
}

// write replaces a golden file. Empty outputs remove it.
func write(fsys afero.Fs, path, data string) error {
	if data == "" {
		if err := fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return afero.WriteFile(fsys, path, []byte(data), 0o644)
}

var (
	added   = color.New(color.Bold, color.FgHiGreen)
	removed = color.New(color.Bold, color.FgHiRed)
)

// Diff is the default [Compare]. Mismatches are shown as a unified diff.
func Diff(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}

	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = added.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removed.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic(fmt.Sprintf("corpora: could not determine the test file's directory (skip %d)", skip))
	}
	return filepath.Dir(file)
}
