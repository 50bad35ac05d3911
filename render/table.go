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
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/protodoc/coverage"
	"github.com/bufbuild/protodoc/model"
)

const barWidth = 20

// Coverage writes report as an aligned table with a bar per kind.
func Coverage(w io.Writer, report coverage.Report, useColor bool) error {
	good, bad := color.New(color.FgGreen), color.New(color.FgRed)
	for _, c := range []*color.Color{good, bad} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	rows := [][]string{{"KIND", "DOCUMENTED", "TOTAL", "PERCENT", ""}}
	for _, count := range report.Counts {
		filled := int(count.Percent() / 100 * barWidth)
		bar := good.Sprint(strings.Repeat("█", filled)) + bad.Sprint(strings.Repeat("░", barWidth-filled))
		rows = append(rows, []string{
			count.Kind.String(),
			fmt.Sprint(count.Documented),
			fmt.Sprint(count.Total),
			fmt.Sprintf("%.1f%%", count.Percent()),
			bar,
		})
	}
	return table(w, rows)
}

// table writes rows with columns padded to their widest cell, as displayed
// in a terminal. Escape sequences do not count towards the width.
func table(w io.Writer, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-displayWidth(cell)))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func displayWidth(s string) int {
	return uniseg.StringWidth(stripANSI(s))
}

// stripANSI removes SGR escape sequences such as those written by
// fatih/color.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// YAML writes the view of e as a YAML document.
func YAML(w io.Writer, e *model.Entity) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(View(e)); err != nil {
		return err
	}
	return enc.Close()
}
