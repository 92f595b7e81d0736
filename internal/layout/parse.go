/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout parses the ASCII page-layout mini-language and renders it as diagrams.
//
// A layout is one line per grid row; every character is a cell. Cells that carry the same
// token belong to the same panel, whether or not they touch. '.' and whitespace are empty cells.
//
//	AAB
//	AAB
//	..C
package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxGridDimension bounds the number of rows and columns of a layout grid.
const MaxGridDimension = 256

// LayoutError reports a layout that cannot be parsed or rendered.
type LayoutError struct {
	Msg string
}

func (e *LayoutError) Error() string { return "layout error: " + e.Msg }

// Cell is a grid coordinate; X is the column, Y the row, both 0-based.
type Cell struct {
	X int
	Y int
}

// Rect is an axis-aligned box in grid cells.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// PanelPosition is one panel discovered in the grid.
// Label is the original token, Number the derived sort key.
type PanelPosition struct {
	Label  string
	Number int
	Cells  []Cell
	Bounds Rect
}

// ParsedLayout is a normalized grid plus its panels sorted by Number.
// Every row of Grid has GridWidth entries; empty cells are "".
type ParsedLayout struct {
	Grid       [][]string
	GridWidth  int
	GridHeight int
	Panels     []PanelPosition
}

// Empty reports whether the layout defines no panels.
func (l ParsedLayout) Empty() bool { return len(l.Panels) == 0 }

// ParseText parses a layout given as one newline-separated string.
func ParseText(text string) (ParsedLayout, error) {
	return Parse(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// Parse builds a ParsedLayout from grid lines. Blank lines are dropped, short rows are padded.
// Input without any panel token yields an empty layout and no error.
func Parse(lines []string) (ParsedLayout, error) {
	rows := make([][]string, 0, len(lines))
	width := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
		row := make([]string, 0, len(line))
		for _, r := range line {
			row = append(row, cellToken(r))
		}
		rows = append(rows, row)
	}
	if len(rows) > MaxGridDimension || width > MaxGridDimension {
		return ParsedLayout{}, &LayoutError{Msg: fmt.Sprintf("grid of %dx%d exceeds %d cells per side", width, len(rows), MaxGridDimension)}
	}
	if len(rows) == 0 {
		return ParsedLayout{Grid: [][]string{}, Panels: []PanelPosition{}}, nil
	}

	grid := make([][]string, len(rows))
	for y, row := range rows {
		grid[y] = make([]string, width)
		copy(grid[y], row)
	}

	var order []string
	cells := map[string][]Cell{}
	for y, row := range grid {
		for x, tok := range row {
			if tok == "" {
				continue
			}
			if _, seen := cells[tok]; !seen {
				order = append(order, tok)
			}
			cells[tok] = append(cells[tok], Cell{X: x, Y: y})
		}
	}

	panels := make([]PanelPosition, 0, len(order))
	for _, tok := range order {
		panels = append(panels, PanelPosition{
			Label:  tok,
			Number: PanelNumber(tok),
			Cells:  cells[tok],
			Bounds: bounds(cells[tok]),
		})
	}
	// stable: equal keys keep first-appearance order
	sort.SliceStable(panels, func(i, j int) bool { return panels[i].Number < panels[j].Number })

	return ParsedLayout{Grid: grid, GridWidth: width, GridHeight: len(grid), Panels: panels}, nil
}

// PanelNumber derives the sort key of a panel token: integers map to themselves,
// anything else to the code of its first rune minus 55, so 'A' is 10, 'B' 11 and so on.
func PanelNumber(token string) int {
	if n, err := strconv.Atoi(token); err == nil {
		return n
	}
	r, _ := utf8.DecodeRuneInString(token)
	return int(r) - 55
}

func cellToken(r rune) string {
	if r == '.' || unicode.IsSpace(r) {
		return ""
	}
	return string(r)
}

func bounds(cells []Cell) Rect {
	minX, minY := cells[0].X, cells[0].Y
	maxX, maxY := minX, minY
	for _, c := range cells[1:] {
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
