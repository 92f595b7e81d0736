/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"strings"
	"testing"
)

func TestParseGridDeterminism(t *testing.T) {
	l, err := Parse([]string{"AAB", "AAB", "..C"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if l.GridWidth != 3 || l.GridHeight != 3 {
		t.Fatalf("grid = %dx%d, want 3x3", l.GridWidth, l.GridHeight)
	}
	if l.Grid[2][0] != "" || l.Grid[2][1] != "" || l.Grid[2][2] != "C" {
		t.Fatalf("unexpected last row: %q", l.Grid[2])
	}
	want := []struct {
		label  string
		number int
		cells  int
		bounds Rect
	}{
		{"A", 10, 4, Rect{X: 0, Y: 0, Width: 2, Height: 2}},
		{"B", 11, 2, Rect{X: 2, Y: 0, Width: 1, Height: 2}},
		{"C", 12, 1, Rect{X: 2, Y: 2, Width: 1, Height: 1}},
	}
	if len(l.Panels) != len(want) {
		t.Fatalf("expected %d panels, got %+v", len(want), l.Panels)
	}
	for i, w := range want {
		p := l.Panels[i]
		if p.Label != w.label || p.Number != w.number || len(p.Cells) != w.cells || p.Bounds != w.bounds {
			t.Errorf("panel %d = %+v, want %+v", i, p, w)
		}
	}
}

func TestParseMergesDisjointCellsAndSortsNumbers(t *testing.T) {
	l, err := ParseText("3.1\n221\n")
	if err != nil {
		t.Fatalf("ParseText error: %v", err)
	}
	if len(l.Panels) != 3 {
		t.Fatalf("expected 3 panels, got %d", len(l.Panels))
	}
	for i, label := range []string{"1", "2", "3"} {
		if l.Panels[i].Label != label || l.Panels[i].Number != i+1 {
			t.Fatalf("panel %d = %+v", i, l.Panels[i])
		}
	}
	one := l.Panels[0]
	if len(one.Cells) != 2 || one.Bounds != (Rect{X: 2, Y: 0, Width: 1, Height: 2}) {
		t.Fatalf("unexpected panel 1: %+v", one)
	}

	l, err = Parse([]string{"A.A"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(l.Panels) != 1 || l.Panels[0].Bounds.Width != 3 || len(l.Panels[0].Cells) != 2 {
		t.Fatalf("disjoint cells with one label must form one panel: %+v", l.Panels)
	}
}

func TestParseRaggedAndBlankLines(t *testing.T) {
	l, err := ParseText("\n AB\n\n   \nA\n")
	if err != nil {
		t.Fatalf("ParseText error: %v", err)
	}
	if l.GridHeight != 2 || l.GridWidth != 3 {
		t.Fatalf("grid = %dx%d, want 3x2", l.GridWidth, l.GridHeight)
	}
	for _, row := range l.Grid {
		if len(row) != 3 {
			t.Fatalf("rows must be padded to the grid width: %q", l.Grid)
		}
	}
	if l.Grid[1][0] != "A" || l.Grid[1][1] != "" || l.Grid[0][0] != "" {
		t.Fatalf("unexpected grid: %q", l.Grid)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, lines := range [][]string{nil, {}, {"", "  "}, {"...", ". ."}} {
		l, err := Parse(lines)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", lines, err)
		}
		if !l.Empty() || l.Panels == nil {
			t.Fatalf("Parse(%q) should yield an empty panel list, got %+v", lines, l.Panels)
		}
	}
}

func TestParseRejectsHugeGrid(t *testing.T) {
	_, err := Parse([]string{strings.Repeat("A", MaxGridDimension+1)})
	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LayoutError, got %v", err)
	}
}

func TestPanelNumber(t *testing.T) {
	for tok, want := range map[string]int{"1": 1, "9": 9, "12": 12, "A": 10, "B": 11, "C": 12, "Z": 35, "a": 42} {
		if got := PanelNumber(tok); got != want {
			t.Errorf("PanelNumber(%q) = %d, want %d", tok, got, want)
		}
	}
}

func TestContrastColor(t *testing.T) {
	if got := ContrastColor("#ffeaa7"); got != "#000000" {
		t.Fatalf("ContrastColor(#ffeaa7) = %s, want black", got)
	}
	if got := ContrastColor("#101010"); got != "#ffffff" {
		t.Fatalf("ContrastColor(#101010) = %s, want white", got)
	}
}

func TestPanelColorCycles(t *testing.T) {
	if PanelColor(1) != "#ff6b6b" || PanelColor(16) != "#ff6b6b" {
		t.Fatalf("palette must start at key 1 and repeat after %d", len(Palette))
	}
	if PanelColor(10) != Palette[9] {
		t.Fatalf("PanelColor(10) = %s", PanelColor(10))
	}
	if PanelColor(0) != Palette[len(Palette)-1] || PanelColor(-14) != Palette[0] {
		t.Fatalf("keys below 1 must wrap into the palette")
	}
}
