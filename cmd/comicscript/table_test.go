/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(buildColumns, [][]string{{"a.comic.yml", "2", "ok"}, {"b.comic.yml"}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[3], "a.comic.yml") || !strings.Contains(lines[4], "b.comic.yml") {
		t.Fatalf("rows out of order:\n%s", out)
	}
	if len([]rune(lines[3])) != len([]rune(lines[4])) {
		t.Fatalf("short row must be padded to full width:\n%s", out)
	}
}
