/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markdown

import (
	"strings"
	"testing"

	"comicscript/internal/script"
)

func parse(t *testing.T, raw string) *script.Chapter {
	t.Helper()
	ch, err := script.Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return ch
}

func str(s string) *string { return &s }

func TestRenderEndToEnd(t *testing.T) {
	ch := parse(t, `
pages:
  - name: Intro
    panels:
      - caption: Begin
        dialogue:
          - Bob: Hello
`)
	doc := Render(ch)
	want := "## (Page 1) Intro\n\n### (Panel 1)\n\n> *CAPTION: Begin*\n> **BOB:** Hello"
	if doc.Text != want {
		t.Fatalf("unexpected markdown:\n%q\nwant\n%q", doc.Text, want)
	}
	if len(doc.Pages) != 1 || doc.Pages[0] != (PageBoundary{Index: 0, Line: 0}) {
		t.Fatalf("unexpected boundaries: %+v", doc.Pages)
	}
}

const fullScript = `
title: The Heist
synopsis: Two friends plan a job.
credits: "Writer: Ann,  Artist: Ben "
pages:
  - name: Setup
    panels:
      - name: Wide shot
        desc: |
          A rainy   street
          at night.
        fx: thunder
        dialogue:
          - Alice/whisper: Quiet.
          - /: It was late.
          - Door/sound_effect: CRASH
          - "/caption": Meanwhile
      - endCaption: later
  - panels: []
  - panels:
      - desc: Empty alley.
`

func TestRenderChapter(t *testing.T) {
	doc := Render(parse(t, fullScript))
	want := strings.Join([]string{
		"# The Heist",
		"",
		"**Synopsis:** Two friends plan a job.",
		"",
		"**Credits:**",
		"- Writer: Ann",
		"- Artist: Ben",
		"",
		"## (Page 1) Setup",
		"",
		"### (Panel 1) Wide shot",
		"",
		"*A rainy street at night.*",
		"",
		"**FX:** thunder",
		"",
		"> **ALICE:** (whisper) Quiet.",
		"> *It was late.*",
		"> **CRASH**",
		"> *Meanwhile*",
		"",
		"### (Panel 2)",
		"",
		"> *END CAPTION: later*",
		"",
		"## (Page 2)",
		"",
		"## (Page 3)",
		"",
		"### (Panel 1)",
		"",
		"*Empty alley.*",
	}, "\n")
	if doc.Text != want {
		t.Fatalf("unexpected markdown:\n%s\n---- want ----\n%s", doc.Text, want)
	}

	lines := doc.Lines()
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 page boundaries, got %+v", doc.Pages)
	}
	for i, pb := range doc.Pages {
		if pb.Index != i || !strings.HasPrefix(lines[pb.Line], "## (Page ") {
			t.Fatalf("boundary %d = %+v points at %q", i, pb, lines[pb.Line])
		}
	}
	if doc.Pages[0].Line != 8 || doc.Pages[1].Line != 25 || doc.Pages[2].Line != 27 {
		t.Fatalf("unexpected boundary lines: %+v", doc.Pages)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	ch := parse(t, fullScript)
	a, b := Render(ch), Render(ch)
	if a.Text != b.Text || len(a.Pages) != len(b.Pages) {
		t.Fatalf("rendering twice must be byte-identical")
	}
}

func TestRenderEmptyPages(t *testing.T) {
	doc := Render(parse(t, "title: Only header\nsynopsis: nothing yet\npages: []\n"))
	want := "# Only header\n\n**Synopsis:** nothing yet"
	if doc.Text != want {
		t.Fatalf("got %q, want %q", doc.Text, want)
	}
	if strings.Contains(doc.Text, "##") || len(doc.Pages) != 0 {
		t.Fatalf("empty pages must not produce page headings")
	}

	if got := Render(&script.Chapter{}).Text; got != "" {
		t.Fatalf("empty chapter should render nothing, got %q", got)
	}
}

func TestRenderInvalidEntities(t *testing.T) {
	if got := Render(nil); got.Text != InvalidChapter || len(got.Pages) != 0 {
		t.Fatalf("nil chapter rendered %+v", got)
	}
	ch := &script.Chapter{Pages: []*script.Page{
		nil,
		{Panels: []*script.Panel{nil, {Caption: str("ok")}}},
	}}
	doc := Render(ch)
	want := InvalidPage + "\n\n## (Page 2)\n\n" + InvalidPanel + "\n\n### (Panel 2)\n\n> *CAPTION: ok*"
	if doc.Text != want {
		t.Fatalf("got %q, want %q", doc.Text, want)
	}
	if len(doc.Pages) != 2 || doc.Pages[0].Line != 0 || doc.Pages[1].Line != 2 {
		t.Fatalf("invalid pages keep their ordinal boundary: %+v", doc.Pages)
	}
}

func TestDialogue(t *testing.T) {
	cases := []struct {
		d    script.Dialogue
		want string
	}{
		{script.Dialogue{Character: "Bob", Text: "Hello", Type: script.TypeSpeech}, "**BOB:** Hello"},
		{script.Dialogue{Character: "", Text: "hi", Type: ""}, "**CHARACTER:** hi"},
		{script.Dialogue{Character: "Ann", Text: "  so \n tired ", Type: "thought"}, "**ANN:** (thought) so tired"},
		{script.Dialogue{Text: "Night fell.", Type: script.TypeNarration, IsNarration: true}, "*Night fell.*"},
		{script.Dialogue{Character: "Bob", Text: "aside", Type: script.TypeNarration}, "*aside*"},
		{script.Dialogue{Text: "BOOM", Type: script.TypeSoundEffect, IsNarration: true}, "*BOOM*"},
		{script.Dialogue{Character: "Car", Text: "VROOM", Type: script.TypeSoundEffect}, "**VROOM**"},
	}
	for _, c := range cases {
		if got := Dialogue(c.d); got != c.want {
			t.Errorf("Dialogue(%+v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestPanelOmitsEmptyQuote(t *testing.T) {
	got := Panel(&script.Panel{Name: str("Close-up"), FX: str("  zap  ")}, 4)
	if got != "### (Panel 5) Close-up\n\n**FX:** zap" {
		t.Fatalf("got %q", got)
	}
}

func TestCollapse(t *testing.T) {
	if got := Collapse("\t a \n\n b  c "); got != "a b c" {
		t.Fatalf("Collapse = %q", got)
	}
}
