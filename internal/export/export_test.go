/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"comicscript/internal/script"
)

const sample = `
title: Heist
credits: Ann, Ben
pages:
  - name: Intro
    layout: |
      AAB
      AAB
      ..C
    panels:
      - desc: A rainy street.
        caption: Begin
        dialogue:
          - Bob: Hello
          - Ann/whisper: Quiet
  - name: Escape
    panels:
      - fx: CRASH
`

func mustParse(t *testing.T, raw string) *script.Chapter {
	t.Helper()
	ch, err := script.Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return ch
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("md, HTML,svg,md,markdown")
	if err != nil {
		t.Fatalf("ParseFormats error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"md", "html", "svg"}) {
		t.Fatalf("ParseFormats = %v", got)
	}
	if got, _ := ParseFormats(""); !reflect.DeepEqual(got, []string{"md", "html"}) {
		t.Fatalf("default formats = %v", got)
	}
	if _, err := ParseFormats("md,docx"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		filepath.Join("dir", "ch1.comic.yml"): "ch1",
		"ch2.Comic.YAML":                      "ch2",
		"x.yaml":                              "x",
		"notes.txt":                           "notes",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.md")
	if err := WriteFile(path, []byte("one")); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if err := WriteFile(path, []byte("two")); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Fatalf("content = %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteLayouts(t *testing.T) {
	ch := mustParse(t, sample)
	dir := t.TempDir()
	svgs, err := WriteLayouts(ch, dir, "heist", FormatSVG, LayoutOptions{})
	if err != nil {
		t.Fatalf("WriteLayouts error: %v", err)
	}
	if len(svgs) != 1 || filepath.Base(svgs[0]) != "heist-page-1.svg" {
		t.Fatalf("unexpected files: %v", svgs)
	}
	data, _ := os.ReadFile(svgs[0])
	if !strings.HasPrefix(string(data), "<svg") {
		t.Fatalf("not an svg: %.40s", data)
	}

	pngs, err := WriteLayouts(ch, dir, "heist", FormatPNG, LayoutOptions{Width: 200, Height: 300})
	if err != nil || len(pngs) != 1 {
		t.Fatalf("WriteLayouts png: %v %v", pngs, err)
	}
	f, err := os.Open(pngs[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 300 {
		t.Fatalf("png bounds %v", b)
	}

	if _, err := WriteLayouts(ch, dir, "heist", FormatPDF, LayoutOptions{}); err == nil {
		t.Fatalf("expected an error for a non-diagram format")
	}
}

func TestRenderPDF(t *testing.T) {
	ch := mustParse(t, sample)
	pdf, err := buildPDF(ch, PDFOptions{})
	if err != nil {
		t.Fatalf("buildPDF error: %v", err)
	}
	if got := pdf.PageCount(); got != 3 {
		t.Fatalf("expected header sheet plus 2 pages, got %d", got)
	}

	out := filepath.Join(t.TempDir(), "heist.pdf")
	if err := WritePDF(ch, out, PDFOptions{}); err != nil {
		t.Fatalf("WritePDF error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %.10q", data)
	}

	if err := RenderPDF(nil, &bytes.Buffer{}, PDFOptions{}); err == nil {
		t.Fatalf("expected an error for a nil chapter")
	}
	empty, err := buildPDF(&script.Chapter{}, PDFOptions{})
	if err != nil || empty.PageCount() != 1 {
		t.Fatalf("an empty chapter renders one sheet: %v", err)
	}
}

func TestSpans(t *testing.T) {
	got := spans("**BOB:** (whisper) *hi* there")
	want := []span{{"BOB:", "B"}, {" (whisper) ", ""}, {"hi", "I"}, {" there", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("spans = %+v", got)
	}
}

func TestPrintToTemp(t *testing.T) {
	dir := t.TempDir()
	path, err := PrintToTemp(dir, "<html></html>")
	if err != nil {
		t.Fatalf("PrintToTemp error: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "comic-script-") || filepath.Ext(path) != ".html" {
		t.Fatalf("unexpected path %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "<html></html>" {
		t.Fatalf("content = %q", data)
	}
}

func TestBuild(t *testing.T) {
	src := t.TempDir()
	good := filepath.Join(src, "heist.comic.yml")
	other := filepath.Join(src, "other.comic.yaml")
	bad := filepath.Join(src, "bad.comic.yml")
	for path, content := range map[string]string{good: sample, other: "title: Other\n", bad: "- not\n- a mapping\n"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	out := t.TempDir()
	results, err := Build(context.Background(), []string{good, bad, other}, BuildOptions{
		OutDir:      out,
		Formats:     AllFormats,
		Concurrency: 2,
	})
	if err == nil || !strings.Contains(err.Error(), "bad.comic.yml") {
		t.Fatalf("expected an error naming the bad script, got %v", err)
	}
	if len(results) != 3 || results[0].Source != good || results[1].Err == nil || results[2].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
	var fe *script.FormatError
	if !errors.As(results[1].Err, &fe) {
		t.Fatalf("bad script must fail with a FormatError: %v", results[1].Err)
	}
	for _, name := range []string{"heist.md", "heist.html", "heist-page-1.svg", "heist-page-1.png", "heist.pdf", "other.md", "other.html", "other.pdf"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	md, _ := os.ReadFile(filepath.Join(out, "heist.md"))
	if !strings.Contains(string(md), "## (Page 1) Intro") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	html, _ := os.ReadFile(filepath.Join(out, "heist.html"))
	if !strings.Contains(string(html), "<title>Heist</title>") || !strings.Contains(string(html), `<section class="page"`) {
		t.Fatalf("unexpected html")
	}
}

func TestBuildRejectsDuplicateBaseNames(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a", "x.comic.yml")
	second := filepath.Join(root, "b", "x.comic.yml")
	for path, content := range map[string]string{first: "title: First\n", second: "title: Second\n"} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	out := t.TempDir()
	results, err := Build(context.Background(), []string{first, second}, BuildOptions{
		OutDir:  out,
		Formats: []string{FormatMarkdown},
	})
	if !errors.Is(err, ErrDuplicateOutput) {
		t.Fatalf("expected ErrDuplicateOutput, got %v", err)
	}
	if results[0].Err != nil || len(results[0].Files) != 1 {
		t.Fatalf("first script must build: %+v", results[0])
	}
	if !errors.Is(results[1].Err, ErrDuplicateOutput) || len(results[1].Files) != 0 {
		t.Fatalf("second script must be rejected: %+v", results[1])
	}
	md, _ := os.ReadFile(filepath.Join(out, "x.md"))
	if !strings.Contains(string(md), "# First") {
		t.Fatalf("output overwritten by a later script:\n%s", md)
	}
}
