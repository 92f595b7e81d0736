/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"comicscript/internal/layout"
	"comicscript/internal/script"
	"comicscript/internal/storage"
)

const sampleScript = "title: Night Shift\n" +
	"pages:\n" +
	"  - name: Intro\n" +
	"    layout:\n" +
	"      - AB\n" +
	"      - AB\n" +
	"    panels:\n" +
	"      - caption: Begin\n" +
	"        dialogue:\n" +
	"          - Bob: Hello\n" +
	"  - name: Two\n"

// execute runs the root command with an isolated config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, filepath.Join(t.TempDir(), "config.yaml"), args...)
}

func executeWith(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "comicscript ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMarkdownCommand(t *testing.T) {
	src := writeScript(t, t.TempDir(), "ch1.comic.yml", sampleScript)
	out, err := execute(t, "markdown", src)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	for _, want := range []string{"# Night Shift", "## (Page 1) Intro", "> **BOB:** Hello", "## (Page 2) Two"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownCommandFailsOnMalformedScript(t *testing.T) {
	src := writeScript(t, t.TempDir(), "bad.comic.yml", "pages: [\n")
	_, err := execute(t, "markdown", src)
	var fe *script.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *script.FormatError, got %v", err)
	}
}

func TestHTMLCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "ch1.comic.yml", sampleScript)
	out := filepath.Join(dir, "out", "ch1.html")
	if _, err := execute(t, "html", src, "-o", out); err != nil {
		t.Fatalf("html: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "<title>Night Shift</title>") || !strings.Contains(s, `data-page="2"`) || !strings.Contains(s, `id="printBtn"`) {
		t.Fatalf("unexpected html:\n%s", s)
	}

	flat, err := execute(t, "html", src, "--flat", "--print")
	if err != nil {
		t.Fatalf("html --flat: %v", err)
	}
	if strings.Contains(flat, `class="page"`) || strings.Contains(flat, `id="printBtn"`) {
		t.Fatalf("flat printable html should have neither sections nor print button:\n%s", flat)
	}
}

func TestPrintCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "ch1.comic.yml", sampleScript)
	out, err := execute(t, "print", src, "--dir", dir)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	path := strings.TrimSpace(out)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %q: %v", path, err)
	}
	if !strings.Contains(string(b), " - Print</title>") {
		t.Fatalf("print page should use the print title")
	}
}

func TestLayoutTable(t *testing.T) {
	src := writeScript(t, t.TempDir(), "ch1.comic.yml", sampleScript)
	out, err := execute(t, "layout", src, "--format", "table")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, want := range []string{"Page 1", "Grid 2x2", layout.PanelColor(10), layout.PanelColor(11), "Page 2", "no layout"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestLayoutFiles(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "ch1.comic.yml", sampleScript)
	outDir := filepath.Join(dir, "layouts")
	if _, err := execute(t, "layout", src, "--format", "png", "-o", outDir); err != nil {
		t.Fatalf("layout png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "ch1-page-1.png")); err != nil {
		t.Fatalf("page 1 diagram missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "ch1-page-2.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("page without layout must be skipped, stat err = %v", err)
	}

	svg, err := execute(t, "layout", src, "--page", "2")
	if err != nil {
		t.Fatalf("layout --page 2: %v", err)
	}
	if !strings.Contains(svg, "No layout defined") {
		t.Fatalf("expected placeholder svg, got %q", svg)
	}
	if _, err := execute(t, "layout", src, "--page", "3"); err == nil {
		t.Fatal("expected an out of range error")
	}
	if _, err := execute(t, "layout", src, "--format", "gif"); err == nil {
		t.Fatal("expected an unknown format error")
	}
}

func TestPDFCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "ch1.comic.yml", sampleScript)
	out := filepath.Join(dir, "ch1.pdf")
	if _, err := execute(t, "pdf", src, "-o", out); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestLintCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "good.comic.yml", sampleScript)
	out, err := execute(t, "lint", good)
	if err != nil || !strings.Contains(out, "ok") {
		t.Fatalf("lint good: %q %v", out, err)
	}
	bad := writeScript(t, dir, "bad.comic.yml", "titel: typo\npages: []\n")
	out, err = execute(t, "lint", bad)
	if err == nil {
		t.Fatal("expected lint issues")
	}
	if !strings.Contains(out, "titel") {
		t.Fatalf("issue should name the unknown field: %q", out)
	}
}

func TestLocateCommand(t *testing.T) {
	src := writeScript(t, t.TempDir(), "ch1.comic.yml", sampleScript)
	out, err := execute(t, "locate", src, "--line", "10")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if strings.TrimSpace(out) != "page 1 panel 1" {
		t.Fatalf("line 10: got %q", out)
	}
	out, err = execute(t, "locate", src, "--line", "11")
	if err != nil || strings.TrimSpace(out) != "page 2 panel -" {
		t.Fatalf("line 11: got %q %v", out, err)
	}
	if _, err := execute(t, "locate", src, "--line", "1"); err == nil {
		t.Fatal("a line before the first page must fail")
	}
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.comic.yml", sampleScript)
	b := writeScript(t, dir, "b.comic.yml", "title: B\n")
	bad := writeScript(t, dir, "c.comic.yml", "pages: [\n")
	outDir := filepath.Join(dir, "site")

	out, err := execute(t, "build", a, b, "--out", outDir, "--formats", "md,html,svg")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	for _, name := range []string{"a.md", "a.html", "a-page-1.svg", "b.md", "b.html"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}

	out, err = execute(t, "build", a, bad, "--out", outDir)
	if err == nil {
		t.Fatal("expected the build to report the malformed script")
	}
	if !strings.Contains(out, "c.comic.yml") {
		t.Fatalf("result table should list every script:\n%s", out)
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "ch1.comic.yml", sampleScript)

	out, err := execute(t, "history", src)
	if err != nil || !strings.Contains(out, "No history") {
		t.Fatalf("empty history: %q %v", out, err)
	}

	store, err := storage.Open(storage.DefaultDir(src))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	key := storage.ScriptKey(src)
	if err := store.Save(context.Background(), key, sampleScript, "# Night Shift\n\n## (Page 1) Intro", time.Now()); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = store.Close()

	out, err = execute(t, "history", src)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Night Shift") {
		t.Fatalf("table should show the heading:\n%s", out)
	}
	out, err = execute(t, "history", src, "--show", "1")
	if err != nil || !strings.Contains(out, "- name: Intro") {
		t.Fatalf("show: %q %v", out, err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	out, err := executeWith(t, path, "config", "init")
	if err != nil || strings.TrimSpace(out) != path {
		t.Fatalf("config init: %q %v", out, err)
	}
	if _, err := executeWith(t, path, "config", "init"); err == nil {
		t.Fatal("init must not overwrite without --force")
	}
	t.Setenv("COMICSCRIPT_SHOW_GRID", "1")
	out, err = executeWith(t, path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "show_grid: true") || !strings.Contains(out, "render.show_grid overridden by COMICSCRIPT_SHOW_GRID") {
		t.Fatalf("unexpected config show output:\n%s", out)
	}
}

func TestRunReportsErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if code := run([]string{"markdown", filepath.Join(t.TempDir(), "missing.comic.yml")}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if code := run([]string{"version"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}
