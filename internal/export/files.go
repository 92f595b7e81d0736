/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes rendered scripts to files: markdown, HTML, per-page layout
// diagrams (SVG, PNG) and a printable PDF.
package export

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"comicscript/internal/layout"
	"comicscript/internal/script"
)

// Format names accepted by Build and the CLI.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// AllFormats lists every supported format.
var AllFormats = []string{FormatMarkdown, FormatHTML, FormatSVG, FormatPNG, FormatPDF}

// ParseFormats normalizes a comma separated format list. An empty list means md and html.
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if f == "markdown" {
			f = FormatMarkdown
		}
		if !slices.Contains(AllFormats, f) {
			return nil, fmt.Errorf("unknown format %q (want one of %s)", f, strings.Join(AllFormats, ", "))
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		out = []string{FormatMarkdown, FormatHTML}
	}
	return out, nil
}

// BaseName strips the directory and the script extension from path.
func BaseName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range []string{".comic.yaml", ".comic.yml", ".yaml", ".yml"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteFile replaces path with data via a temp file in the same directory.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// LayoutOptions sizes per-page diagrams.
type LayoutOptions struct {
	Width  float64
	Height float64
	SVG    layout.SVGOptions
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.Width == 0 {
		o.Width = layout.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = layout.DefaultHeight
	}
	return o
}

// PageFileName is the diagram file name of page index (0-based).
func PageFileName(base string, index int, ext string) string {
	return fmt.Sprintf("%s-page-%d.%s", base, index+1, ext)
}

// WriteLayouts writes one diagram per page that has a layout, as SVG or PNG, into dir.
// Pages without a layout are skipped. It returns the written paths.
func WriteLayouts(ch *script.Chapter, dir, base, format string, opt LayoutOptions) ([]string, error) {
	if format != FormatSVG && format != FormatPNG {
		return nil, fmt.Errorf("layout format must be svg or png, got %q", format)
	}
	opt = opt.withDefaults()
	var written []string
	for i, p := range ch.Pages {
		if !p.HasLayout() {
			continue
		}
		data, err := LayoutBytes(p.Layout, format, opt)
		if err != nil {
			return written, fmt.Errorf("page %d: %w", i+1, err)
		}
		path := filepath.Join(dir, PageFileName(base, i, format))
		if err := WriteFile(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// LayoutBytes renders layout lines as SVG or PNG.
func LayoutBytes(lines []string, format string, opt LayoutOptions) ([]byte, error) {
	opt = opt.withDefaults()
	l, err := layout.Parse(lines)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		svg, err := layout.RenderSVG(l, opt.Width, opt.Height, opt.SVG)
		if err != nil {
			return nil, err
		}
		return []byte(svg), nil
	case FormatPNG:
		img, err := layout.RenderPNG(l, int(opt.Width), int(opt.Height), opt.SVG)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := layout.EncodePNG(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported layout format %q", format)
	}
}
