/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"fmt"
	"html"
	"strings"

	"comicscript/internal/layout"
	"comicscript/internal/markdown"
	"comicscript/internal/script"
)

// Options controls the layout diagrams of Assemble.
type Options struct {
	Width  float64
	Height float64
	SVG    layout.SVGOptions
	// Cache memoizes diagrams across calls; nil renders every diagram afresh.
	Cache *layout.Cache
}

// DefaultOptions renders 400x600 diagrams with panel labels.
func DefaultOptions() Options {
	return Options{Width: layout.DefaultWidth, Height: layout.DefaultHeight, SVG: layout.DefaultSVGOptions()}
}

// Assemble renders doc page by page. Content before the first page heading becomes a header block;
// every page becomes a two-column section pairing its HTML with the layout diagram of the page
// at the same ordinal in ch. Without a chapter or page boundaries the output equals ToHTML(doc.Text).
func Assemble(doc markdown.Document, ch *script.Chapter, opt Options) string {
	if ch == nil || len(doc.Pages) == 0 {
		return ToHTML(doc.Text)
	}
	if opt.Width == 0 && opt.Height == 0 {
		def := DefaultOptions()
		opt.Width, opt.Height = def.Width, def.Height
	}

	lines := doc.Lines()
	var b strings.Builder

	first := clampLine(doc.Pages[0].Line, len(lines))
	if header := strings.Join(lines[:first], "\n"); strings.TrimSpace(header) != "" {
		b.WriteString(`<header class="chapter">` + "\n")
		b.WriteString(ToHTML(header))
		b.WriteString("</header>\n")
	}

	for i, pb := range doc.Pages {
		start := clampLine(pb.Line, len(lines))
		end := len(lines)
		if i+1 < len(doc.Pages) {
			end = clampLine(doc.Pages[i+1].Line, len(lines))
		}
		var page *script.Page
		if pb.Index >= 0 && pb.Index < len(ch.Pages) {
			page = ch.Pages[pb.Index]
		}
		fmt.Fprintf(&b, `<section class="page" data-page="%d">`+"\n", pb.Index+1)
		b.WriteString(`<div class="page-content">` + "\n")
		if start < end {
			b.WriteString(ToHTML(strings.Join(lines[start:end], "\n")))
		}
		b.WriteString("</div>\n")
		b.WriteString(`<div class="page-layout">` + "\n")
		b.WriteString(diagram(page, opt))
		b.WriteString("</div>\n</section>\n")
	}
	return b.String()
}

// diagram renders the page layout, or the placeholder when the page has none or it cannot be drawn.
func diagram(p *script.Page, opt Options) string {
	if p.HasLayout() {
		svg, err := opt.Cache.SVG(p.Layout, opt.Width, opt.Height, opt.SVG)
		if err == nil {
			return svg
		}
		return placeholderSVG(opt) + `<p class="layout-error">` + html.EscapeString(err.Error()) + "</p>\n"
	}
	return placeholderSVG(opt)
}

func placeholderSVG(opt Options) string {
	svg, err := layout.RenderSVG(layout.ParsedLayout{}, opt.Width, opt.Height, opt.SVG)
	if err != nil {
		svg, _ = layout.RenderSVG(layout.ParsedLayout{}, layout.DefaultWidth, layout.DefaultHeight, opt.SVG)
	}
	return svg
}

func clampLine(n, limit int) int {
	return max(0, min(n, limit))
}
