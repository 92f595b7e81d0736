/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Diagram defaults.
const (
	DefaultWidth  = 400.0
	DefaultHeight = 600.0
	Padding       = 10.0
	MaxLabelSize  = 24.0
)

// SVGOptions toggles optional diagram features.
type SVGOptions struct {
	ShowNumbers bool
	ShowGrid    bool
}

// DefaultSVGOptions shows panel labels and hides grid lines.
func DefaultSVGOptions() SVGOptions { return SVGOptions{ShowNumbers: true} }

// geometry maps grid cells to pixels inside the padded drawing area.
type geometry struct {
	width, height float64
	innerW        float64
	innerH        float64
	cellW, cellH  float64
}

func newGeometry(l ParsedLayout, width, height float64) (geometry, error) {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) ||
		width <= 2*Padding || height <= 2*Padding {
		return geometry{}, &LayoutError{Msg: fmt.Sprintf("diagram size %vx%v must exceed %v in both dimensions", width, height, 2*Padding)}
	}
	g := geometry{width: width, height: height, innerW: width - 2*Padding, innerH: height - 2*Padding}
	if l.GridWidth > 0 && l.GridHeight > 0 {
		g.cellW = g.innerW / float64(l.GridWidth)
		g.cellH = g.innerH / float64(l.GridHeight)
	}
	return g, nil
}

// cellOrigin is the top-left pixel of a cell.
func (g geometry) cellOrigin(c Cell) (float64, float64) {
	return Padding + float64(c.X)*g.cellW, Padding + float64(c.Y)*g.cellH
}

// labelAnchor is the pixel centre of the panel's cell centroid.
func (g geometry) labelAnchor(p PanelPosition) (float64, float64) {
	var sx, sy float64
	for _, c := range p.Cells {
		sx += float64(c.X)
		sy += float64(c.Y)
	}
	n := float64(len(p.Cells))
	return Padding + (sx/n+0.5)*g.cellW, Padding + (sy/n+0.5)*g.cellH
}

// labelSize is min(24, one third of the smaller bounding-box side in pixels).
func (g geometry) labelSize(p PanelPosition) float64 {
	side := math.Min(float64(p.Bounds.Width)*g.cellW, float64(p.Bounds.Height)*g.cellH)
	return math.Min(MaxLabelSize, side/3)
}

// RenderSVG draws the layout as a standalone SVG document of width x height pixels.
// Each cell of a panel is a separate filled rectangle; labels sit at the cell centroid.
func RenderSVG(l ParsedLayout, width, height float64, opt SVGOptions) (string, error) {
	g, err := newGeometry(l, width, height)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	wf := func(format string, args ...any) {
		_, _ = fmt.Fprintf(&buf, format, args...)
	}

	wf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n", num(width), num(height), num(width), num(height))
	if l.Empty() {
		wf(`  <rect width="%s" height="%s" fill="#f0f0f0" stroke="#333" stroke-width="2"/>`+"\n", num(width), num(height))
		wf(`  <text x="%s" y="%s" text-anchor="middle" font-family="Arial, Helvetica, sans-serif" font-size="14" fill="#666">No layout defined</text>`+"\n", num(width/2), num(height/2))
		wf("</svg>\n")
		return buf.String(), nil
	}

	wf(`  <rect width="%s" height="%s" fill="#ffffff"/>`+"\n", num(width), num(height))

	if opt.ShowGrid {
		wf(`  <g stroke="#e0e0e0" stroke-width="0.5">` + "\n")
		for i := 0; i <= l.GridWidth; i++ {
			x := Padding + float64(i)*g.cellW
			wf(`    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", num(x), num(Padding), num(x), num(height-Padding))
		}
		for i := 0; i <= l.GridHeight; i++ {
			y := Padding + float64(i)*g.cellH
			wf(`    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", num(Padding), num(y), num(width-Padding), num(y))
		}
		wf("  </g>\n")
	}

	for _, p := range l.Panels {
		fill := PanelColor(p.Number)
		for _, c := range p.Cells {
			x, y := g.cellOrigin(c)
			wf(`  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n", num(x), num(y), num(g.cellW), num(g.cellH), fill)
		}
		if !opt.ShowNumbers {
			continue
		}
		cx, cy := g.labelAnchor(p)
		wf(`  <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="Arial, Helvetica, sans-serif" font-size="%s" font-weight="bold" fill="%s">%s</text>`+"\n",
			num(cx), num(cy), num(g.labelSize(p)), ContrastColor(fill), escText(p.Label))
	}

	wf(`  <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#333" stroke-width="3"/>`+"\n", num(Padding), num(Padding), num(g.innerW), num(g.innerH))
	wf("</svg>\n")
	return buf.String(), nil
}

// num formats a coordinate without exponent or trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escText(s string) string { return textEscaper.Replace(s) }
