/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

// Box is a rectangle in drawing units.
type Box struct {
	X, Y, W, H float64
}

// PlacedPanel is a panel mapped onto a width x height drawing area with the same rules as RenderSVG.
type PlacedPanel struct {
	Label     string
	Number    int
	Fill      string
	TextColor string
	Boxes     []Box
	LabelX    float64
	LabelY    float64
	LabelSize float64
}

// Place computes drawing coordinates for every panel, for renderers other than SVG and PNG.
// The drawing area starts at (0,0); the inner frame is inset by Padding.
func Place(l ParsedLayout, width, height float64) ([]PlacedPanel, error) {
	g, err := newGeometry(l, width, height)
	if err != nil {
		return nil, err
	}
	out := make([]PlacedPanel, 0, len(l.Panels))
	for _, p := range l.Panels {
		fill := PanelColor(p.Number)
		pp := PlacedPanel{
			Label:     p.Label,
			Number:    p.Number,
			Fill:      fill,
			TextColor: ContrastColor(fill),
			Boxes:     make([]Box, 0, len(p.Cells)),
			LabelSize: g.labelSize(p),
		}
		for _, c := range p.Cells {
			x, y := g.cellOrigin(c)
			pp.Boxes = append(pp.Boxes, Box{X: x, Y: y, W: g.cellW, H: g.cellH})
		}
		pp.LabelX, pp.LabelY = g.labelAnchor(p)
		out = append(out, pp)
	}
	return out, nil
}

// Frame is the inner border drawn around the layout.
func Frame(width, height float64) Box {
	return Box{X: Padding, Y: Padding, W: width - 2*Padding, H: height - 2*Padding}
}

// RGB splits a "#rrggbb" color into components; malformed input yields black.
func RGB(hex string) (r, g, b int) {
	c, _ := parseHex(hex)
	return int(c.R), int(c.G), int(c.B)
}
