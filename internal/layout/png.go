/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderPNG rasterizes the layout with the same palette, centroid and contrast rules as RenderSVG.
// Labels use the 7x13 bitmap face and are skipped for panels too small to hold them.
func RenderPNG(l ParsedLayout, width, height int, opt SVGOptions) (*image.RGBA, error) {
	g, err := newGeometry(l, float64(width), float64(height))
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	if l.Empty() {
		fillRect(img, 0, 0, width-1, height-1, color.RGBA{0xf0, 0xf0, 0xf0, 0xff})
		strokeRect(img, 0, 0, width-1, height-1, 2, color.RGBA{0x33, 0x33, 0x33, 0xff})
		drawLabel(img, "No layout defined", float64(width)/2, float64(height)/2, color.RGBA{0x66, 0x66, 0x66, 0xff})
		return img, nil
	}

	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	if opt.ShowGrid {
		gc := color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
		for i := 0; i <= l.GridWidth; i++ {
			x := px(Padding + float64(i)*g.cellW)
			fillRect(img, x, px(Padding), x, px(float64(height)-Padding), gc)
		}
		for i := 0; i <= l.GridHeight; i++ {
			y := px(Padding + float64(i)*g.cellH)
			fillRect(img, px(Padding), y, px(float64(width)-Padding), y, gc)
		}
	}

	for _, p := range l.Panels {
		hex := PanelColor(p.Number)
		fill, _ := parseHex(hex)
		for _, c := range p.Cells {
			x, y := g.cellOrigin(c)
			fillRect(img, px(x), px(y), px(x+g.cellW)-1, px(y+g.cellH)-1, fill)
		}
		if !opt.ShowNumbers || g.labelSize(p) < float64(basicfont.Face7x13.Height) {
			continue
		}
		text, _ := parseHex(ContrastColor(hex))
		cx, cy := g.labelAnchor(p)
		drawLabel(img, p.Label, cx, cy, text)
	}

	strokeRect(img, px(Padding), px(Padding), px(float64(width)-Padding)-1, px(float64(height)-Padding)-1, 3, color.RGBA{0x33, 0x33, 0x33, 0xff})
	return img, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// drawLabel centres text on (cx, cy).
func drawLabel(img *image.RGBA, text string, cx, cy float64, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(text)
	m := face.Metrics()
	baseline := cy + float64(m.Ascent.Round()-m.Descent.Round())/2
	d.Dot = fixed.Point26_6{
		X: fixed.I(px(cx)) - w/2,
		Y: fixed.I(px(baseline)),
	}
	d.DrawString(text)
}

func px(f float64) int { return int(math.Round(f)) }

// fillRect fills the inclusive rectangle (x0,y0)-(x1,y1).
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// strokeRect draws an inclusive rectangle border growing inwards by width pixels.
func strokeRect(img *image.RGBA, x0, y0, x1, y1, width int, col color.RGBA) {
	for i := 0; i < width; i++ {
		fillRect(img, x0+i, y0+i, x1-i, y0+i, col)
		fillRect(img, x0+i, y1-i, x1-i, y1-i, col)
		fillRect(img, x0+i, y0+i, x0+i, y1-i, col)
		fillRect(img, x1-i, y0+i, x1-i, y1-i, col)
	}
}
