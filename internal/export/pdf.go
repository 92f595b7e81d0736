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
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"comicscript/internal/layout"
	"comicscript/internal/markdown"
	"comicscript/internal/script"
)

// PDFOptions controls PDF export. Units are points (pt).
type PDFOptions struct {
	Size   gofpdf.SizeType // zero means A4
	Margin float64         // zero means 36pt
	// Layout sets the diagram aspect ratio and label visibility; the diagram is scaled to the column.
	Layout LayoutOptions
	Title  string
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.Size.Wd == 0 || o.Size.Ht == 0 {
		o.Size = gofpdf.SizeType{Wd: 595, Ht: 842}
	}
	if o.Margin == 0 {
		o.Margin = 36
	}
	o.Layout = o.Layout.withDefaults()
	return o
}

const (
	lineHeight = 14.0
	columnGap  = 18.0
	quoteInset = 12.0
)

// WritePDF renders the chapter as a PDF file: the header on the first sheet, then one sheet per page
// with the script text on the left and the layout diagram on the right.
func WritePDF(ch *script.Chapter, outPath string, opt PDFOptions) error {
	var buf bytes.Buffer
	if err := RenderPDF(ch, &buf, opt); err != nil {
		return err
	}
	return WriteFile(outPath, buf.Bytes())
}

// RenderPDF writes the PDF to w.
func RenderPDF(ch *script.Chapter, w io.Writer, opt PDFOptions) error {
	pdf, err := buildPDF(ch, opt)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func buildPDF(ch *script.Chapter, opt PDFOptions) (*gofpdf.Fpdf, error) {
	if ch == nil {
		return nil, errors.New("chapter is nil")
	}
	opt = opt.withDefaults()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    opt.Size,
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	title := opt.Title
	if title == "" && ch.Title != nil {
		title = *ch.Title
	}
	if title != "" {
		pdf.SetTitle(tr(title), false)
	}
	pdf.SetCreator("comicscript", false)
	pdf.SetMargins(opt.Margin, opt.Margin, opt.Margin)
	pdf.SetAutoPageBreak(true, opt.Margin)
	pdf.SetFont("Helvetica", "", 11)

	doc := markdown.Render(ch)
	lines := doc.Lines()
	first := len(lines)
	if len(doc.Pages) > 0 {
		first = doc.Pages[0].Line
	}
	fullWidth := opt.Size.Wd - 2*opt.Margin

	if header := lines[:first]; hasText(header) || len(doc.Pages) == 0 {
		pdf.AddPage()
		writeLines(pdf, tr, header, opt.Margin, fullWidth)
	}

	textWidth := fullWidth * 0.58
	diagramX := opt.Margin + textWidth + columnGap
	diagramW := fullWidth - textWidth - columnGap
	diagramH := diagramW * opt.Layout.Height / opt.Layout.Width

	for i, pb := range doc.Pages {
		end := len(lines)
		if i+1 < len(doc.Pages) {
			end = doc.Pages[i+1].Line
		}
		pdf.AddPage()
		var page *script.Page
		if pb.Index < len(ch.Pages) {
			page = ch.Pages[pb.Index]
		}
		drawDiagram(pdf, tr, page, diagramX, opt.Margin, diagramW, diagramH, opt.Layout.SVG)
		writeLines(pdf, tr, lines[pb.Line:end], opt.Margin, textWidth)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

func hasText(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

// writeLines typesets markdown lines into the column starting at x with the given width.
func writeLines(pdf *gofpdf.Fpdf, tr func(string) string, lines []string, x, width float64) {
	pageW, _ := pdf.GetPageSize()
	right := pageW - x - width
	pdf.SetTextColor(0, 0, 0)
	for _, line := range lines {
		left := x
		size := 11.0
		base := ""
		text := line
		switch {
		case strings.TrimSpace(line) == "":
			pdf.Ln(lineHeight / 2)
			continue
		case strings.HasPrefix(line, "# "):
			size, base, text = 18, "B", line[2:]
		case strings.HasPrefix(line, "## "):
			size, base, text = 14, "B", line[3:]
		case strings.HasPrefix(line, "### "):
			size, base, text = 11, "B", line[4:]
		case strings.HasPrefix(line, "> "):
			left, text = x+quoteInset, line[2:]
		}
		pdf.SetLeftMargin(left)
		pdf.SetRightMargin(right)
		pdf.SetX(left)
		for _, seg := range spans(text) {
			pdf.SetFont("Helvetica", mergeStyle(base, seg.style), size)
			pdf.Write(size*1.3, tr(seg.text))
		}
		pdf.Ln(size * 1.3)
	}
	pdf.SetLeftMargin(x)
}

type span struct {
	text  string
	style string
}

var spanRe = regexp.MustCompile(`\*\*(.+?)\*\*|\*(.+?)\*`)

// spans splits a line into plain, bold ("B") and italic ("I") runs.
func spans(text string) []span {
	var out []span
	pos := 0
	for _, m := range spanRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > pos {
			out = append(out, span{text: text[pos:m[0]]})
		}
		if m[2] >= 0 {
			out = append(out, span{text: text[m[2]:m[3]], style: "B"})
		} else {
			out = append(out, span{text: text[m[4]:m[5]], style: "I"})
		}
		pos = m[1]
	}
	if pos < len(text) {
		out = append(out, span{text: text[pos:]})
	}
	return out
}

func mergeStyle(a, b string) string {
	if strings.Contains(a, b) {
		return a
	}
	return a + b
}

// drawDiagram draws the page layout in the box at (x, y) of size w x h.
func drawDiagram(pdf *gofpdf.Fpdf, tr func(string) string, p *script.Page, x, y, w, h float64, opt layout.SVGOptions) {
	var placed []layout.PlacedPanel
	var problem string
	if p.HasLayout() {
		l, err := layout.Parse(p.Layout)
		if err == nil {
			placed, err = layout.Place(l, w, h)
		}
		if err != nil {
			problem = err.Error()
		}
	}

	if len(placed) == 0 {
		pdf.SetFillColor(0xf0, 0xf0, 0xf0)
		pdf.SetDrawColor(0x33, 0x33, 0x33)
		pdf.SetLineWidth(1)
		pdf.Rect(x, y, w, h, "FD")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0x66, 0x66, 0x66)
		msg := "No layout defined"
		pdf.Text(x+(w-pdf.GetStringWidth(msg))/2, y+h/2, msg)
		if problem != "" {
			pdf.SetFont("Helvetica", "", 7)
			pdf.SetTextColor(0xb0, 0x00, 0x20)
			pdf.Text(x+4, y+h+10, tr(problem))
		}
		pdf.SetTextColor(0, 0, 0)
		return
	}

	for _, pp := range placed {
		r, g, b := layout.RGB(pp.Fill)
		pdf.SetFillColor(r, g, b)
		for _, box := range pp.Boxes {
			pdf.Rect(x+box.X, y+box.Y, box.W, box.H, "F")
		}
		if !opt.ShowNumbers {
			continue
		}
		r, g, b = layout.RGB(pp.TextColor)
		pdf.SetTextColor(r, g, b)
		pdf.SetFont("Helvetica", "B", pp.LabelSize)
		label := tr(pp.Label)
		pdf.Text(x+pp.LabelX-pdf.GetStringWidth(label)/2, y+pp.LabelY+pp.LabelSize*0.35, label)
	}
	frame := layout.Frame(w, h)
	pdf.SetDrawColor(0x33, 0x33, 0x33)
	pdf.SetLineWidth(2)
	pdf.Rect(x+frame.X, y+frame.Y, frame.W, frame.H, "D")
	pdf.SetTextColor(0, 0, 0)
}
