/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package markdown renders a parsed comic script as deterministic markdown.
//
// Output uses only level 1-3 headings, block quotes and bold/italic spans. Rendering never fails:
// wrong-shaped entities render as an error heading in place.
package markdown

import (
	"strconv"
	"strings"

	"comicscript/internal/script"
)

// Error headings for entities that were present but malformed.
const (
	InvalidChapter = "# Error: Invalid chapter data"
	InvalidPage    = "## Error: Invalid page data"
	InvalidPanel   = "### Error: Invalid panel data"
)

// PageBoundary locates the heading of page Index (0-based, same ordinal as Chapter.Pages)
// at 0-based line Line of Document.Text.
type PageBoundary struct {
	Index int
	Line  int
}

// Document is rendered markdown plus the line of every page heading in it.
type Document struct {
	Text  string
	Pages []PageBoundary
}

// Lines splits the text the same way the boundary lines are counted.
func (d Document) Lines() []string { return strings.Split(d.Text, "\n") }

// Render formats the whole chapter. Rendering the same chapter twice yields identical output.
func Render(ch *script.Chapter) Document {
	if ch == nil {
		return Document{Text: InvalidChapter, Pages: []PageBoundary{}}
	}
	var b sections
	if ch.Title != nil && *ch.Title != "" {
		b.add("# " + *ch.Title)
	}
	if ch.Synopsis != nil && *ch.Synopsis != "" {
		b.add("**Synopsis:** " + *ch.Synopsis)
	}
	if len(ch.Credits) > 0 {
		lines := make([]string, 0, len(ch.Credits)+1)
		lines = append(lines, "**Credits:**")
		for _, c := range ch.Credits {
			lines = append(lines, "- "+c)
		}
		b.add(strings.Join(lines, "\n"))
	}
	pages := make([]PageBoundary, 0, len(ch.Pages))
	for i, p := range ch.Pages {
		pages = append(pages, PageBoundary{Index: i, Line: b.nextLine()})
		b.add(Page(p, i))
	}
	return Document{Text: b.String(), Pages: pages}
}

// Page renders one page block; index is 0-based.
func Page(p *script.Page, index int) string {
	if p == nil {
		return InvalidPage
	}
	var b sections
	b.add("## " + title("Page", index, p.Name))
	for i, panel := range p.Panels {
		b.add(Panel(panel, i))
	}
	return b.String()
}

// Panel renders one panel block; index is 0-based.
func Panel(p *script.Panel, index int) string {
	if p == nil {
		return InvalidPanel
	}
	var b sections
	b.add("### " + title("Panel", index, p.Name))
	if p.Desc != nil {
		b.add("*" + Collapse(*p.Desc) + "*")
	}
	if p.FX != nil {
		b.add("**FX:** " + Collapse(*p.FX))
	}

	var quote []string
	if p.Caption != nil {
		quote = append(quote, "*CAPTION: "+Collapse(*p.Caption)+"*")
	}
	for _, d := range p.Dialogue {
		quote = append(quote, Dialogue(d))
	}
	if p.EndCaption != nil {
		quote = append(quote, "*END CAPTION: "+Collapse(*p.EndCaption)+"*")
	}
	if len(quote) > 0 {
		b.add("> " + strings.Join(quote, "\n> "))
	}
	return b.String()
}

// Dialogue renders a single dialogue line.
//
//	narration (flag or type)  *text*
//	sound_effect              **text**
//	speech                    **CHARACTER:** text
//	anything else             **CHARACTER:** (type) text
func Dialogue(d script.Dialogue) string {
	text := Collapse(d.Text)
	character := d.Character
	if character == "" {
		character = script.DefaultCharacter
	}
	typ := d.Type
	if typ == "" {
		typ = script.TypeSpeech
	}
	switch {
	case d.IsNarration || typ == script.TypeNarration:
		return "*" + text + "*"
	case typ == script.TypeSoundEffect:
		return "**" + text + "**"
	case typ == script.TypeSpeech:
		return "**" + strings.ToUpper(character) + ":** " + text
	default:
		return "**" + strings.ToUpper(character) + ":** (" + typ + ") " + text
	}
}

// Collapse replaces every run of whitespace with one space and trims the ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func title(kind string, index int, name *string) string {
	t := "(" + kind + " " + strconv.Itoa(index+1) + ")"
	if name != nil && *name != "" {
		t += " " + *name
	}
	return t
}

// sections joins blocks with one blank line. last is the 0-based index of the last line written.
type sections struct {
	sb   strings.Builder
	last int
}

// nextLine is the line the next added block will start on.
func (s *sections) nextLine() int {
	if s.sb.Len() == 0 {
		return 0
	}
	return s.last + 2
}

func (s *sections) add(block string) {
	if s.sb.Len() > 0 {
		s.sb.WriteString("\n\n")
		s.last += 2
	}
	s.sb.WriteString(block)
	s.last += strings.Count(block, "\n")
}

func (s *sections) String() string { return s.sb.String() }
