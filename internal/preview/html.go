/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview assembles rendered markdown and layout diagrams into HTML.
//
// The markdown subset is the one produced by package markdown: level 1-3 headings,
// "> " block quotes and **bold** / *italic* spans. It is not a general markdown engine.
package preview

import (
	"html"
	"regexp"
	"strings"
)

type scanState int

const (
	stateNormal scanState = iota
	stateInQuote
)

// scanner converts markdown line by line. Quote lines accumulate while in stateInQuote
// and are flushed as one <blockquote> on the first non-quote line or at the end of input.
type scanner struct {
	state scanState
	quote []string
	out   strings.Builder
}

// ToHTML converts markdown to flat HTML.
func ToHTML(md string) string {
	var s scanner
	for _, line := range strings.Split(md, "\n") {
		s.line(line)
	}
	s.flush()
	return s.out.String()
}

func (s *scanner) line(line string) {
	if rest, ok := strings.CutPrefix(line, "> "); ok {
		s.state = stateInQuote
		s.quote = append(s.quote, rest)
		return
	}
	s.flush()

	switch {
	case strings.TrimSpace(line) == "":
		s.out.WriteString("\n")
	case strings.HasPrefix(line, "# "):
		s.element("h1", html.EscapeString(line[2:]))
	case strings.HasPrefix(line, "## "):
		s.element("h2", html.EscapeString(line[3:]))
	case strings.HasPrefix(line, "### "):
		s.element("h3", html.EscapeString(line[4:]))
	default:
		s.element("p", Inline(line))
	}
}

// flush leaves stateInQuote, emitting the pending quote lines.
func (s *scanner) flush() {
	if s.state != stateInQuote {
		return
	}
	s.out.WriteString("<blockquote>")
	for _, q := range s.quote {
		q = strings.TrimSpace(strings.TrimPrefix(q, ">"))
		if q == "" {
			continue
		}
		s.element("p", Inline(q))
	}
	s.out.WriteString("</blockquote>\n")
	s.quote = s.quote[:0]
	s.state = stateNormal
}

func (s *scanner) element(tag, content string) {
	s.out.WriteString("<" + tag + ">" + content + "</" + tag + ">\n")
}

var (
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
)

// Inline escapes text and then resolves **bold** before *italic*. Spans do not nest.
func Inline(text string) string {
	out := html.EscapeString(text)
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	return italicRe.ReplaceAllString(out, "<em>$1</em>")
}
