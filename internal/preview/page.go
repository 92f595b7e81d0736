/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"bytes"
	"html"
	"html/template"
)

// DefaultTitle is used when PageOptions.Title is empty.
const DefaultTitle = "Comic Script Preview"

// PageOptions configures the full HTML document produced by Page.
type PageOptions struct {
	Title string
	// Interactive adds a print button that is hidden when printing.
	Interactive bool
	// Refresh, when positive, reloads the page every Refresh seconds.
	Refresh int
}

type pageData struct {
	Title       string
	Interactive bool
	Refresh     int
	Content     template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// Page wraps body in a standalone HTML document with embedded styles.
func Page(body string, opt PageOptions) string {
	data := pageData{Title: opt.Title, Interactive: opt.Interactive, Refresh: opt.Refresh, Content: template.HTML(body)}
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if !opt.Interactive {
		data.Title += " - Print"
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return body
	}
	return buf.String()
}

// Placeholder is the body shown before any script has rendered successfully.
func Placeholder() string {
	return "<h1>" + DefaultTitle + "</h1>\n<p>Open a comic script to see it rendered here.</p>\n"
}

// PrintPlaceholder is the body of a printable document without content.
func PrintPlaceholder() string {
	return "<h1>" + DefaultTitle + "</h1>\n<p>No content available for printing.</p>\n"
}

// Source shows markdown verbatim.
func Source(md string) string {
	return `<pre class="markdown-source">` + html.EscapeString(md) + "</pre>\n"
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  {{if gt .Refresh 0}}<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      line-height: 1.4;
      margin: 0;
      padding: 1rem;
      color: #000;
      background-color: #fff;
      font-size: 12px;
    }
    h1 { color: #333; font-size: 18px; margin: 1rem 0; font-weight: 700; text-align: center; }
    h2 {
      color: #555;
      margin: 1.5rem 0 0.5rem 0;
      font-size: 16px;
      font-weight: 600;
      border-bottom: 1px solid #e0e0e0;
      padding-bottom: 0.2rem;
    }
    h3 { color: #666; margin: 1.5rem 0 0.5rem 0; font-size: 12px; font-weight: 500; }
    p { margin: 0.5rem 0; line-height: 1.5; }
    blockquote {
      border-left: 3px solid #dfe2e5;
      padding: 0.5rem 0.75rem;
      margin: 0.75rem 0;
      color: #6a737d;
      background: #f6f8fa;
    }
    blockquote p { margin: 0.25rem 0; line-height: 1.4; color: #6a737d; }
    blockquote p:first-child { margin-top: 0; }
    blockquote p:last-child { margin-bottom: 0; }
    .content { max-width: 1000px; margin: 0 auto; position: relative; }
    section.page {
      display: grid;
      grid-template-columns: minmax(0, 3fr) minmax(0, 2fr);
      gap: 1.5rem;
      align-items: start;
      page-break-after: always;
    }
    .page-layout svg { width: 100%; height: auto; }
    .layout-error { color: #b00020; font-size: 11px; }
    pre.markdown-source { white-space: pre-wrap; font-family: ui-monospace, Menlo, Consolas, monospace; }
    .print-button { position: absolute; top: 10px; right: 10px; z-index: 1000; }
    .print-button button {
      background-color: #0366d6;
      color: #fff;
      border: none;
      padding: 8px 16px;
      border-radius: 4px;
      cursor: pointer;
      box-shadow: 0 2px 4px rgba(0,0,0,0.2);
    }
    @media print {
      .print-button { display: none !important; }
      section.page:last-of-type { page-break-after: auto; }
    }
  </style>
</head>
<body>
  <div class="content">
    {{if .Interactive}}<div class="print-button"><button id="printBtn" onclick="window.print()">Print</button></div>{{end}}
    <div id="preview-content">
{{.Content}}
    </div>
  </div>
</body>
</html>
`
