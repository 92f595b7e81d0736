/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"comicscript/internal/layout"
	"comicscript/internal/preview"
	"comicscript/internal/script"
)

// maxScriptBytes bounds the body of POST /render.
const maxScriptBytes = 4 << 20

// RenderResponse is the JSON body of POST /render.
type RenderResponse struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Stale    bool   `json:"stale"`
	Error    string `json:"error,omitempty"`
}

// LocateResponse is the JSON body of GET /locate. Both indexes are 0-based; Panel is -1 outside a panel.
type LocateResponse struct {
	Page  int `json:"page"`
	Panel int `json:"panel"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body := preview.Placeholder()
	if snap, ok := s.sess.Current(); ok {
		body = snap.HTML
	}
	writeHTML(w, preview.Page(body, preview.PageOptions{Title: s.cfg.Title, Interactive: true, Refresh: s.cfg.Refresh}))
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	body := preview.PrintPlaceholder()
	if snap, ok := s.sess.Current(); ok {
		body = snap.HTML
	}
	writeHTML(w, preview.Page(body, preview.PageOptions{Title: s.cfg.Title}))
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.sess.Current()
	if !ok {
		http.Error(w, "no content", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, snap.Markdown.Text)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.sess.Current()
	if !ok {
		writeHTML(w, preview.Page(preview.Placeholder(), preview.PageOptions{Title: s.cfg.Title, Interactive: true}))
		return
	}
	writeHTML(w, preview.Page(preview.Source(snap.Markdown.Text), preview.PageOptions{Title: s.cfg.Title, Interactive: true}))
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	line, err := strconv.Atoi(r.URL.Query().Get("line"))
	if err != nil || line < 0 {
		http.Error(w, "line must be a non-negative integer", http.StatusBadRequest)
		return
	}
	snap, ok := s.sess.Current()
	if !ok {
		http.Error(w, "no content", http.StatusNotFound)
		return
	}
	loc, ok := script.Locate(snap.Raw, line)
	if !ok {
		http.Error(w, "line is outside any page", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, LocateResponse{Page: loc.Page, Panel: loc.Panel})
}

// page resolves the 1-based {n} URL parameter against the current snapshot.
func (s *Server) page(w http.ResponseWriter, r *http.Request) (*script.Page, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		http.Error(w, "page must be a positive integer", http.StatusBadRequest)
		return nil, false
	}
	snap, ok := s.sess.Current()
	if !ok || snap.Chapter == nil || n > len(snap.Chapter.Pages) {
		http.Error(w, "page not found", http.StatusNotFound)
		return nil, false
	}
	return snap.Chapter.Pages[n-1], true
}

func (s *Server) handleLayoutSVG(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	var lines []string
	if p.HasLayout() {
		lines = p.Layout
	}
	svg, err := s.cache.SVG(lines, s.cfg.Layout.Width, s.cfg.Layout.Height, s.cfg.Layout.SVG)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = io.WriteString(w, svg)
}

func (s *Server) handleLayoutPNG(w http.ResponseWriter, r *http.Request) {
	p, ok := s.page(w, r)
	if !ok {
		return
	}
	var l layout.ParsedLayout
	if p.HasLayout() {
		var err error
		if l, err = layout.Parse(p.Layout); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}
	img, err := layout.RenderPNG(l, int(s.cfg.Layout.Width), int(s.cfg.Layout.Height), s.cfg.Layout.SVG)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	var buf bytes.Buffer
	if err := layout.EncodePNG(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScriptBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	res, ok := s.sess.TryUpdateContext(r.Context(), string(raw))
	out := RenderResponse{Stale: res.Stale}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	out.Markdown = res.Markdown.Text
	out.HTML = res.HTML
	writeJSON(w, http.StatusOK, out)
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
