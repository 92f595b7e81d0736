/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session keeps the last successfully rendered script and falls back to it
// when a newer input fails to parse or render.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	applog "comicscript/internal/log"
	"comicscript/internal/markdown"
	"comicscript/internal/preview"
	"comicscript/internal/script"
)

// Snapshot is one consistent render: the raw input and everything derived from it.
type Snapshot struct {
	Raw      string
	Chapter  *script.Chapter
	Markdown markdown.Document
	HTML     string
	At       time.Time
}

// Result is the outcome of TryUpdate. Stale is set when the input failed and the
// snapshot was re-derived from the last good input; Err then holds the failure.
type Result struct {
	Snapshot
	Stale bool
	Err   error
}

// Committer persists successful snapshots. Commit errors are logged and otherwise ignored.
type Committer interface {
	Commit(ctx context.Context, s Snapshot) error
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, s Snapshot) error

func (f CommitterFunc) Commit(ctx context.Context, s Snapshot) error { return f(ctx, s) }

// Options configures a Session.
type Options struct {
	Preview preview.Options
	// Flat renders HTML without page sections and layout diagrams.
	Flat      bool
	Committer Committer
	Logger    *slog.Logger
	// Now is used for Snapshot.At; defaults to time.Now.
	Now func() time.Time
}

// Session holds the single last-good slot. Safe for concurrent use; callers are responsible for ordering.
type Session struct {
	opt Options
	log *slog.Logger

	mu   sync.Mutex
	last *Snapshot
}

// New creates an empty session.
func New(opt Options) *Session {
	if opt.Logger == nil {
		opt.Logger = applog.WithComponent("session")
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Session{opt: opt, log: opt.Logger}
}

// Render runs the whole pipeline once. It returns the parse error unchanged.
func Render(raw string, opt preview.Options, flat bool) (Snapshot, error) {
	ch, err := script.Parse(raw)
	if err != nil {
		return Snapshot{}, err
	}
	doc := markdown.Render(ch)
	var html string
	if flat {
		html = preview.ToHTML(doc.Text)
	} else {
		html = preview.Assemble(doc, ch, opt)
	}
	return Snapshot{Raw: raw, Chapter: ch, Markdown: doc, HTML: html}, nil
}

// TryUpdate is TryUpdateContext with a background context.
func (s *Session) TryUpdate(raw string) (Result, bool) {
	return s.TryUpdateContext(context.Background(), raw)
}

// TryUpdateContext renders raw. On success the snapshot replaces the last good one and is committed.
// On failure the last good input is rendered again and returned as stale. The bool is false only when
// the input failed and nothing has rendered successfully yet.
func (s *Session) TryUpdateContext(ctx context.Context, raw string) (Result, bool) {
	l := applog.WithOperation(s.log, "tryUpdate")

	snap, err := Render(raw, s.opt.Preview, s.opt.Flat)
	if err == nil {
		snap.At = s.opt.Now()
		s.mu.Lock()
		changed := s.last == nil || s.last.Raw != raw
		s.last = &snap
		s.mu.Unlock()
		if changed {
			s.commit(ctx, snap)
		}
		return Result{Snapshot: snap}, true
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		l.Debug("render failed without a previous state", slog.String("error", err.Error()))
		return Result{Err: err}, false
	}
	l.Debug("render failed, keeping last good state", slog.String("error", err.Error()))

	again, rerr := Render(last.Raw, s.opt.Preview, s.opt.Flat)
	if rerr != nil {
		again = *last
	} else {
		again.At = last.At
	}
	return Result{Snapshot: again, Stale: true, Err: err}, true
}

// Current returns the last good snapshot.
func (s *Session) Current() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// Seed primes the session from previously persisted input without committing it again.
func (s *Session) Seed(raw string) error {
	snap, err := Render(raw, s.opt.Preview, s.opt.Flat)
	if err != nil {
		return err
	}
	snap.At = s.opt.Now()
	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()
	return nil
}

func (s *Session) commit(ctx context.Context, snap Snapshot) {
	if s.opt.Committer == nil {
		return
	}
	if err := s.opt.Committer.Commit(ctx, snap); err != nil {
		s.log.Warn("snapshot commit failed", slog.String("error", err.Error()))
	}
}
