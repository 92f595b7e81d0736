/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package watch re-renders a comic script whenever its file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"comicscript/internal/export"
	applog "comicscript/internal/log"
	"comicscript/internal/preview"
	"comicscript/internal/session"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Output receives the full HTML page after every update; empty disables writing.
	Output string
	Page   preview.PageOptions
	// OnUpdate is called from the watch goroutine after every render attempt.
	OnUpdate func(res session.Result, ok bool)
	Logger   *slog.Logger
}

// Watcher drives a session from one script file. The directory is watched rather than the
// file so editors that save by rename keep being tracked.
type Watcher struct {
	path string
	sess *session.Session
	opt  Options
	log  *slog.Logger
}

// New creates a watcher for path.
func New(path string, sess *session.Session, opt Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if opt.Debounce <= 0 {
		opt.Debounce = DefaultDebounce
	}
	if opt.Logger == nil {
		opt.Logger = applog.WithComponent("watch")
	}
	return &Watcher{path: abs, sess: sess, opt: opt, log: opt.Logger}, nil
}

// Path returns the absolute path of the watched script.
func (w *Watcher) Path() string { return w.path }

// Run renders once and then on every settled change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	l := applog.WithOperation(w.log, "run")
	l.Info("watching script", slog.String("path", w.path), slog.Duration("debounce", w.opt.Debounce))
	w.update(ctx)

	// settle fires once writes have been quiet for the debounce interval; nil while idle
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			settle = time.After(w.opt.Debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.String("error", err.Error()))
		case <-settle:
			settle = nil
			w.update(ctx)
		}
	}
}

// Update reads the file once and pushes it through the session.
func (w *Watcher) Update(ctx context.Context) (session.Result, bool, error) {
	raw, err := os.ReadFile(w.path)
	if err != nil {
		return session.Result{}, false, fmt.Errorf("read %s: %w", w.path, err)
	}
	res, ok := w.sess.TryUpdateContext(ctx, string(raw))
	if ok && w.opt.Output != "" {
		if err := export.WriteFile(w.opt.Output, []byte(preview.Page(res.HTML, w.opt.Page))); err != nil {
			return res, ok, err
		}
	}
	return res, ok, nil
}

func (w *Watcher) update(ctx context.Context) {
	res, ok, err := w.Update(ctx)
	switch {
	case err != nil:
		// a missing file mid-rename is expected; the following create event retries
		w.log.Warn("update failed", slog.String("error", err.Error()))
		return
	case !ok:
		w.log.Warn("script does not render yet", slog.String("error", res.Err.Error()))
	case res.Stale:
		w.log.Warn("script invalid, showing last good render", slog.String("error", res.Err.Error()))
	default:
		w.log.Info("rendered", slog.Int("pages", len(res.Markdown.Pages)))
	}
	if w.opt.OnUpdate != nil {
		w.opt.OnUpdate(res, ok)
	}
}
