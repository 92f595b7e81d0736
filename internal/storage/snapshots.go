/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	applog "comicscript/internal/log"
	"comicscript/internal/session"
)

// language=SQL
// dialect=SQLite
const insertScriptSnapshotSQL = `INSERT INTO script_snapshots(script, ts, text, markdown) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestScriptSnapshotSQL = `SELECT id, ts, text, markdown FROM script_snapshots WHERE script = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listScriptSnapshotsSQL = `SELECT id, ts, text, markdown FROM script_snapshots WHERE script = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldScriptSnapshotsSQL = `DELETE FROM script_snapshots WHERE script = ? AND id NOT IN (
	SELECT id FROM script_snapshots WHERE script = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// tsLayout is fixed width so that text order in the ts column matches time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 50

// Snapshot is one stored render.
type Snapshot struct {
	ID       int64
	Script   string
	TS       time.Time
	Text     string
	Markdown string
}

// ScriptKey normalizes a script path for use as the history key.
func ScriptKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func parseTS(v string) (time.Time, error) {
	if t, err := time.Parse(tsLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

// Save stores the raw text and rendered markdown of a script.
func (s *Store) Save(ctx context.Context, script, text, markdown string, ts time.Time) error {
	if _, err := s.db.ExecContext(ctx, insertScriptSnapshotSQL, script, ts.UTC().Format(tsLayout), text, markdown); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot of script; ok is false when there is none.
func (s *Store) Latest(ctx context.Context, script string) (snap Snapshot, ok bool, err error) {
	var tsStr string
	err = s.db.QueryRowContext(ctx, selectLatestScriptSnapshotSQL, script).Scan(&snap.ID, &tsStr, &snap.Text, &snap.Markdown)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.Script = script
	snap.TS, _ = parseTS(tsStr)
	return snap, true, nil
}

// List returns up to limit snapshots of script, newest first.
func (s *Store) List(ctx context.Context, script string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, listScriptSnapshotsSQL, script, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		snap := Snapshot{Script: script}
		var tsStr string
		if err := rows.Scan(&snap.ID, &tsStr, &snap.Text, &snap.Markdown); err != nil {
			return nil, err
		}
		snap.TS, _ = parseTS(tsStr)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Prune keeps at most keepLast snapshots of script and deletes older ones.
func (s *Store) Prune(ctx context.Context, script string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, pruneOldScriptSnapshotsSQL, script, script, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// Recorder returns a session.Committer that saves every successful render of script
// and prunes the history to keepLast entries (0 keeps everything).
func (s *Store) Recorder(script string, keepLast int) session.Committer {
	l := applog.WithOperation(s.log, "record").With(slog.String("script", script))
	return session.CommitterFunc(func(ctx context.Context, snap session.Snapshot) error {
		ts := snap.At
		if ts.IsZero() {
			ts = time.Now()
		}
		if err := s.Save(ctx, script, snap.Raw, snap.Markdown.Text, ts); err != nil {
			return err
		}
		n, err := s.Prune(ctx, script, keepLast)
		if err != nil {
			return err
		}
		if n > 0 {
			l.Debug("pruned history", slog.Int64("deleted", n))
		}
		return nil
	})
}
