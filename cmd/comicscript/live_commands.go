/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"comicscript/internal/config"
	"comicscript/internal/export"
	"comicscript/internal/layout"
	applog "comicscript/internal/log"
	"comicscript/internal/server"
	"comicscript/internal/session"
	"comicscript/internal/storage"
	"comicscript/internal/watch"
)

func historyDir(cfg config.AppConfig, scriptPath string) string {
	if cfg.History.Dir != "" {
		return cfg.History.Dir
	}
	return storage.DefaultDir(scriptPath)
}

// openLiveSession creates the session behind watch and serve. With history enabled every
// successful render is recorded and the session starts from the latest recorded one, so a
// script that is broken at startup still shows its last good state.
func openLiveSession(ctx context.Context, cfg config.AppConfig, scriptPath string) (*session.Session, func(), error) {
	l := applog.WithComponent("cli")
	opt := session.Options{Preview: cfg.Render.PreviewOptions(), Flat: cfg.Render.Flat}
	opt.Preview.Cache = layout.NewCache(0)
	if !cfg.History.Enabled {
		return session.New(opt), func() {}, nil
	}

	store, err := storage.Open(historyDir(cfg, scriptPath))
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	key := storage.ScriptKey(scriptPath)
	opt.Committer = store.Recorder(key, cfg.History.KeepLast)
	sess := session.New(opt)

	snap, ok, err := store.Latest(ctx, key)
	switch {
	case err != nil:
		l.Warn("history unavailable", slog.Any("err", err))
	case ok:
		if err := sess.Seed(snap.Text); err != nil {
			l.Debug("stored snapshot no longer renders", slog.Int64("id", snap.ID), slog.Any("err", err))
		}
	}
	return sess, func() { _ = store.Close() }, nil
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var out string
	var refresh int

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render a script to HTML whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := args[0]
			if out == "" {
				out = filepath.Join(filepath.Dir(path), export.BaseName(path)+".html")
			}
			sess, closeHistory, err := openLiveSession(cmd.Context(), cfg, path)
			if err != nil {
				return err
			}
			defer closeHistory()

			page := pageOptions(cfg, nil, true)
			page.Refresh = cfg.Preview.RefreshSeconds
			if cmd.Flags().Changed("refresh") {
				page.Refresh = refresh
			}
			w, err := watch.New(path, sess, watch.Options{Debounce: cfg.Watch.Debounce(), Output: out, Page: page})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s -> %s (Ctrl+C to stop)\n", w.Path(), out)
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "HTML output file (default <name>.html next to the script)")
	cmd.Flags().IntVar(&refresh, "refresh", 2, "Seconds between browser reloads of the output page (0 disables)")
	return cmd
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr, out string
	var allowAll bool

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a live HTML preview of a script over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			sess, closeHistory, err := openLiveSession(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer closeHistory()

			w, err := watch.New(args[0], sess, watch.Options{
				Debounce: cfg.Watch.Debounce(),
				Output:   out,
				Page:     pageOptions(cfg, nil, true),
			})
			if err != nil {
				return err
			}
			popt := cfg.Render.PreviewOptions()
			popt.Cache = layout.NewCache(0)
			srv := server.New(server.Config{
				Addr:     addr,
				AllowAll: allowAll || cfg.Server.AllowAllOrigins,
				Title:    cfg.Preview.Title,
				Refresh:  cfg.Preview.RefreshSeconds,
				Layout:   popt,
			}, sess)

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s (Ctrl+C to stop)\n", w.Path(), addr)
			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return w.Run(gctx) })
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(sctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "Listen address")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Also write the HTML page to this file")
	cmd.Flags().BoolVar(&allowAll, "allow-all-origins", false, "Allow cross-origin requests from any origin")
	return cmd
}
