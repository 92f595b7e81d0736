/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server serves a live HTML preview of a comic script session over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"comicscript/internal/layout"
	applog "comicscript/internal/log"
	"comicscript/internal/preview"
	"comicscript/internal/session"
)

// DefaultAddr is the listen address when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:8787"

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins
	Title    string
	// Refresh makes the preview page reload itself every Refresh seconds; zero disables it.
	Refresh int
	Layout  preview.Options
}

// Server exposes one session.
type Server struct {
	cfg        Config
	sess       *session.Session
	cache      *layout.Cache
	router     chi.Router
	httpServer *http.Server
	log        *slog.Logger
}

// New creates a server for sess.
func New(cfg Config, sess *session.Session) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Layout.Width == 0 || cfg.Layout.Height == 0 {
		cfg.Layout = preview.DefaultOptions()
	}
	s := &Server{
		cfg:   cfg,
		sess:  sess,
		cache: cfg.Layout.Cache,
		log:   applog.WithComponent("server"),
	}
	if s.cache == nil {
		s.cache = layout.NewCache(0)
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleIndex)
	r.Get("/print", s.handlePrint)
	r.Get("/markdown", s.handleMarkdown)
	r.Get("/source", s.handleSource)
	r.Get("/locate", s.handleLocate)
	r.Route("/pages/{n}", func(r chi.Router) {
		r.Get("/layout.svg", s.handleLayoutSVG)
		r.Get("/layout.png", s.handleLayoutPNG)
	})
	r.Post("/render", s.handleRender)
	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after a graceful shutdown,
// also when Shutdown ran before Serve.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("preview server listening", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("took", time.Since(start)),
			slog.String("req_id", middleware.GetReqID(r.Context())),
		)
	})
}
