/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"comicscript/internal/layout"
	applog "comicscript/internal/log"
	"comicscript/internal/preview"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type RenderConfig struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	ShowNumbers bool    `yaml:"show_numbers"`
	ShowGrid    bool    `yaml:"show_grid"`
	Flat        bool    `yaml:"flat"` // HTML without page sections and diagrams
}

type PreviewConfig struct {
	PrintButton    bool   `yaml:"print_button"`
	Title          string `yaml:"title"`
	RefreshSeconds int    `yaml:"refresh_seconds"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

type HistoryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	KeepLast int    `yaml:"keep_last"`
	Dir      string `yaml:"dir"` // empty: .comicscript next to the script
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Render        RenderConfig  `yaml:"render"`
	Preview       PreviewConfig `yaml:"preview"`
	Server        ServerConfig  `yaml:"server"`
	Watch         WatchConfig   `yaml:"watch"`
	History       HistoryConfig `yaml:"history"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Render:        RenderConfig{Width: layout.DefaultWidth, Height: layout.DefaultHeight, ShowNumbers: true},
		Preview:       PreviewConfig{PrintButton: true, Title: preview.DefaultTitle},
		Server:        ServerConfig{Addr: "127.0.0.1:8787"},
		Watch:         WatchConfig{DebounceMs: 150},
		History:       HistoryConfig{Enabled: true, KeepLast: 100},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvRenderWidth     = "COMICSCRIPT_RENDER_WIDTH"
	EnvRenderHeight    = "COMICSCRIPT_RENDER_HEIGHT"
	EnvShowNumbers     = "COMICSCRIPT_SHOW_NUMBERS"
	EnvShowGrid        = "COMICSCRIPT_SHOW_GRID"
	EnvServerAddr      = "COMICSCRIPT_SERVER_ADDR"
	EnvAllowAllOrigins = "COMICSCRIPT_ALLOW_ALL_ORIGINS"
	EnvWatchDebounceMs = "COMICSCRIPT_WATCH_DEBOUNCE_MS"
	EnvHistory         = "COMICSCRIPT_HISTORY"
	EnvHistoryDir      = "COMICSCRIPT_HISTORY_DIR"
	// EnvLogLevel Logging envs, shared with the log package
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

// envKeys maps dotted config keys to the env var overriding them.
var envKeys = map[string]string{
	"render.width":             EnvRenderWidth,
	"render.height":            EnvRenderHeight,
	"render.show_numbers":      EnvShowNumbers,
	"render.show_grid":         EnvShowGrid,
	"server.addr":              EnvServerAddr,
	"server.allow_all_origins": EnvAllowAllOrigins,
	"watch.debounce_ms":        EnvWatchDebounceMs,
	"history.enabled":          EnvHistory,
	"history.dir":              EnvHistoryDir,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ComicScript")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ComicScript")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "comicscript")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "comicscript")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file (if present), applies defaults, and merges environment overrides.
// An empty path selects ConfigPath(). A missing file is not an error; a malformed one is.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// start from defaults so keys absent from the file keep their default value
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the config YAML to path, or to ConfigPath() when path is empty.
func Save(cfg AppConfig, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Render.Width > 0 {
		dst.Render.Width = src.Render.Width
	}
	if src.Render.Height > 0 {
		dst.Render.Height = src.Render.Height
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Render.ShowNumbers = src.Render.ShowNumbers
	dst.Render.ShowGrid = src.Render.ShowGrid
	dst.Render.Flat = src.Render.Flat
	dst.Preview.PrintButton = src.Preview.PrintButton
	if strings.TrimSpace(src.Preview.Title) != "" {
		dst.Preview.Title = strings.TrimSpace(src.Preview.Title)
	}
	if src.Preview.RefreshSeconds >= 0 {
		dst.Preview.RefreshSeconds = src.Preview.RefreshSeconds
	}
	if strings.TrimSpace(src.Server.Addr) != "" {
		dst.Server.Addr = strings.TrimSpace(src.Server.Addr)
	}
	dst.Server.AllowAllOrigins = src.Server.AllowAllOrigins
	if src.Watch.DebounceMs > 0 {
		dst.Watch.DebounceMs = src.Watch.DebounceMs
	}
	dst.History.Enabled = src.History.Enabled
	if src.History.KeepLast >= 0 {
		dst.History.KeepLast = src.History.KeepLast
	}
	if strings.TrimSpace(src.History.Dir) != "" {
		dst.History.Dir = strings.TrimSpace(src.History.Dir)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := env(EnvRenderWidth); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Render.Width = f
		}
	}
	if v := env(EnvRenderHeight); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Render.Height = f
		}
	}
	if v := env(EnvShowNumbers); v != "" {
		cfg.Render.ShowNumbers = truthy(v)
	}
	if v := env(EnvShowGrid); v != "" {
		cfg.Render.ShowGrid = truthy(v)
	}
	if v := env(EnvServerAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := env(EnvAllowAllOrigins); v != "" {
		cfg.Server.AllowAllOrigins = truthy(v)
	}
	if v := env(EnvWatchDebounceMs); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Watch.DebounceMs = n
		}
	}
	if v := env(EnvHistory); v != "" {
		cfg.History.Enabled = truthy(v)
	}
	if v := env(EnvHistoryDir); v != "" {
		cfg.History.Dir = v
	}
	// logging overrides
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

func env(name string) string { return strings.TrimSpace(os.Getenv(name)) }

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvKeys returns the dotted config keys that have an env override, sorted.
func EnvKeys() []string {
	return slices.Sorted(maps.Keys(envKeys))
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// SVGOptions returns the diagram options of the render section.
func (r RenderConfig) SVGOptions() layout.SVGOptions {
	return layout.SVGOptions{ShowNumbers: r.ShowNumbers, ShowGrid: r.ShowGrid}
}

// PreviewOptions returns the assembler options of the render section.
func (r RenderConfig) PreviewOptions() preview.Options {
	def := preview.DefaultOptions()
	if r.Width > 0 {
		def.Width = r.Width
	}
	if r.Height > 0 {
		def.Height = r.Height
	}
	def.SVG = r.SVGOptions()
	return def
}

// PageOptions returns the HTML page options of the preview section.
func (p PreviewConfig) PageOptions() preview.PageOptions {
	return preview.PageOptions{Title: p.Title, Interactive: p.PrintButton, Refresh: p.RefreshSeconds}
}

// Debounce returns the watch debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMs <= 0 {
		return time.Duration(Defaults().Watch.DebounceMs) * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogOptions returns the logger options of the logging section.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
