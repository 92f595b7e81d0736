/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"comicscript/internal/config"
	"comicscript/internal/export"
	applog "comicscript/internal/log"
	"comicscript/internal/preview"
	"comicscript/internal/script"
)

// readScript returns the raw text of a script file.
func readScript(path string) (string, error) {
	if !script.IsScriptFile(path) {
		applog.WithComponent("cli").Debug("file does not use the .comic.yml extension", slog.String("path", path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(raw), nil
}

// parseScript reads and parses a script, failing on malformed input.
func parseScript(path string) (string, *script.Chapter, error) {
	raw, err := readScript(path)
	if err != nil {
		return "", nil, err
	}
	ch, err := script.Parse(raw)
	if err != nil {
		return raw, nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, ch, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := export.WriteFile(path, data); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Wrote", path)
	return nil
}

// pageOptions titles the HTML page after the chapter when it has a title.
func pageOptions(cfg config.AppConfig, ch *script.Chapter, interactive bool) preview.PageOptions {
	opt := cfg.Preview.PageOptions()
	opt.Interactive = interactive && opt.Interactive
	opt.Refresh = 0
	if ch != nil && ch.Title != nil {
		opt.Title = *ch.Title
	}
	return opt
}

func layoutOptions(cfg config.AppConfig) export.LayoutOptions {
	return export.LayoutOptions{Width: cfg.Render.Width, Height: cfg.Render.Height, SVG: cfg.Render.SVGOptions()}
}
