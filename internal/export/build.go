/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	applog "comicscript/internal/log"
	"comicscript/internal/preview"
	"comicscript/internal/session"
)

// BuildOptions controls a batch build.
type BuildOptions struct {
	OutDir  string
	Formats []string
	Layout  LayoutOptions
	PDF     PDFOptions
	// Flat renders HTML without page sections.
	Flat bool
	// Concurrency bounds the number of scripts processed at once; zero means GOMAXPROCS.
	Concurrency int
}

// BuildResult reports the files written for one source script.
type BuildResult struct {
	Source string
	Files  []string
	Err    error
}

// ErrDuplicateOutput marks a source whose base name collides with an earlier source in the same build.
var ErrDuplicateOutput = errors.New("output name already used")

// Build renders every source script into OutDir in the requested formats, several scripts at a time.
// A failing script does not stop the others; the returned error joins all per-script errors.
func Build(ctx context.Context, sources []string, opt BuildOptions) ([]BuildResult, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "build")
	if len(opt.Formats) == 0 {
		opt.Formats = []string{FormatMarkdown, FormatHTML}
	}
	if opt.Concurrency <= 0 {
		opt.Concurrency = runtime.GOMAXPROCS(0)
	}
	opt.Layout = opt.Layout.withDefaults()

	results := make([]BuildResult, len(sources))
	owner := make(map[string]string, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opt.Concurrency)
	for i, src := range sources {
		base := BaseName(src)
		if first, taken := owner[base]; taken {
			results[i] = BuildResult{Source: src, Err: fmt.Errorf("%w: %q by %s", ErrDuplicateOutput, base, first)}
			l.Warn("build skipped", slog.String("source", src), slog.Any("err", results[i].Err))
			continue
		}
		owner[base] = src
		eg.Go(func() error {
			res := BuildResult{Source: src}
			if err := egCtx.Err(); err != nil {
				res.Err = err
			} else {
				res.Files, res.Err = buildOne(src, opt)
			}
			if res.Err != nil {
				l.Warn("build failed", slog.String("source", src), slog.Any("err", res.Err))
			} else {
				l.Info("built", slog.String("source", src), slog.Int("files", len(res.Files)))
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func buildOne(src string, opt BuildOptions) ([]string, error) {
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	popt := preview.Options{Width: opt.Layout.Width, Height: opt.Layout.Height, SVG: opt.Layout.SVG}
	snap, err := session.Render(string(raw), popt, opt.Flat)
	if err != nil {
		return nil, err
	}
	base := BaseName(src)
	var files []string
	write := func(name string, data []byte) error {
		path := filepath.Join(opt.OutDir, name)
		if err := WriteFile(path, data); err != nil {
			return err
		}
		files = append(files, path)
		return nil
	}
	for _, f := range opt.Formats {
		switch f {
		case FormatMarkdown:
			err = write(base+".md", []byte(snap.Markdown.Text+"\n"))
		case FormatHTML:
			page := preview.Page(snap.HTML, preview.PageOptions{Title: titleOf(snap, base), Interactive: true})
			err = write(base+".html", []byte(page))
		case FormatSVG, FormatPNG:
			var written []string
			written, err = WriteLayouts(snap.Chapter, opt.OutDir, base, f, opt.Layout)
			files = append(files, written...)
		case FormatPDF:
			path := filepath.Join(opt.OutDir, base+".pdf")
			pdfOpt := opt.PDF
			pdfOpt.Layout = opt.Layout
			if err = WritePDF(snap.Chapter, path, pdfOpt); err == nil {
				files = append(files, path)
			}
		default:
			err = fmt.Errorf("unknown format %q", f)
		}
		if err != nil {
			return files, err
		}
	}
	return files, nil
}

func titleOf(snap session.Snapshot, fallback string) string {
	if snap.Chapter != nil && snap.Chapter.Title != nil {
		return *snap.Chapter.Title
	}
	return fallback
}
