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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"comicscript/internal/export"
	"comicscript/internal/layout"
	"comicscript/internal/script"
)

func newLayoutCommand(ctx *commandContext) *cobra.Command {
	var (
		page      int
		format    string
		out       string
		grid      bool
		noNumbers bool
	)

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Render page layout diagrams as SVG, PNG or a panel table",
		Long: "Render the layout grid of one page (--page N) or of every page.\n" +
			"With --format svg or png and no --page, -o names the output directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, ch, err := parseScript(args[0])
			if err != nil {
				return err
			}
			if page < 0 || page > len(ch.Pages) {
				return fmt.Errorf("page %d out of range (script has %d pages)", page, len(ch.Pages))
			}
			opt := layoutOptions(cfg)
			if cmd.Flags().Changed("grid") {
				opt.SVG.ShowGrid = grid
			}
			if noNumbers {
				opt.SVG.ShowNumbers = false
			}

			switch format {
			case "table":
				return printLayoutTables(cmd, ch, page)
			case export.FormatSVG, export.FormatPNG:
			default:
				return fmt.Errorf("unknown format %q (want svg, png or table)", format)
			}

			if page == 0 {
				dir := out
				if dir == "" {
					dir = "."
				}
				written, err := export.WriteLayouts(ch, dir, export.BaseName(args[0]), format, opt)
				for _, w := range written {
					fmt.Fprintln(cmd.OutOrStdout(), w)
				}
				return err
			}
			var lines []string
			if p := ch.Pages[page-1]; p.HasLayout() {
				lines = p.Layout
			}
			data, err := export.LayoutBytes(lines, format, opt)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			return writeOutput(cmd, out, data)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 0, "1-based page number (0 = all pages)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "Output format: svg, png or table")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file for one page, directory for all pages")
	cmd.Flags().BoolVar(&grid, "grid", false, "Draw grid lines")
	cmd.Flags().BoolVar(&noNumbers, "no-numbers", false, "Hide panel labels")
	return cmd
}

func printLayoutTables(cmd *cobra.Command, ch *script.Chapter, page int) error {
	first, last := 0, len(ch.Pages)
	if page > 0 {
		first, last = page-1, page
	}
	for i := first; i < last; i++ {
		p := ch.Pages[i]
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d\n", i+1)
		if !p.HasLayout() {
			fmt.Fprintln(cmd.OutOrStdout(), "  no layout")
			continue
		}
		l, err := layout.Parse(p.Layout)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Grid %dx%d\n", l.GridWidth, l.GridHeight)
		rows := make([][]string, 0, len(l.Panels))
		for _, pp := range l.Panels {
			b := pp.Bounds
			rows = append(rows, []string{
				pp.Label,
				strconv.Itoa(pp.Number),
				strconv.Itoa(len(pp.Cells)),
				fmt.Sprintf("%d,%d %dx%d", b.X, b.Y, b.Width, b.Height),
				layout.PanelColor(pp.Number),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(layoutColumns, rows))
	}
	return nil
}

func newPDFCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "pdf <file>",
		Short: "Export a script with its layout diagrams as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, ch, err := parseScript(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = export.BaseName(args[0]) + ".pdf"
			}
			opt := export.PDFOptions{Layout: layoutOptions(cfg)}
			if err := export.WritePDF(ch, out, opt); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default <name>.pdf)")
	return cmd
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir      string
		formats     string
		flat        bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "build <file>...",
		Short: "Render several scripts concurrently into an output directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fs, err := export.ParseFormats(formats)
			if err != nil {
				return err
			}
			results, buildErr := export.Build(cmd.Context(), args, export.BuildOptions{
				OutDir:      outDir,
				Formats:     fs,
				Layout:      layoutOptions(cfg),
				Flat:        flat || cfg.Render.Flat,
				Concurrency: concurrency,
			})
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = r.Err.Error()
				}
				rows = append(rows, []string{r.Source, strconv.Itoa(len(r.Files)), status})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(buildColumns, rows))
			if buildErr != nil {
				return fmt.Errorf("build failed for %d of %d scripts", countFailed(results), len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&formats, "formats", strings.Join([]string{export.FormatMarkdown, export.FormatHTML}, ","), "Comma-separated formats: "+strings.Join(export.AllFormats, ","))
	cmd.Flags().BoolVar(&flat, "flat", false, "Render HTML without page sections")
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", 0, "Scripts rendered at once (default GOMAXPROCS)")
	return cmd
}

func countFailed(results []export.BuildResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
