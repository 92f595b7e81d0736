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

	"github.com/spf13/cobra"

	"comicscript/internal/export"
	"comicscript/internal/lint"
	"comicscript/internal/markdown"
	"comicscript/internal/preview"
	"comicscript/internal/script"
	"comicscript/internal/session"
)

func newMarkdownCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "markdown <file>",
		Short: "Render a script as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ch, err := parseScript(args[0])
			if err != nil {
				return err
			}
			doc := markdown.Render(ch)
			return writeOutput(cmd, out, []byte(doc.Text+"\n"))
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newHTMLCommand(ctx *commandContext) *cobra.Command {
	var out string
	var flat, printable bool

	cmd := &cobra.Command{
		Use:   "html <file>",
		Short: "Render a script as a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw, err := readScript(args[0])
			if err != nil {
				return err
			}
			snap, err := session.Render(raw, cfg.Render.PreviewOptions(), flat || cfg.Render.Flat)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			page := preview.Page(snap.HTML, pageOptions(cfg, snap.Chapter, !printable))
			return writeOutput(cmd, out, []byte(page))
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&flat, "flat", false, "Render without page sections and layout diagrams")
	cmd.Flags().BoolVar(&printable, "print", false, "Omit the print button")
	return cmd
}

func newPrintCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Write a printable HTML page to a temporary file and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw, err := readScript(args[0])
			if err != nil {
				return err
			}
			body := preview.PrintPlaceholder()
			snap, rerr := session.Render(raw, cfg.Render.PreviewOptions(), cfg.Render.Flat)
			if rerr != nil {
				return fmt.Errorf("%s: %w", args[0], rerr)
			}
			if len(snap.Chapter.Pages) > 0 || snap.Chapter.Title != nil {
				body = snap.HTML
			}
			path, err := export.PrintToTemp(dir, preview.Page(body, pageOptions(cfg, snap.Chapter, false)))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for the temporary file (default system temp dir)")
	return cmd
}

func newLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "lint <file>",
		Short:       "Check a script against the script schema",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readScript(args[0])
			if err != nil {
				return err
			}
			issues, err := lint.Check(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, is := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], is)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d lint issue(s)", len(issues))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
	return cmd
}

func newLocateCommand() *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:         "locate <file>",
		Short:       "Show which page and panel contain a source line",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if line < 1 {
				return fmt.Errorf("--line must be 1 or greater")
			}
			raw, err := readScript(args[0])
			if err != nil {
				return err
			}
			loc, ok := script.Locate(raw, line-1)
			if !ok {
				return fmt.Errorf("line %d is not inside a page", line)
			}
			panel := "-"
			if loc.Panel >= 0 {
				panel = strconv.Itoa(loc.Panel + 1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d panel %s\n", loc.Page+1, panel)
			return nil
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "1-based line number")
	return cmd
}
