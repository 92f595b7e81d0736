/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"comicscript/internal/storage"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var show int64

	cmd := &cobra.Command{
		Use:   "history <file>",
		Short: "List the recorded renders of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := historyDir(cfg, args[0])
			if _, err := os.Stat(storage.Path(dir)); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No history recorded")
				return nil
			}
			store, err := storage.Open(dir)
			if err != nil {
				return err
			}
			defer store.Close()

			snaps, err := store.List(cmd.Context(), storage.ScriptKey(args[0]), limit)
			if err != nil {
				return err
			}
			if show > 0 {
				for _, s := range snaps {
					if s.ID == show {
						fmt.Fprintln(cmd.OutOrStdout(), s.Text)
						return nil
					}
				}
				return fmt.Errorf("snapshot %d not found in the last %d entries", show, len(snaps))
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history recorded")
				return nil
			}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					strconv.FormatInt(s.ID, 10),
					s.TS.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(len(s.Text)),
					headline(s.Markdown),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(historyColumns, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "Maximum number of entries")
	cmd.Flags().Int64Var(&show, "show", 0, "Print the script text of the snapshot with this ID")
	return cmd
}

// headline is the first non-empty markdown line without its heading marks.
func headline(md string) string {
	for line := range strings.SplitSeq(md, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
