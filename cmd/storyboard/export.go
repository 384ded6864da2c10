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
	"os"

	"github.com/spf13/cobra"

	"storyboardstudio/internal/export"
	"storyboardstudio/internal/project"
)

func newExportCmd() *cobra.Command {
	var (
		out     string
		title   string
		columns int
		rows    int
	)

	cmd := &cobra.Command{
		Use:   "export [project-file]",
		Short: "Render a project's scenes as a PDF contact sheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := project.FileName
			if len(args) == 1 {
				in = args[0]
			}
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			doc, err := project.Parse(data)
			if err != nil {
				return fmt.Errorf("read project %s: %w", in, err)
			}
			if err := export.ContactSheet(doc.Results, out, export.SheetOptions{
				Title:   title,
				Columns: columns,
				Rows:    rows,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d scenes)\n", out, len(doc.Results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "storyboard.pdf", "output PDF path")
	cmd.Flags().StringVar(&title, "title", "Storyboard", "sheet title")
	cmd.Flags().IntVar(&columns, "columns", 3, "thumbnails per row")
	cmd.Flags().IntVar(&rows, "rows", 2, "rows per page")
	return cmd
}
