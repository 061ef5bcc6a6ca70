// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sitecraft/internal/generate"
	"sitecraft/internal/materialize"
	"sitecraft/internal/preview"
)

// readResponse loads a saved model response; "-" reads stdin.
func readResponse(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(b), nil
}

func newRenderCmd() *cobra.Command {
	var (
		output string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "render <response-file>",
		Short: "Render a saved model response as a preview document",
		Long: `render runs a saved model response through parsing, normalization and
sanitization, then writes the synthesized preview HTML to stdout or to
the file given with -o. Use "-" to read the response from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readResponse(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := preview.NewRenderer(nil).Render(cmd.Context(), "", generate.Process(raw), preview.Options{WebsiteName: name})
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(output, doc, 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "preview written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to this file instead of stdout")
	cmd.Flags().StringVar(&name, "name", "", "website name used as the document title")
	return cmd
}

func newMaterializeCmd() *cobra.Command {
	var (
		root   string
		userID string
		siteID string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "materialize <response-file>",
		Short: "Write a saved model response out as a project tree",
		Long: `materialize runs a saved model response through the same pipeline as the
server and writes the resulting project to <dir>/<user>/<id>. Missing
project files are filled with defaults, so the tree can be installed and
started directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readResponse(cmd, args[0])
			if err != nil {
				return err
			}
			if siteID == "" {
				siteID = uuid.NewString()
			}
			if err := os.MkdirAll(root, 0o755); err != nil {
				return fmt.Errorf("create root: %w", err)
			}
			dir, err := materialize.New(root).Write(cmd.Context(), userID, siteID, generate.Process(raw), name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "dir", "generated_sites", "root directory for generated projects")
	cmd.Flags().StringVar(&userID, "user", "local", "owner directory name")
	cmd.Flags().StringVar(&siteID, "id", "", "project directory name (default: a new UUID)")
	cmd.Flags().StringVar(&name, "name", "Generated Website", "website name used for the package and title")
	return cmd
}
