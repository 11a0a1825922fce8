package main

import (
	"fmt"
	"path/filepath"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/config"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/repository"
	"github.com/docman-dev/docman/internal/usecase"
)

func newDebugPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-prompt <file>",
		Short: "Print the prompt that plan would send for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Wrapf(err, "resolve %s", args[0])
			}
			if !filesystem.FileExists(abs) {
				return errors.Errorf("file %s does not exist", args[0])
			}
			if !repository.IsSupported(abs) {
				return errors.Errorf("unsupported file type %q", filepath.Ext(abs))
			}
			root, err := repository.Resolve(filepath.Dir(abs))
			if err != nil {
				return err
			}
			rel, err := filesystem.ToRelative(root, abs)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			out := cmd.OutOrStdout()
			settings := config.CurrentSettings()
			planner := usecase.NewPlanner(dbCtx, nil, useCaseOptions(settings)...)

			content, stored, err := planner.StoredContent(cmd.Context(), root, rel)
			if err != nil {
				return err
			}
			if stored {
				fmt.Fprintf(out, "Using stored content for %s\n\n", rel)
			} else {
				fmt.Fprintf(out, "Extracting content from %s\n\n", rel)
				if content, err = newExtractor(settings).Extract(cmd.Context(), abs); err != nil {
					return errors.Wrapf(err, "extract %s", rel)
				}
			}

			preview, err := planner.Preview(cmd.Context(), root, rel, content)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "=== SYSTEM PROMPT ===")
			fmt.Fprintln(out, preview.System)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "=== USER PROMPT ===")
			fmt.Fprintln(out, preview.User)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Model:       %s\n", preview.Model)
			fmt.Fprintf(out, "Prompt hash: %s\n", preview.Hash)
			return nil
		},
	}
}
