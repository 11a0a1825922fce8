package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/repoconfig"
)

func newDefineCmd() *cobra.Command {
	var (
		desc       string
		convention string
		repoPath   string
	)

	cmd := &cobra.Command{
		Use:   "define <folder>",
		Short: "Describe a folder of the intended structure",
		Long: "Add or update a folder definition. Nested folders are separated by '/', " +
			"and names in braces such as {year} are variables.",
		Example: `  docman define Financial --desc "Financial documents"
  docman define "Financial/invoices/{year}" --desc "Invoices by year" --filename-convention "{company}-invoice-{year}"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := repositoryFromArgs([]string{repoPath})
			if err != nil {
				return err
			}
			cfg, err := repoconfig.Load(root)
			if err != nil {
				return err
			}
			if err := cfg.AddFolderDefinition(args[0], desc, convention); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Defined folder %s\n", args[0])
			if desc != "" {
				fmt.Fprintf(out, "  Description: %s\n", desc)
			}
			if convention != "" {
				fmt.Fprintf(out, "  Filename convention: %s\n", convention)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "folder description")
	cmd.Flags().StringVar(&convention, "filename-convention", "", "filename convention for documents in this folder")
	cmd.Flags().StringVar(&repoPath, "path", ".", "repository path")
	return cmd
}
