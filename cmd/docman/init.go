package main

import (
	"fmt"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/repository"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a docman repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			metaDir, err := repository.Init(dir)
			if errors.Is(err, repository.ErrAlreadyInitialized) {
				fmt.Fprintf(cmd.OutOrStdout(), "docman repository already exists at %s\n", metaDir)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized docman repository at %s\n", metaDir)
			return nil
		},
	}
}
