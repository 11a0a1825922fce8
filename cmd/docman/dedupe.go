package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/usecase"
)

func newDedupeCmd() *cobra.Command {
	var (
		recursive bool
		dryRun    bool
		yes       bool
		keepAll   bool
	)

	cmd := &cobra.Command{
		Use:   "dedupe [path]",
		Short: "Remove redundant copies of the same document",
		Long:  "Keep the first tracked copy of every group of identical documents and delete the other files.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := scopeFromArgs(args, recursive)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			out := cmd.OutOrStdout()
			deduper := usecase.NewDeduper(dbCtx)
			groups, err := deduper.Groups(cmd.Context(), target)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(out, "No duplicate files found.")
				return nil
			}

			printDuplicateGroups(out, groups)
			fmt.Fprintln(out)
			if keepAll {
				fmt.Fprintln(out, "Keeping all copies.")
				return nil
			}

			toDelete := 0
			for _, g := range groups {
				toDelete += len(g.Copies) - 1
			}
			if dryRun {
				fmt.Fprintln(out, "DRY RUN - no files will be deleted")
			} else {
				ok, err := confirm(cmd, fmt.Sprintf("Keep the first copy of each group and delete %d file(s)?", toDelete), yes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			results, err := deduper.Dedupe(cmd.Context(), target, usecase.DedupeOptions{DryRun: dryRun})
			deleted, failed := 0, 0
			for _, r := range results {
				for _, c := range r.Deleted {
					if dryRun {
						fmt.Fprintf(out, "would delete %s\n", c.FilePath)
					} else {
						fmt.Fprintf(out, "deleted %s\n", c.FilePath)
					}
					deleted++
				}
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "error in group of document %d: %v\n", r.Group.DocumentID, r.Err)
				}
			}
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(out, "\nWould delete %d duplicate file(s)\n", deleted)
				return nil
			}
			fmt.Fprintf(out, "\nDeleted %d duplicate file(s)\n", deleted)
			if failed > 0 {
				fmt.Fprintf(out, "%s could not be fully resolved\n", plural(failed, "group"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include subdirectories of path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&keepAll, "keep-all", false, "keep every copy")
	return cmd
}
