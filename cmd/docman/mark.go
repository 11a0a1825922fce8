package main

import (
	"fmt"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/docman"
	"github.com/docman-dev/docman/internal/usecase"
)

func newUnmarkCmd() *cobra.Command {
	var (
		all       bool
		recursive bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "unmark [path]",
		Short: "Reset organized or ignored files so the next plan reconsiders them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("specify --all or a path, e.g. 'docman unmark --all' or 'docman unmark docs/'")
			}
			target, err := scopeFromArgs(args, recursive)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			marker := usecase.NewMarker(dbCtx)
			return runMark(cmd, markRun{
				verb:  "Unmark",
				done:  "Unmarked",
				empty: "No organized or ignored files found.",
				yes:   yes,
				preview: func() ([]database.CopyRecord, error) {
					return marker.Matching(cmd.Context(), target, docman.StatusOrganized, docman.StatusIgnored)
				},
				apply: func() ([]database.CopyRecord, error) {
					return marker.Unmark(cmd.Context(), target)
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "unmark every file of the repository")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include subdirectories of path")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newIgnoreCmd() *cobra.Command {
	var (
		recursive bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "ignore [path]",
		Short: "Exclude files from future suggestions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targetFromArgs(args, recursive)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			marker := usecase.NewMarker(dbCtx)
			return runMark(cmd, markRun{
				verb:  "Ignore",
				done:  "Ignored",
				empty: "No tracked files found. Run 'docman scan' first.",
				yes:   yes,
				preview: func() ([]database.CopyRecord, error) {
					return marker.Matching(cmd.Context(), target)
				},
				apply: func() ([]database.CopyRecord, error) {
					return marker.Ignore(cmd.Context(), target)
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include subdirectories of path")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

type markRun struct {
	verb    string
	done    string
	empty   string
	yes     bool
	preview func() ([]database.CopyRecord, error)
	apply   func() ([]database.CopyRecord, error)
}

func runMark(cmd *cobra.Command, run markRun) error {
	out := cmd.OutOrStdout()
	copies, err := run.preview()
	if err != nil {
		return err
	}
	if len(copies) == 0 {
		fmt.Fprintln(out, run.empty)
		return nil
	}

	printCopyList(out, copies)
	ok, err := confirm(cmd, fmt.Sprintf("%s %d file(s)?", run.verb, len(copies)), run.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	changed, err := run.apply()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %d file(s)\n", run.done, len(changed))
	return nil
}

// printCopyList shows every copy, or the first five and last three of a long list.
func printCopyList(out io.Writer, copies []database.CopyRecord) {
	line := func(c database.CopyRecord) {
		fmt.Fprintf(out, "  - %s (%s)\n", c.FilePath, c.Status)
	}
	if len(copies) <= 10 {
		for _, c := range copies {
			line(c)
		}
		return
	}
	for _, c := range copies[:5] {
		line(c)
	}
	fmt.Fprintf(out, "  ... and %d more ...\n", len(copies)-8)
	for _, c := range copies[len(copies)-3:] {
		line(c)
	}
}
