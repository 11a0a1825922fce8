package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/config"
	"github.com/docman-dev/docman/internal/usecase"
)

func newPlanCmd() *cobra.Command {
	var (
		recursive bool
		reprocess bool
		scanFirst bool
	)

	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Ask the model where each tracked document belongs",
		Long: "Generate a pending move suggestion for every unorganized document under path. " +
			"Suggestions that are still valid are reused; --reprocess also re-checks organized and ignored documents.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targetFromArgs(args, recursive)
			if err != nil {
				return err
			}

			settings := config.CurrentSettings()
			suggester, err := newSuggester(target.Root, settings)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			out := cmd.OutOrStdout()
			opts := useCaseOptions(settings)
			if scanFirst {
				scanReport, err := usecase.NewScanner(dbCtx, newExtractor(settings), opts...).Scan(cmd.Context(), target, false)
				if err != nil {
					return err
				}
				printScanReport(out, scanReport)
				fmt.Fprintln(out)
			}

			report, err := usecase.NewPlanner(dbCtx, suggester, opts...).Plan(cmd.Context(), target, reprocess)
			if err != nil {
				return err
			}
			printPlanReport(out, report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&reprocess, "reprocess", false, "re-check organized and ignored documents")
	cmd.Flags().BoolVar(&scanFirst, "scan", false, "scan the path before planning")
	return cmd
}

func printPlanReport(out io.Writer, report usecase.PlanReport) {
	if len(report.Files) == 0 {
		fmt.Fprintln(out, "No tracked documents found. Run 'docman scan' first.")
		return
	}

	for _, f := range report.Files {
		switch f.Kind {
		case usecase.PlanCreated, usecase.PlanUpdated:
			line := fmt.Sprintf("%-8s %s -> %s", f.Kind, f.Path, f.Suggestion.TargetPath())
			if f.Reason != "" {
				line += fmt.Sprintf(" (%s)", f.Reason)
			}
			if f.StatusReset {
				line += " [reset to unorganized]"
			}
			fmt.Fprintln(out, line)
			if f.Warning != "" {
				fmt.Fprintf(out, "         warning: %s\n", f.Warning)
			}
		case usecase.PlanSkipped:
			fmt.Fprintf(out, "skipped  %s: %v\n", f.Path, f.Err)
		}
	}

	fmt.Fprintf(out, "\nPlanned with %s: %d created, %d updated, %d reused, %d skipped, %d excluded\n",
		report.Model, report.Created, report.Updated, report.Reused, report.Skipped, report.Excluded)

	if len(report.Duplicates) > 0 {
		fmt.Fprintf(out, "\nWarning: %s of duplicated content found. Run 'docman dedupe' to remove redundant copies.\n",
			plural(len(report.Duplicates), "group"))
		fmt.Fprintf(out, "~%d LLM call(s) could be saved by deduplicating first.\n", report.Savings)
	}
}
