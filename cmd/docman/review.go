package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/usecase"
)

type applyFlags struct {
	onConflict string
	force      bool
}

func (f applyFlags) policy() (filesystem.ConflictPolicy, error) {
	if f.force {
		return filesystem.Overwrite, nil
	}
	return filesystem.ParseConflictPolicy(f.onConflict)
}

func (f *applyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.onConflict, "on-conflict", "skip", "what to do when the target exists (skip|overwrite|rename)")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite existing targets, same as --on-conflict overwrite")
}

func newReviewCmd() *cobra.Command {
	var (
		recursive bool
		applyAll  bool
		rejectAll bool
		dryRun    bool
		yes       bool
		apply     applyFlags
	)

	cmd := &cobra.Command{
		Use:   "review [path]",
		Short: "List, apply or reject pending suggestions",
		Long: "Without flags, list the pending suggestions under path. " +
			"--apply-all moves every file to its suggested location and --reject-all discards every suggestion.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if applyAll && rejectAll {
				return errors.New("--apply-all and --reject-all are mutually exclusive")
			}
			if dryRun && !applyAll && !rejectAll {
				return errors.New("--dry-run needs --apply-all or --reject-all")
			}
			policy, err := apply.policy()
			if err != nil {
				return err
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

			out := cmd.OutOrStdout()
			reviewer := usecase.NewReviewer(dbCtx)
			pending, err := reviewer.Pending(cmd.Context(), target)
			if err != nil {
				return err
			}
			if len(pending.Items) == 0 {
				fmt.Fprintln(out, "No pending suggestions.")
				return nil
			}

			printPendingTable(out, pending)
			if len(pending.Conflicts) > 0 {
				fmt.Fprintln(out)
				printConflicts(out, pending.Conflicts)
			}
			if !applyAll && !rejectAll {
				return nil
			}
			fmt.Fprintln(out)

			if dryRun {
				fmt.Fprintln(out, "DRY RUN - no changes will be made")
			} else {
				verb := "Apply"
				if rejectAll {
					verb = "Reject"
				}
				ok, err := confirm(cmd, fmt.Sprintf("%s %s?", verb, plural(len(pending.Items), "operation")), yes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if rejectAll {
				rejected, err := reviewer.RejectAll(cmd.Context(), target, dryRun)
				if err != nil {
					return err
				}
				printRejected(out, rejected, dryRun)
				return nil
			}

			results, err := reviewer.ApplyAll(cmd.Context(), target, usecase.ApplyOptions{Policy: policy, DryRun: dryRun})
			printApplyResults(out, results, dryRun)
			return err
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include subdirectories of path")
	cmd.Flags().BoolVar(&applyAll, "apply-all", false, "apply every pending suggestion")
	cmd.Flags().BoolVar(&rejectAll, "reject-all", false, "reject every pending suggestion")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would happen without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	apply.register(cmd)

	cmd.AddCommand(newReviewAcceptCmd())
	cmd.AddCommand(newReviewRejectCmd())
	return cmd
}

func newReviewAcceptCmd() *cobra.Command {
	var apply applyFlags

	cmd := &cobra.Command{
		Use:   "accept <id>",
		Short: "Apply one pending suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOperationID(args[0])
			if err != nil {
				return err
			}
			policy, err := apply.policy()
			if err != nil {
				return err
			}
			root, err := repositoryFromArgs(nil)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := usecase.NewReviewer(dbCtx).Accept(cmd.Context(), root, id, usecase.ApplyOptions{Policy: policy})
			if err != nil {
				return err
			}
			if res.Outcome == usecase.OutcomeMissing {
				return errors.Errorf("no pending operation %d in %s", id, root)
			}
			printApplyResults(cmd.OutOrStdout(), []usecase.ApplyResult{res}, false)
			if res.Err != nil {
				return errors.Wrapf(res.Err, "operation %d", id)
			}
			return nil
		},
	}

	apply.register(cmd)
	return cmd
}

func newReviewRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject one pending suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOperationID(args[0])
			if err != nil {
				return err
			}
			root, err := repositoryFromArgs(nil)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := usecase.NewReviewer(dbCtx).Reject(cmd.Context(), root, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected operation %d\n", id)
			return nil
		},
	}
}

func parseOperationID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid operation id %q", s)
	}
	return id, nil
}

func printApplyResults(out io.Writer, results []usecase.ApplyResult, dryRun bool) {
	var applied, skipped, failed int
	for _, r := range results {
		switch r.Outcome {
		case usecase.OutcomeApplied, usecase.OutcomeInPlace, usecase.OutcomePlanned:
			applied++
			fmt.Fprintf(out, "%-16s %s -> %s\n", r.Outcome, r.Source, r.Target)
		case usecase.OutcomeConflict:
			skipped++
			fmt.Fprintf(out, "%-16s %s -> %s (target exists, use --on-conflict)\n", r.Outcome, r.Source, r.Target)
		case usecase.OutcomeInvalid:
			failed++
			status := "auto-rejected"
			if !r.Rejected {
				status = "would auto-reject"
			}
			fmt.Fprintf(out, "%-16s %s: %v (%s)\n", r.Outcome, r.Source, r.Err, status)
		default:
			failed++
			fmt.Fprintf(out, "%-16s %s: %v\n", r.Outcome, r.Source, r.Err)
		}
	}

	if dryRun {
		fmt.Fprintf(out, "\nWould apply %d, would skip %d, invalid %d\n", applied, skipped, failed)
		return
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "\nApplied %d, skipped %d, failed %d\n", applied, skipped, failed)
	}
}

func printRejected(out io.Writer, rejected []database.PendingOperation, dryRun bool) {
	verb := "Rejected"
	if dryRun {
		verb = "Would reject"
	}
	fmt.Fprintf(out, "%s %s\n", verb, plural(len(rejected), "operation"))
}
