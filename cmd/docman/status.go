package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/docman"
	"github.com/docman-dev/docman/internal/usecase"
)

type statusJSON struct {
	Root       string             `json:"root"`
	Documents  int64              `json:"documents"`
	Copies     map[string]int     `json:"copies"`
	Operations map[string]int     `json:"operations"`
	Pending    []pendingJSON      `json:"pending"`
	Duplicates []duplicateJSON    `json:"duplicates,omitempty"`
	Conflicts  map[string][]int64 `json:"conflicts,omitempty"`
	Savings    int                `json:"savings"`
}

type pendingJSON struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	Target   string `json:"target"`
	Reason   string `json:"reason,omitempty"`
	Conflict bool   `json:"conflict,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type duplicateJSON struct {
	Label string   `json:"label"`
	Files []string `json:"files"`
}

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show tracked documents, pending suggestions and duplicates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return errors.Errorf("invalid format %q, must be table or json", format)
			}

			target, err := scopeFromArgs(args, true)
			if err != nil {
				return err
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := usecase.NewStatus(dbCtx).Report(cmd.Context(), target)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), statusToJSON(target, report))
			}
			printStatus(cmd.OutOrStdout(), target, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format (table|json)")
	return cmd
}

func statusToJSON(target usecase.Target, report usecase.StatusReport) statusJSON {
	out := statusJSON{
		Root:       target.Root,
		Documents:  report.Documents,
		Copies:     make(map[string]int, len(report.Copies)),
		Operations: make(map[string]int, len(report.Operations)),
		Pending:    make([]pendingJSON, 0, len(report.Pending.Items)),
		Savings:    report.Savings,
	}
	for status, n := range report.Copies {
		out.Copies[string(status)] = n
	}
	for status, n := range report.Operations {
		out.Operations[string(status)] = n
	}
	for _, item := range report.Pending.Items {
		out.Pending = append(out.Pending, pendingJSON{
			ID:       item.Operation.ID,
			Path:     item.FilePath,
			Target:   item.Operation.Suggestion.TargetPath(),
			Reason:   item.Operation.Suggestion.Reason,
			Conflict: item.Conflict,
			Warning:  item.Warning,
		})
	}
	for g, group := range report.Duplicates {
		entry := duplicateJSON{Label: analyzer.Label(g, 0)}
		for _, c := range group.Copies {
			entry.Files = append(entry.Files, c.FilePath)
		}
		out.Duplicates = append(out.Duplicates, entry)
	}
	if len(report.Pending.Conflicts) > 0 {
		out.Conflicts = make(map[string][]int64, len(report.Pending.Conflicts))
		for _, g := range report.Pending.Conflicts {
			for _, op := range g.Operations {
				out.Conflicts[g.TargetPath] = append(out.Conflicts[g.TargetPath], op.Operation.ID)
			}
		}
	}
	return out
}

func printStatus(out io.Writer, target usecase.Target, report usecase.StatusReport) {
	fmt.Fprintf(out, "Repository: %s\n", target.Root)
	fmt.Fprintf(out, "Documents:  %d\n\n", report.Documents)

	counts := newTable(out)
	counts.AppendHeader(table.Row{"Files", "Count", "Suggestions", "Count"})
	for i := range len(docman.OrganizationStatuses) {
		copyStatus := docman.OrganizationStatuses[i]
		row := table.Row{copyStatus, report.Copies[copyStatus], "", ""}
		if i < len(docman.OperationStatuses) {
			opStatus := docman.OperationStatuses[i]
			row[2], row[3] = opStatus, report.Operations[opStatus]
		}
		counts.AppendRow(row)
	}
	counts.Render()

	if len(report.Pending.Items) > 0 {
		fmt.Fprintln(out)
		printPendingTable(out, report.Pending)
	}

	if len(report.Pending.Conflicts) > 0 {
		fmt.Fprintln(out)
		printConflicts(out, report.Pending.Conflicts)
	}

	if len(report.Duplicates) > 0 {
		fmt.Fprintln(out)
		printDuplicateGroups(out, report.Duplicates)
		fmt.Fprintf(out, "Hint: run 'docman dedupe' to keep one copy per group (~%d LLM call(s) saved).\n", report.Savings)
	}

	if n := len(report.Pending.Items); n > 0 {
		fmt.Fprintf(out, "\nRun 'docman review --apply-all' to apply %s, or 'docman review accept <id>' for one.\n",
			plural(n, "pending suggestion"))
	}
}

func printPendingTable(out io.Writer, pending usecase.PendingReport) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Current path", "Suggested path", "Reason"})
	width := reasonWidth(70)
	for _, item := range pending.Items {
		suggested := item.Operation.Suggestion.TargetPath()
		if item.Conflict {
			suggested += " (!)"
		}
		reason := item.Operation.Suggestion.Reason
		if item.Warning != "" {
			reason = strings.TrimSpace(reason + "\nwarning: " + item.Warning)
		}
		t.AppendRow(table.Row{item.Operation.ID, item.FilePath, suggested, wrapString(reason, width)})
	}
	t.Render()
}

func printConflicts(out io.Writer, groups []analyzer.ConflictGroup) {
	fmt.Fprintf(out, "Warning: %s target the same path (marked with (!)):\n", plural(len(groups), "group of suggestions"))
	for _, g := range groups {
		fmt.Fprintf(out, "  %s\n", g.TargetPath)
		for _, op := range g.Operations {
			fmt.Fprintf(out, "    #%d %s\n", op.Operation.ID, op.FilePath)
		}
	}
	fmt.Fprintln(out, "Hint: accept one of them and reject the others, or apply with --on-conflict rename.")
}

func printDuplicateGroups(out io.Writer, groups []analyzer.DuplicateGroup) {
	fmt.Fprintf(out, "Duplicate content (%s):\n", plural(len(groups), "group"))
	for g, group := range groups {
		for m, c := range group.Copies {
			fmt.Fprintf(out, "  %-5s %s\n", analyzer.Label(g, m), c.FilePath)
		}
	}
}
