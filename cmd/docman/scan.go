package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/config"
	"github.com/docman-dev/docman/internal/usecase"
)

func newScanCmd() *cobra.Command {
	var (
		recursive bool
		rescan    bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Track the documents of a repository",
		Long:  "Discover supported documents under path, extract their content and record them. Unchanged files are not re-read unless --rescan is given.",
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

			settings := config.CurrentSettings()
			scanner := usecase.NewScanner(dbCtx, newExtractor(settings), useCaseOptions(settings)...)
			report, err := scanner.Scan(cmd.Context(), target, rescan)
			if err != nil {
				return err
			}

			printScanReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&rescan, "rescan", false, "re-extract files even when size and modification time are unchanged")
	return cmd
}

func printScanReport(out io.Writer, report usecase.ScanReport) {
	for _, orphan := range report.Orphans {
		fmt.Fprintf(out, "removed  %s (file no longer exists)\n", orphan.FilePath)
	}
	for _, f := range report.Files {
		switch {
		case f.Kind.Failed():
			fmt.Fprintf(out, "failed   %s: %v\n", f.Path, f.Err)
		case f.Kind == usecase.ScanNewDocument:
			fmt.Fprintf(out, "new      %s\n", f.Path)
		case f.Kind == usecase.ScanContentUpdated:
			fmt.Fprintf(out, "updated  %s\n", f.Path)
		case f.Kind == usecase.ScanDuplicate:
			fmt.Fprintf(out, "dup      %s\n", f.Path)
		}
	}

	fmt.Fprintf(out, "\nScanned %s: %d new, %d updated, %d duplicate, %d unchanged, %d failed\n",
		plural(len(report.Files), "file"), report.New, report.Updated, report.Duplicates, report.Unchanged, report.Failed)
	if len(report.Orphans) > 0 {
		fmt.Fprintf(out, "Removed %d record(s) whose files are gone\n", len(report.Orphans))
	}
}
