package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/repoconfig"
)

func newConfigCmd() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage repository organization settings",
	}
	cmd.PersistentFlags().StringVar(&repoPath, "path", ".", "repository path")

	root := func() (string, error) {
		return repositoryFromArgs([]string{repoPath})
	}

	cmd.AddCommand(newSetInstructionsCmd(root))
	cmd.AddCommand(newShowInstructionsCmd(root))
	cmd.AddCommand(newSetDefaultConventionCmd(root))
	cmd.AddCommand(newListDirsCmd(root))
	return cmd
}

type rootResolver func() (string, error)

func newSetInstructionsCmd(resolve rootResolver) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set-instructions [text]",
		Short: "Replace the organization instructions sent with every suggestion request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (len(args) == 0) {
				return errors.New("provide the instructions either as an argument or with --file")
			}
			root, err := resolve()
			if err != nil {
				return err
			}

			var text string
			switch {
			case file == "-":
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "read instructions from stdin")
				}
				text = string(raw)
			case file != "":
				//nolint:gosec // G304: the user names the file to read
				raw, err := os.ReadFile(file)
				if err != nil {
					return errors.Wrapf(err, "read %s", file)
				}
				text = string(raw)
			default:
				text = args[0]
			}

			if err := repoconfig.SaveInstructions(root, text); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Organization instructions updated. Run 'docman plan --reprocess' to apply them to organized files.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the instructions from a file (- for stdin)")
	return cmd
}

func newShowInstructionsCmd(resolve rootResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "show-instructions",
		Short: "Print the organization instructions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := resolve()
			if err != nil {
				return err
			}
			text, err := repoconfig.LoadInstructions(root)
			if err != nil {
				return err
			}
			if text == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No organization instructions set. Use 'docman config set-instructions'.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newSetDefaultConventionCmd(resolve rootResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default-filename-convention <convention>",
		Short: "Set the filename convention used where a folder defines none",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolve()
			if err != nil {
				return err
			}
			cfg, err := repoconfig.Load(root)
			if err != nil {
				return err
			}
			cfg.Organization.DefaultFilenameConvention = strings.TrimSpace(args[0])
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default filename convention set to %s\n", cfg.Organization.DefaultFilenameConvention)
			return nil
		},
	}
}

func newListDirsCmd(resolve rootResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "list-dirs",
		Short: "Show the defined folder structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := resolve()
			if err != nil {
				return err
			}
			cfg, err := repoconfig.Load(root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rendered := cfg.Serialize()
			if rendered == "" {
				fmt.Fprintln(out, "No folder definitions found. Run 'docman define <folder> --desc \"...\"' to add one.")
				return nil
			}
			fmt.Fprintln(out, rendered)
			return nil
		},
	}
}
