package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/repoconfig"
)

func newPatternCmd() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Manage the variables used in folder names and filename conventions",
	}
	cmd.PersistentFlags().StringVar(&repoPath, "path", ".", "repository path")

	load := func() (*repoconfig.Config, error) {
		root, err := repositoryFromArgs([]string{repoPath})
		if err != nil {
			return nil, err
		}
		return repoconfig.Load(root)
	}

	cmd.AddCommand(newPatternAddCmd(load))
	cmd.AddCommand(newPatternListCmd(load))
	cmd.AddCommand(newPatternShowCmd(load))
	cmd.AddCommand(newPatternRemoveCmd(load))
	cmd.AddCommand(newPatternValueCmd(load))
	return cmd
}

type configLoader func() (*repoconfig.Config, error)

func patternName(name string) string {
	return strings.Trim(strings.TrimSpace(name), "{}")
}

func newPatternAddCmd(load configLoader) *cobra.Command {
	var desc string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Define a variable pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.AddVariablePattern(args[0], desc); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Defined pattern {%s}: %s\n", patternName(args[0]), desc)
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "what the variable stands for")
	_ = cmd.MarkFlagRequired("desc")
	return cmd
}

func newPatternListCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List variable patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			patterns := cfg.Organization.VariablePatterns
			if len(patterns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No variable patterns defined. Run 'docman pattern add <name> --desc ...'.")
				return nil
			}

			names := make([]string, 0, len(patterns))
			for name := range patterns {
				names = append(names, name)
			}
			sort.Strings(names)

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Pattern", "Description", "Values"})
			width := reasonWidth(40)
			for _, name := range names {
				p := patterns[name]
				t.AppendRow(table.Row{"{" + name + "}", wrapString(p.Description, width), len(p.Values)})
			}
			t.Render()
			return nil
		},
	}
}

func newPatternShowCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a variable pattern and its values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			name := patternName(args[0])
			p := cfg.Organization.VariablePatterns[name]
			if p == nil {
				return errors.Wrapf(repoconfig.ErrUnknownPattern, "{%s}", name)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "{%s}: %s\n", name, p.Description)
			printPatternValues(cmd, p)
			return nil
		},
	}
}

func printPatternValues(cmd *cobra.Command, p *repoconfig.VariablePattern) {
	out := cmd.OutOrStdout()
	if len(p.Values) == 0 {
		fmt.Fprintln(out, "No values defined; any value is accepted.")
		return
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"Value", "Description", "Aliases"})
	for _, v := range p.Values {
		t.AppendRow(table.Row{v.Value, v.Description, strings.Join(v.Aliases, ", ")})
	}
	t.Render()
}

func newPatternRemoveCmd(load configLoader) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a variable pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			name := patternName(args[0])
			if cfg.Organization.VariablePatterns[name] == nil {
				return errors.Wrapf(repoconfig.ErrUnknownPattern, "{%s}", name)
			}

			ok, err := confirm(cmd, fmt.Sprintf("Remove pattern {%s}?", name), yes)
			if err != nil || !ok {
				return err
			}
			cfg.RemoveVariablePattern(name)
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed pattern {%s}\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newPatternValueCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value",
		Short: "Manage the known values of a variable pattern",
	}
	cmd.AddCommand(newPatternValueAddCmd(load))
	cmd.AddCommand(newPatternValueListCmd(load))
	cmd.AddCommand(newPatternValueRemoveCmd(load))
	return cmd
}

func newPatternValueAddCmd(load configLoader) *cobra.Command {
	var desc, aliasOf string

	cmd := &cobra.Command{
		Use:   "add <pattern> <value>",
		Short: "Add a known value, or an alias of one",
		Example: `  docman pattern value add company "Acme Corp." --desc "Current name"
  docman pattern value add company "Acme Inc" --alias-of "Acme Corp."`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.AddPatternValue(args[0], args[1], desc, aliasOf); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			if aliasOf != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Added alias %q for %q\n", args[1], aliasOf)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added value %q to {%s}\n", args[1], patternName(args[0]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "value description")
	cmd.Flags().StringVar(&aliasOf, "alias-of", "", "record the value as an alias of this canonical value")
	return cmd
}

func newPatternValueListCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list <pattern>",
		Short: "List the known values of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			name := patternName(args[0])
			p := cfg.Organization.VariablePatterns[name]
			if p == nil {
				return errors.Wrapf(repoconfig.ErrUnknownPattern, "{%s}", name)
			}
			printPatternValues(cmd, p)
			return nil
		},
	}
}

func newPatternValueRemoveCmd(load configLoader) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <pattern> <value>",
		Short: "Remove a value with its aliases, or a single alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ok, err := confirm(cmd, fmt.Sprintf("Remove %q from {%s}?", args[1], patternName(args[0])), yes)
			if err != nil || !ok {
				return err
			}
			alias, err := cfg.RemovePatternValue(args[0], args[1])
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			kind := "value"
			if alias {
				kind = "alias"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %q\n", kind, args[1])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
