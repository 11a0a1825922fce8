package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/repoconfig"
	"github.com/docman-dev/docman/internal/repository"
)

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWrapString(t *testing.T) {
	require.Equal(t, "short", wrapString("  short  ", 10))
	require.Equal(t, "abcd\nefgh\nij", wrapString("abcdefghij", 4))
	require.Equal(t, "日本\n語", wrapString("日本語", 4))
	require.Equal(t, "unchanged", wrapString("unchanged", 0))
}

func TestParseOperationID(t *testing.T) {
	id, err := parseOperationID("42")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseOperationID(bad)
		require.Error(t, err, bad)
	}
}

func TestApplyFlagsPolicy(t *testing.T) {
	p, err := applyFlags{onConflict: "rename"}.policy()
	require.NoError(t, err)
	require.Equal(t, filesystem.Rename, p)

	p, err = applyFlags{onConflict: "skip", force: true}.policy()
	require.NoError(t, err)
	require.Equal(t, filesystem.Overwrite, p)

	_, err = applyFlags{onConflict: "sideways"}.policy()
	require.Error(t, err)
}

func TestConfirm(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.SetIn(strings.NewReader("y\n"))
	ok, err := confirm(cmd, "Proceed?", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, out.String(), "Proceed? [y/N]")

	cmd.SetIn(strings.NewReader("\n"))
	ok, err = confirm(cmd, "Proceed?", false)
	require.NoError(t, err)
	require.False(t, ok)

	cmd.SetIn(strings.NewReader(""))
	ok, err = confirm(cmd, "Proceed?", true)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, newInitCmd(), "", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Initialized docman repository")
	require.DirExists(t, repository.MetadataDir(dir))

	out, err = run(t, newInitCmd(), "", dir)
	require.NoError(t, err)
	require.Contains(t, out, "already exists")
}

func TestRepositorySettingsCommands(t *testing.T) {
	root := t.TempDir()
	_, err := repository.Init(root)
	require.NoError(t, err)

	_, err = run(t, newDefineCmd(), "", "Financial/{year}", "--desc", "By year", "--filename-convention", "{year}-{name}", "--path", root)
	require.NoError(t, err)

	_, err = run(t, newPatternCmd(), "", "add", "year", "--desc", "4-digit year", "--path", root)
	require.NoError(t, err)
	_, err = run(t, newPatternCmd(), "", "value", "add", "year", "2024", "--path", root)
	require.NoError(t, err)

	out, err := run(t, newPatternCmd(), "", "show", "{year}", "--path", root)
	require.NoError(t, err)
	require.Contains(t, out, "{year}: 4-digit year")
	require.Contains(t, out, "2024")

	instructions := filepath.Join(t.TempDir(), "rules.md")
	require.NoError(t, os.WriteFile(instructions, []byte("Keep invoices by year.\n"), 0o600))
	_, err = run(t, newConfigCmd(), "", "set-instructions", "--file", instructions, "--path", root)
	require.NoError(t, err)

	out, err = run(t, newConfigCmd(), "", "show-instructions", "--path", root)
	require.NoError(t, err)
	require.Equal(t, "Keep invoices by year.\n", out)

	out, err = run(t, newConfigCmd(), "", "list-dirs", "--path", root)
	require.NoError(t, err)
	require.Contains(t, out, "- Financial")
	require.Contains(t, out, "  - {year}: By year [filename: {year}-{name}]")

	_, err = run(t, newPatternCmd(), "", "remove", "year", "--path", root)
	require.NoError(t, err)
	cfg, err := repoconfig.Load(root)
	require.NoError(t, err)
	require.Contains(t, cfg.Organization.VariablePatterns, "year")

	_, err = run(t, newPatternCmd(), "", "remove", "year", "-y", "--path", root)
	require.NoError(t, err)
	cfg, err = repoconfig.Load(root)
	require.NoError(t, err)
	require.NotContains(t, cfg.Organization.VariablePatterns, "year")
}

func TestSetInstructionsNeedsOneSource(t *testing.T) {
	root := t.TempDir()
	_, err := repository.Init(root)
	require.NoError(t, err)

	_, err = run(t, newConfigCmd(), "", "set-instructions", "--path", root)
	require.Error(t, err)
}
