package main

import (
	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/config"
	"github.com/docman-dev/docman/internal/log"
)

var rootCmd = &cobra.Command{
	Use:               "docman",
	Short:             "docman - organize documents with suggested moves you review",
	Long:              "docman tracks the documents of a repository, asks a model where each one belongs and applies the moves you accept.",
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
}

func initialize(cmd *cobra.Command, _ []string) error {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	if err := config.LoadSettingsFile(gconfig.Shared.GetString(config.KeyConfig)); err != nil {
		return err
	}

	lvl := gconfig.Shared.GetString(config.KeyLogLevel)
	if gconfig.Shared.GetBool(config.KeyDebug) {
		lvl = "debug"
	}
	if err := log.SetLevel(lvl); err != nil {
		return errors.Wrapf(err, "change log level to %q", lvl)
	}
	return nil
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringP(config.KeyConfig, "c", config.GetSettingsPath(), "settings file path")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "warn", "`debug/info/warn/error`")
	rootCmd.PersistentFlags().Bool(config.KeyDebug, false, "enable debug logging")
	rootCmd.PersistentFlags().String(config.KeyModel, config.DefaultSettings().Model, "suggestion model")
	rootCmd.PersistentFlags().Int(config.KeyWorkers, config.DefaultSettings().Workers, "files extracted in parallel")
	rootCmd.PersistentFlags().Int(config.KeyLLMConcurrency, config.DefaultSettings().LLMConcurrency, "suggestions requested in parallel")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newUnmarkCmd())
	rootCmd.AddCommand(newIgnoreCmd())
	rootCmd.AddCommand(newDedupeCmd())
	rootCmd.AddCommand(newDefineCmd())
	rootCmd.AddCommand(newPatternCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDebugPromptCmd())
	rootCmd.AddCommand(newMCPCmd())
}
