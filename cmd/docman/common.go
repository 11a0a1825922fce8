package main

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/config"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/extract"
	"github.com/docman-dev/docman/internal/llm"
	"github.com/docman-dev/docman/internal/repository"
	"github.com/docman-dev/docman/internal/usecase"
)

func openDatabase() (*database.Context, func(), error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, nil, err
	}
	return dbCtx, func() {
		_ = database.CloseDatabase(dbCtx)
	}, nil
}

// targetFromArgs resolves the optional path argument to a target.
func targetFromArgs(args []string, recursive bool) (usecase.Target, error) {
	p := "."
	if len(args) > 0 {
		p = args[0]
	}
	return usecase.ResolveTarget(p, recursive)
}

// scopeFromArgs targets the whole enclosing repository when no path is
// given, and the path otherwise.
func scopeFromArgs(args []string, recursive bool) (usecase.Target, error) {
	if len(args) == 0 {
		root, err := repository.Resolve(".")
		if err != nil {
			return usecase.Target{}, err
		}
		return usecase.WholeRepository(root), nil
	}
	return usecase.ResolveTarget(args[0], recursive)
}

// repositoryFromArgs resolves the enclosing repository root of the optional path argument.
func repositoryFromArgs(args []string) (string, error) {
	p := "."
	if len(args) > 0 {
		p = args[0]
	}
	return repository.Resolve(p)
}

func useCaseOptions(settings config.Settings) []usecase.Option {
	return []usecase.Option{
		usecase.WithWorkers(settings.Workers),
		usecase.WithLLMConcurrency(settings.LLMConcurrency),
		usecase.WithModelName(settings.Model),
	}
}

func newExtractor(settings config.Settings) *extract.Registry {
	return extract.New(extract.WithMaxFileSize(settings.MaxFileSize))
}

// newSuggester builds the Anthropic client. The API key may come from the
// environment, a .env file in the repository metadata directory or one in
// the working directory.
func newSuggester(root string, settings config.Settings) (*llm.AnthropicSuggester, error) {
	if err := config.LoadEnvFiles(
		filepath.Join(repository.MetadataDir(root), ".env"),
		".env",
	); err != nil {
		return nil, err
	}

	apiKey := config.APIKey()
	if apiKey == "" {
		return nil, errors.Wrapf(llm.ErrMissingAPIKey, "set %s", config.APIKeyEnv)
	}
	return llm.NewAnthropicSuggester(apiKey,
		llm.WithModel(settings.Model),
		llm.WithMaxTokens(int64(settings.MaxTokens)),
		llm.WithTimeout(settings.LLMTimeout),
	)
}

// confirm asks a yes/no question on the command's input. yes skips the prompt.
func confirm(cmd *cobra.Command, question string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
