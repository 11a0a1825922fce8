// Package llm requests organization suggestions from a language model.
package llm

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/docman"
)

var (
	// ErrInvalidSuggestion is returned when the model output cannot be used.
	ErrInvalidSuggestion = errors.New("invalid suggestion")
	// ErrMissingAPIKey is returned when no credential is configured.
	ErrMissingAPIKey = errors.New("anthropic API key is not set (export ANTHROPIC_API_KEY or add it to .env)")
)

// Request is one rendered prompt pair.
type Request struct {
	System string
	User   string
}

// Suggester proposes a destination for one document.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (docman.Suggestion, error)
	// Model names the model whose output Suggest returns. It is part of the
	// fingerprint of every stored suggestion.
	Model() string
}
