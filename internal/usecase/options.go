// Package usecase drives the scan, plan and review workflows over a docman
// repository.
package usecase

import (
	"time"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/google/uuid"

	"github.com/docman-dev/docman/internal/llm"
	"github.com/docman-dev/docman/internal/log"
	"github.com/docman-dev/docman/internal/repoconfig"
)

const (
	defaultWorkers        = 4
	defaultLLMConcurrency = 1
)

type options struct {
	logger         logSDK.Logger
	workers        int
	llmConcurrency int
	now            func() time.Time
	loadConfig     func(root string) (*repoconfig.Config, error)
	model          string
}

// Option configures a use case.
type Option func(*options)

// WithLogger sets the logger. Use cases default to a child of the shared logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkers sets how many files are extracted in parallel.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLLMConcurrency sets how many suggestions are requested in parallel.
func WithLLMConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.llmConcurrency = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConfigSource replaces repoconfig.Load, for example with a
// repoconfig.Loader shared by a long-running server.
func WithConfigSource(load func(root string) (*repoconfig.Config, error)) Option {
	return func(o *options) {
		if load != nil {
			o.loadConfig = load
		}
	}
}

// WithModelName sets the model used for prompt hashing when no suggester is
// available.
func WithModelName(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{
		workers:        defaultWorkers,
		llmConcurrency: defaultLLMConcurrency,
		now:            time.Now,
		loadConfig:     repoconfig.Load,
		model:          llm.DefaultModel,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Logger.Named(component)
	}
	return o
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
