package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// Setting keys. Keys that double as root CLI flags share the flag name.
const (
	KeyConfig         = "config"
	KeyLogLevel       = "log-level"
	KeyDebug          = "debug"
	KeyModel          = "model"
	KeyMaxTokens      = "max-tokens"
	KeyLLMTimeout     = "llm-timeout"
	KeyWorkers        = "workers"
	KeyLLMConcurrency = "llm-concurrency"
	KeyMaxFileSizeMB  = "max-file-size-mb"
)

// Settings holds the application-wide tunables used by scan and plan.
type Settings struct {
	Model          string
	MaxTokens      int
	LLMTimeout     time.Duration
	Workers        int
	LLMConcurrency int
	MaxFileSize    int64
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Model:          "claude-sonnet-4-5",
		MaxTokens:      1024,
		LLMTimeout:     60 * time.Second,
		Workers:        4,
		LLMConcurrency: 1,
		MaxFileSize:    50 << 20,
	}
}

// LoadSettingsFile merges the settings file at path into the shared config.
// A missing file is not an error.
func LoadSettingsFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat settings file `%s`", path)
	}

	gconfig.Shared.Set("cfg_dir", filepath.Dir(path))
	if err := gconfig.Shared.LoadFromFile(path); err != nil {
		return errors.Wrapf(err, "load settings file `%s`", path)
	}
	return nil
}

// CurrentSettings reads the shared config, falling back to defaults for
// anything unset or invalid.
func CurrentSettings() Settings {
	s := DefaultSettings()

	if v := gconfig.Shared.GetString(KeyModel); v != "" {
		s.Model = v
	}
	if v := gconfig.Shared.GetInt(KeyMaxTokens); v > 0 {
		s.MaxTokens = v
	}
	if v := gconfig.Shared.GetString(KeyLLMTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			s.LLMTimeout = d
		}
	}
	if v := gconfig.Shared.GetInt(KeyWorkers); v > 0 {
		s.Workers = v
	}
	if v := gconfig.Shared.GetInt(KeyLLMConcurrency); v > 0 {
		s.LLMConcurrency = v
	}
	if v := gconfig.Shared.GetInt(KeyMaxFileSizeMB); v > 0 {
		s.MaxFileSize = int64(v) << 20
	}

	return s
}
