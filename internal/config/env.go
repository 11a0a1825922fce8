package config

import (
	"os"

	"github.com/Laisky/errors/v2"
	"github.com/joho/godotenv"
)

// APIKeyEnv is the environment variable holding the Anthropic API key.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// LoadEnvFiles loads each existing .env file in order. Variables that are
// already set are never overridden.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load env file `%s`", p)
		}
	}
	return nil
}

// APIKey returns the configured Anthropic API key, or "".
func APIKey() string {
	return os.Getenv(APIKeyEnv)
}
