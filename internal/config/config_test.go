package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gconfig "github.com/Laisky/go-config/v2"
)

func TestGetDocmanDirWithExplicitEnv(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(tmpDir, "custom")

	t.Setenv("DOCMAN_DIR", customDir)
	t.Setenv("XDG_DATA_HOME", "")

	got := GetDocmanDir()
	if got != customDir {
		t.Fatalf("expected %q, got %q", customDir, got)
	}
}

func TestGetDocmanDirFallsBackToXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := filepath.Join(tmpDir, "xdg")

	t.Setenv("DOCMAN_DIR", "")
	t.Setenv("XDG_DATA_HOME", xdgDir)

	got := GetDocmanDir()
	want := filepath.Join(xdgDir, "docman")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DOCMAN_DIR", tmpDir)

	if got, want := GetDBPath(), filepath.Join(tmpDir, "docman.db"); got != want {
		t.Fatalf("GetDBPath expected %q, got %q", want, got)
	}
}

func TestGetSettingsPathUsesConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got, want := GetSettingsPath(), filepath.Join(tmpDir, "docman", "config.yaml"); got != want {
		t.Fatalf("GetSettingsPath expected %q, got %q", want, got)
	}
}

func TestCurrentSettingsOverrides(t *testing.T) {
	gconfig.Shared.Set(KeyModel, "claude-test")
	gconfig.Shared.Set(KeyWorkers, 8)
	gconfig.Shared.Set(KeyLLMTimeout, "5s")
	t.Cleanup(func() {
		gconfig.Shared.Set(KeyModel, "")
		gconfig.Shared.Set(KeyWorkers, 0)
		gconfig.Shared.Set(KeyLLMTimeout, "")
	})

	s := CurrentSettings()
	if s.Model != "claude-test" {
		t.Fatalf("expected model override, got %q", s.Model)
	}
	if s.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", s.Workers)
	}
	if s.LLMTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", s.LLMTimeout)
	}
	if s.MaxTokens != DefaultSettings().MaxTokens {
		t.Fatalf("expected default max tokens, got %d", s.MaxTokens)
	}
}

func TestLoadSettingsFileMissingIsFine(t *testing.T) {
	if err := LoadSettingsFile(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte(APIKeyEnv+"=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv(APIKeyEnv, "from-env")
	if err := LoadEnvFiles(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := APIKey(); got != "from-env" {
		t.Fatalf("expected existing value to win, got %q", got)
	}
}
