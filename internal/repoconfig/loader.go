package repoconfig

import (
	"os"
	"sync"

	"github.com/docman-dev/docman/internal/repository"
)

type fileStamp struct {
	exists bool
	size   int64
	mtime  int64
}

func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, size: info.Size(), mtime: info.ModTime().UnixNano()}
}

type loaderEntry struct {
	config       fileStamp
	instructions fileStamp
	cfg          *Config
}

// Loader memoizes Load per repository root. An entry is reused only while
// both config.yaml and instructions.md keep their size and mtime, so edits
// made between requests are picked up. A Loader belongs to one long-lived
// caller; the returned *Config is shared and must not be modified.
type Loader struct {
	mu      sync.Mutex
	entries map[string]loaderEntry
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{entries: make(map[string]loaderEntry)}
}

// Load returns the config of root, reading the files again when they changed.
func (l *Loader) Load(root string) (*Config, error) {
	configStamp := stampOf(repository.ConfigPath(root))
	instructionsStamp := stampOf(repository.InstructionsPath(root))

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[root]; ok && entry.config == configStamp && entry.instructions == instructionsStamp {
		return entry.cfg, nil
	}

	cfg, err := Load(root)
	if err != nil {
		return nil, err
	}
	l.entries[root] = loaderEntry{config: configStamp, instructions: instructionsStamp, cfg: cfg}
	return cfg, nil
}
