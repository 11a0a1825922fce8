// Package repository locates docman repositories and discovers the documents
// inside them.
package repository

import (
	"os"
	"path/filepath"

	"github.com/Laisky/errors/v2"
)

const (
	// DirName is the per-repository metadata directory.
	DirName = ".docman"
	// ConfigFile holds folder definitions and variable patterns.
	ConfigFile = "config.yaml"
	// InstructionsFile holds free-form organization instructions.
	InstructionsFile = "instructions.md"
)

var (
	// ErrNotRepository is returned when no .docman directory is found.
	ErrNotRepository = errors.New("not in a docman repository (run 'docman init' to create one)")
	// ErrMissingConfig is returned when .docman exists without config.yaml.
	ErrMissingConfig = errors.New("invalid docman repository: missing .docman/config.yaml")
	// ErrAlreadyInitialized is returned by Init when .docman already exists.
	ErrAlreadyInitialized = errors.New("docman repository already exists")
)

// MetadataDir returns the .docman directory of root.
func MetadataDir(root string) string {
	return filepath.Join(root, DirName)
}

// ConfigPath returns the path of the repository config file.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, ConfigFile)
}

// InstructionsPath returns the path of the repository instructions file.
func InstructionsPath(root string) string {
	return filepath.Join(root, DirName, InstructionsFile)
}

// FindRoot walks up from start until it finds a directory containing .docman.
// An empty start means the current working directory.
func FindRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "get working directory")
		}
		start = wd
	}

	current, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", start)
	}
	if info, err := os.Stat(current); err == nil && !info.IsDir() {
		current = filepath.Dir(current)
	}

	for {
		if info, err := os.Stat(MetadataDir(current)); err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotRepository
		}
		current = parent
	}
}

// Validate checks that root is a configured repository.
func Validate(root string) error {
	info, err := os.Stat(MetadataDir(root))
	if err != nil || !info.IsDir() {
		return ErrNotRepository
	}
	if _, err := os.Stat(ConfigPath(root)); err != nil {
		return errors.Wrapf(ErrMissingConfig, "%s", root)
	}
	return nil
}

// Resolve finds and validates the repository containing start.
func Resolve(start string) (string, error) {
	root, err := FindRoot(start)
	if err != nil {
		return "", err
	}
	if err := Validate(root); err != nil {
		return "", err
	}
	return root, nil
}

// Init creates .docman with an empty config.yaml inside dir.
func Init(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, "directory %s", dir)
	}
	if !info.IsDir() {
		return "", errors.Errorf("%s is not a directory", dir)
	}

	meta := MetadataDir(abs)
	if _, err := os.Stat(meta); err == nil {
		return meta, errors.Wrapf(ErrAlreadyInitialized, "%s", meta)
	}

	if err := os.MkdirAll(meta, 0o750); err != nil {
		return "", errors.Wrapf(err, "create %s", meta)
	}
	if err := os.WriteFile(ConfigPath(abs), nil, 0o600); err != nil {
		return "", errors.Wrapf(err, "create %s", ConfigPath(abs))
	}
	return meta, nil
}
