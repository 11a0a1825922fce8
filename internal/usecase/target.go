package usecase

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/repository"
	"github.com/docman-dev/docman/internal/services"
)

// Target selects the part of a repository a command works on.
type Target struct {
	Root      string
	Start     string
	Recursive bool

	rel string
}

// NewTarget builds a target for start inside root. An empty start means
// the whole repository.
func NewTarget(root, start string, recursive bool) (Target, error) {
	if start == "" {
		start = root
	}
	rel, err := filesystem.ToRelative(root, start)
	if err != nil {
		return Target{}, err
	}
	return Target{Root: root, Start: start, Recursive: recursive, rel: rel}, nil
}

// WholeRepository targets every file under root.
func WholeRepository(root string) Target {
	return Target{Root: root, Start: root, Recursive: true, rel: "."}
}

// ResolveTarget finds the repository containing p and targets p inside it.
func ResolveTarget(p string, recursive bool) (Target, error) {
	if p == "" {
		p = "."
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return Target{}, errors.Wrapf(err, "resolve %s", p)
	}
	if _, err := os.Stat(abs); err != nil {
		return Target{}, errors.Wrapf(err, "path %s", p)
	}
	root, err := repository.Resolve(abs)
	if err != nil {
		return Target{}, err
	}
	return NewTarget(root, abs, recursive)
}

// Whole reports whether the target covers the entire repository.
func (t Target) Whole() bool {
	return t.rel == "." && t.Recursive
}

// Contains reports whether the repository-relative path rel is selected.
func (t Target) Contains(rel string) bool {
	if t.rel == "." || t.rel == "" {
		return t.Recursive || !strings.Contains(rel, "/")
	}
	if rel == t.rel {
		return true
	}
	if t.Recursive {
		return strings.HasPrefix(rel, t.rel+"/")
	}
	return path.Dir(rel) == t.rel
}

func (t Target) filterCopies(copies []database.CopyRecord) []database.CopyRecord {
	out := make([]database.CopyRecord, 0, len(copies))
	for _, c := range copies {
		if t.Contains(c.FilePath) {
			out = append(out, c)
		}
	}
	return out
}

func (t Target) filterPending(ops []database.PendingOperation) []database.PendingOperation {
	out := make([]database.PendingOperation, 0, len(ops))
	for _, op := range ops {
		if t.Contains(op.FilePath) {
			out = append(out, op)
		}
	}
	return out
}

// cleanupOrphans removes copies whose files are gone. Every stored copy of
// the repository is checked on disk, so copies outside a narrower target or
// in places discovery skips survive while their files exist.
func cleanupOrphans(ctx context.Context, copies *services.CopyService, root string) ([]database.CopyRecord, error) {
	return copies.CleanupOrphaned(ctx, root, func(filePath string) bool {
		return filesystem.IsMissing(filesystem.FromRelative(root, filePath))
	})
}
