package filesystem

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
)

// ErrInvalidPath is returned when a suggested destination is unsafe.
var ErrInvalidPath = errors.New("invalid target path")

const reservedChars = `<>:"|?*`

// ValidateTarget checks a suggested directory and filename and returns the
// slash-separated path relative to root. The result never leaves root.
func ValidateTarget(root, dir, filename string) (string, error) {
	if err := checkComponent("directory", dir); err != nil {
		return "", err
	}
	if err := checkComponent("filename", filename); err != nil {
		return "", err
	}
	if strings.TrimSpace(filename) == "" {
		return "", errors.Wrap(ErrInvalidPath, "filename is empty")
	}
	if strings.ContainsAny(filename, `/\`) {
		return "", errors.Wrapf(ErrInvalidPath, "filename %q contains a path separator", filename)
	}
	if filename == "." || filename == ".." {
		return "", errors.Wrapf(ErrInvalidPath, "filename %q", filename)
	}

	dir = strings.ReplaceAll(dir, `\`, "/")
	if strings.HasPrefix(dir, "/") || filepath.IsAbs(dir) {
		return "", errors.Wrapf(ErrInvalidPath, "directory %q is absolute", dir)
	}
	for _, segment := range strings.Split(dir, "/") {
		if segment == ".." {
			return "", errors.Wrapf(ErrInvalidPath, "directory %q escapes the repository", dir)
		}
	}

	rel := path.Clean(strings.Trim(dir, "/") + "/" + filename)
	rel = strings.TrimPrefix(rel, "/")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrap(err, "resolve repository root")
	}
	full := filepath.Join(absRoot, filepath.FromSlash(rel))
	within, err := filepath.Rel(absRoot, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrInvalidPath, "%q resolves outside the repository", rel)
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", errors.Wrap(err, "resolve repository root")
	}
	realFull, err := resolveExisting(full)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", rel)
	}
	within, err = filepath.Rel(realRoot, realFull)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrInvalidPath, "%q follows a symlink outside the repository", rel)
	}
	return rel, nil
}

// resolveExisting evaluates symlinks in the deepest existing ancestor of p
// and joins the not yet created remainder back on.
func resolveExisting(p string) (string, error) {
	existing := p
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	rest, err := filepath.Rel(existing, p)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, rest), nil
}

func checkComponent(name, value string) error {
	if strings.ContainsRune(value, 0) {
		return errors.Wrapf(ErrInvalidPath, "%s contains a null byte", name)
	}
	if strings.ContainsAny(value, reservedChars) {
		return errors.Wrapf(ErrInvalidPath, "%s %q contains a reserved character", name, value)
	}
	return nil
}

// ToRelative converts an absolute path under root into the slash-separated
// form stored on copies.
func ToRelative(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrInvalidPath, "%s is outside %s", abs, root)
	}
	return filepath.ToSlash(rel), nil
}

// FromRelative resolves a stored slash-separated path against root.
func FromRelative(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
