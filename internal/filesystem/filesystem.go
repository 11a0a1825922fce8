// Package filesystem moves, inspects and removes the files docman tracks.
package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

// ErrSourceNotFound is returned when the file to move does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// ConflictPolicy tells MoveFile what to do when the destination exists.
type ConflictPolicy int

const (
	// Skip refuses the move and returns a *FileConflictError.
	Skip ConflictPolicy = iota
	// Overwrite replaces the existing destination.
	Overwrite
	// Rename appends _1, _2, ... to the stem until a free name is found.
	Rename
)

func (p ConflictPolicy) String() string {
	switch p {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case Rename:
		return "rename"
	default:
		return "ConflictPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseConflictPolicy parses skip, overwrite or rename.
func ParseConflictPolicy(value string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "skip":
		return Skip, nil
	case "overwrite":
		return Overwrite, nil
	case "rename":
		return Rename, nil
	default:
		return Skip, errors.Errorf("unknown conflict policy %q (want skip, overwrite or rename)", value)
	}
}

// FileConflictError reports a destination that is already occupied.
type FileConflictError struct {
	Source string
	Target string
}

func (e *FileConflictError) Error() string {
	return "target already exists: " + e.Target
}

// Fingerprint is the cheap staleness signal of a file.
type Fingerprint struct {
	Size  int64
	MTime int64
}

// Stat returns the size and modification time (unix nanoseconds) of path.
func Stat(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	if info.IsDir() {
		return Fingerprint{}, errors.Errorf("%s is a directory", path)
	}
	return Fingerprint{Size: info.Size(), MTime: info.ModTime().UnixNano()}, nil
}

// MoveFile moves src to dst under policy and returns the path actually written.
// Moving a file onto itself is a no-op.
func MoveFile(src, dst string, policy ConflictPolicy) (string, error) {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrSourceNotFound, "%s", src)
		}
		return "", err
	}
	if info.IsDir() {
		return "", errors.Errorf("%s is a directory", src)
	}

	if src == dst {
		return dst, nil
	}

	if FileExists(dst) {
		switch policy {
		case Skip:
			return "", &FileConflictError{Source: src, Target: dst}
		case Rename:
			dst, err = nextFreeName(dst)
			if err != nil {
				return "", err
			}
		case Overwrite:
		default:
			return "", errors.Errorf("unknown conflict policy %d", int(policy))
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", errors.Wrapf(err, "create directory for %s", dst)
	}

	if err := os.Rename(src, dst); err != nil {
		if err := copyAndRemove(src, dst, info.Mode().Perm()); err != nil {
			return "", errors.Wrapf(err, "move %s to %s", src, dst)
		}
	}
	return dst, nil
}

func nextFreeName(path string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
		if !FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", errors.Errorf("no free name for %s", path)
}

func copyAndRemove(src, dst string, perm os.FileMode) error {
	//nolint:gosec // G304: src is a tracked file inside the repository
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	//nolint:gosec // G304: dst was validated against the repository root
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// ReadFile reads a file from disk and returns its contents as a string.
func ReadFile(path string) (string, error) {
	//nolint:gosec // G304: path comes from repository discovery
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// DeleteFile removes a file if it exists.
func DeleteFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.Remove(path)
}

// IsMissing reports whether path is confirmed absent. Other stat errors,
// such as a permission failure, do not count as absence.
func IsMissing(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// FileExists reports whether the given path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
