package repository

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"
)

var supportedExtensions = map[string]struct{}{
	".pdf": {}, ".docx": {}, ".doc": {}, ".pptx": {}, ".ppt": {}, ".xlsx": {}, ".xls": {},
	".txt": {}, ".md": {}, ".html": {}, ".htm": {},
}

var excludedDirs = map[string]struct{}{
	".docman": {}, ".git": {}, ".svn": {}, ".hg": {}, "__pycache__": {}, "node_modules": {},
	".venv": {}, "venv": {}, ".env": {}, ".tox": {}, "dist": {}, "build": {},
	".pytest_cache": {}, ".mypy_cache": {}, ".ruff_cache": {},
}

// IsSupported reports whether name has a document extension docman handles.
func IsSupported(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsExcludedDir reports whether a directory with this base name is skipped.
func IsExcludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

// Discover returns the supported files under start as sorted, slash-separated
// paths relative to root. start may be a file, in which case it is returned
// alone when supported. Without recursive only the direct children of start
// are listed.
func Discover(root, start string, recursive bool) ([]string, error) {
	if start == "" {
		start = root
	}

	info, err := os.Stat(start)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", start)
	}
	if !info.IsDir() {
		if !IsSupported(start) {
			return nil, nil
		}
		rel, err := relative(root, start)
		if err != nil {
			return nil, err
		}
		return []string{rel}, nil
	}

	var files []string
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path == start {
				return nil
			}
			if !recursive || IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() || !IsSupported(d.Name()) {
			return nil
		}
		rel, err := relative(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", start)
	}

	sort.Strings(files)
	return files, nil
}

// DirectoryStructure lists every non-excluded directory under root as a
// markdown list ("- /a", "- /a/b"), sorted. It is empty when root has no
// subdirectories.
func DirectoryStructure(root string) (string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if IsExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		rel, err := relative(root, path)
		if err != nil {
			return err
		}
		dirs = append(dirs, "/"+rel)
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "walk %s", root)
	}

	sort.Strings(dirs)
	lines := make([]string, 0, len(dirs))
	for _, d := range dirs {
		lines = append(lines, "- "+d)
	}
	return strings.Join(lines, "\n"), nil
}

func relative(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", errors.Wrapf(err, "relative path of %s", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("%s is outside the repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}
