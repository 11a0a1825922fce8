// Package extract turns supported document files into plain text.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Laisky/errors/v2"
)

var (
	// ErrUnsupported is returned for extensions without an extractor.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrEmptyContent is returned when a file yields no text.
	ErrEmptyContent = errors.New("no text content extracted")
	// ErrTooLarge is returned for files above the configured size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// DefaultMaxFileSize is the size limit used when none is configured.
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// Extractor derives the text of one document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Func adapts a function to a per-format extractor.
type Func func(path string) (string, error)

// Registry dispatches extraction by file extension.
type Registry struct {
	maxFileSize int64
	byExt       map[string]Func
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxFileSize sets the size limit in bytes. Zero or negative disables it.
func WithMaxFileSize(n int64) Option {
	return func(r *Registry) {
		r.maxFileSize = n
	}
}

// WithFormat registers fn for the given extensions, replacing built-ins.
func WithFormat(fn Func, exts ...string) Option {
	return func(r *Registry) {
		for _, ext := range exts {
			r.byExt[strings.ToLower(ext)] = fn
		}
	}
}

// New returns a Registry with every built-in format.
func New(opts ...Option) *Registry {
	r := &Registry{
		maxFileSize: DefaultMaxFileSize,
		byExt: map[string]Func{
			".txt":  extractText,
			".md":   extractText,
			".html": extractHTML,
			".htm":  extractHTML,
			".pdf":  extractPDF,
			".docx": extractDOCX,
			".pptx": extractPPTX,
			".xlsx": extractXLSX,
			".doc":  extractLegacy,
			".ppt":  extractLegacy,
			".xls":  extractLegacy,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract returns the text of path. Whitespace-only results are reported as
// ErrEmptyContent and invalid UTF-8 is replaced.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fn, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", errors.Wrapf(ErrUnsupported, "%s", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", path)
	}
	if r.maxFileSize > 0 && info.Size() > r.maxFileSize {
		return "", errors.Wrapf(ErrTooLarge, "%s is %d bytes, limit %d", filepath.Base(path), info.Size(), r.maxFileSize)
	}

	text, err := fn(path)
	if err != nil {
		return "", errors.Wrapf(err, "extract %s", filepath.Base(path))
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrapf(ErrEmptyContent, "%s", filepath.Base(path))
	}
	return text, nil
}
