package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Laisky/errors/v2"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	return content
}

func TestMoveFileCreatesParents(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.pdf")
	writeFile(t, src, "invoice")

	dst := filepath.Join(root, "finance", "invoices", "2024", "acme-invoice.pdf")
	final, err := MoveFile(src, dst, Skip)
	if err != nil {
		t.Fatalf("MoveFile error: %v", err)
	}
	if final != dst {
		t.Fatalf("expected final path %s, got %s", dst, final)
	}
	if FileExists(src) {
		t.Fatalf("source should be gone after move")
	}
	if got := readFile(t, dst); got != "invoice" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestMoveFileOntoItself(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "finance", "a.pdf")
	writeFile(t, src, "same")

	final, err := MoveFile(src, filepath.Join(root, "finance", ".", "a.pdf"), Skip)
	if err != nil {
		t.Fatalf("MoveFile error: %v", err)
	}
	if final != src {
		t.Fatalf("expected %s, got %s", src, final)
	}
	if got := readFile(t, src); got != "same" {
		t.Fatalf("file should be untouched, got %q", got)
	}
}

func TestMoveFileConflictPolicies(t *testing.T) {
	root := t.TempDir()
	dst := filepath.Join(root, "file.pdf")
	writeFile(t, dst, "existing")

	src := filepath.Join(root, "incoming", "one.pdf")
	writeFile(t, src, "one")

	_, err := MoveFile(src, dst, Skip)
	var conflict *FileConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected FileConflictError, got %v", err)
	}
	if conflict.Target != dst {
		t.Fatalf("unexpected conflict target %s", conflict.Target)
	}
	if !FileExists(src) {
		t.Fatalf("skip must leave the source in place")
	}

	final, err := MoveFile(src, dst, Rename)
	if err != nil {
		t.Fatalf("MoveFile rename error: %v", err)
	}
	if final != filepath.Join(root, "file_1.pdf") {
		t.Fatalf("expected file_1.pdf, got %s", final)
	}

	second := filepath.Join(root, "incoming", "two.pdf")
	writeFile(t, second, "two")
	final, err = MoveFile(second, dst, Rename)
	if err != nil {
		t.Fatalf("MoveFile rename error: %v", err)
	}
	if final != filepath.Join(root, "file_2.pdf") {
		t.Fatalf("expected file_2.pdf, got %s", final)
	}

	third := filepath.Join(root, "incoming", "three.pdf")
	writeFile(t, third, "three")
	if _, err := MoveFile(third, dst, Overwrite); err != nil {
		t.Fatalf("MoveFile overwrite error: %v", err)
	}
	if got := readFile(t, dst); got != "three" {
		t.Fatalf("expected overwritten content, got %q", got)
	}
	if got := readFile(t, filepath.Join(root, "file_1.pdf")); got != "one" {
		t.Fatalf("renamed file changed: %q", got)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	root := t.TempDir()
	_, err := MoveFile(filepath.Join(root, "nope.pdf"), filepath.Join(root, "x.pdf"), Skip)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestParseConflictPolicy(t *testing.T) {
	cases := map[string]ConflictPolicy{"": Skip, "skip": Skip, "Overwrite": Overwrite, " rename ": Rename}
	for input, want := range cases {
		got, err := ParseConflictPolicy(input)
		if err != nil {
			t.Fatalf("ParseConflictPolicy(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseConflictPolicy(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseConflictPolicy("merge"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestStatAndDelete(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "12345")

	fp, err := Stat(path)
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if fp.Size != 5 || fp.MTime == 0 {
		t.Fatalf("unexpected fingerprint %+v", fp)
	}
	if _, err := Stat(root); err == nil {
		t.Fatalf("expected error for directory")
	}

	if err := DeleteFile(path); err != nil {
		t.Fatalf("DeleteFile error: %v", err)
	}
	if FileExists(path) {
		t.Fatalf("file should be deleted")
	}
	if err := DeleteFile(path); err != nil {
		t.Fatalf("DeleteFile on missing file should succeed: %v", err)
	}
}
