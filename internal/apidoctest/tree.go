// Package apidoctest provides helpers for tests that need source trees on disk.
//
// Trees are written as txtar archives:
//
//	-- src/users.js --
//	// @api GET /users
//	function listUsers() {}
//	-- docs/api.md --
//	@api /users
package apidoctest

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// WriteTree materializes archive under dir, creating parent directories.
func WriteTree(t testing.TB, dir, archive string) {
	t.Helper()

	ar := txtar.Parse([]byte(archive))
	if len(ar.Files) == 0 {
		t.Fatalf("archive contains no files")
	}
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", f.Name, err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
}

// Tree writes archive into a fresh temporary directory and returns its path.
func Tree(t testing.TB, archive string) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, archive)
	return dir
}

// ReadFile returns the content of name under dir, failing the test on error.
func ReadFile(t testing.TB, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

// Archive parses archive and returns its files by name, for comparing
// generated output with expectations kept in the same txtar format.
func Archive(archive string) map[string]string {
	ar := txtar.Parse([]byte(archive))
	files := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		files[f.Name] = string(f.Data)
	}
	return files
}
