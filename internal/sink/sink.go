// Package sink provides destinations for the generated document.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// OutputSink receives a finished document. Nothing is written until the
// whole document is available, so a failed run leaves no partial output.
type OutputSink interface {
	// WriteFile stores content under name, a clean relative slash path.
	WriteFile(ctx context.Context, name string, content []byte) error
}

// ForPath splits an output file path into a filesystem sink rooted at its
// directory and the name to write within it.
func ForPath(output string) (*FilesystemSink, string) {
	return NewFilesystemSink(filepath.Dir(output)), filepath.Base(output)
}

// FilesystemSink writes documents below a root directory.
type FilesystemSink struct {
	// Root is created on demand.
	Root string

	// Mode is the permission of written files (default 0644).
	Mode os.FileMode
}

// NewFilesystemSink creates a sink writing below root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644}
}

// WriteFile creates missing parent directories and replaces the file
// atomically through a temporary file in the same directory.
func (s *FilesystemSink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(name))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, ".apidoc-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpPath)

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("replace %s: %w", fullPath, err)
	}
	return nil
}

// MemorySink keeps documents in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content.
func (s *MemorySink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), content...)
	return nil
}

// Get returns a copy of the named document, or nil.
func (s *MemorySink) Get(name string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[name]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Len returns the number of stored documents.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// ValidatePath checks that name is relative, clean, slash separated and does
// not escape the sink root.
func ValidatePath(name string) error {
	if name == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return errors.New("absolute paths not allowed")
	}
	if len(name) >= 2 && name[1] == ':' {
		return errors.New("absolute paths not allowed")
	}
	slashed := filepath.ToSlash(name)
	if slashed == ".." || strings.HasPrefix(slashed, "../") || strings.Contains(slashed, "/../") || strings.HasSuffix(slashed, "/..") {
		return errors.New("path traversal not allowed")
	}
	if cleaned := filepath.ToSlash(filepath.Clean(name)); cleaned != slashed {
		return fmt.Errorf("path is not clean (expected %q)", cleaned)
	}
	return nil
}
