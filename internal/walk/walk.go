// Package walk enumerates and reads the source files of a tree concurrently.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// Options controls which files are visited.
type Options struct {
	// Pattern is matched against the walked path (root joined with the
	// relative path). A nil pattern matches every file.
	Pattern *regexp.Regexp

	// Exclude lists directory base names that are not descended into.
	Exclude []string

	// Concurrency bounds the number of files read at once. Zero means unbounded.
	Concurrency int

	// SkipBinary skips files whose content is not detected as text.
	SkipBinary bool
}

// FileFunc receives the content of one file. It may be called concurrently.
type FileFunc func(ctx context.Context, path string, content []byte) error

// FileError annotates an error with the file that caused it.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to process file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Walk calls fn for every matching regular file under root. Symbolic links
// to regular files are followed. The first error returned by fn or by file
// reading cancels the walk and is returned wrapped in a *FileError; files
// already being processed run to completion.
func Walk(ctx context.Context, root string, opts Options, fn FileFunc) error {
	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, name := range opts.Exclude {
		if name != "" {
			exclude[name] = struct{}{}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if _, ok := exclude[d.Name()]; ok && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		if opts.Pattern != nil && !opts.Pattern.MatchString(path) {
			return nil
		}

		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return &FileError{Path: path, Err: err}
			}
			if opts.SkipBinary && !IsText(content) {
				return nil
			}
			if err := fn(ctx, path, content); err != nil {
				return &FileError{Path: path, Err: err}
			}
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsText reports whether content is detected as some kind of text.
func IsText(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
