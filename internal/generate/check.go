package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/broady/apidoc/internal/config"
)

// StaleError reports a generated document that differs from what the
// sources and template produce now.
type StaleError struct {
	Output string
	Diff   string // unified diff from the file on disk to the expected content
}

func (e *StaleError) Error() string {
	if e.Diff == "" {
		return fmt.Sprintf("%s does not exist; run apidoc gen", e.Output)
	}
	return fmt.Sprintf("%s is out of date; run apidoc gen", e.Output)
}

// Check builds the document without writing it and compares it with the
// output file on disk. It returns a *StaleError when they differ.
func Check(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Result, error) {
	logger = orDefault(logger)

	res, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	current, err := os.ReadFile(cfg.Output)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &StaleError{Output: cfg.Output}
	}
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	want := res.Content()
	if bytes.Equal(current, want) {
		logger.InfoContext(ctx, "documentation up to date", slog.String("output", cfg.Output))
		return res, nil
	}

	diff, err := Diff(cfg.Output, current, want)
	if err != nil {
		return nil, err
	}
	return nil, &StaleError{Output: cfg.Output, Diff: diff}
}

// Diff returns a unified diff between the old and new content of name.
func Diff(name string, old, new []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(new)),
		FromFile: name,
		ToFile:   name + " (generated)",
		Context:  3,
	})
}
