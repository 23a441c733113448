// Package generate runs a documentation build: source extraction, template
// expansion, manifest validation and output.
//
// The phases are strictly sequential. Extraction scans files concurrently and
// ends at a barrier where the registry is sealed; any failed file aborts the
// run there. Nothing is written unless every phase succeeded.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/broady/apidoc"
	"github.com/broady/apidoc/internal/config"
	"github.com/broady/apidoc/internal/expand"
	"github.com/broady/apidoc/internal/extract"
	"github.com/broady/apidoc/internal/manifest"
	"github.com/broady/apidoc/internal/sink"
	"github.com/broady/apidoc/internal/walk"
)

// Result is the outcome of a successful build.
type Result struct {
	Registry *apidoc.Registry
	Files    int      // files scanned
	Lines    []string // expanded document, banner included
}

// Content returns the document text.
func (r *Result) Content() []byte {
	return expand.Render(r.Lines)
}

// Extract scans the source tree described by cfg and returns the sealed
// registry and the number of files scanned. Files that fail to parse are
// merged into a single *apidoc.ExtractionError.
func Extract(ctx context.Context, cfg config.Config, logger *slog.Logger) (*apidoc.Registry, int, error) {
	logger = orDefault(logger)

	pattern, err := cfg.CompilePattern()
	if err != nil {
		return nil, 0, err
	}

	reg := apidoc.NewRegistry()
	var (
		mu     sync.Mutex
		files  int
		failed []*apidoc.ParseError
	)

	start := time.Now()
	opts := walk.Options{
		Pattern:     pattern,
		Exclude:     cfg.Exclude,
		Concurrency: cfg.Concurrency,
		SkipBinary:  !cfg.IncludeBinary,
	}
	err = walk.Walk(ctx, cfg.Dir, opts, func(ctx context.Context, path string, content []byte) error {
		text := string(content)

		mu.Lock()
		files++
		mu.Unlock()

		if !extract.HasDeclarations(text) {
			return nil
		}

		eps, err := extract.File(path, text)
		if addErr := reg.Add(eps...); addErr != nil {
			return addErr
		}
		logger.DebugContext(ctx, "scanned file",
			slog.String("file", path),
			slog.Int("endpoints", len(eps)),
		)
		if err == nil {
			return nil
		}

		var pe *apidoc.ParseError
		if !errors.As(err, &pe) {
			return err
		}
		mu.Lock()
		failed = append(failed, pe)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, files, err
	}

	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i].File < failed[j].File })
		return nil, files, &apidoc.ExtractionError{Files: failed}
	}

	reg.Seal()
	logger.InfoContext(ctx, "extracted endpoints",
		slog.Int("files", files),
		slog.Int("endpoints", reg.Len()),
		slog.Duration("duration", time.Since(start)),
	)
	return reg, files, nil
}

// Build runs every phase except writing: extraction, expansion of the
// template and, when configured, the manifest check.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Result, error) {
	logger = orDefault(logger)

	reg, files, err := Extract(ctx, cfg, logger)
	if err != nil {
		return nil, report(ctx, logger, err)
	}

	template, err := os.ReadFile(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	lines, err := expand.Expand(string(template), reg, expand.Options{
		OutputDir:    cfg.LinkDir(),
		TemplatePath: cfg.Template,
	})
	if err != nil {
		return nil, report(ctx, logger, err)
	}

	if cfg.Manifest != "" {
		expected, err := manifest.Load(cfg.Manifest)
		if err != nil {
			return nil, report(ctx, logger, err)
		}
		if err := manifest.Check(expected, reg); err != nil {
			return nil, report(ctx, logger, err)
		}
		logger.DebugContext(ctx, "manifest satisfied", slog.Int("expected", len(expected)))
	}

	return &Result{Registry: reg, Files: files, Lines: lines}, nil
}

// Run builds the document and writes it to out under name.
func Run(ctx context.Context, cfg config.Config, out sink.OutputSink, name string, logger *slog.Logger) (*Result, error) {
	logger = orDefault(logger)

	res, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := out.WriteFile(ctx, name, res.Content()); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	logger.InfoContext(ctx, "wrote documentation",
		slog.String("output", cfg.Output),
		slog.Int("endpoints", res.Registry.Len()),
	)
	return res, nil
}

// report logs every individual problem carried by err and returns err.
func report(ctx context.Context, logger *slog.Logger, err error) error {
	for _, p := range apidoc.Problems(err) {
		logger.ErrorContext(ctx, p.Error(), append([]any{slog.String("kind", string(p.Kind()))}, p.Attrs()...)...)
	}
	return err
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
