// Package export implements `apidoc export`, which writes the documented
// endpoints as an OpenAPI 3 document instead of expanding a template.
package export

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/broady/apidoc/cmd/apidoc/internal/flags"
	"github.com/broady/apidoc/internal/config"
	"github.com/broady/apidoc/internal/generate"
	"github.com/broady/apidoc/internal/openapi"
	"github.com/broady/apidoc/internal/sink"
)

type Cmd struct {
	Output     string       `help:"Output filename (default: stdout)." short:"o" placeholder:"openapi.json"`
	Title      string       `help:"API title." default:"API"`
	APIVersion string       `help:"API version." default:"0.0.0" name:"api-version"`
	Source     flags.Source `embed:""`

	stdout io.Writer
}

func (c *Cmd) Run(ctx context.Context, g *flags.Globals) error {
	cfg, err := g.Resolve(flags.Config(c.Source, flags.Document{}))
	if err != nil {
		return err
	}
	if err := config.ValidateSource(cfg); err != nil {
		return err
	}

	logger := g.Logger()
	reg, _, err := generate.Extract(ctx, cfg, logger)
	if err != nil {
		return err
	}

	doc, skipped := openapi.Document(reg, openapi.Info{Title: c.Title, Version: c.APIVersion})
	for _, ep := range skipped {
		logger.WarnContext(ctx, "method not supported by OpenAPI, endpoint skipped",
			slog.String("method", ep.Method),
			slog.String("url", ep.URL),
			slog.String("file", ep.SourceFile),
		)
	}

	data, err := openapi.Marshal(doc)
	if err != nil {
		return err
	}

	if c.Output == "" {
		out := c.stdout
		if out == nil {
			out = os.Stdout
		}
		_, err := out.Write(data)
		return err
	}
	out, name := sink.ForPath(c.Output)
	return out.WriteFile(ctx, name, data)
}
