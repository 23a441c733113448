package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/broady/apidoc/cmd/apidoc/internal/flags"
	"github.com/broady/apidoc/internal/config"
	"github.com/broady/apidoc/internal/generate"
)

type Cmd struct {
	Document flags.Document `embed:""`
	Source   flags.Source   `embed:""`

	stdout io.Writer
}

func (c *Cmd) Run(ctx context.Context, g *flags.Globals) error {
	cfg, err := g.Resolve(flags.Config(c.Source, c.Document))
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	out := c.stdout
	if out == nil {
		out = os.Stdout
	}

	res, err := generate.Check(ctx, cfg, g.Logger())
	var stale *generate.StaleError
	if errors.As(err, &stale) && stale.Diff != "" {
		fmt.Fprint(out, stale.Diff)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ %s is up to date (%d endpoints from %d files)\n", cfg.Output, res.Registry.Len(), res.Files)
	return nil
}
