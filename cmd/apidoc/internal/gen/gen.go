package gen

import (
	"context"

	"github.com/broady/apidoc/cmd/apidoc/internal/flags"
	"github.com/broady/apidoc/internal/config"
	"github.com/broady/apidoc/internal/generate"
	"github.com/broady/apidoc/internal/sink"
)

type Cmd struct {
	Document flags.Document `embed:""`
	Source   flags.Source   `embed:""`
}

func (c *Cmd) Run(ctx context.Context, g *flags.Globals) error {
	cfg, err := g.Resolve(flags.Config(c.Source, c.Document))
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	out, name := sink.ForPath(cfg.Output)
	_, err = generate.Run(ctx, cfg, out, name, g.Logger())
	return err
}
