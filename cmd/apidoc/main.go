package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/apidoc/cmd/apidoc/internal/check"
	"github.com/broady/apidoc/cmd/apidoc/internal/export"
	"github.com/broady/apidoc/cmd/apidoc/internal/flags"
	"github.com/broady/apidoc/cmd/apidoc/internal/gen"
)

type CLI struct {
	flags.Globals

	Gen     gen.Cmd    `cmd:"" default:"withargs" help:"Expand the template into the output document."`
	Check   check.Cmd  `cmd:"" help:"Fail if the output document is missing or out of date."`
	Export  export.Cmd `cmd:"" help:"Write the documented endpoints as an OpenAPI 3 document."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("apidoc"),
		kong.Description("Lightweight API documentation generator."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}
