// Package flags holds the command-line flags shared by apidoc commands.
package flags

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/broady/apidoc/internal/config"
)

// Globals are accepted by every command.
type Globals struct {
	Config   string `help:"YAML configuration file." placeholder:"apidoc.yaml" type:"existingfile"`
	LogLevel string `help:"Log level (${enum})." enum:"debug,info,warn,error" default:"info" name:"log-level"`

	logOutput io.Writer
}

// Logger returns a text logger on stderr at the configured level.
func (g *Globals) Logger() *slog.Logger {
	w := g.logOutput
	if w == nil {
		w = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(g.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Resolve layers the config file and environment under the given flag values.
func (g *Globals) Resolve(flags config.Config) (config.Config, error) {
	cfg, err := config.Resolve(g.Config, os.Environ(), flags)
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve config: %w", err)
	}
	return cfg, nil
}

// Source selects the files that are scanned for endpoint declarations.
type Source struct {
	Dir           string   `arg:"" optional:"" help:"Source search directory (default: current directory)."`
	Pattern       string   `help:"Regex pattern the file paths must match (default: \\.js$)." placeholder:"REGEX"`
	Exclude       []string `help:"Directory names to skip." placeholder:"NAME,..."`
	Concurrency   int      `help:"Maximum number of files read at once (0: unbounded)."`
	IncludeBinary bool     `help:"Scan files that are not detected as text." name:"include-binary"`
}

// Document locates the template, the output and the optional manifest.
type Document struct {
	Template string `help:"Template filename." short:"t" placeholder:"template.md"`
	Output   string `help:"Output filename." short:"o" placeholder:"output.md"`
	OutDir   string `help:"Output directory for relative links (overrides -o)." name:"outdir" placeholder:"DIR"`
	Manifest string `help:"JSON or YAML list of \"METHOD URL\" endpoints that must be documented." placeholder:"endpoints.json"`
}

// Config converts flag values into a config layer. Unset flags stay zero so
// that lower layers show through.
func Config(src Source, doc Document) config.Config {
	return config.Config{
		Template:      doc.Template,
		Output:        doc.Output,
		OutDir:        doc.OutDir,
		Pattern:       src.Pattern,
		Dir:           src.Dir,
		Manifest:      doc.Manifest,
		Exclude:       src.Exclude,
		Concurrency:   src.Concurrency,
		IncludeBinary: src.IncludeBinary,
	}
}
