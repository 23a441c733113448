// Package config resolves the settings of a documentation run.
//
// Settings are layered, later sources overriding earlier ones:
// Defaults, a YAML file, APIDOC_* environment variables, command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by EnvOverlay.
const EnvPrefix = "APIDOC_"

// DefaultPattern selects JavaScript sources, matching the comment grammar's origin.
const DefaultPattern = `\.js$`

// Config is the resolved configuration of one run.
type Config struct {
	// Template is the markdown template to expand.
	Template string `yaml:"template" schema:"template"`

	// Output is the generated markdown file.
	Output string `yaml:"output" schema:"output"`

	// OutDir overrides the directory links are made relative to.
	// Defaults to the directory of Output.
	OutDir string `yaml:"outdir" schema:"outdir"`

	// Pattern is the regular expression source paths must match.
	Pattern string `yaml:"pattern" schema:"pattern" validate:"required,regexp"`

	// Dir is the source tree to scan.
	Dir string `yaml:"dir" schema:"dir" validate:"required"`

	// Manifest optionally lists the "METHOD URL" identifiers that must be documented.
	Manifest string `yaml:"manifest" schema:"manifest"`

	// Exclude lists directory names that are not scanned.
	Exclude []string `yaml:"exclude" schema:"exclude"`

	// Concurrency bounds concurrent file reads; 0 means unbounded.
	Concurrency int `yaml:"concurrency" schema:"concurrency" validate:"gte=0"`

	// IncludeBinary scans files that are not detected as text.
	IncludeBinary bool `yaml:"include_binary" schema:"include_binary"`
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		Pattern: DefaultPattern,
		Dir:     ".",
		Exclude: []string{".git", "node_modules", "vendor"},
	}
}

// LinkDir returns the directory generated links are relative to.
func (c Config) LinkDir() string {
	if c.OutDir != "" {
		return c.OutDir
	}
	return filepath.Dir(c.Output)
}

// CompilePattern compiles Pattern.
func (c Config) CompilePattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}
	return re, nil
}

// LoadFile reads a YAML configuration file. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var envDecoder = schema.NewDecoder()

func init() {
	envDecoder.IgnoreUnknownKeys(true)
}

// EnvOverlay decodes APIDOC_* variables from environ (os.Environ format).
// APIDOC_INCLUDE_BINARY maps to include_binary; APIDOC_EXCLUDE is comma separated.
func EnvOverlay(environ []string) (Config, error) {
	values := url.Values{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if name == "exclude" {
			if parts := splitComma(value); len(parts) > 0 {
				values[name] = parts
			}
			continue
		}
		values.Set(name, value)
	}

	var cfg Config
	if len(values) == 0 {
		return cfg, nil
	}
	if err := envDecoder.Decode(&cfg, values); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of over applied on top.
// Zero values mean "unset", so a higher layer cannot lower Concurrency back
// to 0 or turn IncludeBinary off once a lower layer has set them.
func Merge(base, over Config) Config {
	out := base
	if over.Template != "" {
		out.Template = over.Template
	}
	if over.Output != "" {
		out.Output = over.Output
	}
	if over.OutDir != "" {
		out.OutDir = over.OutDir
	}
	if over.Pattern != "" {
		out.Pattern = over.Pattern
	}
	if over.Dir != "" {
		out.Dir = over.Dir
	}
	if over.Manifest != "" {
		out.Manifest = over.Manifest
	}
	if over.Exclude != nil {
		out.Exclude = append([]string(nil), over.Exclude...)
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if over.IncludeBinary {
		out.IncludeBinary = true
	}
	return out
}

// Resolve layers defaults, the optional file at path, the environment and
// flags. The result is not validated; commands call Validate or ValidateSource
// depending on what they need.
func Resolve(path string, environ []string, flags Config) (Config, error) {
	cfg := Defaults()
	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = Merge(cfg, file)
	}
	env, err := EnvOverlay(environ)
	if err != nil {
		return Config{}, err
	}
	return Merge(Merge(cfg, env), flags), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// document holds the settings only needed when a document is generated.
type document struct {
	Template string `yaml:"template" validate:"required"`
	Output   string `yaml:"output" validate:"required"`
}

// Validate checks that cfg is complete for generating a document.
func Validate(cfg Config) error {
	return validationError(
		validate.Struct(document{Template: cfg.Template, Output: cfg.Output}),
		validate.Struct(cfg),
	)
}

// ValidateSource checks only the settings that control source scanning.
func ValidateSource(cfg Config) error {
	return validationError(validate.Struct(cfg))
}

func validationError(errs ...error) error {
	var messages []string
	for _, err := range errs {
		if err == nil {
			continue
		}
		var valErrs validator.ValidationErrors
		if !errors.As(err, &valErrs) {
			return err
		}
		for _, fe := range valErrs {
			messages = append(messages, fe.Field()+": "+formatValidationError(fe))
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "regexp":
		return fmt.Sprintf("invalid regular expression %q", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
