package apidoc

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a class of problem recorded while generating documentation.
type Kind string

const (
	KindUnclosedJSONBlock     Kind = "unclosed_json_block"
	KindDirectiveNotFound     Kind = "directive_not_found"
	KindDuplicateReference    Kind = "duplicate_reference"
	KindEndpointNotReferenced Kind = "endpoint_not_referenced"
	KindManifestMismatch      Kind = "manifest_mismatch"
	KindInvalidManifestEntry  Kind = "invalid_manifest_entry"
)

// Problem is implemented by every individual error the pipeline records.
// Attrs returns key-value pairs suitable for structured logging.
type Problem interface {
	error
	Kind() Kind
	Attrs() []any
}

// UnclosedJSONBlock reports a `@json {` block that was never closed by a `}` line.
// Line is the line that opened the block.
type UnclosedJSONBlock struct {
	File string
	Line int
}

func (e *UnclosedJSONBlock) Error() string {
	return fmt.Sprintf("Unclosed JSON block at line %d", e.Line)
}

func (e *UnclosedJSONBlock) Kind() Kind { return KindUnclosedJSONBlock }

func (e *UnclosedJSONBlock) Attrs() []any {
	return []any{"file", e.File, "line", e.Line}
}

// DirectiveNotFound reports a template directive that matched no endpoint.
type DirectiveNotFound struct {
	Line   int
	URL    string
	Method string // empty for unqualified directives
}

func (e *DirectiveNotFound) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("line %d: endpoint not found: %s %s", e.Line, e.Method, e.URL)
	}
	return fmt.Sprintf("line %d: endpoint not found: %s", e.Line, e.URL)
}

func (e *DirectiveNotFound) Kind() Kind { return KindDirectiveNotFound }

func (e *DirectiveNotFound) Attrs() []any {
	return []any{"line", e.Line, "method", e.Method, "url", e.URL}
}

// DuplicateReference reports a directive that matched an endpoint which was
// already emitted earlier in the template.
type DuplicateReference struct {
	Line      int
	URL       string
	Method    string
	PriorLine int
}

func (e *DuplicateReference) Error() string {
	return fmt.Sprintf("line %d: endpoint %s %s already inserted at line %d", e.Line, e.Method, e.URL, e.PriorLine)
}

func (e *DuplicateReference) Kind() Kind { return KindDuplicateReference }

func (e *DuplicateReference) Attrs() []any {
	return []any{"line", e.Line, "method", e.Method, "url", e.URL, "prior_line", e.PriorLine}
}

// EndpointNotReferenced reports a documented endpoint that no template
// directive selected.
type EndpointNotReferenced struct {
	Method string
	URL    string
	File   string
}

func (e *EndpointNotReferenced) Error() string {
	return fmt.Sprintf("API endpoint not in template: %s %s", e.Method, e.URL)
}

func (e *EndpointNotReferenced) Kind() Kind { return KindEndpointNotReferenced }

func (e *EndpointNotReferenced) Attrs() []any {
	return []any{"method", e.Method, "url", e.URL, "file", e.File}
}

// ManifestMismatch reports an expected "METHOD URL" identifier that has no
// documented endpoint.
type ManifestMismatch struct {
	Identifier string
}

func (e *ManifestMismatch) Error() string {
	return fmt.Sprintf("undocumented endpoint: %s", e.Identifier)
}

func (e *ManifestMismatch) Kind() Kind { return KindManifestMismatch }

func (e *ManifestMismatch) Attrs() []any {
	return []any{"endpoint", e.Identifier}
}

// InvalidManifestEntry reports a manifest entry that is not of the form "METHOD URL".
type InvalidManifestEntry struct {
	Index int
	Value string
}

func (e *InvalidManifestEntry) Error() string {
	return fmt.Sprintf("manifest entry %d: expected \"METHOD URL\", got %q", e.Index, e.Value)
}

func (e *InvalidManifestEntry) Kind() Kind { return KindInvalidManifestEntry }

func (e *InvalidManifestEntry) Attrs() []any {
	return []any{"index", e.Index, "value", e.Value}
}

// ParseError is the failure of a single source file. Problems are in line order.
type ParseError struct {
	File     string
	Problems []Problem
}

func (e *ParseError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %v", e.File, e.Problems[0])
	}
	return fmt.Sprintf("%s: %d problems, first: %v", e.File, len(e.Problems), e.Problems[0])
}

func (e *ParseError) Unwrap() []error { return unwrapProblems(e.Problems) }

// ExtractionError merges the ParseErrors of every file that failed.
type ExtractionError struct {
	Files []*ParseError
}

func (e *ExtractionError) Error() string {
	if len(e.Files) == 1 {
		return "failed to process file " + e.Files[0].Error()
	}
	names := make([]string, len(e.Files))
	for i, f := range e.Files {
		names[i] = f.File
	}
	return fmt.Sprintf("failed to process %d files: %s", len(e.Files), strings.Join(names, ", "))
}

func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, len(e.Files))
	for i, f := range e.Files {
		errs[i] = f
	}
	return errs
}

// Problems flattens the per-file problems in file order.
func (e *ExtractionError) Problems() []Problem {
	var all []Problem
	for _, f := range e.Files {
		all = append(all, f.Problems...)
	}
	return all
}

// ExpansionError aggregates every problem found in one template expansion.
// Unreferenced counts the EndpointNotReferenced problems among them.
type ExpansionError struct {
	Problems     []Problem
	Unreferenced int
}

func (e *ExpansionError) Error() string {
	directive := len(e.Problems) - e.Unreferenced
	switch {
	case directive > 0 && e.Unreferenced > 0:
		return fmt.Sprintf("template expansion error: %d directive problems, endpoints not defined in template: %d", directive, e.Unreferenced)
	case directive > 0:
		return fmt.Sprintf("template expansion error: %d directive problems", directive)
	default:
		return fmt.Sprintf("endpoints not defined in template: %d", e.Unreferenced)
	}
}

func (e *ExpansionError) Unwrap() []error { return unwrapProblems(e.Problems) }

// ManifestError aggregates manifest failures: entries that are not of the
// form "METHOD URL" and expected endpoints that are not documented.
type ManifestError struct {
	Invalid []Problem
	Missing []Problem
}

func (e *ManifestError) Error() string {
	if len(e.Invalid) > 0 {
		return fmt.Sprintf("invalid manifest entries: %d, first: %v", len(e.Invalid), e.Invalid[0])
	}
	return fmt.Sprintf("endpoints not documented: %d", len(e.Missing))
}

func (e *ManifestError) Unwrap() []error { return unwrapProblems(e.Problems()) }

// Problems returns the invalid entries followed by the missing endpoints.
func (e *ManifestError) Problems() []Problem {
	return append(append([]Problem(nil), e.Invalid...), e.Missing...)
}

// Problems returns every individual problem carried by err, looking through
// the aggregate error types. It returns nil for foreign errors.
func Problems(err error) []Problem {
	var (
		pe *ParseError
		xe *ExtractionError
		ee *ExpansionError
		me *ManifestError
		p  Problem
	)
	switch {
	case errors.As(err, &xe):
		return xe.Problems()
	case errors.As(err, &pe):
		return pe.Problems
	case errors.As(err, &ee):
		return ee.Problems
	case errors.As(err, &me):
		return me.Problems()
	case errors.As(err, &p):
		return []Problem{p}
	}
	return nil
}

func unwrapProblems(ps []Problem) []error {
	errs := make([]error, len(ps))
	for i, p := range ps {
		errs[i] = p
	}
	return errs
}
