// Package apidoc holds the data model shared by the apidoc generator: endpoints
// documented in source comments, the registry that collects them, and the
// error types reported by each phase.
//
// Endpoints are declared in line comments:
//
//	// @api GET /users
//	// Returns all users.
//	// @json {
//	// "count": 0
//	// }
//
// and referenced from a markdown template with `@api /users [GET]`.
package apidoc

import (
	"fmt"
	"strings"
)

// Endpoint is one documented API operation.
type Endpoint struct {
	SourceFile string   // path where the endpoint was declared
	Method     string   // upper-case HTTP method
	URL        string   // url exactly as written
	Body       []string // markdown lines emitted under the heading

	// DefinedAt is the first code line after the declaring comment block,
	// or 0 when the block was never closed by a code line.
	DefinedAt int

	// ReferencedAt is the template line that emitted the endpoint, or 0.
	ReferencedAt int
}

// NewEndpoint creates an endpoint with the method upper-cased.
func NewEndpoint(sourceFile, method, url string) *Endpoint {
	return &Endpoint{
		SourceFile: sourceFile,
		Method:     strings.ToUpper(method),
		URL:        url,
	}
}

// ID returns the "METHOD URL" identifier used by manifests.
func (e *Endpoint) ID() string {
	return e.Method + " " + e.URL
}

func (e *Endpoint) String() string {
	if e.DefinedAt > 0 {
		return fmt.Sprintf("%s (%s:%d)", e.ID(), e.SourceFile, e.DefinedAt)
	}
	return fmt.Sprintf("%s (%s)", e.ID(), e.SourceFile)
}

// Referenced reports whether a template directive has emitted the endpoint.
func (e *Endpoint) Referenced() bool {
	return e.ReferencedAt > 0
}

// Reference records that template line emitted the endpoint.
// The first reference wins; later calls return a *DuplicateReference
// and leave ReferencedAt unchanged.
func (e *Endpoint) Reference(line int) error {
	if e.ReferencedAt > 0 {
		return &DuplicateReference{
			Line:      line,
			URL:       e.URL,
			Method:    e.Method,
			PriorLine: e.ReferencedAt,
		}
	}
	e.ReferencedAt = line
	return nil
}
