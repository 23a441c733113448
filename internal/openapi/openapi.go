// Package openapi renders the endpoint registry as an OpenAPI 3 document.
//
// Only paths and operations are produced. The first non-empty body line of
// an endpoint becomes the operation summary and the whole body its description.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/broady/apidoc"
)

// Info describes the exported API.
type Info struct {
	Title   string
	Version string
}

// methods are the operations a PathItem can hold.
var methods = map[string]bool{
	http.MethodConnect: true,
	http.MethodDelete:  true,
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodPatch:   true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodTrace:   true,
}

// Document builds an OpenAPI document from reg. When several endpoints share
// a method and url, the first in registry order wins. Endpoints whose method
// OpenAPI cannot express are returned as skipped.
func Document(reg *apidoc.Registry, info Info) (doc *openapi3.T, skipped []*apidoc.Endpoint) {
	doc = &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   info.Title,
			Version: info.Version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, ep := range reg.Endpoints() {
		if !methods[ep.Method] {
			skipped = append(skipped, ep)
			continue
		}
		path := templatePath(ep.URL)
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		if item.GetOperation(ep.Method) != nil {
			continue
		}
		item.SetOperation(ep.Method, operation(ep))
	}
	return doc, skipped
}

func operation(ep *apidoc.Endpoint) *openapi3.Operation {
	op := &openapi3.Operation{
		Summary:     summary(ep.Body),
		Description: strings.TrimSpace(strings.Join(ep.Body, "\n")),
		Responses:   openapi3.NewResponses(),
	}
	if ep.DefinedAt > 0 {
		op.Extensions = map[string]any{"x-source": fmt.Sprintf("%s#L%d", ep.SourceFile, ep.DefinedAt)}
	} else {
		op.Extensions = map[string]any{"x-source": ep.SourceFile}
	}
	return op
}

func summary(body []string) string {
	for _, line := range body {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// templatePath rewrites express-style `:param` segments to `{param}`.
func templatePath(url string) string {
	segments := strings.Split(url, "/")
	for i, seg := range segments {
		if len(seg) > 1 && seg[0] == ':' {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// Marshal encodes doc as indented JSON.
func Marshal(doc *openapi3.T) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	return append(data, '\n'), nil
}
