package expand

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/apidoc"
)

var testOpts = Options{OutputDir: "docs", TemplatePath: "templates/api.md"}

func newRegistry(t *testing.T, eps ...*apidoc.Endpoint) *apidoc.Registry {
	t.Helper()
	reg := apidoc.NewRegistry()
	require.NoError(t, reg.Add(eps...))
	reg.Seal()
	return reg
}

func endpoint(file, method, url string, definedAt int, body ...string) *apidoc.Endpoint {
	ep := apidoc.NewEndpoint(file, method, url)
	ep.DefinedAt = definedAt
	ep.Body = body
	return ep
}

// body strips the banner from expanded output.
func body(t *testing.T, out []string) []string {
	t.Helper()
	require.GreaterOrEqual(t, len(out), 3)
	return out[3:]
}

func TestExpand_SingleEndpoint(t *testing.T) {
	ep := endpoint("src/users.js", "GET", "/users", 12, "Returns all users.", "```json", "{", `"count": 0`, "}", "```")
	reg := newRegistry(t, ep)

	out, err := Expand("# API\n@api /users GET\nfooter", reg, testOpts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"# API",
		"### [GET /users](../src/users.js#L12)",
		"",
		"Returns all users.", "```json", "{", `"count": 0`, "}", "```",
		"footer",
	}, body(t, out))
	assert.Equal(t, 2, ep.ReferencedAt)
}

func TestExpand_UnqualifiedSelectsAll(t *testing.T) {
	get := endpoint("a.js", "GET", "/users", 0, "list")
	post := endpoint("a.js", "POST", "/users", 0, "create")
	reg := newRegistry(t, get, post)

	out, err := Expand("@api /users", reg, testOpts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"### [GET /users](../a.js)", "", "list",
		"### [POST /users](../a.js)", "", "create",
	}, body(t, out))
}

func TestExpand_QualifiedLeavesOthersUnreferenced(t *testing.T) {
	get := endpoint("a.js", "GET", "/users", 0, "list")
	post := endpoint("a.js", "POST", "/users", 0, "create")
	reg := newRegistry(t, get, post)

	_, err := Expand("@api /users post", reg, testOpts)
	var ee *apidoc.ExpansionError
	require.True(t, errors.As(err, &ee))
	require.Len(t, ee.Problems, 1)
	assert.Equal(t, 1, ee.Unreferenced)

	nr, ok := ee.Problems[0].(*apidoc.EndpointNotReferenced)
	require.True(t, ok)
	assert.Equal(t, "GET", nr.Method)
	assert.Equal(t, 1, post.ReferencedAt)
	assert.False(t, get.Referenced())
}

func TestExpand_QualifiedSelectsExactlyOne(t *testing.T) {
	get := endpoint("a.js", "GET", "/users", 0, "list")
	post := endpoint("a.js", "POST", "/users", 0, "create")
	reg := newRegistry(t, get, post)

	out, err := Expand("@api /users POST\n@api /users GET", reg, testOpts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"### [POST /users](../a.js)", "", "create",
		"### [GET /users](../a.js)", "", "list",
	}, body(t, out))
}

func TestExpand_NotFound(t *testing.T) {
	reg := newRegistry(t, endpoint("a.js", "GET", "/users", 0))

	out, err := Expand("@api /users\n@api /missing\n@api /users DELETE", reg, testOpts)
	assert.Nil(t, out)

	var ee *apidoc.ExpansionError
	require.True(t, errors.As(err, &ee))
	assert.Zero(t, ee.Unreferenced)
	require.Len(t, ee.Problems, 2)

	nf, ok := ee.Problems[0].(*apidoc.DirectiveNotFound)
	require.True(t, ok)
	assert.Equal(t, &apidoc.DirectiveNotFound{Line: 2, URL: "/missing"}, nf)
	assert.Equal(t, "line 2: endpoint not found: /missing", nf.Error())

	nf, ok = ee.Problems[1].(*apidoc.DirectiveNotFound)
	require.True(t, ok)
	assert.Equal(t, "DELETE", nf.Method)
	assert.Equal(t, "line 3: endpoint not found: DELETE /users", nf.Error())
}

func TestExpand_UnreferencedAlone(t *testing.T) {
	reg := newRegistry(t,
		endpoint("a.js", "GET", "/a", 0),
		endpoint("b.js", "GET", "/b", 0),
	)

	_, err := Expand("@api /a", reg, testOpts)
	var ee *apidoc.ExpansionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.Unreferenced)
	assert.Equal(t, "endpoints not defined in template: 1", ee.Error())

	var nr *apidoc.EndpointNotReferenced
	require.True(t, errors.As(err, &nr))
	assert.Equal(t, "/b", nr.URL)
	assert.Equal(t, "b.js", nr.File)
}

func TestExpand_DuplicateReference(t *testing.T) {
	ep := endpoint("a.js", "GET", "/users", 3, "list")
	reg := newRegistry(t, ep)

	_, err := Expand("intro\n@api /users\n\n@api /users GET", reg, testOpts)
	var ee *apidoc.ExpansionError
	require.True(t, errors.As(err, &ee))
	require.Len(t, ee.Problems, 1)

	dup, ok := ee.Problems[0].(*apidoc.DuplicateReference)
	require.True(t, ok)
	assert.Equal(t, 4, dup.Line)
	assert.Equal(t, 2, dup.PriorLine)
	assert.Equal(t, 2, ep.ReferencedAt, "first emission stays")
	assert.Contains(t, ee.Error(), "1 directive problems")
}

func TestExpand_DuplicateDoesNotDuplicateOutput(t *testing.T) {
	// A partial duplicate: the unqualified directive re-selects GET but
	// still emits the not yet referenced POST.
	get := endpoint("a.js", "GET", "/users", 0, "list")
	post := endpoint("a.js", "POST", "/users", 0, "create")
	reg := newRegistry(t, get, post)

	_, err := Expand("@api /users GET\n@api /users", reg, testOpts)
	var ee *apidoc.ExpansionError
	require.True(t, errors.As(err, &ee))
	require.Len(t, ee.Problems, 1)
	assert.Equal(t, 1, get.ReferencedAt)
	assert.Equal(t, 2, post.ReferencedAt)
}

func TestExpand_CombinedErrors(t *testing.T) {
	reg := newRegistry(t,
		endpoint("a.js", "GET", "/a", 0),
		endpoint("a.js", "GET", "/b", 0),
	)
	_, err := Expand("@api /a\n@api /a\n@api /zzz", reg, testOpts)

	var ee *apidoc.ExpansionError
	require.True(t, errors.As(err, &ee))
	kinds := make([]apidoc.Kind, len(ee.Problems))
	for i, p := range ee.Problems {
		kinds[i] = p.Kind()
	}
	assert.Equal(t, []apidoc.Kind{
		apidoc.KindDuplicateReference,
		apidoc.KindDirectiveNotFound,
		apidoc.KindEndpointNotReferenced,
	}, kinds)
	assert.Equal(t, "template expansion error: 2 directive problems, endpoints not defined in template: 1", ee.Error())
}

func TestExpand_RequiresSealedRegistry(t *testing.T) {
	reg := apidoc.NewRegistry()
	_, err := Expand("", reg, testOpts)
	assert.ErrorIs(t, err, ErrNotSealed)
}

func TestExpand_BannerAndTrailingNewline(t *testing.T) {
	reg := newRegistry(t)
	out, err := Expand("hello\n", reg, testOpts)
	require.NoError(t, err)

	text := string(Render(out))
	assert.True(t, strings.HasPrefix(text, "<!-- This file is autogenerated, do not modify directly,\n"))
	assert.Contains(t, text, "comments or the template file: templates/api.md -->\nhello\n")
	assert.True(t, strings.HasSuffix(text, "hello\n"))
}

func TestLink(t *testing.T) {
	ep := endpoint("src/api/users.js", "GET", "/users", 0)
	assert.Equal(t, "../src/api/users.js", Link(ep, "docs"))
	assert.Equal(t, "src/api/users.js", Link(ep, "."))

	ep.DefinedAt = 40
	assert.Equal(t, "api/users.js#L40", Link(ep, "src"))
}

func TestBanner(t *testing.T) {
	tests := []struct {
		name     string
		outDir   string
		template string
		want     string
	}{
		{name: "sibling directories", outDir: "/p/docs", template: "/p/templates/api.md", want: "templates/api.md"},
		{name: "same directory", outDir: "/p/docs", template: "/p/docs/api.tpl.md", want: "api.tpl.md"},
		{name: "template deeper", outDir: "/p", template: "/p/a/b/t.md", want: "a/b/t.md"},
		{name: "output deeper", outDir: "/p/a/b", template: "/p/t.md", want: "t.md"},
		{name: "shared name prefix", outDir: "/p/doc", template: "/p/docs/t.md", want: "docs/t.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Banner(tt.outDir, tt.template)
			require.Len(t, b, 3)
			assert.Equal(t, "     comments or the template file: "+tt.want+" -->", b[2])
		})
	}
}
