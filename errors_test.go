package apidoc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemMessages(t *testing.T) {
	tests := []struct {
		err  Problem
		want string
	}{
		{&UnclosedJSONBlock{File: "a.js", Line: 4}, "Unclosed JSON block at line 4"},
		{&DirectiveNotFound{Line: 3, URL: "/x"}, "line 3: endpoint not found: /x"},
		{&DirectiveNotFound{Line: 3, URL: "/x", Method: "GET"}, "line 3: endpoint not found: GET /x"},
		{&DuplicateReference{Line: 9, URL: "/x", Method: "GET", PriorLine: 2}, "line 9: endpoint GET /x already inserted at line 2"},
		{&EndpointNotReferenced{Method: "GET", URL: "/users", File: "u.js"}, "API endpoint not in template: GET /users"},
		{&ManifestMismatch{Identifier: "DELETE /users/:id"}, "undocumented endpoint: DELETE /users/:id"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
		assert.Zero(t, len(tt.err.Attrs())%2, "attrs are key-value pairs")
	}
}

func TestParseError(t *testing.T) {
	one := &ParseError{File: "a.js", Problems: []Problem{&UnclosedJSONBlock{File: "a.js", Line: 2}}}
	assert.Equal(t, "a.js: Unclosed JSON block at line 2", one.Error())

	two := &ParseError{File: "a.js", Problems: []Problem{
		&UnclosedJSONBlock{File: "a.js", Line: 2},
		&UnclosedJSONBlock{File: "a.js", Line: 8},
	}}
	assert.Equal(t, "a.js: 2 problems, first: Unclosed JSON block at line 2", two.Error())

	var unclosed *UnclosedJSONBlock
	require.ErrorAs(t, two, &unclosed)
	assert.Equal(t, 2, unclosed.Line)
}

func TestExtractionError(t *testing.T) {
	a := &ParseError{File: "a.js", Problems: []Problem{&UnclosedJSONBlock{File: "a.js", Line: 1}}}
	b := &ParseError{File: "b.js", Problems: []Problem{&UnclosedJSONBlock{File: "b.js", Line: 5}}}

	single := &ExtractionError{Files: []*ParseError{a}}
	assert.Equal(t, "failed to process file a.js: Unclosed JSON block at line 1", single.Error())

	both := &ExtractionError{Files: []*ParseError{a, b}}
	assert.Equal(t, "failed to process 2 files: a.js, b.js", both.Error())
	assert.Len(t, both.Problems(), 2)

	var pe *ParseError
	require.ErrorAs(t, both, &pe)
	assert.Equal(t, "a.js", pe.File)
}

func TestExpansionErrorMessage(t *testing.T) {
	missing := &DirectiveNotFound{Line: 1, URL: "/x"}
	unref := &EndpointNotReferenced{Method: "GET", URL: "/y"}

	assert.Equal(t, "template expansion error: 1 directive problems",
		(&ExpansionError{Problems: []Problem{missing}}).Error())
	assert.Equal(t, "endpoints not defined in template: 1",
		(&ExpansionError{Problems: []Problem{unref}, Unreferenced: 1}).Error())
	assert.Equal(t, "template expansion error: 1 directive problems, endpoints not defined in template: 1",
		(&ExpansionError{Problems: []Problem{missing, unref}, Unreferenced: 1}).Error())
}

func TestProblems(t *testing.T) {
	p1 := &DirectiveNotFound{Line: 1, URL: "/x"}
	p2 := &ManifestMismatch{Identifier: "GET /z"}
	p3 := &InvalidManifestEntry{Index: 0, Value: "GET"}
	p4 := &InvalidManifestEntry{Index: 3, Value: "/x"}

	tests := []struct {
		name string
		err  error
		want []Problem
	}{
		{"expansion", &ExpansionError{Problems: []Problem{p1}}, []Problem{p1}},
		{"manifest", &ManifestError{Missing: []Problem{p2}}, []Problem{p2}},
		{"manifest invalid first", &ManifestError{Invalid: []Problem{p3, p4}, Missing: []Problem{p2}}, []Problem{p3, p4, p2}},
		{"wrapped", fmt.Errorf("build: %w", &ManifestError{Missing: []Problem{p2}}), []Problem{p2}},
		{"single", p1, []Problem{p1}},
		{"parse", &ParseError{File: "a.js", Problems: []Problem{p1}}, []Problem{p1}},
		{"foreign", errors.New("boom"), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Problems(tt.err))
		})
	}
}

func TestManifestErrorMessage(t *testing.T) {
	missing := &ManifestError{Missing: []Problem{&ManifestMismatch{Identifier: "GET /z"}}}
	assert.Equal(t, "endpoints not documented: 1", missing.Error())

	invalid := &ManifestError{Invalid: []Problem{&InvalidManifestEntry{Index: 1, Value: "x"}}}
	assert.Equal(t, `invalid manifest entries: 1, first: manifest entry 1: expected "METHOD URL", got "x"`, invalid.Error())

	var entry *InvalidManifestEntry
	require.ErrorAs(t, invalid, &entry)
	assert.Equal(t, 1, entry.Index)
}
