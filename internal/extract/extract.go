// Package extract finds endpoint declarations in the line comments of a source file.
//
// Only lines of the form `<indent>//<optional space><text>` are considered;
// everything else is a code line. A declaration opens an endpoint:
//
//	// @api GET /users
//	// Returns all users.
//	// @json {
//	// "count": 0
//	// }
//	func listUsers() {}
//
// Comment lines after the declaration become the endpoint's body. A line
// ending in `@json {` opens a fenced JSON block that is copied verbatim until a
// line holding only `}`. The first code line closes the endpoint and is
// recorded as its definition line.
package extract

import (
	"regexp"
	"strings"

	"github.com/broady/apidoc"
)

var (
	commentLine = regexp.MustCompile(`^\s*//\s?(.*)$`)
	declaration = regexp.MustCompile(`@api\s+(\w+)\s+(\S+)`)
	jsonOpen    = regexp.MustCompile(`\s*@json\s*\{\s*$`)
	jsonClose   = regexp.MustCompile(`^\s*\}\s*$`)
)

type state int

const (
	outside    state = iota // no active endpoint
	inEndpoint              // accepting body lines
	inJSON                  // inside a @json block of the active endpoint
)

func (s state) String() string {
	switch s {
	case outside:
		return "outside"
	case inEndpoint:
		return "endpoint"
	case inJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Scanner is the per-file extraction state. Feed it lines in order with Scan
// and finish with Close. A Scanner is not safe for concurrent use.
type Scanner struct {
	file string

	line         int // number of the last scanned line, 1-based
	state        state
	active       *apidoc.Endpoint
	jsonOpenedAt int // line of the open `@json {`, 0 when none

	endpoints []*apidoc.Endpoint
	problems  []apidoc.Problem
}

// NewScanner returns a scanner for the named file.
func NewScanner(file string) *Scanner {
	return &Scanner{file: file}
}

// Scan advances the scanner by one line.
func (s *Scanner) Scan(line string) {
	s.line++

	m := commentLine.FindStringSubmatch(line)
	if m == nil {
		s.code()
		return
	}
	s.comment(m[1])
}

func (s *Scanner) code() {
	if s.jsonOpenedAt > 0 {
		s.unclosed()
	}
	if s.active != nil {
		s.active.DefinedAt = s.line
		s.active = nil
	}
	s.state = outside
}

func (s *Scanner) comment(text string) {
	if m := declaration.FindStringSubmatch(text); m != nil {
		// A previous endpoint still open here is dropped without a definition line.
		s.active = apidoc.NewEndpoint(s.file, m[1], m[2])
		s.endpoints = append(s.endpoints, s.active)
		s.state = inEndpoint
		return
	}

	switch s.state {
	case outside:
		return

	case inEndpoint:
		if loc := jsonOpen.FindStringIndex(text); loc != nil {
			if rest := text[:loc[0]]; rest != "" {
				s.active.Body = append(s.active.Body, rest)
			}
			s.active.Body = append(s.active.Body, "```json", "{")
			s.jsonOpenedAt = s.line
			s.state = inJSON
			return
		}
		s.active.Body = append(s.active.Body, text)

	case inJSON:
		if jsonClose.MatchString(text) {
			s.jsonOpenedAt = 0
			s.active.Body = append(s.active.Body, "}", "```")
			s.state = inEndpoint
			return
		}
		s.active.Body = append(s.active.Body, text)
	}
}

// unclosed records the open JSON block as a problem and forgets it, so each
// block is reported once.
func (s *Scanner) unclosed() {
	s.problems = append(s.problems, &apidoc.UnclosedJSONBlock{
		File: s.file,
		Line: s.jsonOpenedAt,
	})
	s.jsonOpenedAt = 0
}

// Close ends the scan. It returns every endpoint declared in the file, even
// when the file failed, together with a *apidoc.ParseError if any problem was
// recorded.
func (s *Scanner) Close() ([]*apidoc.Endpoint, error) {
	if s.jsonOpenedAt > 0 {
		s.unclosed()
	}
	s.active = nil
	s.state = outside

	if len(s.problems) > 0 {
		return s.endpoints, &apidoc.ParseError{File: s.file, Problems: s.problems}
	}
	return s.endpoints, nil
}

// File extracts the endpoints declared in text, the full content of the file
// at path.
func File(path, text string) ([]*apidoc.Endpoint, error) {
	s := NewScanner(path)
	for _, line := range apidoc.SplitLines(text) {
		s.Scan(line)
	}
	return s.Close()
}

// HasDeclarations reports whether text might declare an endpoint. It is a
// cheap filter for files that need no scanning.
func HasDeclarations(text string) bool {
	return strings.Contains(text, "@api")
}
