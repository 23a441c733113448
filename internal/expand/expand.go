// Package expand substitutes documented endpoints into a markdown template.
//
// A template line containing `@api <url> [<method>]` is replaced by a section
// for every matching endpoint; all other lines are copied unchanged.
package expand

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/broady/apidoc"
)

var directive = regexp.MustCompile(`@api\s+(\S+)(?:\s+(\S+))?`)

// ErrNotSealed is returned when expansion is attempted while extraction may
// still be appending to the registry.
var ErrNotSealed = errors.New("expand: registry must be sealed before expansion")

// Options locates the generated document.
type Options struct {
	// OutputDir is the directory links are made relative to.
	OutputDir string

	// TemplatePath is the template file named in the banner.
	TemplatePath string
}

// Expand expands template against reg and returns the output lines, banner
// included. Every problem in the template is collected; if there are any, the
// result is nil and the error is a *apidoc.ExpansionError.
//
// Expand records each emission on the endpoints it selects, so a registry can
// only be expanded once.
func Expand(template string, reg *apidoc.Registry, opts Options) ([]string, error) {
	if !reg.Sealed() {
		return nil, ErrNotSealed
	}

	out := Banner(opts.OutputDir, opts.TemplatePath)
	var problems []apidoc.Problem

	for i, line := range apidoc.SplitLines(template) {
		lineNo := i + 1

		m := directive.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		url, method := m[1], strings.ToUpper(m[2])

		matches := reg.FindMatches(url, method)
		if len(matches) == 0 {
			problems = append(problems, &apidoc.DirectiveNotFound{Line: lineNo, URL: url, Method: method})
			continue
		}

		for _, ep := range matches {
			if err := ep.Reference(lineNo); err != nil {
				var dup *apidoc.DuplicateReference
				if errors.As(err, &dup) {
					problems = append(problems, dup)
					continue
				}
				return nil, err
			}
			out = append(out, Heading(ep, opts.OutputDir), "")
			out = append(out, ep.Body...)
		}
	}

	unreferenced := reg.Unreferenced()
	for _, ep := range unreferenced {
		problems = append(problems, &apidoc.EndpointNotReferenced{
			Method: ep.Method,
			URL:    ep.URL,
			File:   ep.SourceFile,
		})
	}

	if len(problems) > 0 {
		return nil, &apidoc.ExpansionError{Problems: problems, Unreferenced: len(unreferenced)}
	}
	return out, nil
}

// Render joins output lines into the document text.
func Render(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// Heading returns the level-3 heading that introduces ep, linking to its
// declaration relative to outputDir.
func Heading(ep *apidoc.Endpoint, outputDir string) string {
	return fmt.Sprintf("### [%s %s](%s)", ep.Method, ep.URL, Link(ep, outputDir))
}

// Link returns the slash-separated path from outputDir to the endpoint's
// source file, anchored at the definition line when one is known.
func Link(ep *apidoc.Endpoint, outputDir string) string {
	link := relative(outputDir, ep.SourceFile)
	if ep.DefinedAt > 0 {
		link += fmt.Sprintf("#L%d", ep.DefinedAt)
	}
	return link
}

// Banner returns the three comment lines heading every generated document.
// The template is named relative to the deepest directory it shares with the
// output directory.
func Banner(outputDir, templatePath string) []string {
	return []string{
		"<!-- This file is autogenerated, do not modify directly,",
		"     If you wish to edit the contents update the documentation",
		fmt.Sprintf("     comments or the template file: %s -->", templateRef(outputDir, templatePath)),
	}
}

func templateRef(outputDir, templatePath string) string {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return filepath.ToSlash(templatePath)
	}
	absTemplate, err := filepath.Abs(templatePath)
	if err != nil {
		return filepath.ToSlash(templatePath)
	}
	return relative(commonDir(absOut, filepath.Dir(absTemplate)), absTemplate)
}

// relative computes the slash-separated path of target from base, falling
// back to target itself when no relative path exists.
func relative(base, target string) string {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return filepath.ToSlash(target)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// commonDir returns the deepest directory containing both absolute paths a and b.
func commonDir(a, b string) string {
	sep := string(filepath.Separator)
	as := strings.Split(filepath.Clean(a), sep)
	bs := strings.Split(filepath.Clean(b), sep)

	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	common := strings.Join(as[:n], sep)
	if common == "" || strings.HasSuffix(common, ":") {
		common += sep
	}
	return common
}
