// Package manifest cross-checks documented endpoints against an externally
// supplied list of expected "METHOD URL" identifiers.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/broady/apidoc"
)

// Parse decodes a manifest document: a YAML or JSON sequence of "METHOD URL"
// strings. Entries are kept as written. Every entry without exactly two
// fields is reported in a *apidoc.ManifestError.
func Parse(data []byte) ([]string, error) {
	var raw []string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	ids := make([]string, 0, len(raw))
	var invalid []apidoc.Problem
	for i, entry := range raw {
		if len(strings.Fields(entry)) != 2 {
			invalid = append(invalid, &apidoc.InvalidManifestEntry{Index: i, Value: entry})
			continue
		}
		ids = append(ids, entry)
	}
	if len(invalid) > 0 {
		return nil, &apidoc.ManifestError{Invalid: invalid}
	}
	return ids, nil
}

// Load reads and parses the manifest file at path.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	ids, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ids, nil
}

// Check reports every expected identifier that does not equal the
// "METHOD URL" of a registered endpoint. The error is a *apidoc.ManifestError.
func Check(expected []string, reg *apidoc.Registry) error {
	var missing []apidoc.Problem
	for _, id := range expected {
		method, url, _ := strings.Cut(id, " ")
		if !reg.Has(method, url) {
			missing = append(missing, &apidoc.ManifestMismatch{Identifier: id})
		}
	}
	if len(missing) > 0 {
		return &apidoc.ManifestError{Missing: missing}
	}
	return nil
}
