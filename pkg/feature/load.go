package feature

import (
	"fmt"
	"path/filepath"
	"sort"
)

// LoadGlobs parses every feature file matched by the globs, deduplicated
// and in sorted path order.
func LoadGlobs(globs []string) ([]*Feature, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, g := range globs {
		matches, err := filepath.Glob(g)
		if err != nil {
			return nil, fmt.Errorf("bad feature glob %q: %w", g, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	features := make([]*Feature, 0, len(paths))
	for _, p := range paths {
		f, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}
