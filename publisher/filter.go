package publisher

import (
	"fmt"

	"github.com/gobwas/glob"
)

// GlobFilter filters markers by name using glob patterns
type GlobFilter struct {
	nameGlobs []glob.Glob
}

// NewGlobFilter creates a new glob-based filter.
// An empty pattern list matches every marker.
func NewGlobFilter(patterns []string) (*GlobFilter, error) {
	filter := &GlobFilter{
		nameGlobs: make([]glob.Glob, 0, len(patterns)),
	}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid marker name pattern %q: %w", pattern, err)
		}
		filter.nameGlobs = append(filter.nameGlobs, g)
	}

	return filter, nil
}

// Match returns true if the marker name matches any configured pattern.
// If no patterns are configured, all markers match.
func (f *GlobFilter) Match(name string) bool {
	if len(f.nameGlobs) == 0 {
		return true
	}

	for _, g := range f.nameGlobs {
		if g.Match(name) {
			return true
		}
	}

	return false
}
