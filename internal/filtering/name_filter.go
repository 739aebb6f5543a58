// Package filtering provides glob-based include/exclude filtering of
// catalog handler ids.
package filtering

import (
	"fmt"

	"github.com/gobwas/glob"
)

// NameFilter handles handler-id filtering using glob patterns
type NameFilter interface {
	// ShouldInclude determines if a handler id should be included based on
	// include/exclude patterns. Returns (shouldInclude bool, reason string)
	ShouldInclude(id string, include, exclude []string) (bool, string)
}

// defaultNameFilter implements name filtering using glob patterns
type defaultNameFilter struct{}

var _ NameFilter = (*defaultNameFilter)(nil)

// NewDefaultNameFilter creates a new defaultNameFilter
func NewDefaultNameFilter() NameFilter {
	return &defaultNameFilter{}
}

// matchPattern matches a glob pattern against an id. gobwas/glob supports
// * matching across separators, unlike filepath.Match.
func matchPattern(pattern, id string) (bool, error) {
	compiled, err := glob.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid glob pattern: %v", err)
	}
	return compiled.Match(id), nil
}

// ShouldInclude determines if a handler id should be included.
//
// Logic:
// 1. If the id matches any exclude pattern -> exclude (exclude takes precedence)
// 2. If include patterns are specified and the id matches any -> include
// 3. If include patterns are specified and the id matches none -> exclude
// 4. If only exclude patterns are specified and the id matches none -> include
// 5. If no patterns are specified -> include (default behavior)
func (*defaultNameFilter) ShouldInclude(id string, include, exclude []string) (bool, string) {
	for _, pattern := range exclude {
		matches, err := matchPattern(pattern, id)
		if err != nil {
			return false, fmt.Sprintf("invalid exclude pattern '%s': %v", pattern, err)
		}
		if matches {
			return false, fmt.Sprintf("excluded by pattern '%s'", pattern)
		}
	}

	if len(include) > 0 {
		for _, pattern := range include {
			matches, err := matchPattern(pattern, id)
			if err != nil {
				return false, fmt.Sprintf("invalid include pattern '%s': %v", pattern, err)
			}
			if matches {
				return true, fmt.Sprintf("included by pattern '%s'", pattern)
			}
		}
		return false, fmt.Sprintf("no match found in include patterns %v", include)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no match in exclude patterns %v", exclude)
	}
	return true, "no name filters specified"
}
