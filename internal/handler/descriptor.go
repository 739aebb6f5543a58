package handler

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultDisableReason is used when a disabled handler does not state one.
const DefaultDisableReason = "Source is disabled"

// Descriptor is the immutable, derived metadata for one loaded handler.
// It wraps the compiled script value instead of attaching metadata to it.
type Descriptor struct {
	// Name is the top-level binding that declared the handler.
	Name string

	// BaseURLs are the normalized base URLs, lowercase with a trailing
	// slash, deduplicated and sorted.
	BaseURLs []string

	// Language is the language tag inferred from the file path, or empty.
	Language string

	// FilePath is the absolute path of the handler file.
	FilePath string

	// Capability flags: true iff the handler supplies the corresponding
	// optional operation.
	CanLogin  bool
	CanLogout bool
	CanSearch bool

	// Disabled marks a handler whose base URLs must be rejected.
	Disabled bool

	// DisableReason is the stated or default reason for a disabled handler.
	DisableReason string

	script *scriptHandler
}

// baseURLPattern is the strict scheme://non-whitespace-host/path shape
// every normalized base URL must match.
var baseURLPattern = regexp.MustCompile(`(?i)^(https?|ftp)://[^\s/$.?#].\S*$`)

// NormalizeBaseURL lowercases a base URL and guarantees a single trailing
// slash. Surrounding whitespace is not stripped; a URL with stray spaces
// fails the pattern check instead.
func NormalizeBaseURL(u string) string {
	return strings.Trim(strings.ToLower(u), "/") + "/"
}

// normalizeBaseURLs normalizes, deduplicates, and sorts a raw URL list.
func normalizeBaseURLs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		n := NormalizeBaseURL(u)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		urls = append(urls, n)
	}
	sort.Strings(urls)
	return urls
}
