package registry

import (
	"net/url"
	"strings"
	"sync"
)

// Rejections tracks URLs that must never resolve to a handler, keyed by
// every addressing variant of the URL. The first reason recorded for a
// key wins; later additions for the same key are ignored.
type Rejections struct {
	mu      sync.RWMutex
	reasons map[string]string
}

// NewRejections creates an empty rejection set.
func NewRejections() *Rejections {
	return &Rejections{
		reasons: make(map[string]string),
	}
}

// Add records a rejection reason under the URL itself, its www-stripped
// form, and the hostnames of both.
func (r *Rejections) Add(sourceURL, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	noWWW := stripWWW(sourceURL)
	for _, key := range []string{
		sourceURL,
		noWWW,
		hostnameOf(sourceURL),
		hostnameOf(noWWW),
	} {
		if key == "" {
			continue
		}
		if _, exists := r.reasons[key]; !exists {
			r.reasons[key] = reason
		}
	}
}

// Merge adds every entry of the given map. Existing reasons are kept.
func (r *Rejections) Merge(reasons map[string]string) {
	for sourceURL, reason := range reasons {
		r.Add(sourceURL, reason)
	}
}

// Reason returns the stored reason for an exact key, if any. No variant
// expansion happens at lookup time.
func (r *Rejections) Reason(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reason, ok := r.reasons[key]
	return reason, ok
}

// Len returns the number of recorded keys.
func (r *Rejections) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.reasons)
}

// Clear removes all recorded rejections.
func (r *Rejections) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reasons = make(map[string]string)
}

// stripWWW removes the first "www." right after the scheme separator.
func stripWWW(sourceURL string) string {
	return strings.Replace(sourceURL, "://www.", "://", 1)
}

// hostnameOf extracts the hostname of a URL, or "" when it cannot be
// parsed.
func hostnameOf(sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
