package registry

import "fmt"

// RejectedSourceError indicates that the requested URL is explicitly
// denied. It carries the stored reason and is returned to the caller, not
// logged as a bug.
type RejectedSourceError struct {
	URL    string
	Reason string
}

func (e *RejectedSourceError) Error() string {
	return fmt.Sprintf("source is rejected: %s (reason: %s)", e.URL, e.Reason)
}

// NotFoundError indicates that no handler matches the hostname.
type NotFoundError struct {
	Hostname string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no handler found for %s", e.Hostname)
}

// InvalidURLError indicates an input URL without a usable hostname.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("no hostname in URL: %s", e.URL)
}
