package handler

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAFile indicates that a handler path does not reference an
	// existing regular file.
	ErrNotAFile = errors.New("handler path is not a file")

	// ErrMissingRequiredMember indicates a handler without one of the
	// required extraction operations.
	ErrMissingRequiredMember = errors.New("required handler member missing or not callable")

	// ErrInvalidBaseURL indicates a handler base URL that does not match
	// the required scheme://host/path pattern.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrNotSupported indicates a call to an optional operation the
	// handler does not implement.
	ErrNotSupported = errors.New("operation not supported by this handler")
)

// LoadError indicates that a handler file could not be loaded at all.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load handler file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ValidationError indicates that a handler file violates the contract;
// the whole file is rejected and no handlers from it are registered.
type ValidationError struct {
	Path    string
	Handler string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("handler %q in %s: %v", e.Handler, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
