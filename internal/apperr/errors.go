// Package apperr defines sentinel errors shared across the pipeline and API.
package apperr

import "errors"

var (
	// ErrInvalidInput means the supplied file is not a recognized document.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtractionFailed means the document yielded no readable text.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrServiceUnavailable means no analysis backend could process the document.
	ErrServiceUnavailable = errors.New("analysis service unavailable")
	// ErrBackend wraps a network or API-level failure from one specific backend.
	// The router recovers from it by falling through to the next backend.
	ErrBackend = errors.New("backend error")
	// ErrParsing means a backend returned a malformed response. Fatal to that
	// backend's attempt, not to the whole pipeline.
	ErrParsing = errors.New("parsing error")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
