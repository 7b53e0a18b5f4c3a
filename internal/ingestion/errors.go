// Package ingestion loads search snippets from JSON payloads, saved result
// pages and live search URLs.
package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrUnsupportedFormat is returned for input that is neither JSON nor HTML
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// LoadError describes input that could not be turned into snippets.
type LoadError struct {
	Source  string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load %s: %s", e.Source, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
