// Package errors defines all exported error sentinels for the bytetable library.
//
// This is the single source of truth for error values. The top-level
// bytetable package reports every rejected call through one of these
// sentinels, so callers can discriminate failure modes with errors.Is.
package errors

import "errors"

// Construction errors
var (
	ErrInvalidCapacity = errors.New("bytetable: capacity hint must not be negative")
)

// Operation errors
var (
	ErrNilTable    = errors.New("bytetable: table is nil")
	ErrTableClosed = errors.New("bytetable: table is closed")
	ErrEmptyKey    = errors.New("bytetable: key must not be empty")
)
