package types

import "errors"

// Fatal error kinds. They are wrapped with context by the package that
// detects them and tested with errors.Is.
var (
	// ErrInputNotFound means no input report was found.
	ErrInputNotFound = errors.New("input not found")

	// ErrAmbiguousInput means the input directory holds more than one report.
	ErrAmbiguousInput = errors.New("ambiguous input")

	// ErrInputMalformed means the report header or content cannot be used.
	ErrInputMalformed = errors.New("input malformed")

	// ErrOutputWriteFailed means the converted file could not be written.
	ErrOutputWriteFailed = errors.New("output write failed")
)
