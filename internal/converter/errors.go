package converter

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/history-converter/internal/types"
)

// Process exit codes, one per fatal error kind.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitInputNotFound     = 2
	ExitAmbiguousInput    = 3
	ExitInputMalformed    = 4
	ExitOutputWriteFailed = 5
)

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, types.ErrInputNotFound):
		return ExitInputNotFound
	case errors.Is(err, types.ErrAmbiguousInput):
		return ExitAmbiguousInput
	case errors.Is(err, types.ErrInputMalformed):
		return ExitInputMalformed
	case errors.Is(err, types.ErrOutputWriteFailed):
		return ExitOutputWriteFailed
	}
	return ExitFailure
}

// SkipError is returned by Normalize for a row that must not be emitted.
// It is recorded in the run result, never propagated as a failure.
type SkipError struct {
	// Reason is one of the types.Reason* constants.
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

func skip(reason string, format string, args ...any) *SkipError {
	return &SkipError{Reason: reason, Err: fmt.Errorf(format, args...)}
}
