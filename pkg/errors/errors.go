package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInputAccess     = errors.New("input not accessible")
	ErrOutput          = errors.New("output write failed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStoreFrozen     = errors.New("frequency store is frozen")
	ErrSinkUnavailable = errors.New("report sink unavailable")
	ErrInternal        = errors.New("internal error")
)

// Process exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInput       = 3
	ExitOutput      = 4
	ExitUnavailable = 5
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// Is and As re-export the standard helpers so callers importing this package
// under the name errors keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrInputAccess):
		return ExitInput
	case errors.Is(err, ErrOutput):
		return ExitOutput
	case errors.Is(err, ErrSinkUnavailable):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
