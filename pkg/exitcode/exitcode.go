// Package exitcode provides standardized exit codes for manifold
package exitcode

import "errors"

// Exit codes for manifold CLI
const (
	Success           = 0
	GeneralError      = 1
	ConfigError       = 2
	ValidationError   = 3
	FileSystemError   = 4
	UnsupportedFormat = 8
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case UnsupportedFormat:
		return "Unsupported format"
	default:
		return "Unknown error"
	}
}

// Error carries the process exit code for a failed command.
type Error struct {
	Code int
	Err  error
}

// New wraps err with an exit code.
func New(code int, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the exit code for err: Success for nil, the carried code for
// an *Error anywhere in the chain and GeneralError otherwise.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	return GeneralError
}
