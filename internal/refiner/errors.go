package refiner

import (
	"context"
	"errors"
)

var (
	// ErrCLINotFound is returned when the claude binary cannot be located.
	ErrCLINotFound = errors.New("claude CLI not found")
	// ErrMissingCredential is returned when the API key variable is unset.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("empty completion")
)

// Error describes a failed completion call.
type Error struct {
	Op        string // provider operation, e.g. "claude", "openai"
	Err       error  // underlying error
	Details   string // extra context such as stderr or an HTTP status
	Retryable bool   // whether the call may succeed if repeated
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is worth retrying. Context cancellation
// never is; a deadline on a single attempt is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}
