package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers bad choices, unknown question ids and
	// malformed preferences. Nothing is mutated.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIllegalTransition is an event the current state does not accept.
	ErrIllegalTransition = fmt.Errorf("illegal transition: %w", ErrInvalidInput)
	// ErrNotFound is returned for unknown sessions and assets.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the session changed between read and write.
	ErrConflict = errors.New("session changed concurrently, retry")
	// ErrUnavailable wraps failures of the refiner, name generator or asset
	// generator. The triggering state is unchanged.
	ErrUnavailable = errors.New("downstream capability unavailable")
)

// IsRetryable reports whether the caller may repeat the same request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConflict)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
