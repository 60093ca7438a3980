// Package apperror defines the closed set of business error kinds returned by
// the core services. Callers branch on Kind instead of matching message text;
// anything outside this set is an infrastructure failure and is wrapped as
// KindInternal so it stays distinguishable from expected business outcomes.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the recoverable business categories.
type Kind int

const (
	// KindInternal covers storage and other infrastructure failures.
	KindInternal Kind = iota
	// KindValidation marks malformed input: non-positive quantity, negative
	// cash, missing required notes.
	KindValidation
	// KindInsufficientStock marks a movement that would drive quantity negative.
	KindInsufficientStock
	// KindConflict marks a duplicate open shift for a (cashier, register) scope.
	KindConflict
	// KindInvalidState marks an operation against an already-closed session.
	KindInvalidState
	// KindNotFound marks a reference to a key or session that does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a kind and a caller-safe message. The wrapped cause, if any,
// is for logs only and must never reach an HTTP response.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an infrastructure failure with a caller-safe message.
func Internal(cause error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// KindOf extracts the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
