package scheduling

import (
	"errors"
	"fmt"
)

// Kind classifies a scheduling failure; handlers map it onto an HTTP status.
type Kind string

const (
	KindInvalidDate         Kind = "invalidDate"
	KindInvalidRange        Kind = "invalidRange"
	KindMissingField        Kind = "missingField"
	KindInvalidPolicy       Kind = "invalidPolicy"
	KindInvalidSlot         Kind = "invalidSlot"
	KindNotFound            Kind = "notFound"
	KindSlotUnavailable     Kind = "slotUnavailable"
	KindUpstreamUnavailable Kind = "upstreamUnavailable"
	KindUnauthorized        Kind = "unauthorized"
)

// Error carries a user-safe Message; Err keeps the underlying cause for operators.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Details returns the cause text, if any.
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newError(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// ErrUnauthorized is returned by admin authorizers.
var ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}

// KindOf extracts the Kind of err, or "" when err is not a scheduling error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err is a scheduling error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
