package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error carries a Kind so the HTTP layer can pick a response without
// inspecting messages. Msg is safe to show to the user, Err is not.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return e.Msg + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, a ...any) error {
	return &Error{Kind: kind, Err: err, Msg: fmt.Sprintf(format, a...)}
}

func Validation(format string, a ...any) error {
	return newError(KindValidation, nil, format, a...)
}

func NotFound(format string, a ...any) error {
	return newError(KindNotFound, nil, format, a...)
}

func Forbidden(format string, a ...any) error {
	return newError(KindForbidden, nil, format, a...)
}

func Unauthorized(format string, a ...any) error {
	return newError(KindUnauthorized, nil, format, a...)
}

func Conflict(format string, a ...any) error {
	return newError(KindConflict, nil, format, a...)
}

func WrapNotFound(err error, format string, a ...any) error {
	return newError(KindNotFound, err, format, a...)
}

func WrapInternal(err error, format string, a ...any) error {
	return newError(KindInternal, err, format, a...)
}

// KindOf returns the kind of the outermost *Error in the chain, or
// KindInternal for errors that carry none.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err, if any.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsForbidden(err error) bool  { return KindOf(err) == KindForbidden }
