package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the only error type services hand back to transport code. Message is safe
// to show to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and message so sentinel values work with errors.Is even after
// being wrapped with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func Invalid(msg string) *Error      { return &Error{Kind: KindInvalid, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }

// Internal wraps a storage or infrastructure failure behind a generic message.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

var (
	ErrJobNotFound         = NotFound("job not found")
	ErrUserNotFound        = NotFound("user not found")
	ErrApplicationNotFound = NotFound("application not found")
	ErrJobNotOpen          = Invalid("job is not accepting applications")
	ErrAlreadyApplied      = Invalid("already applied")
	ErrEmailTaken          = Conflict("email already exists")
	ErrInvalidCredentials  = Unauthorized("invalid credentials")
	ErrInvalidToken        = Unauthorized("invalid or expired token")
	ErrWrongPassword       = Invalid("current password is incorrect")
	ErrPasswordTooShort    = Invalid(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	ErrNotOwner            = Forbidden("unauthorized access")
)

const MinPasswordLength = 6

// KindOf reports the kind of err, KindInternal for anything that is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
