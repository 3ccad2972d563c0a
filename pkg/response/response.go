package response

import (
	"errors"
)

// Error is a domain error that already knows its HTTP status.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// Wrap keeps code but appends the cause to the message, e.g. "Server error: ...".
func Wrap(base error, cause error) error {
	var e *Error
	if !errors.As(base, &e) {
		return errors.Join(base, cause)
	}
	return &Error{Code: e.Code, Err: errors.New(e.Err.Error() + ": " + cause.Error())}
}
