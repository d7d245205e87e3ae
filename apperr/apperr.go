// Package apperr carries the error kinds the API maps to HTTP statuses:
// not-found, validation, conflict and internal. Kinds survive wrapping.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindInternal
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Message is the client-safe text. For internal errors the wrapped cause is
// excluded; it belongs in logs only.
func (e *Error) Message() string { return e.msg }

func NotFound(format string, args ...any) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

func Internal(err error, msg string) error {
	return &Error{kind: KindInternal, msg: msg, err: err}
}

// KindOf classifies err, looking through wrapping. Anything that is not an
// *Error is treated as internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err; unclassified errors get
// a generic one so internals never leak.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.msg
	}
	return "something went wrong"
}
