package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport-layer mapping.
type ErrorKind string

const (
	KindUnknown          ErrorKind = ""
	KindValidation       ErrorKind = "validation"
	KindNotFound         ErrorKind = "not_found"
	KindForbidden        ErrorKind = "forbidden"
	KindInvalidState     ErrorKind = "invalid_state"
	KindConflict         ErrorKind = "conflict"
	KindUnsupportedState ErrorKind = "unsupported_state"
)

// Error is a typed domain error carrying a kind and a user-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target has the same kind, so errors.Is works with sentinels.
func (e *Error) Is(target error) bool {
	var de *Error
	if !errors.As(target, &de) {
		return false
	}
	return e.Kind == de.Kind
}

// NewValidationError creates an error for malformed or invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity. Denied reads reuse
// this kind so callers cannot distinguish "hidden" from "absent".
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewForbiddenError creates an error for an actor lacking authority.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewInvalidStateError creates an error for a mutation against the wrong state.
func NewInvalidStateError(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewUnsupportedStateError creates an error for an unrecognized listing state filter.
func NewUnsupportedStateError(state string) *Error {
	return &Error{Kind: KindUnsupportedState, Message: fmt.Sprintf("Unknown state: %s", state)}
}

// KindOf returns the kind of err if it is (or wraps) a domain Error, or
// KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
