package identity

import (
	"errors"
	"fmt"
)

// Code is the machine-readable reason of an identity failure.
type Code string

const (
	CodeUserNotFound        Code = "user-not-found"
	CodeWrongPassword       Code = "wrong-password"
	CodeInvalidEmail        Code = "invalid-email"
	CodeWeakPassword        Code = "weak-password"
	CodeEmailInUse          Code = "email-already-in-use"
	CodeRequiresRecentLogin Code = "requires-recent-login"
	CodeInvalidCode         Code = "invalid-code"
	CodeUnauthenticated     Code = "unauthenticated"
	CodeInternal            Code = "internal"
)

// Error is a coded identity failure. Detail is human-readable and may be
// shown to the user.
type Error struct {
	Code   Code
	Detail string
}

func NewError(code Code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("identity: %s", e.Code)
	}
	return fmt.Sprintf("identity: %s (%s)", e.Detail, e.Code)
}

// Is matches any *Error with the same code, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrUserNotFound        = &Error{Code: CodeUserNotFound}
	ErrWrongPassword       = &Error{Code: CodeWrongPassword}
	ErrInvalidEmail        = &Error{Code: CodeInvalidEmail}
	ErrWeakPassword        = &Error{Code: CodeWeakPassword}
	ErrEmailInUse          = &Error{Code: CodeEmailInUse}
	ErrRequiresRecentLogin = &Error{Code: CodeRequiresRecentLogin}
	ErrInvalidCode         = &Error{Code: CodeInvalidCode}
	ErrUnauthenticated     = &Error{Code: CodeUnauthenticated}
)

// CodeOf extracts the code of err, or "" when err is not an identity error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// DetailOf returns the human-readable part of err.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}
