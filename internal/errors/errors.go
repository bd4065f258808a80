// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure surfaced by login, logout and status carries a machine-readable
// Kind so callers can branch on it without parsing messages.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// PathNotWritable indicates the session directory cannot be created or written.
	PathNotWritable Kind = "path_not_writable"
	// ConnectFailure indicates the remote service could not be reached.
	ConnectFailure Kind = "connect_failure"
	// AccountNotActive indicates valid credentials for an account that is not activated.
	AccountNotActive Kind = "account_not_active"
	// InternalServerError indicates a successful login that did not issue a session cookie.
	InternalServerError Kind = "internal_server_error"
	// BadCredentials indicates the server rejected the username or password.
	BadCredentials Kind = "bad_credentials"
	// LoginServerError indicates an unexpected login response.
	LoginServerError Kind = "login_server_error"
	// LogoutServerError indicates the server refused or garbled a logout.
	LogoutServerError Kind = "logout_server_error"
	// CorruptSessionFile is advisory only; it is attached to a repaired record and never returned.
	CorruptSessionFile Kind = "corrupt_session_file"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same Kind, so errors.Is(err, New(BadCredentials, ""))
// matches regardless of message.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
