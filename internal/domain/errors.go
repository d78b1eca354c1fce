package domain

import "errors"

var (
	// ErrNotFound: the id/session combination does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrInvalidSession: the declared session identifier is not a UUID.
	ErrInvalidSession = errors.New("invalid session id")
	// ErrSessionMismatch: a request embedded a session that differs from the
	// caller-declared one.
	ErrSessionMismatch = errors.New("session id mismatch")
	// ErrUnavailable: the persistence backend never initialized or a call to
	// it failed; synchronous paths surface this, background paths swallow it.
	ErrUnavailable = errors.New("backend unavailable")
)
