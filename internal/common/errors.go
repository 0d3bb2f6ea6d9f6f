// Package common defines shared constants and sentinel errors used across
// client and server layers of GameShelf. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Service-level errors.
	ErrInternal         = errors.New("internal error")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUsernameTaken    = errors.New("username taken")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotConfigured    = errors.New("not configured")

	// Auth errors. Login failures are deliberately undifferentiated: an unknown
	// user and a wrong password both produce ErrInvalidCredentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)
