// Package common defines shared constants and sentinel errors used across
// the server layers of scriptkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors.
	ErrStorage    = errors.New("database error occurred")
	ErrValidation = errors.New("validation error")

	// Authentication errors. They all surface as 401 but keep distinct
	// messages so that logs can tell them apart.
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserNotFound       = errors.New("user not found")

	// Authorization errors.
	ErrSelfActionRequired = errors.New("this action can only be performed on your own account")
)
