package models

import "github.com/pkg/errors"

// Errors shared across the service. Callers wrap them with context and
// handlers match them with errors.Is.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("bad email or password")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrPermissionNotGranted = errors.New("permission not granted")
	ErrProfileUpstream      = errors.New("profile provider failed")
)
