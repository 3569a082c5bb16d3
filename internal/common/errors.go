// Package common defines shared sentinel errors and small helpers used across
// the recipekeeper stores, services and transports. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorValidation = errors.New("validation error")

	// Account errors.
	ErrorUsernameTaken = errors.New("username already taken")
	// ErrorInvalidCredentials intentionally covers both an unknown username
	// and a wrong password.
	ErrorInvalidCredentials = errors.New("invalid username or password")

	// Storage errors (disk full, permission denied, identifier collision).
	ErrorStorageWrite    = errors.New("storage write failure")
	ErrorAttachmentInUse = errors.New("attachment already referenced")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
)
