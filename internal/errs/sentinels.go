// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/repo/service layers.
var (
	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials at login).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates the username is already used by a user or an admin.
	ErrAlreadyExists = errors.New("already exists")

	// ErrDuplicateTitle indicates a course with the same title exists.
	ErrDuplicateTitle = errors.New("duplicate title")

	// ErrAlreadyPurchased indicates the user already owns the course.
	ErrAlreadyPurchased = errors.New("already purchased")

	// ErrStoreUnreadable indicates a collection document is missing or malformed.
	ErrStoreUnreadable = errors.New("store unreadable")
)
