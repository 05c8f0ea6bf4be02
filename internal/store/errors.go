package store

import "errors"

var (
	// ErrNotFound is returned when an owner-scoped lookup misses. It is
	// deliberately the same error whether the row does not exist at all
	// or belongs to another user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registration hits the unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
)
