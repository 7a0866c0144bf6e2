package store

import "errors"

// Sentinel errors returned by store mutations. Mutations never leave a
// collection partially modified: when one of these is returned, state is
// exactly as it was before the call.
var (
	// ErrNotFound is returned by update/delete when no record matches
	// the given id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when adding a user whose id or
	// username collides with an existing record.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotAuthenticated is returned when adding a task with no
	// active session.
	ErrNotAuthenticated = errors.New("not authenticated")
)
