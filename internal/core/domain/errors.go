package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTarget indicates a malformed or empty publication target.
	// Raised by target resolution before any write happens.
	ErrInvalidTarget = errors.New("invalid publication target")

	// ErrConflict indicates a unique-key collision (document code,
	// publication group code). No partial state is created.
	ErrConflict = errors.New("conflict")

	// ErrNothingToRollback indicates a rollback was requested on a version
	// chain that is already at its first version
	ErrNothingToRollback = errors.New("nothing to roll back to")

	// ErrNotPublished indicates the document is not published to the
	// requesting tenant
	ErrNotPublished = errors.New("document not published to this tenant")

	// ErrForbidden indicates the actor lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenInvalid indicates the actor token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")
)
