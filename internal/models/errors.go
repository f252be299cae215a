package models

import "errors"

// Domain errors shared by repositories, services and handlers.
// Handlers map these to HTTP status codes with errors.Is.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates bad or missing input fields
	ErrValidation = errors.New("validation failed")

	// ErrMissingAsset indicates a required file upload was not provided
	ErrMissingAsset = errors.New("required file is missing")

	// ErrConflict indicates a duplicate unique field, e.g. username or email
	ErrConflict = errors.New("already exists")

	// ErrForbidden indicates the operation is not allowed for this principal
	ErrForbidden = errors.New("forbidden")

	// ErrProtectedUser indicates an attempt to delete the default admin account
	ErrProtectedUser = errors.New("cannot delete the default admin user")

	// ErrOwnAccount indicates an admin attempted to delete their own account
	ErrOwnAccount = errors.New("cannot delete your own account")
)
