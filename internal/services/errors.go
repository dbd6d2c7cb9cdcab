package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP statuses with errors.Is; everything else is treated as internal.
var (
	// ErrValidation marks an empty or malformed required field. No storage
	// call is made once validation fails.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup miss: login with an unregistered email, or
	// a record missing where one was expected.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists marks registration with an email that normalizes to
	// one already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrPersistFailure marks a failed write against the store.
	ErrPersistFailure = errors.New("persist failure")

	// ErrFetchFailure marks a failed read against the store or an upstream
	// HTTP service.
	ErrFetchFailure = errors.New("fetch failure")
)
