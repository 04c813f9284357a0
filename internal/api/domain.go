package api

import "errors"

// Sentinel errors shared across the api packages. Repositories and services
// wrap these with fmt.Errorf("...: %w", ...) so handlers can map them to
// HTTP statuses with errors.Is.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken means a case-insensitive match for the requested
	// username already exists.
	ErrUsernameTaken = errors.New("username taken")

	// ErrPasswordMismatch means the password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrMissingCredentials means the registration form left the username
	// or password blank.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrUserNotFound means no account exists for the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrBadCredentials means the account exists but the password is wrong.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrForbidden means the acting user is not allowed to mutate the
	// record (ownership enforcement, when enabled).
	ErrForbidden = errors.New("forbidden")
)
