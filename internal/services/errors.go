package services

import "errors"

var (
	// ErrMissingFields is returned when required input is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidRole is returned for a role outside the enumerated set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAdmin is returned when a non-admin account tries to sign in.
	ErrNotAdmin = errors.New("admins only")
	// ErrEmailTaken is returned when another user already has the email.
	ErrEmailTaken = errors.New("a user with this email already exists")
	// ErrExportUnavailable is returned when no object storage is configured.
	ErrExportUnavailable = errors.New("export storage not configured")
)
