package models

import "errors"

var (
	// ErrUnauthenticated is returned when an action requires a signed-in identity.
	ErrUnauthenticated = errors.New("you must be signed in")
	// ErrForbidden is returned when the identity lacks ownership or admin rights.
	ErrForbidden = errors.New("you don't have permission to modify this listing")
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("listing not found")
	// ErrUnavailable is returned when a read against the store fails.
	ErrUnavailable = errors.New("listings are unavailable")
	// ErrRejected is returned when the store refuses a write.
	ErrRejected = errors.New("the store rejected the write")
	// ErrInvalidListing is returned when listing fields fail validation.
	ErrInvalidListing = errors.New("invalid listing data")
	// ErrInvalidCredentials is returned for a wrong email or password, or for
	// sign-up data that cannot form an account.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrConflict is returned when the email is already registered.
	ErrConflict = errors.New("an account with this email already exists")
	// ErrInvalidMessage is returned for empty or over-long contact messages.
	ErrInvalidMessage = errors.New("invalid message")
)
