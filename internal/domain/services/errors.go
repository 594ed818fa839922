package services

import "errors"

// Service-level errors, mapped to HTTP statuses at the handler boundary
var (
	// ErrInvalidCredentials is returned when email/password authentication fails.
	// It deliberately does not distinguish unknown users from wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailRequired is returned when registration is missing an email
	ErrEmailRequired = errors.New("email is required")

	// ErrPasswordTooShort is returned when a registration password is under the minimum
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrTitleRequired is returned when a favorite is created without a title
	ErrTitleRequired = errors.New("title is required")

	// ErrInvalidFavoriteType is returned when the favorite type is not one of
	// MUSIC, MOVIE, GAME, BOOK, ART, OTHER
	ErrInvalidFavoriteType = errors.New("invalid favorite type")
)

// IsValidationError reports whether err is a client-input problem (HTTP 400)
// rather than an internal failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidFavoriteType)
}
