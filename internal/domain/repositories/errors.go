package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when a user with the same email already exists
	ErrDuplicateUser = errors.New("user already exists")

	// ErrFavoriteNotFound is returned when a favorite cannot be found or is
	// not owned by the requesting user
	ErrFavoriteNotFound = errors.New("favorite not found")
)
