package repositories

import (
	"context"

	"github.com/devilmonastery/curator/internal/domain/entities"
)

// FavoriteRepository defines the interface for favorite data access.
// Every operation is scoped by the owning user; there is no way to read or
// mutate another user's rows through this interface.
type FavoriteRepository interface {
	// Create persists a new favorite row
	Create(ctx context.Context, favorite *entities.Favorite) error

	// ListByUser returns all favorites for a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.Favorite, error)

	// Delete removes a favorite. Returns ErrFavoriteNotFound when no row with
	// that id exists or the row belongs to a different user.
	Delete(ctx context.Context, id, userID string) error

	// Find returns the favorite matching (userID, title, type), or
	// ErrFavoriteNotFound. Used for the duplicate-favoriting probe.
	Find(ctx context.Context, userID, title string, favType entities.FavoriteType) (*entities.Favorite, error)
}
