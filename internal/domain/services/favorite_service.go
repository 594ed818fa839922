package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/repositories"
)

// FavoriteService handles the persisted favorites collection
type FavoriteService struct {
	favorites repositories.FavoriteRepository
	log       *slog.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(favorites repositories.FavoriteRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		log:       slog.Default().With(slog.String("service", "favorite")),
	}
}

// Create validates and persists a favorite scoped to userID
func (s *FavoriteService) Create(ctx context.Context, userID, title string, favType entities.FavoriteType, metadata json.RawMessage) (*entities.Favorite, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if !favType.Valid() {
		return nil, ErrInvalidFavoriteType
	}

	favorite := &entities.Favorite{
		UserID:   userID,
		Title:    title,
		Type:     favType,
		Metadata: metadata,
	}

	if err := s.favorites.Create(ctx, favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

// List returns all favorites for userID, newest first
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*entities.Favorite, error) {
	return s.favorites.ListByUser(ctx, userID)
}

// Delete removes a favorite owned by userID. Deleting someone else's favorite
// fails with repositories.ErrFavoriteNotFound, same as a missing row.
func (s *FavoriteService) Delete(ctx context.Context, id, userID string) error {
	return s.favorites.Delete(ctx, id, userID)
}

// Check reports whether (title, type) is already favorited by userID, and the
// row id when it is.
func (s *FavoriteService) Check(ctx context.Context, userID, title string, favType entities.FavoriteType) (bool, string, error) {
	favorite, err := s.favorites.Find(ctx, userID, title, favType)
	if errors.Is(err, repositories.ErrFavoriteNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, favorite.ID, nil
}
