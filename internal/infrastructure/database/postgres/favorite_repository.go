package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/repositories"
	"github.com/devilmonastery/curator/internal/pkg/idgen"
	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// FavoriteRepository implements the FavoriteRepository interface for PostgreSQL
type FavoriteRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewFavoriteRepository creates a new PostgreSQL favorite repository
func NewFavoriteRepository(db *sqlx.DB) repositories.FavoriteRepository {
	return &FavoriteRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "favorite")),
	}
}

// favoriteRow represents a favorite as stored in the database
type favoriteRow struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Title     string          `db:"title"`
	Type      string          `db:"type"`
	Metadata  json.RawMessage `db:"metadata"` // JSONB, may be NULL
	CreatedAt time.Time       `db:"created_at"`
}

// toEntity converts a favoriteRow to a domain entity
func (r *favoriteRow) toEntity() *entities.Favorite {
	return &entities.Favorite{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Type:      entities.FavoriteType(r.Type),
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
}

// Create persists a new favorite row
func (r *FavoriteRepository) Create(ctx context.Context, favorite *entities.Favorite) error {
	start := time.Now()

	if favorite.ID == "" {
		favorite.ID = idgen.GenerateID()
	}
	favorite.CreatedAt = time.Now()

	// Metadata column is JSONB; an absent blob is stored as NULL, not "null"
	var metadata interface{}
	if len(favorite.Metadata) > 0 {
		metadata = []byte(favorite.Metadata)
	}

	query := `
		INSERT INTO favorites (id, user_id, title, type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		favorite.ID, favorite.UserID, favorite.Title, string(favorite.Type),
		metadata, favorite.CreatedAt,
	)
	metrics.RecordDBOperation("favorite", "create", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	r.log.Info("favorite created",
		slog.String("favorite_id", favorite.ID),
		slog.String("user_id", favorite.UserID),
		slog.String("type", string(favorite.Type)))
	return nil
}

// ListByUser returns all favorites for a user, newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Favorite, error) {
	start := time.Now()

	query := `
		SELECT id, user_id, title, type, metadata, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var rows []favoriteRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	metrics.RecordDBOperation("favorite", "list", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favorites := make([]*entities.Favorite, 0, len(rows))
	for i := range rows {
		favorites = append(favorites, rows[i].toEntity())
	}
	return favorites, nil
}

// Delete removes a favorite owned by userID. The ownership check is part of
// the WHERE clause so a cross-user delete touches zero rows.
func (r *FavoriteRepository) Delete(ctx context.Context, id, userID string) error {
	start := time.Now()

	query := `DELETE FROM favorites WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	metrics.RecordDBOperation("favorite", "delete", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repositories.ErrFavoriteNotFound
	}

	r.log.Info("favorite deleted",
		slog.String("favorite_id", id),
		slog.String("user_id", userID))
	return nil
}

// Find returns the favorite matching (userID, title, type)
func (r *FavoriteRepository) Find(ctx context.Context, userID, title string, favType entities.FavoriteType) (*entities.Favorite, error) {
	start := time.Now()

	var row favoriteRow
	query := `
		SELECT id, user_id, title, type, metadata, created_at
		FROM favorites
		WHERE user_id = $1 AND title = $2 AND type = $3
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &row, query, userID, title, string(favType))
	metrics.RecordDBOperation("favorite", "find", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrFavoriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find favorite: %w", err)
	}

	return row.toEntity(), nil
}
