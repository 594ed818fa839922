package entities

import (
	"encoding/json"
	"time"
)

// FavoriteType categorizes a saved favorite
type FavoriteType string

const (
	FavoriteMusic FavoriteType = "MUSIC"
	FavoriteMovie FavoriteType = "MOVIE"
	FavoriteGame  FavoriteType = "GAME"
	FavoriteBook  FavoriteType = "BOOK"
	FavoriteArt   FavoriteType = "ART"
	FavoriteOther FavoriteType = "OTHER"
)

// Valid reports whether t is one of the known favorite types
func (t FavoriteType) Valid() bool {
	switch t {
	case FavoriteMusic, FavoriteMovie, FavoriteGame, FavoriteBook, FavoriteArt, FavoriteOther:
		return true
	}
	return false
}

// Favorite represents a user-owned saved item. Metadata is the opaque blob
// the client assembled from a search candidate; the server stores it as-is.
type Favorite struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Title     string          `json:"title" db:"title"`
	Type      FavoriteType    `json:"type" db:"type"`
	Metadata  json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
