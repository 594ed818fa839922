package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/domain/repositories"
	"github.com/devilmonastery/curator/internal/pkg/idgen"
	"github.com/devilmonastery/curator/internal/pkg/metrics"
)

// uniqueViolation is the postgres error code for unique-constraint failures
const uniqueViolation = "23505"

// UserRepository implements the UserRepository interface for PostgreSQL
type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repositories.UserRepository {
	return &UserRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
	}
}

// userRow represents a user as stored in the database
type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	DisplayName  string         `db:"name"` // database column is 'name'
	PasswordHash sql.NullString `db:"password_hash"`
	Role         string         `db:"role"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// toEntity converts a userRow to a domain entity
func (r *userRow) toEntity() *entities.User {
	user := &entities.User{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        entities.Role(r.Role),
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.PasswordHash.Valid {
		user.PasswordHash = &r.PasswordHash.String
	}

	return user
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	start := time.Now()

	if user.ID == "" {
		user.ID = idgen.GenerateID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = entities.RoleUser
	}

	var passwordHash sql.NullString
	if user.PasswordHash != nil {
		passwordHash = sql.NullString{String: *user.PasswordHash, Valid: true}
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.DisplayName, passwordHash,
		string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	metrics.RecordDBOperation("user", "create", time.Since(start), err)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repositories.ErrDuplicateUser
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created", slog.String("user_id", user.ID))
	return nil
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	start := time.Now()

	var row userRow
	query := `
		SELECT id, email, name, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &row, query, id)
	metrics.RecordDBOperation("user", "get", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return row.toEntity(), nil
}

// GetByEmail retrieves a user by their email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	start := time.Now()

	var row userRow
	query := `
		SELECT id, email, name, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	err := r.db.GetContext(ctx, &row, query, email)
	metrics.RecordDBOperation("user", "get_by_email", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return row.toEntity(), nil
}

// ExistsByEmail checks if a user exists by email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	start := time.Now()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	err := r.db.GetContext(ctx, &exists, query, email)
	metrics.RecordDBOperation("user", "exists_by_email", time.Since(start), err)

	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
