package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/types"
)

// DB is the slice of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the credential store contract: look up an account by its
// canonical (lowercase) username and create new accounts.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (uuid.UUID, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

// GetUserByUsername fetches an account record. The lookup is
// case-insensitive; usernames are stored lowercase.
func (r *RepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		"SELECT id, username, email, password_hash FROM users WHERE username = lower($1)",
		username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, api.ErrUserNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts an account record and returns its id. The caller is
// responsible for the pre-insert existence check and for lowercasing the
// username.
func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		"INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		id, username, email, passwordHash, time.Now())
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}
