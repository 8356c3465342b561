package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository backed by Postgres.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, username, hashed_password, is_admin) VALUES ($1, $2, $3, $4)",
		u.ID, u.Username, u.HashedPassword, u.IsAdmin,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return entity.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "SELECT id, username, hashed_password, is_admin FROM users WHERE id = $1", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "SELECT id, username, hashed_password, is_admin FROM users WHERE username = $1", username)
}

func (r *userRepository) findOne(ctx context.Context, query, arg string) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.HashedPassword, &u.IsAdmin)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
