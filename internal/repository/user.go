package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository read-only access to accounts owned by the account service
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates the user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Exists checks that the account exists
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}
