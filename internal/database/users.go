package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"todolists/models"
)

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository persists accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository on top of an open connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Insert stores a new user and fills in its ID.
func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, toUnix(u.CreatedAt))
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user id: %w", err)
	}
	u.ID = id
	return nil
}

// GetByUsername looks a user up by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u         models.User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}
