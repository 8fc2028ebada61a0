package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todolists/models"
)

// SessionRepository persists login sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a session repository on top of an open connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert stores a session, keyed by the hash of its token, for a user.
func (r *SessionRepository) Insert(ctx context.Context, tokenHash string, userID int64, createdAt, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		tokenHash, userID, toUnix(createdAt), toUnix(expiresAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Lookup returns the user behind an unexpired session.
func (r *SessionRepository) Lookup(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var (
		u         models.User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.password_hash, u.created_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ? AND s.expires_at > ?`, tokenHash, toUnix(now)).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
