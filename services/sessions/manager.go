// Package sessions issues and resolves login session tokens.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"todolists/internal/database"
	"todolists/models"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session is an issued login token.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

type sessionStore interface {
	Insert(ctx context.Context, tokenHash string, userID int64, createdAt, expiresAt time.Time) error
	Lookup(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var _ sessionStore = (*database.SessionRepository)(nil)

// Manager issues, resolves and purges sessions.
type Manager struct {
	store    sessionStore
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

// NewManager returns a manager issuing sessions valid for ttl.
func NewManager(store sessionStore, ttl time.Duration) *Manager {
	return &Manager{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		newToken: newToken,
	}
}

// Create issues a new session for the user. Only the token's hash is stored;
// the returned Session carries the token itself for the cookie.
func (m *Manager) Create(ctx context.Context, userID int64) (Session, error) {
	token, err := m.newToken()
	if err != nil {
		return Session{}, err
	}
	now := m.now()
	s := Session{Token: token, UserID: userID, ExpiresAt: now.Add(m.ttl)}
	if err := m.store.Insert(ctx, hashToken(token), userID, now, s.ExpiresAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Resolve maps a token to the viewer it was issued for.
func (m *Manager) Resolve(ctx context.Context, token string) (models.Viewer, error) {
	if token == "" {
		return models.Anonymous(), ErrSessionNotFound
	}
	user, err := m.store.Lookup(ctx, hashToken(token), m.now())
	if errors.Is(err, database.ErrNotFound) {
		return models.Anonymous(), ErrSessionNotFound
	}
	if err != nil {
		return models.Anonymous(), err
	}
	return models.ViewerFor(*user), nil
}

// Revoke invalidates a token.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.store.Delete(ctx, hashToken(token))
}

// PurgeExpired deletes expired sessions and returns how many were removed.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// RunPurger purges expired sessions every interval until ctx is done.
func (m *Manager) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.PurgeExpired(ctx)
			if err != nil {
				log.Printf("[sessions] %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[sessions] purged %d expired session(s)", n)
			}
		}
	}
}
