package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"todolists/models"
	"todolists/services/sessions"
)

// viewerResolver identifies the viewer behind a request.
type viewerResolver interface {
	Viewer(r *http.Request) models.Viewer
}

type sessionManager interface {
	Create(ctx context.Context, userID int64) (sessions.Session, error)
	Resolve(ctx context.Context, token string) (models.Viewer, error)
	Revoke(ctx context.Context, token string) error
}

var _ sessionManager = (*sessions.Manager)(nil)

// SessionAuth resolves viewers from the session cookie and issues or clears it.
type SessionAuth struct {
	Sessions   sessionManager
	CookieName string
	Secure     bool
}

var _ viewerResolver = (*SessionAuth)(nil)

// NewSessionAuth creates cookie-based authentication on top of a session manager.
func NewSessionAuth(mgr sessionManager, cookieName string, secure bool) *SessionAuth {
	return &SessionAuth{Sessions: mgr, CookieName: cookieName, Secure: secure}
}

// Viewer returns the identified viewer or anonymous when there is no valid session.
func (a *SessionAuth) Viewer(r *http.Request) models.Viewer {
	cookie, err := r.Cookie(a.CookieName)
	if err != nil || cookie.Value == "" {
		return models.Anonymous()
	}
	viewer, err := a.Sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			log.Printf("[auth] session lookup failed: %v", err)
		}
		return models.Anonymous()
	}
	return viewer
}

// Login issues a session for the user and sets the cookie.
func (a *SessionAuth) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	s, err := a.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout revokes the current session, if any, and clears the cookie.
func (a *SessionAuth) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(a.CookieName); err == nil && cookie.Value != "" {
		if err := a.Sessions.Revoke(r.Context(), cookie.Value); err != nil {
			log.Printf("[auth] revoke session failed: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
