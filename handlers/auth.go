package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"todolists/models"
	"todolists/services/users"
	"todolists/utils"
)

type userService interface {
	Register(ctx context.Context, username, password, confirm string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

var _ userService = (*users.Service)(nil)

type loginSessions interface {
	viewerResolver
	Login(w http.ResponseWriter, r *http.Request, user *models.User) error
	Logout(w http.ResponseWriter, r *http.Request)
}

var _ loginSessions = (*SessionAuth)(nil)

// AuthHandler serves registration, login and logout. Each honours a local
// "next" return path.
type AuthHandler struct {
	Users    userService
	Sessions loginSessions
	Render   *Renderer
}

func NewAuthHandler(u userService, s loginSessions, render *Renderer) *AuthHandler {
	return &AuthHandler{Users: u, Sessions: s, Render: render}
}

func nextPath(r *http.Request) string {
	return utils.LocalRedirectPath(r.URL.Query().Get("next"), "/")
}

// Login shows the login form and starts a session on valid credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	viewer := h.Sessions.Viewer(r)
	data := newPage(r, viewer)
	data.Next = nextPath(r)

	if r.Method != http.MethodPost {
		h.Render.Render(w, http.StatusOK, "login.html", data)
		return
	}

	username := r.PostFormValue("username")
	user, err := h.Users.Authenticate(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, users.ErrInvalidCredentials) {
		data.Username = username
		data.Errors["form"] = "Please enter a correct username and password."
		h.Render.Render(w, http.StatusBadRequest, "login.html", data)
		return
	}
	if err != nil {
		log.Printf("[auth] login failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, user, data.Next)
}

// Register shows the registration form, creates the account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	viewer := h.Sessions.Viewer(r)
	data := newPage(r, viewer)
	data.Next = nextPath(r)

	if r.Method != http.MethodPost {
		h.Render.Render(w, http.StatusOK, "register.html", data)
		return
	}

	username := r.PostFormValue("username")
	user, err := h.Users.Register(r.Context(), username, r.PostFormValue("password"), r.PostFormValue("confirm"))
	if err != nil {
		var ferr *users.FieldError
		switch {
		case errors.As(err, &ferr):
			data.Errors[ferr.Field] = ferr.Message
		case errors.Is(err, users.ErrUsernameTaken):
			data.Errors["username"] = "A user with that username already exists."
		default:
			log.Printf("[auth] register failed: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data.Username = username
		h.Render.Render(w, http.StatusBadRequest, "register.html", data)
		return
	}

	h.startSession(w, r, user, data.Next)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, next string) {
	if err := h.Sessions.Login(w, r, user); err != nil {
		log.Printf("[auth] create session for %q failed: %v", user.Username, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	log.Printf("[auth] user %q logged in", user.Username)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout ends the session and returns to next or the index.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(w, r)
	http.Redirect(w, r, nextPath(r), http.StatusSeeOther)
}
