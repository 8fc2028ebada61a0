package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"todolists/utils"
)

// Register mounts every page and API route on r.
func Register(r *mux.Router, pages *ListsHandler, auth *AuthHandler, api *APIHandler) {
	get := []string{http.MethodGet, http.MethodHead}
	form := []string{http.MethodGet, http.MethodHead, http.MethodPost}

	r.HandleFunc("/", pages.Index).Methods(get...)
	r.HandleFunc("/my/", pages.Mine).Methods(get...)
	r.HandleFunc("/create/", pages.Create).Methods(form...)
	r.HandleFunc("/todos/{id:[0-9]+}/", pages.Detail).Methods(get...)
	r.HandleFunc("/todos/{id:[0-9]+}/edit/", pages.Edit).Methods(form...)
	r.HandleFunc("/todos/{id:[0-9]+}/delete/", pages.Delete).Methods(form...)
	r.HandleFunc("/todos/{id:[0-9]+}/create_entry/", pages.CreateEntry).Methods(http.MethodPost)
	r.HandleFunc("/entries/{id:[0-9]+}/edit/", pages.EditEntry).Methods(form...)
	r.HandleFunc("/entries/{id:[0-9]+}/delete/", pages.DeleteEntry).Methods(form...)

	r.HandleFunc("/users/register/", auth.Register).Methods(form...)
	r.HandleFunc("/users/login/", auth.Login).Methods(form...)
	r.HandleFunc("/users/logout/", auth.Logout).Methods(get...)
	r.HandleFunc("/users/{username}/", pages.Profile).Methods(get...)

	r.HandleFunc("/api/lists", api.Lists).Methods(http.MethodGet)
	r.HandleFunc("/api/lists/{id:[0-9]+}", api.List).Methods(http.MethodGet)

	r.NotFoundHandler = utils.LogRequests(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		pages.notFound(w, req, pages.Viewers.Viewer(req))
	}))
}
