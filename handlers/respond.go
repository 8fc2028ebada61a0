package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"todolists/models"
	"todolists/services/lists"
)

// LoginPath is where unauthenticated viewers are sent for owner-only pages.
const LoginPath = "/users/login/"

// loginRedirectURL builds the login URL carrying the current request as return path.
func loginRedirectURL(r *http.Request) string {
	return LoginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, loginRedirectURL(r), http.StatusFound)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listOrder reads the collection order from ?order=, defaulting to creation order.
func listOrder(r *http.Request) lists.Order {
	return lists.ParseOrder(r.URL.Query().Get("order"))
}

func formChecked(r *http.Request, name string) bool {
	switch r.PostFormValue(name) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func newPage(r *http.Request, viewer models.Viewer) pageData {
	return pageData{
		Viewer:      viewer,
		CurrentPath: r.URL.RequestURI(),
		Errors:      map[string]string{},
	}
}

func (h *ListsHandler) notFound(w http.ResponseWriter, r *http.Request, viewer models.Viewer) {
	h.Render.Render(w, http.StatusNotFound, "not_found.html", newPage(r, viewer))
}

// fail maps service errors onto responses. Validation errors are handled by
// the caller because each form re-renders differently.
func (h *ListsHandler) fail(w http.ResponseWriter, r *http.Request, viewer models.Viewer, err error) {
	switch {
	case errors.Is(err, lists.ErrAuthRequired):
		redirectToLogin(w, r)
	case errors.Is(err, lists.ErrNotFound):
		h.notFound(w, r, viewer)
	default:
		log.Printf("[handlers] %s %s failed: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func validationFields(err error) (map[string]string, bool) {
	var verr *lists.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
