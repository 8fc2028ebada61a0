package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"todolists/models"
	"todolists/services/lists"
)

type listReader interface {
	VisibleLists(ctx context.Context, viewer models.Viewer, order lists.Order) ([]models.List, error)
	GetList(ctx context.Context, viewer models.Viewer, id int64) (*models.List, error)
}

var _ listReader = (*lists.Service)(nil)

// APIHandler exposes read-only JSON views of the lists the viewer may see.
type APIHandler struct {
	Service listReader
	Viewers viewerResolver
}

func NewAPIHandler(s listReader, viewers viewerResolver) *APIHandler {
	return &APIHandler{Service: s, Viewers: viewers}
}

type listsResponse struct {
	Lists []models.List `json:"lists"`
	Count int           `json:"count"`
}

// Lists returns every visible list, newest activity first with ?order=modified.
func (h *APIHandler) Lists(w http.ResponseWriter, r *http.Request) {
	all, err := h.Service.VisibleLists(r.Context(), h.Viewers.Viewer(r), listOrder(r))
	if err != nil {
		log.Printf("[api] list query failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, listsResponse{Lists: all, Count: len(all)})
}

// List returns one visible list with its entries.
func (h *APIHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, http.StatusNotFound, "list not found")
		return
	}

	list, err := h.Service.GetList(r.Context(), h.Viewers.Viewer(r), id)
	if err != nil {
		if errors.Is(err, lists.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "list not found")
			return
		}
		log.Printf("[api] get list %d failed: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
