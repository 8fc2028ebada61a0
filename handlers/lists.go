package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"todolists/models"
	"todolists/services/lists"
)

type listService interface {
	VisibleLists(ctx context.Context, viewer models.Viewer, order lists.Order) ([]models.List, error)
	OwnedLists(ctx context.Context, viewer models.Viewer, order lists.Order) ([]models.List, error)
	ProfileLists(ctx context.Context, username string) (*models.User, []models.List, error)
	GetList(ctx context.Context, viewer models.Viewer, id int64) (*models.List, error)
	GetOwnedList(ctx context.Context, viewer models.Viewer, id int64) (*models.List, error)
	CreateList(ctx context.Context, viewer models.Viewer, fields models.ListFields) (*models.List, error)
	MutateList(ctx context.Context, viewer models.Viewer, id int64, op lists.Op, fields models.ListFields) (*models.List, error)
	CreateEntry(ctx context.Context, viewer models.Viewer, listID int64, fields models.EntryFields) (*models.Entry, error)
	GetOwnedEntry(ctx context.Context, viewer models.Viewer, id int64) (*models.Entry, error)
	MutateEntry(ctx context.Context, viewer models.Viewer, id int64, op lists.Op, fields models.EntryFields) (*models.Entry, error)
	Policy() lists.Policy
}

var _ listService = (*lists.Service)(nil)

// ListsHandler serves the HTML pages for lists, entries and profiles.
type ListsHandler struct {
	Service listService
	Viewers viewerResolver
	Render  *Renderer
}

func NewListsHandler(s listService, viewers viewerResolver, render *Renderer) *ListsHandler {
	return &ListsHandler{Service: s, Viewers: viewers, Render: render}
}

func detailPath(listID int64) string {
	return fmt.Sprintf("/todos/%d/", listID)
}

// Index lists everything the viewer may read: public lists and their own.
func (h *ListsHandler) Index(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	all, err := h.Service.VisibleLists(r.Context(), viewer, listOrder(r))
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}

	data := newPage(r, viewer)
	data.Heading = "All lists"
	data.Lists = all
	h.Render.Render(w, http.StatusOK, "list_index.html", data)
}

// Mine lists only the viewer's own lists.
func (h *ListsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	mine, err := h.Service.OwnedLists(r.Context(), viewer, listOrder(r))
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}

	data := newPage(r, viewer)
	data.Heading = "My lists"
	data.Lists = mine
	h.Render.Render(w, http.StatusOK, "list_index.html", data)
}

// Profile shows a user's public lists.
func (h *ListsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	user, public, err := h.Service.ProfileLists(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}

	data := newPage(r, viewer)
	data.Profile = user
	data.Lists = public
	h.Render.Render(w, http.StatusOK, "profile.html", data)
}

// Detail shows a visible list with its entries.
func (h *ListsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r, viewer)
		return
	}

	list, err := h.Service.GetList(r.Context(), viewer, id)
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}
	h.renderDetail(w, r, viewer, list, http.StatusOK, models.EntryFields{}, nil)
}

func (h *ListsHandler) renderDetail(w http.ResponseWriter, r *http.Request, viewer models.Viewer, list *models.List, status int, form models.EntryFields, errs map[string]string) {
	data := newPage(r, viewer)
	data.List = list
	data.IsOwner = list.OwnedBy(viewer)
	data.EntryForm = form
	if errs != nil {
		data.Errors = errs
	}
	h.Render.Render(w, status, "list_detail.html", data)
}

// Create shows the new-list form and stores submitted lists.
func (h *ListsHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	if viewer.IsAnonymous() && !h.Service.Policy().AllowAnonymousOwner {
		redirectToLogin(w, r)
		return
	}

	if r.Method != http.MethodPost {
		data := newPage(r, viewer)
		data.ListForm = models.ListFields{Title: models.DefaultListTitle}
		h.Render.Render(w, http.StatusOK, "list_form.html", data)
		return
	}

	fields := listFieldsFromForm(r)
	list, err := h.Service.CreateList(r.Context(), viewer, fields)
	if errs, ok := validationFields(err); ok {
		data := newPage(r, viewer)
		data.ListForm = fields
		data.Errors = errs
		h.Render.Render(w, http.StatusBadRequest, "list_form.html", data)
		return
	}
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}
	http.Redirect(w, r, detailPath(list.ID), http.StatusSeeOther)
}

// Edit shows and applies the edit form of a list the viewer owns.
func (h *ListsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r, viewer)
		return
	}

	list, err := h.Service.GetOwnedList(r.Context(), viewer, id)
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}

	data := newPage(r, viewer)
	data.List = list
	if r.Method != http.MethodPost {
		data.ListForm = models.ListFields{Title: list.Title, Public: list.Public}
		h.Render.Render(w, http.StatusOK, "list_form.html", data)
		return
	}

	fields := listFieldsFromForm(r)
	if _, err := h.Service.MutateList(r.Context(), viewer, id, lists.OpUpdate, fields); err != nil {
		if errs, ok := validationFields(err); ok {
			data.ListForm = fields
			data.Errors = errs
			h.Render.Render(w, http.StatusBadRequest, "list_form.html", data)
			return
		}
		h.fail(w, r, viewer, err)
		return
	}
	http.Redirect(w, r, detailPath(id), http.StatusSeeOther)
}

// Delete confirms and removes a list the viewer owns.
func (h *ListsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r, viewer)
		return
	}

	if r.Method != http.MethodPost {
		list, err := h.Service.GetOwnedList(r.Context(), viewer, id)
		if err != nil {
			h.fail(w, r, viewer, err)
			return
		}
		data := newPage(r, viewer)
		data.List = list
		h.Render.Render(w, http.StatusOK, "list_confirm_delete.html", data)
		return
	}

	if _, err := h.Service.MutateList(r.Context(), viewer, id, lists.OpDelete, models.ListFields{}); err != nil {
		h.fail(w, r, viewer, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func listFieldsFromForm(r *http.Request) models.ListFields {
	return models.ListFields{
		Title:  r.PostFormValue("title"),
		Public: formChecked(r, "public"),
	}
}
