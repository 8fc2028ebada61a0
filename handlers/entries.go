package handlers

import (
	"net/http"

	"todolists/models"
	"todolists/services/lists"
)

// CreateEntry adds an entry to a list the viewer owns. Invalid input
// re-renders the list page with the submitted text preserved.
func (h *ListsHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	listID, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r, viewer)
		return
	}

	fields := models.EntryFields{Text: r.PostFormValue("text")}
	_, err := h.Service.CreateEntry(r.Context(), viewer, listID, fields)
	if errs, ok := validationFields(err); ok {
		list, lerr := h.Service.GetList(r.Context(), viewer, listID)
		if lerr != nil {
			h.fail(w, r, viewer, lerr)
			return
		}
		h.renderDetail(w, r, viewer, list, http.StatusBadRequest, fields, errs)
		return
	}
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}
	http.Redirect(w, r, detailPath(listID), http.StatusSeeOther)
}

// EditEntry shows and applies the edit form of an entry the viewer owns.
func (h *ListsHandler) EditEntry(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r, viewer)
		return
	}

	entry, err := h.Service.GetOwnedEntry(r.Context(), viewer, id)
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}

	data := newPage(r, viewer)
	data.Entry = entry
	if r.Method != http.MethodPost {
		data.EntryForm = models.EntryFields{Text: entry.Text, Completed: entry.Completed}
		h.Render.Render(w, http.StatusOK, "entry_form.html", data)
		return
	}

	fields := models.EntryFields{
		Text:      r.PostFormValue("text"),
		Completed: formChecked(r, "completed"),
	}
	if _, err := h.Service.MutateEntry(r.Context(), viewer, id, lists.OpUpdate, fields); err != nil {
		if errs, ok := validationFields(err); ok {
			data.EntryForm = fields
			data.Errors = errs
			h.Render.Render(w, http.StatusBadRequest, "entry_form.html", data)
			return
		}
		h.fail(w, r, viewer, err)
		return
	}
	http.Redirect(w, r, detailPath(entry.ListID), http.StatusSeeOther)
}

// DeleteEntry confirms and removes an entry the viewer owns.
func (h *ListsHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	viewer := h.Viewers.Viewer(r)
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r, viewer)
		return
	}

	if r.Method != http.MethodPost {
		entry, err := h.Service.GetOwnedEntry(r.Context(), viewer, id)
		if err != nil {
			h.fail(w, r, viewer, err)
			return
		}
		data := newPage(r, viewer)
		data.Entry = entry
		h.Render.Render(w, http.StatusOK, "entry_confirm_delete.html", data)
		return
	}

	entry, err := h.Service.MutateEntry(r.Context(), viewer, id, lists.OpDelete, models.EntryFields{})
	if err != nil {
		h.fail(w, r, viewer, err)
		return
	}
	http.Redirect(w, r, detailPath(entry.ListID), http.StatusSeeOther)
}
