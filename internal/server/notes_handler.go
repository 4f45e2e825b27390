package server

import (
	"net/http"

	"github.com/at-ishikawa/eduflux/internal/note"
)

type createNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type updateNoteRequest struct {
	ID      string `json:"id" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// GetNotes returns all of the caller's notes, most recently updated first.
func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "notes.get", err)
		return
	}

	notes, err := h.notes.FindAllByStudent(r.Context(), s.ID)
	if err != nil {
		writeServerError(w, "notes.get", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// CreateNote persists a new note owned by the caller.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req createNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "notes.post", err)
		return
	}

	n := &note.Note{StudentID: s.ID, Title: req.Title, Content: req.Content}
	if err := h.notes.Create(r.Context(), n); err != nil {
		writeServerError(w, "notes.post", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// UpdateNote rewrites an existing note. The predicate matches both the note id
// and the caller's ownership in one query, so a foreign note reads as missing.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req updateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Id, title and content are required")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "notes.patch", err)
		return
	}

	count, err := h.notes.Update(r.Context(), req.ID, s.ID, req.Title, req.Content)
	if err != nil {
		writeServerError(w, "notes.patch", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "Note not found or unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteNote removes a note identified by the id query parameter.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Note ID missing")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "notes.delete", err)
		return
	}

	count, err := h.notes.Delete(r.Context(), id, s.ID)
	if err != nil {
		writeServerError(w, "notes.delete", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "Note not found or unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
