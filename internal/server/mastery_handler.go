package server

import (
	"net/http"

	"github.com/at-ishikawa/eduflux/internal/mastery"
)

type createMasteredCardRequest struct {
	Question string `json:"q" validate:"required"`
	Answer   string `json:"a" validate:"required"`
	Subject  string `json:"subject"`
}

// GetMasteryBank returns every card the caller has saved, most recent first.
func (h *Handler) GetMasteryBank(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "mastery.get_all", err)
		return
	}

	cards, err := h.cards.FindAllByStudent(r.Context(), s.ID)
	if err != nil {
		writeServerError(w, "mastery.get_all", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// ClearMasteryBank removes every card owned by the caller and reports how many
// rows were actually removed.
func (h *Handler) ClearMasteryBank(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "mastery.delete_all", err)
		return
	}

	count, err := h.cards.DeleteAllByStudent(r.Context(), s.ID)
	if err != nil {
		writeServerError(w, "mastery.delete_all", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

// CreateMasteredCard saves a question/answer pair to the caller's bank.
func (h *Handler) CreateMasteredCard(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req createMasteredCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Question and answer are required")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "mastery.post", err)
		return
	}

	card := &mastery.Flashcard{
		StudentID: s.ID,
		Question:  req.Question,
		Answer:    req.Answer,
		Subject:   req.Subject,
	}
	if err := h.cards.Create(r.Context(), card); err != nil {
		writeServerError(w, "mastery.post", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteMasteredCard removes a single card identified by the id query parameter.
func (h *Handler) DeleteMasteredCard(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Card ID is required")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "mastery.delete", err)
		return
	}

	count, err := h.cards.Delete(r.Context(), id, s.ID)
	if err != nil {
		writeServerError(w, "mastery.delete", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "Card not found or unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
