// Package server provides the HTTP API for the EduFlux study tools.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/eduflux/internal/config"
	"github.com/at-ishikawa/eduflux/internal/inference"
	"github.com/at-ishikawa/eduflux/internal/mastery"
	"github.com/at-ishikawa/eduflux/internal/note"
	"github.com/at-ishikawa/eduflux/internal/student"
	"github.com/at-ishikawa/eduflux/internal/toolresult"
)

// Handler serves every authenticated API route.
type Handler struct {
	cfg             *config.Config
	inferenceClient inference.Client
	students        student.Repository
	notes           note.Repository
	cards           mastery.Repository
	toolResults     toolresult.Repository
	validate        *validator.Validate
}

// NewHandler creates a new Handler.
func NewHandler(
	cfg *config.Config,
	inferenceClient inference.Client,
	students student.Repository,
	notes note.Repository,
	cards mastery.Repository,
	toolResults toolresult.Repository,
) *Handler {
	return &Handler{
		cfg:             cfg,
		inferenceClient: inferenceClient,
		students:        students,
		notes:           notes,
		cards:           cards,
		toolResults:     toolResults,
		validate:        validator.New(),
	}
}

// RegisterRoutes mounts all API routes. Everything under /api requires an
// authenticated caller.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api", func(api chi.Router) {
		api.Use(RequireAuth(h.cfg.Auth.JWTSecret))

		api.Post("/chat", h.Chat)
		api.Post("/story", h.Story)
		api.Post("/generate-title", h.GenerateTitle)
		api.Post("/sync-recall", h.SyncRecall)

		api.Get("/notes", h.GetNotes)
		api.Post("/notes", h.CreateNote)
		api.Patch("/notes", h.UpdateNote)
		api.Delete("/notes", h.DeleteNote)

		api.Get("/mastery/all", h.GetMasteryBank)
		api.Delete("/mastery/all", h.ClearMasteryBank)
		api.Post("/mastery", h.CreateMasteredCard)
		api.Delete("/mastery", h.DeleteMasteredCard)

		api.Post("/save-tool", h.SaveToolResult)
		api.Delete("/save-tool", h.DeleteToolResult)
		api.Get("/get-saved-tools", h.GetSavedToolResults)
		api.Patch("/rename-tool", h.RenameToolResult)
	})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveStudent upserts the caller's student row and returns it. The internal
// id always comes from this lookup so clients cannot spoof ownership, and
// first-time users get a valid empty collection instead of a not-found.
func (h *Handler) resolveStudent(ctx context.Context, identity Identity) (*student.Student, error) {
	s := &student.Student{
		ExternalID: identity.ExternalID,
		Email:      identity.Email,
		Name:       identity.Name,
		Interests:  student.Interests{},
	}
	if err := h.students.Upsert(ctx, s); err != nil {
		return nil, fmt.Errorf("students.Upsert() > %w", err)
	}
	return s, nil
}
