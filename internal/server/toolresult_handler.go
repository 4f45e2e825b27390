package server

import (
	"net/http"

	"github.com/at-ishikawa/eduflux/internal/toolresult"
)

type saveToolResultRequest struct {
	ToolName string `json:"toolName" validate:"required"`
	ToolID   string `json:"toolId" validate:"required"`
	Category string `json:"category"`
	Input    string `json:"input" validate:"required"`
	Output   string `json:"output" validate:"required"`
}

type renameToolResultRequest struct {
	ID       string `json:"id" validate:"required"`
	NewName  string `json:"newName"`
	Category string `json:"category"`
}

// SaveToolResult persists an AI tool invocation for later reference.
func (h *Handler) SaveToolResult(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req saveToolResultRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Tool name, tool id, input and output are required")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "save_tool.post", err)
		return
	}

	tr := &toolresult.ToolResult{
		StudentID: s.ID,
		ToolName:  req.ToolName,
		ToolID:    req.ToolID,
		Category:  req.Category,
		Input:     req.Input,
		Output:    req.Output,
	}
	if err := h.toolResults.Create(r.Context(), tr); err != nil {
		writeServerError(w, "save_tool.post", err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// DeleteToolResult removes a saved result identified by the id query parameter.
func (h *Handler) DeleteToolResult(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Document ID missing")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "save_tool.delete", err)
		return
	}

	count, err := h.toolResults.Delete(r.Context(), id, s.ID)
	if err != nil {
		writeServerError(w, "save_tool.delete", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "Document not found or unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSavedToolResults returns the caller's saved results, most recent first.
func (h *Handler) GetSavedToolResults(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "get_saved_tools.get", err)
		return
	}

	results, err := h.toolResults.FindAllByStudent(r.Context(), s.ID)
	if err != nil {
		writeServerError(w, "get_saved_tools.get", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// RenameToolResult applies a partial rename or recategorization to a saved result.
func (h *Handler) RenameToolResult(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req renameToolResultRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Document ID missing")
		return
	}
	if req.NewName == "" && req.Category == "" {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "rename_tool.patch", err)
		return
	}

	count, err := h.toolResults.Rename(r.Context(), req.ID, s.ID, req.NewName, req.Category)
	if err != nil {
		writeServerError(w, "rename_tool.patch", err)
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, "Document not found or unauthorized")
		return
	}

	updated, err := h.toolResults.FindByID(r.Context(), req.ID, s.ID)
	if err != nil {
		writeServerError(w, "rename_tool.patch", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Document not found or unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
