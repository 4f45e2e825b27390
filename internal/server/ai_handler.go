package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/at-ishikawa/eduflux/internal/inference"
)

const (
	defaultSystemRole = "You are a helpful AI assistant."

	storySystemRole = `You are a math teacher.
Chat with the student like any other chatbot.
Just answer the question that the student is asking.
Keep the mathematical numbers exactly the same.`

	titleSystemRole = "You are a helpful assistant that creates very short, 3-5 word catchy titles for study notes. Return ONLY the title text, no quotes or extra words."

	recallSystemRole = `You are a learning scientist. Create 5 high-impact flashcards for active recall.
Instructions:
- Return ONLY a raw JSON array.
- Do not include markdown, backticks, or 'json' labels.
- Ensure the output is valid JSON.
Format: [{"q": "Question", "a": "Answer"}]`

	// titleSnippetLimit bounds how much note content is sent for title generation.
	titleSnippetLimit = 500

	// recallNoteLimit is how many recent notes seed the recall card generation.
	recallNoteLimit = 3
)

type chatRequest struct {
	Messages   []inference.Message `json:"messages"`
	Prompt     string              `json:"prompt"`
	SystemRole string              `json:"systemRole"`
}

type storyRequest struct {
	Prompt string `json:"prompt"`
	// Interests is accepted for forward compatibility with personalized
	// stories but does not influence the prompt yet.
	Interests []string `json:"interests"`
}

type generateTitleRequest struct {
	Content string `json:"content" validate:"required"`
}

type recallCard struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// Chat relays a conversation to the hosted model and streams the answer back
// as raw text, flushed as each delta arrives.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	messages := req.Messages
	if len(messages) == 0 && req.Prompt != "" {
		messages = []inference.Message{{Role: inference.RoleUser, Content: req.Prompt}}
	}
	if len(messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages or prompt is required")
		return
	}

	systemRole := req.SystemRole
	if systemRole == "" {
		systemRole = defaultSystemRole
	}

	h.streamCompletion(w, r, "chat", inference.CompletionRequest{
		System:   systemRole,
		Messages: messages,
	})
}

// Story streams a math storyteller answer for a single prompt.
func (h *Handler) Story(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	h.streamCompletion(w, r, "story", inference.CompletionRequest{
		System:   storySystemRole,
		Messages: []inference.Message{{Role: inference.RoleUser, Content: req.Prompt}},
	})
}

// streamCompletion relays the model output as an incrementally flushed
// text/plain body. Failures before the first delta surface as a JSON error;
// once streaming has begun the body simply ends early.
func (h *Handler) streamCompletion(w http.ResponseWriter, r *http.Request, route string, params inference.CompletionRequest) {
	ctx, cancel := contextWithTimeout(r, time.Duration(h.cfg.Server.StreamTimeoutSeconds)*time.Second)
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeServerError(w, route, fmt.Errorf("response writer does not support flushing"))
		return
	}

	started := false
	err := h.inferenceClient.StreamCompletion(ctx, params, func(delta string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(delta)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && !started {
		writeServerError(w, route, err)
		return
	}
	if err != nil {
		// Mid-stream failure: the status line is already out, so the client
		// sees a truncated body rather than an error response.
		logStreamFailure(route, err)
	}
}

// GenerateTitle asks the model for a short note title from a content snippet.
func (h *Handler) GenerateTitle(w http.ResponseWriter, r *http.Request) {
	var req generateTitleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	// Truncate on a character boundary so multi-byte content is never cut
	// mid-rune.
	snippet := req.Content
	if runes := []rune(snippet); len(runes) > titleSnippetLimit {
		snippet = string(runes[:titleSnippetLimit])
	}

	text, err := h.inferenceClient.Complete(r.Context(), inference.CompletionRequest{
		System: titleSystemRole,
		Messages: []inference.Message{{
			Role:    inference.RoleUser,
			Content: "Generate a title for this content: " + snippet,
		}},
	})
	if err != nil {
		writeServerError(w, "generate_title.post", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": strings.TrimSpace(text)})
}

// SyncRecall turns the caller's most recent notes into active-recall cards.
// The model is instructed to answer with a raw JSON array; code fences are
// stripped before parsing because models add them anyway.
func (h *Handler) SyncRecall(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	s, err := h.resolveStudent(r.Context(), identity)
	if err != nil {
		writeServerError(w, "sync_recall.post", err)
		return
	}

	notes, err := h.notes.FindRecentByStudent(r.Context(), s.ID, recallNoteLimit)
	if err != nil {
		writeServerError(w, "sync_recall.post", err)
		return
	}
	if len(notes) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message": "Notebook is empty! Save some notes first.",
		})
		return
	}

	contexts := make([]string, 0, len(notes))
	for _, n := range notes {
		contexts = append(contexts, fmt.Sprintf("Topic: %s\nContent: %s", n.Title, n.Content))
	}

	text, err := h.inferenceClient.Complete(r.Context(), inference.CompletionRequest{
		System: recallSystemRole,
		Messages: []inference.Message{{
			Role:    inference.RoleUser,
			Content: "Notes context: " + strings.Join(contexts, "\n\n"),
		}},
	})
	if err != nil {
		writeSyncFailed(w, err)
		return
	}

	var cards []recallCard
	if err := json.Unmarshal([]byte(inference.StripCodeFences(text)), &cards); err != nil {
		// Parse failures and upstream failures are deliberately the same error
		// code: the browser handles both by offering a retry.
		writeSyncFailed(w, fmt.Errorf("json.Unmarshal(%s) > %w", text, err))
		return
	}
	writeJSON(w, http.StatusOK, cards)
}
