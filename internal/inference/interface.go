// Package inference defines the hosted language model client contract.
package inference

import (
	"context"
	"strings"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for AI inference operations.
type Client interface {
	// Complete returns the full text of the model's answer.
	Complete(ctx context.Context, params CompletionRequest) (string, error)
	// StreamCompletion delivers the model's answer incrementally, calling
	// onDelta for each text fragment as it is produced. Returning an error
	// from onDelta aborts the stream.
	StreamCompletion(ctx context.Context, params CompletionRequest, onDelta func(delta string) error) error
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest holds parameters for a single model call.
type CompletionRequest struct {
	// System is the system instruction prepended to the conversation.
	System string
	// Messages is the ordered conversation history, oldest first.
	Messages []Message
	// Temperature of 0 means the provider default.
	Temperature float32
}

const (
	DefaultMaxRetryAttempts = 3
)

// StripCodeFences removes markdown code fence artifacts models sometimes wrap
// around JSON output. Literal removal only, so applying it twice is a no-op
// and fenced content survives unchanged.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
