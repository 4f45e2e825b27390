package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/eduflux/internal/inference"
)

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name              string
		params            inference.CompletionRequest
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want            string
		wantError       bool
		wantErrorString string
	}{
		{
			name: "success with system role",
			params: inference.CompletionRequest{
				System: "You are a helpful AI assistant.",
				Messages: []inference.Message{
					{Role: inference.RoleUser, Content: "Hello"},
				},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Equal(t, "llama-3.3-70b-versatile", reqBody.Model)
				assert.False(t, reqBody.Stream)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, inference.RoleSystem, reqBody.Messages[0].Role)
				assert.Equal(t, "You are a helpful AI assistant.", reqBody.Messages[0].Content)
				assert.Equal(t, inference.RoleUser, reqBody.Messages[1].Role)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
					ID:     "chatcmpl-123",
					Object: "chat.completion",
					Model:  "llama-3.3-70b-versatile",
					Choices: []Choice{
						{
							Index:        0,
							Message:      inference.Message{Role: inference.RoleAssistant, Content: "Hi there"},
							FinishReason: "stop",
						},
					},
					Usage: Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
				})
			},
			want: "Hi there",
		},
		{
			name: "no system role sends user message only",
			params: inference.CompletionRequest{
				Messages: []inference.Message{
					{Role: inference.RoleUser, Content: "Hello"},
				},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				require.Len(t, reqBody.Messages, 1)
				assert.Equal(t, inference.RoleUser, reqBody.Messages[0].Role)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
					Choices: []Choice{
						{Message: inference.Message{Role: inference.RoleAssistant, Content: "Hi"}},
					},
				})
			},
			want: "Hi",
		},
		{
			name: "client error is not retried",
			params: inference.CompletionRequest{
				Messages: []inference.Message{
					{Role: inference.RoleUser, Content: "Hello"},
				},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"bad request"}`))
			},
			wantError:       true,
			wantErrorString: "response error 400",
		},
		{
			name: "empty choices",
			params: inference.CompletionRequest{
				Messages: []inference.Message{
					{Role: inference.RoleUser, Content: "Hello"},
				},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(ChatCompletionResponse{})
			},
			wantError:       true,
			wantErrorString: "empty response body or choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient("test-key", "llama-3.3-70b-versatile", 0)
			client.SetBaseURL(server.URL)
			defer func() {
				_ = client.Close()
			}()

			got, err := client.Complete(context.Background(), tt.params)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Complete_retriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("upstream failure"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{
				{Message: inference.Message{Role: inference.RoleAssistant, Content: "recovered"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", "llama-3.3-70b-versatile", 2)
	client.SetBaseURL(server.URL)
	defer func() {
		_ = client.Close()
	}()

	got, err := client.Complete(context.Background(), inference.CompletionRequest{
		Messages: []inference.Message{{Role: inference.RoleUser, Content: "Hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_StreamCompletion(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantDeltas      []string
		wantError       bool
		wantErrorString string
	}{
		{
			name: "deltas delivered in order until DONE",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.True(t, reqBody.Stream)

				w.Header().Set("Content-Type", "text/event-stream")
				w.WriteHeader(http.StatusOK)
				for _, content := range []string{"Hel", "lo", " world"} {
					chunk := ChatCompletionChunk{
						ID:     "chatcmpl-123",
						Object: "chat.completion.chunk",
						Choices: []ChunkChoice{
							{Delta: ChunkDelta{Content: content}},
						},
					}
					data, err := json.Marshal(chunk)
					require.NoError(t, err)
					fmt.Fprintf(w, "data: %s\n\n", data)
				}
				fmt.Fprint(w, "data: [DONE]\n\n")
			},
			wantDeltas: []string{"Hel", "lo", " world"},
		},
		{
			name: "empty deltas are skipped",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `data: {"choices":[{"delta":{"role":"assistant"}}]}`+"\n\n")
				fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"text"}}]}`+"\n\n")
				fmt.Fprint(w, "data: [DONE]\n\n")
			},
			wantDeltas: []string{"text"},
		},
		{
			name: "server error before streaming",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte("rate limited"))
			},
			wantError:       true,
			wantErrorString: "response error 429",
		},
		{
			name: "malformed chunk",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, "data: {not json}\n\n")
			},
			wantError:       true,
			wantErrorString: "json.Unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient("test-key", "llama-3.3-70b-versatile", 0)
			client.SetBaseURL(server.URL)
			defer func() {
				_ = client.Close()
			}()

			var deltas []string
			err := client.StreamCompletion(context.Background(), inference.CompletionRequest{
				Messages: []inference.Message{{Role: inference.RoleUser, Content: "Hello"}},
			}, func(delta string) error {
				deltas = append(deltas, delta)
				return nil
			})
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeltas, deltas)
		})
	}
}

func TestClient_StreamCompletion_onDeltaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"text"}}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient("test-key", "llama-3.3-70b-versatile", 0)
	client.SetBaseURL(server.URL)
	defer func() {
		_ = client.Close()
	}()

	err := client.StreamCompletion(context.Background(), inference.CompletionRequest{
		Messages: []inference.Message{{Role: inference.RoleUser, Content: "Hello"}},
	}, func(delta string) error {
		return fmt.Errorf("client went away")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "server error", err: fmt.Errorf("response error 500: oops"), want: true},
		{name: "rate limited", err: fmt.Errorf("response error 429: slow down"), want: true},
		{name: "truncated json", err: fmt.Errorf("unexpected end of JSON input"), want: true},
		{name: "connection refused", err: fmt.Errorf("dial tcp: connection refused"), want: true},
		{name: "client error", err: fmt.Errorf("response error 400: bad request"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
