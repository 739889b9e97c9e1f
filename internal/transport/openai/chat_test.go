package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
)

// chatRequestBody mirrors the fields of the completion request the tests inspect.
type chatRequestBody struct {
	Model       string  `json:"model"`
	Stream      bool    `json:"stream"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func sseServer(t *testing.T, deltas []string, inspect func(chatRequestBody)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var body chatRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(body)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			chunk, _ := json.Marshal(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion.chunk",
				"model":   body.Model,
				"choices": []map[string]any{{"index": 0, "delta": map[string]any{"content": d}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func newTestChat(url string) *Chat {
	return NewChat(&Config{APIKey: "test-key", BaseURL: url, Provider: "deepseek", Logger: zap.NewNop()})
}

func TestChat_Stream(t *testing.T) {
	var got chatRequestBody
	server := sseServer(t, []string{"合同", "", "法"}, func(b chatRequestBody) { got = b })
	defer server.Close()

	var deltas []string
	err := newTestChat(server.URL).Stream(context.Background(), domain.ChatCompletion{
		Model:       "deepseek-chat",
		Temperature: 0.7,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "You are a librarian."},
			{Role: domain.RoleUser, Content: "什么是合同法"},
		},
	}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if strings.Join(deltas, "|") != "合同|法" {
		t.Errorf("deltas = %v, want [合同 法]", deltas)
	}
	if !got.Stream || got.Model != "deepseek-chat" {
		t.Errorf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "什么是合同法" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestChat_EmitError(t *testing.T) {
	server := sseServer(t, []string{"a", "b"}, nil)
	defer server.Close()

	stop := errors.New("client gone")
	calls := 0
	err := newTestChat(server.URL).Stream(context.Background(), domain.ChatCompletion{
		Model:    "deepseek-chat",
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
	}, func(string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("emit called %d times, want 1", calls)
	}
}

func TestChat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "invalid api key",
				"type":    "authentication_error",
			},
		})
	}))
	defer server.Close()

	err := newTestChat(server.URL).Stream(context.Background(), domain.ChatCompletion{
		Model:    "deepseek-chat",
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
	}, func(string) error { return nil })
	if !errors.Is(err, domain.ErrAssistantProvider) {
		t.Fatalf("expected ErrAssistantProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestChat_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[{"id":"deepseek-chat","object":"model"}]}`)
	}))
	defer server.Close()

	if err := newTestChat(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"quota exceeded"}`, "quota exceeded"},
		{`{"error":"x"}`, ""},
		{`not json`, ""},
	}
	for _, tc := range tests {
		if got := extractDetail([]byte(tc.body)); got != tc.want {
			t.Errorf("extractDetail(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
