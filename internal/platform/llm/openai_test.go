package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIOptions{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenAIProviderChat(t *testing.T) {
	var got struct {
		Model               string  `json:"model"`
		MaxCompletionTokens int     `json:"max_completion_tokens"`
		Temperature         float64 `json:"temperature"`
		Messages            []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing api key header")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Try a GROUP BY."}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(OpenAIOptions{APIKey: "test-key", BaseURL: srv.URL + "/v1/", Model: "m", MaxTokens: 300, Temperature: 0.3})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a tutor."},
		{Role: RoleUser, Content: "help"},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "Try a GROUP BY." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != "m" || got.MaxCompletionTokens != 300 || got.Temperature != 0.3 {
		t.Fatalf("unexpected params %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "help" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestOpenAIProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p, _ := NewOpenAIProvider(OpenAIOptions{APIKey: "k", BaseURL: srv.URL + "/"})
	if _, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatalf("expected error")
	}
}
