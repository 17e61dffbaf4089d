package openrouter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestFetchSendsModelAndHeaders(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"movies\":[{\"title\":\"Whiplash\",\"year\":2014,\"summary\":\"Drumming under pressure.\"}]}"}}]}`))
	}))
	defer server.Close()

	provider := NewProvider(Config{
		APIKey:  "secret",
		BaseURL: server.URL,
		Model:   "openai/gpt-4o-mini",
		Source:  "GPT-4",
		Referer: "https://triplefeature.app",
		Title:   "Triple Feature",
	})

	movies, err := provider.Fetch(context.Background(), "intense music dramas", nil)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotReferer == "" || gotTitle == "" {
		t.Fatal("expected referer and title headers")
	}
	if gotBody["model"] != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected model: %v", gotBody["model"])
	}
	if len(movies) != 1 || movies[0].Source != "GPT-4" {
		t.Fatalf("unexpected movies: %#v", movies)
	}
}

func TestFetchIncludesExclusionsInSystemPrompt(t *testing.T) {
	var systemContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		for _, message := range body.Messages {
			if message.Role == "system" {
				systemContent = message.Content
			}
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"movies\":[]}"}}]}`))
	}))
	defer server.Close()

	provider := NewProvider(Config{APIKey: "secret", BaseURL: server.URL, Model: "anthropic/claude-3.5-sonnet", Source: "Claude"})
	if _, err := provider.Fetch(context.Background(), "space operas", []string{"Dune", "Interstellar"}); err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !strings.Contains(systemContent, "Dune, Interstellar") {
		t.Fatalf("expected exclusions in system prompt, got: %s", systemContent)
	}
}

func TestFetchRejectsEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider := NewProvider(Config{APIKey: "secret", BaseURL: server.URL, Model: "openai/gpt-4o-mini"})
	if _, err := provider.Fetch(context.Background(), "anything", nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestProviderDisabledWithoutKey(t *testing.T) {
	provider := NewProvider(Config{Model: "openai/gpt-4o-mini"})
	if provider.Enabled() {
		t.Fatal("expected provider without key to be disabled")
	}
}
