package apihttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/providers/openrouter"
	"triplefeature/recsservice/internal/recs"
)

// Full pipeline: HTTP request -> classification -> model fan-out against a
// stub chat-completions upstream -> dedupe -> ranking -> HTTP response.
func TestRecommendFlowEndToEnd(t *testing.T) {
	completion := `{"movies":[` +
		`{"title":"Heat","year":"1995","summary":"A cat and mouse crime saga in Los Angeles."},` +
		`{"title":"Collateral","year":"2004","summary":"A cab driver is hijacked by a hitman."},` +
		`{"title":"Inside Man","year":"2006","summary":"A bank heist with a twist."}]}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": completion}},
			},
		})
	}))
	defer upstream.Close()

	provider := openrouter.NewProvider(openrouter.Config{
		APIKey:  "test-key",
		BaseURL: upstream.URL,
		Model:   "openai/gpt-4o-mini",
		Source:  "GPT-4",
	})
	service := recs.NewService([]recs.Provider{provider})
	server := httptest.NewServer(NewServer(service).Handler())
	defer server.Close()

	body := `{"prompt":"recommend crime movies","exclude":["Inside Man"]}`
	resp, err := http.Post(server.URL+"/recommendations", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var payload domain.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(payload.Movies) != 2 {
		t.Fatalf("expected the excluded title dropped, got %d movies", len(payload.Movies))
	}
	for _, movie := range payload.Movies {
		if strings.EqualFold(movie.Title, "Inside Man") {
			t.Fatal("excluded title leaked into the response")
		}
		if movie.Source != "GPT-4" {
			t.Fatalf("unexpected source: %s", movie.Source)
		}
		if movie.WikipediaURL == "" {
			t.Fatal("expected a synthesized wikipedia link")
		}
		if movie.Genres == nil || movie.StreamingProviders == nil {
			t.Fatal("expected empty slices, not nulls")
		}
	}
}

func TestRecommendFlowSurvivesProviderFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	provider := openrouter.NewProvider(openrouter.Config{
		APIKey:  "test-key",
		BaseURL: upstream.URL,
		Model:   "openai/gpt-4o-mini",
		Source:  "GPT-4",
	})
	service := recs.NewService([]recs.Provider{provider})
	server := httptest.NewServer(NewServer(service).Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/recommendations", "application/json",
		strings.NewReader(`{"prompt":"recommend crime movies"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var payload domain.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(payload.Movies) != 0 {
		t.Fatalf("expected no movies when the only provider fails, got %d", len(payload.Movies))
	}
}
