package apihttp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/recs"
	"triplefeature/recsservice/internal/tmdb"
)

// RecommendationService is the slice of the recs service the HTTP layer uses.
type RecommendationService interface {
	Recommend(ctx context.Context, request domain.RecommendRequest) (domain.RecommendResponse, error)
	MovieDetails(ctx context.Context, movieID int) (*tmdb.MovieDetails, error)
	SearchMovies(ctx context.Context, query string) ([]tmdb.MovieResult, error)
	Providers() []domain.ProviderInfo
	ProviderDiagnostics() []recs.ProviderDiagnostics
}

type Server struct {
	recs   RecommendationService
	logger *slog.Logger
	cors   string
}

const (
	maxPromptLength = 500
	maxRequestBody  = 64 << 10
)

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value. Empty disables
// the CORS headers entirely.
func WithCORSOrigin(origin string) ServerOption {
	return func(s *Server) {
		s.cors = strings.TrimSpace(origin)
	}
}

func NewServer(service RecommendationService, options ...ServerOption) *Server {
	server := &Server{
		recs:   service,
		logger: slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/recommendations", s.handleRecommendations)
	mux.HandleFunc("/movies/", s.handleMovieDetails)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/providers/health", s.handleProvidersHealth)
	mux.HandleFunc("/providers", s.handleProviders)

	var handler http.Handler = mux
	if s.cors != "" {
		handler = corsMiddleware(s.cors, handler)
	}
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, handler), "movie-recs",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, requestIDMiddleware(metricsMiddleware(traced))))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	var request domain.RecommendRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(request.Prompt) > maxPromptLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "prompt too long (max 500 characters)")
		return
	}

	response, err := s.recs.Recommend(r.Context(), request)
	if err != nil {
		s.logger.Warn("recommendation request failed",
			slog.String("prompt", truncate(strings.TrimSpace(request.Prompt), 80)),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, recs.ErrMissingPrompt):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, recs.ErrNoProviders):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "recommendation failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/movies/")
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return
	}
	movieID, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "movie id must be a number")
		return
	}

	details, err := s.recs.MovieDetails(r.Context(), movieID)
	if err != nil {
		s.writeServiceError(w, err, "movie details failed",
			slog.Int("movieId", movieID),
		)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/search" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		query = strings.TrimSpace(r.URL.Query().Get("q"))
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	if len(query) > maxPromptLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "query too long (max 500 characters)")
		return
	}

	results, err := s.recs.SearchMovies(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, err, "movie search failed",
			slog.String("query", truncate(query, 80)),
		)
		return
	}
	if results == nil {
		results = []tmdb.MovieResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/providers" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": s.recs.Providers()})
}

func (s *Server) handleProvidersHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.recs.ProviderDiagnostics(),
		"timestamp": time.Now().UTC(),
	})
}

// writeServiceError maps the shared service sentinels onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, message string, attrs ...any) {
	s.logger.Warn(message, append(attrs, slog.String("error", err.Error()))...)
	switch {
	case errors.Is(err, recs.ErrMissingPrompt), errors.Is(err, recs.ErrInvalidMovieID):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, recs.ErrMovieNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, recs.ErrNoTMDB):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", "metadata lookup failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

var _ RecommendationService = (*recs.Service)(nil)
