package recs

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/tmdb"
)

// Recommend runs the full pipeline: classify the prompt, gather candidates
// from the entity search or the model fan-out, dedupe against the exclusion
// list, enrich with metadata and rank by relevance.
func (s *Service) Recommend(ctx context.Context, request domain.RecommendRequest) (domain.RecommendResponse, error) {
	prompt := strings.TrimSpace(request.Prompt)
	if prompt == "" {
		return domain.RecommendResponse{}, ErrMissingPrompt
	}
	if len(s.providers) == 0 {
		return domain.RecommendResponse{}, ErrNoProviders
	}

	startedAt := time.Now()
	excludeTitles := domain.ExclusionTitles(request.Exclude)

	classification := Classify(prompt)
	candidates := s.gatherCandidates(ctx, classification, prompt, excludeTitles)

	unique := Dedupe(candidates, NewExclusionSet(request.Exclude))
	enhanced := s.enhanceAll(ctx, unique)
	ranked := Rank(enhanced, prompt, s.weights)

	slog.Info("recommendations ready",
		slog.String("prompt", prompt),
		slog.String("kind", string(classification.Kind)),
		slog.Int("candidates", len(candidates)),
		slog.Int("unique", len(unique)),
		slog.Int("returned", len(ranked)),
		slog.Int64("elapsedMs", time.Since(startedAt).Milliseconds()),
	)

	return domain.RecommendResponse{Movies: ranked}, nil
}

// gatherCandidates picks the search strategy for the classified prompt. Every
// entity path degrades to the model fan-out when the lookup finds nothing or
// fails; the fan-out is the strategy of last resort and never errors as a
// whole.
func (s *Service) gatherCandidates(ctx context.Context, classification domain.Classification, prompt string, exclude []string) []domain.Movie {
	tmdbReady := s.tmdb != nil && s.tmdb.Enabled()

	switch classification.Kind {
	case domain.QueryActor:
		if tmdbReady && classification.Term != "" {
			movies, err := s.moviesByActor(ctx, classification.Term)
			if err == nil && len(movies) > 0 {
				return movies
			}
			s.logEntityFallback("actor", classification.Term, err)
		}
	case domain.QueryDirector:
		if tmdbReady && classification.Term != "" {
			movies, err := s.moviesByDirector(ctx, classification.Term)
			if err == nil && len(movies) > 0 {
				return movies
			}
			s.logEntityFallback("director", classification.Term, err)
		}
	case domain.QueryStudio:
		if tmdbReady && classification.Term != "" {
			movies, err := s.moviesByStudio(ctx, classification.Term)
			if err == nil && len(movies) > 0 {
				return movies
			}
			s.logEntityFallback("studio", classification.Term, err)
		}
	case domain.QueryTitle:
		if tmdbReady {
			movies, err := s.moviesByFranchise(ctx, classification.Term, prompt)
			if err == nil && len(movies) > 0 {
				return movies
			}
			s.logEntityFallback("franchise", classification.Term, err)
		}
	}

	movies, statuses := s.fetchFromProviders(ctx, prompt, exclude)
	for _, status := range statuses {
		if !status.OK && status.Error != "" {
			slog.Debug("provider status",
				slog.String("provider", status.Name),
				slog.String("error", status.Error),
			)
		}
	}
	return movies
}

func (s *Service) logEntityFallback(kind, term string, err error) {
	if err != nil {
		slog.Warn("entity search failed, falling back to model fan-out",
			slog.String("kind", kind),
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
		return
	}
	slog.Info("entity search empty, falling back to model fan-out",
		slog.String("kind", kind),
		slog.String("term", term),
	)
}

// MovieDetails proxies a single movie lookup for the details endpoint. The
// lookup carries videos and cast/crew credits so clients get the full card.
func (s *Service) MovieDetails(ctx context.Context, movieID int) (*tmdb.MovieDetails, error) {
	if movieID <= 0 {
		return nil, ErrInvalidMovieID
	}
	if s.tmdb == nil || !s.tmdb.Enabled() {
		return nil, ErrNoTMDB
	}
	details, err := s.tmdb.DetailsWithCredits(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if details.ID == 0 {
		return nil, ErrMovieNotFound
	}
	return details, nil
}

// SearchMovies proxies a free-text title search for the search endpoint.
func (s *Service) SearchMovies(ctx context.Context, query string) ([]tmdb.MovieResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingPrompt
	}
	if s.tmdb == nil || !s.tmdb.Enabled() {
		return nil, ErrNoTMDB
	}
	return s.tmdb.SearchMovies(ctx, query, "")
}
