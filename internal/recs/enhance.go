package recs

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/tmdb"
)

// enhanceAll enriches movie stubs with TMDB metadata in small batches so a
// burst of recommendations does not hammer the API. Failures degrade to the
// stub with fallback fields instead of dropping the movie.
func (s *Service) enhanceAll(ctx context.Context, movies []domain.Movie) []domain.Movie {
	if len(movies) == 0 {
		return movies
	}
	if s.tmdb == nil || !s.tmdb.Enabled() {
		for i := range movies {
			movies[i] = withFallbacks(movies[i])
		}
		return movies
	}

	enhanced := make([]domain.Movie, len(movies))
	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = 3
	}

	for start := 0; start < len(movies); start += batchSize {
		end := start + batchSize
		if end > len(movies) {
			end = len(movies)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				enhanced[index] = s.enhanceMovie(ctx, movies[index])
			}(i)
		}
		wg.Wait()
	}
	return enhanced
}

func (s *Service) enhanceMovie(ctx context.Context, movie domain.Movie) domain.Movie {
	cacheKey := metadataCacheKey(movie.Title, movie.Year)
	if !s.cacheDisabled {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			// The stub's framing wins; the cache only supplies metadata.
			cached.Source = movie.Source
			if movie.Summary != "" {
				cached.Summary = movie.Summary
			}
			return cached
		}
	}

	results, err := s.tmdb.SearchMovies(ctx, movie.Title, strings.TrimSpace(string(movie.Year)))
	if err != nil || len(results) == 0 {
		if err != nil {
			slog.Warn("tmdb search failed",
				slog.String("title", movie.Title),
				slog.String("error", err.Error()),
			)
		}
		return withFallbacks(movie)
	}
	best := results[0]

	details, err := s.tmdb.Details(ctx, best.ID)
	if err != nil {
		slog.Warn("tmdb details failed",
			slog.String("title", movie.Title),
			slog.Int("tmdbId", best.ID),
			slog.String("error", err.Error()),
		)
		return withFallbacks(movie)
	}

	movie.TMDBID = best.ID
	if poster := tmdb.ImageURL(best.PosterPath, tmdb.PosterSize); poster != "" {
		movie.PosterURL = &poster
	}
	if backdrop := tmdb.ImageURL(best.BackdropPath, tmdb.BackdropSize); backdrop != "" {
		movie.BackdropURL = &backdrop
	}
	if best.VoteAverage > 0 {
		rating := best.VoteAverage
		movie.Rating = &rating
	}
	if best.VoteCount > 0 {
		voteCount := best.VoteCount
		movie.VoteCount = &voteCount
	}
	movie.Genres = genreNames(details.Genres)
	if details.Runtime > 0 {
		runtime := details.Runtime
		movie.Runtime = &runtime
	}
	movie.ReleaseDate = best.ReleaseDate
	if movie.Year.IsZero() && best.ReleaseYear() > 0 {
		movie.Year = domain.Year(best.ReleaseDate[:4])
	}
	if movie.Summary == "" {
		if best.Overview != "" {
			movie.Summary = best.Overview
		} else {
			movie.Summary = details.Overview
		}
	}

	if trailer := details.Trailer(); trailer != nil {
		trailerURL := "https://www.youtube.com/watch?v=" + trailer.Key
		trailerKey := trailer.Key
		movie.TrailerURL = &trailerURL
		movie.TrailerKey = &trailerKey
	}

	if imdbID := details.ExternalIDs.IMDBID; imdbID != "" {
		movie.IMDBID = imdbID
	} else if details.IMDBID != "" {
		movie.IMDBID = details.IMDBID
	}

	region := details.WatchProviders.Results[s.region]
	movie.StreamingProviders = streamingFromRegion(region)
	if region.Link != "" {
		link := region.Link
		movie.JustWatchURL = &link
	}

	movie = withFallbacks(movie)

	if !s.cacheDisabled {
		s.cache.Set(ctx, cacheKey, movie)
	}
	return movie
}

// withFallbacks guarantees the always-present response fields: empty slices
// instead of nulls and a synthesized Wikipedia link.
func withFallbacks(movie domain.Movie) domain.Movie {
	if movie.Genres == nil {
		movie.Genres = []string{}
	}
	if movie.StreamingProviders == nil {
		movie.StreamingProviders = []domain.StreamingProvider{}
	}
	if movie.WikipediaURL == "" {
		movie.WikipediaURL = wikipediaURL(movie.Title, movie.Year)
	}
	return movie
}

func wikipediaURL(title string, year domain.Year) string {
	slug := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
	if !year.IsZero() {
		return "https://en.wikipedia.org/wiki/" + slug + "_(" + strings.TrimSpace(string(year)) + "_film)"
	}
	return "https://en.wikipedia.org/wiki/" + slug
}

func genreNames(genres []tmdb.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		if genre.Name != "" {
			names = append(names, genre.Name)
		}
	}
	return names
}

// streamingFromRegion flattens a region's offers into one list: subscription
// first, then rent and buy, deduplicated by provider name.
func streamingFromRegion(region tmdb.RegionProviders) []domain.StreamingProvider {
	providers := make([]domain.StreamingProvider, 0, len(region.Flatrate)+len(region.Rent)+len(region.Buy))
	seen := make(map[string]struct{})

	appendKind := func(entries []tmdb.ProviderEntry, kind domain.ProviderKind) {
		for _, entry := range entries {
			if entry.ProviderName == "" {
				continue
			}
			if _, dup := seen[entry.ProviderName]; dup {
				continue
			}
			seen[entry.ProviderName] = struct{}{}
			providers = append(providers, domain.StreamingProvider{
				Name:    entry.ProviderName,
				LogoURL: tmdb.ImageURL(entry.LogoPath, tmdb.LogoSize),
				Kind:    kind,
			})
		}
	}

	appendKind(region.Flatrate, domain.ProviderSubscription)
	appendKind(region.Rent, domain.ProviderRent)
	appendKind(region.Buy, domain.ProviderBuy)
	return providers
}
