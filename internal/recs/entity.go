package recs

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/tmdb"
)

const entityResultLimit = 10

// moviesByActor resolves a name to the best-matching person and returns their
// ten most popular acting credits. An empty result means the caller should
// fall back to the model fan-out.
func (s *Service) moviesByActor(ctx context.Context, name string) ([]domain.Movie, error) {
	people, err := s.tmdb.SearchPerson(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, nil
	}
	person := people[0]

	cast, _, err := s.tmdb.PersonMovieCredits(ctx, person.ID)
	if err != nil {
		return nil, err
	}
	top := topCreditsByPopularity(cast, nil, entityResultLimit)

	slog.Info("actor search",
		slog.String("query", name),
		slog.String("person", person.Name),
		slog.Int("movies", len(top)),
	)
	return s.creditsToMovies(ctx, top, "Actor: "+person.Name, "A movie starring "+person.Name), nil
}

// moviesByDirector works like moviesByActor but walks crew credits and keeps
// only directing jobs.
func (s *Service) moviesByDirector(ctx context.Context, name string) ([]domain.Movie, error) {
	people, err := s.tmdb.SearchPerson(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, nil
	}
	person := people[0]

	_, crew, err := s.tmdb.PersonMovieCredits(ctx, person.ID)
	if err != nil {
		return nil, err
	}
	top := topCreditsByPopularity(crew, func(credit tmdb.CreditEntry) bool {
		return credit.Job == "Director"
	}, entityResultLimit)

	slog.Info("director search",
		slog.String("query", name),
		slog.String("person", person.Name),
		slog.Int("movies", len(top)),
	)
	return s.creditsToMovies(ctx, top, "Director: "+person.Name, "A movie directed by "+person.Name), nil
}

// studioCompanyIDs short-circuits the company search for the studios users
// actually ask about.
var studioCompanyIDs = map[string]int{
	"pixar":        3,
	"disney":       2,
	"marvel":       420,
	"warner":       174,
	"universal":    33,
	"paramount":    4,
	"sony":         5,
	"mgm":          8411,
	"20th century": 25,
	"netflix":      213364,
	"hbo":          49,
	"a24":          41077,
	"blumhouse":    3172,
	"dreamworks":   521,
	"lucasfilm":    1,
	"miramax":      14,
}

func (s *Service) moviesByStudio(ctx context.Context, name string) ([]domain.Movie, error) {
	companyID, known := studioCompanyIDs[strings.ToLower(name)]
	if !known {
		companies, err := s.tmdb.SearchCompany(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(companies) == 0 {
			return nil, nil
		}
		companyID = companies[0].ID
	}

	results, err := s.tmdb.DiscoverByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(results) > entityResultLimit {
		results = results[:entityResultLimit]
	}

	slog.Info("studio search",
		slog.String("query", name),
		slog.Int("companyId", companyID),
		slog.Int("movies", len(results)),
	)
	return s.resultsToMovies(ctx, results, "Studio: "+name, "A movie from "+name), nil
}

func topCreditsByPopularity(credits []tmdb.CreditEntry, keep func(tmdb.CreditEntry) bool, limit int) []tmdb.CreditEntry {
	filtered := make([]tmdb.CreditEntry, 0, len(credits))
	for _, credit := range credits {
		if keep != nil && !keep(credit) {
			continue
		}
		filtered = append(filtered, credit)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Popularity > filtered[j].Popularity
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

func (s *Service) creditsToMovies(ctx context.Context, credits []tmdb.CreditEntry, source, summaryFallback string) []domain.Movie {
	results := make([]tmdb.MovieResult, len(credits))
	for i, credit := range credits {
		results[i] = credit.MovieResult
	}
	return s.resultsToMovies(ctx, results, source, summaryFallback)
}

// resultsToMovies converts raw TMDB results into stubs carrying the metadata
// already in hand, plus each movie's streaming availability. The per-movie
// provider lookups run concurrently with a small cap.
func (s *Service) resultsToMovies(ctx context.Context, results []tmdb.MovieResult, source, summaryFallback string) []domain.Movie {
	movies := make([]domain.Movie, len(results))

	var group errgroup.Group
	group.SetLimit(4)
	for i, result := range results {
		group.Go(func() error {
			movie := domain.Movie{
				Title:   result.Title,
				Year:    yearFromResult(result),
				Summary: result.Overview,
				Source:  source,
				TMDBID:  result.ID,
			}
			if movie.Summary == "" {
				movie.Summary = summaryFallback
			}
			if poster := tmdb.ImageURL(result.PosterPath, tmdb.PosterSize); poster != "" {
				movie.PosterURL = &poster
			}
			if backdrop := tmdb.ImageURL(result.BackdropPath, tmdb.BackdropSize); backdrop != "" {
				movie.BackdropURL = &backdrop
			}
			if result.VoteAverage > 0 {
				rating := result.VoteAverage
				movie.Rating = &rating
			}
			if result.VoteCount > 0 {
				voteCount := result.VoteCount
				movie.VoteCount = &voteCount
			}

			if regions, err := s.tmdb.WatchProviders(ctx, result.ID); err == nil {
				region := regions[s.region]
				movie.StreamingProviders = streamingFromRegion(region)
				if region.Link != "" {
					link := region.Link
					movie.JustWatchURL = &link
				}
			}

			movies[i] = movie
			return nil
		})
	}
	_ = group.Wait()
	return movies
}

func yearFromResult(result tmdb.MovieResult) domain.Year {
	if result.ReleaseYear() > 0 {
		return domain.Year(result.ReleaseDate[:4])
	}
	return ""
}
