package recs

import (
	"context"
	"errors"
	"sync"
	"time"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/tmdb"
)

var (
	ErrMissingPrompt  = errors.New("prompt is required")
	ErrNoProviders    = errors.New("no recommendation providers configured")
	ErrNoTMDB         = errors.New("tmdb is not configured")
	ErrMovieNotFound  = errors.New("movie not found")
	ErrInvalidMovieID = errors.New("movie id must be positive")
)

// Provider fetches movie stubs for a free-form query from one upstream model.
// Fetch must honor ctx; results arriving after the per-provider deadline are
// discarded by the fan-out, not cancelled.
type Provider interface {
	Name() string
	Enabled() bool
	Fetch(ctx context.Context, query string, exclude []string) ([]domain.Movie, error)
}

// MetadataClient is the slice of the TMDB client the service depends on.
type MetadataClient interface {
	Enabled() bool
	SearchMovies(ctx context.Context, title, year string) ([]tmdb.MovieResult, error)
	Details(ctx context.Context, movieID int) (*tmdb.MovieDetails, error)
	DetailsWithCredits(ctx context.Context, movieID int) (*tmdb.MovieDetails, error)
	SearchPerson(ctx context.Context, name string) ([]tmdb.PersonResult, error)
	PersonMovieCredits(ctx context.Context, personID int) (cast, crew []tmdb.CreditEntry, err error)
	SearchCompany(ctx context.Context, name string) ([]tmdb.CompanyResult, error)
	DiscoverByCompany(ctx context.Context, companyID int) ([]tmdb.MovieResult, error)
	CollectionParts(ctx context.Context, collectionID int) ([]tmdb.MovieResult, error)
	WatchProviders(ctx context.Context, movieID int) (map[string]tmdb.RegionProviders, error)
}

type Service struct {
	providers []Provider
	deadline  time.Duration
	tmdb      MetadataClient
	region    string
	weights   domain.RankingWeights
	batchSize int

	cache         MetadataCache
	cacheDisabled bool

	healthMu sync.Mutex
	health   map[string]*providerHealth
}

type ServiceOption func(*Service)

// WithProviderDeadline bounds how long the fan-out waits for each provider.
func WithProviderDeadline(deadline time.Duration) ServiceOption {
	return func(s *Service) {
		if deadline > 0 {
			s.deadline = deadline
		}
	}
}

func WithRankingWeights(weights domain.RankingWeights) ServiceOption {
	return func(s *Service) {
		s.weights = domain.NormalizeRankingWeights(weights)
	}
}

func WithTMDB(client MetadataClient) ServiceOption {
	return func(s *Service) {
		s.tmdb = client
	}
}

func WithRegion(region string) ServiceOption {
	return func(s *Service) {
		if region != "" {
			s.region = region
		}
	}
}

func WithMetadataCache(cache MetadataCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithCacheDisabled(disabled bool) ServiceOption {
	return func(s *Service) {
		s.cacheDisabled = disabled
	}
}

func WithEnhanceBatchSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService builds the recommendation pipeline. Provider order is preserved:
// when two providers return the same title, the earlier provider wins the
// dedupe, so register the preferred source first.
func NewService(providers []Provider, opts ...ServiceOption) *Service {
	registered := make([]Provider, 0, len(providers))
	for _, provider := range providers {
		if provider == nil {
			continue
		}
		registered = append(registered, provider)
	}

	svc := &Service{
		providers: registered,
		deadline:  8 * time.Second,
		region:    "US",
		weights:   domain.DefaultRankingWeights(),
		batchSize: 3,
		health:    make(map[string]*providerHealth),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.cache == nil {
		svc.cache = newMemoryMetadataCache(defaultMetadataTTL, defaultMetadataMaxEntries)
	}
	return svc
}

// Providers lists the registered provider names with their enabled state.
func (s *Service) Providers() []domain.ProviderInfo {
	items := make([]domain.ProviderInfo, 0, len(s.providers))
	for _, provider := range s.providers {
		items = append(items, domain.ProviderInfo{
			Name:    provider.Name(),
			Enabled: provider.Enabled(),
		})
	}
	return items
}
