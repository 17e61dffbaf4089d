package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"triplefeature/recsservice/internal/metrics"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/"
	redisCacheKey  = "recs:tmdb:"

	PosterSize   = "w500"
	BackdropSize = "w1280"
	LogoSize     = "w45"
)

type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

type Config struct {
	APIKey   string
	BaseURL  string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		redis:    cfg.Redis,
		cacheTTL: cacheTTL,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// ImageURL builds a CDN URL for a TMDB image path, or "" when the path is empty.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

type MovieResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// ReleaseYear extracts the four-digit year from the release date, 0 when absent.
func (r MovieResult) ReleaseYear() int {
	if len(r.ReleaseDate) < 4 {
		return 0
	}
	year := 0
	for _, c := range r.ReleaseDate[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type ProviderEntry struct {
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type RegionProviders struct {
	Link     string          `json:"link"`
	Flatrate []ProviderEntry `json:"flatrate"`
	Rent     []ProviderEntry `json:"rent"`
	Buy      []ProviderEntry `json:"buy"`
}

type CollectionRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type MovieDetails struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Overview     string         `json:"overview"`
	PosterPath   string         `json:"poster_path"`
	BackdropPath string         `json:"backdrop_path"`
	ReleaseDate  string         `json:"release_date"`
	VoteAverage  float64        `json:"vote_average"`
	VoteCount    int            `json:"vote_count"`
	Runtime      int            `json:"runtime"`
	IMDBID       string         `json:"imdb_id"`
	Genres       []Genre        `json:"genres"`
	Collection   *CollectionRef `json:"belongs_to_collection"`
	Videos       struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	ExternalIDs struct {
		IMDBID string `json:"imdb_id"`
	} `json:"external_ids"`
	WatchProviders struct {
		Results map[string]RegionProviders `json:"results"`
	} `json:"watch/providers"`
	Credits struct {
		Cast []CastMember `json:"cast"`
		Crew []CrewMember `json:"crew"`
	} `json:"credits"`
}

type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type CrewMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Trailer picks the first YouTube video of type Trailer, nil when none exists.
// Teasers and clips do not count.
func (d MovieDetails) Trailer() *Video {
	for i := range d.Videos.Results {
		v := d.Videos.Results[i]
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return &v
		}
	}
	return nil
}

type PersonResult struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
}

type CreditEntry struct {
	MovieResult
	Job string `json:"job"`
}

type CompanyResult struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type searchMoviesResponse struct {
	Results []MovieResult `json:"results"`
}

type searchPersonResponse struct {
	Results []PersonResult `json:"results"`
}

type searchCompanyResponse struct {
	Results []CompanyResult `json:"results"`
}

type creditsResponse struct {
	Cast []CreditEntry `json:"cast"`
	Crew []CreditEntry `json:"crew"`
}

type collectionResponse struct {
	Parts []MovieResult `json:"parts"`
}

// SearchMovies searches by title. Year is optional and narrows the primary
// release year when non-empty.
func (c *Client) SearchMovies(ctx context.Context, title, year string) ([]MovieResult, error) {
	params := url.Values{
		"query":         {strings.TrimSpace(title)},
		"include_adult": {"false"},
		"language":      {"en-US"},
	}
	if year = strings.TrimSpace(year); year != "" {
		params.Set("year", year)
	}
	var response searchMoviesResponse
	if err := c.get(ctx, "search_movie", "/search/movie", params, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// Details fetches a movie with videos, external IDs and watch providers in one call.
func (c *Client) Details(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := url.Values{"append_to_response": {"videos,external_ids,watch/providers"}}
	var details MovieDetails
	if err := c.get(ctx, "movie_details", fmt.Sprintf("/movie/%d", movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// DetailsWithCredits fetches a movie with videos plus cast and crew, the shape
// the details endpoint forwards to clients.
func (c *Client) DetailsWithCredits(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := url.Values{"append_to_response": {"videos,credits"}}
	var details MovieDetails
	if err := c.get(ctx, "movie_details", fmt.Sprintf("/movie/%d", movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) SearchPerson(ctx context.Context, name string) ([]PersonResult, error) {
	params := url.Values{"query": {strings.TrimSpace(name)}}
	var response searchPersonResponse
	if err := c.get(ctx, "search_person", "/search/person", params, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// PersonMovieCredits returns both acting and crew credits for a person.
func (c *Client) PersonMovieCredits(ctx context.Context, personID int) (cast, crew []CreditEntry, err error) {
	var response creditsResponse
	if err := c.get(ctx, "person_credits", fmt.Sprintf("/person/%d/movie_credits", personID), nil, &response); err != nil {
		return nil, nil, err
	}
	return response.Cast, response.Crew, nil
}

func (c *Client) SearchCompany(ctx context.Context, name string) ([]CompanyResult, error) {
	params := url.Values{"query": {strings.TrimSpace(name)}}
	var response searchCompanyResponse
	if err := c.get(ctx, "search_company", "/search/company", params, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// DiscoverByCompany lists a production company's movies, most popular first.
func (c *Client) DiscoverByCompany(ctx context.Context, companyID int) ([]MovieResult, error) {
	params := url.Values{
		"with_companies": {fmt.Sprint(companyID)},
		"sort_by":        {"popularity.desc"},
	}
	var response searchMoviesResponse
	if err := c.get(ctx, "discover_company", "/discover/movie", params, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// WatchProviders fetches streaming availability by region for one movie.
func (c *Client) WatchProviders(ctx context.Context, movieID int) (map[string]RegionProviders, error) {
	var response struct {
		Results map[string]RegionProviders `json:"results"`
	}
	if err := c.get(ctx, "watch_providers", fmt.Sprintf("/movie/%d/watch/providers", movieID), nil, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// CollectionParts returns every movie in a TMDB collection.
func (c *Client) CollectionParts(ctx context.Context, collectionID int) ([]MovieResult, error) {
	var response collectionResponse
	if err := c.get(ctx, "collection", fmt.Sprintf("/collection/%d", collectionID), nil, &response); err != nil {
		return nil, err
	}
	return response.Parts, nil
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	if !c.Enabled() {
		return fmt.Errorf("tmdb: api key not configured")
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	cacheKey := redisCacheKey + path + "?" + canonicalQuery(params)
	if c.redis != nil {
		if data, err := c.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			if json.Unmarshal(data, out) == nil {
				return nil
			}
		}
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.TMDBRequestsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TMDBRequestsTotal.WithLabelValues(operation, fmt.Sprint(resp.StatusCode)).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tmdb HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		metrics.TMDBRequestsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.TMDBRequestsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	metrics.TMDBRequestsTotal.WithLabelValues(operation, "ok").Inc()

	if c.redis != nil {
		_ = c.redis.Set(ctx, cacheKey, body, c.cacheTTL).Err()
	}
	return nil
}

// canonicalQuery encodes params without the api_key so cache keys stay
// stable across key rotations.
func canonicalQuery(params url.Values) string {
	clone := url.Values{}
	for key, values := range params {
		if key == "api_key" {
			continue
		}
		clone[key] = values
	}
	return clone.Encode()
}
