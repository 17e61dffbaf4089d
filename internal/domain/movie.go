package domain

import (
	"bytes"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Year carries a release year that upstream sources deliver as a JSON number,
// a string, or null. The empty string means unknown.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		*y = ""
		return nil
	}
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(string(raw))
		if err != nil {
			*y = ""
			return nil
		}
		*y = Year(strings.TrimSpace(unquoted))
		return nil
	}
	// Numeric years may arrive as floats from lax upstream encoders.
	if idx := bytes.IndexByte(raw, '.'); idx > 0 {
		raw = raw[:idx]
	}
	*y = Year(string(raw))
	return nil
}

func (y Year) Int() int {
	value, err := strconv.Atoi(strings.TrimSpace(string(y)))
	if err != nil {
		return 0
	}
	return value
}

func (y Year) IsZero() bool {
	return strings.TrimSpace(string(y)) == ""
}

type ProviderKind string

const (
	ProviderSubscription ProviderKind = "subscription"
	ProviderRent         ProviderKind = "rent"
	ProviderBuy          ProviderKind = "buy"
)

type StreamingProvider struct {
	Name    string       `json:"name"`
	LogoURL string       `json:"logo"`
	Kind    ProviderKind `json:"type"`
}

// Movie is the single candidate record flowing through the pipeline. Provider
// fetchers and entity searches produce it with only the stub fields set; the
// enhancer fills the rest. Every enrichment field has a defined fallback:
// pointers stay nil, slices stay empty, WikipediaURL is always synthesized.
type Movie struct {
	Title   string `json:"title"`
	Year    Year   `json:"year,omitempty"`
	Summary string `json:"summary,omitempty"`
	Source  string `json:"source,omitempty"`

	TMDBID             int                 `json:"tmdbId,omitempty"`
	PosterURL          *string             `json:"poster"`
	BackdropURL        *string             `json:"backdrop"`
	Rating             *float64            `json:"rating"`
	VoteCount          *int                `json:"voteCount,omitempty"`
	Genres             []string            `json:"genres"`
	Runtime            *int                `json:"runtime,omitempty"`
	ReleaseDate        string              `json:"releaseDate,omitempty"`
	TrailerURL         *string             `json:"trailer"`
	TrailerKey         *string             `json:"trailerKey,omitempty"`
	IMDBID             string              `json:"imdbId,omitempty"`
	StreamingProviders []StreamingProvider `json:"streamingProviders"`
	JustWatchURL       *string             `json:"justwatchUrl,omitempty"`
	WikipediaURL       string              `json:"wikipediaUrl,omitempty"`
}

// ExclusionEntry accepts either a bare title string or a movie object with a
// title field, matching what clients send back on "more recommendations" calls.
// Unrecognized shapes decode to an empty title and are ignored downstream.
type ExclusionEntry struct {
	Title string
}

func (e *ExclusionEntry) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		e.Title = ""
		return nil
	}
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(string(raw))
		if err != nil {
			e.Title = ""
			return nil
		}
		e.Title = strings.TrimSpace(unquoted)
		return nil
	}
	var ref struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		e.Title = ""
		return nil
	}
	e.Title = strings.TrimSpace(ref.Title)
	return nil
}

func (e ExclusionEntry) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(e.Title)), nil
}

// ExclusionTitles flattens entries to their non-empty titles.
func ExclusionTitles(entries []ExclusionEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	titles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Title == "" {
			continue
		}
		titles = append(titles, entry.Title)
	}
	return titles
}

type RecommendRequest struct {
	Prompt  string           `json:"prompt"`
	Exclude []ExclusionEntry `json:"exclude,omitempty"`
}

type RecommendResponse struct {
	Movies []Movie `json:"movies"`
}

type QueryKind string

const (
	QueryActor    QueryKind = "actor"
	QueryDirector QueryKind = "director"
	QueryStudio   QueryKind = "studio"
	QueryTitle    QueryKind = "title"
	QueryGeneric  QueryKind = "generic"
)

// Classification is the classifier's verdict: what kind of search the prompt
// asks for, and the extracted name or title term when the kind implies one.
type Classification struct {
	Kind QueryKind
	Term string
}

// RankingWeights holds every scoring constant used by the relevance ranker.
// The values are empirically tuned; keep them configurable rather than inlined.
type RankingWeights struct {
	Base               float64
	RatingCap          float64
	VoteLogDivisor     float64
	VoteCap            float64
	Trailer            float64
	ProviderCap        float64
	SubscriptionBonus  float64
	ExactTitle         float64
	FullQueryInTitle   float64
	FranchiseTitle     float64
	KeywordTitle       float64
	KeywordSummary     float64
	KeywordGenre       float64
	MultiKeywordBonus  float64
	MinRelevantResults int
}

func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		Base:               5,
		RatingCap:          10,
		VoteLogDivisor:     2,
		VoteCap:            5,
		Trailer:            2,
		ProviderCap:        3,
		SubscriptionBonus:  2,
		ExactTitle:         1000,
		FullQueryInTitle:   500,
		FranchiseTitle:     300,
		KeywordTitle:       10,
		KeywordSummary:     5,
		KeywordGenre:       8,
		MultiKeywordBonus:  5,
		MinRelevantResults: 3,
	}
}

// NormalizeRankingWeights fills zero-valued fields with defaults so partially
// specified overrides stay sane.
func NormalizeRankingWeights(w RankingWeights) RankingWeights {
	defaults := DefaultRankingWeights()
	if w.Base == 0 {
		w.Base = defaults.Base
	}
	if w.RatingCap == 0 {
		w.RatingCap = defaults.RatingCap
	}
	if w.VoteLogDivisor == 0 {
		w.VoteLogDivisor = defaults.VoteLogDivisor
	}
	if w.VoteCap == 0 {
		w.VoteCap = defaults.VoteCap
	}
	if w.Trailer == 0 {
		w.Trailer = defaults.Trailer
	}
	if w.ProviderCap == 0 {
		w.ProviderCap = defaults.ProviderCap
	}
	if w.SubscriptionBonus == 0 {
		w.SubscriptionBonus = defaults.SubscriptionBonus
	}
	if w.ExactTitle == 0 {
		w.ExactTitle = defaults.ExactTitle
	}
	if w.FullQueryInTitle == 0 {
		w.FullQueryInTitle = defaults.FullQueryInTitle
	}
	if w.FranchiseTitle == 0 {
		w.FranchiseTitle = defaults.FranchiseTitle
	}
	if w.KeywordTitle == 0 {
		w.KeywordTitle = defaults.KeywordTitle
	}
	if w.KeywordSummary == 0 {
		w.KeywordSummary = defaults.KeywordSummary
	}
	if w.KeywordGenre == 0 {
		w.KeywordGenre = defaults.KeywordGenre
	}
	if w.MultiKeywordBonus == 0 {
		w.MultiKeywordBonus = defaults.MultiKeywordBonus
	}
	if w.MinRelevantResults == 0 {
		w.MinRelevantResults = defaults.MinRelevantResults
	}
	return w
}

// ProviderStatus reports one source's contribution to an aggregate request.
// It is logged and exported as metrics, never returned to clients.
type ProviderStatus struct {
	Name  string
	OK    bool
	Count int
	Error string
}

// ProviderInfo describes a registered provider for diagnostics.
type ProviderInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}
