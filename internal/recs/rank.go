package recs

import (
	"math"
	"sort"
	"strings"

	"triplefeature/recsservice/internal/domain"
)

// rankingStopWords are too common to count as keyword matches.
var rankingStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {},
}

type scoredMovie struct {
	movie             domain.Movie
	score             float64
	keywordMatches    int
	exactTitleMatch   bool
	partialTitleMatch bool
}

// Rank orders movies by relevance to the prompt. Direct title queries get
// exact and partial title matches pulled to the front; everything else is
// scored on metadata quality plus keyword overlap, and thin keyword overlap
// is filtered out when enough relevant movies remain.
func Rank(movies []domain.Movie, prompt string, weights domain.RankingWeights) []domain.Movie {
	promptLower := strings.ToLower(prompt)
	directTitle := isDirectTitleQuery(promptLower)
	keywords := extractKeywords(promptLower)

	scored := make([]scoredMovie, len(movies))
	for i, movie := range movies {
		scored[i] = scoreMovie(movie, promptLower, keywords, weights)
	}

	if directTitle {
		if ordered, ok := prioritizeTitleMatches(scored); ok {
			return ordered
		}
	}

	relevant := make([]scoredMovie, 0, len(scored))
	for _, entry := range scored {
		if entry.keywordMatches > 0 || entry.exactTitleMatch || entry.partialTitleMatch {
			relevant = append(relevant, entry)
		}
	}
	if len(relevant) < weights.MinRelevantResults {
		relevant = scored
	}

	sortByScoreDesc(relevant)
	return unwrap(relevant)
}

func scoreMovie(movie domain.Movie, promptLower string, keywords []string, weights domain.RankingWeights) scoredMovie {
	entry := scoredMovie{movie: movie, score: weights.Base}

	if movie.Rating != nil {
		entry.score += math.Min(*movie.Rating, weights.RatingCap)
	}
	if movie.VoteCount != nil && *movie.VoteCount > 0 {
		entry.score += math.Min(math.Log(float64(*movie.VoteCount))/weights.VoteLogDivisor, weights.VoteCap)
	}
	if movie.TrailerURL != nil {
		entry.score += weights.Trailer
	}
	if len(movie.StreamingProviders) > 0 {
		entry.score += math.Min(float64(len(movie.StreamingProviders)), weights.ProviderCap)
		for _, provider := range movie.StreamingProviders {
			if provider.Kind == domain.ProviderSubscription {
				entry.score += weights.SubscriptionBonus
				break
			}
		}
	}

	title := strings.ToLower(movie.Title)
	summary := strings.ToLower(movie.Summary)
	genres := strings.ToLower(strings.Join(movie.Genres, " "))

	switch {
	case title == promptLower ||
		stripPunctuation(title) == stripPunctuation(promptLower):
		entry.score += weights.ExactTitle
		entry.exactTitleMatch = true
	case strings.Contains(title, promptLower):
		entry.score += weights.FullQueryInTitle
		entry.partialTitleMatch = true
	case len(promptLower) > 5 &&
		(strings.HasPrefix(title, promptLower) || strings.HasPrefix(promptLower, title)):
		entry.score += weights.FranchiseTitle
		entry.partialTitleMatch = true
	}

	for _, keyword := range keywords {
		if strings.Contains(title, keyword) {
			entry.score += weights.KeywordTitle
			entry.keywordMatches++
		}
		if strings.Contains(summary, keyword) {
			entry.score += weights.KeywordSummary
			entry.keywordMatches++
		}
		if strings.Contains(genres, keyword) {
			entry.score += weights.KeywordGenre
			entry.keywordMatches++
		}
	}
	if entry.keywordMatches > 1 {
		entry.score += float64(entry.keywordMatches) * weights.MultiKeywordBonus
	}

	return entry
}

// prioritizeTitleMatches front-loads exact matches, or partial matches when
// no exact match exists. Returns false when neither bucket has movies so the
// caller falls through to keyword ranking.
func prioritizeTitleMatches(scored []scoredMovie) ([]domain.Movie, bool) {
	exact := make([]scoredMovie, 0, len(scored))
	partial := make([]scoredMovie, 0, len(scored))
	for _, entry := range scored {
		switch {
		case entry.exactTitleMatch:
			exact = append(exact, entry)
		case entry.partialTitleMatch:
			partial = append(partial, entry)
		}
	}

	pick := func(front []scoredMovie, isFront func(scoredMovie) bool) []domain.Movie {
		rest := make([]scoredMovie, 0, len(scored))
		for _, entry := range scored {
			if !isFront(entry) {
				rest = append(rest, entry)
			}
		}
		sortByScoreDesc(front)
		sortByScoreDesc(rest)
		return append(unwrap(front), unwrap(rest)...)
	}

	if len(exact) > 0 {
		return pick(exact, func(entry scoredMovie) bool { return entry.exactTitleMatch }), true
	}
	if len(partial) > 0 {
		return pick(partial, func(entry scoredMovie) bool { return entry.partialTitleMatch }), true
	}
	return nil, false
}

func extractKeywords(promptLower string) []string {
	cleaned := stripPunctuation(promptLower)
	words := strings.Fields(cleaned)
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 2 {
			continue
		}
		if _, stop := rankingStopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func stripPunctuation(value string) string {
	return punctuation.ReplaceAllString(value, "")
}

func sortByScoreDesc(entries []scoredMovie) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
}

func unwrap(entries []scoredMovie) []domain.Movie {
	movies := make([]domain.Movie, len(entries))
	for i, entry := range entries {
		movies[i] = entry.movie
	}
	return movies
}
