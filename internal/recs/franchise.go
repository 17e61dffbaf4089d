package recs

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/tmdb"
)

const franchiseResultLimit = 15

// franchiseIndicators are stripped from a title's edges when deriving the
// base franchise name ("Back to the Future Part III" -> "back to the future").
var franchiseIndicators = []string{
	"part", "episode", "chapter", "volume", "vol",
	"the", "a", "an", "and", "or", "of", "in", "on", "at",
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "0",
	"i", "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x",
	"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"trilogy", "series",
}

var (
	punctuation    = regexp.MustCompile(`[^\w\s]`)
	sequelNumber   = regexp.MustCompile(`\b[0-9]+\b`)
	sequelNumerals = regexp.MustCompile(`\b(i{1,3}|iv|v|vi{1,3}|ix|x)\b`)
)

// moviesByFranchise finds every installment of the franchise a title belongs
// to. The TMDB collection is authoritative when one exists; otherwise a
// base-title search approximates the franchise. Results come back in release
// order.
func (s *Service) moviesByFranchise(ctx context.Context, term, originalQuery string) ([]domain.Movie, error) {
	results, err := s.tmdb.SearchMovies(ctx, term, "")
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	best := results[0]

	details, err := s.tmdb.Details(ctx, best.ID)
	if err != nil {
		return nil, err
	}
	if details.Collection != nil {
		parts, err := s.tmdb.CollectionParts(ctx, details.Collection.ID)
		if err != nil {
			return nil, err
		}
		if len(parts) > 0 {
			slog.Info("franchise collection found",
				slog.String("query", term),
				slog.String("collection", details.Collection.Name),
				slog.Int("movies", len(parts)),
			)
			movies := s.resultsToMovies(ctx, parts, "Franchise", "")
			sortByYearAsc(movies)
			return movies, nil
		}
	}

	// No collection: search on the stripped base title and keep results that
	// look like installments.
	baseTitle := franchiseBaseTitle(term)
	candidates, err := s.tmdb.SearchMovies(ctx, baseTitle, "")
	if err != nil {
		return nil, err
	}

	matched := make([]tmdb.MovieResult, 0, len(candidates))
	for _, candidate := range candidates {
		if isFranchiseMatch(candidate.Title, baseTitle, originalQuery) {
			matched = append(matched, candidate)
		}
	}
	if len(matched) > franchiseResultLimit {
		matched = matched[:franchiseResultLimit]
	}
	if len(matched) == 0 {
		return nil, nil
	}

	slog.Info("franchise title match",
		slog.String("query", term),
		slog.String("baseTitle", baseTitle),
		slog.Int("movies", len(matched)),
	)
	movies := s.resultsToMovies(ctx, matched, "Franchise", "")
	sortByYearAsc(movies)
	return movies, nil
}

// franchiseBaseTitle lowers the title, cuts at the first colon, then drops
// punctuation and peels franchise indicators off both ends.
func franchiseBaseTitle(title string) string {
	base := strings.ToLower(strings.TrimSpace(title))
	base = strings.TrimSpace(strings.SplitN(base, ":", 2)[0])
	base = punctuation.ReplaceAllString(base, "")
	base = strings.TrimSpace(whitespace.ReplaceAllString(base, " "))

	// Peel until stable so "part iii" loses both words.
	for {
		before := base
		for _, indicator := range franchiseIndicators {
			base = strings.TrimSpace(strings.TrimSuffix(base, " "+indicator))
			base = strings.TrimSpace(strings.TrimPrefix(base, indicator+" "))
		}
		if base == before {
			break
		}
	}
	if full, ok := movieAbbreviations[strings.ToLower(strings.TrimSpace(title))]; ok {
		base = full
	}
	return base
}

func isFranchiseMatch(candidateTitle, baseTitle, originalQuery string) bool {
	title := strings.ToLower(candidateTitle)

	titleMatch := strings.Contains(title, baseTitle) || strings.Contains(baseTitle, title)

	hasSequelIndicator := strings.Contains(title, baseTitle+" ") &&
		(strings.Contains(title, " part ") ||
			strings.Contains(title, " chapter ") ||
			sequelNumber.MatchString(title) ||
			sequelNumerals.MatchString(title))

	return titleMatch || hasSequelIndicator || isAcronymMatch(title, originalQuery)
}

// isAcronymMatch checks whether a short query spells the initials of
// consecutive words in the title, so "lotr" hits "lord of the rings".
func isAcronymMatch(title, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) == 0 || len(query) > 5 {
		return false
	}
	words := strings.Fields(title)
	if len(words) < len(query) {
		return false
	}
	for start := 0; start <= len(words)-len(query); start++ {
		match := true
		for offset := 0; offset < len(query); offset++ {
			if words[start+offset][0] != query[offset] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sortByYearAsc(movies []domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		left, right := movies[i].Year.Int(), movies[j].Year.Int()
		if left == 0 || right == 0 {
			return false
		}
		return left < right
	})
}
