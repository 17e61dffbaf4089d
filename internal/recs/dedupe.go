package recs

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"triplefeature/recsservice/internal/domain"
)

// diacriticFolder strips combining marks so "Amélie" and "Amelie" collapse to
// the same dedupe key.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// titleKey lowercases and folds a title for case- and accent-insensitive
// comparison.
func titleKey(title string) string {
	folded, _, err := transform.String(diacriticFolder, title)
	if err != nil {
		folded = title
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// ExclusionSet is the set of titles a request asked to leave out.
type ExclusionSet map[string]struct{}

func NewExclusionSet(entries []domain.ExclusionEntry) ExclusionSet {
	set := make(ExclusionSet, len(entries))
	for _, entry := range entries {
		key := titleKey(entry.Title)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

func (set ExclusionSet) Contains(title string) bool {
	_, ok := set[titleKey(title)]
	return ok
}

// Dedupe drops movies whose title already appeared earlier in the slice or is
// on the exclusion set. First occurrence wins, so callers control priority by
// ordering the input.
func Dedupe(movies []domain.Movie, exclusions ExclusionSet) []domain.Movie {
	seen := make(map[string]struct{}, len(movies)+len(exclusions))
	for key := range exclusions {
		seen[key] = struct{}{}
	}

	unique := make([]domain.Movie, 0, len(movies))
	for _, movie := range movies {
		key := titleKey(movie.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, movie)
	}
	return unique
}
