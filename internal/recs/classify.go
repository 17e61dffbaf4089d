package recs

import (
	"regexp"
	"strings"

	"triplefeature/recsservice/internal/domain"
)

var actorMarkers = []string{
	"starring", "with actor", "featuring", "movies with", "films with",
	"actor", "actress", "cast", "played by", "stars",
}

var directorMarkers = []string{
	"directed by", "director", "directed", "filmmaker", "made by",
}

// studioKeywords doubles as the marker list and the extraction table: a bare
// studio name in the prompt is enough to route to the studio search.
var studioKeywords = []string{
	"pixar", "disney", "marvel", "warner", "universal", "paramount", "sony",
	"mgm", "20th century", "netflix", "hbo", "a24", "blumhouse", "dreamworks",
	"lucasfilm", "miramax",
}

var studioMarkers = append([]string{
	"studio", "production", "movies by", "films by", "produced by",
}, studioKeywords...)

var (
	actorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)starring\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)with\s+(?:actor|actress)\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)featuring\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)movies\s+with\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)films\s+with\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)(?:actor|actress)\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)played\s+by\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)stars\s+([a-zA-Z\s\.]+)`),
	}

	directorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)directed\s+by\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)director\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)made\s+by\s+([a-zA-Z\s\.]+)`),
		regexp.MustCompile(`(?i)filmmaker\s+([a-zA-Z\s\.]+)`),
	}

	studioPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)movies\s+by\s+([a-zA-Z\s&\.]+)`),
		regexp.MustCompile(`(?i)films\s+by\s+([a-zA-Z\s&\.]+)`),
		regexp.MustCompile(`(?i)produced\s+by\s+([a-zA-Z\s&\.]+)`),
	}

	actorStopWords    = regexp.MustCompile(`(?i)\b(in|the|a|an|and|or|of|as|by|for|with|movies|films|starring)\b`)
	directorStopWords = regexp.MustCompile(`(?i)\b(movies|films|directed|director|the|a|an|and|or|of|as|by|for|with)\b`)
	studioStopWords   = regexp.MustCompile(`(?i)\b(movies|films|studio|production|company|the|a|an|and|or|of|as|by|for|with)\b`)

	whitespace = regexp.MustCompile(`\s+`)
)

// movieAbbreviations maps shorthand queries to the titles users mean.
var movieAbbreviations = map[string]string{
	"bttf":    "back to the future",
	"lotr":    "lord of the rings",
	"hp":      "harry potter",
	"sw":      "star wars",
	"mcu":     "marvel",
	"dceu":    "dc comics",
	"potc":    "pirates of the caribbean",
	"f&f":     "fast and furious",
	"f and f": "fast and furious",
	"mi":      "mission impossible",
	"jp":      "jurassic park",
	"jw":      "jurassic world",
	"gotg":    "guardians of the galaxy",
	"iw":      "infinity war",
	"eg":      "endgame",
	"tdk":     "the dark knight",
	"rotk":    "return of the king",
	"fotr":    "fellowship of the ring",
	"tt":      "two towers",
	"aotc":    "attack of the clones",
	"rots":    "revenge of the sith",
	"tfa":     "the force awakens",
	"tlj":     "the last jedi",
	"tros":    "the rise of skywalker",
	"rogue 1": "rogue one",
	"ij":      "indiana jones",
}

// franchiseAbbreviations are shorthands worth catching as substrings of a
// longer phrase, not just as standalone words.
var franchiseAbbreviations = []string{"lotr", "hp", "sw", "mcu", "dceu", "potc", "f&f", "gotg"}

// Classify routes a prompt to a search strategy. Marker checks run in a fixed
// order and the first hit wins, so "movies with Tom Hanks directed by..."
// resolves as an actor search.
func Classify(prompt string) domain.Classification {
	lower := strings.ToLower(prompt)

	if containsAny(lower, actorMarkers) {
		return domain.Classification{Kind: domain.QueryActor, Term: ExtractActorName(prompt)}
	}
	if containsAny(lower, directorMarkers) {
		return domain.Classification{Kind: domain.QueryDirector, Term: ExtractDirectorName(prompt)}
	}
	if containsAny(lower, studioMarkers) {
		return domain.Classification{Kind: domain.QueryStudio, Term: ExtractStudioName(prompt)}
	}
	if isDirectTitleQuery(lower) {
		return domain.Classification{Kind: domain.QueryTitle, Term: ResolveAbbreviation(prompt)}
	}
	return domain.Classification{Kind: domain.QueryGeneric}
}

// isDirectTitleQuery treats short prompts without recommendation language as
// literal title lookups.
func isDirectTitleQuery(lower string) bool {
	return !strings.Contains(lower, "like") &&
		!strings.Contains(lower, "similar") &&
		!strings.Contains(lower, "recommend") &&
		len(lower) < 50
}

func containsAny(value string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}

func ExtractActorName(prompt string) string {
	return extractByPatterns(prompt, actorPatterns, actorStopWords)
}

func ExtractDirectorName(prompt string) string {
	return extractByPatterns(prompt, directorPatterns, directorStopWords)
}

// ExtractStudioName prefers a known studio keyword anywhere in the prompt,
// then falls back to pattern extraction.
func ExtractStudioName(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, keyword := range studioKeywords {
		if strings.Contains(lower, keyword) {
			return keyword
		}
	}
	return extractByPatterns(prompt, studioPatterns, studioStopWords)
}

func extractByPatterns(prompt string, patterns []*regexp.Regexp, stopWords *regexp.Regexp) string {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(prompt)
		if match == nil {
			continue
		}
		name := stopWords.ReplaceAllString(strings.TrimSpace(match[1]), " ")
		name = strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
		if name != "" {
			return name
		}
	}
	return ""
}

// ResolveAbbreviation expands a shorthand query into the full title it stands
// for. Whole-prompt matches win, then single words, then franchise shorthands
// embedded in a longer phrase. Unrecognized prompts come back unchanged.
func ResolveAbbreviation(prompt string) string {
	lower := strings.ToLower(strings.TrimSpace(prompt))

	if full, ok := movieAbbreviations[lower]; ok {
		return full
	}
	for _, word := range strings.Fields(lower) {
		if full, ok := movieAbbreviations[word]; ok {
			return full
		}
	}
	for _, abbr := range franchiseAbbreviations {
		if strings.Contains(lower, abbr) {
			return movieAbbreviations[abbr]
		}
	}
	return strings.TrimSpace(prompt)
}
