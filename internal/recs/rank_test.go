package recs

import (
	"testing"

	"triplefeature/recsservice/internal/domain"
)

func TestRankExactTitleWinsDirectQuery(t *testing.T) {
	high := 9.5
	movies := []domain.Movie{
		{Title: "Inception: The Cobol Job", Rating: &high},
		{Title: "Inception"},
		{Title: "Tenet"},
	}

	got := Rank(movies, "Inception", domain.DefaultRankingWeights())
	if got[0].Title != "Inception" {
		t.Fatalf("expected exact match first, got %s", got[0].Title)
	}
}

func TestRankPartialTitleWhenNoExactMatch(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Heat"},
		{Title: "Jurassic World Dominion"},
		{Title: "Jurassic World"},
	}

	got := Rank(movies, "jurassic world dom", domain.DefaultRankingWeights())
	if got[0].Title != "Jurassic World Dominion" {
		t.Fatalf("expected partial match first, got %s", got[0].Title)
	}
	if got[len(got)-1].Title != "Heat" {
		t.Fatalf("expected unrelated movie last, got %s", got[len(got)-1].Title)
	}
}

func TestRankKeywordOverlapOrdersGenericQuery(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Paddington", Summary: "A bear moves to London.", Genres: []string{"Family"}},
		{Title: "Alien", Summary: "A space crew fights a creature.", Genres: []string{"Horror", "Science Fiction"}},
		{Title: "Event Horizon", Summary: "A rescue ship finds horror in space.", Genres: []string{"Horror"}},
	}

	got := Rank(movies, "recommend scary space horror movies", domain.DefaultRankingWeights())
	if got[0].Title == "Paddington" {
		t.Fatalf("expected keyword matches to outrank %s", got[0].Title)
	}
	if got[len(got)-1].Title != "Paddington" {
		t.Fatalf("expected movie without matches last, got %s", got[len(got)-1].Title)
	}
}

func TestRankFiltersIrrelevantWhenEnoughRemain(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Alien", Genres: []string{"Horror"}},
		{Title: "The Thing", Genres: []string{"Horror"}},
		{Title: "Hereditary", Genres: []string{"Horror"}},
		{Title: "Paddington", Genres: []string{"Family"}},
	}

	got := Rank(movies, "recommend horror movies", domain.DefaultRankingWeights())
	if len(got) != 3 {
		t.Fatalf("expected irrelevant movie dropped, got %d movies", len(got))
	}
	for _, movie := range got {
		if movie.Title == "Paddington" {
			t.Fatal("expected Paddington to be filtered out")
		}
	}
}

func TestRankKeepsAllWhenTooFewRelevant(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Alien", Genres: []string{"Horror"}},
		{Title: "Paddington", Genres: []string{"Family"}},
		{Title: "Cars", Genres: []string{"Animation"}},
	}

	got := Rank(movies, "recommend horror movies", domain.DefaultRankingWeights())
	if len(got) != 3 {
		t.Fatalf("expected everything kept below the relevance floor, got %d", len(got))
	}
	if got[0].Title != "Alien" {
		t.Fatalf("expected the one relevant movie first, got %s", got[0].Title)
	}
}

func TestRankMetadataQualityBreaksTies(t *testing.T) {
	highRating := 8.7
	lowRating := 5.1
	votes := 12000
	trailer := "https://www.youtube.com/watch?v=abc"
	movies := []domain.Movie{
		{Title: "Sunshine", Summary: "A crew flies to the sun.", Rating: &lowRating},
		{
			Title:      "Moon",
			Summary:    "A lone worker on a lunar base.",
			Rating:     &highRating,
			VoteCount:  &votes,
			TrailerURL: &trailer,
			StreamingProviders: []domain.StreamingProvider{
				{Name: "Netflix", Kind: domain.ProviderSubscription},
			},
		},
	}

	got := Rank(movies, "recommend some films", domain.DefaultRankingWeights())
	if got[0].Title != "Moon" {
		t.Fatalf("expected richer metadata to win, got %s", got[0].Title)
	}
}

func TestRankExactMatchIgnoresPunctuation(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Mission: Impossible"},
		{Title: "Mission to Mars"},
	}

	got := Rank(movies, "mission impossible", domain.DefaultRankingWeights())
	if got[0].Title != "Mission: Impossible" {
		t.Fatalf("expected punctuation-insensitive exact match first, got %s", got[0].Title)
	}
}

func TestExtractKeywordsSkipsShortAndStopWords(t *testing.T) {
	got := extractKeywords("the best sci fi movies for me and you")
	for _, keyword := range got {
		switch keyword {
		case "the", "and", "for", "me", "fi":
			t.Fatalf("unexpected keyword %q", keyword)
		}
	}
	want := map[string]bool{"best": false, "sci": false, "movies": false, "you": false}
	for _, keyword := range got {
		if _, ok := want[keyword]; ok {
			want[keyword] = true
		}
	}
	for keyword, seen := range want {
		if !seen {
			t.Fatalf("expected keyword %q", keyword)
		}
	}
}
