package recs

import (
	"context"
	"testing"

	"triplefeature/recsservice/internal/tmdb"
)

func TestFranchiseBaseTitle(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Back to the Future Part III", "back to the future"},
		{"The Lord of the Rings: The Return of the King", "lord of the rings"},
		{"Iron Man 2", "iron man"},
		{"John Wick: Chapter 4", "john wick"},
		{"Heat", "heat"},
		{"bttf", "back to the future"},
	}
	for _, tc := range cases {
		if got := franchiseBaseTitle(tc.title); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.title, tc.want, got)
		}
	}
}

func TestIsFranchiseMatch(t *testing.T) {
	if !isFranchiseMatch("Back to the Future Part II", "back to the future", "back to the future") {
		t.Fatal("expected sequel title to match")
	}
	if !isFranchiseMatch("The Lord of the Rings: The Two Towers", "lord of the rings", "lotr") {
		t.Fatal("expected contained base title to match")
	}
	if isFranchiseMatch("Paddington", "back to the future", "back to the future") {
		t.Fatal("unexpected match for unrelated title")
	}
}

func TestIsAcronymMatch(t *testing.T) {
	if !isAcronymMatch("lord of the rings", "lotr") {
		t.Fatal("expected initials to match")
	}
	if !isAcronymMatch("the lord of the rings", "lotr") {
		t.Fatal("expected initials of consecutive inner words to match")
	}
	if isAcronymMatch("lord of the rings", "lotrx") {
		t.Fatal("unexpected match for wrong initials")
	}
	if isAcronymMatch("some very long franchise", "abcdef") {
		t.Fatal("queries beyond five characters never match")
	}
}

func TestMoviesByFranchisePrefersCollection(t *testing.T) {
	details := &tmdb.MovieDetails{ID: 105, Collection: &tmdb.CollectionRef{ID: 264, Name: "Back to the Future Collection"}}
	meta := &fakeMetadataClient{
		searchResults: map[string][]tmdb.MovieResult{
			"back to the future": {{ID: 105, Title: "Back to the Future", ReleaseDate: "1985-07-03"}},
		},
		details: map[int]*tmdb.MovieDetails{105: details},
		collections: map[int][]tmdb.MovieResult{
			264: {
				{ID: 165, Title: "Back to the Future Part II", ReleaseDate: "1989-11-22"},
				{ID: 105, Title: "Back to the Future", ReleaseDate: "1985-07-03"},
				{ID: 196, Title: "Back to the Future Part III", ReleaseDate: "1990-05-25"},
			},
		},
	}
	svc := NewService([]Provider{&fakeProvider{name: "GPT-4"}}, WithTMDB(meta))

	movies, err := svc.moviesByFranchise(context.Background(), "back to the future", "bttf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(movies))
	}
	if movies[0].Year != "1985" || movies[1].Year != "1989" || movies[2].Year != "1990" {
		t.Fatalf("expected release order, got %s, %s, %s", movies[0].Year, movies[1].Year, movies[2].Year)
	}
	if movies[0].Source != "Franchise" {
		t.Fatalf("unexpected source: %s", movies[0].Source)
	}
}

func TestMoviesByFranchiseFallsBackToBaseTitleSearch(t *testing.T) {
	meta := &fakeMetadataClient{
		searchResults: map[string][]tmdb.MovieResult{
			"iron man 2": {{ID: 10138, Title: "Iron Man 2", ReleaseDate: "2010-04-28"}},
			"iron man": {
				{ID: 10138, Title: "Iron Man 2", ReleaseDate: "2010-04-28"},
				{ID: 1726, Title: "Iron Man", ReleaseDate: "2008-04-30"},
				{ID: 9, Title: "Paddington", ReleaseDate: "2014-11-28"},
			},
		},
		details: map[int]*tmdb.MovieDetails{10138: {ID: 10138}},
	}
	svc := NewService([]Provider{&fakeProvider{name: "GPT-4"}}, WithTMDB(meta))

	movies, err := svc.moviesByFranchise(context.Background(), "Iron Man 2", "iron man 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 franchise movies, got %d", len(movies))
	}
	if movies[0].Title != "Iron Man" || movies[1].Title != "Iron Man 2" {
		t.Fatalf("expected release order, got %s then %s", movies[0].Title, movies[1].Title)
	}
}

func TestMoviesByFranchiseEmptyWhenNothingFound(t *testing.T) {
	svc := NewService([]Provider{&fakeProvider{name: "GPT-4"}}, WithTMDB(&fakeMetadataClient{}))

	movies, err := svc.moviesByFranchise(context.Background(), "no such movie here", "no such movie here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected no movies, got %d", len(movies))
	}
}
