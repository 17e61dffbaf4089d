package recs

import (
	"testing"

	"triplefeature/recsservice/internal/domain"
)

func TestDedupeFirstProviderWins(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Inception", Source: "GPT-4"},
		{Title: "inception", Source: "Claude"},
		{Title: "INCEPTION", Source: "Gemini"},
		{Title: "Tenet", Source: "Claude"},
	}

	got := Dedupe(movies, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(got))
	}
	if got[0].Source != "GPT-4" {
		t.Fatalf("expected first provider to win, got %s", got[0].Source)
	}
	if got[1].Title != "Tenet" {
		t.Fatalf("unexpected second movie: %s", got[1].Title)
	}
}

func TestDedupeFoldsDiacritics(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Amélie", Source: "GPT-4"},
		{Title: "Amelie", Source: "Claude"},
	}

	got := Dedupe(movies, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(got))
	}
	if got[0].Title != "Amélie" {
		t.Fatalf("unexpected survivor: %s", got[0].Title)
	}
}

func TestDedupeDropsEmptyTitles(t *testing.T) {
	movies := []domain.Movie{
		{Title: "   ", Source: "GPT-4"},
		{Title: "Heat", Source: "Claude"},
	}

	got := Dedupe(movies, nil)
	if len(got) != 1 || got[0].Title != "Heat" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDedupeAppliesExclusions(t *testing.T) {
	exclusions := NewExclusionSet([]domain.ExclusionEntry{
		{Title: "The Matrix"},
		{Title: "heat"},
	})

	movies := []domain.Movie{
		{Title: "the matrix", Source: "GPT-4"},
		{Title: "Heat", Source: "Claude"},
		{Title: "Collateral", Source: "Gemini"},
	}

	got := Dedupe(movies, exclusions)
	if len(got) != 1 || got[0].Title != "Collateral" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestExclusionSetContains(t *testing.T) {
	set := NewExclusionSet([]domain.ExclusionEntry{{Title: "Señor"}})
	if !set.Contains("senor") {
		t.Fatal("expected diacritic-insensitive match")
	}
	if set.Contains("other") {
		t.Fatal("unexpected match")
	}
}
