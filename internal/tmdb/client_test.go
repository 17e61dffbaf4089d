package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchMoviesSendsYear(t *testing.T) {
	var gotQuery, gotYear string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotYear = r.URL.Query().Get("year")
		w.Write([]byte(`{"results":[{"id":603,"title":"The Matrix","release_date":"1999-03-31","vote_average":8.2,"vote_count":26000}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	results, err := client.SearchMovies(context.Background(), "The Matrix", "1999")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if gotQuery != "The Matrix" || gotYear != "1999" {
		t.Fatalf("unexpected query params: query=%q year=%q", gotQuery, gotYear)
	}
	if len(results) != 1 || results[0].ID != 603 {
		t.Fatalf("unexpected results: %#v", results)
	}
	if results[0].ReleaseYear() != 1999 {
		t.Fatalf("unexpected release year: %d", results[0].ReleaseYear())
	}
}

func TestDetailsAppendsExtras(t *testing.T) {
	var gotAppend string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAppend = r.URL.Query().Get("append_to_response")
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"runtime": 136,
			"belongs_to_collection": {"id": 2344, "name": "The Matrix Collection"},
			"videos": {"results": [
				{"key": "teaser1", "site": "YouTube", "type": "Teaser"},
				{"key": "trailer1", "site": "YouTube", "type": "Trailer"}
			]},
			"external_ids": {"imdb_id": "tt0133093"},
			"watch/providers": {"results": {"US": {"flatrate": [{"provider_name": "Max", "logo_path": "/max.png"}]}}}
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	details, err := client.Details(context.Background(), 603)
	if err != nil {
		t.Fatalf("details error: %v", err)
	}
	if gotAppend != "videos,external_ids,watch/providers" {
		t.Fatalf("unexpected append_to_response: %q", gotAppend)
	}
	if details.Collection == nil || details.Collection.ID != 2344 {
		t.Fatalf("expected collection ref, got %#v", details.Collection)
	}
	if details.ExternalIDs.IMDBID != "tt0133093" {
		t.Fatalf("unexpected imdb id: %q", details.ExternalIDs.IMDBID)
	}
	trailer := details.Trailer()
	if trailer == nil || trailer.Key != "trailer1" {
		t.Fatalf("expected trailer over teaser, got %#v", trailer)
	}
	us, ok := details.WatchProviders.Results["US"]
	if !ok || len(us.Flatrate) != 1 || us.Flatrate[0].ProviderName != "Max" {
		t.Fatalf("unexpected US providers: %#v", us)
	}
}

func TestDetailsWithCreditsAppendsCredits(t *testing.T) {
	var gotAppend string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAppend = r.URL.Query().Get("append_to_response")
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"videos": {"results": [{"key": "trailer1", "site": "YouTube", "type": "Trailer"}]},
			"credits": {
				"cast": [{"id": 6384, "name": "Keanu Reeves", "character": "Neo"}],
				"crew": [{"id": 9340, "name": "Lana Wachowski", "job": "Director"}]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	details, err := client.DetailsWithCredits(context.Background(), 603)
	if err != nil {
		t.Fatalf("details error: %v", err)
	}
	if gotAppend != "videos,credits" {
		t.Fatalf("unexpected append_to_response: %q", gotAppend)
	}
	if len(details.Credits.Cast) != 1 || details.Credits.Cast[0].Character != "Neo" {
		t.Fatalf("unexpected cast: %+v", details.Credits.Cast)
	}
	if len(details.Credits.Crew) != 1 || details.Credits.Crew[0].Job != "Director" {
		t.Fatalf("unexpected crew: %+v", details.Credits.Crew)
	}
}

func TestTrailerRequiresTrailerTypedYouTubeVideo(t *testing.T) {
	details := MovieDetails{}
	details.Videos.Results = []Video{
		{Key: "vimeo1", Site: "Vimeo", Type: "Trailer"},
		{Key: "teaser1", Site: "YouTube", Type: "Teaser"},
		{Key: "clip1", Site: "YouTube", Type: "Clip"},
	}
	if trailer := details.Trailer(); trailer != nil {
		t.Fatalf("expected no trailer without a Trailer-typed YouTube video, got %#v", trailer)
	}

	details.Videos.Results = append(details.Videos.Results, Video{Key: "trailer1", Site: "YouTube", Type: "Trailer"})
	trailer := details.Trailer()
	if trailer == nil || trailer.Key != "trailer1" {
		t.Fatalf("expected trailer1, got %#v", trailer)
	}
}

func TestDiscoverByCompanySortsByPopularity(t *testing.T) {
	var gotCompany, gotSort string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCompany = r.URL.Query().Get("with_companies")
		gotSort = r.URL.Query().Get("sort_by")
		w.Write([]byte(`{"results":[{"id":1,"title":"Toy Story"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	results, err := client.DiscoverByCompany(context.Background(), 3)
	if err != nil {
		t.Fatalf("discover error: %v", err)
	}
	if gotCompany != "3" || gotSort != "popularity.desc" {
		t.Fatalf("unexpected params: company=%q sort=%q", gotCompany, gotSort)
	}
	if len(results) != 1 || results[0].Title != "Toy Story" {
		t.Fatalf("unexpected results: %#v", results)
	}
}

func TestGetReportsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	if _, err := client.SearchMovies(context.Background(), "anything", ""); err == nil {
		t.Fatal("expected error for HTTP 401")
	}
}

func TestDisabledClientRejectsRequests(t *testing.T) {
	client := NewClient(Config{})
	if client.Enabled() {
		t.Fatal("expected client without key to be disabled")
	}
	if _, err := client.SearchMovies(context.Background(), "anything", ""); err == nil {
		t.Fatal("expected error from disabled client")
	}
}
