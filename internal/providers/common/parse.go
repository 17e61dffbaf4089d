package common

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"triplefeature/recsservice/internal/domain"
)

type movieList struct {
	Movies []domain.Movie `json:"movies"`
}

// ParseMovies decodes a model completion into movie stubs and tags each with
// the given source label. Fenced code blocks around the JSON are tolerated
// since models ignore formatting instructions often enough.
func ParseMovies(content, source string) ([]domain.Movie, error) {
	cleaned := stripCodeFence(content)
	if cleaned == "" {
		return nil, fmt.Errorf("empty completion")
	}

	var list movieList
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}

	movies := make([]domain.Movie, 0, len(list.Movies))
	for _, movie := range list.Movies {
		movie.Title = strings.TrimSpace(movie.Title)
		if movie.Title == "" {
			continue
		}
		movie.Source = source
		movies = append(movies, movie)
	}
	return movies, nil
}

func stripCodeFence(content string) string {
	value := strings.TrimSpace(content)
	if !strings.HasPrefix(value, "```") {
		return value
	}
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	if idx := strings.LastIndex(value, "```"); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}
