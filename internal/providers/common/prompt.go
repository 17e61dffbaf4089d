package common

import (
	"fmt"
	"regexp"
	"strings"
)

var yearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

const promptTemplate = `You are a movie recommendation expert. Based on the user's description, recommend exactly 5 movies that match their vibe. %s
%s

Return your response as a JSON object with this exact structure:
{
  "movies": [
    {
      "title": "Movie Title",
      "year": 2023,
      "summary": "Brief description of the movie and why it matches the vibe"
    }
  ]
}

Only return the JSON object, no additional text.`

// BuildSystemPrompt renders the shared instruction block for every model.
// A four-digit year in the query pins the recommendations to that year, and
// a non-empty exclusion list tells the model which titles to avoid.
func BuildSystemPrompt(query string, exclude []string) string {
	yearClause := ""
	if match := yearPattern.FindString(query); match != "" {
		yearClause = fmt.Sprintf("Pay special attention to the year %s mentioned in the query. The user specifically wants movies from %s.", match, match)
	}

	exclusionClause := ""
	if len(exclude) > 0 {
		exclusionClause = fmt.Sprintf("Do NOT include these movies in your recommendations: %s. Provide completely different movies.", strings.Join(exclude, ", "))
	}

	return fmt.Sprintf(promptTemplate, yearClause, exclusionClause)
}
