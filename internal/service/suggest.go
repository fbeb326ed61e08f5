package service

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"waterline/internal/database/repository"
)

// maxSuggestDistance bounds how far a typo may be from a known category.
const maxSuggestDistance = 2

// MatchCategory resolves free-form input against the known categories:
// exact match (case-insensitive) first, then the nearest name within a
// small edit distance. Returns the canonical name and whether it matched.
func MatchCategory(input string, categories []repository.Category) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	lower := strings.ToLower(input)
	for _, c := range categories {
		if strings.ToLower(c.Name) == lower {
			return c.Name, true
		}
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, c := range categories {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c.Name))
		if d < bestDist {
			best, bestDist = c.Name, d
		}
	}
	if bestDist <= maxSuggestDistance {
		return best, true
	}
	return "", false
}
