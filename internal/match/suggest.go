package match

import (
	"cmp"
	"slices"
)

// DefaultThreshold is the minimum similarity for a suggestion.
const DefaultThreshold = 0.6

// Candidate is a source property scored against a target property.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every candidate against target and returns those reaching
// threshold, best first. Equal scores keep the candidates' order.
func Rank(target string, candidates []string, threshold float64) []Candidate {
	var ranked []Candidate

	for _, name := range candidates {
		score := Similarity(target, name)
		if score < threshold {
			continue
		}

		ranked = append(ranked, Candidate{Name: name, Score: score})
	}

	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return ranked
}

// Suggest returns up to limit candidate names similar to target.
func Suggest(target string, candidates []string, limit int) []string {
	ranked := Rank(target, candidates, DefaultThreshold)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	names := make([]string, 0, len(ranked))
	for _, c := range ranked {
		names = append(names, c.Name)
	}

	return names
}
