package schema

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/zclconf/go-cty/cty"
)

// Suggest returns the candidate closest to name by edit distance, or ""
// when no candidate is close enough. Letter case is ignored. A candidate
// qualifies when its distance is below 3 and below the length of name;
// ties keep the earlier candidate.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	lower := strings.ToLower(name)
	for _, c := range candidates {
		d := levenshtein.Distance(lower, strings.ToLower(c), nil)
		if d >= 3 || d >= len(name) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sortedAttrNames(attrs map[string]cty.Type) []string {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
