package assets

import "strings"

// fallbackQuery is used when keyword search cannot fill the minimum asset
// count. Broad enough to always return results.
const fallbackQuery = "nature landscape"

// ProcessKeywords splits a comma-separated keyword string into clean search
// terms.
func ProcessKeywords(keywords string) []string {
	return NormalizeTerms(strings.Split(keywords, ","))
}

// NormalizeTerms trims, deduplicates and caps search terms at three to limit
// API calls. An empty list falls back to broad default terms.
func NormalizeTerms(terms []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}

	if len(out) == 0 {
		return []string{"nature", "landscape"}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
