package suggestinput

import "strings"

// Normalize returns the form two suggestions are compared by: lower-cased and
// trimmed. Internal whitespace and accents are left alone, so "José" and
// "jose" are different suggestions.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// Filter returns at most maxItems suggestions whose normalized form contains
// the normalized query. An empty query matches everything. Entries are kept in
// their original order and only the first occurrence of each normalized form
// survives. A maxItems of zero or less means DefaultMaxItems.
func Filter(suggestions []string, query string, maxItems int) []string {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	q := Normalize(query)
	seen := make(map[string]struct{}, min(len(suggestions), maxItems))
	filtered := make([]string, 0, min(len(suggestions), maxItems))

	for _, s := range suggestions {
		if len(filtered) == maxItems {
			break
		}

		normalized := Normalize(s)
		if q != "" && !strings.Contains(normalized, q) {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}

		seen[normalized] = struct{}{}
		filtered = append(filtered, s)
	}

	return filtered
}
