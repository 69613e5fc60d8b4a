// Package strings provides small string-slice helpers shared across features.
package strings

import "strings"

// DedupeAndTrimLower canonicalizes a list of case-insensitive names: each
// element is trimmed and lowercased, empties are dropped, and the first
// occurrence wins. Order is preserved.
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		canonical := strings.ToLower(strings.TrimSpace(v))
		if canonical == "" {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		result = append(result, canonical)
	}
	return result
}
