// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim normalizes a comma-split header or query value: whitespace
// around each element is trimmed, empty elements and repeats are dropped,
// first-seen order is preserved. Role headers and expand parameters both
// arrive in this shape.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
