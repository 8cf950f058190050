// Package strings holds small string helpers shared by request normalization.
package strings

import (
	"strings"
)

// DedupeAndTrimLower lowercases and trims each value, dropping blanks and
// repeats. First occurrence wins, so input order is kept.
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
