package handlers

import "strings"

// compactStrings trims whitespace and drops empty entries, so a payload
// of [""] does not count as having ingredients.
func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
