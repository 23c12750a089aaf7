package booking

import "strings"

// ParseUsernameList splits the raw path parameter into an ordered username list.
// "alice+bob" and "alice,bob" address the same dynamic group; order is preserved
// because it decides the canonical dynamic-group path.
func ParseUsernameList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '+' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
