package filter

import "strings"

const keywordAnd = "and"

// splitConditions splits s on the AND keyword (case-insensitive) wherever it
// has whitespace on both sides. A bare AND at the start or end of s also
// counts as a separator. Parts are trimmed and empty parts, such as the one
// produced by "a=1 AND AND b=2", are dropped.
func splitConditions(s string) []string {
	s = strings.TrimSpace(s)
	var parts []string
	lastSplit := 0

	for i := 0; i+len(keywordAnd) <= len(s); i++ {
		end := i + len(keywordAnd)
		if i > 0 && !isSpace(s[i-1]) {
			continue
		}
		if end < len(s) && !isSpace(s[end]) {
			continue
		}
		if !strings.EqualFold(s[i:end], keywordAnd) {
			continue
		}
		parts = appendNonEmpty(parts, s[lastSplit:i])
		lastSplit = end
		i = end - 1
	}

	return appendNonEmpty(parts, s[lastSplit:])
}

func appendNonEmpty(parts []string, part string) []string {
	part = strings.TrimSpace(part)
	if part == "" {
		return parts
	}
	return append(parts, part)
}

// isSpace matches the ASCII whitespace class used by the condition grammar.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
