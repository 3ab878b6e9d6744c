package filter

import (
	"log/slog"
	"regexp"
	"strings"
)

// NormalizePhone strips formatting from a raw phone number, keeping digits
// and a leading "+" only, so that dashes, spaces, and parentheses never
// affect matching.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	b.Grow(len(phone))
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhonePatternToRegexp converts a user-entered phone pattern into an anchored
// regexp. "*" becomes ".*"; everything else is matched literally. The raw
// pattern is split on the wildcard first, then each segment is normalized,
// so that a formatted pattern still matches a formatted phone without the
// wildcard itself being stripped as formatting.
func PhonePatternToRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(NormalizePhone(part))
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

// phoneMatchesAny reports whether the normalized phone matches any pattern
// in the list. Patterns that fail to compile are skipped.
func phoneMatchesAny(patterns []string, normalizedPhone string) bool {
	for _, pattern := range patterns {
		re, err := PhonePatternToRegexp(pattern)
		if err != nil {
			slog.Debug("Skipping invalid phone pattern", "pattern", pattern, "error", err)
			continue
		}
		if re.MatchString(normalizedPhone) {
			return true
		}
	}
	return false
}
