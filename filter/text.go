package filter

import (
	"log/slog"
	"regexp"
	"strings"
)

// regexpMarker is the legacy storage prefix that tags a text pattern as a
// regular expression instead of a plain substring.
const regexpMarker = "REGEX:"

// TextPattern is a text-list entry: either a plain case-insensitive
// substring or a regular expression matched against the whole message.
type TextPattern struct {
	Source string
	Regexp bool
}

// DecodeTextPattern turns a stored entry into a TextPattern, unwrapping the
// legacy regexp marker once at the store boundary.
func DecodeTextPattern(stored string) TextPattern {
	if src, ok := strings.CutPrefix(stored, regexpMarker); ok {
		return TextPattern{Source: src, Regexp: true}
	}
	return TextPattern{Source: stored}
}

// EncodeTextPattern is the inverse of DecodeTextPattern; entries round-trip
// through the store unchanged.
func EncodeTextPattern(p TextPattern) string {
	if p.Regexp {
		return regexpMarker + p.Source
	}
	return p.Source
}

// Matches reports whether the pattern matches the given text. A regexp
// pattern must match the whole text; a plain pattern is a case-insensitive
// substring test. An invalid regexp never matches.
func (p TextPattern) Matches(text string) bool {
	if p.Regexp {
		re, err := regexp.Compile("^(?:" + p.Source + ")$")
		if err != nil {
			slog.Debug("Skipping invalid text pattern", "pattern", p.Source, "error", err)
			return false
		}
		return re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(p.Source))
}

// textMatchesAny reports whether any stored pattern in the list matches the
// text. Empty text never matches, so text rules cannot suppress voice calls.
func textMatchesAny(stored []string, text string) bool {
	if text == "" {
		return false
	}
	for _, entry := range stored {
		if DecodeTextPattern(entry).Matches(text) {
			return true
		}
	}
	return false
}
