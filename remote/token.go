package remote

import "strings"

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenQuoted
	tokenPhone
)

// token is one element of the immutable stream the parser consumes.
// Quoted tokens carry their content verbatim, embedded whitespace and
// newlines included.
type token struct {
	kind tokenKind
	text string
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isWordRune(r rune) bool {
	return r == '_' || isDigit(r) ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		r > 127 // letters outside ASCII stay part of a word
}

func isPhoneRune(r rune) bool { return isDigit(r) || r == '+' || r == '-' }

// tokenize splits free-form text into words, quoted strings, and bare
// phone-shaped patterns. Anything else is a delimiter. An unterminated
// quote produces no quoted token; the remainder is tokenized normally.
func tokenize(input string) []token {
	var tokens []token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '"':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				i++
				continue
			}
			tokens = append(tokens, token{kind: tokenQuoted, text: string(runes[i+1 : end])})
			i = end + 1
		case isDigit(r) || (r == '+' && i+1 < len(runes) && isDigit(runes[i+1])):
			j := i
			for j < len(runes) && isPhoneRune(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenPhone, text: string(runes[i:j])})
			i = j
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[i:j])})
			i = j
		default:
			i++
		}
	}
	return tokens
}

// indexOfWord returns the position of the first word token equal to w
// (case-insensitive) at or after from, or -1.
func indexOfWord(tokens []token, from int, w string) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i].kind == tokenWord && strings.EqualFold(tokens[i].text, w) {
			return i
		}
	}
	return -1
}

// indexOfAnyWord returns the position and lower-cased text of the first word
// token matching any of the given keywords at or after from, or -1.
func indexOfAnyWord(tokens []token, from int, words ...string) (int, string) {
	for i := from; i < len(tokens); i++ {
		if tokens[i].kind != tokenWord {
			continue
		}
		for _, w := range words {
			if strings.EqualFold(tokens[i].text, w) {
				return i, w
			}
		}
	}
	return -1, ""
}

// indexOfQuoted returns the position of the first quoted token at or after
// from, or -1.
func indexOfQuoted(tokens []token, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i].kind == tokenQuoted {
			return i
		}
	}
	return -1
}

// indexOfPhoneArg returns the position of the first token usable as a phone
// argument at or after from: a bare phone pattern, or a quoted string
// (verbatim, enabling alphanumeric aliases as pseudo-phones). Quoted form
// takes precedence when both start at the same position, which the
// tokenizer guarantees by construction.
func indexOfPhoneArg(tokens []token, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i].kind == tokenPhone || tokens[i].kind == tokenQuoted {
			return i
		}
	}
	return -1
}
