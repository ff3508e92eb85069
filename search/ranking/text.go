package ranking

import (
	"strings"
	"unicode"
)

// Match tier points awarded by matchTier, best tier wins. An exact phrase
// containment outranks a whole-word match, which outranks scattered token
// containment, which outranks a bare prefix match.
const (
	tierExactPhrase  = 1.0
	tierWordBoundary = 0.8
	tierAllTokens    = 0.6
	tierPrefix       = 0.3
)

// weightedField pairs a searchable text field with its relative weight
type weightedField struct {
	text   string
	weight float64
}

// textRelevance scores query against a set of weighted fields and returns
// the best field score, clamped into [0,1]. An empty or unusable query
// scores 0 rather than erroring.
func textRelevance(query string, fields []weightedField) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}

	best := 0.0
	for _, f := range fields {
		score := matchTier(query, strings.ToLower(f.text)) * f.weight
		if score > best {
			best = score
		}
	}
	return clamp01(best)
}

func matchTier(query, text string) float64 {
	if text == "" {
		return 0
	}

	if containsWord(text, query) {
		return tierExactPhrase
	}

	tokens := strings.Fields(query)
	if len(tokens) > 1 {
		if containsAllWords(text, tokens) {
			return tierWordBoundary
		}
		if containsAllTokens(text, tokens) {
			return tierAllTokens
		}
	}
	if wordHasPrefix(text, query) || strings.Contains(text, query) {
		return tierPrefix
	}
	return 0
}

func wordHasPrefix(text, prefix string) bool {
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, prefix) {
			return true
		}
	}
	return false
}

// containsWord reports whether needle occurs in text delimited by
// non-alphanumeric runes (or string edges) on both sides
func containsWord(text, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)

		leftOK := idx == 0 || !isWordRune(rune(text[idx-1]))
		rightOK := end == len(text) || !isWordRune(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
		if start >= len(text) {
			return false
		}
	}
}

func containsAllWords(text string, tokens []string) bool {
	for _, token := range tokens {
		if !containsWord(text, token) {
			return false
		}
	}
	return true
}

func containsAllTokens(text string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
