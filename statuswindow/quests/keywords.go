package quests

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

const minFuzzyKeywordLen = 4

// KeywordMatcher finds configured keywords in journal text. Exact
// token and substring matches are tried first; longer keywords also
// tolerate small typos ("excercise" still matches "exercise") via
// fuzzy matching against the tokenized content.
type KeywordMatcher struct {
	maxLengthSlack int
}

func NewKeywordMatcher() *KeywordMatcher {
	return &KeywordMatcher{maxLengthSlack: 2}
}

// Match returns the subset of keywords found in text, preserving
// keyword order and deduplicating case-insensitively.
func (m *KeywordMatcher) Match(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}

	lowered := strings.ToLower(text)
	words := tokenize(lowered)

	var matched []string
	seen := make(map[string]bool, len(keywords))
	for _, keyword := range keywords {
		key := strings.ToLower(keyword)
		if key == "" || seen[key] {
			continue
		}
		if m.matches(key, lowered, words) {
			matched = append(matched, keyword)
			seen[key] = true
		}
	}
	return matched
}

func (m *KeywordMatcher) matches(keyword, loweredText string, words []string) bool {
	if strings.Contains(loweredText, keyword) {
		return true
	}
	if len(keyword) < minFuzzyKeywordLen {
		return false
	}

	for _, match := range fuzzy.Find(keyword, words) {
		if len(match.Str)-len(keyword) <= m.maxLengthSlack {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		default:
			return true
		}
	})
}
