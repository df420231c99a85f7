package search

import (
	"strings"
	"unicode/utf8"
)

const (
	ExactMatchWeight   = 1.0
	PartialMatchWeight = 0.5
	// query words need more runes than this to earn a partial match
	MinPartialMatchLength = 3
)

// Score rates content against query keywords. Each query word contributes
// once: ExactMatchWeight when it is one of the content keywords, otherwise
// PartialMatchWeight when it contains or is contained in a content keyword.
// The sum is divided by the number of query words, so the result is in [0, 1].
func Score(content string, queryWords []string) float64 {
	if len(queryWords) == 0 {
		return 0
	}

	contentWords := ExtractKeywords(content)
	present := make(map[string]struct{}, len(contentWords))
	for _, w := range contentWords {
		present[w] = struct{}{}
	}

	var score float64
	for _, word := range queryWords {
		word = strings.ToLower(word)
		if _, ok := present[word]; ok {
			score += ExactMatchWeight
			continue
		}
		if utf8.RuneCountInString(word) > MinPartialMatchLength && partialMatch(word, contentWords) {
			score += PartialMatchWeight
		}
	}

	return score / float64(len(queryWords))
}

func partialMatch(word string, contentWords []string) bool {
	for _, cw := range contentWords {
		if strings.Contains(cw, word) || strings.Contains(word, cw) {
			return true
		}
	}
	return false
}
