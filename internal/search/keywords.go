package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinKeywordLength is exclusive: keywords have more runes than this.
const MinKeywordLength = 2

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "me": {}, "him": {}, "her": {},
	"us": {}, "them": {}, "my": {}, "your": {}, "his": {}, "its": {}, "our": {}, "their": {}, "what": {},
	"when": {}, "where": {}, "why": {}, "how": {}, "who": {}, "which": {},
}

// IsStopWord reports whether a lowercase word is excluded from keywords.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// ExtractKeywords lowercases text and returns its word tokens longer than
// MinKeywordLength that are not stop words. Order and duplicates are kept.
func ExtractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) <= MinKeywordLength || IsStopWord(word) {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
