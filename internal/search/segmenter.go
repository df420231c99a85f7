package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var ErrInvalidChunking = errors.New("invalid chunking parameters")

// disallowedChars matches everything except word characters, whitespace and
// the punctuation kept for readability: . , ! ? ; : - ( ) [ ] { } " ' /
var disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-()\[\]{}"'/]`)

// Segmenter splits text into overlapping chunks, preferring to cut after a
// sentence terminator, then at a space, then hard at chunkSize.
// Sizes are measured in runes.
type Segmenter struct {
	chunkSize int
	overlap   int
}

func NewSegmenter(chunkSize, overlap int) (*Segmenter, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk size %d, overlap %d", ErrInvalidChunking, chunkSize, overlap)
	}
	return &Segmenter{chunkSize: chunkSize, overlap: overlap}, nil
}

func (s *Segmenter) ChunkSize() int { return s.chunkSize }
func (s *Segmenter) Overlap() int   { return s.overlap }

// Normalize collapses whitespace runs, strips unsupported characters and trims.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = disallowedChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Segment returns the chunks of text in order. Empty or symbol-only input
// yields no chunks.
func (s *Segmenter) Segment(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = boundary(runes, start, end)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		// start must strictly increase, even when a boundary snapped the
		// chunk shorter than the overlap
		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// boundary picks the end of a chunk within (start, end].
func boundary(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return end
}
