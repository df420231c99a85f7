package search

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func mustSegmenter(t *testing.T, size, overlap int) *Segmenter {
	t.Helper()
	s, err := NewSegmenter(size, overlap)
	if err != nil {
		t.Fatalf("NewSegmenter(%d, %d) failed: %v", size, overlap, err)
	}
	return s
}

func TestNewSegmenter_RejectsInvalidParameters(t *testing.T) {
	cases := [][2]int{{0, 0}, {-5, 0}, {100, 100}, {100, 200}, {100, -1}}
	for _, c := range cases {
		if _, err := NewSegmenter(c[0], c[1]); !errors.Is(err, ErrInvalidChunking) {
			t.Errorf("NewSegmenter(%d, %d) error = %v, want ErrInvalidChunking", c[0], c[1], err)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello \n\n\t world  ", "hello world"},
		{"price: $30 (approx.) @home #1", "price: 30 (approx.) home 1"},
		{`keep "quotes" and 'ticks' / slashes [x] {y}`, `keep "quotes" and 'ticks' / slashes [x] {y}`},
		{"naïve café – déjà vu", "naïve café  déjà vu"},
		{"@#$%^&*", ""},
		{"cafe\u0301 menu", "cafe menu"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSegment_ShortTextIsSingleNormalizedChunk(t *testing.T) {
	s := mustSegmenter(t, DefaultChunkSize, DefaultChunkOverlap)
	in := "Our   refund policy\nallows 30 days."

	chunks := s.Segment(in)
	if len(chunks) != 1 || chunks[0] != Normalize(in) {
		t.Fatalf("Segment() = %q, want [%q]", chunks, Normalize(in))
	}
}

func TestSegment_DegenerateInput(t *testing.T) {
	s := mustSegmenter(t, 10, 2)
	for _, in := range []string{"", "   \n\t ", "@@@ ### $$$", strings.Repeat("*", 50)} {
		if chunks := s.Segment(in); len(chunks) != 0 {
			t.Errorf("Segment(%q) = %q, want no chunks", in, chunks)
		}
	}
}

func TestSegment_HardBoundariesAdvanceByChunkMinusOverlap(t *testing.T) {
	s := mustSegmenter(t, 1000, 200)
	text := strings.Repeat("abcdefghij", 250) // 2500 runes, no spaces or terminators

	chunks := s.Segment(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		start := i * 800
		end := min(start+1000, len(text))
		if chunk != text[start:end] {
			t.Errorf("chunk %d does not start at %d", i, start)
		}
	}
	for i := 0; i+1 < len(chunks); i++ {
		tail := chunks[i][len(chunks[i])-200:]
		if !strings.HasPrefix(chunks[i+1], tail) {
			t.Errorf("chunks %d and %d do not overlap by 200 runes", i, i+1)
		}
	}
}

func TestSegment_PrefersSentenceThenWordBoundary(t *testing.T) {
	s := mustSegmenter(t, 20, 0)

	t.Run("sentence", func(t *testing.T) {
		chunks := s.Segment("First one. Second sentence here.")
		if chunks[0] != "First one." {
			t.Errorf("first chunk = %q, want %q", chunks[0], "First one.")
		}
	})

	t.Run("nearest terminator wins", func(t *testing.T) {
		chunks := s.Segment("Wait. Really? Yes indeed it is so")
		if chunks[0] != "Wait. Really?" {
			t.Errorf("first chunk = %q, want %q", chunks[0], "Wait. Really?")
		}
	})

	t.Run("word", func(t *testing.T) {
		chunks := s.Segment("alpha beta gamma delta epsilon")
		if chunks[0] != "alpha beta gamma" {
			t.Errorf("first chunk = %q, want %q", chunks[0], "alpha beta gamma")
		}
		if strings.Join(chunks, " ") != "alpha beta gamma delta epsilon" {
			t.Errorf("zero-overlap chunks lost text: %q", chunks)
		}
	})
}

func TestSegment_TerminatesWhenBoundarySnapsBelowOverlap(t *testing.T) {
	// a terminator right after start would make end-overlap step backwards
	s := mustSegmenter(t, 10, 8)
	text := "Ab. " + strings.Repeat("x", 40) + ". Cd. " + strings.Repeat("y y ", 10)

	chunks := s.Segment(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n == 0 || n > 10 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
	if !strings.HasSuffix(chunks[len(chunks)-1], "y") {
		t.Errorf("last chunk %q does not reach the end of the text", chunks[len(chunks)-1])
	}
}

func TestSegment_ChunksNeverExceedSize(t *testing.T) {
	s := mustSegmenter(t, 120, 30)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog! Does it? ", 40)

	for i, c := range s.Segment(text) {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if n := utf8.RuneCountInString(c); n > 120 {
			t.Errorf("chunk %d has %d runes, limit 120", i, n)
		}
	}
}

func TestSegment_CountsRunesNotBytes(t *testing.T) {
	s := mustSegmenter(t, 10, 2)
	text := strings.Repeat("é", 10)

	if chunks := s.Segment(text); len(chunks) != 1 {
		t.Errorf("10 two-byte runes should fit one chunk of 10, got %d chunks", len(chunks))
	}
}
