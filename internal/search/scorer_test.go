package search

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   []string
		want    float64
	}{
		{"empty query", "anything at all", nil, 0},
		{"all exact", "Our refund policy allows 30 days.", []string{"refund", "policy"}, 1.0},
		{"half exact", "Our refund rules", []string{"refund", "policy"}, 0.5},
		{"query word contains content word", "refund policy", []string{"refunds"}, 0.5},
		{"content word contains query word", "international shipping", []string{"nation"}, 0.5},
		{"partial needs more than three runes", "policy", []string{"pol"}, 0},
		{"no match", "shipping times", []string{"refund"}, 0},
		{"exact beats partial", "refund refunds", []string{"refund"}, 1.0},
		{"query case folded", "refund policy", []string{"REFUND"}, 1.0},
		{"mixed", "refund window is thirty days", []string{"refund", "windows", "warranty"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.content, tt.query); got != tt.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.content, tt.query, got, tt.want)
			}
		})
	}
}

func TestScore_MonotonicInExactMatches(t *testing.T) {
	query := []string{"alpha", "bravo", "charlie", "delta"}
	contents := []string{
		"nothing relevant here",
		"alpha",
		"alpha bravo",
		"alpha bravo charlie",
		"alpha bravo charlie delta",
	}

	prev := -1.0
	for _, c := range contents {
		s := Score(c, query)
		if s < prev {
			t.Errorf("Score(%q) = %v dropped below %v", c, s, prev)
		}
		if s < 0 || s > 1 {
			t.Errorf("Score(%q) = %v out of [0, 1]", c, s)
		}
		prev = s
	}
	if prev != 1.0 {
		t.Errorf("full match scored %v, want 1", prev)
	}
}
