package search

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"question", "What is the refund policy?", []string{"refund", "policy"}},
		{"only stop words", "is the a", []string{}},
		{"short words dropped", "go to db at 5 pm", []string{}},
		{"duplicates kept", "Refund refund REFUND", []string{"refund", "refund", "refund"}},
		{"digits and underscores", "order_id 12345 v2", []string{"order_id", "12345"}},
		{"unicode letters", "Crème brûlée recipe", []string{"crème", "brûlée", "recipe"}},
		{"symbols only", "!!! ??? ...", []string{}},
		{"combining marks split words", "cafe\u0301 menu re\u0301sume\u0301", []string{"cafe", "menu", "sume"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"the", "which", "should", "their"} {
		if !IsStopWord(w) {
			t.Errorf("%q should be a stop word", w)
		}
	}
	for _, w := range []string{"refund", "bot", "The"} {
		if IsStopWord(w) {
			t.Errorf("%q should not be a stop word", w)
		}
	}
}
