package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
	}{
		{"short", "~500 kcal", 4096},
		{"newlines", strings.Repeat("• Chicken ~250 kcal\n", 40), 100},
		{"no newlines", strings.Repeat("абв", 50), 7},
		{"exact", strings.Repeat("x", 20), 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chunks := SplitText(tc.in, tc.limit)
			if strings.Join(chunks, "") != tc.in {
				t.Fatal("chunks do not reassemble the input")
			}
			for _, c := range chunks {
				if n := utf8.RuneCountInString(c); n > tc.limit || n == 0 {
					t.Errorf("chunk of %d runes, limit %d", n, tc.limit)
				}
				if !utf8.ValidString(c) {
					t.Errorf("chunk %q splits a rune", c)
				}
			}
		})
	}
}

func TestSplitTextPrefersNewline(t *testing.T) {
	chunks := SplitText("line one\nline two\nline three", 15)
	if chunks[0] != "line one\n" {
		t.Errorf("first chunk = %q", chunks[0])
	}
}
