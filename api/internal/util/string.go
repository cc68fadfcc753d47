package util

import (
	"strings"
	"unicode/utf8"
)

// SplitText cuts s into chunks of at most limit runes. It prefers to cut
// after a newline and never splits a rune. Joining the chunks gives back s.
func SplitText(s string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}
	var chunks []string
	for s != "" {
		if utf8.RuneCountInString(s) <= limit {
			chunks = append(chunks, s)
			break
		}
		// byte offset of the first rune past the limit
		cut, n := 0, 0
		for i := range s {
			if n == limit {
				cut = i
				break
			}
			n++
		}
		if nl := strings.LastIndexByte(s[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	return chunks
}
