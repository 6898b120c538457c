package content

import (
	"math"
	"strings"
	"unicode"
)

// wordsPerMinute is the reading speed assumed for general blog content.
const wordsPerMinute = 200

// ReadingMinutes estimates the reading time of an HTML body in minutes.
// Returns 0 for a body without text and at least 1 otherwise.
func ReadingMinutes(body string) int {
	words := countWords(Text(body))
	if words == 0 {
		return 0
	}
	return int(math.Max(1, math.Ceil(float64(words)/wordsPerMinute)))
}

// countWords counts words delimited by whitespace or punctuation.
func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) || strings.ContainsRune(".,;:!?\"'()[]{}—–-", r) {
			if inWord {
				count++
				inWord = false
			}
		} else {
			inWord = true
		}
	}
	if inWord {
		count++
	}
	return count
}
