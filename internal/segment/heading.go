// Package segment splits raw page text into titled sections using
// heuristic heading detection.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

var headingPatterns = []*regexp.Regexp{
	// Numbered sections: "1. Introduction", "2.1 Overview".
	regexp.MustCompile(`^\d+(\.\d+)*\.?\s+[A-Z]`),
	// All caps headings: "METHODOLOGY".
	regexp.MustCompile(`^[A-Z][A-Z\s]{3,}$`),
	// Title case with minimal punctuation.
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*:?$`),
	// Roman numerals: "I. Introduction", "IV. Results".
	regexp.MustCompile(`^[IVX]+\.\s+[A-Z]`),
	// Lettered sections: "A. Overview", "B. Methods".
	regexp.MustCompile(`^[A-Z]\.\s+[A-Z]`),
}

// IsHeading classifies a single trimmed line of text as a heading.
// It is pure and deterministic: pattern heuristics first, then a
// capitalization ratio check for short punctuation-free lines.
func IsHeading(text string) bool {
	line := strings.TrimSpace(text)

	// Very short or very long lines are never headings.
	n := len([]rune(line))
	if n <= 2 || n >= 200 {
		return false
	}

	for _, re := range headingPatterns {
		if re.MatchString(line) {
			return true
		}
	}

	// Short lines without sentence punctuation: treat as a heading when at
	// least half the words are capitalized.
	if n < 80 && !strings.ContainsAny(line, ".,") {
		words := strings.Fields(line)
		if len(words) >= 1 && len(words) <= 8 {
			capitalized := 0
			for _, w := range words {
				r := []rune(w)
				if len(r) > 0 && unicode.IsUpper(r[0]) {
					capitalized++
				}
			}
			if capitalized >= len(words)/2 {
				return true
			}
		}
	}

	return false
}
