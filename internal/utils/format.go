package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatPercent renders a [0,1] score as a percentage with one decimal.
func FormatPercent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

// ValidSymptomID reports whether a token looks like a symptom ID: non-empty,
// made of letters, digits and the separators used by the database tooling.
func ValidSymptomID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '_', '-', '.', ':':
			continue
		}
		return false
	}
	return true
}

// SplitSymptomList splits a comma-separated input line into trimmed,
// non-empty tokens.
func SplitSymptomList(line string) []string {
	parts := strings.Split(line, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
