package textutil

import (
	"regexp"
	"strings"
)

// Normalize collapses every run of unicode whitespace (including &nbsp;) into a single space,
// trims the ends and lower-cases the result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// HasNormalizedPrefix reports whether text starts with prefix after both are normalized.
func HasNormalizedPrefix(text, prefix string) bool {
	return strings.HasPrefix(Normalize(text), Normalize(prefix))
}

// ContainsAny reports whether the lower-cased name contains any of the lower-cased tokens.
// Empty tokens never match.
func ContainsAny(name string, tokens []string) bool {
	name = strings.ToLower(name)
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

var digitsRegex = regexp.MustCompile(`\d+`)

// FirstDigits returns the first run of decimal digits in s, or "" if there is none.
func FirstDigits(s string) string {
	return digitsRegex.FindString(s)
}
