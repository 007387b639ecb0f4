// Package fold implements accent- and case-insensitive text matching.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes s, drops combining marks (Unicode category Mn),
// recomposes what remains and lowercases the result.
// "Élémentaire" and "elementaire" normalize to the same string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain keeps internal state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Contains reports whether needle occurs in haystack, ignoring diacritics and case.
// An empty needle always matches.
func Contains(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Normalize(haystack), Normalize(needle))
}

// HasPrefix reports whether haystack starts with needle, ignoring diacritics and case.
// An empty needle always matches.
func HasPrefix(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.HasPrefix(Normalize(haystack), Normalize(needle))
}

// Matcher holds a pre-normalized needle for matching against many haystacks.
type Matcher struct {
	needle string
}

// NewMatcher normalizes needle once.
func NewMatcher(needle string) Matcher {
	return Matcher{needle: Normalize(needle)}
}

// Empty reports whether the matcher matches everything.
func (m Matcher) Empty() bool {
	return m.needle == ""
}

// Match reports whether haystack contains the matcher's needle.
func (m Matcher) Match(haystack string) bool {
	if m.needle == "" {
		return true
	}
	return strings.Contains(Normalize(haystack), m.needle)
}
