// Package sanitize turns arbitrary Unicode titles into filesystem-safe
// names usable in output templates on every supported platform.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const DefaultMaxLength = 100

var (
	// NFKD decomposition followed by removal of combining marks drops
	// accents instead of transliterating them.
	asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

	illegalPathChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	disallowedChars  = regexp.MustCompile(`[^a-zA-Z0-9\s\-_#.]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	separatorRuns    = regexp.MustCompile(`[_\-]+`)
)

// Filename returns name reduced to the character set
// [A-Za-z0-9 -_#.] and truncated to at most maxLength runes,
// backing off to the previous word boundary when possible.
// The result is deterministic for identical input.
func Filename(name string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	var ascii strings.Builder
	for _, r := range folded {
		if r < 128 {
			ascii.WriteRune(r)
		}
	}

	s := ascii.String()
	s = illegalPathChars.ReplaceAllString(s, "")
	s = disallowedChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = separatorRuns.ReplaceAllString(s, "_")
	s = strings.TrimSpace(s)

	if len(s) > maxLength {
		s = s[:maxLength]
		if i := strings.LastIndex(s, " "); i > 0 {
			s = s[:i]
		}
	}

	return s
}
