package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// canonicalText collapses whitespace and applies NFC so visually equal input compares equal.
func canonicalText(s string, caseSensitive bool) string {
	s = norm.NFC.String(strings.Join(strings.Fields(s), " "))
	if caseSensitive {
		return s
	}
	// Casers are stateful; build one per call.
	return cases.Fold().String(s)
}

func equalText(a, b string) bool {
	return canonicalText(a, false) == canonicalText(b, false)
}

// similarity is 1 - editDistance/longerLength over runes, in [0,1].
func similarity(a, b string, caseSensitive bool) float64 {
	a, b = canonicalText(a, caseSensitive), canonicalText(b, caseSensitive)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
