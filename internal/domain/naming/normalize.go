// Package naming derives human-readable display names for canonical
// reactions from the name tables of the namespaces they are linked to.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a name into its comparison form: compatibility
// decomposition with combining marks removed, Unicode case folding, and every
// run of characters that is neither letter nor digit collapsed into one
// space.  Leading and trailing separators are dropped.
//
//	Normalize("ATP-Synthase ")  == "atp synthase"
//	Normalize("β-Galactosidase") == "β galactosidase"
func Normalize(s string) string {
	// Transformers and casers carry state; build fresh ones per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}
	folded := cases.Fold().String(decomposed)

	var b strings.Builder
	b.Grow(len(folded))
	gap := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if gap && b.Len() > 0 {
				b.WriteByte(' ')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}

var levenshteinOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Similarity returns 1 - distance/maxLen over runes, in [0, 1].  Inputs are
// compared as given; callers normalize first.  Two empty strings are
// identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshteinOptions)
	return 1 - float64(dist)/float64(maxLen)
}

//Personal.AI order the ending
