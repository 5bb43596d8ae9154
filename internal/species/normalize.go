// Package species provides the canonical species-name normalization used to
// match sighting rows against the master coordinate catalog.
//
// Matching is deliberately forgiving: common names arrive with scientific
// names in parentheses, inconsistent casing, stray whitespace, and mixed
// Unicode forms for accented characters. Two names refer to the same species
// when their normalized forms are byte-equal.
package species

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// parenthetical matches a parenthesized segment and any whitespace
	// hugging it. Content stops at the first closing paren; nested
	// parentheses are not a thing in the source data.
	parenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*`)

	// whitespaceRun matches one or more consecutive whitespace characters.
	whitespaceRun = regexp.MustCompile(`\s+`)

	folder = cases.Fold()
)

// Normalize converts a raw species name to its canonical matching form:
//
//  1. Parenthesized segments are removed ("Paloma (Columba livia)" -> "Paloma")
//  2. Whitespace runs collapse to a single space, leading/trailing trimmed
//  3. The result is NFC-normalized so composed and decomposed accents compare equal
//  4. The result is Unicode case-folded
//
// An empty or all-whitespace name normalizes to "". Callers treat "" as
// "no species" - it never matches the master catalog and is excluded from
// no-match reporting.
func Normalize(name string) string {
	s := parenthetical.ReplaceAllString(name, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = norm.NFC.String(s)
	return folder.String(s)
}

// Equal reports whether two raw species names normalize to the same
// non-empty canonical form.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}
