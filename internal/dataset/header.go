package dataset

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Column name candidates accepted during header detection. Mixed
// Spanish/English variants reflect the spreadsheets this tool ingests;
// "lopnong" is a longitude header typo present in historical files.
var (
	SpeciesColumns = []string{"species", "especie", "nombre de ave", "nombre_de_ave", "nombre"}
	LatColumns     = []string{"lat", "latitud"}
	LonColumns     = []string{"lon", "long", "longitud", "lopnong"}
)

var headerWhitespace = regexp.MustCompile(`\s+`)

var headerFolder = cases.Fold()

// MissingColumnError reports that none of the candidate column names were
// found in a CSV header.
type MissingColumnError struct {
	Candidates []string
	Header     []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("none of the expected columns %v found in header %v", e.Candidates, e.Header)
}

// FindColumn returns the index of the first header cell matching any of the
// candidate names. Matching collapses whitespace and is case-insensitive.
// Returns a *MissingColumnError when no candidate matches.
func FindColumn(header []string, candidates []string) (int, error) {
	targets := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		targets[normalizeHeader(c)] = true
	}
	for i, cell := range header {
		if targets[normalizeHeader(cell)] {
			return i, nil
		}
	}
	return -1, &MissingColumnError{Candidates: candidates, Header: header}
}

// normalizeHeader collapses whitespace, trims, and case-folds a header cell.
// Unlike species normalization, parenthesized content is kept.
func normalizeHeader(cell string) string {
	s := headerWhitespace.ReplaceAllString(cell, " ")
	return headerFolder.String(strings.TrimSpace(s))
}
