// Package assign implements the coordinate assignment step: each sighting
// row receives a coordinate drawn at random (with replacement) from the
// master catalog entry for its species.
//
// Assignment is deterministic for a given seed. Rows are processed in input
// order and each matched row consumes exactly one draw from the Picker, so
// the random stream is a pure function of the row sequence.
package assign

import (
	"sort"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/species"
)

// Result holds the outcome of an assignment pass.
type Result struct {
	// Coords is parallel to the input rows. Unmatched rows have
	// Matched == false.
	Coords []dataset.RowCoordinate

	// NoMatch lists distinct normalized species present in the input but
	// absent from the master catalog, sorted. Empty species names are
	// excluded - a blank cell is missing data, not an unknown species.
	NoMatch []string

	// Total is the number of input rows.
	Total int

	// Assigned is the number of rows that received a coordinate.
	Assigned int
}

// Run assigns coordinates to the given raw species names, in order.
//
// Each name is normalized and looked up in the master catalog. Matches draw
// one candidate via the picker; duplicates of the same species each draw
// independently (with replacement). A species with a single candidate always
// yields that candidate, but still consumes a draw.
func Run(names []string, master *dataset.Master, p Picker) *Result {
	result := &Result{
		Coords: make([]dataset.RowCoordinate, len(names)),
		Total:  len(names),
	}

	missing := make(map[string]bool)
	for i, name := range names {
		norm := species.Normalize(name)
		if norm == "" {
			continue
		}
		coords, ok := master.Lookup(norm)
		if !ok {
			missing[norm] = true
			continue
		}
		c := coords[p.Pick(len(coords))]
		result.Coords[i] = dataset.RowCoordinate{Matched: true, Coord: c}
		result.Assigned++
	}

	result.NoMatch = make([]string, 0, len(missing))
	for name := range missing {
		result.NoMatch = append(result.NoMatch, name)
	}
	sort.Strings(result.NoMatch)

	return result
}

// RunTable is a convenience wrapper that assigns coordinates to every row
// of a parsed sightings table.
func RunTable(table *dataset.Table, master *dataset.Master, p Picker) *Result {
	return Run(table.SpeciesNames(), master, p)
}
