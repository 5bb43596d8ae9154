package dataset

import (
	"fmt"
	"sort"
)

// Coordinate is a latitude/longitude pair from the master catalog.
type Coordinate struct {
	Lat float64
	Lon float64
}

// String returns the "lat,lon" form used in the lat_lon output column,
// with both components fixed to 6 decimal places.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Table is a parsed sightings CSV: the original header, all data rows in
// file order, and the index of the detected species column.
//
// Rows keep every original cell untouched - the pipeline only ever appends
// columns, it never rewrites source data.
type Table struct {
	Header     []string
	Rows       [][]string
	SpeciesCol int
}

// Species returns the raw species cell for row i.
// Returns "" for rows shorter than the species column (ragged input).
func (t *Table) Species(i int) string {
	row := t.Rows[i]
	if t.SpeciesCol >= len(row) {
		return ""
	}
	return row[t.SpeciesCol]
}

// SpeciesNames returns the raw species cell of every row, in row order.
func (t *Table) SpeciesNames() []string {
	names := make([]string, len(t.Rows))
	for i := range t.Rows {
		names[i] = t.Species(i)
	}
	return names
}

// RowAttrs collects the non-species columns of row i, keyed by header name.
// Missing cells in ragged rows and empty header names are skipped.
// Returns nil when the row has no attributes.
func (t *Table) RowAttrs(i int) map[string]string {
	row := t.Rows[i]
	attrs := make(map[string]string)
	for col, name := range t.Header {
		if col == t.SpeciesCol || col >= len(row) || name == "" {
			continue
		}
		attrs[name] = row[col]
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// MasterRow is one master CSV row: the raw species name and its coordinate.
type MasterRow struct {
	Species string
	Coord   Coordinate
}

// Master is the coordinate catalog indexed by normalized species name.
// Candidate lists preserve master file order so that seeded assignment
// is reproducible across runs.
type Master struct {
	coords map[string][]Coordinate
}

// NewMaster creates an empty master catalog.
func NewMaster() *Master {
	return &Master{coords: make(map[string][]Coordinate)}
}

// Add appends a coordinate candidate for a normalized species name.
// Empty names are ignored.
func (m *Master) Add(speciesNorm string, c Coordinate) {
	if speciesNorm == "" {
		return
	}
	m.coords[speciesNorm] = append(m.coords[speciesNorm], c)
}

// Lookup returns the coordinate candidates for a normalized species name.
// The second return is false when the species is not in the catalog.
func (m *Master) Lookup(speciesNorm string) ([]Coordinate, bool) {
	coords, ok := m.coords[speciesNorm]
	return coords, ok
}

// Len returns the number of distinct species in the catalog.
func (m *Master) Len() int {
	return len(m.coords)
}

// Species returns all normalized species names in the catalog, sorted.
func (m *Master) Species() []string {
	names := make([]string, 0, len(m.coords))
	for name := range m.coords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
