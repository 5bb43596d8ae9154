// Package mapdata builds the map.json document consumed by the viewer:
// document metadata plus one feature per assigned sighting.
//
// Exports are deterministic - features are ordered by (species_norm, source
// row index) and coordinates are rounded to 6 decimal places - so the same
// run always serializes to the same bytes. Golden-file tests and cache-
// friendly serving both rely on this.
package mapdata

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/species"
)

// Version is the map.json document format version.
const Version = 1

// Feature is one assigned sighting: the species, its canonical form, the
// assigned coordinate, and the remaining source columns as attributes.
type Feature struct {
	Species     string            `json:"species"`
	SpeciesNorm string            `json:"species_norm"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	Attrs       map[string]string `json:"attrs,omitempty"`

	// rowIdx is the source row index, kept for stable sort order.
	rowIdx int
}

// Document is the top-level map.json structure.
type Document struct {
	Version     int       `json:"version"`
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt string    `json:"generated_at,omitempty"`
	Count       int       `json:"count"`
	Features    []Feature `json:"features"`
}

// Options controls document metadata.
type Options struct {
	// RunID identifies the classification run the document was built from.
	// Empty for pure-CSV exports.
	RunID string

	// Deterministic omits the generated_at timestamp so output depends only
	// on the input data. Used by tests and golden-file comparison.
	Deterministic bool

	// Now overrides the timestamp source (for tests). Nil means time.Now.
	Now func() time.Time
}

// NewFeature builds a feature and rounds its coordinate.
func NewFeature(rawSpecies string, c dataset.Coordinate, rowIdx int, attrs map[string]string) Feature {
	return Feature{
		Species:     rawSpecies,
		SpeciesNorm: species.Normalize(rawSpecies),
		Lat:         round6(c.Lat),
		Lon:         round6(c.Lon),
		Attrs:       attrs,
		rowIdx:      rowIdx,
	}
}

// New assembles a document from features, sorting them canonically.
// A nil feature slice encodes as an empty list, not null.
func New(features []Feature, opts Options) *Document {
	if features == nil {
		features = []Feature{}
	}
	sortFeatures(features)
	doc := &Document{
		Version:  Version,
		RunID:    opts.RunID,
		Count:    len(features),
		Features: features,
	}
	if !opts.Deterministic {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		doc.GeneratedAt = now().UTC().Format(time.RFC3339)
	}
	return doc
}

// Build creates a document from a parsed table and its assignment result.
// Unmatched rows are omitted - the viewer only renders located sightings.
// Non-species source columns become feature attributes.
func Build(table *dataset.Table, coords []dataset.RowCoordinate, opts Options) (*Document, error) {
	if len(coords) != len(table.Rows) {
		return nil, fmt.Errorf("coordinate count %d does not match row count %d", len(coords), len(table.Rows))
	}

	var features []Feature
	for i, rc := range coords {
		if !rc.Matched {
			continue
		}
		features = append(features, NewFeature(table.Species(i), rc.Coord, i, table.RowAttrs(i)))
	}
	return New(features, opts), nil
}

// Encode writes the document as indented JSON. HTML escaping is disabled -
// species names with accents or ampersands should read naturally in the file.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode map document: %w", err)
	}
	return nil
}

// sortFeatures orders features by (species_norm, source row index).
// The row index tiebreak keeps duplicate-species rows in input order.
func sortFeatures(features []Feature) {
	sort.SliceStable(features, func(i, j int) bool {
		if features[i].SpeciesNorm != features[j].SpeciesNorm {
			return features[i].SpeciesNorm < features[j].SpeciesNorm
		}
		return features[i].rowIdx < features[j].rowIdx
	})
}

// round6 rounds a coordinate to 6 decimal places (roughly 11cm of
// precision, matching the CSV output format).
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
