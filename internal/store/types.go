package store

import "time"

// MasterEntry is one coordinate candidate in the master catalog.
type MasterEntry struct {
	Species     string
	SpeciesNorm string
	Lat         float64
	Lon         float64
}

// SightingInput is a sighting row being imported.
type SightingInput struct {
	RowIdx      int
	Species     string
	SpeciesNorm string
	// Attrs holds the non-species source columns keyed by header name.
	Attrs map[string]string
}

// Sighting is a stored sighting row.
type Sighting struct {
	ID          int64
	Source      string
	RowIdx      int
	Species     string
	SpeciesNorm string
	Attrs       map[string]string
}

// Run records one classification run over the stored sightings.
type Run struct {
	ID               string    `json:"id"`
	Seed             int64     `json:"seed"`
	CreatedAt        time.Time `json:"created_at"`
	Total            int       `json:"total"`
	Assigned         int       `json:"assigned"`
	UnmatchedSpecies int       `json:"unmatched_species"`
}

// Assignment is the stored result for one matched sighting in a run.
type Assignment struct {
	SightingID int64
	Lat        float64
	Lon        float64
}

// SpeciesCount summarizes one species for the API: how many sightings were
// imported and how many received a coordinate in a given run.
type SpeciesCount struct {
	Species     string `json:"species"`
	SpeciesNorm string `json:"species_norm"`
	Sightings   int    `json:"sightings"`
	Assigned    int    `json:"assigned"`
}
