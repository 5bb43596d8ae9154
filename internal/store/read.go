package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/mapdata"
)

// ErrNoRuns is returned when the store holds no classification runs yet.
var ErrNoRuns = errors.New("no classification runs recorded")

// ErrRunNotFound is returned when a requested run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// MasterIndex rebuilds the in-memory master catalog from the stored
// entries, preserving insertion order within each species.
func (s *Store) MasterIndex(ctx context.Context) (*dataset.Master, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT species_norm, lat, lon
		FROM master_coords
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query master catalog: %w", err)
	}
	defer rows.Close()

	master := dataset.NewMaster()
	for rows.Next() {
		var norm string
		var lat, lon float64
		if err := rows.Scan(&norm, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan master entry: %w", err)
		}
		master.Add(norm, dataset.Coordinate{Lat: lat, Lon: lon})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate master catalog: %w", err)
	}
	return master, nil
}

// Sightings returns all stored sightings in source row order.
// Returns an empty slice (not nil) when none exist.
func (s *Store) Sightings(ctx context.Context) ([]Sighting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, row_idx, species, species_norm, attrs
		FROM sightings
		ORDER BY row_idx ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sightings: %w", err)
	}
	defer rows.Close()

	sightings := []Sighting{}
	for rows.Next() {
		var sg Sighting
		var attrs string
		if err := rows.Scan(&sg.ID, &sg.Source, &sg.RowIdx, &sg.Species, &sg.SpeciesNorm, &attrs); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		if sg.Attrs, err = decodeAttrs(attrs); err != nil {
			return nil, fmt.Errorf("decode attrs for sighting %d: %w", sg.ID, err)
		}
		sightings = append(sightings, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sightings: %w", err)
	}
	return sightings, nil
}

// CountSightings returns the number of stored sighting rows.
func (s *Store) CountSightings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sightings").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sightings: %w", err)
	}
	return n, nil
}

// GetRun retrieves a run by ID. Returns ErrRunNotFound if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, created_at, total, assigned, unmatched_species
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// LatestRun returns the most recently created run.
// Returns ErrNoRuns when no run has been recorded.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	// created_at ties are broken by ID; UUIDv7 IDs are time-ordered.
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, created_at, total, assigned, unmatched_species
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	return run, err
}

// ListRuns returns all runs, newest first.
// Returns an empty slice (not nil) when none exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, created_at, total, assigned, unmatched_species
		FROM runs
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunFeatures returns the map features for a run, ordered by
// (species_norm, source row index) to match exporter ordering.
func (s *Store) RunFeatures(ctx context.Context, runID string) ([]mapdata.Feature, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sg.species, sg.species_norm, a.lat, a.lon, sg.row_idx, sg.attrs
		FROM assignments a
		JOIN sightings sg ON sg.id = a.sighting_id
		WHERE a.run_id = ?
		ORDER BY sg.species_norm ASC, sg.row_idx ASC, sg.id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run features: %w", err)
	}
	defer rows.Close()

	features := []mapdata.Feature{}
	for rows.Next() {
		var rawSpecies, attrsJSON string
		var lat, lon float64
		var rowIdx int
		var norm string
		if err := rows.Scan(&rawSpecies, &norm, &lat, &lon, &rowIdx, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan run feature: %w", err)
		}
		attrs, err := decodeAttrs(attrsJSON)
		if err != nil {
			return nil, fmt.Errorf("decode attrs: %w", err)
		}
		features = append(features, mapdata.NewFeature(rawSpecies, dataset.Coordinate{Lat: lat, Lon: lon}, rowIdx, attrs))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run features: %w", err)
	}
	return features, nil
}

// SpeciesSummary returns per-species sighting and assignment counts for a
// run, ordered by normalized species name.
func (s *Store) SpeciesSummary(ctx context.Context, runID string) ([]SpeciesCount, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sg.species_norm, MIN(sg.species), COUNT(*), COUNT(a.sighting_id)
		FROM sightings sg
		LEFT JOIN assignments a ON a.sighting_id = sg.id AND a.run_id = ?
		WHERE sg.species_norm != ''
		GROUP BY sg.species_norm
		ORDER BY sg.species_norm ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query species summary: %w", err)
	}
	defer rows.Close()

	counts := []SpeciesCount{}
	for rows.Next() {
		var c SpeciesCount
		if err := rows.Scan(&c.SpeciesNorm, &c.Species, &c.Sightings, &c.Assigned); err != nil {
			return nil, fmt.Errorf("scan species summary: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate species summary: %w", err)
	}
	return counts, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a run row, parsing the stored RFC 3339 timestamp.
func scanRun(row scanner) (Run, error) {
	var run Run
	var createdAt string
	if err := row.Scan(&run.ID, &run.Seed, &createdAt, &run.Total, &run.Assigned, &run.UnmatchedSpecies); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = t
	return run, nil
}

// decodeAttrs parses the stored attrs JSON. "{}" decodes to nil.
func decodeAttrs(data string) (map[string]string, error) {
	var attrs map[string]string
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	return attrs, nil
}
