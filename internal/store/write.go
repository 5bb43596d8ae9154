package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ReplaceMaster replaces the entire master catalog with the given entries.
// Entry order is preserved (AUTOINCREMENT ids follow insertion order), so
// candidate order within a species matches the source file.
func (s *Store) ReplaceMaster(ctx context.Context, entries []MasterEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM master_coords"); err != nil {
			return fmt.Errorf("clear master catalog: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO master_coords (species, species_norm, lat, lon)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare master insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Species, e.SpeciesNorm, e.Lat, e.Lon); err != nil {
				return fmt.Errorf("insert master entry %q: %w", e.Species, err)
			}
		}
		return nil
	})
}

// ReplaceSightings replaces all stored sightings with rows from a new
// source file. Prior runs and their assignments are removed as well - they
// reference sighting rows that no longer exist.
func (s *Store) ReplaceSightings(ctx context.Context, source string, rows []SightingInput) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Runs first: assignments cascade from both runs and sightings.
		if _, err := tx.ExecContext(ctx, "DELETE FROM runs"); err != nil {
			return fmt.Errorf("clear runs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM sightings"); err != nil {
			return fmt.Errorf("clear sightings: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sightings (source, row_idx, species, species_norm, attrs)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare sighting insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			attrs, err := encodeAttrs(r.Attrs)
			if err != nil {
				return fmt.Errorf("encode attrs for row %d: %w", r.RowIdx, err)
			}
			if _, err := stmt.ExecContext(ctx, source, r.RowIdx, r.Species, r.SpeciesNorm, attrs); err != nil {
				return fmt.Errorf("insert sighting row %d: %w", r.RowIdx, err)
			}
		}
		return nil
	})
}

// CreateRun records a classification run and its assignments atomically.
// run.CreatedAt defaults to the current time when zero.
func (s *Store) CreateRun(ctx context.Context, run Run, assignments []Assignment) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, seed, created_at, total, assigned, unmatched_species)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, run.Seed, createdAt.UTC().Format(time.RFC3339), run.Total, run.Assigned, run.UnmatchedSpecies)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO assignments (run_id, sighting_id, lat, lon)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare assignment insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range assignments {
			if _, err := stmt.ExecContext(ctx, run.ID, a.SightingID, a.Lat, a.Lon); err != nil {
				return fmt.Errorf("insert assignment for sighting %d: %w", a.SightingID, err)
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// encodeAttrs serializes an attrs map to JSON. nil encodes as "{}".
func encodeAttrs(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
