package harness

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/assign"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/mapdata"
)

// Result holds the outcome of one scenario execution.
type Result struct {
	// Assignment is the raw assignment outcome.
	Assignment *assign.Result

	// Document is the deterministic map.json document built from the
	// assignment. Its generated_at field is omitted.
	Document *mapdata.Document
}

// Run executes a scenario: it materializes the inline master and table as
// CSV files, runs them through the same loaders and assignment step the CLI
// uses, and builds the resulting map document.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "avesmap-scenario-")
	if err != nil {
		return nil, fmt.Errorf("create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	masterPath := filepath.Join(dir, "master.csv")
	if err := writeMasterCSV(masterPath, scenario.Master); err != nil {
		return nil, err
	}
	tablePath := filepath.Join(dir, "table.csv")
	if err := writeTableCSV(tablePath, scenario.Header, scenario.Rows); err != nil {
		return nil, err
	}

	master, err := dataset.LoadMaster(masterPath)
	if err != nil {
		return nil, fmt.Errorf("scenario master: %w", err)
	}
	table, err := dataset.LoadTable(tablePath)
	if err != nil {
		return nil, fmt.Errorf("scenario table: %w", err)
	}

	seed := uint64(assign.DefaultSeed)
	if scenario.Seed != nil {
		seed = *scenario.Seed
	}
	result := assign.RunTable(table, master, assign.NewSeededPicker(seed))

	doc, err := mapdata.Build(table, result.Coords, mapdata.Options{Deterministic: true})
	if err != nil {
		return nil, fmt.Errorf("build map document: %w", err)
	}

	return &Result{Assignment: result, Document: doc}, nil
}

// Verify checks the scenario's expectations against an execution result.
func Verify(scenario *Scenario, result *Result) error {
	a := result.Assignment
	e := scenario.Expect

	if a.Total != e.Total {
		return fmt.Errorf("total: got %d, want %d", a.Total, e.Total)
	}
	if a.Assigned != e.Assigned {
		return fmt.Errorf("assigned: got %d, want %d", a.Assigned, e.Assigned)
	}
	if len(a.NoMatch) != len(e.NoMatch) {
		return fmt.Errorf("no_match: got %v, want %v", a.NoMatch, e.NoMatch)
	}
	for i := range e.NoMatch {
		if a.NoMatch[i] != e.NoMatch[i] {
			return fmt.Errorf("no_match: got %v, want %v", a.NoMatch, e.NoMatch)
		}
	}
	if result.Document.Count != e.Assigned {
		return fmt.Errorf("document count: got %d, want %d", result.Document.Count, e.Assigned)
	}
	return nil
}

// writeMasterCSV materializes inline master rows as a catalog CSV.
func writeMasterCSV(path string, rows []MasterRow) error {
	records := [][]string{{"especie", "lat", "lon"}}
	for _, r := range rows {
		records = append(records, []string{
			r.Species,
			strconv.FormatFloat(r.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Lon, 'f', -1, 64),
		})
	}
	return writeCSV(path, records)
}

// writeTableCSV materializes the inline sightings table.
func writeTableCSV(path string, header []string, rows [][]string) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	records = append(records, rows...)
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
