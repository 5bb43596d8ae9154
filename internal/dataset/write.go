package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Appended output column names. "lat_lon" holds the combined "lat,lon" pair
// for direct paste into mapping tools.
var AssignedColumns = []string{"lat", "lon", "lat_lon"}

// RowCoordinate is the per-row output of an assignment: either a coordinate
// or nothing (unmatched species).
type RowCoordinate struct {
	Matched bool
	Coord   Coordinate
}

// columns returns the three appended cell values for this row.
// Unmatched rows get empty cells, mirroring the blank cells a spreadsheet
// user expects rather than a sentinel value.
func (rc RowCoordinate) columns() []string {
	if !rc.Matched {
		return []string{"", "", ""}
	}
	return []string{
		fmt.Sprintf("%.6f", rc.Coord.Lat),
		fmt.Sprintf("%.6f", rc.Coord.Lon),
		rc.Coord.String(),
	}
}

// WriteAssigned writes the table with the three assignment columns appended.
// coords must be parallel to table.Rows.
func WriteAssigned(path string, table *Table, coords []RowCoordinate) error {
	if len(coords) != len(table.Rows) {
		return fmt.Errorf("coordinate count %d does not match row count %d", len(coords), len(table.Rows))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := writeAssigned(f, table, coords); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

func writeAssigned(w io.Writer, table *Table, coords []RowCoordinate) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(table.Header)+len(AssignedColumns))
	header = append(header, table.Header...)
	header = append(header, AssignedColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		out := make([]string, 0, len(header))
		out = append(out, row...)
		// Pad ragged rows so appended columns land in the right place.
		for len(out) < len(table.Header) {
			out = append(out, "")
		}
		out = append(out, coords[i].columns()...)
		if err := cw.Write(out); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteNoMatch writes the no-match report: one sorted normalized species
// name per row under a "species_norm" header. Callers skip the write when
// the list is empty.
func WriteNoMatch(path string, speciesNorm []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create no-match report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"species_norm"}); err != nil {
		return fmt.Errorf("write no-match report: %w", err)
	}
	for _, name := range speciesNorm {
		if err := cw.Write([]string{name}); err != nil {
			return fmt.Errorf("write no-match report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write no-match report: %w", err)
	}
	return nil
}
