package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/species"
)

// LoadTable reads a sightings table CSV and detects its species column.
// The file must have a header row; an empty data section is valid.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	return table, nil
}

// ReadTable parses a sightings table CSV from a reader.
func ReadTable(r io.Reader) (*Table, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	speciesCol, err := FindColumn(header, SpeciesColumns)
	if err != nil {
		return nil, err
	}

	return &Table{Header: header, Rows: rows, SpeciesCol: speciesCol}, nil
}

// LoadMaster reads the master coordinate CSV and builds the species index.
//
// Rows whose species normalizes to "" or whose lat/lon fail numeric parsing
// are dropped. Candidate order within a species follows file order.
func LoadMaster(path string) (*Master, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master: %w", err)
	}
	defer f.Close()

	master, err := ReadMaster(f)
	if err != nil {
		return nil, fmt.Errorf("read master %s: %w", path, err)
	}
	return master, nil
}

// ReadMaster parses the master coordinate CSV from a reader.
func ReadMaster(r io.Reader) (*Master, error) {
	rows, err := ReadMasterRows(r)
	if err != nil {
		return nil, err
	}

	master := NewMaster()
	for _, row := range rows {
		master.Add(species.Normalize(row.Species), row.Coord)
	}
	return master, nil
}

// ReadMasterRows parses the master CSV into individual rows, keeping the
// raw species names. Rows with empty normalized species or unparseable
// coordinates are dropped.
func ReadMasterRows(r io.Reader) ([]MasterRow, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	nameCol, err := FindColumn(header, SpeciesColumns)
	if err != nil {
		return nil, err
	}
	latCol, err := FindColumn(header, LatColumns)
	if err != nil {
		return nil, err
	}
	lonCol, err := FindColumn(header, LonColumns)
	if err != nil {
		return nil, err
	}

	var out []MasterRow
	for _, row := range rows {
		if nameCol >= len(row) || latCol >= len(row) || lonCol >= len(row) {
			continue
		}
		if species.Normalize(row[nameCol]) == "" {
			continue
		}
		lat, err := parseCoord(row[latCol])
		if err != nil {
			continue
		}
		lon, err := parseCoord(row[lonCol])
		if err != nil {
			continue
		}
		out = append(out, MasterRow{Species: row[nameCol], Coord: Coordinate{Lat: lat, Lon: lon}})
	}
	return out, nil
}

// readCSV reads a header row plus data rows. Ragged rows are allowed -
// hand-edited spreadsheets export trailing-comma inconsistencies.
func readCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file: missing header row")
	}

	header = records[0]
	if len(header) > 0 {
		// Excel exports prepend a UTF-8 BOM to the first cell.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, records[1:], nil
}

// parseCoord parses a coordinate cell, tolerating surrounding whitespace.
func parseCoord(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}
