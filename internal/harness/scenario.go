package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one end-to-end pipeline test case: a master catalog,
// a sightings table, and the expected assignment outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Seed overrides the default assignment seed.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Master lists the catalog rows, in file order.
	Master []MasterRow `yaml:"master"`

	// Header is the sightings table header row. Must include a species
	// column recognized by header detection.
	Header []string `yaml:"header"`

	// Rows are the sightings table data rows.
	Rows [][]string `yaml:"rows"`

	// Expect declares the expected assignment outcome.
	Expect Expectations `yaml:"expect"`
}

// MasterRow is one inline master catalog entry.
type MasterRow struct {
	Species string  `yaml:"species"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
}

// Expectations declares the outcome a scenario must produce.
type Expectations struct {
	// Total is the expected number of input rows.
	Total int `yaml:"total"`

	// Assigned is the expected number of rows that receive a coordinate.
	Assigned int `yaml:"assigned"`

	// NoMatch lists the expected unmatched normalized species, sorted.
	NoMatch []string `yaml:"no_match,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so that typos in scenario files fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Master) == 0 {
		return fmt.Errorf("master list is required and must be non-empty")
	}
	if len(s.Header) == 0 {
		return fmt.Errorf("header is required and must be non-empty")
	}
	if len(s.Rows) == 0 {
		return fmt.Errorf("rows list is required and must be non-empty")
	}
	for i, row := range s.Rows {
		if len(row) > len(s.Header) {
			return fmt.Errorf("row %d has %d cells but the header has %d columns", i, len(row), len(s.Header))
		}
	}
	return nil
}
