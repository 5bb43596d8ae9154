package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/species"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/store"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	DBPath string
	Table  string
	Master string
}

// IngestSummary is the result payload of the ingest command.
type IngestSummary struct {
	MasterEntries int    `json:"master_entries,omitempty"`
	Sightings     int    `json:"sightings,omitempty"`
	Database      string `json:"database"`
}

func (s IngestSummary) String() string {
	var b strings.Builder
	if s.MasterEntries > 0 {
		fmt.Fprintf(&b, "Master entries imported: %d\n", s.MasterEntries)
	}
	if s.Sightings > 0 {
		fmt.Fprintf(&b, "Sightings imported: %d\n", s.Sightings)
	}
	fmt.Fprintf(&b, "Database: %s", s.Database)
	return b.String()
}

// NewIngestCommand creates the ingest command: CSV files into the store.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import master catalog and sighting CSVs into a database",
		Long: `Import the master coordinate catalog and/or a sightings table into a
SQLite database for later classification and serving.

Importing a master catalog replaces the previous catalog. Importing a
sightings table replaces the previous table along with any recorded runs,
since those runs reference rows that no longer exist.

Example:
  avesmap ingest --db aves.db --master AJ/Cordenadas.csv --table AJ/Tabla.csv
  avesmap ingest --db aves.db --table AJ/Tabla2.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Table == "" && opts.Master == "" {
				return NewExitError(ExitCommandError, "at least one of --table or --master is required")
			}
			return runIngest(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "path to a sightings table CSV to import")
	cmd.Flags().StringVar(&opts.Master, "master", "", "path to a master coordinates CSV to import")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runIngest(ctx context.Context, opts *IngestOptions, cmd *cobra.Command) error {
	f := formatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	summary := IngestSummary{Database: opts.DBPath}

	if opts.Master != "" {
		entries, err := loadMasterEntries(opts.Master)
		if err != nil {
			return inputError(f, "failed to load master catalog", err)
		}
		if err := st.ReplaceMaster(ctx, entries); err != nil {
			_ = f.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to import master catalog", err)
		}
		summary.MasterEntries = len(entries)
		f.VerboseLog("Imported %d master entries from %s", len(entries), opts.Master)
	}

	if opts.Table != "" {
		table, err := dataset.LoadTable(opts.Table)
		if err != nil {
			return inputError(f, "failed to load sightings table", err)
		}
		rows := sightingInputs(table)
		if err := st.ReplaceSightings(ctx, opts.Table, rows); err != nil {
			_ = f.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to import sightings", err)
		}
		summary.Sightings = len(rows)
		f.VerboseLog("Imported %d sightings from %s", len(rows), opts.Table)
	}

	return f.Success(summary)
}

// loadMasterEntries reads a master CSV keeping the raw species names.
func loadMasterEntries(path string) ([]store.MasterEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master file: %w", err)
	}
	defer file.Close()

	rows, err := dataset.ReadMasterRows(file)
	if err != nil {
		return nil, err
	}

	entries := make([]store.MasterEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, store.MasterEntry{
			Species:     r.Species,
			SpeciesNorm: species.Normalize(r.Species),
			Lat:         r.Coord.Lat,
			Lon:         r.Coord.Lon,
		})
	}
	return entries, nil
}

// sightingInputs converts parsed table rows into store inputs.
func sightingInputs(table *dataset.Table) []store.SightingInput {
	rows := make([]store.SightingInput, len(table.Rows))
	for i := range table.Rows {
		raw := table.Species(i)
		rows[i] = store.SightingInput{
			RowIdx:      i,
			Species:     raw,
			SpeciesNorm: species.Normalize(raw),
			Attrs:       table.RowAttrs(i),
		}
	}
	return rows
}
