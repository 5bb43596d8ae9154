package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/assign"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/store"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	DBPath string
	Seed   uint64

	// Generator produces the run ID. Defaults to UUIDv7; tests inject a
	// FixedGenerator for deterministic output.
	Generator store.RunIDGenerator
}

// ClassifySummary is the result payload of the classify command.
type ClassifySummary struct {
	RunID            string   `json:"run_id"`
	Seed             uint64   `json:"seed"`
	Total            int      `json:"total"`
	Assigned         int      `json:"assigned"`
	UnmatchedSpecies []string `json:"unmatched_species,omitempty"`
}

func (s ClassifySummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s (seed %d)\n", s.RunID, s.Seed)
	fmt.Fprintf(&b, "Rows with coordinates assigned: %d/%d", s.Assigned, s.Total)
	if len(s.UnmatchedSpecies) > 0 {
		fmt.Fprintf(&b, "\nSpecies without match: %s", strings.Join(s.UnmatchedSpecies, ", "))
	}
	return b.String()
}

// NewClassifyCommand creates the classify command: a stored assignment run.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Run coordinate assignment over the stored sightings",
		Long: `Assign coordinates to every stored sighting from the stored master
catalog and record the result as a new run. Runs are kept side by side;
export and serve use the latest run unless told otherwise.

Example:
  avesmap classify --db aves.db
  avesmap classify --db aves.db --seed 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", assign.DefaultSeed, "random seed for reproducible assignment")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runClassify(ctx context.Context, opts *ClassifyOptions, cmd *cobra.Command) error {
	f := formatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	sightings, err := st.Sightings(ctx)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load sightings", err)
	}
	if len(sightings) == 0 {
		_ = f.Error(ErrCodeNoData, "no sightings imported; run ingest first", nil)
		return NewExitError(ExitFailure, "no sightings to classify")
	}

	master, err := st.MasterIndex(ctx)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load master catalog", err)
	}
	if master.Len() == 0 {
		_ = f.Error(ErrCodeNoData, "master catalog is empty; run ingest first", nil)
		return NewExitError(ExitFailure, "no master catalog to classify against")
	}
	f.VerboseLog("Classifying %d sightings against %d species", len(sightings), master.Len())

	names := make([]string, len(sightings))
	for i, sg := range sightings {
		names[i] = sg.Species
	}
	result := assign.Run(names, master, assign.NewSeededPicker(opts.Seed))

	assignments := buildAssignments(sightings, result.Coords)

	gen := opts.Generator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	run := store.Run{
		ID:               gen.Generate(),
		Seed:             int64(opts.Seed),
		Total:            result.Total,
		Assigned:         result.Assigned,
		UnmatchedSpecies: len(result.NoMatch),
	}
	if err := st.CreateRun(ctx, run, assignments); err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}

	return f.Success(ClassifySummary{
		RunID:            run.ID,
		Seed:             opts.Seed,
		Total:            result.Total,
		Assigned:         result.Assigned,
		UnmatchedSpecies: result.NoMatch,
	})
}

// buildAssignments pairs matched coordinates with their sighting rows.
func buildAssignments(sightings []store.Sighting, coords []dataset.RowCoordinate) []store.Assignment {
	assignments := make([]store.Assignment, 0, len(coords))
	for i, rc := range coords {
		if !rc.Matched {
			continue
		}
		assignments = append(assignments, store.Assignment{
			SightingID: sightings[i].ID,
			Lat:        rc.Coord.Lat,
			Lon:        rc.Coord.Lon,
		})
	}
	return assignments
}
