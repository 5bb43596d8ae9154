package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/assign"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
)

// AssignOptions holds flags for the assign command.
type AssignOptions struct {
	*RootOptions
	Table   string
	Master  string
	Out     string
	NoMatch string
	Seed    uint64
}

// AssignSummary is the result payload of the assign command.
type AssignSummary struct {
	Total            int    `json:"total"`
	Assigned         int    `json:"assigned"`
	UnmatchedSpecies int    `json:"unmatched_species"`
	Output           string `json:"output"`
	NoMatchReport    string `json:"no_match_report,omitempty"`
}

func (s AssignSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total rows: %d\n", s.Total)
	fmt.Fprintf(&b, "Rows with coordinates assigned: %d\n", s.Assigned)
	if s.NoMatchReport != "" {
		fmt.Fprintf(&b, "Species without match: %d -> %s\n", s.UnmatchedSpecies, s.NoMatchReport)
	} else {
		fmt.Fprintf(&b, "Species without match: %d\n", s.UnmatchedSpecies)
	}
	fmt.Fprintf(&b, "Output: %s", s.Output)
	return b.String()
}

// NewAssignCommand creates the assign command: the file-to-file processor.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign coordinates to a sightings CSV from a master catalog",
		Long: `Assign a coordinate to each row of a sightings table, drawn at random
from the master catalog entries for the row's species.

Species match case-insensitively, ignoring parenthesized content. Each row
draws independently (with replacement), seeded for reproducibility. Three
columns are appended: lat, lon, and lat_lon. Species present in the table
but absent from the master are reported in a no_match.csv next to the
output file.

Example:
  avesmap assign --table AJ/Tabla.csv --master AJ/Cordenadas.csv --out AJ/Tabla_con_coordenadas.csv
  avesmap assign --table t.csv --master m.csv --out out.csv --seed 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "path to the sightings table CSV (required)")
	cmd.Flags().StringVar(&opts.Master, "master", "", "path to the master coordinates CSV (required)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "path for the output CSV (required)")
	cmd.Flags().StringVar(&opts.NoMatch, "no-match", "", "path for the no-match report (default: no_match.csv next to --out)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", assign.DefaultSeed, "random seed for reproducible assignment")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("master")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runAssign(opts *AssignOptions, cmd *cobra.Command) error {
	f := formatter(opts.RootOptions, cmd)

	table, err := dataset.LoadTable(opts.Table)
	if err != nil {
		return inputError(f, "failed to load sightings table", err)
	}
	f.VerboseLog("Loaded table %s: %d rows", opts.Table, len(table.Rows))

	master, err := dataset.LoadMaster(opts.Master)
	if err != nil {
		return inputError(f, "failed to load master catalog", err)
	}
	f.VerboseLog("Loaded master %s: %d species", opts.Master, master.Len())

	result := assign.RunTable(table, master, assign.NewSeededPicker(opts.Seed))

	if err := dataset.WriteAssigned(opts.Out, table, result.Coords); err != nil {
		_ = f.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	summary := AssignSummary{
		Total:            result.Total,
		Assigned:         result.Assigned,
		UnmatchedSpecies: len(result.NoMatch),
		Output:           opts.Out,
	}

	if len(result.NoMatch) > 0 {
		noMatchPath := opts.NoMatch
		if noMatchPath == "" {
			noMatchPath = filepath.Join(filepath.Dir(opts.Out), "no_match.csv")
		}
		if err := dataset.WriteNoMatch(noMatchPath, result.NoMatch); err != nil {
			_ = f.Error(ErrCodeWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write no-match report", err)
		}
		summary.NoMatchReport = noMatchPath
	}

	return f.Success(summary)
}

// inputError reports a table/master loading failure with the right error
// code and returns a command-level ExitError.
func inputError(f *OutputFormatter, message string, err error) error {
	code := ErrCodeRead
	var missing *dataset.MissingColumnError
	if errors.As(err, &missing) {
		code = ErrCodeColumn
	} else if strings.Contains(err.Error(), "parse csv") {
		code = ErrCodeParse
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, message, err)
}
