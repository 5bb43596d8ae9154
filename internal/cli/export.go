package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/mapdata"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	DBPath        string
	Out           string
	RunID         string
	Deterministic bool
}

// ExportSummary is the result payload of the export command.
type ExportSummary struct {
	RunID    string `json:"run_id"`
	Features int    `json:"features"`
	Output   string `json:"output"`
}

func (s ExportSummary) String() string {
	return fmt.Sprintf("Exported %d features from run %s to %s", s.Features, s.RunID, s.Output)
}

// NewExportCommand creates the export command: a run into a map.json file.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a classification run as a map.json dataset",
		Long: `Export the features of a classification run as a map.json file for the
viewer. Defaults to the latest run; --run selects an earlier one.

--deterministic omits the generated_at timestamp so that the same run
always exports byte-identical output.

Example:
  avesmap export --db aves.db --out map.json
  avesmap export --db aves.db --out map.json --run 0192a7e3-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringVar(&opts.Out, "out", "map.json", "path for the exported dataset")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to export (default: latest run)")
	cmd.Flags().BoolVar(&opts.Deterministic, "deterministic", false, "omit the generated_at timestamp")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, cmd *cobra.Command) error {
	f := formatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := resolveRun(ctx, st, opts.RunID)
	if err != nil {
		if errors.Is(err, store.ErrNoRuns) || errors.Is(err, store.ErrRunNotFound) {
			_ = f.Error(ErrCodeNoRun, err.Error(), nil)
			return WrapExitError(ExitFailure, "no run to export", err)
		}
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to resolve run", err)
	}

	features, err := st.RunFeatures(ctx, run.ID)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load run features", err)
	}
	f.VerboseLog("Exporting run %s: %d features", run.ID, len(features))

	// Pin generated_at to the run's creation time so re-exporting a run
	// reproduces the same bytes.
	doc := mapdata.New(features, mapdata.Options{
		RunID:         run.ID,
		Deterministic: opts.Deterministic,
		Now:           func() time.Time { return run.CreatedAt },
	})

	out, err := os.Create(opts.Out)
	if err != nil {
		_ = f.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	defer out.Close()

	if err := doc.Encode(out); err != nil {
		_ = f.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write dataset", err)
	}
	if err := out.Close(); err != nil {
		_ = f.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write dataset", err)
	}

	return f.Success(ExportSummary{
		RunID:    run.ID,
		Features: doc.Count,
		Output:   opts.Out,
	})
}

// resolveRun returns the named run, or the latest when id is empty.
func resolveRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	if id != "" {
		return st.GetRun(ctx, id)
	}
	return st.LatestRun(ctx)
}
