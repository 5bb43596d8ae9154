package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/schema"
)

// ValidationResult is the result payload of the validate command.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	File   string                   `json:"file"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("%s is valid", r.File)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s is invalid:", r.File)
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  %s", e.Error())
	}
	return b.String()
}

// NewValidateCommand creates the validate command: map.json against the schema.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <map.json>",
		Short: "Validate a map.json dataset against the schema",
		Long: `Validate a map.json file against the dataset schema: document version,
feature count, coordinate ranges, and required fields.

Exits 0 when the file is valid, 1 when it violates the schema, and 2 when
it cannot be read at all.

Example:
  avesmap validate map.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runValidate(rootOpts *RootOptions, cmd *cobra.Command, path string) error {
	f := formatter(rootOpts, cmd)

	violations, err := schema.ValidateFile(path)
	if err != nil {
		_ = f.Error(ErrCodeRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to validate dataset", err)
	}

	result := ValidationResult{
		Valid:  len(violations) == 0,
		File:   path,
		Errors: violations,
	}

	if !result.Valid {
		_ = f.Error(ErrCodeSchema, result.String(), violations)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d schema violations", path, len(violations)))
	}
	return f.Success(result)
}
