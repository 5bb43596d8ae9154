package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, verifies its expectations, and compares
// the deterministic map document against a golden file stored at
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden comparison is only meaningful for scenarios whose output does not
// depend on random draws: every species in the table must have at most one
// master candidate.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if err := Verify(scenario, result); err != nil {
		return fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	var buf bytes.Buffer
	if err := result.Document.Encode(&buf); err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, buf.Bytes())
	return nil
}
