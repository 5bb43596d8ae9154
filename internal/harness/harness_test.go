package harness

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestBasicAssignmentGolden(t *testing.T) {
	s := loadTestScenario(t, "basic_assignment")
	require.NoError(t, RunWithGolden(t, s))
}

func TestNoMatchesGolden(t *testing.T) {
	s := loadTestScenario(t, "no_matches")
	require.NoError(t, RunWithGolden(t, s))
}

func TestSeededDraws(t *testing.T) {
	s := loadTestScenario(t, "seeded_draws")

	result, err := Run(s)
	require.NoError(t, err)
	require.NoError(t, Verify(s, result))

	// Every coordinate must come from the catalog's candidates.
	for _, f := range result.Document.Features {
		assert.InDelta(t, 13.2, f.Lat, 0.11)
		assert.InDelta(t, -87.2, f.Lon, 0.11)
	}
}

// Running the same seeded scenario twice must serialize identically.
func TestSeededDrawsReproducible(t *testing.T) {
	s := loadTestScenario(t, "seeded_draws")

	var docs [][]byte
	for range 2 {
		result, err := Run(s)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, result.Document.Encode(&buf))
		docs = append(docs, buf.Bytes())
	}
	assert.Equal(t, docs[0], docs[1])
}

func TestVerifyMismatch(t *testing.T) {
	s := loadTestScenario(t, "basic_assignment")

	result, err := Run(s)
	require.NoError(t, err)

	wrong := *s
	wrong.Expect.Assigned = 99
	err = Verify(&wrong, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigned")
}
