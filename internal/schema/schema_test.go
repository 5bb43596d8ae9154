package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/mapdata"
)

func validDocument(t *testing.T) []byte {
	t.Helper()
	table := &dataset.Table{
		Header:     []string{"id", "especie"},
		Rows:       [][]string{{"1", "Paloma"}, {"2", "Tórtola"}},
		SpeciesCol: 1,
	}
	coords := []dataset.RowCoordinate{
		{Matched: true, Coord: dataset.Coordinate{Lat: -12.04637, Lon: -77.042793}},
		{Matched: true, Coord: dataset.Coordinate{Lat: -13.53195, Lon: -71.967463}},
	}
	doc, err := mapdata.Build(table, coords, mapdata.Options{Deterministic: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	return buf.Bytes()
}

func TestValidateAcceptsExporterOutput(t *testing.T) {
	errs, err := Validate("map.json", validDocument(t))
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateAcceptsEmptyFeatureList(t *testing.T) {
	doc := []byte(`{"version": 1, "count": 0, "features": []}`)
	errs, err := Validate("map.json", doc)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateRejectsLatOutOfRange(t *testing.T) {
	doc := []byte(`{
		"version": 1,
		"count": 1,
		"features": [{"species": "Paloma", "species_norm": "paloma", "lat": 95.0, "lon": -77.0}]
	}`)

	errs, err := Validate("map.json", doc)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "lat")
}

func TestValidateRejectsCountMismatch(t *testing.T) {
	doc := []byte(`{"version": 1, "count": 5, "features": []}`)

	errs, err := Validate("map.json", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestValidateRejectsEmptySpecies(t *testing.T) {
	doc := []byte(`{
		"version": 1,
		"count": 1,
		"features": [{"species": "", "species_norm": "paloma", "lat": 0, "lon": 0}]
	}`)

	errs, err := Validate("map.json", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestValidateRejectsUnknownTopLevelField(t *testing.T) {
	doc := []byte(`{"version": 1, "count": 0, "features": [], "extra": true}`)

	errs, err := Validate("map.json", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestValidateRejectsWrongVersion(t *testing.T) {
	doc := []byte(`{"version": 2, "count": 0, "features": []}`)

	errs, err := Validate("map.json", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestValidateMalformedJSON(t *testing.T) {
	_, err := Validate("map.json", []byte(`{not json`))
	require.Error(t, err)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(path, validDocument(t), 0644))

	errs, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = ValidateFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
