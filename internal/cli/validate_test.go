package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMapJSON = `{
  "version": 1,
  "run_id": "0192a7e3-0000-7000-8000-000000000001",
  "count": 1,
  "features": [
    {
      "species": "Quetzal",
      "species_norm": "quetzal",
      "lat": 14.531,
      "lon": -90.731
    }
  ]
}`

func writeMapFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runValidateCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateValidDataset(t *testing.T) {
	path := writeMapFile(t, validMapJSON)

	buf, err := runValidateCommand(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "is valid")
}

func TestValidateValidDatasetJSON(t *testing.T) {
	path := writeMapFile(t, validMapJSON)

	buf, err := runValidateCommand(t, "json", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, path, data["file"])
}

func TestValidateLatOutOfRange(t *testing.T) {
	path := writeMapFile(t, `{
  "version": 1,
  "count": 1,
  "features": [
    {"species": "Quetzal", "species_norm": "quetzal", "lat": 95.0, "lon": -90.731}
  ]
}`)

	buf, err := runValidateCommand(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E101")
	assert.Contains(t, buf.String(), "lat")
}

func TestValidateCountMismatch(t *testing.T) {
	path := writeMapFile(t, `{
  "version": 1,
  "count": 5,
  "features": [
    {"species": "Quetzal", "species_norm": "quetzal", "lat": 14.531, "lon": -90.731}
  ]
}`)

	buf, err := runValidateCommand(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "count")
}

func TestValidateUnreadableFile(t *testing.T) {
	buf, err := runValidateCommand(t, "text", "/nonexistent/map.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E002")
}
