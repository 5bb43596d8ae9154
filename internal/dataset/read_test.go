package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindColumn(t *testing.T) {
	header := []string{"ID", "Fecha", " Nombre  de Ave ", "Lugar"}

	idx, err := FindColumn(header, SpeciesColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestFindColumnCaseInsensitive(t *testing.T) {
	header := []string{"SPECIES", "LATITUD", "LOPNONG"}

	idx, err := FindColumn(header, SpeciesColumns)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = FindColumn(header, LatColumns)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	// The "lopnong" typo is accepted as a longitude header.
	idx, err = FindColumn(header, LonColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestFindColumnMissing(t *testing.T) {
	header := []string{"id", "fecha"}

	_, err := FindColumn(header, SpeciesColumns)
	require.Error(t, err)

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, SpeciesColumns, missing.Candidates)
	assert.Contains(t, err.Error(), "fecha")
}

func TestReadTable(t *testing.T) {
	input := "id,especie,lugar\n1,Paloma,Lima\n2,Tórtola,Cusco\n"

	table, err := ReadTable(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "especie", "lugar"}, table.Header)
	assert.Equal(t, 1, table.SpeciesCol)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Paloma", table.Species(0))
	assert.Equal(t, "Tórtola", table.Species(1))
	assert.Equal(t, []string{"Paloma", "Tórtola"}, table.SpeciesNames())
}

func TestReadTableHeaderOnly(t *testing.T) {
	table, err := ReadTable(strings.NewReader("especie\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestReadTableEmptyFile(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestReadTableRaggedRows(t *testing.T) {
	input := "id,especie,lugar\n1,Paloma\n2,Tórtola,Cusco,extra\n"

	table, err := ReadTable(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Paloma", table.Species(0))
}

func TestReadTableStripsBOM(t *testing.T) {
	input := "\ufeffespecie,lugar\nPaloma,Lima\n"

	table, err := ReadTable(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "especie", table.Header[0])
	assert.Equal(t, 0, table.SpeciesCol)
}

func TestReadMaster(t *testing.T) {
	input := strings.Join([]string{
		"Nombre de Ave,Latitud,Longitud",
		"Paloma (Columba livia),-12.04637,-77.042793",
		"PALOMA,-12.1,-77.1",
		"Tórtola,-13.53195,-71.967463",
	}, "\n")

	master, err := ReadMaster(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, master.Len())
	assert.Equal(t, []string{"paloma", "tórtola"}, master.Species())

	coords, ok := master.Lookup("paloma")
	require.True(t, ok)
	require.Len(t, coords, 2)
	// File order preserved within a species.
	assert.Equal(t, Coordinate{Lat: -12.04637, Lon: -77.042793}, coords[0])
	assert.Equal(t, Coordinate{Lat: -12.1, Lon: -77.1}, coords[1])

	_, ok = master.Lookup("cóndor")
	assert.False(t, ok)
}

func TestReadMasterDropsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"especie,lat,lon",
		"Paloma,-12.0,-77.0",
		",-1.0,-2.0",           // empty species
		"Tórtola,abc,-71.9",    // unparseable lat
		"Cóndor,-13.2",         // missing lon cell
		"Gorrión, -12.5 , -76.9 ", // whitespace tolerated
	}, "\n")

	master, err := ReadMaster(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"gorrión", "paloma"}, master.Species())
	coords, _ := master.Lookup("gorrión")
	assert.Equal(t, Coordinate{Lat: -12.5, Lon: -76.9}, coords[0])
}

func TestReadMasterMissingLonColumn(t *testing.T) {
	_, err := ReadMaster(strings.NewReader("especie,lat\nPaloma,-12.0\n"))
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, LonColumns, missing.Candidates)
}

func TestReadMasterRowsKeepsRawNames(t *testing.T) {
	input := strings.Join([]string{
		"especie,lat,lopnong",
		"Paloma (Columba livia),-12.04637,-77.042793",
		"Tórtola,-13.53195,-71.967463",
	}, "\n")

	rows, err := ReadMasterRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Raw names survive for storage; only the index normalizes them.
	assert.Equal(t, "Paloma (Columba livia)", rows[0].Species)
	assert.Equal(t, Coordinate{Lat: -12.04637, Lon: -77.042793}, rows[0].Coord)
	assert.Equal(t, "Tórtola", rows[1].Species)
}
