package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/dataset"
)

func testMaster() *dataset.Master {
	m := dataset.NewMaster()
	m.Add("paloma", dataset.Coordinate{Lat: -12.0, Lon: -77.0})
	m.Add("paloma", dataset.Coordinate{Lat: -12.1, Lon: -77.1})
	m.Add("paloma", dataset.Coordinate{Lat: -12.2, Lon: -77.2})
	m.Add("tórtola", dataset.Coordinate{Lat: -13.5, Lon: -71.9})
	return m
}

func TestRunAssignsFromMaster(t *testing.T) {
	names := []string{"Paloma (Columba livia)", "Tórtola", "PALOMA"}
	picker := NewFixedPicker(2, 0, 0)

	result := Run(names, testMaster(), picker)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Assigned)
	assert.Empty(t, result.NoMatch)

	require.Len(t, result.Coords, 3)
	assert.Equal(t, dataset.Coordinate{Lat: -12.2, Lon: -77.2}, result.Coords[0].Coord)
	assert.Equal(t, dataset.Coordinate{Lat: -13.5, Lon: -71.9}, result.Coords[1].Coord)
	assert.Equal(t, dataset.Coordinate{Lat: -12.0, Lon: -77.0}, result.Coords[2].Coord)
}

func TestRunSingleCandidateAlwaysAssigned(t *testing.T) {
	// A species with one candidate must yield that candidate and still
	// consume exactly one draw.
	picker := NewFixedPicker(0, 0)
	result := Run([]string{"Tórtola", "tórtola"}, testMaster(), picker)

	assert.Equal(t, 2, result.Assigned)
	assert.Equal(t, result.Coords[0], result.Coords[1])
	assert.Panics(t, func() { picker.Pick(1) }, "both draws should be consumed")
}

func TestRunCollectsNoMatch(t *testing.T) {
	names := []string{"Cóndor", "Paloma", "Zorzal", "cóndor", ""}
	picker := NewFixedPicker(1)

	result := Run(names, testMaster(), picker)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 1, result.Assigned)
	// Sorted, de-duplicated, empty species excluded.
	assert.Equal(t, []string{"cóndor", "zorzal"}, result.NoMatch)

	assert.False(t, result.Coords[0].Matched)
	assert.True(t, result.Coords[1].Matched)
	assert.False(t, result.Coords[4].Matched)
}

func TestRunUnmatchedRowsConsumeNoDraws(t *testing.T) {
	// Only the single matched row may consume a draw; unmatched and empty
	// rows must not advance the random stream.
	picker := NewFixedPicker(0)
	result := Run([]string{"Cóndor", "", "Paloma"}, testMaster(), picker)
	assert.Equal(t, 1, result.Assigned)
}

func TestRunEmptyInput(t *testing.T) {
	result := Run(nil, testMaster(), NewFixedPicker())

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Assigned)
	assert.Empty(t, result.Coords)
	assert.Empty(t, result.NoMatch)
}

func TestSeededPickerIsReproducible(t *testing.T) {
	names := []string{"Paloma", "Paloma", "Paloma", "Tórtola", "Paloma"}

	first := Run(names, testMaster(), NewSeededPicker(DefaultSeed))
	second := Run(names, testMaster(), NewSeededPicker(DefaultSeed))

	assert.Equal(t, first.Coords, second.Coords)
}

func TestSeededPickerSeedChangesDraws(t *testing.T) {
	var draws1, draws2 []int
	p1 := NewSeededPicker(1)
	p2 := NewSeededPicker(2)
	for i := 0; i < 32; i++ {
		draws1 = append(draws1, p1.Pick(1000))
		draws2 = append(draws2, p2.Pick(1000))
	}
	assert.NotEqual(t, draws1, draws2)
}

func TestFixedPickerClampsOutOfRange(t *testing.T) {
	p := NewFixedPicker(5)
	assert.Equal(t, 2, p.Pick(3))
}

func TestRunTable(t *testing.T) {
	table := &dataset.Table{
		Header:     []string{"id", "especie"},
		Rows:       [][]string{{"1", "Paloma"}, {"2", "Cóndor"}},
		SpeciesCol: 1,
	}

	result := RunTable(table, testMaster(), NewFixedPicker(0))

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, []string{"cóndor"}, result.NoMatch)
}
