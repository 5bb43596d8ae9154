// Package dataset handles the CSV inputs and outputs of the coordinate
// pipeline: the sightings table, the master coordinate catalog, the assigned
// output table, and the no-match report.
//
// Input handling is tolerant by design. The source spreadsheets come from
// hand-maintained field data, so header detection is case-insensitive,
// whitespace-insensitive, and accepts several Spanish/English column name
// variants (including the "lopnong" longitude typo present in historical
// files). Master rows with unparseable coordinates are dropped rather than
// failing the whole load.
package dataset
