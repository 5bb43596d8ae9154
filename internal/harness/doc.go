// Package harness runs end-to-end pipeline scenarios described in YAML.
//
// A scenario declares a master catalog and a sightings table inline. The
// harness materializes both as CSV files, runs the full assignment pipeline
// over them, and checks the declared expectations. Deterministic scenarios
// can additionally be compared against golden map.json files.
package harness
