// Package schema validates map.json documents against the embedded CUE
// schema. Validation catches malformed exports and hand-edited datasets
// before the viewer tries to render them.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed map_schema.cue
var mapSchemaSource string

// ValidationError describes one schema violation in a document.
type ValidationError struct {
	// Path is the CUE path of the offending value (e.g. "features.3.lat").
	Path string `json:"path,omitempty"`

	// Message is the human-readable violation description.
	Message string `json:"message"`

	// Line is the source line in the validated file, 0 when unknown.
	Line int `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidateFile validates a map.json file on disk.
//
// The error return reports problems reading or parsing the file; schema
// violations come back as the (possibly empty) slice with a nil error.
func ValidateFile(path string) ([]ValidationError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Validate(path, data)
}

// Validate validates raw map.json bytes. filename is used in positions only.
func Validate(filename string, data []byte) ([]ValidationError, error) {
	ctx := cuecontext.New()

	def, err := mapDefinition(ctx)
	if err != nil {
		return nil, err
	}

	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("build document value: %w", err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return toValidationErrors(err), nil
	}
	return nil, nil
}

// mapDefinition compiles the embedded schema and returns the #Map definition.
func mapDefinition(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(mapSchemaSource, cue.Filename("map_schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile embedded schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Map"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("lookup #Map definition: %w", err)
	}
	return def, nil
}

// toValidationErrors flattens a CUE error into per-violation entries with
// path and position information where available.
func toValidationErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{Message: e.Error()}
		if path := e.Path(); len(path) > 0 {
			ve.Path = strings.Join(path, ".")
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	return out
}
