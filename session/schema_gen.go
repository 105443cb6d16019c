package session

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects the session document schema from the Go
// types. Run via go:generate to refresh state.schema.json; the embedded
// copy is what Load validates against.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown fields must pass validation: future versions may add
		// fields and older builds still need to load the document.
		AllowAdditionalProperties: true,
		FieldNameTag:              "json",
	}

	schema := r.Reflect(&State{})
	schema.ID = "https://github.com/omnote/core/session/state"

	return json.MarshalIndent(schema, "", "  ")
}
