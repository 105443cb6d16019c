package session

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed state.schema.json
var embeddedSchemaData []byte

var (
	compiledSchema    *jsonschema.Schema
	compileSchemaErr  error
	compileSchemaOnce sync.Once
)

// stateSchema compiles the embedded session document schema once.
func stateSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("state.json", strings.NewReader(string(embeddedSchemaData))); err != nil {
			compileSchemaErr = fmt.Errorf("failed to add embedded schema resource: %w", err)
			return
		}
		compiledSchema, compileSchemaErr = compiler.Compile("state.json")
	})
	return compiledSchema, compileSchemaErr
}

// ValidateDocument checks raw session JSON against the embedded schema.
// Unknown fields pass (forward-readable); wrong types and missing
// required fields fail, signalling the caller to fall back to the
// default session.
func ValidateDocument(raw []byte) error {
	schema, err := stateSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var messages []string
			collectErrors(validationErr, &messages)
			return fmt.Errorf("schema validation failed:\n%s", strings.Join(messages, "\n"))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// collectErrors recursively collects all validation errors into a slice
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if err.InstanceLocation != "" {
		*messages = append(*messages, fmt.Sprintf("- %s: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
