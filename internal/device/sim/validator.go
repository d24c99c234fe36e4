package sim

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/device-fixture-v1.json
var fixtureSchemaJSON string

type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("device-fixture-v1.json",
		strings.NewReader(fixtureSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("device-fixture-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateFixture checks a YAML fixture against the schema. The document is
// round-tripped through JSON so the validator sees JSON value types.
func (v *Validator) ValidateFixture(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("fixture is not JSON compatible: %w", err)
	}

	var fixture interface{}
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(fixture); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
