package sim

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoFixture []byte

// Demo returns the built-in fixture with two cameras, CamX and CamY.
func Demo() (*Fixture, error) {
	return Parse(demoFixture)
}

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	fixture, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return fixture, nil
}

// Parse validates a YAML fixture against the schema and decodes it.
func Parse(data []byte) (*Fixture, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	if err := validator.ValidateFixture(data); err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixture: %w", err)
	}

	for i := range fixture.Devices {
		p := &fixture.Devices[i].Preview
		if p.Width == 0 {
			p.Width = 64
		}
		if p.Height == 0 {
			p.Height = 48
		}
	}

	return &fixture, nil
}
