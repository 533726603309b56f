package journey

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// definitionSchema is the structural contract for journey definition files.
// Loading validates against it before any struct-level checks run.
const definitionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["companyName", "domain", "steps"],
  "properties": {
    "companyName": {"type": "string", "minLength": 1},
    "domain": {"type": "string", "minLength": 1},
    "errorSimulationEnabled": {"type": "boolean"},
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["stepNumber", "stepName", "serviceName"],
        "properties": {
          "stepNumber": {"type": "integer", "minimum": 1},
          "stepName": {"type": "string", "minLength": 1},
          "serviceName": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "estimatedDuration": {"type": "integer", "minimum": 0},
          "thinkTime": {"type": "string"},
          "substeps": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["substepName"],
              "properties": {
                "substepName": {"type": "string", "minLength": 1},
                "duration": {"type": "integer", "minimum": 0}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("journey-definition.json", definitionSchema)

// Load reads a journey definition from a YAML (or JSON) file, validates it
// against the definition schema and the structural invariants, and applies
// per-step defaults.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading journey definition: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a journey definition document.
func Parse(data []byte) (*Definition, error) {
	// Decode loosely first so the schema sees the raw document shape.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing journey definition: %w", err)
	}

	// The schema validator expects JSON-decoded values, so round-trip the
	// YAML document through encoding/json.
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalizing journey definition: %w", err)
	}
	var normalized interface{}
	if err := json.Unmarshal(jsonDoc, &normalized); err != nil {
		return nil, fmt.Errorf("normalizing journey definition: %w", err)
	}

	if err := compiledSchema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("journey definition schema validation: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing journey definition: %w", err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	def.ApplyDefaults()
	return &def, nil
}
