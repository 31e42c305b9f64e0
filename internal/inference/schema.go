package inference

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildTechnicalDataSchema returns a JSON-Schema (draft 2020-12 subset) for
// the technical-data document, as a generic map. Validated locally before
// reconciliation; the upstream offers no contract of its own.
func buildTechnicalDataSchema() map[string]any {
	detectionProps := map[string]any{
		"object_id":  map[string]any{"type": "string"},
		"class_id":   map[string]any{"type": []string{"integer", "null"}},
		"class_name": map[string]any{"type": []string{"string", "null"}},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"bbox": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "number"},
			"minItems": 4,
			"maxItems": 4,
		},
		"fdi_number": map[string]any{"type": []string{"string", "number", "null"}},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": detectionProps,
					"required":   []string{"confidence"},
				},
			},
			"teeth_count":        map[string]any{"type": []string{"integer", "null"}},
			"healthy_count":      map[string]any{"type": []string{"integer", "null"}},
			"cavity_count":       map[string]any{"type": []string{"integer", "null"}},
			"average_confidence": map[string]any{"type": []string{"number", "null"}},
		},
		"required": []string{"detections"},
	}
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
