package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The schemas are deliberately permissive: nothing is required, unknown
// keys pass, and every scalar allows null. They exist to reject payloads
// whose fields carry structurally wrong types (an object where an array
// belongs), not to enforce completeness.

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableArray(itemProps map[string]any) map[string]any {
	return map[string]any{
		"type": []string{"array", "null"},
		"items": map[string]any{
			"type":       "object",
			"properties": itemProps,
		},
	}
}

// ExtractionSchema returns the JSON-Schema for the extraction payload.
func ExtractionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fio_initials":      nullableString(),
			"date_of_birth":     nullableString(),
			"diagnosis_primary": nullableString(),
			"stage":             nullableString(),
			"subtype":           nullableString(),
			"treatment_history": nullableArray(map[string]any{
				"treatment_type":  nullableString(),
				"description":     nullableString(),
				"start_date":      nullableString(),
				"end_date":        nullableString(),
				"outcome_dynamic": nullableString(),
				"outcome_date":    nullableString(),
				"details":         nullableString(),
			}),
			"biopsy_results": nullableArray(map[string]any{
				"date":           nullableString(),
				"type":           nullableString(),
				"result_summary": nullableString(),
			}),
			"consultations": nullableArray(map[string]any{
				"date":           nullableString(),
				"recommendation": nullableString(),
			}),
			"imaging_results": nullableArray(map[string]any{
				"date":     nullableString(),
				"type":     nullableString(),
				"findings": nullableString(),
			}),
		},
	}
}

// AnalysisSchema returns the JSON-Schema for the analysis payload.
// Both recommendation spellings are declared.
func AnalysisSchema() map[string]any {
	stringList := map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"optimal": nullableString(),
			"mismatches": nullableArray(map[string]any{
				"type":        nullableString(),
				"current":     nullableString(),
				"recommended": nullableString(),
			}),
			"recommendations": stringList,
			"recomendations":  stringList,
			"sources":         stringList,
		},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
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
