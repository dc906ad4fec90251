package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/paystubs/constants"
)

// ResultJSONSchema describes the serialized ExtractionResult.
func ResultJSONSchema() map[string]any {
	item := func(props map[string]any, required ...string) map[string]any {
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             required,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"gross_pay":        moneyProp(),
			"net_pay":          moneyProp(),
			"pay_period_start": map[string]any{"type": "string"},
			"pay_period_end":   map[string]any{"type": "string"},
			"pay_date":         map[string]any{"type": "string"},
			"pay_frequency": map[string]any{
				"type": "string",
				"enum": constants.FrequenciesAsStringSlice(),
			},
			"employer": item(map[string]any{
				"name":    map[string]any{"type": "string"},
				"address": map[string]any{"type": "string"},
				"ein":     map[string]any{"type": "string"},
			}, "name"),
			"employee": item(map[string]any{
				"name":        map[string]any{"type": "string"},
				"employee_id": map[string]any{"type": "string"},
				"ssn_last4":   map[string]any{"type": "string", "pattern": `^\d{4}$`},
			}, "name"),
			"earnings": map[string]any{
				"type": "array",
				"items": item(map[string]any{
					"description": map[string]any{"type": "string"},
					"hours":       map[string]any{"type": "number"},
					"rate":        map[string]any{"type": "number"},
					"amount":      moneyProp(),
				}, "description", "amount"),
			},
			"deductions": map[string]any{
				"type": "array",
				"items": item(map[string]any{
					"description": map[string]any{"type": "string"},
					"amount":      moneyProp(),
					"pre_tax":     map[string]any{"type": "boolean"},
				}, "description", "amount", "pre_tax"),
			},
			"taxes": map[string]any{
				"type": "array",
				"items": item(map[string]any{
					"description": map[string]any{"type": "string"},
					"amount":      moneyProp(),
				}, "description", "amount"),
			},
			"ytd": map[string]any{
				"type":                 "object",
				"additionalProperties": moneyProp(),
			},
			"confidence_score": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"provider":         map[string]any{"type": "string"},
		},
		"required": []string{
			"gross_pay", "net_pay", "pay_frequency", "employer", "employee",
			"earnings", "deductions", "taxes", "confidence_score",
		},
	}
}

func moneyProp() map[string]any {
	return map[string]any{"type": "number"}
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func resultSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(ResultJSONSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("paystub.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("paystub.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateJSON checks serialized result bytes against ResultJSONSchema.
func ValidateJSON(data []byte) error {
	schema, err := resultSchema()
	if err != nil {
		return err
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
