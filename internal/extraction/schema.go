package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vantagesource/qualis/pkg/formatting"
)

// recordSchema is the structural contract the consolidated model response
// must satisfy. Everything beyond supplier_type is optional: audits routinely
// omit whole sections, and missing data is handled downstream by scoring.
func recordSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"supplier_type"},
		"properties": map[string]any{
			"supplier_type": map[string]any{
				"type": "string",
				"enum": []string{"manufacturer", "trader", "unknown"},
			},
			"employee_count":         map[string]any{"type": "integer", "minimum": 0},
			"factory_area_sqm":       map[string]any{"type": "number", "minimum": 0},
			"production_lines_count": map[string]any{"type": "integer", "minimum": 0},
			"markets_served": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			},
			"certifications":       stringArrayProp(),
			"has_machinery_photos": map[string]any{"type": "boolean"},
			"positive_points":      stringArrayProp(),
			"negative_points":      stringArrayProp(),
			"products_verified":    stringArrayProp(),
			"audit_date":           map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"inspector_name":       map[string]any{"type": "string"},
		},
	}
}

func stringArrayProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(recordSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		compiledSchema, schemaErr = compiler.Compile("record.json")
	})
	return compiledSchema, schemaErr
}

func validateRecordJSON(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}

	return schema.Validate(v)
}

// optionalFields are the record keys sanitization may drop to recover a
// structurally valid document. supplier_type is required and never dropped;
// its values are coerced instead.
var optionalFields = []string{
	"employee_count",
	"factory_area_sqm",
	"production_lines_count",
	"markets_served",
	"certifications",
	"has_machinery_photos",
	"positive_points",
	"negative_points",
	"products_verified",
	"audit_date",
	"inspector_name",
}

// sanitizeRecordJSON is the lenient-recovery pass: it removes unknown keys,
// coerces supplier_type, converts numeric strings to numbers, and drops any
// optional field that still cannot satisfy the schema. Only optionals are
// touched so the overall document can validate.
func sanitizeRecordJSON(data []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, err
	}

	for key := range m {
		if key != "supplier_type" && !slices.Contains(optionalFields, key) {
			delete(m, key)
		}
	}

	raw, _ := m["supplier_type"].(string)
	m["supplier_type"] = string(ParseSupplierType(raw))

	coerceNumber(m, "employee_count")
	coerceNumber(m, "factory_area_sqm")
	coerceNumber(m, "production_lines_count")

	// Validate each optional in isolation; drop the ones that cannot
	// satisfy their schema so the rest of the document survives.
	var dropped []string
	for _, key := range optionalFields {
		v, ok := m[key]
		if !ok {
			continue
		}

		probe, err := json.Marshal(map[string]any{
			"supplier_type": m["supplier_type"],
			key:             v,
		})
		if err != nil {
			return nil, nil, err
		}

		if validateRecordJSON(probe) != nil {
			delete(m, key)
			dropped = append(dropped, key)
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return out, dropped, nil
}

func coerceNumber(m map[string]any, key string) {
	s, ok := m[key].(string)
	if !ok {
		return
	}

	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		delete(m, key)
		return
	}

	if f, err := n.Float64(); err == nil {
		m[key] = f
	} else {
		delete(m, key)
	}
}

// ParseRecord coerces raw model output into a normalized Record. It accepts
// bare JSON or a fenced code block, validates the structural shape against
// the record schema, makes one lenient-recovery attempt that drops invalid
// optional fields, and returns ErrParse when the shape still cannot be met.
func ParseRecord(content string) (*Record, error) {
	doc, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	data := []byte(doc)
	if err := validateRecordJSON(data); err != nil {
		sanitized, _, sanErr := sanitizeRecordJSON(data)
		if sanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if valErr := validateRecordJSON(sanitized); valErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, valErr)
		}
		data = sanitized
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	record.Normalize()
	return &record, nil
}

// extractFindings parses a per-page model response as a raw JSON document.
// Page findings are free-form; only the consolidated record is validated
// against the schema.
func extractFindings(content string) (json.RawMessage, error) {
	doc, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}
