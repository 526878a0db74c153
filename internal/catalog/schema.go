package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://lesson-catalog.json"

// catalogSchema is the JSON Schema every catalog document must satisfy.
var catalogSchema = map[string]any{
	"type":     "object",
	"required": []any{"lessons"},
	"properties": map[string]any{
		"subjects": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "name"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"name":        map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"icon":        map[string]any{"type": "string"},
					"color":       map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
		"lessons": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "subject", "title"},
				"properties": map[string]any{
					"id":               map[string]any{"type": "string", "minLength": 1},
					"subject":          map[string]any{"type": "string", "minLength": 1},
					"title":            map[string]any{"type": "string", "minLength": 1},
					"content":          map[string]any{"type": "string"},
					"duration_minutes": map[string]any{"type": "integer", "minimum": 0},
					"difficulty": map[string]any{
						"type": "string",
						"enum": []any{"", "beginner", "intermediate", "advanced"},
					},
					"video_url": map[string]any{"type": "string"},
					"order":     map[string]any{"type": "integer"},
					"questions": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"prompt", "options", "correct"},
							"properties": map[string]any{
								"id":     map[string]any{"type": "string"},
								"prompt": map[string]any{"type": "string", "minLength": 1},
								"options": map[string]any{
									"type":     "array",
									"minItems": 2,
									"items":    map[string]any{"type": "string"},
								},
								"correct":     map[string]any{"type": "integer", "minimum": 0},
								"explanation": map[string]any{"type": "string"},
							},
							"additionalProperties": false,
						},
					},
				},
				"additionalProperties": false,
			},
		},
		"challenges": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "title", "active_until"},
				"properties": map[string]any{
					"id":           map[string]any{"type": "string", "minLength": 1},
					"title":        map[string]any{"type": "string", "minLength": 1},
					"description":  map[string]any{"type": "string"},
					"type":         map[string]any{"type": "string", "enum": []any{"", "daily", "weekly"}},
					"points":       map[string]any{"type": "integer", "minimum": 0},
					"active_from":  map[string]any{"type": "string", "format": "date-time"},
					"active_until": map[string]any{"type": "string", "format": "date-time"},
				},
				"additionalProperties": false,
			},
		},
	},
	"additionalProperties": false,
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledSchema compiles catalogSchema on first use.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler expects plain JSON values.
		defBytes, err := json.Marshal(catalogSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
