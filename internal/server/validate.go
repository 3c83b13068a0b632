package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compileSchema compiles a JSON schema held as a Go map.
func compileSchema(name string, schemaMap map[string]interface{}) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func mustCompileSchema(name string, schemaMap map[string]interface{}) *jsonschema.Schema {
	schema, err := compileSchema(name, schemaMap)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return schema
}

// toolSchemas holds the compiled inputSchema of every tool, by tool name.
var toolSchemas = func() map[string]*jsonschema.Schema {
	schemas := make(map[string]*jsonschema.Schema)
	for _, tool := range GetToolDefinitions() {
		schemas[tool.Name] = mustCompileSchema(tool.Name+".json", tool.InputSchema)
	}
	return schemas
}()

// extractRequestSchema describes the POST /extract body. "text" may be
// omitted but must be a string when present.
var extractRequestSchema = mustCompileSchema("extract-request.json", map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"text": map[string]interface{}{"type": "string"},
	},
})

// imageRequestSchema describes the POST /extract/image body.
var imageRequestSchema = mustCompileSchema("extract-image-request.json", map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"image_base64": map[string]interface{}{"type": "string", "minLength": 1},
	},
	"required": []string{"image_base64"},
})

// validateJSON checks raw JSON against schema. An empty document is treated
// as an empty object, matching clients that omit arguments entirely.
func validateJSON(schema *jsonschema.Schema, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("does not match schema: %w", err)
	}
	return nil
}
