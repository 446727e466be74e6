package verify

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ToolSchema is the function-calling description a tool exports via the
// schema-dump flag. Parameters carries the JSON-Schema object describing the
// tool's accepted inputs; the marketplace UI renders its form from it.
type ToolSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

//go:embed toolschema.json
var metaSchemaJSON []byte

var (
	metaOnce   sync.Once
	metaSchema *jsonschema.Schema
	metaErr    error
)

func compiledMetaSchema() (*jsonschema.Schema, error) {
	metaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(metaSchemaJSON))
		if err != nil {
			metaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("hive://tool-schema.json", doc); err != nil {
			metaErr = err
			return
		}
		metaSchema, metaErr = c.Compile("hive://tool-schema.json")
	})
	return metaSchema, metaErr
}

// ValidateSchema parses and validates a tool's exported schema against the
// function-calling shape. Returns the typed schema on success.
func ValidateSchema(raw []byte) (*ToolSchema, error) {
	schema, err := compiledMetaSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling meta-schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema output is not JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}

	var ts ToolSchema
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}
