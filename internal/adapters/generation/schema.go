package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// contentSchema is the contract the gateway's content object must satisfy
// before it is decoded. Structural emptiness is caught again downstream; the
// schema exists to reject shape drift (renamed keys, wrong types) with a
// precise message instead of a zero-valued struct.
const contentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "sections"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "sections": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["paragraphs"],
        "properties": {
          "heading": {"type": "string"},
          "paragraphs": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    }
  }
}`

var compiledContentSchema = mustCompileContentSchema()

func mustCompileContentSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("content.schema.json", strings.NewReader(contentSchema)); err != nil {
		panic(fmt.Sprintf("add content schema: %v", err))
	}
	schema, err := compiler.Compile("content.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile content schema: %v", err))
	}
	return schema
}

// validateContentJSON checks the raw content object against the schema.
func validateContentJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("content is not valid JSON: %w", err)
	}
	if err := compiledContentSchema.Validate(v); err != nil {
		return fmt.Errorf("content does not match schema: %w", err)
	}
	return nil
}
