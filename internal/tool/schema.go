package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaOf reflects a Go struct's json/jsonschema tags into the same
// map[string]any shape tools otherwise write as a literal, for tools
// whose arguments are regular enough to express as a struct rather than
// hand-assembled nested maps.
func SchemaOf(v any) map[string]any {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: false,
	}
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}
