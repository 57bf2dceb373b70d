package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchemaNode is the subset of JSON Schema that maps onto the Gemini response schema.
type jsonSchemaNode struct {
	Type        any                        `json:"type"`
	Description string                     `json:"description"`
	Enum        []string                   `json:"enum"`
	Items       *jsonSchemaNode            `json:"items"`
	Properties  map[string]*jsonSchemaNode `json:"properties"`
	Required    []string                   `json:"required"`
}

// ConvertSchema translates a JSON Schema document into a Gemini response schema.
// Keywords Gemini does not understand (minimum, pattern, $schema, ...) are dropped.
func ConvertSchema(raw []byte) (*genai.Schema, error) {
	var root jsonSchemaNode
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to parse response schema: %w", err)
	}
	return convertNode(&root)
}

func convertNode(n *jsonSchemaNode) (*genai.Schema, error) {
	typeName, nullable, err := schemaType(n.Type)
	if err != nil {
		return nil, err
	}

	out := &genai.Schema{
		Description: n.Description,
		Nullable:    nullable,
		Enum:        n.Enum,
	}
	switch typeName {
	case "object":
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(n.Properties))
		for name, prop := range n.Properties {
			child, err := convertNode(prop)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = child
		}
		out.Required = n.Required
	case "array":
		out.Type = genai.TypeArray
		if n.Items != nil {
			child, err := convertNode(n.Items)
			if err != nil {
				return nil, fmt.Errorf("items: %w", err)
			}
			out.Items = child
		}
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typeName)
	}
	return out, nil
}

// schemaType accepts both "string" and ["string", "null"] forms.
func schemaType(v any) (string, bool, error) {
	switch t := v.(type) {
	case string:
		return t, false, nil
	case []any:
		name := ""
		nullable := false
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return "", false, fmt.Errorf("invalid schema type %v", v)
			}
			if s == "null" {
				nullable = true
				continue
			}
			name = s
		}
		return name, nullable, nil
	default:
		return "", false, fmt.Errorf("invalid schema type %v", v)
	}
}
