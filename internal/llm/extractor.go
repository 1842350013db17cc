// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// FieldKind is the JSON shape of a schema field
type FieldKind string

// Field kinds understood by BuildExtractionPrompt and GenaiSchema
const (
	KindString     FieldKind = "string"
	KindStringList FieldKind = "[]string"
	KindObjectList FieldKind = "[]object"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "Identity", "Role")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string        // JSON field name
	Kind        FieldKind     // Defaults to KindString
	Description string        // Description for the LLM
	Required    bool          // Whether this field is required
	Items       []SchemaField // Object fields when Kind is KindObjectList
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint(field), requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Use null for any value that is not present in the text.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

func typeHint(field SchemaField) string {
	switch field.Kind {
	case KindStringList:
		return `["string"]`
	case KindObjectList:
		parts := make([]string, 0, len(field.Items))
		for _, item := range field.Items {
			parts = append(parts, fmt.Sprintf("%q: %s", item.Name, typeHint(item)))
		}
		return "[{" + strings.Join(parts, ", ") + "}]"
	default:
		return `"string"`
	}
}

// GenaiSchema converts the schema to a Gemini response schema so the service
// constrains its output to the same shape the prompt describes.
func (s ExtractionSchema) GenaiSchema() *genai.Schema {
	return objectSchema(s.Description, s.Fields)
}

func objectSchema(description string, fields []SchemaField) *genai.Schema {
	out := &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties:  make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		out.Properties[f.Name] = fieldSchema(f)
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}

func fieldSchema(f SchemaField) *genai.Schema {
	switch f.Kind {
	case KindStringList:
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: f.Description,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	case KindObjectList:
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: f.Description,
			Items:       objectSchema("", f.Items),
		}
	default:
		return &genai.Schema{
			Type:        genai.TypeString,
			Description: f.Description,
			Nullable:    !f.Required,
		}
	}
}
