package llm

import (
	"fmt"
	"strings"
)

// SchemaHint describes the JSON the oracle is expected to return. It is
// rendered into the prompt; responses are still validated by the caller.
type SchemaHint struct {
	Name    string        // Schema name, used in logs
	ListKey string        // When set, the response is a list wrapped under this key
	Fields  []SchemaField // Fields of the object (or of each list item)
}

// SchemaField defines a single field in the expected output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint, e.g. "string", "[\"string\"]", "\"a\" | \"b\""
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// Instructions renders the schema hint as prompt text.
func (s SchemaHint) Instructions() string {
	var sb strings.Builder

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n")
	indent := "  "
	if s.ListKey != "" {
		sb.WriteString(fmt.Sprintf("{\n  %q: [\n    {\n", s.ListKey))
		indent = "      "
	} else {
		sb.WriteString("{\n")
	}

	for i, field := range s.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("%s%q: %s%s", indent, field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	if s.ListKey != "" {
		sb.WriteString("    }\n  ]\n}\n")
	} else {
		sb.WriteString("}\n")
	}

	sb.WriteString("\nIMPORTANT:\n")
	sb.WriteString("- Use only the enumerated values where a field lists them.\n")
	sb.WriteString("- Return ONLY the JSON, no markdown, no explanation, no code blocks.\n")
	return sb.String()
}
