// Package prompt wraps the text models used for concept planning, prompt
// rewriting and field suggestions.
package prompt

import "context"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// SchemaType names a JSON schema node type.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the JSON a model must return.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
}

// TextRequest asks a model for one completion. When Schema is set the
// provider is asked for JSON output shaped by it.
type TextRequest struct {
	Prompt      string
	Schema      *Schema
	Temperature *float32
}

// Generator produces text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	Name() string
}

// Temperature returns a pointer for TextRequest.Temperature.
func Temperature(v float32) *float32 { return &v }
