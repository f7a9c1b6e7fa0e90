package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	LanguageKorean  = "ko"
	LanguageEnglish = "en"
)

type GreetInput struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

type Greet struct{}

func NewGreet() *Greet { return &Greet{} }

func (t *Greet) Name() string  { return "greet" }
func (t *Greet) Title() string { return "Greeting" }
func (t *Greet) Description() string {
	return "Greets a person by name in Korean (ko) or English (en)."
}

func (t *Greet) InputSchema() *jsonschema.Schema {
	minLen := 1
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {
				Type:        "string",
				Description: "Name of the person to greet",
				MinLength:   &minLen,
			},
			"language": {
				Type:        "string",
				Description: "Greeting language: ko or en (default en)",
				Enum:        []any{LanguageKorean, LanguageEnglish},
			},
		},
		Required: []string{"name"},
	}
}

func (t *Greet) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"greeting": {Type: "string"},
		},
		Required: []string{"greeting"},
	}
}

func (t *Greet) Defaults() map[string]any {
	return map[string]any{"language": LanguageEnglish}
}

func (t *Greet) Run(_ context.Context, input map[string]any) (*Result, error) {
	in, err := decodeInput[GreetInput](input)
	if err != nil {
		return nil, err
	}
	text := Greeting(in.Name, in.Language)
	return NewTextResult(text, map[string]any{"greeting": text}), nil
}

// Greeting is deterministic in name and language; anything other than
// Korean falls back to English.
func Greeting(name, language string) string {
	if language == LanguageKorean {
		return fmt.Sprintf("안녕하세요, %s님!", name)
	}
	return fmt.Sprintf("Hey there, %s! 👋 Nice to meet you!", name)
}
