package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (*Result, error)
}

// Defaulter is implemented by tools that declare default argument values.
// Defaults are applied to the argument bag after it passes validation.
type Defaulter interface {
	Defaults() map[string]any
}

type Call struct {
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// decodeInput converts a validated argument bag into the tool's typed input.
func decodeInput[T any](input map[string]any) (T, error) {
	var in T
	b, err := json.Marshal(input)
	if err != nil {
		return in, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("decode arguments: %w", err)
	}
	return in, nil
}

func bound(v float64) *float64 { return &v }
