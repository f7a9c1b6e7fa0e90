package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name     string
	schema   *jsonschema.Schema
	defaults map[string]any
	run      func(ctx context.Context, input map[string]any) (*Result, error)
}

func (s *stubTool) Name() string                     { return s.name }
func (s *stubTool) Title() string                    { return s.name }
func (s *stubTool) Description() string              { return "stub " + s.name }
func (s *stubTool) InputSchema() *jsonschema.Schema  { return s.schema }
func (s *stubTool) OutputSchema() *jsonschema.Schema { return nil }
func (s *stubTool) Run(ctx context.Context, input map[string]any) (*Result, error) {
	return s.run(ctx, input)
}

type defaultingStub struct{ *stubTool }

func (d defaultingStub) Defaults() map[string]any { return d.defaults }

func echoTool(name string) *stubTool {
	return &stubTool{
		name: name,
		run: func(_ context.Context, input map[string]any) (*Result, error) {
			return NewTextResult(name, input), nil
		},
	}
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name      string
		tools     []Tool
		wantNames []string
		wantErr   error
	}{
		{
			name:      "keeps registration order",
			tools:     []Tool{echoTool("b"), echoTool("a"), echoTool("c")},
			wantNames: []string{"b", "a", "c"},
		},
		{
			name:      "empty registry",
			wantNames: []string{},
		},
		{
			name:    "duplicate name",
			tools:   []Tool{echoTool("a"), echoTool("a")},
			wantErr: ErrDuplicateTool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.tools...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			names := []string{}
			for _, tool := range r.GetTools() {
				names = append(names, tool.Name())
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestRegistry_GetTool(t *testing.T) {
	r, err := NewRegistry(echoTool("known"))
	require.NoError(t, err)

	tool, err := r.GetTool("known")
	require.NoError(t, err)
	assert.Equal(t, "known", tool.Name())

	_, err = r.GetTool("missing")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegistry_Validate(t *testing.T) {
	r, err := NewRegistry(NewGreet(), NewGeocode(GeocodeOpts{}), NewWeather(WeatherOpts{}), NewCalculator())
	require.NoError(t, err)

	tests := []struct {
		name       string
		tool       string
		input      map[string]any
		want       map[string]any
		wantFields []string
	}{
		{
			name:  "greet default language applied",
			tool:  "greet",
			input: map[string]any{"name": "Tom"},
			want:  map[string]any{"name": "Tom", "language": "en"},
		},
		{
			name:  "explicit value wins over default",
			tool:  "greet",
			input: map[string]any{"name": "Tom", "language": "ko"},
			want:  map[string]any{"name": "Tom", "language": "ko"},
		},
		{
			name:       "missing required field",
			tool:       "greet",
			input:      map[string]any{},
			wantFields: []string{"name"},
		},
		{
			name:       "nil input treated as empty",
			tool:       "greet",
			input:      nil,
			wantFields: []string{"name"},
		},
		{
			name:       "wrong type",
			tool:       "greet",
			input:      map[string]any{"name": 5.0},
			wantFields: []string{"name"},
		},
		{
			name:       "enum membership",
			tool:       "greet",
			input:      map[string]any{"name": "Tom", "language": "fr"},
			wantFields: []string{"language"},
		},
		{
			name:       "empty string below min length",
			tool:       "greet",
			input:      map[string]any{"name": ""},
			wantFields: []string{"name"},
		},
		{
			name:       "numeric upper bound",
			tool:       "geocode",
			input:      map[string]any{"address": "Seoul", "limit": 11.0},
			wantFields: []string{"limit"},
		},
		{
			name:       "integer required",
			tool:       "geocode",
			input:      map[string]any{"address": "Seoul", "limit": 2.5},
			wantFields: []string{"limit"},
		},
		{
			name:       "pattern mismatch",
			tool:       "geocode",
			input:      map[string]any{"address": "Seoul", "country": "KOR"},
			wantFields: []string{"country"},
		},
		{
			name:  "geocode default limit",
			tool:  "geocode",
			input: map[string]any{"address": "Seoul"},
			want:  map[string]any{"address": "Seoul", "limit": 1},
		},
		{
			name:       "several fields reported sorted",
			tool:       "get_weather",
			input:      map[string]any{"latitude": 91.0, "longitude": -181.0},
			wantFields: []string{"latitude", "longitude"},
		},
		{
			name:       "all calculator fields missing",
			tool:       "calculator",
			input:      map[string]any{},
			wantFields: []string{"num1", "num2", "operator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Validate(tt.tool, tt.input)
			if tt.wantFields != nil {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Equal(t, tt.tool, verr.Tool)

				fields := make([]string, 0, len(verr.Fields))
				for _, f := range verr.Fields {
					fields = append(fields, f.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_ValidateDoesNotMutateInput(t *testing.T) {
	r, err := NewRegistry(NewGreet())
	require.NoError(t, err)

	input := map[string]any{"name": "Tom"}
	_, err = r.Validate("greet", input)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Tom"}, input)
}

func TestRegistry_Invoke(t *testing.T) {
	objectSchema := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"n": {Type: "integer"}},
		Required:   []string{"n"},
	}

	tests := []struct {
		name      string
		tool      Tool
		input     map[string]any
		wantError bool
		wantText  string
	}{
		{
			name: "success passes validated input",
			tool: defaultingStub{&stubTool{name: "t", schema: objectSchema, defaults: map[string]any{"extra": "x"}, run: func(_ context.Context, in map[string]any) (*Result, error) {
				return NewTextResult(in["extra"].(string), nil), nil
			}}},
			input:    map[string]any{"n": 1.0},
			wantText: "x",
		},
		{
			name:      "validation failure never reaches handler",
			tool:      &stubTool{name: "t", schema: objectSchema, run: func(context.Context, map[string]any) (*Result, error) { panic("handler must not run") }},
			input:     map[string]any{},
			wantError: true,
			wantText:  "Error: validation error for tool \"t\"",
		},
		{
			name:      "handler error becomes error result",
			tool:      &stubTool{name: "t", run: func(context.Context, map[string]any) (*Result, error) { return nil, errors.New("boom") }},
			wantError: true,
			wantText:  "Error: boom",
		},
		{
			name:      "handler panic is recovered",
			tool:      &stubTool{name: "t", run: func(context.Context, map[string]any) (*Result, error) { panic("kaboom") }},
			wantError: true,
			wantText:  "Error: internal error: kaboom",
		},
		{
			name:      "empty result is an error",
			tool:      &stubTool{name: "t", run: func(context.Context, map[string]any) (*Result, error) { return nil, nil }},
			wantError: true,
			wantText:  "returned no content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.tool)
			require.NoError(t, err)

			res, err := r.Invoke(context.Background(), "t", tt.input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantError, res.IsError)
			assert.Contains(t, res.Text(), tt.wantText)
		})
	}
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	r, err := NewRegistry(echoTool("known"))
	require.NoError(t, err)

	res, err := r.Invoke(context.Background(), "nope", map[string]any{})
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Nil(t, res)
}
