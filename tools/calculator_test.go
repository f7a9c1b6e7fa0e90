package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		operator string
		want     float64
		wantErr  error
	}{
		{name: "addition", a: 2, b: 3, operator: "+", want: 5},
		{name: "subtraction", a: 2, b: 3, operator: "-", want: -1},
		{name: "multiplication", a: -4, b: 2.5, operator: "*", want: -10},
		{name: "division", a: 7, b: 2, operator: "/", want: 3.5},
		{name: "zero numerator", a: 0, b: 5, operator: "/", want: 0},
		{name: "divide by zero", a: 10, b: 0, operator: "/", wantErr: ErrDivideByZero},
		{name: "divide zero by zero", a: 0, b: 0, operator: "/", wantErr: ErrDivideByZero},
		{name: "unsupported operator", a: 1, b: 1, operator: "%", wantErr: ErrUnsupportedOperator},
		{name: "multiplication overflow", a: 1e308, b: 10, operator: "*", wantErr: ErrResultOutOfRange},
		{name: "division overflow", a: 1e308, b: 1e-10, operator: "/", wantErr: ErrResultOutOfRange},
		{name: "addition overflow", a: -1.7e308, b: -1.7e308, operator: "+", wantErr: ErrResultOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.a, tt.b, tt.operator)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_Invoke(t *testing.T) {
	r, err := NewRegistry(NewCalculator())
	require.NoError(t, err)

	tests := []struct {
		name           string
		input          map[string]any
		wantText       string
		wantError      bool
		wantStructured any
	}{
		{
			name:           "integer formatting",
			input:          map[string]any{"num1": 10.0, "num2": 4.0, "operator": "+"},
			wantText:       "10 + 4 = 14",
			wantStructured: map[string]any{"expression": "10 + 4", "result": 14.0},
		},
		{
			name:           "fractional result",
			input:          map[string]any{"num1": 7.0, "num2": 2.0, "operator": "/"},
			wantText:       "7 / 2 = 3.5",
			wantStructured: map[string]any{"expression": "7 / 2", "result": 3.5},
		},
		{
			name:      "division by zero",
			input:     map[string]any{"num1": 10.0, "num2": 0.0, "operator": "/"},
			wantText:  "0으로 나눌 수 없습니다",
			wantError: true,
		},
		{
			name:      "overflow is an error, not infinity",
			input:     map[string]any{"num1": 1e308, "num2": 10.0, "operator": "*"},
			wantText:  "result is out of range",
			wantError: true,
		},
		{
			name:      "operator outside enum",
			input:     map[string]any{"num1": 1.0, "num2": 2.0, "operator": "^"},
			wantText:  "operator",
			wantError: true,
		},
		{
			name:      "operand must be a number",
			input:     map[string]any{"num1": "ten", "num2": 2.0, "operator": "+"},
			wantText:  "num1",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Invoke(context.Background(), "calculator", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, res.IsError)
			assert.Contains(t, res.Text(), tt.wantText)
			assert.Equal(t, tt.wantStructured, res.StructuredContent)
		})
	}
}
