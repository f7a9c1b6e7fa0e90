package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
)

type CalculatorInput struct {
	Num1     float64 `json:"num1"`
	Num2     float64 `json:"num2"`
	Operator string  `json:"operator"`
}

type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

func (t *Calculator) Name() string  { return "calculator" }
func (t *Calculator) Title() string { return "Calculator" }
func (t *Calculator) Description() string {
	return "Performs basic arithmetic (+, -, *, /) on two numbers."
}

func (t *Calculator) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"num1":     {Type: "number", Description: "First operand"},
			"num2":     {Type: "number", Description: "Second operand"},
			"operator": {Type: "string", Description: "Arithmetic operator: +, -, * or /", Enum: []any{"+", "-", "*", "/"}},
		},
		Required: []string{"num1", "num2", "operator"},
	}
}

func (t *Calculator) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"expression": {Type: "string"},
			"result":     {Type: "number"},
		},
		Required: []string{"expression", "result"},
	}
}

func (t *Calculator) Run(_ context.Context, input map[string]any) (*Result, error) {
	in, err := decodeInput[CalculatorInput](input)
	if err != nil {
		return nil, err
	}
	result, err := Calculate(in.Num1, in.Num2, in.Operator)
	if err != nil {
		return nil, err
	}
	expr := fmt.Sprintf("%s %s %s", formatNumber(in.Num1), in.Operator, formatNumber(in.Num2))
	text := fmt.Sprintf("%s = %s", expr, formatNumber(result))
	return NewTextResult(text, map[string]any{"expression": expr, "result": result}), nil
}

// Calculate applies operator to a and b. Division by zero and results that
// overflow float64 are errors; the result is always finite.
func Calculate(a, b float64, operator string) (float64, error) {
	var result float64
	switch operator {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		if b == 0 {
			return 0, ErrDivideByZero
		}
		result = a / b
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperator, operator)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: %g %s %g", ErrResultOutOfRange, a, operator, b)
	}
	return result, nil
}

// formatNumber prints the shortest decimal that round-trips, so 10 stays "10"
// and 1/3 prints all significant digits.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
