package tools

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("tool already registered")
	ErrValidation    = errors.New("validation error")

	ErrUpstreamRequest = errors.New("upstream request failed")
	ErrUpstreamAPI     = errors.New("upstream API error")

	ErrDivideByZero        = errors.New("0으로 나눌 수 없습니다 (cannot divide by zero)")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrResultOutOfRange    = errors.New("result is out of range")
	ErrInvalidTimezone     = errors.New("invalid timezone")

	ErrMissingCredential = errors.New("missing credential")
	ErrImageGeneration   = errors.New("image generation failed")
)

// FieldError names one argument that failed validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type ValidationError struct {
	Tool   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%s for tool %q: %s", ErrValidation, e.Tool, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UpstreamStatusError reports a non-success HTTP status from an upstream API.
type UpstreamStatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	msg := fmt.Sprintf("%s: %s returned HTTP %d", ErrUpstreamRequest, e.Service, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *UpstreamStatusError) Unwrap() error { return ErrUpstreamRequest }
