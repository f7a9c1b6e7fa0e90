package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/jsonschema-go/jsonschema"
)

const timeLayout = "2006-01-02 15:04:05"

type GetTimeInput struct {
	Timezone string `json:"timezone"`
}

type GetTime struct {
	now func() time.Time
}

// NewGetTime returns the time lookup tool. A nil clock uses time.Now.
func NewGetTime(now func() time.Time) *GetTime {
	if now == nil {
		now = time.Now
	}
	return &GetTime{now: now}
}

func (t *GetTime) Name() string  { return "get_time" }
func (t *GetTime) Title() string { return "Current Time" }
func (t *GetTime) Description() string {
	return "Returns the current date and time in the given IANA timezone (e.g. Asia/Seoul)."
}

func (t *GetTime) InputSchema() *jsonschema.Schema {
	minLen := 1
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"timezone": {
				Type:        "string",
				Description: "IANA timezone identifier, e.g. Asia/Seoul or America/New_York",
				MinLength:   &minLen,
			},
		},
		Required: []string{"timezone"},
	}
}

func (t *GetTime) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"timezone": {Type: "string"},
			"time":     {Type: "string"},
		},
		Required: []string{"timezone", "time"},
	}
}

func (t *GetTime) Run(_ context.Context, input map[string]any) (*Result, error) {
	in, err := decodeInput[GetTimeInput](input)
	if err != nil {
		return nil, err
	}
	tz := strings.TrimSpace(in.Timezone)
	formatted, err := FormatTimeIn(t.now(), tz)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Timezone: %s\n현재 시간: %s", tz, formatted)
	return NewTextResult(text, map[string]any{"timezone": tz, "time": formatted}), nil
}

// FormatTimeIn renders now in the named zone as YYYY-MM-DD HH:MM:SS (24h).
// "Local" and the empty name are rejected: they would silently report the
// host's zone instead of the one asked for.
func FormatTimeIn(now time.Time, tz string) (string, error) {
	name := strings.TrimSpace(tz)
	if name == "" || name == "Local" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	return now.In(loc).Format(timeLayout), nil
}
