package mcpserver

import (
	"context"
	"net/http"

	"mcpserver/tools"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}

// Dispatcher validates and runs tool calls by name.
type Dispatcher interface {
	ToolProvider
	Invoke(ctx context.Context, name string, input map[string]any) (*tools.Result, error)
}
