package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Registry maps tool names to implementations. It is populated at startup
// and only read afterwards, so concurrent Invoke calls need no locking.
type Registry struct {
	tools      map[string]Tool
	validators map[string]*validator
	order      []string
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:      make(map[string]Tool, len(tools)),
		validators: make(map[string]*validator, len(tools)),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Names are unique within a registry.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	v, err := newValidator(t)
	if err != nil {
		return err
	}
	r.tools[name] = t
	r.validators[name] = v
	r.order = append(r.order, name)
	return nil
}

// GetTools returns all tools in registration order.
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r *Registry) GetTool(name string) (Tool, error) {
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return tool, nil
}

// Validate checks input against the named tool's schema and returns the
// normalised argument bag with defaults applied.
func (r *Registry) Validate(name string, input map[string]any) (map[string]any, error) {
	v, exists := r.validators[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return v.validate(input)
}

// Invoke validates input and runs the named tool. An unknown name is the only
// condition returned as an error; validation failures, handler errors and
// handler panics all come back as an error-flagged Result.
func (r *Registry) Invoke(ctx context.Context, name string, input map[string]any) (*Result, error) {
	tool, err := r.GetTool(name)
	if err != nil {
		return nil, err
	}

	args, err := r.Validate(name, input)
	if err != nil {
		slog.Warn("DISPATCH: Rejected arguments", "tool", name, "error", err)
		return NewErrorResult(err), nil
	}

	result, err := run(ctx, tool, args)
	if err != nil {
		slog.Warn("DISPATCH: Tool failed", "tool", name, "error", err)
		return NewErrorResult(err), nil
	}
	if result == nil || len(result.Content) == 0 {
		return NewErrorResult(fmt.Errorf("tool %q returned no content", name)), nil
	}
	return result, nil
}

func run(ctx context.Context, tool Tool, args map[string]any) (result *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("DISPATCH: Tool panicked", "tool", tool.Name(), "panic", p, "stack", string(debug.Stack()))
			result, err = nil, errors.New(fmt.Sprint("internal error: ", p))
		}
	}()
	return tool.Run(ctx, args)
}
