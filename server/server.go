package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"mcpserver"
	"mcpserver/tools"
)

type Options struct {
	Name       string
	Version    string
	Dispatcher mcpserver.Dispatcher
	Info       *tools.ServerInfo
	Logger     mcpserver.InvocationLogger
	Tracer     trace.Tracer
	Meter      metric.Meter
	DebugDump  bool
}

// Server binds a tool dispatcher to an MCP server.
type Server struct {
	mcp        *mcp.Server
	dispatcher mcpserver.Dispatcher
	info       *tools.ServerInfo
	logger     mcpserver.InvocationLogger
	tracer     trace.Tracer
	debugDump  bool

	callsCounter       metric.Int64Counter
	callsFailedCounter metric.Int64Counter
	executionTimeHist  metric.Float64Histogram
}

func New(opts Options) (*Server, error) {
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if opts.Logger == nil {
		opts.Logger = mcpserver.NewNoOpInvocationLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer(mcpserver.TracerNameServer)
	}
	if opts.Meter == nil {
		opts.Meter = noop.NewMeterProvider().Meter(mcpserver.TracerNameServer)
	}

	s := &Server{
		mcp:        mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil),
		dispatcher: opts.Dispatcher,
		info:       opts.Info,
		logger:     opts.Logger,
		tracer:     opts.Tracer,
		debugDump:  opts.DebugDump,
	}

	var err error
	if s.callsCounter, err = opts.Meter.Int64Counter("tool_calls_total",
		metric.WithDescription("Total number of tool calls executed")); err != nil {
		return nil, err
	}
	if s.callsFailedCounter, err = opts.Meter.Int64Counter("tool_calls_failed_total",
		metric.WithDescription("Total number of tool calls that failed")); err != nil {
		return nil, err
	}
	if s.executionTimeHist, err = opts.Meter.Float64Histogram("tool_execution_time_seconds",
		metric.WithDescription("Time taken to execute individual tools in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	for _, t := range s.dispatcher.GetTools() {
		s.mcp.AddTool(newMCPTool(t), s.toolHandler(t.Name()))
		slog.Info("SERVER: Registered tool", "name", t.Name())
	}

	if s.info != nil {
		r := s.info.Resource()
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		}, s.readServerInfo)
		slog.Info("SERVER: Registered resource", "uri", r.URI)
	}

	return s, nil
}

// MCP exposes the underlying SDK server for transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves over the given transport until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcp.Run(ctx, t)
}

func newMCPTool(t tools.Tool) *mcp.Tool {
	mt := &mcp.Tool{
		Name:        t.Name(),
		Title:       t.Title(),
		Description: t.Description(),
		InputSchema: t.InputSchema(),
	}
	if out := t.OutputSchema(); out != nil {
		mt.OutputSchema = out
	}
	return mt
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			return toCallToolResult(tools.NewErrorResult(err)), nil
		}
		res, err := s.Call(ctx, name, args)
		if err != nil {
			return nil, err
		}
		return toCallToolResult(res), nil
	}
}

// Call dispatches one tool invocation with tracing, metrics and invocation
// logging. Only an unknown tool name produces an error.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*tools.Result, error) {
	ctx, span := s.tracer.Start(ctx, "Server.CallTool", trace.WithAttributes(
		attribute.String("tool.name", name),
	))
	defer span.End()

	if s.debugDump {
		slog.Info("SERVER: Tool arguments", "tool", name, "dump", mcpserver.Sdump(args))
	}

	attrs := metric.WithAttributes(attribute.String("tool.name", name))
	s.callsCounter.Add(ctx, 1, attrs)

	start := time.Now()
	res, err := s.dispatcher.Invoke(ctx, name, args)
	elapsed := time.Since(start)
	s.executionTimeHist.Record(ctx, elapsed.Seconds(), attrs)

	entry := mcpserver.InvocationLog{
		Tool:       name,
		Timestamp:  start,
		Input:      args,
		DurationMS: elapsed.Milliseconds(),
	}

	switch {
	case err != nil:
		s.callsFailedCounter.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, "tool invocation failed")
		span.RecordError(err)
		entry.Error = err.Error()
	case res.IsError:
		s.callsFailedCounter.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, "tool returned an error result")
		entry.IsError = true
		entry.Output = res.Text()
	default:
		span.SetStatus(codes.Ok, "")
		entry.Output = res.Text()
	}

	if lerr := s.logger.LogInvocation(entry); lerr != nil {
		slog.Warn("SERVER: Failed to log invocation", "tool", name, "error", lerr)
	}
	slog.Info("SERVER: Tool call finished", "tool", name, "duration_ms", entry.DurationMS, "is_error", entry.IsError || err != nil)

	return res, err
}

func (s *Server) readServerInfo(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	_, span := s.tracer.Start(ctx, "Server.ReadResource", trace.WithAttributes(
		attribute.String("resource.uri", tools.ServerInfoURI),
	))
	defer span.End()

	body, err := s.info.JSON()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to render server info: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      tools.ServerInfoURI,
			MIMEType: tools.ServerInfoMIMEType,
			Text:     string(body),
		}},
	}, nil
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON object: %v", tools.ErrValidation, err)
	}
	return args, nil
}

func toCallToolResult(res *tools.Result) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: res.IsError}
	for _, c := range res.Content {
		switch c.Type {
		case tools.ContentTypeImage:
			out.Content = append(out.Content, &mcp.ImageContent{Data: c.Data, MIMEType: c.MIMEType})
		default:
			out.Content = append(out.Content, &mcp.TextContent{Text: c.Text})
		}
	}
	if res.StructuredContent != nil && !res.IsError {
		out.StructuredContent = res.StructuredContent
	}
	return out
}
