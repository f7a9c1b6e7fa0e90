package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpserver"
	"mcpserver/imagegen/mock"
	"mcpserver/tools"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []mcpserver.InvocationLog
}

func (r *recordingLogger) LogInvocation(entry mcpserver.InvocationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingLogger) Entries() []mcpserver.InvocationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mcpserver.InvocationLog(nil), r.entries...)
}

func newTestServer(t *testing.T, nominatimURL string) (*Server, *recordingLogger) {
	t.Helper()

	registry, err := tools.NewRegistry(
		tools.NewGreet(),
		tools.NewCalculator(),
		tools.NewGetTime(nil),
		tools.NewGeocode(tools.GeocodeOpts{BaseURL: nominatimURL}),
		tools.NewWeather(tools.WeatherOpts{BaseURL: "http://127.0.0.1:0"}),
		tools.NewGenerateImage(tools.GenerateImageOpts{
			NewGenerator: func() (tools.ImageGenerator, error) { return mock.NewImageClient(), nil },
		}),
	)
	require.NoError(t, err)

	logger := &recordingLogger{}
	srv, err := New(Options{
		Name:       "test-server",
		Version:    "0.0.1",
		Dispatcher: registry,
		Info: tools.NewServerInfo(registry, tools.ServerInfoOpts{
			Name:    "test-server",
			Version: "0.0.1",
			Started: time.Now().Add(-90 * time.Second),
		}),
		Logger: logger,
	})
	require.NoError(t, err)
	return srv, logger
}

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	st, ct := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first content block is %T", res.Content[0])
	return tc.Text
}

func TestServer_ListTools(t *testing.T) {
	srv, _ := newTestServer(t, "")
	cs := connect(t, srv)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	assert.ElementsMatch(t, []string{"greet", "calculator", "get_time", "geocode", "get_weather", "generate_image"}, names)
}

func TestServer_CallTool(t *testing.T) {
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer nominatim.Close()

	srv, _ := newTestServer(t, nominatim.URL)
	cs := connect(t, srv)

	tests := []struct {
		name      string
		tool      string
		args      map[string]any
		wantError bool
		wantText  string
		exact     bool
	}{
		{
			name:     "greet in korean",
			tool:     "greet",
			args:     map[string]any{"name": "Tom", "language": "ko"},
			wantText: "안녕하세요, Tom님!",
			exact:    true,
		},
		{
			name:     "greet default language",
			tool:     "greet",
			args:     map[string]any{"name": "Tom"},
			wantText: "Hey there, Tom! 👋 Nice to meet you!",
			exact:    true,
		},
		{
			name:      "divide by zero",
			tool:      "calculator",
			args:      map[string]any{"num1": 10, "num2": 0, "operator": "/"},
			wantError: true,
			wantText:  "0으로 나눌 수 없습니다",
		},
		{
			name:      "overflowing product",
			tool:      "calculator",
			args:      map[string]any{"num1": 1e308, "num2": 10, "operator": "*"},
			wantError: true,
			wantText:  "result is out of range",
		},
		{
			name:      "overflowing quotient",
			tool:      "calculator",
			args:      map[string]any{"num1": 1e308, "num2": 1e-10, "operator": "/"},
			wantError: true,
			wantText:  "result is out of range",
		},
		{
			name:      "missing required argument",
			tool:      "greet",
			args:      map[string]any{},
			wantError: true,
			wantText:  "name",
		},
		{
			name:     "geocode with no match",
			tool:     "geocode",
			args:     map[string]any{"address": "no-such-place-xyz123"},
			wantText: "no-such-place-xyz123",
		},
		{
			name:      "invalid timezone",
			tool:      "get_time",
			args:      map[string]any{"timezone": "Mars/Olympus"},
			wantError: true,
			wantText:  "Mars/Olympus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: tt.tool, Arguments: tt.args})
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, res.IsError)
			if tt.wantError {
				assert.Nil(t, res.StructuredContent)
			}

			got := textOf(t, res)
			if tt.exact {
				assert.Equal(t, tt.wantText, got)
			} else {
				assert.Contains(t, got, tt.wantText)
			}
		})
	}
}

func TestServer_CallToolImage(t *testing.T) {
	srv, _ := newTestServer(t, "")
	cs := connect(t, srv)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "generate_image",
		Arguments: map[string]any{"prompt": "a small red square"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)

	img, ok := res.Content[0].(*mcp.ImageContent)
	require.True(t, ok, "first content block is %T", res.Content[0])
	assert.Equal(t, tools.ImageMIMEType, img.MIMEType)
	assert.NotEmpty(t, img.Data)
}

func TestServer_CallUnknownTool(t *testing.T) {
	srv, _ := newTestServer(t, "")
	cs := connect(t, srv)

	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "does_not_exist"})
	assert.Error(t, err)
}

func TestServer_ReadServerInfo(t *testing.T) {
	srv, _ := newTestServer(t, "")
	cs := connect(t, srv)

	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: tools.ServerInfoURI})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, tools.ServerInfoMIMEType, res.Contents[0].MIMEType)

	var doc tools.InfoDocument
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &doc))
	assert.Equal(t, "test-server", doc.Name)
	assert.Equal(t, "0.0.1", doc.Version)
	assert.GreaterOrEqual(t, doc.UptimeSeconds, 90.0)
	assert.Len(t, doc.Tools, 6)
	require.Len(t, doc.Resources, 1)
	assert.Equal(t, tools.ServerInfoURI, doc.Resources[0].URI)
}

func TestServer_CallLogsInvocations(t *testing.T) {
	srv, logger := newTestServer(t, "")

	res, err := srv.Call(context.Background(), "calculator", map[string]any{"num1": 2.0, "num2": 3.0, "operator": "*"})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = srv.Call(context.Background(), "calculator", map[string]any{"num1": 1.0, "num2": 0.0, "operator": "/"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	_, err = srv.Call(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, tools.ErrToolNotFound)

	entries := logger.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "calculator", entries[0].Tool)
	assert.False(t, entries[0].IsError)
	assert.NotEmpty(t, entries[0].Output)
	assert.True(t, entries[1].IsError)
	assert.Equal(t, "nope", entries[2].Tool)
	assert.NotEmpty(t, entries[2].Error)
}

func TestNew_RequiresDispatcher(t *testing.T) {
	_, err := New(Options{Name: "x"})
	assert.Error(t, err)
}

func TestDecodeArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", raw: "", want: map[string]any{}},
		{name: "null", raw: "null", want: map[string]any{}},
		{name: "object", raw: `{"name":"Tom"}`, want: map[string]any{"name": "Tom"}},
		{name: "array", raw: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeArguments(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, tools.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToCallToolResult(t *testing.T) {
	res := toCallToolResult(&tools.Result{
		Content: []tools.Content{
			{Type: tools.ContentTypeImage, Data: []byte{1, 2}, MIMEType: "image/png"},
			{Type: tools.ContentTypeText, Text: "saved"},
		},
		StructuredContent: map[string]any{"k": "v"},
	})
	require.Len(t, res.Content, 2)
	assert.IsType(t, &mcp.ImageContent{}, res.Content[0])
	assert.IsType(t, &mcp.TextContent{}, res.Content[1])
	assert.Equal(t, map[string]any{"k": "v"}, res.StructuredContent)

	errRes := toCallToolResult(&tools.Result{IsError: true, Content: []tools.Content{{Type: tools.ContentTypeText, Text: "Error: x"}}, StructuredContent: map[string]any{"k": "v"}})
	assert.True(t, errRes.IsError)
	assert.Nil(t, errRes.StructuredContent)
}
