package mcpserver

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultUpstreamTimeout = 10 * time.Second

// NewUpstreamHTTPClient returns the client shared by every outbound tool
// call. Requests are traced and bounded by timeout.
func NewUpstreamHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
