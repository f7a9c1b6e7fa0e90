package mcpserver

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	ImageProviderHuggingFace = "huggingface"
	ImageProviderBedrock     = "bedrock"
	ImageProviderMock        = "mock"

	ImageStoreNone = "none"
	ImageStoreFile = "file"
	ImageStoreS3   = "s3"
)

type ServerConfig struct {
	Name              string `env:"MCP_SERVER_NAME,default=mcp-tool-server"`
	Version           string `env:"MCP_SERVER_VERSION,default=1.0.0"`
	Description       string `env:"MCP_SERVER_DESCRIPTION,default=Greeting, calculator, time, geocoding, weather and image generation tools"`
	Transport         string `env:"MCP_TRANSPORT,default=stdio"`
	HTTPAddr          string `env:"MCP_HTTP_ADDR,default=:8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
	InvocationLogPath string `env:"INVOCATION_LOG_PATH"` // a path, or "auto" for ./logs/<unix>.<server>.json
	DebugDump         bool   `env:"DEBUG_DUMP,default=false"`
	OtelEnabled       bool   `env:"OTEL_ENABLED,default=false"`
}

type UpstreamConfig struct {
	NominatimURL string        `env:"NOMINATIM_URL,default=https://nominatim.openstreetmap.org"`
	OpenMeteoURL string        `env:"OPEN_METEO_URL,default=https://api.open-meteo.com"`
	UserAgent    string        `env:"UPSTREAM_USER_AGENT,default=mcp-tool-server/1.0"`
	Timeout      time.Duration `env:"UPSTREAM_TIMEOUT,default=10s"`
}

type ImageConfig struct {
	Provider       string `env:"IMAGE_PROVIDER,default=huggingface"`
	HFToken        string `env:"HF_TOKEN"`
	HFEndpoint     string `env:"HF_ENDPOINT,default=https://router.huggingface.co/hf-inference/models"`
	HFModel        string `env:"HF_MODEL,default=black-forest-labs/FLUX.1-schnell"`
	InferenceSteps int    `env:"HF_INFERENCE_STEPS,default=4"`
	BedrockModelID string `env:"BEDROCK_IMAGE_MODEL_ID,default=amazon.titan-image-generator-v2:0"`
	Store          string `env:"IMAGE_STORE,default=none"`
	StoreDir       string `env:"IMAGE_STORE_DIR,default=artifacts/images"`
	StoreBucket    string `env:"IMAGE_STORE_BUCKET"`
	StorePrefix    string `env:"IMAGE_STORE_PREFIX,default=images"`
}

func (c ServerConfig) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q (want %s or %s)", c.Transport, TransportStdio, TransportHTTP)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c ImageConfig) Validate() error {
	switch c.Provider {
	case ImageProviderHuggingFace, ImageProviderBedrock, ImageProviderMock:
	default:
		return fmt.Errorf("unsupported image provider %q", c.Provider)
	}
	switch c.Store {
	case ImageStoreNone, ImageStoreFile:
	case ImageStoreS3:
		if c.StoreBucket == "" {
			return fmt.Errorf("IMAGE_STORE=s3 requires IMAGE_STORE_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported image store %q", c.Store)
	}
	return nil
}

// ResolveToken returns the explicit flag value when set, otherwise the
// environment credential.
func (c ImageConfig) ResolveToken(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return strings.TrimSpace(c.HFToken)
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
