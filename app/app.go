package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"mcpserver"
	"mcpserver/imagegen/bedrock"
	"mcpserver/imagegen/huggingface"
	"mcpserver/imagegen/mock"
	"mcpserver/server"
	"mcpserver/tools"
	"mcpserver/tools/storage"
)

type Config struct {
	Server   mcpserver.ServerConfig
	Upstream mcpserver.UpstreamConfig
	Image    mcpserver.ImageConfig
}

// LoadConfig decodes every config section from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg.Server); err != nil {
		return cfg, fmt.Errorf("decode server config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Upstream); err != nil {
		return cfg, fmt.Errorf("decode upstream config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Image); err != nil {
		return cfg, fmt.Errorf("decode image config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return errors.Join(c.Server.Validate(), c.Image.Validate())
}

type Options struct {
	Config Config
	// HFToken is the explicit credential from the command line. It wins over HF_TOKEN.
	HFToken    string
	Logger     mcpserver.InvocationLogger
	TracerName string
	// HTTPClient overrides the shared upstream client.
	HTTPClient mcpserver.HTTPClient
	Started    time.Time
}

// App is a fully wired tool server.
type App struct {
	Config   Config
	Registry *tools.Registry
	Server   *server.Server

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	otelShutdown   mcpserver.OtelShutdown
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.TracerName == "" {
		opts.TracerName = mcpserver.TracerNameServer
	}

	tracerProvider, meterProvider, otelShutdown, err := mcpserver.InitOtel(ctx, cfg.Server.OtelEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = mcpserver.NewUpstreamHTTPClient(cfg.Upstream.Timeout)
	}

	store, err := newImageStore(ctx, cfg.Image)
	if err != nil {
		return nil, errors.Join(err, otelShutdown(ctx))
	}

	registry, err := tools.NewRegistry(
		tools.NewGreet(),
		tools.NewCalculator(),
		tools.NewGetTime(nil),
		tools.NewGeocode(tools.GeocodeOpts{
			BaseURL:    cfg.Upstream.NominatimURL,
			UserAgent:  cfg.Upstream.UserAgent,
			HTTPClient: httpClient,
		}),
		tools.NewWeather(tools.WeatherOpts{
			BaseURL:    cfg.Upstream.OpenMeteoURL,
			UserAgent:  cfg.Upstream.UserAgent,
			HTTPClient: httpClient,
		}),
		tools.NewGenerateImage(tools.GenerateImageOpts{
			NewGenerator:   imageGeneratorFactory(cfg.Image, cfg.Image.ResolveToken(opts.HFToken), httpClient),
			Store:          store,
			CredentialHint: credentialHint(cfg.Image.Provider),
		}),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create tool registry: %w", err), otelShutdown(ctx))
	}
	slog.Info("SETUP: Tool registry initialized", "tools", len(registry.GetTools()), "image_provider", cfg.Image.Provider, "image_store", cfg.Image.Store)

	info := tools.NewServerInfo(registry, tools.ServerInfoOpts{
		Name:        cfg.Server.Name,
		Version:     cfg.Server.Version,
		Description: cfg.Server.Description,
		Started:     opts.Started,
	})

	srv, err := server.New(server.Options{
		Name:       cfg.Server.Name,
		Version:    cfg.Server.Version,
		Dispatcher: registry,
		Info:       info,
		Logger:     opts.Logger,
		Tracer:     tracerProvider.Tracer(opts.TracerName),
		Meter:      meterProvider.Meter(opts.TracerName),
		DebugDump:  cfg.Server.DebugDump,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create server: %w", err), otelShutdown(ctx))
	}

	return &App{
		Config:         cfg,
		Registry:       registry,
		Server:         srv,
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		otelShutdown:   otelShutdown,
	}, nil
}

// Flush exports pending telemetry without shutting the providers down.
func (a *App) Flush(ctx context.Context) error {
	return errors.Join(
		a.tracerProvider.ForceFlush(ctx),
		a.meterProvider.ForceFlush(ctx),
	)
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.otelShutdown(ctx)
}

// imageGeneratorFactory defers client construction to the first
// generate_image call so a missing credential only affects that tool.
func imageGeneratorFactory(cfg mcpserver.ImageConfig, token string, httpClient mcpserver.HTTPClient) func() (tools.ImageGenerator, error) {
	return func() (tools.ImageGenerator, error) {
		switch cfg.Provider {
		case mcpserver.ImageProviderBedrock:
			awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRetryMaxAttempts(3))
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			return bedrock.NewImageClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.ImageOptions{
				ModelID: cfg.BedrockModelID,
			}), nil
		case mcpserver.ImageProviderMock:
			return mock.NewImageClient(), nil
		default:
			client, err := huggingface.NewClient(huggingface.ClientOpts{
				BaseEndpoint:   cfg.HFEndpoint,
				ModelID:        cfg.HFModel,
				Token:          token,
				InferenceSteps: cfg.InferenceSteps,
				HTTPClient:     imageHTTPClient(httpClient),
			})
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
}

// imageHTTPClient lifts the upstream timeout for image generation, which
// routinely takes longer than a geocode or forecast lookup.
func imageHTTPClient(c mcpserver.HTTPClient) mcpserver.HTTPClient {
	hc, ok := c.(*http.Client)
	if !ok {
		return c
	}
	clone := *hc
	clone.Timeout = max(hc.Timeout, 60*time.Second)
	return &clone
}

func credentialHint(provider string) string {
	if provider == mcpserver.ImageProviderBedrock {
		return "check the AWS credentials and Bedrock model access for this account"
	}
	return "check that HF_TOKEN or --hf-token holds a valid Hugging Face access token"
}

func newImageStore(ctx context.Context, cfg mcpserver.ImageConfig) (storage.ImageStore, error) {
	switch cfg.Store {
	case mcpserver.ImageStoreFile:
		slog.Info("SETUP: Archiving generated images to directory", "dir", cfg.StoreDir)
		return storage.NewFileImageStore(cfg.StoreDir), nil
	case mcpserver.ImageStoreS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		slog.Info("SETUP: Archiving generated images to S3", "bucket", cfg.StoreBucket, "prefix", cfg.StorePrefix)
		return storage.NewS3ImageStore(s3.NewFromConfig(awsCfg), cfg.StoreBucket, cfg.StorePrefix), nil
	default:
		return nil, nil
	}
}
