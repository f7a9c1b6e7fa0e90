package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"mcpserver"
	"mcpserver/app"
	"mcpserver/tools"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, app.Options{
		Config:     cfg,
		Logger:     mcpserver.NewStdoutInvocationLogger(),
		TracerName: mcpserver.TracerNameLambda,
		Started:    time.Now(),
	})
	if err != nil {
		log.Fatalf("SETUP: Failed to initialize server: %s", err)
	}
	slog.Info("SETUP: Lambda tool server ready", "tools", len(a.Registry.GetTools()))

	fn := func(ctx context.Context, call tools.Call) (*tools.Result, error) {
		defer func() {
			// Export before the execution environment freezes.
			if err := a.Flush(ctx); err != nil {
				slog.Error("SETUP: Failed to flush OpenTelemetry", "error", err)
			}
		}()

		res, err := a.Server.Call(ctx, call.Name, call.Input)
		if err != nil {
			slog.Error("RESULT: Error handling call", "tool", call.Name, "error", err)
			return nil, err
		}
		return res, nil
	}

	lambda.Start(fn)
}
