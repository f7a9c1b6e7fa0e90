package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"mcpserver/app"
)

var flagHTTPAddr string

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP over stdin/stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return serveStdio(cmd.Context(), a)
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve MCP over streamable HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		addr := a.Config.Server.HTTPAddr
		if flagHTTPAddr != "" {
			addr = flagHTTPAddr
		}
		return serveHTTP(cmd.Context(), a, addr)
	},
}

func init() {
	httpCmd.Flags().StringVar(&flagHTTPAddr, "addr", "", "listen address (overrides MCP_HTTP_ADDR)")
	rootCmd.AddCommand(stdioCmd, httpCmd)
}

func serveStdio(ctx context.Context, a *app.App) error {
	slog.Info("SERVER: Serving over stdio", "tools", len(a.Registry.GetTools()))
	if err := a.Server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, a *app.App, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return a.Server.MCP()
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(mux, "mcp-http"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("SERVER: Serving streamable HTTP", "addr", addr, "path", "/mcp")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("SERVER: Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
