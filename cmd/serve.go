package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/pdfmcp/internal/adapters/mcp"
	"github.com/bnema/pdfmcp/internal/config"
	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", app.cfg.Addr())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", app.cfg.Addr(), err)
			}

			return serveHTTP(ctx, app, ln)
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default 3000, or PORT)")
	cmd.Flags().String("api-base-url", "", "PDF API base URL (or PDF_API_BASE_URL)")
	_ = c.viper.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	_ = c.viper.BindPFlag(config.KeyAPIBaseURL, cmd.Flags().Lookup("api-base-url"))

	return cmd
}

func newMCPServer(app *app) (*mcp.Server, *mcp.Registry, error) {
	tools, err := mcp.NewToolset(app.dispatcher)
	if err != nil {
		return nil, nil, fmt.Errorf("build toolset: %w", err)
	}

	registry := mcp.NewRegistry(mcp.RegistryOptions{
		PendingTTL: app.cfg.Session.PendingTTL,
		Logger:     app.logger,
	})
	server := mcp.NewServer(registry, tools, mcp.ServerOptions{
		AllowedOrigins: app.cfg.CORS.AllowedOrigins,
		Logger:         app.logger,
	})

	return server, registry, nil
}

// serveHTTP serves the MCP endpoint on ln until ctx is done, then closes every
// session and drains in-flight requests.
func serveHTTP(ctx context.Context, app *app, ln net.Listener) error {
	server, registry, err := newMCPServer(app)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go registry.Run(janitorCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	app.logger.Info("mcp server listening",
		"addr", ln.Addr().String(),
		"api_base_url", app.cfg.API.BaseURL,
		"config_file", app.cfg.File,
	)

	select {
	case err := <-errCh:
		registry.CloseAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutting down", "sessions", registry.Len())
	registry.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
