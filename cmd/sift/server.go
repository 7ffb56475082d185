package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/keremar/sift/internal/api"
	"github.com/keremar/sift/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and MCP server (foreground)",
	Long: `Run the assistant as a local server. The HTTP API listens on
127.0.0.1 and requires a bearer token (SIFT_SERVER_API_TOKEN or
server.api_token); the MCP server speaks stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "sift version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	token := cfg.Server.APIToken
	if token == "" {
		token = uuid.New().String()
		printWarning("no API token configured; using ephemeral token %s", token)
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	appHandler := api.NewAppHandler(api.AppDeps{
		Agent:    a.agent,
		Profiles: a.profiles,
		History:  a.history,
		Token:    token,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: appHandler,
	}

	// MCP server on stdio, alongside the HTTP API.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Agent:    a.agent,
		Searcher: a.searcher,
		Profiles: a.profiles,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "sift listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
