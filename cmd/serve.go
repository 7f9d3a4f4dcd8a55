package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/draftdesk/draftdesk/internal/ai"
	"github.com/draftdesk/draftdesk/internal/config"
	"github.com/draftdesk/draftdesk/internal/drive"
	"github.com/draftdesk/draftdesk/internal/instrumentation"
	"github.com/draftdesk/draftdesk/internal/server"
	"github.com/draftdesk/draftdesk/internal/session"
	"github.com/draftdesk/draftdesk/internal/tools/drive_tools"
	"github.com/draftdesk/draftdesk/internal/tools/gmail_tools"
	"github.com/draftdesk/draftdesk/internal/tools/google_tools"
	"github.com/draftdesk/draftdesk/internal/tools/session_tools"
)

func newServeCmd() *cobra.Command {
	var (
		transport   string
		httpAddr    string
		metricsAddr string
		debugMode   bool
		account     string
		folderID    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the draftdesk MCP server",
		Long: `Starts the MCP server that manages per-message AI drafting sessions.

Transports:
  - stdio: communicates over stdin/stdout (default, for local MCP clients)
  - streamable-http: serves MCP over HTTP on /mcp with health endpoints

Provider credentials come from the DRAFTDESK_AI_* environment variables
and the shared attachment folder from DRAFTDESK_DRIVE_FOLDER_ID. Google
access tokens are cached by the auth command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, httpAddr, metricsAddr, account, folderID, debugMode)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport type (stdio or streamable-http)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Address for the streamable HTTP transport")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the Prometheus metrics endpoint")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&account, "account", "default", "Google account whose cached token serves Gmail and Drive reads")
	cmd.Flags().StringVar(&folderID, "drive-folder", "", "Drive folder ID for attachment candidates (overrides DRAFTDESK_DRIVE_FOLDER_ID)")

	return cmd
}

func runServe(transport, httpAddr, metricsAddr, account, folderID string, debugMode bool) error {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	// stdio needs stdout reserved for the MCP protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg := config.LoadOrDefault()
	if folderID != "" {
		cfg.Drive.FolderID = folderID
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil && transport != "stdio" {
			log.Printf("Error during instrumentation shutdown: %v", err)
		}
	}()

	// The metrics listener is separate from the MCP transport so scrapes
	// never interleave with protocol traffic. Skipped for stdio, where a
	// background listener would outlive the client connection.
	var metricsServer *server.MetricsServer
	if transport != "stdio" && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	sessions, err := buildSessionService(cfg, account, provider.Metrics(), logger)
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(shutdownCtx, sessions)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil && transport != "stdio" {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("draftdesk", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, serverContext, cfg.Drive.FolderID, provider.Metrics()); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// buildSessionService wires the provider client, session store, runner and
// attachment candidate source into the session facade.
func buildSessionService(cfg *config.Config, account string, metrics *instrumentation.Metrics, logger *slog.Logger) (*session.Service, error) {
	client := ai.NewHTTPClient(cfg.AI, logger)
	store := session.NewStore(logger)

	var candidates session.CandidateSource
	if cfg.Drive.FolderID != "" {
		driveClient, err := drive.NewClientForAccount(context.Background(), account)
		if err != nil {
			logger.Warn("Drive client unavailable, attachment recommendations disabled",
				slog.String("account", account),
				slog.Any("error", err))
		} else {
			candidates = drive.NewCandidateSource(driveClient, cfg.Drive.FolderID)
		}
	} else {
		logger.Info("no attachment folder configured, attachment recommendations disabled")
	}

	runner := session.NewRunner(store, client, candidates, metrics, logger)
	defaultSelection := session.ProviderSelection{
		Provider: cfg.AI.Provider,
		Model:    cfg.AI.Model,
	}

	return session.NewService(store, runner, defaultSelection, metrics, logger), nil
}

// registerAllTools registers every MCP tool surface the server exposes.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, folderID string, metrics *instrumentation.Metrics) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Session",
			register: func() error {
				return session_tools.RegisterSessionTools(mcpSrv, sc, metrics)
			},
		},
		{
			name: "Google OAuth",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, metrics)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, sc, metrics)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc, folderID, metrics)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}
	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string) error {
	httpSrv := server.NewHTTPServer(mcpSrv, sc)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpSrv.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	log.Printf("Streamable HTTP server starting on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during HTTP server shutdown: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
