package server

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultHTTPReadHeaderTimeout bounds header reads on the MCP endpoint.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout is generous because streamable HTTP sessions
	// hold connections open between notifications.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServer serves the MCP streamable HTTP transport on /mcp alongside
// health endpoints for orchestration probes.
type HTTPServer struct {
	httpServer *http.Server
	health     *HealthChecker
}

// NewHTTPServer creates an HTTP server exposing the given MCP server on /mcp
// and the server context's health endpoints.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext) *HTTPServer {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)
	mux.Handle("/mcp", streamable)

	health := NewHealthChecker(sc)
	health.RegisterHealthEndpoints(mux)

	return &HTTPServer{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
			IdleTimeout:       DefaultHTTPIdleTimeout,
		},
		health: health,
	}
}

// Start listens on addr and serves until Shutdown is called. It blocks.
func (s *HTTPServer) Start(addr string) error {
	s.httpServer.Addr = addr
	s.health.SetReady(true)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests. Readiness flips to not-ready
// first so load balancers stop routing new sessions.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}
