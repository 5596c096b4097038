// Package server provides the MCP server exposing the accessgap tools.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/accessgap/pkg/osm/queries"
	"github.com/NERVsystems/accessgap/pkg/tools"
	"github.com/NERVsystems/accessgap/pkg/version"
)

// ServerName is the name of the MCP server
const ServerName = "accessgap"

// ErrServerStarted is returned when Serve is called more than once.
var ErrServerStarted = errors.New("server already started")

// Options configures NewServer.
type Options struct {
	// Sender carries the Overpass queries of the feature tools. Required.
	Sender queries.Sender

	Logger *slog.Logger
}

// Server encapsulates the MCP server with the accessgap tools.
type Server struct {
	srv    *mcpserver.MCPServer
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(opts Options) (*Server, error) {
	if opts.Sender == nil {
		return nil, errors.New("server: an Overpass sender is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initializing MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	srv := mcpserver.NewMCPServer(
		ServerName,
		version.BuildVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	tools.NewRegistry(logger, opts.Sender).RegisterTools(srv)

	return &Server{
		srv:    srv,
		logger: logger,
		doneCh: make(chan struct{}),
	}, nil
}

// Run serves MCP over stdin/stdout until stdin closes or Shutdown is called.
func (s *Server) Run() error {
	return s.RunWithContext(context.Background())
}

// RunWithContext serves MCP over stdin/stdout until stdin closes, ctx is
// canceled or Shutdown is called.
func (s *Server) RunWithContext(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC messages from in and writes the
// replies to out. It can be called once per Server.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrServerStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	defer close(s.doneCh)
	defer s.Shutdown()

	stdio := mcpserver.NewStdioServer(s.srv)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		s.logger.Info("MCP server stopped")
		return nil
	}
	s.logger.Error("server error", "error", err)
	return err
}

// Shutdown stops a running server. It does not block; use WaitForShutdown
// to wait for Serve to return.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}

// WaitForShutdown blocks until Serve has returned.
func (s *Server) WaitForShutdown() {
	<-s.doneCh
}

// GetMCPServer returns the underlying MCP server instance
func (s *Server) GetMCPServer() *mcpserver.MCPServer {
	return s.srv
}
