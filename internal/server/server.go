// Package server exposes a session of window adapters as MCP tools, so a
// remote agent can play the windowing toolkit and the assistive technology.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/accessbridge/internal/session"
	"github.com/xaionaro-go/xsync"
)

// Config holds MCP server configuration.
type Config struct {
	// Transport is "stdio" or "http".
	Transport string
	// Addr is the listen address of the http transport.
	Addr string
}

// Server wraps the MCP server with the session it drives.
type Server struct {
	sess *session.Session
	// opLocker serializes tool calls so each result carries only the
	// notifications its own call raised.
	opLocker xsync.Mutex
	log      logger.Logger
	mcp      *mcpserver.MCPServer
}

// New creates an MCP server with every accessbridge tool registered.
func New(sess *session.Session, version string) *Server {
	s := &Server{sess: sess}
	s.mcp = mcpserver.NewMCPServer(
		"accessbridge",
		version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// SetLogger replaces the logger tool calls run with, e.g. after the log
// level was reloaded. A nil logger restores the one carried by each call's
// context.
func (s *Server) SetLogger(ctx context.Context, l logger.Logger) {
	s.opLocker.Do(ctx, func() {
		s.log = l
	})
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve runs the configured transport until ctx is done.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		logger.Debugf(ctx, "serving MCP over stdio")
		err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case "http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errCh := make(chan error, 1)
		go func() {
			logger.Debugf(ctx, "serving MCP over streamable HTTP on %s", cfg.Addr)
			errCh <- httpServer.Start(cfg.Addr)
		}()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return httpServer.Shutdown(context.WithoutCancel(ctx))
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or http)", cfg.Transport)
	}
}
