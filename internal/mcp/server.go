package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/codesift/codesift-mcp/internal/analytics"
	"github.com/codesift/codesift-mcp/internal/backend"
	"github.com/codesift/codesift-mcp/internal/config"
	"github.com/codesift/codesift-mcp/internal/search"
)

const (
	// ServerName is the MCP server name
	ServerName = "codesift-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	backend  *backend.SQLiteBackend
	service  *search.Service
	recorder *analytics.Recorder
	logger   *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbPath, err := expandPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	be, err := backend.NewSQLiteBackend(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}

	svc := search.NewService(be, cfg.SearchConfig(), logger)

	recorder := analytics.NewRecorder(analytics.ZapSink{Logger: logger},
		analytics.DefaultQueueSize, analytics.DefaultBatchSize, analytics.DefaultFlushEvery, logger)
	svc.AttachRecorder(recorder)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		backend:  be,
		service:  svc,
		recorder: recorder,
		logger:   logger,
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.shutdown()
	return server.ServeStdio(s.mcp)
}

func (s *Server) shutdown() {
	s.recorder.Close()
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("failed to close backend", zap.Error(err))
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(searchMetadataTool(), s.handleSearchMetadata)
	s.mcp.AddTool(searchContentTool(), s.handleSearchContent)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// expandPath resolves a leading ~ to the user home directory
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
