package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codesift/codesift-mcp/internal/config"
	"github.com/codesift/codesift-mcp/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		DBPath:   filepath.Join(t.TempDir(), "index.db"),
		LogLevel: "error",
	}
	s, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.shutdown)
	return s
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &parsed))
	return parsed
}

func TestServerInitialization(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.backend)
	assert.NotNil(t, s.service)
	assert.NotNil(t, s.recorder)
}

func TestSearchCodeRequiresQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(), toolRequest(map[string]interface{}{
		"dataset_id": "ds",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestSearchCodeRequiresDataset(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(), toolRequest(map[string]interface{}{
		"query": "session",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestSearchCodeRejectsBadLimit(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchCode(context.Background(), toolRequest(map[string]interface{}{
		"query":      "session",
		"dataset_id": "ds",
		"limit":      float64(500),
	}))
	require.Error(t, err)
}

func TestSearchCodeEndToEnd(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	ds, err := s.backend.RegisterDataset(ctx, "proj")
	require.NoError(t, err)

	meta := &types.FileMetadata{
		FilePath:  "auth/session.go",
		FileName:  "session.go",
		DatasetID: ds,
		Language:  "go",
	}
	require.NoError(t, s.backend.UpsertFile(ctx, meta, "validates the session token before refresh"))

	result, err := s.handleSearchCode(ctx, toolRequest(map[string]interface{}{
		"query":      "session",
		"dataset_id": ds,
	}))
	require.NoError(t, err)

	parsed := resultText(t, result)
	assert.Equal(t, "ok", parsed["outcome"])
	assert.Equal(t, float64(1), parsed["count"])

	entries := parsed["results"].([]interface{})
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "auth/session.go", entry["file_path"])
	assert.Equal(t, "content", entry["match_type"])
}

func TestSearchCodeRejectedQueryReturnsEmpty(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleSearchCode(context.Background(), toolRequest(map[string]interface{}{
		"query":      "aa* bb* cc* dd* ee* ff*",
		"dataset_id": "ds",
	}))
	require.NoError(t, err)

	parsed := resultText(t, result)
	assert.Equal(t, "rejected_validation", parsed["outcome"])
	assert.Equal(t, float64(0), parsed["count"])
}

func TestGetStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	ds, err := s.backend.RegisterDataset(ctx, "proj")
	require.NoError(t, err)

	meta := &types.FileMetadata{FilePath: "a.go", FileName: "a.go", DatasetID: ds}
	require.NoError(t, s.backend.UpsertFile(ctx, meta, "hello"))

	result, err := s.handleGetStatus(ctx, toolRequest(map[string]interface{}{
		"dataset_id": ds,
	}))
	require.NoError(t, err)

	parsed := resultText(t, result)
	dataset := parsed["dataset"].(map[string]interface{})
	assert.Equal(t, "proj", dataset["name"])
	assert.Equal(t, float64(1), dataset["file_count"])
}

func TestGetStatusUnknownDataset(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleGetStatus(context.Background(), toolRequest(map[string]interface{}{
		"dataset_id": "missing",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeDatasetNotFound, mcpErr.Code)
}

func TestExpandPath(t *testing.T) {
	expanded, err := expandPath("~/data/index.db")
	require.NoError(t, err)
	assert.NotContains(t, expanded, "~")

	plain, err := expandPath("/var/lib/index.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/index.db", plain)
}
