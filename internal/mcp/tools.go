package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codesift/codesift-mcp/internal/backend"
	"github.com/codesift/codesift-mcp/internal/search"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeDatasetNotFound = -32001 // Specified dataset does not exist
	ErrorCodeEmptyQuery      = -32004 // Query parameter is empty
)

// handleSearchCode handles the search_code tool invocation: a unified
// search across the metadata and content indexes.
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, datasetID, cfg, err := s.searchParams(request)
	if err != nil {
		return nil, err
	}

	results, outcome, err := s.service.SearchWithOutcome(ctx, query, datasetID, cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"file_path":  r.FilePath,
			"dataset_id": r.DatasetID,
			"match_type": string(r.MatchType),
			"relevance":  r.RelevanceScore,
		}
		if r.Snippet != "" {
			entry["snippet"] = r.Snippet
		}
		if r.Metadata != nil {
			entry["language"] = r.Metadata.Language
			entry["overview"] = r.Metadata.Overview
		}
		entries = append(entries, entry)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results": entries,
		"count":   len(entries),
		"outcome": string(outcome.Kind),
	})), nil
}

// handleSearchMetadata handles the search_metadata tool invocation.
func (s *Server) handleSearchMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, datasetID, cfg, err := s.searchParams(request)
	if err != nil {
		return nil, err
	}

	results, outcome, err := s.service.SearchMetadataWithOutcome(ctx, query, datasetID, cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "metadata search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, 0, len(results))
	for _, m := range results {
		entries = append(entries, map[string]interface{}{
			"file_path":      m.FilePath,
			"file_name":      m.FileName,
			"file_extension": m.FileExtension,
			"file_size":      m.FileSize,
			"language":       m.Language,
			"overview":       m.Overview,
			"functions":      m.Functions,
			"exports":        m.Exports,
			"imports":        m.Imports,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results": entries,
		"count":   len(entries),
		"outcome": string(outcome.Kind),
	})), nil
}

// handleSearchContent handles the search_content tool invocation.
func (s *Server) handleSearchContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, datasetID, cfg, err := s.searchParams(request)
	if err != nil {
		return nil, err
	}

	results, outcome, err := s.service.SearchContentWithOutcome(ctx, query, datasetID, cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "content search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"file_path":  r.FilePath,
			"dataset_id": r.DatasetID,
			"relevance":  r.RelevanceScore,
			"match":      r.MatchContent,
		}
		if r.Snippet != "" {
			entry["snippet"] = r.Snippet
		}
		entries = append(entries, entry)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results": entries,
		"count":   len(entries),
		"outcome": string(outcome.Kind),
	})), nil
}

// handleGetStatus handles the get_status tool invocation.
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	datasetID, ok := args["dataset_id"].(string)
	if !ok || datasetID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "dataset_id parameter is required", map[string]interface{}{
			"param":  "dataset_id",
			"reason": "missing or empty",
		})
	}

	stats, err := s.backend.DatasetStats(ctx, datasetID)
	if err == backend.ErrNotFound {
		return nil, newMCPError(ErrorCodeDatasetNotFound, "dataset not found", map[string]interface{}{
			"dataset_id": datasetID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"dataset": map[string]interface{}{
			"id":          stats.DatasetID,
			"name":        stats.Name,
			"file_count":  stats.FileCount,
			"total_bytes": stats.TotalBytes,
		},
		"server": map[string]interface{}{
			"version":    ServerVersion,
			"build_mode": backend.BuildMode,
			"driver":     backend.DriverName,
		},
		"analytics": map[string]interface{}{
			"dropped_events": s.recorder.Dropped(),
		},
	})), nil
}

// searchParams extracts the shared search tool parameters and builds the
// per-call config override, when any override parameter is present.
func (s *Server) searchParams(request mcp.CallToolRequest) (query, datasetID string, cfg *search.Config, err error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", "", nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok = args["query"].(string)
	if !ok || query == "" {
		return "", "", nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	datasetID, ok = args["dataset_id"].(string)
	if !ok || datasetID == "" {
		return "", "", nil, newMCPError(ErrorCodeInvalidParams, "dataset_id parameter is required", map[string]interface{}{
			"param":  "dataset_id",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > 100 {
		return "", "", nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	mode := getStringDefault(args, "search_mode", "")
	switch mode {
	case "", string(search.ModeUnified), string(search.ModeMetadataOnly), string(search.ModeContentOnly):
	default:
		return "", "", nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   mode,
			"allowed": []string{string(search.ModeUnified), string(search.ModeMetadataOnly), string(search.ModeContentOnly)},
		})
	}

	minRelevance := getFloatDefault(args, "min_relevance", 0)

	if limit == 0 && mode == "" && minRelevance == 0 {
		return query, datasetID, nil, nil
	}

	override := s.service.Defaults()
	if limit > 0 {
		override.MaxResults = limit
	}
	if mode != "" {
		override.Mode = search.Mode(mode)
	}
	if minRelevance > 0 {
		override.MinRelevanceScore = minRelevance
	}
	return query, datasetID, &override, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
