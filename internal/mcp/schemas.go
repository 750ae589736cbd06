package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchArgProperties are the parameters shared by the three search tools.
func searchArgProperties() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Search query (plain terms, quoted phrases, AND/OR/NOT, NEAR(...), trailing wildcards)",
		},
		"dataset_id": map[string]interface{}{
			"type":        "string",
			"description": "Identifier of the indexed dataset to search",
		},
		"limit": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of results to return (1-100)",
			"minimum":     1,
			"maximum":     100,
		},
		"min_relevance": map[string]interface{}{
			"type":        "number",
			"description": "Minimum relevance score threshold (0.0-1.0)",
			"minimum":     0.0,
			"maximum":     1.0,
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	props := searchArgProperties()
	props["search_mode"] = map[string]interface{}{
		"type":        "string",
		"description": "Which indexes to consult: unified (metadata + content), metadata_only, or content_only",
		"enum":        []string{"unified", "metadata_only", "content_only"},
		"default":     "unified",
	}
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search an indexed codebase, merging metadata and content matches per file",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"query", "dataset_id"},
		},
	}
}

// searchMetadataTool returns the tool definition for search_metadata
func searchMetadataTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_metadata",
		Description: "Search file metadata: paths, names, overviews and extracted symbols",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: searchArgProperties(),
			Required:   []string{"query", "dataset_id"},
		},
	}
}

// searchContentTool returns the tool definition for search_content
func searchContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_content",
		Description: "Search full file content with relevance scores and highlighted snippets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: searchArgProperties(),
			Required:   []string{"query", "dataset_id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query index statistics for a dataset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dataset_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the dataset",
				},
			},
			Required: []string{"dataset_id"},
		},
	}
}
