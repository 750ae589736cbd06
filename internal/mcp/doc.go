// Package mcp implements the Model Context Protocol (MCP) server for
// codesift.
//
// The server exposes four tools to AI coding assistants:
//   - search_code: unified search merging metadata and content matches
//   - search_metadata: search file paths, overviews and extracted symbols
//   - search_content: search full file content with scores and snippets
//   - get_status: index statistics for a dataset
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; all logging goes to stderr.
//
// # Tool: search_code
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "query": "session NEAR(token refresh)",
//	    "dataset_id": "2f1c...",
//	    "limit": 20,
//	    "search_mode": "unified"
//	  }
//	}
//
//	Response:
//	{
//	  "results": [
//	    {"file_path": "auth/session.go", "match_type": "content",
//	     "relevance": 0.83, "snippet": "... [session] token ..."}
//	  ],
//	  "count": 1,
//	  "outcome": "ok"
//	}
//
// A query the pipeline rejects (too complex, or refused by sanitization)
// returns an empty result list with the outcome field naming the reason
// kind; it is not a protocol error.
package mcp
