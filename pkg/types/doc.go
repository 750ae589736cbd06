// Package types provides shared type definitions for the codesift MCP server.
//
// This package defines the DTOs exchanged at the boundary with the search
// backend, the unified result shape produced by the search service, and the
// error taxonomy for query validation and complexity rejection.
//
// # Core Types
//
// FileMetadata describes an indexed file as returned by metadata search:
//
//	meta := types.FileMetadata{
//	    FilePath:  "src/auth/login.ts",
//	    FileName:  "login.ts",
//	    Language:  "typescript",
//	    Functions: []string{"login", "logout"},
//	}
//
// SearchResult is a single full-content match with relevance scoring:
//
//	result := types.SearchResult{
//	    FilePath:       "src/auth/login.ts",
//	    MatchContent:   "func login(user string)",
//	    RelevanceScore: 0.92,
//	}
//
// UnifiedResult merges metadata and content matches for the same file, with
// content matches taking priority.
//
// # Error Taxonomy
//
// ValidationError is returned by the query sanitizer when a query exceeds a
// hard limit (wildcards, term count). ComplexityError marks queries the
// analyzer scored as too expensive to execute. ErrBackendTimeout is the
// sentinel wrapped by backends when a search misses its deadline.
//
// Relevance scores are normalized to [0, 1], higher is better.
package types
