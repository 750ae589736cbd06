package backend

import (
	"context"

	"github.com/codesift/codesift-mcp/pkg/types"
)

// SearchBackend is the external search collaborator. Both calls take a
// timeout budget in milliseconds; an unmet budget fails with an error
// wrapping types.ErrBackendTimeout.
type SearchBackend interface {
	// SearchFiles queries the metadata index: paths, names, overviews and
	// extracted symbols.
	SearchFiles(ctx context.Context, query, datasetID string, limit, timeoutMS int) ([]types.FileMetadata, error)

	// SearchFullContent queries indexed file content, returning scored
	// matches with optional highlighted snippets.
	SearchFullContent(ctx context.Context, query, datasetID string, limit int, includeSnippets bool, timeoutMS int) ([]types.SearchResult, error)
}

// Stats summarizes one dataset's index.
type Stats struct {
	DatasetID  string
	Name       string
	FileCount  int64
	TotalBytes int64
}
