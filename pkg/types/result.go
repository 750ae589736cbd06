package types

// MatchType distinguishes how a result was matched.
type MatchType string

const (
	MatchContent  MatchType = "content"
	MatchMetadata MatchType = "metadata"
)

// SearchResult represents a single full-content match with relevance
// information, as returned by SearchBackend.SearchFullContent.
type SearchResult struct {
	FilePath  string
	DatasetID string

	MatchContent string
	MatchType    MatchType

	// RelevanceScore is normalized to [0, 1], higher is better.
	RelevanceScore float64

	// Snippet is an optional highlighted excerpt around the match.
	Snippet string

	// Metadata is optional file metadata attached by the backend.
	Metadata *FileMetadata
}

// Validate checks if the search result is valid.
func (sr *SearchResult) Validate() error {
	if sr.FilePath == "" {
		return ErrMissingFilePath
	}
	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}
	return nil
}

// UnifiedResult merges metadata and content matches for one file. A file
// with a content match carries its content score and snippet; a file seen
// only in the metadata index carries a neutral score and no snippet.
type UnifiedResult struct {
	FilePath  string
	DatasetID string

	MatchType      MatchType
	RelevanceScore float64
	MatchContent   string
	Snippet        string

	Metadata *FileMetadata
}

// FromMetadata converts a metadata-only hit into a unified result with the
// neutral relevance score used when no content match exists for the file.
func FromMetadata(m FileMetadata) UnifiedResult {
	meta := m
	return UnifiedResult{
		FilePath:       m.FilePath,
		DatasetID:      m.DatasetID,
		MatchType:      MatchMetadata,
		RelevanceScore: NeutralRelevance,
		Metadata:       &meta,
	}
}

// FromContent converts a content match into a unified result.
func FromContent(r SearchResult) UnifiedResult {
	return UnifiedResult{
		FilePath:       r.FilePath,
		DatasetID:      r.DatasetID,
		MatchType:      MatchContent,
		RelevanceScore: r.RelevanceScore,
		MatchContent:   r.MatchContent,
		Snippet:        r.Snippet,
		Metadata:       r.Metadata,
	}
}

// NeutralRelevance is assigned to metadata-only hits in unified mode.
const NeutralRelevance = 0.5
