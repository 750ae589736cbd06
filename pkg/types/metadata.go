package types

import "time"

// FileMetadata describes an indexed file as stored in the metadata index.
// It is produced by SearchBackend.SearchFiles and consumed by the search
// service when merging unified results.
type FileMetadata struct {
	// Identification
	FileID    int64
	FilePath  string
	FileName  string
	DatasetID string

	// File attributes
	FileExtension string
	FileSize      int64
	LastModified  time.Time
	ContentHash   string

	// Optional enrichment from documentation generation
	Overview string
	Language string

	// Extracted symbols
	Functions []string
	Exports   []string
	Imports   []string
}

// Validate checks required identification fields.
func (m *FileMetadata) Validate() error {
	if m.FilePath == "" {
		return ErrMissingFilePath
	}
	if m.DatasetID == "" {
		return ErrMissingDatasetID
	}
	return nil
}
