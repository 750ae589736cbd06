package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codesift/codesift-mcp/pkg/types"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// SQLiteBackend implements SearchBackend over two FTS5 indexes: one across
// file metadata and one across full file content.
type SQLiteBackend struct {
	db     *sql.DB
	logger *zap.Logger
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteBackend opens (creating if needed) the index database at dbPath.
func NewSQLiteBackend(dbPath string, logger *zap.Logger) (*SQLiteBackend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteBackend{db: db, logger: logger}, nil
}

// Close closes the database connection
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// RegisterDataset creates a dataset by name, returning its ID. Registering
// an existing name returns the existing ID.
func (b *SQLiteBackend) RegisterDataset(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	_, err := b.db.ExecContext(ctx,
		"INSERT INTO datasets (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING", id, name)
	if err != nil {
		return "", fmt.Errorf("failed to register dataset: %w", err)
	}

	var existing string
	err = b.db.QueryRowContext(ctx, "SELECT id FROM datasets WHERE name = ?", name).Scan(&existing)
	if err != nil {
		return "", fmt.Errorf("failed to look up dataset: %w", err)
	}
	return existing, nil
}

// UpsertFile inserts or updates one file's metadata row and its indexed
// content. The FTS tables follow via triggers.
func (b *SQLiteBackend) UpsertFile(ctx context.Context, meta *types.FileMetadata, content string) error {
	if err := meta.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO files (dataset_id, file_path, file_name, file_extension, file_size,
		                   last_modified, content_hash, overview, language,
		                   functions, exports, imports, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id, file_path) DO UPDATE SET
			file_name = excluded.file_name,
			file_extension = excluded.file_extension,
			file_size = excluded.file_size,
			last_modified = excluded.last_modified,
			content_hash = excluded.content_hash,
			overview = excluded.overview,
			language = excluded.language,
			functions = excluded.functions,
			exports = excluded.exports,
			imports = excluded.imports,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := b.db.QueryRowContext(ctx, query,
		meta.DatasetID, meta.FilePath, meta.FileName, meta.FileExtension, meta.FileSize,
		meta.LastModified, meta.ContentHash, meta.Overview, meta.Language,
		joinList(meta.Functions), joinList(meta.Exports), joinList(meta.Imports),
		now, now).Scan(&meta.FileID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO file_content (file_id, content) VALUES (?, ?)
		ON CONFLICT(file_id) DO UPDATE SET content = excluded.content
	`, meta.FileID, content)
	if err != nil {
		return fmt.Errorf("failed to upsert file content: %w", err)
	}
	return nil
}

// SearchFiles queries the metadata FTS index, best matches first.
func (b *SQLiteBackend) SearchFiles(ctx context.Context, query, datasetID string, limit, timeoutMS int) ([]types.FileMetadata, error) {
	ctx, cancel := withTimeout(ctx, timeoutMS)
	defer cancel()

	sqlQuery := `
		SELECT f.id, f.dataset_id, f.file_path, f.file_name, f.file_extension,
		       f.file_size, f.last_modified, f.content_hash, f.overview, f.language,
		       f.functions, f.exports, f.imports
		FROM files_fts
		INNER JOIN files f ON files_fts.rowid = f.id
		WHERE files_fts MATCH ? AND f.dataset_id = ?
		ORDER BY bm25(files_fts)
		LIMIT ?
	`
	rows, err := b.db.QueryContext(ctx, sqlQuery, query, datasetID, limit)
	if err != nil {
		return nil, wrapTimeout(ctx, fmt.Errorf("metadata search failed: %w", err))
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.FileMetadata, 0)
	for rows.Next() {
		var m types.FileMetadata
		var lastModified sql.NullTime
		var contentHash, overview, language sql.NullString
		var functions, exports, imports sql.NullString

		err := rows.Scan(
			&m.FileID, &m.DatasetID, &m.FilePath, &m.FileName, &m.FileExtension,
			&m.FileSize, &lastModified, &contentHash, &overview, &language,
			&functions, &exports, &imports,
		)
		if err != nil {
			return nil, err
		}

		if lastModified.Valid {
			m.LastModified = lastModified.Time
		}
		m.ContentHash = contentHash.String
		m.Overview = overview.String
		m.Language = language.String
		m.Functions = splitList(functions.String)
		m.Exports = splitList(exports.String)
		m.Imports = splitList(imports.String)

		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTimeout(ctx, err)
	}
	return results, nil
}

// SearchFullContent queries the content FTS index, returning scored matches
// with excerpts around the matched span.
func (b *SQLiteBackend) SearchFullContent(ctx context.Context, query, datasetID string, limit int, includeSnippets bool, timeoutMS int) ([]types.SearchResult, error) {
	ctx, cancel := withTimeout(ctx, timeoutMS)
	defer cancel()

	sqlQuery := `
		SELECT f.file_path, f.dataset_id,
		       bm25(content_fts) AS score,
		       snippet(content_fts, 0, '[', ']', '...', 16) AS excerpt
		FROM content_fts
		INNER JOIN file_content fc ON content_fts.rowid = fc.file_id
		INNER JOIN files f ON fc.file_id = f.id
		WHERE content_fts MATCH ? AND f.dataset_id = ?
		ORDER BY score
		LIMIT ?
	`
	rows, err := b.db.QueryContext(ctx, sqlQuery, query, datasetID, limit)
	if err != nil {
		return nil, wrapTimeout(ctx, fmt.Errorf("content search failed: %w", err))
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.SearchResult, 0)
	for rows.Next() {
		var r types.SearchResult
		var score float64
		var excerpt string

		if err := rows.Scan(&r.FilePath, &r.DatasetID, &score, &excerpt); err != nil {
			return nil, err
		}

		r.MatchType = types.MatchContent
		r.MatchContent = excerpt
		r.RelevanceScore = relevanceFromBM25(score)
		if includeSnippets {
			r.Snippet = excerpt
		}

		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTimeout(ctx, err)
	}
	return results, nil
}

// DatasetStats reports index size for one dataset.
func (b *SQLiteBackend) DatasetStats(ctx context.Context, datasetID string) (*Stats, error) {
	stats := &Stats{DatasetID: datasetID}

	err := b.db.QueryRowContext(ctx, "SELECT name FROM datasets WHERE id = ?", datasetID).Scan(&stats.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	err = b.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM files WHERE dataset_id = ?",
		datasetID).Scan(&stats.FileCount, &stats.TotalBytes)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// withTimeout derives a deadline context from a millisecond budget. A budget
// of zero or less means no deadline.
func withTimeout(ctx context.Context, timeoutMS int) (context.Context, context.CancelFunc) {
	if timeoutMS <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(timeoutMS)*time.Millisecond)
}

// wrapTimeout maps deadline expiry onto the shared timeout sentinel so
// callers can detect it with errors.Is.
func wrapTimeout(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", types.ErrBackendTimeout, err)
	}
	return err
}

// relevanceFromBM25 normalizes an FTS5 bm25() score (lower is better,
// typically negative) into [0, 1], higher is better.
func relevanceFromBM25(score float64) float64 {
	raw := -score
	if raw < 0 {
		raw = 0
	}
	return raw / (raw + 1.0)
}

func joinList(items []string) string {
	return strings.Join(items, "\n")
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, "\n")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
