package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Datasets table
CREATE TABLE IF NOT EXISTS datasets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Files table (metadata index)
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dataset_id TEXT NOT NULL,
    file_path TEXT NOT NULL,
    file_name TEXT NOT NULL,
    file_extension TEXT,
    file_size INTEGER DEFAULT 0,
    last_modified TIMESTAMP,
    content_hash TEXT,
    overview TEXT,
    language TEXT,
    functions TEXT,
    exports TEXT,
    imports TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (dataset_id) REFERENCES datasets(id) ON DELETE CASCADE,
    UNIQUE(dataset_id, file_path)
);

CREATE INDEX IF NOT EXISTS idx_files_dataset ON files(dataset_id);
CREATE INDEX IF NOT EXISTS idx_files_path ON files(file_path);
CREATE INDEX IF NOT EXISTS idx_files_language ON files(language);

-- Full-text search over file metadata
CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
    file_path, file_name, overview, language, functions, exports, imports,
    content='files',
    content_rowid='id'
);

-- Triggers to keep metadata FTS in sync. files_fts is an external-content
-- table, so old index entries must be removed with the FTS5 'delete' command
-- carrying the old column values; a plain UPDATE/DELETE would leave stale
-- terms behind.
CREATE TRIGGER IF NOT EXISTS files_ai AFTER INSERT ON files BEGIN
    INSERT INTO files_fts(rowid, file_path, file_name, overview, language, functions, exports, imports)
    VALUES (new.id, new.file_path, new.file_name, new.overview, new.language, new.functions, new.exports, new.imports);
END;

CREATE TRIGGER IF NOT EXISTS files_ad AFTER DELETE ON files BEGIN
    INSERT INTO files_fts(files_fts, rowid, file_path, file_name, overview, language, functions, exports, imports)
    VALUES ('delete', old.id, old.file_path, old.file_name, old.overview, old.language, old.functions, old.exports, old.imports);
END;

CREATE TRIGGER IF NOT EXISTS files_au AFTER UPDATE ON files BEGIN
    INSERT INTO files_fts(files_fts, rowid, file_path, file_name, overview, language, functions, exports, imports)
    VALUES ('delete', old.id, old.file_path, old.file_name, old.overview, old.language, old.functions, old.exports, old.imports);
    INSERT INTO files_fts(rowid, file_path, file_name, overview, language, functions, exports, imports)
    VALUES (new.id, new.file_path, new.file_name, new.overview, new.language, new.functions, new.exports, new.imports);
END;

-- File content table (content index)
CREATE TABLE IF NOT EXISTS file_content (
    file_id INTEGER PRIMARY KEY,
    content TEXT NOT NULL,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

-- Full-text search over file content
CREATE VIRTUAL TABLE IF NOT EXISTS content_fts USING fts5(
    content,
    content='file_content',
    content_rowid='file_id'
);

-- Triggers to keep content FTS in sync, same external-content 'delete' form
CREATE TRIGGER IF NOT EXISTS content_ai AFTER INSERT ON file_content BEGIN
    INSERT INTO content_fts(rowid, content) VALUES (new.file_id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS content_ad AFTER DELETE ON file_content BEGIN
    INSERT INTO content_fts(content_fts, rowid, content) VALUES ('delete', old.file_id, old.content);
END;

CREATE TRIGGER IF NOT EXISTS content_au AFTER UPDATE ON file_content BEGIN
    INSERT INTO content_fts(content_fts, rowid, content) VALUES ('delete', old.file_id, old.content);
    INSERT INTO content_fts(rowid, content) VALUES (new.file_id, new.content);
END;
`

const migrationV1Down = `
DROP TRIGGER IF EXISTS content_au;
DROP TRIGGER IF EXISTS content_ad;
DROP TRIGGER IF EXISTS content_ai;
DROP TABLE IF EXISTS content_fts;
DROP TABLE IF EXISTS file_content;
DROP TRIGGER IF EXISTS files_au;
DROP TRIGGER IF EXISTS files_ad;
DROP TRIGGER IF EXISTS files_ai;
DROP TABLE IF EXISTS files_fts;
DROP TABLE IF EXISTS files;
DROP TABLE IF EXISTS datasets;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Check if schema_version table exists
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}
