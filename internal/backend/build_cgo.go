//go:build fts5
// +build fts5

package backend

// This file is compiled when building with CGO and the fts5 tag.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "fts5" ./...
//
// The C implementation provides:
//   - Fast FTS5 full-text search
//   - Recommended for production deployments
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
