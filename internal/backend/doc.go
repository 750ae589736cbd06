// Package backend defines the SearchBackend contract and its SQLite FTS5
// implementation.
//
// Two indexes back the two search calls:
//
//   - files_fts indexes file metadata (path, name, overview, language and
//     extracted symbol lists) and serves SearchFiles.
//   - content_fts indexes full file content and serves SearchFullContent,
//     which scores matches with bm25() and excerpts them with snippet().
//
// Both calls accept a timeout budget in milliseconds, enforced with
// context.WithTimeout; expiry surfaces as types.ErrBackendTimeout.
//
// The package builds against github.com/mattn/go-sqlite3 under the fts5 tag
// (CGO) or modernc.org/sqlite otherwise; see build_cgo.go and
// build_purego.go.
package backend
