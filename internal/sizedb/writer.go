package sizedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

const schema = `
CREATE TABLE IF NOT EXISTS sizes (
	path TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	dir_mtime INTEGER NOT NULL DEFAULT 0
);
`

// Writer builds the scratch snapshot during one daemon scan. The protocol
// is NewWriter → Store* → (Prune) → Save → Close; a Close without Save
// discards the scratch, leaving the live snapshot untouched.
//
// Writer is not safe for concurrent use. The walker already serializes its
// store callback, which is the only path that reaches Store during a scan.
type Writer struct {
	conn    *sql.DB
	live    string
	scratch string
	saved   bool
}

// NewWriter creates a fresh scratch database next to the live snapshot,
// removing any leftover from a crashed scan.
func NewWriter(livePath string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(livePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	scratch := livePath + ".tmp"
	for _, p := range []string{scratch, scratch + "-wal", scratch + "-shm"} {
		_ = os.Remove(p)
	}

	conn, err := sql.Open("sqlite3", "file:"+scratch)
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch snapshot: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open scratch snapshot: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	return &Writer{conn: conn, live: livePath, scratch: scratch}, nil
}

// Store upserts one row. Rows with a negative size or count are rejected:
// the sentinel values never reach the snapshot.
func (w *Writer) Store(path string, size, files, dirMtime int64) error {
	if size < 0 || files < 0 {
		return fmt.Errorf("refusing row for %s: size=%d file_count=%d", path, size, files)
	}

	query := `
	INSERT INTO sizes (path, size, file_count, dir_mtime)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		size = excluded.size,
		file_count = excluded.file_count,
		dir_mtime = excluded.dir_mtime
	`
	if _, err := w.conn.Exec(query, path, size, files, dirMtime); err != nil {
		return fmt.Errorf("failed to store %s: %w", path, err)
	}
	return nil
}

// Count returns the scratch row count, for status display.
func (w *Writer) Count() (int64, error) {
	var n int64
	if err := w.conn.QueryRow("SELECT COUNT(*) FROM sizes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshot rows: %w", err)
	}
	return n, nil
}

// Prune deletes rows whose path no longer satisfies exists. It bounds the
// snapshot's growth across months of renames and deletions.
func (w *Writer) Prune(exists func(path string) bool) (int64, error) {
	rows, err := w.conn.Query("SELECT path FROM sizes")
	if err != nil {
		return 0, fmt.Errorf("failed to scan snapshot for pruning: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if !exists(p) {
			stale = append(stale, p)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	_ = rows.Close()

	for _, p := range stale {
		if _, err := w.conn.Exec("DELETE FROM sizes WHERE path = ?", p); err != nil {
			return 0, fmt.Errorf("failed to prune %s: %w", p, err)
		}
	}
	return int64(len(stale)), nil
}

// Save checkpoints the scratch, closes it, and renames it over the live
// snapshot. The rename is atomic: concurrent readers keep their view of
// the old file until they reopen. Sidecar WAL files of the old live
// database are left for the engine's recovery to clean up.
func (w *Writer) Save() error {
	if w.conn == nil {
		return fmt.Errorf("snapshot writer already closed")
	}
	if _, err := w.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint scratch snapshot: %w", err)
	}
	if err := w.conn.Close(); err != nil {
		w.conn = nil
		return fmt.Errorf("failed to close scratch snapshot: %w", err)
	}
	w.conn = nil

	if err := os.Rename(w.scratch, w.live); err != nil {
		return fmt.Errorf("failed to promote snapshot: %w", err)
	}
	w.saved = true
	return nil
}

// Close finalizes the writer. When Save never ran, the scratch and its
// sidecars are removed so the next scan starts clean.
func (w *Writer) Close() error {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	if !w.saved {
		for _, p := range []string{w.scratch, w.scratch + "-wal", w.scratch + "-shm"} {
			_ = os.Remove(p)
		}
	}
	return nil
}
