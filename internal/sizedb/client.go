package sizedb

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Entry is one cached row. DirMtime is the directory's own mtime (seconds)
// at the moment the row was written; 0 means not recorded.
type Entry struct {
	Size     int64
	Files    int64
	DirMtime int64
}

// Client is a read-only handle on the live snapshot. Lookup is safe for
// concurrent use from a parallel walker: a single prepared statement is
// guarded by a mutex, which is cheap relative to the directory I/O around
// it.
type Client struct {
	mu   sync.Mutex
	conn *sql.DB
	stmt *sql.Stmt
}

// Open opens the live snapshot read-only. A missing file, a schema from a
// half-written database, or any other open failure is returned as an error
// so the caller can degrade to cache-less operation.
func Open(path string) (*Client, error) {
	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	stmt, err := conn.Prepare(`SELECT size, file_count, dir_mtime FROM sizes WHERE path = ?`)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to prepare snapshot lookup: %w", err)
	}

	return &Client{conn: conn, stmt: stmt}, nil
}

// Lookup returns the cached entry for an absolute path.
func (c *Client) Lookup(path string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var e Entry
	if err := c.stmt.QueryRow(path).Scan(&e.Size, &e.Files, &e.DirMtime); err != nil {
		return Entry{}, false
	}
	return e, true
}

// Count returns the number of cached rows, for status display.
func (c *Client) Count() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	if err := c.conn.QueryRow("SELECT COUNT(*) FROM sizes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshot rows: %w", err)
	}
	return n, nil
}

// Close releases the prepared statement and the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stmt != nil {
		_ = c.stmt.Close()
		c.stmt = nil
	}
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	return nil
}
