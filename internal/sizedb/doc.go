// Package sizedb persists the per-directory size snapshot.
//
// The snapshot is a single-table embedded SQLite database:
//
//	sizes(path TEXT PRIMARY KEY, size INTEGER, file_count INTEGER, dir_mtime INTEGER)
//
// Two physical files exist while the daemon scans: the live database
// (sizes.db) that clients read, and a scratch database (sizes.db.tmp) the
// daemon writes. Save promotes the scratch over the live file with an
// atomic rename, so a reader always observes either the previous snapshot
// or the new one, never a mix. Clients never write to the live file.
//
// The engine is ncruces/go-sqlite3 in WAL mode, the same embedded stack
// used elsewhere for local query caches.
package sizedb
