// Package fsys is the platform filesystem adapter for the walker and the
// tree builder.
//
// It enumerates directory entries with as few syscalls as the platform
// allows, classifies each entry, and answers filesystem-class queries
// (virtual and network filesystems) that drive the walker's skip policies.
//
// A Dir wraps an open directory file descriptor so that per-entry metadata
// can be fetched relative to the handle (fstatat), which is immune to the
// directory being renamed while a scan is in flight.
package fsys

import (
	"fmt"
	"io/fs"
	"os"
)

// Kind classifies a directory entry.
type Kind int

const (
	KindUnknown Kind = iota
	KindDir
	KindRegular
	KindSymlink
	KindDevice
	KindSocket
	KindFifo
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindRegular:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindDevice:
		return "device"
	case KindSocket:
		return "socket"
	case KindFifo:
		return "fifo"
	default:
		return "unknown"
	}
}

// Entry is one enumerated directory entry. Size is meaningful for regular
// files only; for other kinds it is zero.
type Entry struct {
	Name string
	Kind Kind
	Size int64
}

// Info describes the directory behind an open handle.
type Info struct {
	Dev   uint64
	Ino   uint64
	Mtime int64 // seconds since the epoch
}

// Dir is an open directory handle. The enumeration methods consume the
// handle's read position; open a fresh handle to enumerate again.
type Dir struct {
	f    *os.File
	path string
}

// OpenDir opens path for enumeration. Non-directories are rejected.
// Symlinks in the path are followed; the walker resolves loop concerns
// itself through the visited-inode set.
func OpenDir(path string) (*Dir, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: not a directory", path)
	}
	return &Dir{f: f, path: path}, nil
}

// Path returns the path the handle was opened with.
func (d *Dir) Path() string { return d.path }

// Close releases the handle.
func (d *Dir) Close() error { return d.f.Close() }

// ReadSequential enumerates entries through the portable os.ReadDir path:
// the d_type hint classifies most entries for free, and a stat is issued
// only when the hint is unknown or the entry is a regular file whose size
// is needed. Entries that vanish mid-enumeration are skipped.
func (d *Dir) ReadSequential() ([]Entry, error) {
	des, err := d.f.ReadDir(-1)
	if err != nil && len(des) == 0 {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		kind := kindFromFileMode(de.Type())
		var size int64
		if kind == KindRegular || kind == KindUnknown {
			info, err := de.Info()
			if err != nil {
				continue
			}
			kind = kindFromFileMode(info.Mode())
			if kind == KindRegular {
				size = info.Size()
			}
		}
		entries = append(entries, Entry{Name: de.Name(), Kind: kind, Size: size})
	}
	return entries, nil
}

func kindFromFileMode(m fs.FileMode) Kind {
	switch {
	case m.IsDir():
		return KindDir
	case m.IsRegular():
		return KindRegular
	case m&fs.ModeSymlink != 0:
		return KindSymlink
	case m&fs.ModeDevice != 0 || m&fs.ModeCharDevice != 0:
		return KindDevice
	case m&fs.ModeSocket != 0:
		return KindSocket
	case m&fs.ModeNamedPipe != 0:
		return KindFifo
	}
	return KindUnknown
}
