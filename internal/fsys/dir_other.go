//go:build !unix

package fsys

import (
	"os"
	"path/filepath"
)

// Stat describes the directory behind the handle. Without stable device and
// inode numbers the walker falls back to path-identity only; cycle cutting
// then relies on the depth bound.
func (d *Dir) Stat() (Info, error) {
	info, err := d.f.Stat()
	if err != nil {
		return Info{}, err
	}
	return Info{Mtime: info.ModTime().Unix()}, nil
}

// ReadBatch has no bulk-attribute call here; it is the sequential path.
func (d *Dir) ReadBatch() ([]Entry, error) {
	return d.ReadSequential()
}

// ClassifySymlinkTarget stats the target of a symlink entry. The second
// return is false when the link is broken.
func (d *Dir) ClassifySymlinkTarget(name string) (Kind, bool) {
	info, err := os.Stat(filepath.Join(d.path, name))
	if err != nil {
		return KindUnknown, false
	}
	return kindFromFileMode(info.Mode()), true
}
