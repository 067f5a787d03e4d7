//go:build unix

package fsys

import (
	"golang.org/x/sys/unix"
)

// Stat describes the directory behind the handle.
func (d *Dir) Stat() (Info, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(d.f.Fd()), &st); err != nil {
		return Info{}, err
	}
	return Info{Dev: uint64(st.Dev), Ino: uint64(st.Ino), Mtime: st.Mtim.Sec}, nil
}

// ReadBatch enumerates entries with one fstatat per name, relative to the
// directory fd. Entries whose stat fails (vanished, permission) are skipped.
func (d *Dir) ReadBatch() ([]Entry, error) {
	names, err := d.f.Readdirnames(-1)
	if err != nil && len(names) == 0 {
		return nil, err
	}
	fd := int(d.f.Fd())
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		var st unix.Stat_t
		if err := unix.Fstatat(fd, name, &st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
			continue
		}
		kind := kindFromStatMode(uint32(st.Mode))
		var size int64
		if kind == KindRegular {
			size = st.Size
		}
		entries = append(entries, Entry{Name: name, Kind: kind, Size: size})
	}
	return entries, nil
}

// ClassifySymlinkTarget stats the target of a symlink entry. The second
// return is false when the link is broken.
func (d *Dir) ClassifySymlinkTarget(name string) (Kind, bool) {
	var st unix.Stat_t
	if err := unix.Fstatat(int(d.f.Fd()), name, &st, 0); err != nil {
		return KindUnknown, false
	}
	return kindFromStatMode(uint32(st.Mode)), true
}

func kindFromStatMode(mode uint32) Kind {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return KindDir
	case unix.S_IFREG:
		return KindRegular
	case unix.S_IFLNK:
		return KindSymlink
	case unix.S_IFBLK, unix.S_IFCHR:
		return KindDevice
	case unix.S_IFSOCK:
		return KindSocket
	case unix.S_IFIFO:
		return KindFifo
	}
	return KindUnknown
}
