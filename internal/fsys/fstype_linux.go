//go:build linux

package fsys

import (
	"golang.org/x/sys/unix"
)

// Magics the kernel defines but x/sys/unix does not export.
const (
	cifsSuperMagic    = 0xff534d42
	cephSuperMagic    = 0x00c36400
	mqueueMagic       = 0x19800202
	fuseCtlSuperMagic = 0x65735543
)

// Kernel pseudo-filesystems report fabricated sizes and must never be
// summed. Keyed by statfs f_type magic.
var virtualFS = map[int64]bool{
	unix.PROC_SUPER_MAGIC:    true,
	unix.SYSFS_MAGIC:         true,
	unix.DEVPTS_SUPER_MAGIC:  true,
	unix.DEBUGFS_MAGIC:       true,
	unix.TRACEFS_MAGIC:       true,
	unix.SECURITYFS_MAGIC:    true,
	unix.CGROUP_SUPER_MAGIC:  true,
	unix.CGROUP2_SUPER_MAGIC: true,
	unix.BPF_FS_MAGIC:        true,
	unix.PSTOREFS_MAGIC:      true,
	unix.EFIVARFS_MAGIC:      true,
	unix.BINFMTFS_MAGIC:      true,
	unix.SELINUX_MAGIC:       true,
	unix.NSFS_MAGIC:          true,
	mqueueMagic:              true,
	fuseCtlSuperMagic:        true,
}

// Network filesystems are skipped wholesale: summing them is slow and their
// contents belong to another host. FUSE is grouped here because the common
// FUSE mounts (sshfs, rclone) behave like network mounts.
var networkFS = map[int64]bool{
	unix.NFS_SUPER_MAGIC:   true,
	unix.SMB_SUPER_MAGIC:   true,
	unix.SMB2_SUPER_MAGIC:  true,
	unix.CODA_SUPER_MAGIC:  true,
	unix.AFS_SUPER_MAGIC:   true,
	unix.OCFS2_SUPER_MAGIC: true,
	unix.FUSE_SUPER_MAGIC:  true,
	cifsSuperMagic:         true,
	cephSuperMagic:         true,
}

// IsVirtualFS reports whether path sits on a kernel pseudo-filesystem.
func IsVirtualFS(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	return virtualFS[int64(st.Type)]
}

// IsNetworkFS reports whether path sits on a network filesystem.
func IsNetworkFS(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	return networkFS[int64(st.Type)]
}
