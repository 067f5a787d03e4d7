//go:build !linux

package fsys

// IsVirtualFS reports false: only Linux exposes a cheap filesystem-type
// query. Elsewhere the daemon's scan interval bounds the cost.
func IsVirtualFS(path string) bool { return false }

// IsNetworkFS reports false on non-Linux platforms; see IsVirtualFS.
func IsNetworkFS(path string) bool { return false }
