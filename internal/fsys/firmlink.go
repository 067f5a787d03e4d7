package fsys

// The macOS firmlink makes the data volume reachable both at / and at
// /System/Volumes/Data; entering the second alias would double every size.
// Exactly this one path (and its double-slash spelling) is skipped.
const firmlinkPath = "/System/Volumes/Data"

// SkipFirmlink reports whether path is the macOS data-volume firmlink.
func SkipFirmlink(path string) bool {
	return path == firmlinkPath || path == "/"+firmlinkPath
}
