// Package sizes answers "what is {size, file count} of this directory" for
// the foreground tree builder, consulting the snapshot cache before
// falling back to an online walk.
package sizes

import (
	"os"
	"path/filepath"

	"github.com/lsq-dev/lsq/internal/fsys"
	"github.com/lsq-dev/lsq/internal/sizedb"
	"github.com/lsq-dev/lsq/internal/walker"
)

// Resolver wraps an optional read-only snapshot client. A nil client means
// every lookup is an online walk.
type Resolver struct {
	cache *sizedb.Client
}

// New returns a resolver over cache, which may be nil.
func New(cache *sizedb.Client) *Resolver {
	return &Resolver{cache: cache}
}

// Lookup resolves one directory. Deterministic for an unchanged on-disk
// state: cached values are only adopted when the directory's current mtime
// equals the one recorded with the row, which bounds staleness to changes
// confined inside unchanged-mtime subtrees.
//
// Virtual filesystems report {-1, -1}: their fabricated sizes must never
// be summed, and the renderer shows the sentinel as a dash.
func (r *Resolver) Lookup(path string) walker.Result {
	if fsys.IsVirtualFS(path) {
		return walker.Result{Size: -1, Files: -1}
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}

	if size, files, ok := r.cachedLookup(canonical); ok {
		return walker.Result{Size: size, Files: files}
	}

	// Online walk; partial cache hits under canonical still short-circuit
	// through the same validated lookup.
	return walker.Walk(canonical, walker.Options{Cache: r.cachedLookup})
}

// cachedLookup is the mtime-validated read used both for the top-level hit
// test and as the walker's per-child cache callback.
func (r *Resolver) cachedLookup(path string) (int64, int64, bool) {
	if r.cache == nil {
		return 0, 0, false
	}
	e, ok := r.cache.Lookup(path)
	if !ok || e.Size < 0 || e.Files < 0 || e.DirMtime <= 0 {
		return 0, 0, false
	}
	st, err := os.Stat(path)
	if err != nil || st.ModTime().Unix() != e.DirMtime {
		return 0, 0, false
	}
	return e.Size, e.Files, true
}
