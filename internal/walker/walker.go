// Package walker computes {size, file count} for directory subtrees.
//
// A walk is one fork-join region: sibling directories run as goroutines
// admitted by a weighted semaphore, and when the pool is saturated the
// recursion continues inline on the current worker, so a deep tree can
// never livelock the pool. Results aggregate bottom-up at each parent.
//
// The walker itself never touches a database. Persistence and cache reads
// happen through the Store and Cache closures the caller supplies: the
// daemon passes a writer and no reader, the foreground lookup passes a
// reader and no writer.
package walker

import (
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/lsq-dev/lsq/internal/fsys"
)

// Result is the aggregate for one subtree. Size -1 marks a subtree that
// could not be opened; Files -1 marks a subtree whose count is suppressed
// because it is rooted at a .git directory.
type Result struct {
	Size  int64
	Files int64
}

// StoreFunc persists one computed directory. Invocations are serialized by
// the walker; implementations need no locking of their own.
type StoreFunc func(path string, size, files int64)

// CacheFunc returns a previously computed {size, files} for a directory.
// The caller is responsible for freshness; the walker adopts returned
// values verbatim and does not descend.
type CacheFunc func(path string) (size, files int64, ok bool)

// Options configures a walk. The zero value walks with defaults: no
// callbacks, no shutdown flag, threshold 0, global visited-inode cycle
// detection, NumCPU workers.
type Options struct {
	Store    StoreFunc
	Cache    CacheFunc
	Shutdown *atomic.Bool

	// Threshold is the minimum file count for Store to be invoked.
	// 0 stores every non-root directory.
	Threshold int64

	// SameDevice skips directories on a device other than the walk
	// root's, instead of relying on the visited-inode set alone.
	SameDevice bool

	Parallelism int
}

// Directories nested deeper than this are treated as empty. The daemon
// re-observes them on its next scan, so nothing is surfaced.
const maxDepth = 128

// Walk computes the aggregate for the subtree rooted at root.
//
// Guarantees: sizes sum regular files only; counts sum regular files plus
// symlinks; .git subtrees contribute bytes but report Files -1 and are
// never stored; virtual and network filesystems, the macOS data-volume
// firmlink, and already-visited (dev, ino) pairs contribute {0, 0};
// a directory that cannot be opened contributes {-1, -1} locally without
// failing the walk; Store runs at most once at a time and exactly once per
// qualifying directory; setting the shutdown flag stops work promptly with
// a clean {0, 0}.
func Walk(root string, opts Options) Result {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	w := &walkState{
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Parallelism)),
		visited: newVisitedSet(),
	}
	return w.walkDir(filepath.Clean(root), 0, false)
}

type walkState struct {
	opts    Options
	sem     *semaphore.Weighted
	visited *visitedSet

	// storeMu serializes Store invocations across all workers.
	storeMu sync.Mutex

	devMu   sync.Mutex
	rootDev uint64
	haveDev bool
}

func (w *walkState) walkDir(path string, depth int, suppressed bool) Result {
	if w.stopped() || depth > maxDepth {
		return Result{}
	}
	if fsys.SkipFirmlink(path) {
		return Result{}
	}
	if fsys.IsVirtualFS(path) || fsys.IsNetworkFS(path) {
		return Result{}
	}

	d, err := fsys.OpenDir(path)
	if err != nil {
		return Result{Size: -1, Files: -1}
	}
	defer d.Close()

	info, err := d.Stat()
	if err != nil {
		return Result{Size: -1, Files: -1}
	}

	if w.opts.SameDevice && !w.onRootDevice(info.Dev) {
		return Result{}
	}

	if info.Dev != 0 || info.Ino != 0 {
		if !w.visited.insert(info.Dev, info.Ino) {
			// Second route to an already-summed subtree (hardlink,
			// bind mount). Publish a zero row so fallback lookups
			// resolve the duplicate path.
			w.store(path, 0, 0)
			return Result{}
		}
	}

	if filepath.Base(path) == ".git" {
		suppressed = true
	}

	entries, err := d.ReadBatch()
	if err != nil {
		return Result{Size: -1, Files: -1}
	}

	var size, files int64
	var subdirs []string
	for _, e := range entries {
		if w.stopped() {
			return Result{}
		}
		switch e.Kind {
		case fsys.KindRegular:
			size += e.Size
			files++
		case fsys.KindSymlink:
			// Counted, never followed.
			files++
		case fsys.KindDir:
			child := filepath.Join(path, e.Name)
			if fsys.SkipFirmlink(child) {
				continue
			}
			if w.opts.Cache != nil {
				if s, c, ok := w.opts.Cache(child); ok {
					if s >= 0 {
						size += s
					}
					if c >= 0 {
						files += c
					}
					continue
				}
			}
			subdirs = append(subdirs, child)
		}
	}

	if len(subdirs) > 0 {
		results := make([]Result, len(subdirs))
		var wg sync.WaitGroup
		for i, child := range subdirs {
			if w.sem.TryAcquire(1) {
				wg.Add(1)
				go func(i int, child string) {
					defer wg.Done()
					defer w.sem.Release(1)
					results[i] = w.walkDir(child, depth+1, suppressed)
				}(i, child)
			} else {
				results[i] = w.walkDir(child, depth+1, suppressed)
			}
		}
		wg.Wait()
		for _, r := range results {
			if r.Size >= 0 {
				size += r.Size
			}
			if r.Files >= 0 {
				files += r.Files
			}
		}
	}

	if w.stopped() {
		return Result{}
	}

	if !suppressed && w.opts.Store != nil && files >= w.opts.Threshold && path != "/" {
		w.store(path, size, files)
	}
	if suppressed {
		return Result{Size: size, Files: -1}
	}
	return Result{Size: size, Files: files}
}

func (w *walkState) store(path string, size, files int64) {
	if w.opts.Store == nil {
		return
	}
	w.storeMu.Lock()
	w.opts.Store(path, size, files)
	w.storeMu.Unlock()
}

func (w *walkState) stopped() bool {
	return w.opts.Shutdown != nil && w.opts.Shutdown.Load()
}

// onRootDevice records the first device seen as the walk's reference
// device and reports whether dev matches it.
func (w *walkState) onRootDevice(dev uint64) bool {
	w.devMu.Lock()
	defer w.devMu.Unlock()
	if !w.haveDev {
		w.rootDev = dev
		w.haveDev = true
		return true
	}
	return dev == w.rootDev
}
