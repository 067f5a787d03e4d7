// Package daemon runs the background size-precompute loop.
//
// The daemon:
//  1. Walks the filesystem root on a configured interval
//  2. Writes qualifying directories into a scratch snapshot
//  3. Prunes stale rows and atomically promotes the scratch
//  4. Publishes a one-word status file and rotates its log
//  5. Handles clean shutdown and signal-triggered rescans
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lsq-dev/lsq/internal/config"
	"github.com/lsq-dev/lsq/internal/sizedb"
	"github.com/lsq-dev/lsq/internal/walker"
)

// Options configures a Daemon. Zero fields get production defaults: walk
// root "/", the standard cache directory, and a rotating log at
// config.LogPath.
type Options struct {
	Root     string
	CacheDir string
	Logger   *log.Logger
}

// Daemon owns the snapshot writer side. Exactly one daemon should run per
// user; the service units enforce that.
type Daemon struct {
	root     string
	cacheDir string
	log      *log.Logger

	cfgMu sync.RWMutex
	cfg   config.Config

	shutdown atomic.Bool
	refresh  atomic.Bool
}

// NewLogger returns the daemon's rotating logger. The sink keeps the log
// within a 1 MiB budget at config.LogPath.
func NewLogger() *log.Logger {
	return log.New(&lumberjack.Logger{
		Filename:   config.LogPath,
		MaxSize:    1, // MiB
		MaxBackups: 1,
	}, "[lsqd] ", log.LstdFlags)
}

// New creates a daemon. The configuration file under the cache directory
// is read immediately and re-read when it changes.
func New(opts Options) *Daemon {
	if opts.Root == "" {
		opts.Root = "/"
	}
	if opts.CacheDir == "" {
		opts.CacheDir = config.CacheDir()
	}
	if opts.Logger == nil {
		opts.Logger = NewLogger()
	}
	d := &Daemon{
		root:     opts.Root,
		cacheDir: opts.CacheDir,
		log:      opts.Logger,
	}
	d.cfg = config.Load(d.configPath())
	return d
}

// Run loops until ctx is cancelled or a termination signal arrives.
// A scan failure logs, publishes the error status and waits for the next
// interval; the previous live snapshot stays intact throughout.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Printf("daemon starting, root=%s interval=%s threshold=%d",
		d.root, d.configSnapshot().ScanInterval, d.configSnapshot().FileThreshold)

	term := make(chan os.Signal, 2)
	rescan := make(chan os.Signal, 1)
	notifySignals(term, rescan)
	defer signal.Stop(term)
	defer signal.Stop(rescan)

	go func() {
		for {
			select {
			case <-ctx.Done():
				d.shutdown.Store(true)
				return
			case s := <-term:
				d.log.Printf("received %v, shutting down", s)
				d.shutdown.Store(true)
				return
			case <-rescan:
				d.log.Println("refresh signal received")
				d.refresh.Store(true)
			}
		}
	}()

	watcher := d.watchConfig()
	if watcher != nil {
		defer watcher.Close()
	}

	for !d.shutdown.Load() {
		d.writeStatus("scanning")
		start := time.Now()
		switch err := d.runScan(); {
		case d.shutdown.Load():
			// Partial results were discarded with the scratch.
		case err != nil:
			d.log.Printf("scan failed: %v", err)
			d.writeStatus("error")
		default:
			d.log.Printf("scan finished in %s", time.Since(start).Round(time.Millisecond))
			d.writeStatus("idle")
		}
		d.sleep()
	}

	d.log.Println("daemon stopped")
	return nil
}

// runScan performs one full scan cycle: scratch snapshot, walk, prune,
// atomic promote. On shutdown mid-walk the scratch is discarded.
func (d *Daemon) runScan() error {
	w, err := sizedb.NewWriter(filepath.Join(d.cacheDir, "sizes.db"))
	if err != nil {
		return fmt.Errorf("scratch snapshot: %w", err)
	}
	defer w.Close()

	cfg := d.configSnapshot()
	store := func(path string, size, files int64) {
		var mtime int64
		if st, err := os.Lstat(path); err == nil {
			mtime = st.ModTime().Unix()
		}
		if err := w.Store(path, size, files, mtime); err != nil {
			d.log.Printf("store failed: %v", err)
		}
	}

	res := walker.Walk(d.root, walker.Options{
		Store:      store,
		Shutdown:   &d.shutdown,
		Threshold:  cfg.FileThreshold,
		SameDevice: cfg.SameDevice,
	})
	if d.shutdown.Load() {
		return nil
	}

	pruned, err := w.Prune(func(path string) bool {
		_, err := os.Lstat(path)
		return err == nil
	})
	if err != nil {
		d.log.Printf("prune failed: %v", err)
	}

	rows, _ := w.Count()
	if err := w.Save(); err != nil {
		return fmt.Errorf("promote snapshot: %w", err)
	}
	d.log.Printf("cached %d directories (%d pruned), root size=%d files=%d",
		rows, pruned, res.Size, res.Files)
	return nil
}

// sleep waits up to the configured interval in one-second steps, waking
// early on shutdown, on a refresh signal, or when a config reload shrinks
// the interval below the time already slept.
func (d *Daemon) sleep() {
	start := time.Now()
	for {
		if d.shutdown.Load() {
			return
		}
		if d.refresh.CompareAndSwap(true, false) {
			return
		}
		if time.Since(start) >= d.configSnapshot().ScanInterval {
			return
		}
		time.Sleep(time.Second)
	}
}

// watchConfig reloads the configuration when the file changes, so a new
// interval or threshold applies without restarting the service. A watch
// failure is logged and the daemon continues with per-start config.
func (d *Daemon) watchConfig() *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.log.Printf("config watch unavailable: %v", err)
		return nil
	}
	// Watch the directory: editors and atomic writers replace the file.
	if err := watcher.Add(d.cacheDir); err != nil {
		d.log.Printf("config watch unavailable: %v", err)
		_ = watcher.Close()
		return nil
	}
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != d.configPath() {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				cfg := config.Load(d.configPath())
				d.cfgMu.Lock()
				d.cfg = cfg
				d.cfgMu.Unlock()
				d.log.Printf("config reloaded: interval=%s threshold=%d same_device=%v",
					cfg.ScanInterval, cfg.FileThreshold, cfg.SameDevice)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.log.Printf("config watch error: %v", err)
			}
		}
	}()
	return watcher
}

func (d *Daemon) configSnapshot() config.Config {
	d.cfgMu.RLock()
	defer d.cfgMu.RUnlock()
	return d.cfg
}

func (d *Daemon) configPath() string {
	return filepath.Join(d.cacheDir, "config")
}

func (d *Daemon) statusPath() string {
	return filepath.Join(d.cacheDir, "status")
}

// writeStatus publishes one of scanning/idle/error for the control plane.
func (d *Daemon) writeStatus(s string) {
	if err := os.MkdirAll(d.cacheDir, 0755); err != nil {
		d.log.Printf("status write failed: %v", err)
		return
	}
	if err := os.WriteFile(d.statusPath(), []byte(s+"\n"), 0644); err != nil {
		d.log.Printf("status write failed: %v", err)
	}
}
