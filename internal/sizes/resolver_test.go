package sizes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lsq-dev/lsq/internal/sizedb"
	"github.com/lsq-dev/lsq/internal/walker"
)

func writeTree(t *testing.T, dir string, files map[string]int) {
	t.Helper()
	for rel, size := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
}

// newSnapshot writes the given rows into a live snapshot and opens a
// read-only client over it.
func newSnapshot(t *testing.T, rows map[string]sizedb.Entry) *sizedb.Client {
	t.Helper()
	live := filepath.Join(t.TempDir(), "sizes.db")
	w, err := sizedb.NewWriter(live)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	for path, e := range rows {
		if err := w.Store(path, e.Size, e.Files, e.DirMtime); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}
	if err := w.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	w.Close()

	c, err := sizedb.Open(live)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func dirMtime(t *testing.T, path string) int64 {
	t.Helper()
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	return st.ModTime().Unix()
}

func TestLookupWithoutCache(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]int{"a": 10, "sub/b": 20})

	r := New(nil)
	if got := r.Lookup(dir); got != (walker.Result{Size: 30, Files: 2}) {
		t.Errorf("Lookup = %+v, want {30 2}", got)
	}
}

func TestLookupCacheHit(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]int{"a": 10})

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	// The cached row disagrees with disk on purpose: seeing its values
	// proves no walk happened.
	c := newSnapshot(t, map[string]sizedb.Entry{
		canonical: {Size: 7777, Files: 99, DirMtime: dirMtime(t, canonical)},
	})

	r := New(c)
	if got := r.Lookup(dir); got != (walker.Result{Size: 7777, Files: 99}) {
		t.Errorf("Lookup = %+v, want the cached {7777 99}", got)
	}
}

func TestLookupStaleMtimeFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]int{"a": 10})

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	c := newSnapshot(t, map[string]sizedb.Entry{
		canonical: {Size: 7777, Files: 99, DirMtime: dirMtime(t, canonical)},
	})

	// Touching the directory invalidates the row.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(canonical, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	r := New(c)
	if got := r.Lookup(dir); got != (walker.Result{Size: 10, Files: 1}) {
		t.Errorf("Lookup = %+v, want the live {10 1}", got)
	}
}

func TestLookupUnrecordedMtimeNeverTrusted(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]int{"a": 10})

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	c := newSnapshot(t, map[string]sizedb.Entry{
		canonical: {Size: 7777, Files: 99, DirMtime: 0},
	})

	r := New(c)
	if got := r.Lookup(dir); got != (walker.Result{Size: 10, Files: 1}) {
		t.Errorf("Lookup = %+v, want the live {10 1}", got)
	}
}

func TestLookupPartialHitUnderWalk(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]int{"top": 5, "sub/real": 100})

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	sub := filepath.Join(canonical, "sub")
	c := newSnapshot(t, map[string]sizedb.Entry{
		sub: {Size: 4000, Files: 40, DirMtime: dirMtime(t, sub)},
	})

	// The root misses, the child hits: the walk adopts the child's
	// cached values instead of descending.
	r := New(c)
	if got := r.Lookup(dir); got != (walker.Result{Size: 4005, Files: 41}) {
		t.Errorf("Lookup = %+v, want {4005 41}", got)
	}
}

func TestLookupMissingDir(t *testing.T) {
	r := New(nil)
	got := r.Lookup(filepath.Join(t.TempDir(), "gone"))
	if got != (walker.Result{Size: -1, Files: -1}) {
		t.Errorf("Lookup(missing) = %+v, want {-1 -1}", got)
	}
}
