package walker

import "sync"

type devIno struct {
	dev uint64
	ino uint64
}

// visitedSet records (device, inode) pairs across one traversal so a
// subtree reachable by more than one route is summed once. Contention is
// low relative to directory I/O, so a single mutex is enough.
type visitedSet struct {
	mu sync.Mutex
	m  map[devIno]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{m: make(map[devIno]struct{})}
}

// insert reports true when the pair was not seen before.
func (s *visitedSet) insert(dev, ino uint64) bool {
	key := devIno{dev, ino}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = struct{}{}
	return true
}
