package orchestrator

import (
	"fmt"
	"sync"
)

// Locker grants exclusive access to a repository path for the length of one
// workflow. TryLock never waits; it fails with ErrBusy instead.
type Locker interface {
	TryLock(path string) (release func(), err error)
}

// MemoryLocker tracks in-flight workflows within this process.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) TryLock(path string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[path]; ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, path)
	}
	l.held[path] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, path)
			l.mu.Unlock()
		})
	}, nil
}

// ChainLockers acquires every locker in order and releases them in reverse.
// If one fails, the ones already taken are released.
func ChainLockers(lockers ...Locker) Locker {
	return chain(lockers)
}

type chain []Locker

func (c chain) TryLock(path string) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, l := range c {
		release, err := l.TryLock(path)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	return releaseAll, nil
}
