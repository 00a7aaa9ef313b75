package storage

import (
	"sort"
	"sync"
)

// Ref names a blob.
type Ref struct {
	Container string
	Key       string
}

func (r Ref) String() string { return memoryKey(r.Container, r.Key) }

// KeyLocker serializes operations in this process that touch the same blobs.
// Writers of a blob exclude everyone else on that blob; readers only exclude
// writers. Locks are taken in sorted order so overlapping acquisitions never
// deadlock. It does not coordinate separate processes.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewKeyLocker creates an empty locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*sync.RWMutex)}
}

func (l *KeyLocker) lockFor(name string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.RWMutex{}
		l.locks[name] = m
	}
	return m
}

// Acquire locks writes exclusively and reads shared, and returns the
// function that releases them all. A ref listed in both is locked for write.
func (l *KeyLocker) Acquire(writes, reads []Ref) (release func()) {
	mode := make(map[string]bool, len(writes)+len(reads))
	for _, r := range reads {
		mode[r.String()] = false
	}
	for _, r := range writes {
		mode[r.String()] = true
	}

	names := make([]string, 0, len(mode))
	for name := range mode {
		names = append(names, name)
	}
	sort.Strings(names)

	unlocks := make([]func(), 0, len(names))
	for _, name := range names {
		m := l.lockFor(name)
		if mode[name] {
			m.Lock()
			unlocks = append(unlocks, m.Unlock)
		} else {
			m.RLock()
			unlocks = append(unlocks, m.RUnlock)
		}
	}

	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}
