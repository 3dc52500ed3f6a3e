package service

import "sync"

// storeLocks hands out one mutex per store so that a capacity check and
// the write that follows it execute as a single unit per store within
// this process. Entries are never removed; the set of stores is small and
// long-lived.
type storeLocks struct {
	m sync.Map // storeID -> *sync.Mutex
}

// lock acquires the store's mutex and returns the matching unlock func.
func (l *storeLocks) lock(storeID uint64) func() {
	v, _ := l.m.LoadOrStore(storeID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
