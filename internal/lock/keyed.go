// Package lock serializes writers that share a ledger key.
package lock

import "sync"

// Keyed is a set of mutexes addressed by string key. The zero value is ready
// to use. Idle keys are dropped so the map only holds keys in use.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is held by the caller and returns the function that
// releases it.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// LockAll acquires every key in the order given and returns a function that
// releases them in reverse. Callers must pass keys in a consistent order.
func (k *Keyed) LockAll(keys ...string) (unlock func()) {
	unlocks := make([]func(), 0, len(keys))
	for _, key := range keys {
		unlocks = append(unlocks, k.Lock(key))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// Len returns the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// AllowanceKey is the lock key shared by every writer of one allowance.
func AllowanceKey(id string) string { return "allowance:" + id }

// GoalKey is the lock key shared by every writer of one goal.
func GoalKey(id string) string { return "goal:" + id }
