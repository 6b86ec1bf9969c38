package mediacache

import "sync"

// keyedMutex serializes writers per fingerprint so a put and a cleanup of
// the same entry never interleave. Entries are refcounted and dropped once
// the last holder unlocks.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockRef
}

type lockRef struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockRef)}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	ref, ok := k.locks[key]
	if !ok {
		ref = &lockRef{}
		k.locks[key] = ref
	}
	ref.refs++
	k.mu.Unlock()

	ref.mu.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	ref := k.locks[key]
	ref.refs--
	if ref.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	ref.mu.Unlock()
}
