package utils

import "sync"

// KeyedMutex serializes operations on named resources.
//
// Each distinct key gets its own mutex, so configuration of one slice never
// blocks configuration of another, while two concurrent operations on the
// same slice (or on the shared bottleneck link) are serialized. Mutexes are
// created on first use and kept for the process lifetime; the key space is
// bounded by the registry (slice ids plus one bottleneck key).
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given key, creating it if needed.
func (k *KeyedMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for the given key.
func (k *KeyedMutex) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *KeyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
