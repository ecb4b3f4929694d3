package resource

import (
	"sort"
	"sync"
)

// Store is the backing map of constructed backends. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(h Handle) (Backend, bool)
	Put(h Handle, b Backend)
	Handles() []Handle
}

// MapStore is the default in-memory Store.
type MapStore struct {
	mu sync.RWMutex
	m  map[Handle]Backend
}

// NewMapStore constructs an empty store.
func NewMapStore() *MapStore {
	return &MapStore{m: make(map[Handle]Backend)}
}

func (s *MapStore) Get(h Handle) (Backend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.m[h]
	return b, ok
}

func (s *MapStore) Put(h Handle, b Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[h] = b
}

// Handles returns the stored handles ordered by kind then key.
func (s *MapStore) Handles() []Handle {
	s.mu.RLock()
	out := make([]Handle, 0, len(s.m))
	for h := range s.m {
		out = append(out, h)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind == out[j].Kind {
			return out[i].Key < out[j].Key
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
