package evaluator

import (
	"sync"
)

// ReferenceIndex is a dataset loaded once and looked up by exact key.
type ReferenceIndex struct {
	mu      sync.RWMutex
	entries map[string]ReferenceEntry
	source  string
}

// NewReferenceIndex constructs an empty index.
func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{entries: make(map[string]ReferenceEntry)}
}

// LoadReferenceIndex reads every row of the dataset at path. Unlike Find, a
// missing file is reported.
func LoadReferenceIndex(path string) (*ReferenceIndex, error) {
	var entries []ReferenceEntry
	err := scanReferences(path, func(e ReferenceEntry) bool {
		entries = append(entries, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	idx := NewReferenceIndex()
	idx.Replace(entries)
	idx.source = path
	return idx, nil
}

// Replace swaps the stored entries atomically. Earlier entries win on
// duplicate originals, matching a linear scan.
func (idx *ReferenceIndex) Replace(entries []ReferenceEntry) {
	m := make(map[string]ReferenceEntry, len(entries))
	for _, e := range entries {
		key := referenceKey(e.Original)
		if key == "" {
			continue
		}
		if _, dup := m[key]; dup {
			continue
		}
		m[key] = ReferenceEntry{Original: key, Transformed: referenceKey(e.Transformed)}
	}
	idx.mu.Lock()
	idx.entries = m
	idx.mu.Unlock()
}

// Find looks up input with the same trimming rules as the package-level Find.
func (idx *ReferenceIndex) Find(input string) (ReferenceEntry, bool) {
	key := referenceKey(input)
	if key == "" {
		return ReferenceEntry{}, false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[key]
	return e, ok
}

// Size returns the number of indexed originals.
func (idx *ReferenceIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Source returns the path the index was loaded from, if any.
func (idx *ReferenceIndex) Source() string {
	return idx.source
}
