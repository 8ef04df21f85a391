package docstore

import "fmt"

// KeyFunc returns the unique key of a record within its collection.
type KeyFunc[T any] func(T) string

// Snapshot is an in-memory copy of a whole collection: records in document
// order plus an index by key. Mutations mark it dirty.
type Snapshot[T any] struct {
	records []T
	index   map[string]int
	key     KeyFunc[T]
	dirty   bool
}

// NewSnapshot builds a snapshot from records. Duplicate keys are rejected.
func NewSnapshot[T any](key KeyFunc[T], records ...T) (*Snapshot[T], error) {
	s := &Snapshot[T]{
		records: make([]T, 0, len(records)),
		index:   make(map[string]int, len(records)),
		key:     key,
	}
	for _, r := range records {
		k := key(r)
		if _, dup := s.index[k]; dup {
			return nil, fmt.Errorf("duplicate key %q", k)
		}
		s.index[k] = len(s.records)
		s.records = append(s.records, r)
	}
	return s, nil
}

// Len returns the number of records.
func (s *Snapshot[T]) Len() int { return len(s.records) }

// Get returns the record stored under key.
func (s *Snapshot[T]) Get(key string) (T, bool) {
	i, ok := s.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return s.records[i], true
}

// Has reports whether a record is stored under key.
func (s *Snapshot[T]) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Put replaces the record with the same key in place, or appends it.
// It reports whether an existing record was replaced.
func (s *Snapshot[T]) Put(rec T) bool {
	s.dirty = true
	k := s.key(rec)
	if i, ok := s.index[k]; ok {
		s.records[i] = rec
		return true
	}
	s.index[k] = len(s.records)
	s.records = append(s.records, rec)
	return false
}

// Records returns a copy of all records in document order.
func (s *Snapshot[T]) Records() []T {
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Dirty reports whether the snapshot was modified since it was loaded or saved.
func (s *Snapshot[T]) Dirty() bool { return s.dirty }
