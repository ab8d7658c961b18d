// Package memstore is the in-memory backing for the clinic repositories used
// when STORAGE=memory and in tests.
package memstore

import (
	"sort"
	"sync"
)

// Table is a mutex-guarded map of records keyed by an auto-incremented id.
// Records are copied in and out through clone so callers never share memory
// with the table.
type Table[T any] struct {
	mu    sync.RWMutex
	seq   int64
	rows  map[int64]T
	clone func(T) T
}

// NewTable returns an empty table. clone may be nil for value types with no
// reference fields.
func NewTable[T any](clone func(T) T) *Table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Table[T]{rows: make(map[int64]T), clone: clone}
}

// Insert assigns the next id via setID and stores the record.
func (t *Table[T]) Insert(v T, setID func(*T, int64)) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	setID(&v, t.seq)
	t.rows[t.seq] = t.clone(v)
	return t.clone(v)
}

func (t *Table[T]) Get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(v), true
}

// Put replaces an existing record. It reports false when id is unknown.
func (t *Table[T]) Put(id int64, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = t.clone(v)
	return true
}

// Update applies fn to the stored record under the write lock. fn may
// return an error to abort without changing anything.
func (t *Table[T]) Update(id int64, fn func(*T) error) (T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	v, ok := t.rows[id]
	if !ok {
		return zero, false, nil
	}
	v = t.clone(v)
	if err := fn(&v); err != nil {
		return zero, true, err
	}
	t.rows[id] = v
	return t.clone(v), true, nil
}

func (t *Table[T]) Delete(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// List returns the records matching keep (all when keep is nil) in id order.
func (t *Table[T]) List(keep func(T) bool) []T {
	t.mu.RLock()
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v := t.rows[id]
		if keep == nil || keep(v) {
			out = append(out, t.clone(v))
		}
	}
	t.mu.RUnlock()
	return out
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
