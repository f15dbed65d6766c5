// Package memstore implements the store repositories in process memory. It
// enforces the same unique indexes as the MongoDB store and is selected with
// STORE_DRIVER=memory for local runs and used by the service tests.
package memstore

import (
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

type document[T any] interface {
	*T
	GetID() primitive.ObjectID
	Stamp(now time.Time)
}

// uniqueKey extracts the value of a unique index. An empty value is not
// indexed, which mirrors a partial index on an optional field.
type uniqueKey[T any] struct {
	index string
	key   func(*T) string
}

type table[T any, PT document[T]] struct {
	mu     sync.RWMutex
	rows   map[primitive.ObjectID]T
	order  []primitive.ObjectID
	unique []uniqueKey[T]
	clone  func(T) T
}

func newTable[T any, PT document[T]](clone func(T) T, unique ...uniqueKey[T]) *table[T, PT] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T, PT]{
		rows:   make(map[primitive.ObjectID]T),
		unique: unique,
		clone:  clone,
	}
}

func (t *table[T, PT]) checkUnique(doc PT) error {
	id := doc.GetID()
	for _, u := range t.unique {
		want := u.key((*T)(doc))
		if want == "" {
			continue
		}
		for rowID, row := range t.rows {
			if rowID == id {
				continue
			}
			if u.key(&row) == want {
				return &store.DuplicateError{Index: u.index}
			}
		}
	}
	return nil
}

func (t *table[T, PT]) insert(doc PT) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc.Stamp(time.Now().UTC())
	if _, exists := t.rows[doc.GetID()]; exists {
		return &store.DuplicateError{Index: "_id"}
	}
	if err := t.checkUnique(doc); err != nil {
		return err
	}
	t.rows[doc.GetID()] = t.clone(*doc)
	t.order = append(t.order, doc.GetID())
	return nil
}

func (t *table[T, PT]) replace(doc PT) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[doc.GetID()]; !exists {
		return store.ErrNotFound
	}
	doc.Stamp(time.Now().UTC())
	if err := t.checkUnique(doc); err != nil {
		return err
	}
	t.rows[doc.GetID()] = t.clone(*doc)
	return nil
}

func (t *table[T, PT]) get(id primitive.ObjectID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := t.clone(row)
	return &out, nil
}

func (t *table[T, PT]) findOne(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		row, ok := t.rows[id]
		if ok && match(&row) {
			out := t.clone(row)
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// find returns matching rows in insertion order. A nil match returns all.
func (t *table[T, PT]) find(match func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, id := range t.order {
		row, ok := t.rows[id]
		if ok && (match == nil || match(&row)) {
			out = append(out, t.clone(row))
		}
	}
	return out
}

// findNewest is find with the most recently inserted rows first.
func (t *table[T, PT]) findNewest(match func(*T) bool) []T {
	out := t.find(match)
	slices.Reverse(out)
	return out
}

func (t *table[T, PT]) remove(id primitive.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.rows, id)
	for i, rowID := range t.order {
		if rowID == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}
