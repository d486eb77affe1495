package ecs

import (
	"iter"
	"slices"
)

// Query wraps a View with caching for repeated iteration. Queries remember
// the ids of matching entities and only rescan when the storage generation
// changes, which happens when entities are created or components attached.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	cachedEntities   []int
	cachedGeneration uint64
	cacheValid       bool
}

// NewQuery creates a new Query bound to storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cacheValid = false
}

// Execute rebuilds the cached entity list if the storage changed since the
// last call. Iter calls it implicitly.
func (q *Query[T]) Execute() {
	if q.view == nil {
		panic("Query used before Init")
	}
	if q.cacheValid && q.cachedGeneration == q.storage.generation {
		return
	}

	q.cachedEntities = q.cachedEntities[:0]
	for index := range q.view.allIndices() {
		var match T
		if q.view.fill(EntityId(index), &match) {
			q.cachedEntities = append(q.cachedEntities, index)
		}
	}
	q.cachedGeneration = q.storage.generation
	q.cacheValid = true
}

// Iter returns an iterator over entity IDs and component data in ascending
// id order. The query's kinds are borrowed while the loop runs.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		q.Execute()
		q.view.each(slices.Values(q.cachedEntities), yield)
	}
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// First returns the lowest-id match. Use it for singleton-by-convention
// entities such as the player. The borrow is released before First returns,
// so pointer fields of the result must only be read; write through them
// inside an Iter loop instead.
func (q *Query[T]) First() (T, bool) {
	for _, item := range q.Iter() {
		return item, true
	}
	var zero T
	return zero, false
}

// WithFirst calls fn with the lowest-id match while the query's kinds are
// still borrowed, so fn may write through pointer fields. It reports whether
// there was a match.
func (q *Query[T]) WithFirst(fn func(T)) bool {
	for _, item := range q.Iter() {
		fn(item)
		return true
	}
	return false
}

// Count returns the number of matching entities
func (q *Query[T]) Count() int {
	q.Execute()
	return len(q.cachedEntities)
}
