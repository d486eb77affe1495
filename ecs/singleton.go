package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton provides efficient access to a single component instance
// that is not associated with any entity. Use this for frame input, level
// geometry, random sources and other global data.
type Singleton[T any] struct {
	storage      *Storage
	componentPtr unsafe.Pointer
}

// NewSingleton creates a new Singleton accessor for the given storage.
// If initializer is provided and the singleton doesn't exist in storage,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists in storage after the call.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	componentType := reflect.TypeFor[T]()

	entry := storage.getSingletonEntry(componentType)
	if entry == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
		entry = storage.getSingletonEntry(componentType)
	}

	return &Singleton[T]{
		storage:      storage,
		componentPtr: entry.dataPtr,
	}
}

// Init initializes the Singleton with a storage reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentPtr = nil
	s.updateCache()
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to storage.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	if s.componentPtr == nil {
		return nil
	}
	return (*T)(s.componentPtr)
}

// Exists returns true if the singleton component has been added to storage
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

// updateCache refreshes the cached pointer from storage
func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.componentPtr = entry.dataPtr
	}
}

// ReadSingleton returns the stored singleton of type T, or nil.
func ReadSingleton[T any](storage *Storage) *T {
	entry := storage.getSingletonEntry(reflect.TypeFor[T]())
	if entry == nil {
		return nil
	}
	return (*T)(entry.dataPtr)
}
