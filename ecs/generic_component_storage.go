package ecs

import (
	"iter"
	"reflect"
)

// kindId identifies a registered component kind within one registry
type kindId uint32

type componentKind struct {
	id      kindId
	typ     reflect.Type
	factory func(length int) iComponentStorage
}

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	kinds map[reflect.Type]*componentKind
	byId  []*componentKind
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		kinds: make(map[reflect.Type]*componentKind),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be attached.
// Registering the same type twice is a no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}
	if t == reflect.TypeFor[EntityId]() {
		panic("EntityId cannot be registered as a component")
	}
	if _, exists := r.kinds[t]; exists {
		return
	}

	kind := &componentKind{
		id:  kindId(len(r.byId)),
		typ: t,
		factory: func(length int) iComponentStorage {
			cs := &genericComponentStorage[T]{}
			for range length {
				cs.Grow()
			}
			return cs
		},
	}
	r.kinds[t] = kind
	r.byId = append(r.byId, kind)
}

// Types returns every registered component type in registration order
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, len(r.byId))
	for i, kind := range r.byId {
		types[i] = kind.typ
	}
	return types
}

// lookup returns the registered kind for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) lookup(t reflect.Type) *componentKind {
	return r.kinds[t]
}

const (
	genericBlockSize = 64
)

type componentBlock[T any] struct {
	items  [genericBlockSize]T
	filled [genericBlockSize]bool
}

// genericComponentStorage is a generic implementation of iComponentStorage.
// It stores components of a specific type `T` in fixed-size blocks, so
// pointers handed out by Get stay valid while new entity slots are appended.
type genericComponentStorage[T any] struct {
	blocks []*componentBlock[T]
	length int
	filled int
}

func (cs *genericComponentStorage[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Grow appends one empty slot.
func (cs *genericComponentStorage[T]) Grow() {
	blockIdx := cs.length / genericBlockSize
	if blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, &componentBlock[T]{})
	}
	cs.length++
}

func (cs *genericComponentStorage[T]) Len() int {
	return cs.length
}

// Filled returns the number of non-empty slots.
func (cs *genericComponentStorage[T]) Filled() int {
	return cs.filled
}

// Set stores a component at index, overwriting any previous value.
// Returns false if the item is not a T (or *T) or the index is out of range.
func (cs *genericComponentStorage[T]) Set(index int, item any) bool {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return false
	}

	if index < 0 || index >= cs.length {
		return false
	}

	block := cs.blocks[index/genericBlockSize]
	slotIdx := index % genericBlockSize

	block.items[slotIdx] = concreteItem
	if !block.filled[slotIdx] {
		block.filled[slotIdx] = true
		cs.filled++
	}
	return true
}

// Get returns a pointer to the component at the given index, or nil if the
// slot is empty.
func (cs *genericComponentStorage[T]) Get(index int) any {
	ptr := cs.ptr(index)
	if ptr == nil {
		return nil
	}
	return ptr
}

// ptr is the typed form of Get.
func (cs *genericComponentStorage[T]) ptr(index int) *T {
	if index < 0 || index >= cs.length {
		return nil
	}

	block := cs.blocks[index/genericBlockSize]
	slotIdx := index % genericBlockSize

	if !block.filled[slotIdx] {
		return nil
	}

	return &block.items[slotIdx]
}

// Has checks if a component exists at the given index.
func (cs *genericComponentStorage[T]) Has(index int) bool {
	if index < 0 || index >= cs.length {
		return false
	}
	return cs.blocks[index/genericBlockSize].filled[index%genericBlockSize]
}

// Iter yields the indices of filled slots in ascending order.
func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < cs.length; i++ {
			if cs.blocks[i/genericBlockSize].filled[i%genericBlockSize] {
				if !yield(i) {
					return
				}
			}
		}
	}
}
