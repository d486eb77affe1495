package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

type viewField struct {
	kind     *componentKind
	offset   uintptr
	access   Access
	optional bool
}

// View represents a query for entities with a specific combination of components.
// The type T must be a struct where each field declares one component kind:
//
//   - a pointer field (*C) is a mutable reference into storage
//   - a value field (C) receives a read-only copy
//   - a pointer field tagged `ecs:"optional"` may be nil when the entity lacks C
//   - a field of type EntityId receives the entity id
//
// A kind may appear at most once, so a single pass never holds two
// references into the same column.
type View[T any] struct {
	storage  *Storage
	fields   []viewField
	borrows  []borrow
	idOffset uintptr
	hasId    bool
}

// NewView creates a new view for the given struct type
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}
	entityIdType := reflect.TypeFor[EntityId]()
	seen := make(map[reflect.Type]bool, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityIdType {
			if v.hasId {
				panic("View struct declares EntityId twice")
			}
			v.hasId = true
			v.idOffset = field.Offset
			continue
		}

		access := Read
		componentType := fieldType
		if fieldType.Kind() == reflect.Ptr {
			access = Write
			componentType = fieldType.Elem()
		}

		// Parse struct tag to check if component is optional
		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if tag := field.Tag.Get("ecs"); tag != "" {
			if tag != "optional" {
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
			if field.Anonymous || access != Write {
				panic("only named pointer fields can be optional: " + field.Name)
			}
			isOptional = true
		}

		if seen[componentType] {
			panic("View struct requests " + componentType.String() + " more than once")
		}
		seen[componentType] = true

		kind := storage.registry.lookup(componentType)
		if kind == nil {
			panic("component type " + componentType.String() + " not registered")
		}

		v.fields = append(v.fields, viewField{
			kind:     kind,
			offset:   field.Offset,
			access:   access,
			optional: isOptional,
		})
		v.borrows = append(v.borrows, borrow{kind: kind, access: access})
	}

	return v
}

// Kinds returns the requested component types with their declared access
func (v *View[T]) Kinds() map[reflect.Type]Access {
	kinds := make(map[reflect.Type]Access, len(v.fields))
	for _, f := range v.fields {
		kinds[f.kind.typ] = f.access
	}
	return kinds
}

// columns fetches every requested column once. ok is false when a required
// kind has no column yet, in which case nothing can match.
func (v *View[T]) columns() ([]iComponentStorage, bool) {
	columns := make([]iComponentStorage, len(v.fields))
	for i, f := range v.fields {
		columns[i] = v.storage.column(f.kind)
		if columns[i] == nil && !f.optional {
			return nil, false
		}
	}
	return columns, true
}

// driver picks the sparsest required column to walk; nil means walk every entity
func (v *View[T]) driver(columns []iComponentStorage) iComponentStorage {
	var best iComponentStorage
	for i, f := range v.fields {
		if f.optional {
			continue
		}
		if best == nil || columns[i].Filled() < best.Filled() {
			best = columns[i]
		}
	}
	return best
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, columns []iComponentStorage, entityIndex int) bool {
	for i, f := range v.fields {
		fieldPtr := unsafe.Add(resultPtr, f.offset)

		var component any
		if columns[i] != nil {
			component = columns[i].Get(entityIndex)
		}
		if component == nil {
			if f.optional {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}

		// Extract the pointer from the interface{}
		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		if f.access == Write {
			*(*unsafe.Pointer)(fieldPtr) = componentPtr
		} else {
			typ := f.kind.typ
			reflect.NewAt(typ, fieldPtr).Elem().Set(reflect.NewAt(typ, componentPtr).Elem())
		}
	}

	if v.hasId {
		*(*EntityId)(unsafe.Add(resultPtr, v.idOffset)) = EntityId(entityIndex)
	}
	return true
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is out of range or missing any required components.
// Filling while another pass holds a conflicting borrow of one of the view's
// kinds panics with ErrBorrowConflict.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if err := v.storage.borrows.check(v.borrows); err != nil {
		panic(err)
	}
	return v.fill(id, ptr)
}

// fill is Fill without the borrow check, for callers that discard the result
func (v *View[T]) fill(id EntityId, ptr *T) bool {
	if id.Index() >= v.storage.count {
		return false
	}
	columns, ok := v.columns()
	if !ok {
		return false
	}
	return v.populateResult(unsafe.Pointer(ptr), columns, id.Index())
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// acquire takes the view's borrows, panicking on conflict
func (v *View[T]) acquire() {
	if err := v.storage.borrows.acquire(v.borrows); err != nil {
		panic(err)
	}
}

func (v *View[T]) release() {
	v.storage.borrows.release(v.borrows)
}

// each walks matching entity indices in ascending order while holding the
// view's borrows. The result struct is reused between calls.
func (v *View[T]) each(indices iter.Seq[int], yield func(EntityId, T) bool) {
	v.acquire()
	defer v.release()

	columns, ok := v.columns()
	if !ok {
		return
	}

	var result T
	resultPtr := unsafe.Pointer(&result)

	for entityIndex := range indices {
		if !v.populateResult(resultPtr, columns, entityIndex) {
			continue
		}
		if !yield(EntityId(entityIndex), result) {
			return
		}
	}
}

func (v *View[T]) allIndices() iter.Seq[int] {
	return func(yield func(int) bool) {
		columns, ok := v.columns()
		if !ok {
			return
		}
		if driver := v.driver(columns); driver != nil {
			for index := range driver.Iter() {
				if !yield(index) {
					return
				}
			}
			return
		}
		for index := 0; index < v.storage.count; index++ {
			if !yield(index) {
				return
			}
		}
	}
}

// Iter returns an iterator over all entities that have all the required
// components for this view, in ascending entity id order.
// The view's component kinds are borrowed for the duration of the loop.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		v.each(v.allIndices(), yield)
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}
