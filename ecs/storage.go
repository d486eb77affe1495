package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

var (
	// ErrEntityOutOfRange is returned for ids that were never created
	ErrEntityOutOfRange = errors.New("ecs: entity out of range")
	// ErrUnregisteredComponent is returned when attaching a type the registry does not know
	ErrUnregisteredComponent = errors.New("ecs: component type not registered")
	// ErrBorrowConflict is returned (or raised) when a kind is requested while
	// another pass holds an incompatible borrow of it
	ErrBorrowConflict = errors.New("ecs: component kind already borrowed")
)

type singletonEntry struct {
	value   any
	dataPtr unsafe.Pointer
}

// Storage is the main ECS storage. It owns one column per component kind,
// allocated lazily on first attach, and the entity counter.
type Storage struct {
	registry   *ComponentRegistry
	columns    []iComponentStorage
	count      int
	generation uint64
	borrows    *borrowLedger
	singletons map[reflect.Type]*singletonEntry
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		borrows:    newBorrowLedger(),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the registry the storage was created with
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Len returns the number of entities created so far
func (s *Storage) Len() int {
	return s.count
}

// Generation changes whenever an entity is created or a column gains a
// component. Queries use it to invalidate their cached entity lists.
func (s *Storage) Generation() uint64 {
	return s.generation
}

func (s *Storage) assertNoBorrows(op string) {
	if s.borrows.active() {
		panic("ecs: " + op + " while a query is iterating")
	}
}

// CreateEntity appends an empty slot to every allocated column and returns
// the next sequential id.
func (s *Storage) CreateEntity() EntityId {
	s.assertNoBorrows("CreateEntity")

	id := EntityId(s.count)
	for _, column := range s.columns {
		if column != nil {
			column.Grow()
		}
	}
	s.count++
	s.generation++
	return id
}

// Spawn creates a new entity and attaches the provided components
func (s *Storage) Spawn(components ...any) (EntityId, error) {
	id := s.CreateEntity()
	for _, component := range components {
		if err := s.Attach(id, component); err != nil {
			return id, err
		}
	}
	return id, nil
}

func (s *Storage) checkRange(id EntityId) error {
	if id.Index() >= s.count {
		return fmt.Errorf("%w: %d >= %d", ErrEntityOutOfRange, id, s.count)
	}
	return nil
}

// Attach stores component on the entity, overwriting any component of the
// same kind. The first attach of a kind allocates its column sized to the
// current entity count.
func (s *Storage) Attach(id EntityId, component any) error {
	if err := s.checkRange(id); err != nil {
		return err
	}

	compType := reflect.TypeOf(component)
	if compType == nil {
		return fmt.Errorf("%w: <nil>", ErrUnregisteredComponent)
	}
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	kind := s.registry.lookup(compType)
	if kind == nil {
		return fmt.Errorf("%w: %s", ErrUnregisteredComponent, compType)
	}
	if err := s.borrows.check([]borrow{{kind: kind, access: Write}}); err != nil {
		return err
	}

	column := s.column(kind)
	if column == nil {
		s.assertNoBorrows("Attach of a new component kind")
		column = s.allocate(kind)
	}

	had := column.Has(id.Index())
	if !column.Set(id.Index(), component) {
		return fmt.Errorf("%w: %s", ErrUnregisteredComponent, compType)
	}
	if !had {
		s.generation++
	}
	return nil
}

func (s *Storage) column(kind *componentKind) iComponentStorage {
	if int(kind.id) >= len(s.columns) {
		return nil
	}
	return s.columns[kind.id]
}

func (s *Storage) allocate(kind *componentKind) iComponentStorage {
	for int(kind.id) >= len(s.columns) {
		s.columns = append(s.columns, nil)
	}
	column := kind.factory(s.count)
	s.columns[kind.id] = column
	return column
}

// GetComponent returns a pointer to the component of compType on the entity,
// or nil if the entity has none. It is meant for tooling that runs between
// passes; while any pass borrows the kind it returns ErrBorrowConflict.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) (any, error) {
	if err := s.checkRange(id); err != nil {
		return nil, err
	}
	kind := s.registry.lookup(compType)
	if kind == nil {
		return nil, nil
	}
	column := s.column(kind)
	if column == nil {
		return nil, nil
	}
	if err := s.borrows.check([]borrow{{kind: kind, access: Write}}); err != nil {
		return nil, err
	}
	return column.Get(id.Index()), nil
}

// HasComponent checks if an entity has a specific component type. It takes
// no borrow since no component data is exposed.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	if s.checkRange(id) != nil {
		return false
	}
	kind := s.registry.lookup(compType)
	if kind == nil {
		return false
	}
	column := s.column(kind)
	return column != nil && column.Has(id.Index())
}

// Kinds returns the types of every component attached to the entity
func (s *Storage) Kinds(id EntityId) []reflect.Type {
	var types []reflect.Type
	for _, column := range s.columns {
		if column != nil && column.Has(id.Index()) {
			types = append(types, column.Type())
		}
	}
	return types
}

func typedColumn[T any](s *Storage) (*genericComponentStorage[T], *componentKind) {
	kind := s.registry.lookup(reflect.TypeFor[T]())
	if kind == nil {
		return nil, nil
	}
	column, _ := s.column(kind).(*genericComponentStorage[T])
	return column, kind
}

// Get returns a copy of the entity's T component. ok is false when the
// entity has none.
func Get[T any](s *Storage, id EntityId) (T, bool, error) {
	var zero T
	if err := s.checkRange(id); err != nil {
		return zero, false, err
	}
	column, kind := typedColumn[T](s)
	if column == nil {
		return zero, false, nil
	}
	if err := s.borrows.check([]borrow{{kind: kind, access: Read}}); err != nil {
		return zero, false, err
	}
	ptr := column.ptr(id.Index())
	if ptr == nil {
		return zero, false, nil
	}
	return *ptr, true, nil
}

// GetMut returns a pointer to the entity's T component, or nil when the
// entity has none. The pointer stays valid for the lifetime of the storage.
func GetMut[T any](s *Storage, id EntityId) (*T, error) {
	if err := s.checkRange(id); err != nil {
		return nil, err
	}
	column, kind := typedColumn[T](s)
	if column == nil {
		return nil, nil
	}
	if err := s.borrows.check([]borrow{{kind: kind, access: Write}}); err != nil {
		return nil, err
	}
	return column.ptr(id.Index()), nil
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) (any, error)
}

// ReadComponent is a reflection-free accessor for callers that only hold a
// ComponentReader. Returns nil on any error or absence, including a borrow
// conflict with a running pass.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	component, err := reader.GetComponent(entityId, reflect.TypeFor[T]())
	if err != nil || component == nil {
		return nil
	}
	ptr, _ := component.(*T)
	return ptr
}

// AddSingleton stores value as the singleton of its type, replacing any
// previous one.
func (s *Storage) AddSingleton(value any) {
	t := reflect.TypeOf(value)
	if t == nil {
		panic("ecs: cannot add a nil singleton")
	}
	if t.Kind() == reflect.Ptr {
		v := reflect.ValueOf(value)
		if v.IsNil() {
			panic("ecs: cannot add a nil singleton")
		}
		t = t.Elem()
		value = v.Elem().Interface()
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(reflect.ValueOf(value))

	entry := s.singletons[t]
	if entry != nil {
		// replace in place so cached Singleton pointers observe the new value
		reflect.NewAt(t, entry.dataPtr).Elem().Set(ptr.Elem())
		return
	}
	s.singletons[t] = &singletonEntry{
		value:   ptr.Interface(),
		dataPtr: ptr.UnsafePointer(),
	}
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}
